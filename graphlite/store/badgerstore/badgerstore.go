// Package badgerstore is an optional persistent GraphCache backed by
// BadgerDB, for callers that want the engine's state to survive a restart
// without writing their own storage layer. It is not wired in by default;
// store/memory is what Session uses unless a caller opts in.
package badgerstore

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/mwatts/graphlite"
)

const (
	nodePrefix = "n:"
	edgePrefix = "e:"
)

// Store persists nodes and edges as gob-encoded values under a node/edge
// key prefix, mirroring the key-prefix-per-kind layout the teacher's
// BadgerStore uses for its index families, simplified to the two entity
// kinds GraphLite's data model has (§3).
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a BadgerDB database at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerstore: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeNode(b []byte) (*graphlite.Node, error) {
	var n graphlite.Node
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&n); err != nil {
		return nil, err
	}
	return &n, nil
}

func decodeEdge(b []byte) (*graphlite.Edge, error) {
	var e graphlite.Edge
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) GetNode(id string) (*graphlite.Node, bool) {
	var n *graphlite.Node
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(nodePrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			decoded, err := decodeNode(val)
			if err != nil {
				return err
			}
			n = decoded
			return nil
		})
	})
	if err != nil {
		return nil, false
	}
	return n, true
}

func (s *Store) GetEdge(id string) (*graphlite.Edge, bool) {
	var e *graphlite.Edge
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(edgePrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			decoded, err := decodeEdge(val)
			if err != nil {
				return err
			}
			e = decoded
			return nil
		})
	})
	if err != nil {
		return nil, false
	}
	return e, true
}

func (s *Store) scanNodes(keep func(*graphlite.Node) bool) []*graphlite.Node {
	var out []*graphlite.Node
	_ = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte(nodePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				n, err := decodeNode(val)
				if err != nil {
					return err
				}
				if keep == nil || keep(n) {
					out = append(out, n)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return out
}

func (s *Store) scanEdges(keep func(*graphlite.Edge) bool) []*graphlite.Edge {
	var out []*graphlite.Edge
	_ = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte(edgePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				e, err := decodeEdge(val)
				if err != nil {
					return err
				}
				if keep == nil || keep(e) {
					out = append(out, e)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return out
}

func (s *Store) AllNodes() []*graphlite.Node { return s.scanNodes(nil) }
func (s *Store) AllEdges() []*graphlite.Edge { return s.scanEdges(nil) }

func (s *Store) NodesByLabel(label string) []*graphlite.Node {
	return s.scanNodes(func(n *graphlite.Node) bool { return n.HasLabel(label) })
}

func (s *Store) EdgesByLabel(label string) []*graphlite.Edge {
	return s.scanEdges(func(e *graphlite.Edge) bool { return e.Label == label })
}

func (s *Store) IncidentEdges(nodeID string) []*graphlite.Edge {
	return s.scanEdges(func(e *graphlite.Edge) bool { return e.Incident(nodeID) })
}

func (s *Store) InsertNode(n *graphlite.Node) error {
	if _, ok := s.GetNode(n.ID); ok {
		return fmt.Errorf("node %q already exists", n.ID)
	}
	return s.putNode(n)
}

func (s *Store) InsertEdge(e *graphlite.Edge) error {
	if _, ok := s.GetEdge(e.ID); ok {
		return fmt.Errorf("edge %q already exists", e.ID)
	}
	if _, ok := s.GetNode(e.From); !ok {
		return fmt.Errorf("edge %q references missing from-node %q", e.ID, e.From)
	}
	if _, ok := s.GetNode(e.To); !ok {
		return fmt.Errorf("edge %q references missing to-node %q", e.ID, e.To)
	}
	return s.putEdge(e)
}

func (s *Store) UpdateNode(n *graphlite.Node) error {
	if _, ok := s.GetNode(n.ID); !ok {
		return fmt.Errorf("node %q does not exist", n.ID)
	}
	return s.putNode(n)
}

func (s *Store) UpdateEdge(e *graphlite.Edge) error {
	if _, ok := s.GetEdge(e.ID); !ok {
		return fmt.Errorf("edge %q does not exist", e.ID)
	}
	return s.putEdge(e)
}

func (s *Store) putNode(n *graphlite.Node) error {
	b, err := encode(n)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(nodePrefix+n.ID), b)
	})
}

func (s *Store) putEdge(e *graphlite.Edge) error {
	b, err := encode(e)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(edgePrefix+e.ID), b)
	})
}

func (s *Store) RemoveNode(id string) error {
	if len(s.IncidentEdges(id)) > 0 {
		return fmt.Errorf("node %q has incident edges; DETACH required", id)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(nodePrefix + id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
}

func (s *Store) RemoveEdge(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(edgePrefix + id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
}
