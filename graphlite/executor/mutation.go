package executor

import (
	"github.com/mwatts/graphlite"
	"github.com/mwatts/graphlite/ast"
	"github.com/mwatts/graphlite/planner/logical"
	"github.com/mwatts/graphlite/planner/physical"
	"github.com/mwatts/graphlite/txn"
)

// runMutation applies a Mutation node's statement once per surviving input
// row (§4.6: "run the preceding MATCH if any, apply the optional filter,
// for each surviving row apply the mutation"). On any error while a
// transaction is active, the partial work is rolled back before the error
// is returned (§7).
func (e *Executor) runMutation(n *physical.Node) (int, error) {
	m, ok := n.Logical.(*logical.Mutation)
	if !ok {
		return 0, graphlite.NewError(graphlite.ErrExecution, "Mutation physical node carries %T", n.Logical)
	}
	_, rows, err := e.runNode(n.Children[0], nil)
	if err != nil {
		return 0, e.failMutation(err)
	}
	if m.Statement.With != nil {
		_, rows, err = e.applyWithClause(m.Statement.With, rows)
		if err != nil {
			return 0, e.failMutation(err)
		}
	}

	ev := newEvaluator(e)
	affected := 0
	for _, row := range rows {
		count, err := e.applyStatement(m.Kind, m.Statement, row, ev)
		if err != nil {
			return affected, e.failMutation(err)
		}
		affected += count
	}
	return affected, nil
}

func (e *Executor) failMutation(cause error) error {
	if e.Txn != nil && e.Txn.Status() == txn.Active {
		if rbErr := e.Txn.Rollback(e.Cache); rbErr != nil {
			return graphlite.NewError(graphlite.ErrTxn, "rollback failed after execution error (%v): %v", cause, rbErr)
		}
	}
	return graphlite.NewError(graphlite.ErrExecution, "%v", cause)
}

func (e *Executor) applyStatement(kind logical.MutationKind, st *ast.DataStatement, row Row, ev *evaluator) (int, error) {
	switch st.Kind {
	case ast.DataInsert:
		return e.applyInsert(st, row, ev)
	case ast.DataSet:
		return e.applySet(st, row, ev)
	case ast.DataRemove:
		return e.applyRemove(st, row)
	case ast.DataDelete:
		return e.applyDelete(st, row)
	}
	return 0, graphlite.NewError(graphlite.ErrExecution, "unsupported data statement kind %d", st.Kind)
}

func (e *Executor) record(op txn.UndoOperation) error {
	if e.Txn == nil {
		return nil
	}
	return e.Txn.Record(op)
}

// applyInsert builds each INSERT pattern's nodes/edges in order (§4.6),
// reusing any variable already bound by a preceding MATCH and generating a
// fresh storage id otherwise. Duplicates are neither merged nor rejected,
// left to the surrounding system per §4.6.
func (e *Executor) applyInsert(st *ast.DataStatement, row Row, ev *evaluator) (int, error) {
	affected := 0
	bound := row.clone()
	for _, pattern := range st.InsertPath {
		var fromNode *graphlite.Node
		for i, el := range pattern.Elements {
			switch {
			case el.Node != nil:
				nd, err := e.resolveOrCreateNode(el.Node, bound, ev)
				if err != nil {
					return affected, err
				}
				if _, existed := row[el.Node.Variable]; !existed && el.Node.Variable != "" {
					affected++
				}
				fromNode = nd
			case el.Edge != nil:
				// the next element is always the edge's target node
				if i+1 >= len(pattern.Elements) || pattern.Elements[i+1].Node == nil {
					continue
				}
				toEl := pattern.Elements[i+1].Node
				toNode, err := e.resolveOrCreateNode(toEl, bound, ev)
				if err != nil {
					return affected, err
				}
				if _, existed := row[toEl.Variable]; !existed && toEl.Variable != "" {
					affected++
				}
				ed, err := e.createEdge(el.Edge, fromNode, toNode, bound, ev)
				if err != nil {
					return affected, err
				}
				affected++
				if el.Edge.Variable != "" {
					bound[el.Edge.Variable] = graphlite.NewEdge(ed)
				}
				fromNode = toNode
			}
		}
	}
	return affected, nil
}

func (e *Executor) resolveOrCreateNode(el *ast.NodeElement, bound Row, ev *evaluator) (*graphlite.Node, error) {
	if el.Variable != "" {
		if v, ok := bound[el.Variable]; ok && v.Kind == graphlite.KindNode {
			return v.Node, nil
		}
	}
	nd := graphlite.NewEmptyNode(e.genID("n"))
	for _, l := range el.Labels {
		nd.AddLabel(l)
	}
	if el.Properties != nil {
		for _, prop := range el.Properties.Entries {
			v, err := ev.eval(prop.Value, bound)
			if err != nil {
				return nil, err
			}
			nd.Properties[prop.Key] = v
		}
	}
	if err := e.Cache.InsertNode(nd); err != nil {
		return nil, err
	}
	if err := e.record(txn.UndoOperation{Kind: txn.UndoInsertNode, NodeID: nd.ID}); err != nil {
		return nil, err
	}
	if el.Variable != "" {
		bound[el.Variable] = graphlite.NewNode(nd)
	}
	return nd, nil
}

func (e *Executor) createEdge(el *ast.EdgeElement, from, to *graphlite.Node, bound Row, ev *evaluator) (*graphlite.Edge, error) {
	label := ""
	if len(el.Labels) > 0 {
		label = el.Labels[0]
	}
	fromID, toID := from.ID, to.ID
	if el.Direction == ast.DirIncoming {
		fromID, toID = toID, fromID
	}
	ed := graphlite.NewEmptyEdge(e.genID("e"), fromID, toID, label)
	if el.Properties != nil {
		for _, prop := range el.Properties.Entries {
			v, err := ev.eval(prop.Value, bound)
			if err != nil {
				return nil, err
			}
			ed.Properties[prop.Key] = v
		}
	}
	if err := e.Cache.InsertEdge(ed); err != nil {
		return nil, err
	}
	if err := e.record(txn.UndoOperation{Kind: txn.UndoInsertEdge, EdgeID: ed.ID}); err != nil {
		return nil, err
	}
	return ed, nil
}

// applySet handles property, whole-variable, and label assignment (§4.6).
func (e *Executor) applySet(st *ast.DataStatement, row Row, ev *evaluator) (int, error) {
	affected := 0
	for _, item := range st.SetItems {
		bound, ok := row[item.Variable]
		if !ok {
			continue
		}
		switch {
		case item.Label != "":
			if bound.Kind != graphlite.KindNode {
				continue
			}
			before := bound.Node.Clone()
			bound.Node.AddLabel(item.Label)
			if err := e.Cache.UpdateNode(bound.Node); err != nil {
				return affected, err
			}
			if err := e.record(txn.UndoOperation{Kind: txn.UndoUpdateNode, NodeID: bound.Node.ID, NodeBefore: before}); err != nil {
				return affected, err
			}
			affected++
		case item.Property != "":
			v, err := ev.eval(item.Value, row)
			if err != nil {
				return affected, err
			}
			if err := e.setProperty(bound, item.Property, v); err != nil {
				return affected, err
			}
			affected++
		default:
			// whole-variable assignment: merge another node/edge's
			// properties onto this one (§4.6).
			v, err := ev.eval(item.Value, row)
			if err != nil {
				return affected, err
			}
			if err := e.mergeWholeEntity(bound, v); err != nil {
				return affected, err
			}
			affected++
		}
	}
	return affected, nil
}

func (e *Executor) setProperty(bound graphlite.Value, property string, v graphlite.Value) error {
	switch bound.Kind {
	case graphlite.KindNode:
		before := bound.Node.Clone()
		bound.Node.Properties[property] = v
		if err := e.Cache.UpdateNode(bound.Node); err != nil {
			return err
		}
		return e.record(txn.UndoOperation{Kind: txn.UndoUpdateNode, NodeID: bound.Node.ID, NodeBefore: before})
	case graphlite.KindEdge:
		before := bound.Edge.Clone()
		bound.Edge.Properties[property] = v
		if err := e.Cache.UpdateEdge(bound.Edge); err != nil {
			return err
		}
		return e.record(txn.UndoOperation{Kind: txn.UndoUpdateEdge, EdgeID: bound.Edge.ID, EdgeBefore: before})
	}
	return nil
}

func (e *Executor) mergeWholeEntity(target, source graphlite.Value) error {
	if target.Kind == graphlite.KindNode && source.Kind == graphlite.KindNode {
		before := target.Node.Clone()
		for k, v := range source.Node.Properties {
			target.Node.Properties[k] = v
		}
		if err := e.Cache.UpdateNode(target.Node); err != nil {
			return err
		}
		return e.record(txn.UndoOperation{Kind: txn.UndoUpdateNode, NodeID: target.Node.ID, NodeBefore: before})
	}
	if target.Kind == graphlite.KindEdge && source.Kind == graphlite.KindEdge {
		before := target.Edge.Clone()
		for k, v := range source.Edge.Properties {
			target.Edge.Properties[k] = v
		}
		if err := e.Cache.UpdateEdge(target.Edge); err != nil {
			return err
		}
		return e.record(txn.UndoOperation{Kind: txn.UndoUpdateEdge, EdgeID: target.Edge.ID, EdgeBefore: before})
	}
	return nil
}

// applyRemove handles property, label and (degenerate) variable removal.
func (e *Executor) applyRemove(st *ast.DataStatement, row Row) (int, error) {
	affected := 0
	for _, item := range st.RemoveItems {
		bound, ok := row[item.Variable]
		if !ok {
			continue
		}
		switch {
		case item.Label != "":
			if bound.Kind != graphlite.KindNode {
				continue
			}
			before := bound.Node.Clone()
			bound.Node.RemoveLabel(item.Label)
			if err := e.Cache.UpdateNode(bound.Node); err != nil {
				return affected, err
			}
			if err := e.record(txn.UndoOperation{Kind: txn.UndoUpdateNode, NodeID: bound.Node.ID, NodeBefore: before}); err != nil {
				return affected, err
			}
			affected++
		case item.Property != "":
			if err := e.removeProperty(bound, item.Property); err != nil {
				return affected, err
			}
			affected++
		}
	}
	return affected, nil
}

func (e *Executor) removeProperty(bound graphlite.Value, property string) error {
	switch bound.Kind {
	case graphlite.KindNode:
		before := bound.Node.Clone()
		delete(bound.Node.Properties, property)
		if err := e.Cache.UpdateNode(bound.Node); err != nil {
			return err
		}
		return e.record(txn.UndoOperation{Kind: txn.UndoUpdateNode, NodeID: bound.Node.ID, NodeBefore: before})
	case graphlite.KindEdge:
		before := bound.Edge.Clone()
		delete(bound.Edge.Properties, property)
		if err := e.Cache.UpdateEdge(bound.Edge); err != nil {
			return err
		}
		return e.record(txn.UndoOperation{Kind: txn.UndoUpdateEdge, EdgeID: bound.Edge.ID, EdgeBefore: before})
	}
	return nil
}

// applyDelete removes each DELETE target (§4.6): an edge variable removes
// that edge; a node variable DETACH removes incident edges first (each
// logged as undo), bare DELETE fails if incident edges remain.
func (e *Executor) applyDelete(st *ast.DataStatement, row Row) (int, error) {
	affected := 0
	for _, varName := range st.DeleteVars {
		bound, ok := row[varName]
		if !ok {
			continue
		}
		switch bound.Kind {
		case graphlite.KindEdge:
			if err := e.removeEdge(bound.Edge); err != nil {
				return affected, err
			}
			affected++
		case graphlite.KindNode:
			incident := e.Cache.IncidentEdges(bound.Node.ID)
			if len(incident) > 0 {
				if !st.Detach {
					return affected, graphlite.NewError(graphlite.ErrExecution, "node %s has incident edges; DETACH DELETE required", bound.Node.ID)
				}
				for _, ed := range incident {
					if err := e.removeEdge(ed); err != nil {
						return affected, err
					}
					affected++
				}
			}
			if err := e.removeNode(bound.Node); err != nil {
				return affected, err
			}
			affected++
		}
	}
	return affected, nil
}

func (e *Executor) removeNode(nd *graphlite.Node) error {
	before := nd.Clone()
	if err := e.Cache.RemoveNode(nd.ID); err != nil {
		return err
	}
	return e.record(txn.UndoOperation{Kind: txn.UndoRemoveNode, NodeID: nd.ID, NodeBefore: before})
}

func (e *Executor) removeEdge(ed *graphlite.Edge) error {
	before := ed.Clone()
	if err := e.Cache.RemoveEdge(ed.ID); err != nil {
		return err
	}
	return e.record(txn.UndoOperation{Kind: txn.UndoRemoveEdge, EdgeID: ed.ID, EdgeBefore: before})
}
