package ast

// PathType qualifies the repeated-vertex/edge policy of a path pattern.
type PathType uint8

const (
	PathWalk PathType = iota // default: anything goes
	PathTrail
	PathSimple
	PathAcyclic
)

// Direction is the edge direction in a pattern.
type Direction uint8

const (
	DirOutgoing Direction = iota
	DirIncoming
	DirBoth
	DirUndirected
)

// QuantifierKind tags an edge repetition spec.
type QuantifierKind uint8

const (
	QuantNone QuantifierKind = iota
	QuantOptional                // ?
	QuantExact                   // {n}
	QuantRange                   // {m,n}
	QuantAtLeast                 // {n,}
	QuantAtMost                  // {,n}
)

// Quantifier is a repetition spec on an edge element.
type Quantifier struct {
	Kind QuantifierKind
	Min  int
	Max  int // -1 when unbounded
}

// PropertyMap is an ordered-irrelevant set of property-name -> expression
// pairs written inline in a pattern ({k: v, ...}).
type PropertyMap struct {
	Entries []PropertyEntry
}

type PropertyEntry struct {
	Key   string
	Value Expression
}

// NodeElement is a node position in a path pattern: (var:Label {k:v}).
type NodeElement struct {
	Variable   string
	Labels     []string
	Properties *PropertyMap
}

// EdgeElement is an edge position in a path pattern: -[var:Label {k:v}]->.
type EdgeElement struct {
	Variable   string
	Labels     []string
	Properties *PropertyMap
	Direction  Direction
	Quantifier *Quantifier
}

// PatternElement alternates Node/Edge; exactly one of Node/Edge is set.
type PatternElement struct {
	Node *NodeElement
	Edge *EdgeElement
}

// PathPattern is one comma-separated pattern in a MATCH clause, or a nested
// pattern used in an expression/path-constructor position.
type PathPattern struct {
	Type     PathType
	Variable string // path variable, "" if unbound
	Elements []PatternElement // alternating Node, Edge, Node, Edge, ..., Node
}

// Variables returns every node/edge variable bound by this pattern, in
// pattern order, used by scope resolution and the connectivity optimizer.
func (p *PathPattern) Variables() []string {
	var out []string
	for _, el := range p.Elements {
		if el.Node != nil && el.Node.Variable != "" {
			out = append(out, el.Node.Variable)
		}
		if el.Edge != nil && el.Edge.Variable != "" {
			out = append(out, el.Edge.Variable)
		}
	}
	return out
}

// MatchClause is one MATCH with its comma-separated patterns.
type MatchClause struct {
	Patterns []*PathPattern
	Optional bool
}
