// Package graphlite provides the shared runtime types for the GraphLite
// query engine: values, nodes, edges and the in-memory graph cache contract
// consumed by the lexer/parser/planner/executor pipeline in the sub-packages.
package graphlite

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBoolean
	KindDateTime
	KindDateTimeFixedOffset
	KindDateTimeNamedTz
	KindTimeWindow
	KindVector
	KindList
	KindNode
	KindEdge
)

// Value is the tagged runtime value that flows through expression evaluation
// and result rows. Only one of the fields is meaningful, selected by Kind.
type Value struct {
	Kind ValueKind

	Str  string
	Num  float64
	Bool bool

	// DateTime is always stored normalized to UTC. Offset/TzName annotate the
	// original timezone the literal was authored in, used by DATE_ADD/DATE_SUB
	// to perform wall-clock arithmetic in the right zone.
	DateTime time.Time
	Offset   time.Duration // valid when Kind == KindDateTimeFixedOffset
	TzName   string        // valid when Kind == KindDateTimeNamedTz

	WindowStart time.Time // valid when Kind == KindTimeWindow
	WindowEnd   time.Time

	Vector []float32
	List   []Value

	Node *Node
	Edge *Edge
}

// Null is the canonical null value.
var Null = Value{Kind: KindNull}

func NewString(s string) Value  { return Value{Kind: KindString, Str: s} }
func NewNumber(f float64) Value { return Value{Kind: KindNumber, Num: f} }
func NewBool(b bool) Value      { return Value{Kind: KindBoolean, Bool: b} }
func NewNode(n *Node) Value     { return Value{Kind: KindNode, Node: n} }
func NewEdge(e *Edge) Value     { return Value{Kind: KindEdge, Edge: e} }
func NewList(vs []Value) Value  { return Value{Kind: KindList, List: vs} }
func NewVector(v []float32) Value {
	return Value{Kind: KindVector, Vector: v}
}

// NewDateTime wraps a UTC instant with no timezone annotation.
func NewDateTime(t time.Time) Value {
	return Value{Kind: KindDateTime, DateTime: t.UTC()}
}

// NewDateTimeFixedOffset wraps a UTC instant annotated with a fixed offset
// (e.g. "+05:30"); DST arithmetic does not apply to fixed offsets.
func NewDateTimeFixedOffset(t time.Time, offset time.Duration) Value {
	return Value{Kind: KindDateTimeFixedOffset, DateTime: t.UTC(), Offset: offset}
}

// NewDateTimeNamedTz wraps a UTC instant annotated with an IANA zone name;
// DATE_ADD/DATE_SUB in this zone must account for DST transitions.
func NewDateTimeNamedTz(t time.Time, zone string) Value {
	return Value{Kind: KindDateTimeNamedTz, DateTime: t.UTC(), TzName: zone}
}

func NewTimeWindow(start, end time.Time) Value {
	return Value{Kind: KindTimeWindow, WindowStart: start.UTC(), WindowEnd: end.UTC()}
}

func (v Value) IsNull() bool { return v.Kind == KindNull }

// IsTruthy applies WHERE/HAVING NULL-as-false semantics: NULL and a boolean
// false are both non-matching; anything else is evaluated as a predicate
// only when it is already boolean.
func (v Value) IsTruthy() bool {
	if v.Kind == KindNull {
		return false
	}
	if v.Kind == KindBoolean {
		return v.Bool
	}
	return false
}

// AsFloat returns the numeric reading of the value for arithmetic promotion.
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true
	case KindBoolean:
		if v.Bool {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindString:
		return v.Str
	case KindNumber:
		if v.Num == math.Trunc(v.Num) && !math.IsInf(v.Num, 0) {
			return fmt.Sprintf("%d", int64(v.Num))
		}
		return fmt.Sprintf("%g", v.Num)
	case KindBoolean:
		return fmt.Sprintf("%t", v.Bool)
	case KindDateTime:
		return v.DateTime.Format(time.RFC3339)
	case KindDateTimeFixedOffset:
		return v.DateTime.Add(v.Offset).Format("2006-01-02T15:04:05") + formatOffset(v.Offset)
	case KindDateTimeNamedTz:
		return v.DateTime.Format(time.RFC3339) + "[" + v.TzName + "]"
	case KindTimeWindow:
		return fmt.Sprintf("TIME_WINDOW(%s, %s)", v.WindowStart.Format(time.RFC3339), v.WindowEnd.Format(time.RFC3339))
	case KindVector:
		return fmt.Sprintf("%v", v.Vector)
	case KindList:
		out := "["
		for i, e := range v.List {
			if i > 0 {
				out += ", "
			}
			out += e.String()
		}
		return out + "]"
	case KindNode:
		return fmt.Sprintf("(%s)", v.Node.ID)
	case KindEdge:
		return fmt.Sprintf("[%s]", v.Edge.ID)
	}
	return "?"
}

func formatOffset(d time.Duration) string {
	sign := "+"
	if d < 0 {
		sign = "-"
		d = -d
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%s%02d:%02d", sign, h, m)
}

// Equal implements value equality used by comparisons, DISTINCT and GROUP BY
// keying. Two nulls are not equal to each other under GQL's three-state
// equality, but grouping keys use Equal for bucketing, matching the
// executor's documented "NULL groups with NULL" convention for GROUP BY.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		// allow cross Number/Boolean comparisons used by promotion rules
		if vf, ok := v.AsFloat(); ok {
			if of, ok2 := o.AsFloat(); ok2 {
				return vf == of
			}
		}
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindString:
		return v.Str == o.Str
	case KindNumber:
		return v.Num == o.Num
	case KindBoolean:
		return v.Bool == o.Bool
	case KindDateTime, KindDateTimeFixedOffset, KindDateTimeNamedTz:
		return v.DateTime.Equal(o.DateTime)
	case KindTimeWindow:
		return v.WindowStart.Equal(o.WindowStart) && v.WindowEnd.Equal(o.WindowEnd)
	case KindVector:
		if len(v.Vector) != len(o.Vector) {
			return false
		}
		for i := range v.Vector {
			if v.Vector[i] != o.Vector[i] {
				return false
			}
		}
		return true
	case KindNode:
		return v.Node != nil && o.Node != nil && v.Node.ID == o.Node.ID
	case KindEdge:
		return v.Edge != nil && o.Edge != nil && v.Edge.ID == o.Edge.ID
	case KindList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Less provides a total order used by ORDER BY; nulls sort according to the
// caller-selected NULLS FIRST/LAST policy, applied one level up in the
// executor's sort comparator.
func (v Value) Less(o Value) bool {
	if vf, ok := v.AsFloat(); ok {
		if of, ok2 := o.AsFloat(); ok2 {
			return vf < of
		}
	}
	if v.Kind == KindString && o.Kind == KindString {
		return v.Str < o.Str
	}
	if (v.Kind == KindDateTime || v.Kind == KindDateTimeFixedOffset || v.Kind == KindDateTimeNamedTz) &&
		(o.Kind == KindDateTime || o.Kind == KindDateTimeFixedOffset || o.Kind == KindDateTimeNamedTz) {
		return v.DateTime.Before(o.DateTime)
	}
	return v.String() < o.String()
}

// SortValues sorts a slice of values in place using Less, nulls last.
func SortValues(vs []Value, desc bool) {
	sort.SliceStable(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		if a.IsNull() != b.IsNull() {
			return b.IsNull()
		}
		if desc {
			return b.Less(a)
		}
		return a.Less(b)
	})
}
