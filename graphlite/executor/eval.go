package executor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mwatts/graphlite"
	"github.com/mwatts/graphlite/ast"
	"github.com/mwatts/graphlite/function"
)

// evaluator evaluates ast.Expression trees against a Row (§4.6). It holds a
// back-reference to the owning executor so EXISTS/IN/scalar subqueries can
// recursively re-enter the pipeline rather than needing a separate
// mini-interpreter.
type evaluator struct {
	registry *function.Registry
	params   map[string]graphlite.Value
	exec     *Executor
}

func newEvaluator(exec *Executor) *evaluator {
	return &evaluator{registry: exec.Registry, params: exec.Params, exec: exec}
}

// eval evaluates expr against row using WHERE/HAVING's NULL-as-false
// semantics only where the caller applies IsTruthy itself; eval always
// returns the raw (possibly NULL) Value.
func (ev *evaluator) eval(expr ast.Expression, row Row) (graphlite.Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return ev.evalLiteral(e)
	case *ast.Variable:
		if v, ok := row[e.Name]; ok {
			return v, nil
		}
		return graphlite.Null, nil
	case *ast.Parameter:
		if v, ok := ev.params[e.Name]; ok {
			return v, nil
		}
		return graphlite.Null, nil
	case *ast.PropertyAccess:
		return ev.evalPropertyAccess(e, row)
	case *ast.Binary:
		return ev.evalBinary(e, row)
	case *ast.Unary:
		return ev.evalUnary(e, row)
	case *ast.FunctionCall:
		return ev.evalCall(e, row)
	case *ast.Case:
		return ev.evalCase(e, row)
	case *ast.Cast:
		return ev.evalCast(e, row)
	case *ast.ArrayIndex:
		return ev.evalArrayIndex(e, row)
	case *ast.IsPredicate:
		return ev.evalIsPredicate(e, row)
	case *ast.QuantifiedComparison:
		return ev.evalQuantifiedComparison(e, row)
	case *ast.Subquery:
		return ev.evalScalarSubquery(e.Query, row)
	case *ast.ExistsSubquery:
		rows, err := ev.runSubquery(e.Query, row)
		if err != nil {
			return graphlite.Null, err
		}
		return graphlite.NewBool(len(rows) > 0), nil
	case *ast.NotExistsSubquery:
		rows, err := ev.runSubquery(e.Query, row)
		if err != nil {
			return graphlite.Null, err
		}
		return graphlite.NewBool(len(rows) == 0), nil
	case *ast.InSubquery:
		return ev.evalInSubquery(e.Expr, e.Query, row, false)
	case *ast.NotInSubquery:
		return ev.evalInSubquery(e.Expr, e.Query, row, true)
	case *ast.PathConstructor:
		return ev.evalPathConstructor(e, row)
	}
	return graphlite.Null, fmt.Errorf("executor: unsupported expression %T", expr)
}

func (ev *evaluator) evalLiteral(l *ast.Literal) (graphlite.Value, error) {
	switch l.Kind {
	case ast.LitString:
		return graphlite.NewString(l.Str), nil
	case ast.LitInt:
		return graphlite.NewNumber(float64(l.Int)), nil
	case ast.LitFloat:
		return graphlite.NewNumber(l.Float), nil
	case ast.LitBool:
		return graphlite.NewBool(l.Bool), nil
	case ast.LitNull:
		return graphlite.Null, nil
	case ast.LitList, ast.LitVector:
		out := make([]graphlite.Value, len(l.Elems))
		for i, el := range l.Elems {
			v, err := ev.eval(el, nil)
			if err != nil {
				return graphlite.Null, err
			}
			out[i] = v
		}
		return graphlite.NewList(out), nil
	case ast.LitDateTime:
		return function.ParseISODateTime(l.Str)
	}
	return graphlite.Null, fmt.Errorf("executor: unsupported literal kind %d", l.Kind)
}

func (ev *evaluator) evalPropertyAccess(e *ast.PropertyAccess, row Row) (graphlite.Value, error) {
	obj, err := ev.eval(e.Object, row)
	if err != nil {
		return graphlite.Null, err
	}
	switch obj.Kind {
	case graphlite.KindNode:
		if obj.Node == nil {
			return graphlite.Null, nil
		}
		if v, ok := obj.Node.Properties[e.Property]; ok {
			return v, nil
		}
		return graphlite.Null, nil
	case graphlite.KindEdge:
		if obj.Edge == nil {
			return graphlite.Null, nil
		}
		if v, ok := obj.Edge.Properties[e.Property]; ok {
			return v, nil
		}
		return graphlite.Null, nil
	}
	return graphlite.Null, nil
}

func (ev *evaluator) evalUnary(e *ast.Unary, row Row) (graphlite.Value, error) {
	v, err := ev.eval(e.Operand, row)
	if err != nil {
		return graphlite.Null, err
	}
	switch e.Op {
	case ast.OpNeg:
		f, ok := v.AsFloat()
		if !ok {
			return graphlite.Null, nil
		}
		return graphlite.NewNumber(-f), nil
	case ast.OpNot:
		if v.IsNull() {
			return graphlite.Null, nil
		}
		return graphlite.NewBool(!v.IsTruthy()), nil
	case ast.OpIsNullUnary:
		return graphlite.NewBool(v.IsNull()), nil
	}
	return graphlite.Null, fmt.Errorf("executor: unsupported unary op %d", e.Op)
}

func (ev *evaluator) evalBinary(e *ast.Binary, row Row) (graphlite.Value, error) {
	// AND/OR short-circuit over two-valued (NULL-as-false) truthiness, per
	// §4.6's WHERE/HAVING note, applied uniformly here since the grammar
	// only uses AND/OR in predicate position.
	if e.Op == ast.OpAnd {
		l, err := ev.eval(e.Left, row)
		if err != nil {
			return graphlite.Null, err
		}
		if !l.IsTruthy() {
			return graphlite.NewBool(false), nil
		}
		r, err := ev.eval(e.Right, row)
		if err != nil {
			return graphlite.Null, err
		}
		return graphlite.NewBool(r.IsTruthy()), nil
	}
	if e.Op == ast.OpOr {
		l, err := ev.eval(e.Left, row)
		if err != nil {
			return graphlite.Null, err
		}
		if l.IsTruthy() {
			return graphlite.NewBool(true), nil
		}
		r, err := ev.eval(e.Right, row)
		if err != nil {
			return graphlite.Null, err
		}
		return graphlite.NewBool(r.IsTruthy()), nil
	}

	l, err := ev.eval(e.Left, row)
	if err != nil {
		return graphlite.Null, err
	}
	r, err := ev.eval(e.Right, row)
	if err != nil {
		return graphlite.Null, err
	}

	switch e.Op {
	case ast.OpXor:
		return graphlite.NewBool(l.IsTruthy() != r.IsTruthy()), nil
	case ast.OpEq:
		if l.IsNull() || r.IsNull() {
			return graphlite.Null, nil
		}
		return graphlite.NewBool(l.Equal(r)), nil
	case ast.OpNotEq:
		if l.IsNull() || r.IsNull() {
			return graphlite.Null, nil
		}
		return graphlite.NewBool(!l.Equal(r)), nil
	case ast.OpLt, ast.OpLtEq, ast.OpGt, ast.OpGtEq:
		if l.IsNull() || r.IsNull() {
			return graphlite.Null, nil
		}
		switch e.Op {
		case ast.OpLt:
			return graphlite.NewBool(l.Less(r)), nil
		case ast.OpLtEq:
			return graphlite.NewBool(l.Less(r) || l.Equal(r)), nil
		case ast.OpGt:
			return graphlite.NewBool(r.Less(l)), nil
		default:
			return graphlite.NewBool(r.Less(l) || l.Equal(r)), nil
		}
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod, ast.OpPow:
		return evalArith(e.Op, l, r)
	case ast.OpConcat:
		if l.IsNull() || r.IsNull() {
			return graphlite.Null, nil
		}
		return graphlite.NewString(l.String() + r.String()), nil
	case ast.OpIn, ast.OpNotIn:
		if r.Kind != graphlite.KindList {
			return graphlite.Null, nil
		}
		found := false
		for _, item := range r.List {
			if l.Equal(item) {
				found = true
				break
			}
		}
		if e.Op == ast.OpNotIn {
			found = !found
		}
		return graphlite.NewBool(found), nil
	case ast.OpContains:
		return graphlite.NewBool(strings.Contains(l.String(), r.String())), nil
	case ast.OpStartsWith:
		return graphlite.NewBool(strings.HasPrefix(l.String(), r.String())), nil
	case ast.OpEndsWith:
		return graphlite.NewBool(strings.HasSuffix(l.String(), r.String())), nil
	case ast.OpLike:
		return graphlite.NewBool(matchLike(l.String(), r.String())), nil
	case ast.OpMatches, ast.OpRegexMatch:
		re, err := regexp.Compile(r.String())
		if err != nil {
			return graphlite.Null, fmt.Errorf("executor: invalid regex %q: %w", r.String(), err)
		}
		return graphlite.NewBool(re.MatchString(l.String())), nil
	case ast.OpFuzzyEq:
		return graphlite.NewBool(strings.EqualFold(strings.TrimSpace(l.String()), strings.TrimSpace(r.String()))), nil
	case ast.OpWithin:
		return evalWithin(l, r)
	}
	return graphlite.Null, fmt.Errorf("executor: unsupported binary op %d", e.Op)
}

func evalArith(op ast.BinaryOp, l, r graphlite.Value) (graphlite.Value, error) {
	lf, lok := l.AsFloat()
	rf, rok := r.AsFloat()
	if !lok || !rok {
		return graphlite.Null, nil
	}
	switch op {
	case ast.OpAdd:
		return graphlite.NewNumber(lf + rf), nil
	case ast.OpSub:
		return graphlite.NewNumber(lf - rf), nil
	case ast.OpMul:
		return graphlite.NewNumber(lf * rf), nil
	case ast.OpDiv:
		if rf == 0 {
			return graphlite.Null, fmt.Errorf("executor: division by zero")
		}
		return graphlite.NewNumber(lf / rf), nil
	case ast.OpMod:
		if rf == 0 {
			return graphlite.Null, fmt.Errorf("executor: modulo by zero")
		}
		return graphlite.NewNumber(float64(int64(lf) % int64(rf))), nil
	case ast.OpPow:
		out := 1.0
		for i := 0; i < int(rf); i++ {
			out *= lf
		}
		return graphlite.NewNumber(out), nil
	}
	return graphlite.Null, fmt.Errorf("executor: unsupported arithmetic op %d", op)
}

func evalWithin(l, r graphlite.Value) (graphlite.Value, error) {
	if r.Kind != graphlite.KindTimeWindow {
		return graphlite.Null, nil
	}
	inst := l.DateTime
	return graphlite.NewBool(!inst.Before(r.WindowStart) && !inst.After(r.WindowEnd)), nil
}

// matchLike implements SQL-style LIKE with % and _ wildcards.
func matchLike(s, pattern string) bool {
	re := "^"
	for _, r := range pattern {
		switch r {
		case '%':
			re += ".*"
		case '_':
			re += "."
		default:
			re += regexp.QuoteMeta(string(r))
		}
	}
	re += "$"
	matched, err := regexp.MatchString(re, s)
	return err == nil && matched
}

func (ev *evaluator) evalCall(e *ast.FunctionCall, row Row) (graphlite.Value, error) {
	fn, ok := ev.registry.Lookup(e.Name)
	if !ok {
		return graphlite.Null, fmt.Errorf("executor: unknown function %q", e.Name)
	}
	if fn.IsAggregate() {
		return graphlite.Null, fmt.Errorf("executor: aggregate function %s used outside grouping context", e.Name)
	}
	args := make([]graphlite.Value, len(e.Args))
	for i, a := range e.Args {
		v, err := ev.eval(a, row)
		if err != nil {
			return graphlite.Null, err
		}
		args[i] = v
	}
	return fn.Execute(&function.Context{Args: args})
}

func (ev *evaluator) evalCase(e *ast.Case, row Row) (graphlite.Value, error) {
	var operand graphlite.Value
	hasOperand := e.Operand != nil
	if hasOperand {
		v, err := ev.eval(e.Operand, row)
		if err != nil {
			return graphlite.Null, err
		}
		operand = v
	}
	for _, br := range e.Whens {
		if hasOperand {
			w, err := ev.eval(br.When, row)
			if err != nil {
				return graphlite.Null, err
			}
			if !operand.Equal(w) {
				continue
			}
		} else {
			w, err := ev.eval(br.When, row)
			if err != nil {
				return graphlite.Null, err
			}
			if !w.IsTruthy() {
				continue
			}
		}
		return ev.eval(br.Then, row)
	}
	if e.Else != nil {
		return ev.eval(e.Else, row)
	}
	return graphlite.Null, nil
}

func (ev *evaluator) evalCast(e *ast.Cast, row Row) (graphlite.Value, error) {
	v, err := ev.eval(e.Value, row)
	if err != nil {
		return graphlite.Null, err
	}
	switch e.Target.Kind {
	case graphlite.TypeString:
		return graphlite.NewString(v.String()), nil
	case graphlite.TypeBoolean:
		return graphlite.NewBool(v.IsTruthy()), nil
	default:
		if e.Target.IsNumeric() {
			if f, ok := v.AsFloat(); ok {
				return graphlite.NewNumber(f), nil
			}
			return graphlite.Null, nil
		}
	}
	return v, nil
}

func (ev *evaluator) evalArrayIndex(e *ast.ArrayIndex, row Row) (graphlite.Value, error) {
	coll, err := ev.eval(e.Collection, row)
	if err != nil {
		return graphlite.Null, err
	}
	idx, err := ev.eval(e.Index, row)
	if err != nil {
		return graphlite.Null, err
	}
	if coll.Kind != graphlite.KindList {
		return graphlite.Null, nil
	}
	f, ok := idx.AsFloat()
	if !ok {
		return graphlite.Null, nil
	}
	i := int(f)
	if i < 0 || i >= len(coll.List) {
		return graphlite.Null, nil
	}
	return coll.List[i], nil
}

func (ev *evaluator) evalIsPredicate(e *ast.IsPredicate, row Row) (graphlite.Value, error) {
	v, err := ev.eval(e.Operand, row)
	if err != nil {
		return graphlite.Null, err
	}
	switch e.Kind {
	case ast.IsNull:
		return graphlite.NewBool(v.IsNull()), nil
	case ast.IsNotNull:
		return graphlite.NewBool(!v.IsNull()), nil
	case ast.IsTrue:
		return graphlite.NewBool(v.Kind == graphlite.KindBoolean && v.Bool), nil
	case ast.IsNotTrue:
		return graphlite.NewBool(!(v.Kind == graphlite.KindBoolean && v.Bool)), nil
	case ast.IsFalse:
		return graphlite.NewBool(v.Kind == graphlite.KindBoolean && !v.Bool), nil
	case ast.IsNotFalse:
		return graphlite.NewBool(!(v.Kind == graphlite.KindBoolean && !v.Bool)), nil
	}
	return graphlite.Null, fmt.Errorf("executor: unsupported IS predicate kind %d", e.Kind)
}

func (ev *evaluator) evalQuantifiedComparison(e *ast.QuantifiedComparison, row Row) (graphlite.Value, error) {
	l, err := ev.eval(e.Left, row)
	if err != nil {
		return graphlite.Null, err
	}
	coll, err := ev.eval(e.Collection, row)
	if err != nil {
		return graphlite.Null, err
	}
	if coll.Kind != graphlite.KindList {
		return graphlite.Null, nil
	}
	cmp := func(item graphlite.Value) bool {
		switch e.Op {
		case ast.OpEq:
			return l.Equal(item)
		case ast.OpNotEq:
			return !l.Equal(item)
		case ast.OpLt:
			return l.Less(item)
		case ast.OpLtEq:
			return l.Less(item) || l.Equal(item)
		case ast.OpGt:
			return item.Less(l)
		case ast.OpGtEq:
			return item.Less(l) || l.Equal(item)
		}
		return false
	}
	switch e.Kind {
	case ast.QuantAll:
		for _, item := range coll.List {
			if !cmp(item) {
				return graphlite.NewBool(false), nil
			}
		}
		return graphlite.NewBool(true), nil
	default: // ANY / SOME
		for _, item := range coll.List {
			if cmp(item) {
				return graphlite.NewBool(true), nil
			}
		}
		return graphlite.NewBool(false), nil
	}
}

func (ev *evaluator) evalPathConstructor(e *ast.PathConstructor, row Row) (graphlite.Value, error) {
	out := make([]graphlite.Value, len(e.Elements))
	for i, el := range e.Elements {
		v, err := ev.eval(el, row)
		if err != nil {
			return graphlite.Null, err
		}
		out[i] = v
	}
	return graphlite.NewList(out), nil
}

// runSubquery re-enters the pipeline for a nested query, seeding every
// produced row with the outer row's bindings so a correlated predicate can
// see them (§4.6: "subquery evaluation via recursive re-entry").
func (ev *evaluator) runSubquery(q ast.Query, outer Row) ([]Row, error) {
	return ev.exec.runCorrelated(q, outer)
}

func (ev *evaluator) evalScalarSubquery(q ast.Query, outer Row) (graphlite.Value, error) {
	rows, err := ev.runSubquery(q, outer)
	if err != nil {
		return graphlite.Null, err
	}
	if len(rows) == 0 {
		return graphlite.Null, nil
	}
	for _, v := range rows[0] {
		return v, nil
	}
	return graphlite.Null, nil
}

func (ev *evaluator) evalInSubquery(expr ast.Expression, q ast.Query, row Row, negate bool) (graphlite.Value, error) {
	v, err := ev.eval(expr, row)
	if err != nil {
		return graphlite.Null, err
	}
	rows, err := ev.runSubquery(q, row)
	if err != nil {
		return graphlite.Null, err
	}
	found := false
	for _, r := range rows {
		for _, rv := range r {
			if v.Equal(rv) {
				found = true
			}
			break
		}
		if found {
			break
		}
	}
	if negate {
		found = !found
	}
	return graphlite.NewBool(found), nil
}
