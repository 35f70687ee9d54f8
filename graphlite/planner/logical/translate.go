package logical

import (
	"fmt"

	"github.com/mwatts/graphlite/ast"
)

// maxConnectivityPatterns caps the pattern-connectivity optimizer; larger
// MATCH clauses fall back to a naive left-deep cross-join pipeline (§4.4).
const maxConnectivityPatterns = 10

// Plan translates a validated ast.Query into a logical Plan.
func Plan(q ast.Query) (*Plan, error) {
	root, vars, err := translateQuery(q)
	if err != nil {
		return nil, err
	}
	return newPlan(root, vars), nil
}

func translateQuery(q ast.Query) (Node, map[string]VariableInfo, error) {
	switch qq := q.(type) {
	case *ast.Basic:
		return translateBasic(qq)
	case *ast.SetOperation:
		left, lv, err := translateQuery(qq.Left)
		if err != nil {
			return nil, nil, err
		}
		right, rv, err := translateQuery(qq.Right)
		if err != nil {
			return nil, nil, err
		}
		vars := map[string]VariableInfo{}
		mergeVars(vars, lv)
		mergeVars(vars, rv)
		kind := SetOpUnion
		switch qq.Kind {
		case ast.SetIntersect:
			kind = SetOpIntersect
		case ast.SetExcept:
			kind = SetOpExcept
		}
		return &SetOp{Kind: kind, All: qq.All, Left: left, Right: right}, vars, nil
	case *ast.Limited:
		input, vars, err := translateQuery(qq.Input)
		if err != nil {
			return nil, nil, err
		}
		node := Node(input)
		if len(qq.OrderBy) > 0 {
			node = &Sort{Input: node, Items: qq.OrderBy}
		}
		if qq.Limit != nil || qq.Offset != nil {
			node = &Limit{Input: node, Count: qq.Limit, Offset: qq.Offset}
		}
		return node, vars, nil
	case *ast.WithQuery:
		return translateWithQuery(qq)
	case *ast.Unwind:
		return translateChain(qq, &SingleRow{}, map[string]VariableInfo{})
	case *ast.Let:
		return translateChain(qq, &SingleRow{}, map[string]VariableInfo{})
	case *ast.For:
		return translateChain(qq, &SingleRow{}, map[string]VariableInfo{})
	case *ast.Filter:
		return translateChain(qq, &SingleRow{}, map[string]VariableInfo{})
	case *ast.Return:
		return translateReturn(&SingleRow{}, qq.Items, qq.Distinct, nil, nil, qq.OrderBy, qq.Limit, qq.Offset, map[string]VariableInfo{})
	case *ast.MutationPipeline:
		return translateDataStatement(qq.Statement, nil, map[string]VariableInfo{})
	}
	return nil, nil, fmt.Errorf("logical: unsupported query form %T", q)
}

// translateChain walks the Unwind/Let/For/Filter/Return linear-continuation
// forms, threading input forward and recursing into Next.
func translateChain(q ast.Query, input Node, vars map[string]VariableInfo) (Node, map[string]VariableInfo, error) {
	switch qq := q.(type) {
	case *ast.Unwind:
		node := &Unwind{Input: input, Expr: qq.Clause.Expr, Variable: qq.Clause.Variable}
		return translateChain(qq.Next, node, vars)
	case *ast.Let:
		node := &LetBinding{Input: input, Variable: qq.Variable, Value: qq.Value}
		return translateChain(qq.Next, node, vars)
	case *ast.For:
		node := &ForEach{Input: input, Variable: qq.Variable, Collection: qq.Collection}
		return translateChain(qq.Next, node, vars)
	case *ast.Filter:
		node := &Filter{Input: input, Predicate: qq.Predicate}
		return translateChain(qq.Next, node, vars)
	case *ast.Return:
		return translateReturn(input, qq.Items, qq.Distinct, nil, nil, qq.OrderBy, qq.Limit, qq.Offset, vars)
	case nil:
		return input, vars, nil
	}
	return nil, nil, fmt.Errorf("logical: unsupported chain continuation %T", q)
}

func translateBasic(b *ast.Basic) (Node, map[string]VariableInfo, error) {
	var input Node
	vars := map[string]VariableInfo{}

	if b.Match != nil && len(b.Match.Patterns) > 0 {
		matched, mvars, err := translateMatch(b.Match)
		if err != nil {
			return nil, nil, err
		}
		input = matched
		mergeVars(vars, mvars)
	} else {
		input = &SingleRow{}
	}

	if b.Where != nil {
		input = &Filter{Input: input, Predicate: b.Where}
	}

	return translateReturn(input, b.Return, b.Distinct, b.GroupBy, b.Having, b.OrderBy, b.Limit, b.Offset, vars)
}

// translateReturn applies §4.4's RETURN/GROUP BY/HAVING translation: an
// aggregate anywhere in RETURN implies an Aggregate node; if RETURN mixes
// aggregate and non-aggregate expressions with no explicit GROUP BY, the
// non-aggregate expressions become implicit grouping keys.
func translateReturn(input Node, items []ast.ReturnItem, distinct bool, groupBy []ast.Expression, having ast.Expression, orderBy []ast.OrderItem, limit, offset ast.Expression, vars map[string]VariableInfo) (Node, map[string]VariableInfo, error) {
	hasAggregate := false
	var nonAggregate []ast.Expression
	for _, it := range items {
		if containsAggregateCall(it.Expr) {
			hasAggregate = true
		} else {
			nonAggregate = append(nonAggregate, it.Expr)
		}
	}

	node := input
	if hasAggregate {
		keys := groupBy
		if len(keys) == 0 {
			keys = nonAggregate
		}
		node = &Aggregate{Input: node, GroupBy: keys, Aggregates: items}
		if having != nil {
			node = &Having{Input: node, Predicate: having}
		}
		node = &Project{Input: node, Items: passthroughItems(items), Distinct: distinct}
	} else {
		node = &Project{Input: node, Items: items, Distinct: distinct}
	}

	if len(orderBy) > 0 {
		node = &Sort{Input: node, Items: orderBy}
	}
	if limit != nil || offset != nil {
		node = &Limit{Input: node, Count: limit, Offset: offset}
	}
	return node, vars, nil
}

// passthroughItems turns RETURN items into a projection over an Aggregate
// node's already-computed columns: each item now refers to its own alias
// (or original name) rather than re-evaluating the aggregate expression.
func passthroughItems(items []ast.ReturnItem) []ast.ReturnItem {
	out := make([]ast.ReturnItem, len(items))
	for i, it := range items {
		name := it.Alias
		if name == "" {
			if v, ok := it.Expr.(*ast.Variable); ok {
				name = v.Name
			} else {
				name = fmt.Sprintf("expr_%d", i)
			}
		}
		out[i] = ast.ReturnItem{Expr: &ast.Variable{Name: name}, Alias: it.Alias}
	}
	return out
}

func containsAggregateCall(e ast.Expression) bool {
	found := false
	walkExpr(e, func(ex ast.Expression) {
		if fc, ok := ex.(*ast.FunctionCall); ok && isAggregateName(fc.Name) {
			found = true
		}
	})
	return found
}

func isAggregateName(name string) bool {
	switch name {
	case "COUNT", "SUM", "AVG", "MIN", "MAX", "COLLECT",
		"count", "sum", "avg", "min", "max", "collect":
		return true
	}
	return false
}

func translateWithQuery(wq *ast.WithQuery) (Node, map[string]VariableInfo, error) {
	vars := map[string]VariableInfo{}
	var input Node = &SingleRow{}
	for i := range wq.Segments {
		seg := &wq.Segments[i]
		if seg.Match != nil && len(seg.Match.Patterns) > 0 {
			matched, mvars, err := translateMatch(seg.Match)
			if err != nil {
				return nil, nil, err
			}
			input = matched
			mergeVars(vars, mvars)
		}
		if seg.Where != nil {
			input = &Filter{Input: input, Predicate: seg.Where}
		}
		if seg.Unwind != nil {
			input = &Unwind{Input: input, Expr: seg.Unwind.Expr, Variable: seg.Unwind.Variable}
			if seg.UnwindWhere != nil {
				input = &Filter{Input: input, Predicate: seg.UnwindWhere}
			}
		}
	}
	// The WITH pipeline's grouping/aggregation semantics (§4.6) are handled
	// specially by the executor rather than the generic Aggregate node, so
	// the whole segment list rides along as an opaque container.
	node := &WithQueryNode{Segments: wq.Segments, Final: wq.Final, Input: input}
	if wq.Final == nil {
		return node, vars, nil
	}
	return translateReturn(node, wq.Final.Return, wq.Final.Distinct, wq.Final.GroupBy, wq.Final.Having, wq.Final.OrderBy, wq.Final.Limit, wq.Final.Offset, vars)
}

func translateDataStatement(st *ast.DataStatement, input Node, vars map[string]VariableInfo) (Node, map[string]VariableInfo, error) {
	if input == nil {
		if len(st.Match) > 0 {
			matched, mvars, err := translateMatch(&ast.MatchClause{Patterns: st.Match})
			if err != nil {
				return nil, nil, err
			}
			input = matched
			mergeVars(vars, mvars)
		} else {
			input = &SingleRow{}
		}
	}
	if st.Where != nil {
		input = &Filter{Input: input, Predicate: st.Where}
	}

	kind := MutationUpdate
	switch st.Kind {
	case ast.DataInsert:
		kind = MutationInsert
	case ast.DataDelete:
		kind = MutationDelete
	}
	return &Mutation{Kind: kind, Input: input, Statement: st}, vars, nil
}

// walkExpr mirrors the validator's generic recursive expression visitor; a
// second, independent copy is kept here deliberately rather than importing
// the validator package, which would create an unwanted layering edge from
// planning back onto a QL-pipeline stage logically upstream of it.
func walkExpr(e ast.Expression, visit func(ast.Expression)) {
	if e == nil {
		return
	}
	visit(e)
	switch ex := e.(type) {
	case *ast.Binary:
		walkExpr(ex.Left, visit)
		walkExpr(ex.Right, visit)
	case *ast.Unary:
		walkExpr(ex.Operand, visit)
	case *ast.FunctionCall:
		for _, a := range ex.Args {
			walkExpr(a, visit)
		}
	case *ast.PropertyAccess:
		walkExpr(ex.Object, visit)
	case *ast.Case:
		walkExpr(ex.Operand, visit)
		for _, w := range ex.Whens {
			walkExpr(w.When, visit)
			walkExpr(w.Then, visit)
		}
		walkExpr(ex.Else, visit)
	case *ast.PathConstructor:
		for _, el := range ex.Elements {
			walkExpr(el, visit)
		}
	case *ast.Cast:
		walkExpr(ex.Value, visit)
	case *ast.QuantifiedComparison:
		walkExpr(ex.Left, visit)
		walkExpr(ex.Collection, visit)
	case *ast.IsPredicate:
		walkExpr(ex.Operand, visit)
	case *ast.ArrayIndex:
		walkExpr(ex.Collection, visit)
		walkExpr(ex.Index, visit)
	}
}
