package executor

import (
	"fmt"

	"github.com/mwatts/graphlite"
	"github.com/mwatts/graphlite/ast"
	"github.com/mwatts/graphlite/function"
	"github.com/mwatts/graphlite/planner/logical"
	"github.com/mwatts/graphlite/planner/physical"
)

// runAggregate implements the logical.Aggregate node: group input rows by
// GroupBy, then evaluate every item in Aggregates once per group, producing
// one output Row per group keyed by each item's projected name. A
// non-aggregate item's value comes from the group's representative (first)
// row — valid because the RETURN/GROUP BY translation requires every
// non-aggregate RETURN item to itself be a grouping key (§4.4).
func (e *Executor) runAggregate(n *physical.Node, seed Row, ev *evaluator) ([]string, []Row, error) {
	agg, ok := n.Logical.(*logical.Aggregate)
	if !ok {
		return nil, nil, fmt.Errorf("executor: Aggregate physical node carries %T", n.Logical)
	}
	_, rows, err := e.runNode(n.Children[0], seed)
	if err != nil {
		return nil, nil, err
	}

	groups := map[string][]Row{}
	var order []string
	for _, row := range rows {
		key, err := groupKey(agg.GroupBy, row, ev)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], row)
	}
	if len(groups) == 0 && len(agg.GroupBy) == 0 {
		// Zero input rows with no grouping key still yields one group, so
		// COUNT(*) over an empty match reports 0 rather than no rows.
		order = []string{""}
		groups[""] = nil
	}

	cols := make([]string, len(agg.Aggregates))
	out := make([]Row, 0, len(order))
	for _, key := range order {
		groupRows := groups[key]
		result := Row{}
		for i, item := range agg.Aggregates {
			name := itemName(item, i)
			cols[i] = name
			if call, isAgg := aggregateCall(item.Expr, e.Registry); isAgg {
				v, err := evalAggregateCall(call, groupRows, ev, e.Registry)
				if err != nil {
					return nil, nil, err
				}
				result[name] = v
				continue
			}
			var rep Row
			if len(groupRows) > 0 {
				rep = groupRows[0]
			}
			v, err := ev.eval(item.Expr, rep)
			if err != nil {
				return nil, nil, err
			}
			result[name] = v
		}
		out = append(out, result)
	}
	return cols, out, nil
}

func groupKey(exprs []ast.Expression, row Row, ev *evaluator) (string, error) {
	key := ""
	for _, expr := range exprs {
		v, err := ev.eval(expr, row)
		if err != nil {
			return "", err
		}
		key += v.String() + "\x1f"
	}
	return key, nil
}

// aggregateCall reports whether expr is a direct call to a registered
// aggregate function — the only shape the RETURN/GROUP BY translation
// produces for an aggregate RETURN item.
func aggregateCall(expr ast.Expression, registry *function.Registry) (*ast.FunctionCall, bool) {
	call, ok := expr.(*ast.FunctionCall)
	if !ok {
		return nil, false
	}
	fn, ok := registry.Lookup(call.Name)
	if !ok || !fn.IsAggregate() {
		return nil, false
	}
	return call, true
}

func evalAggregateCall(call *ast.FunctionCall, rows []Row, ev *evaluator, registry *function.Registry) (graphlite.Value, error) {
	fn, _ := registry.Lookup(call.Name)
	if call.Star {
		return fn.Execute(&function.Context{Star: true, Column: make([]graphlite.Value, len(rows))})
	}
	var arg ast.Expression
	if len(call.Args) > 0 {
		arg = call.Args[0]
	}
	column := make([]graphlite.Value, 0, len(rows))
	seenDistinct := map[string]bool{}
	for _, row := range rows {
		var v graphlite.Value
		var err error
		if arg != nil {
			v, err = ev.eval(arg, row)
			if err != nil {
				return graphlite.Null, err
			}
		}
		if call.Qualifier == ast.QualifierDistinct {
			key := v.String()
			if seenDistinct[key] {
				continue
			}
			seenDistinct[key] = true
		}
		column = append(column, v)
	}
	return fn.Execute(&function.Context{Column: column})
}

// runHaving filters the Aggregate output rows by Predicate, resolved
// against the group's own computed column names (§4.4).
func (e *Executor) runHaving(n *physical.Node, seed Row, ev *evaluator) ([]string, []Row, error) {
	h, ok := n.Logical.(*logical.Having)
	if !ok {
		return nil, nil, fmt.Errorf("executor: Having physical node carries %T", n.Logical)
	}
	cols, rows, err := e.runNode(n.Children[0], seed)
	if err != nil {
		return nil, nil, err
	}
	var out []Row
	for _, row := range rows {
		v, err := ev.eval(h.Predicate, row)
		if err != nil {
			return nil, nil, err
		}
		if v.IsTruthy() {
			out = append(out, row)
		}
	}
	return cols, out, nil
}
