package executor

import (
	"fmt"
	"sort"

	"github.com/mwatts/graphlite"
	"github.com/mwatts/graphlite/ast"
	"github.com/mwatts/graphlite/function"
	"github.com/mwatts/graphlite/internal/idgen"
	"github.com/mwatts/graphlite/planner/logical"
	"github.com/mwatts/graphlite/planner/physical"
	"github.com/mwatts/graphlite/store"
	"github.com/mwatts/graphlite/txn"
)

// Executor runs a physical.Plan against a GraphCache (§4.6). One Executor
// serves one query at a time — the executor never yields and a query runs
// to completion or fails (§5).
type Executor struct {
	Cache    store.GraphCache
	Registry *function.Registry
	Txn      *txn.Context // nil outside an explicit transaction
	Params   map[string]graphlite.Value
}

// New builds an Executor bound to cache. registry defaults to
// function.DefaultRegistry when nil.
func New(cache store.GraphCache, registry *function.Registry, tx *txn.Context) *Executor {
	if registry == nil {
		registry = function.DefaultRegistry
	}
	return &Executor{Cache: cache, Registry: registry, Txn: tx, Params: map[string]graphlite.Value{}}
}

// Execute runs plan to completion, returning a ResultSet for a query-shaped
// plan or one whose root is a mutation (RowsAffected populated, Variables
// empty) per §6's "ResultSet or mutation summary" contract.
func (e *Executor) Execute(plan *physical.Plan) (*ResultSet, error) {
	if plan == nil || plan.Root == nil {
		return &ResultSet{}, nil
	}
	if plan.Root.Op == physical.MutationOp {
		affected, err := e.runMutation(plan.Root)
		if err != nil {
			return nil, err
		}
		return &ResultSet{RowsAffected: affected}, nil
	}

	cols, rows, err := e.runNode(plan.Root, nil)
	if err != nil {
		return nil, e.failMutation(err)
	}
	return &ResultSet{Variables: cols, Rows: rows}, nil
}

// runCorrelated re-enters the pipeline for a nested ast.Query, seeding every
// produced row with outer's bindings (§4.6 recursive re-entry for EXISTS/
// IN/scalar subqueries).
func (e *Executor) runCorrelated(q ast.Query, outer Row) ([]Row, error) {
	lp, err := logical.Plan(q)
	if err != nil {
		return nil, graphlite.NewError(graphlite.ErrExecution, "subquery planning failed: %v", err)
	}
	pp := physical.Plan(lp.Root)
	_, rows, err := e.runNode(pp.Root, outer)
	return rows, err
}

// EvalStandalone evaluates expr with no bound row, for contexts outside a
// query pipeline (SESSION SET's value, a LIMIT/OFFSET expression).
func (e *Executor) EvalStandalone(expr ast.Expression) (graphlite.Value, error) {
	return newEvaluator(e).eval(expr, Row{})
}

// genID mints a fresh identifier for an INSERT-created node or
// edge (§4.6). prefix is unused beyond documenting the call site; idgen's
// output is already collision-resistant across both kinds.
func (e *Executor) genID(prefix string) string {
	_ = prefix
	return idgen.New()
}

// runNode evaluates one physical node, returning its output column order
// (meaningful only at Project/Aggregate boundaries) and rows. seed, when
// non-nil, is merged into every row produced by a leaf scan — the mechanism
// behind correlated subquery evaluation.
func (e *Executor) runNode(n *physical.Node, seed Row) ([]string, []Row, error) {
	ev := newEvaluator(e)
	switch n.Op {
	case physical.NodeSeqScan, physical.NodeIndexScan, physical.GraphIndexScan:
		return e.runNodeScan(n, seed)
	case physical.EdgeSeqScan, physical.EdgeIndexScan:
		return e.runEdgeScan(n, seed)
	case physical.HashExpand, physical.IndexedExpand:
		return e.runExpand(n, seed)
	case physical.PathTraversalOp:
		return e.runPathTraversal(n, seed)
	case physical.FilterOp:
		return e.runFilter(n, seed, ev)
	case physical.ProjectOp:
		return e.runProject(n, seed, ev)
	case physical.HashAggregate, physical.SortAggregate:
		return e.runAggregate(n, seed, ev)
	case physical.HavingOp:
		return e.runHaving(n, seed, ev)
	case physical.DistinctOp:
		return e.runDistinct(n, seed)
	case physical.InMemorySort, physical.ExternalSort:
		return e.runSort(n, seed, ev)
	case physical.LimitOp:
		return e.runLimit(n, seed, ev)
	case physical.NestedLoopJoin, physical.HashJoinOp, physical.SortMergeJoin, physical.IndexJoin:
		return e.runJoin(n, seed)
	case physical.UnionOp, physical.IntersectOp, physical.ExceptOp:
		return e.runSetOp(n, seed)
	case physical.SingleRowOp:
		row := Row{}
		if seed != nil {
			row = seed.clone()
		}
		return nil, []Row{row}, nil
	case physical.UnwindOp:
		return e.runUnwind(n, seed, ev)
	case physical.LetOp:
		return e.runLet(n, seed, ev)
	case physical.ForEachOp:
		return e.runForEach(n, seed, ev)
	case physical.WithQueryOp:
		return e.runWithQuery(n, seed)
	case physical.GenericFunctionOp:
		return e.runGenericFunction(n, seed)
	}
	return nil, nil, fmt.Errorf("executor: unsupported physical operator %v", n.Op)
}

func (e *Executor) runNodeScan(n *physical.Node, seed Row) ([]string, []Row, error) {
	scan, ok := n.Logical.(*logical.NodeScan)
	if !ok {
		return nil, nil, fmt.Errorf("executor: NodeScan physical node carries %T", n.Logical)
	}
	var nodes []*graphlite.Node
	if len(scan.Labels) > 0 {
		seen := map[string]bool{}
		for _, l := range scan.Labels {
			for _, nd := range e.Cache.NodesByLabel(l) {
				if !seen[nd.ID] {
					seen[nd.ID] = true
					nodes = append(nodes, nd)
				}
			}
		}
	} else {
		nodes = e.Cache.AllNodes()
	}
	rows := make([]Row, 0, len(nodes))
	for _, nd := range nodes {
		row := seed.clone()
		row[scan.Variable] = graphlite.NewNode(nd)
		rows = append(rows, row)
	}
	return nil, rows, nil
}

func (e *Executor) runEdgeScan(n *physical.Node, seed Row) ([]string, []Row, error) {
	scan, ok := n.Logical.(*logical.EdgeScan)
	if !ok {
		return nil, nil, fmt.Errorf("executor: EdgeScan physical node carries %T", n.Logical)
	}
	var edges []*graphlite.Edge
	if len(scan.Labels) > 0 {
		seen := map[string]bool{}
		for _, l := range scan.Labels {
			for _, ed := range e.Cache.EdgesByLabel(l) {
				if !seen[ed.ID] {
					seen[ed.ID] = true
					edges = append(edges, ed)
				}
			}
		}
	} else {
		edges = e.Cache.AllEdges()
	}
	rows := make([]Row, 0, len(edges))
	for _, ed := range edges {
		row := seed.clone()
		row[scan.Variable] = graphlite.NewEdge(ed)
		rows = append(rows, row)
	}
	return nil, rows, nil
}

func edgeMatchesLabels(ed *graphlite.Edge, labels []string) bool {
	if len(labels) == 0 {
		return true
	}
	for _, l := range labels {
		if ed.Label == l {
			return true
		}
	}
	return false
}

func nodeMatchesLabels(nd *graphlite.Node, labels []string) bool {
	if len(labels) == 0 {
		return true
	}
	for _, l := range labels {
		if nd.HasLabel(l) {
			return true
		}
	}
	return false
}

func (e *Executor) runExpand(n *physical.Node, seed Row) ([]string, []Row, error) {
	exp, ok := n.Logical.(*logical.Expand)
	if !ok {
		return nil, nil, fmt.Errorf("executor: Expand physical node carries %T", n.Logical)
	}
	_, inputRows, err := e.runNode(n.Children[0], seed)
	if err != nil {
		return nil, nil, err
	}
	var out []Row
	for _, row := range inputRows {
		fromVal, ok := row[exp.FromVariable]
		if !ok || fromVal.Kind != graphlite.KindNode {
			continue
		}
		fromID := fromVal.Node.ID
		for _, ed := range e.Cache.IncidentEdges(fromID) {
			if !edgeMatchesLabels(ed, exp.EdgeLabels) {
				continue
			}
			var toID string
			switch exp.Direction {
			case ast.DirOutgoing:
				if ed.From != fromID {
					continue
				}
				toID = ed.To
			case ast.DirIncoming:
				if ed.To != fromID {
					continue
				}
				toID = ed.From
			default: // both / undirected
				if ed.From == fromID {
					toID = ed.To
				} else if ed.To == fromID {
					toID = ed.From
				} else {
					continue
				}
			}
			toNode, ok := e.Cache.GetNode(toID)
			if !ok || !nodeMatchesLabels(toNode, exp.ToLabels) {
				continue
			}
			newRow := row.clone()
			if exp.EdgeVariable != "" {
				newRow[exp.EdgeVariable] = graphlite.NewEdge(ed)
			}
			newRow[exp.ToVariable] = graphlite.NewNode(toNode)
			out = append(out, newRow)
		}
	}
	return nil, out, nil
}

// runPathTraversal performs a breadth-first expansion bounded by
// [Min, Max] hops, honoring the quantified-edge pattern's path-type
// constraint (WALK allows repeats; TRAIL forbids repeated edges; SIMPLE
// and ACYCLIC both forbid repeated nodes, including a return to the start
// node).
func (e *Executor) runPathTraversal(n *physical.Node, seed Row) ([]string, []Row, error) {
	pt, ok := n.Logical.(*logical.PathTraversal)
	if !ok {
		return nil, nil, fmt.Errorf("executor: PathTraversal physical node carries %T", n.Logical)
	}
	_, inputRows, err := e.runNode(n.Children[0], seed)
	if err != nil {
		return nil, nil, err
	}
	maxHops := pt.Max
	if maxHops < 0 {
		maxHops = 1 << 16 // unbounded: capped at 65536 hops
	}

	type frontierEntry struct {
		row        Row
		nodeID     string
		edgesUsed  map[string]bool
		nodesUsed  map[string]bool
		hops       int
	}

	var out []Row
	for _, row := range inputRows {
		fromVal, ok := row[pt.FromVariable]
		if !ok || fromVal.Kind != graphlite.KindNode {
			continue
		}
		start := fromVal.Node.ID
		frontier := []frontierEntry{{row: row, nodeID: start, edgesUsed: map[string]bool{}, nodesUsed: map[string]bool{start: true}}}
		for len(frontier) > 0 {
			cur := frontier[0]
			frontier = frontier[1:]
			if cur.hops >= maxHops {
				continue
			}
			for _, ed := range e.Cache.IncidentEdges(cur.nodeID) {
				if !edgeMatchesLabels(ed, pt.EdgeLabels) {
					continue
				}
				if pt.PathType == ast.PathTrail && cur.edgesUsed[ed.ID] {
					continue
				}
				var nextID string
				switch pt.Direction {
				case ast.DirOutgoing:
					if ed.From != cur.nodeID {
						continue
					}
					nextID = ed.To
				case ast.DirIncoming:
					if ed.To != cur.nodeID {
						continue
					}
					nextID = ed.From
				default:
					if ed.From == cur.nodeID {
						nextID = ed.To
					} else if ed.To == cur.nodeID {
						nextID = ed.From
					} else {
						continue
					}
				}
				if (pt.PathType == ast.PathSimple || pt.PathType == ast.PathAcyclic) && cur.nodesUsed[nextID] {
					continue
				}
				nextNode, ok := e.Cache.GetNode(nextID)
				if !ok {
					continue
				}
				nextHops := cur.hops + 1
				nextEdges := cloneBoolSet(cur.edgesUsed)
				nextEdges[ed.ID] = true
				nextNodes := cloneBoolSet(cur.nodesUsed)
				nextNodes[nextID] = true

				if nextHops >= pt.Min && nodeMatchesLabels(nextNode, pt.ToLabels) {
					newRow := cur.row.clone()
					if pt.EdgeVariable != "" {
						newRow[pt.EdgeVariable] = graphlite.NewEdge(ed)
					}
					newRow[pt.ToVariable] = graphlite.NewNode(nextNode)
					out = append(out, newRow)
				}
				if nextHops < maxHops {
					frontier = append(frontier, frontierEntry{row: cur.row, nodeID: nextID, edgesUsed: nextEdges, nodesUsed: nextNodes, hops: nextHops})
				}
			}
		}
	}
	return nil, out, nil
}

func cloneBoolSet(s map[string]bool) map[string]bool {
	out := make(map[string]bool, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (e *Executor) runFilter(n *physical.Node, seed Row, ev *evaluator) ([]string, []Row, error) {
	f, ok := n.Logical.(*logical.Filter)
	if !ok {
		return nil, nil, fmt.Errorf("executor: Filter physical node carries %T", n.Logical)
	}
	cols, rows, err := e.runNode(n.Children[0], seed)
	if err != nil {
		return nil, nil, err
	}
	var out []Row
	for _, row := range rows {
		v, err := ev.eval(f.Predicate, row)
		if err != nil {
			return nil, nil, err
		}
		if v.IsTruthy() {
			out = append(out, row)
		}
	}
	return cols, out, nil
}

func (e *Executor) runProject(n *physical.Node, seed Row, ev *evaluator) ([]string, []Row, error) {
	p, ok := n.Logical.(*logical.Project)
	if !ok {
		return nil, nil, fmt.Errorf("executor: Project physical node carries %T", n.Logical)
	}
	_, rows, err := e.runNode(n.Children[0], seed)
	if err != nil {
		return nil, nil, err
	}
	cols := make([]string, len(p.Items))
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		projected := Row{}
		for i, item := range p.Items {
			name := itemName(item, i)
			cols[i] = name
			v, err := ev.eval(item.Expr, row)
			if err != nil {
				return nil, nil, err
			}
			projected[name] = v
		}
		out = append(out, projected)
	}
	if p.Distinct {
		out = dedupeRows(out, cols)
	}
	return cols, out, nil
}

func itemName(item ast.ReturnItem, i int) string {
	if item.Alias != "" {
		return item.Alias
	}
	if v, ok := item.Expr.(*ast.Variable); ok {
		return v.Name
	}
	if p, ok := item.Expr.(*ast.PropertyAccess); ok {
		return p.Property
	}
	return fmt.Sprintf("expr_%d", i)
}

func dedupeRows(rows []Row, cols []string) []Row {
	seen := map[string]bool{}
	var out []Row
	for _, row := range rows {
		key := rowKey(row, cols)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out
}

func rowKey(row Row, cols []string) string {
	key := ""
	for _, c := range cols {
		key += c + "=" + row[c].String() + "|"
	}
	return key
}

func (e *Executor) runDistinct(n *physical.Node, seed Row) ([]string, []Row, error) {
	cols, rows, err := e.runNode(n.Children[0], seed)
	if err != nil {
		return nil, nil, err
	}
	return cols, dedupeRows(rows, cols), nil
}

func (e *Executor) runSort(n *physical.Node, seed Row, ev *evaluator) ([]string, []Row, error) {
	s, ok := n.Logical.(*logical.Sort)
	if !ok {
		return nil, nil, fmt.Errorf("executor: Sort physical node carries %T", n.Logical)
	}
	cols, rows, err := e.runNode(n.Children[0], seed)
	if err != nil {
		return nil, nil, err
	}
	var sortErr error
	sort.SliceStable(rows, func(i, j int) bool {
		for _, item := range s.Items {
			vi, err := ev.eval(item.Expr, rows[i])
			if err != nil {
				sortErr = err
				return false
			}
			vj, err := ev.eval(item.Expr, rows[j])
			if err != nil {
				sortErr = err
				return false
			}
			if vi.IsNull() || vj.IsNull() {
				if vi.IsNull() == vj.IsNull() {
					continue
				}
				nullsFirst := item.Nulls == ast.NullsFirst || (item.Nulls == ast.NullsDefault && item.Direction == ast.OrderDesc)
				if nullsFirst {
					return vi.IsNull()
				}
				return vj.IsNull()
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
	return cols, rows, sortErr
}

func (e *Executor) runLimit(n *physical.Node, seed Row, ev *evaluator) ([]string, []Row, error) {
	l, ok := n.Logical.(*logical.Limit)
	if !ok {
		return nil, nil, fmt.Errorf("executor: Limit physical node carries %T", n.Logical)
	}
	cols, rows, err := e.runNode(n.Children[0], seed)
	if err != nil {
		return nil, nil, err
	}
	offset := 0
	if l.Offset != nil {
		v, err := ev.eval(l.Offset, Row{})
		if err != nil {
			return nil, nil, err
		}
		if f, ok := v.AsFloat(); ok {
			offset = int(f)
		}
	}
	if offset > len(rows) {
		offset = len(rows)
	}
	rows = rows[offset:]
	if l.Count != nil {
		v, err := ev.eval(l.Count, Row{})
		if err != nil {
			return nil, nil, err
		}
		if f, ok := v.AsFloat(); ok && int(f) < len(rows) {
			rows = rows[:int(f)]
		}
	}
	return cols, rows, nil
}

func (e *Executor) runUnwind(n *physical.Node, seed Row, ev *evaluator) ([]string, []Row, error) {
	u, ok := n.Logical.(*logical.Unwind)
	if !ok {
		return nil, nil, fmt.Errorf("executor: Unwind physical node carries %T", n.Logical)
	}
	cols, rows, err := e.runNode(n.Children[0], seed)
	if err != nil {
		return nil, nil, err
	}
	var out []Row
	for _, row := range rows {
		v, err := ev.eval(u.Expr, row)
		if err != nil {
			return nil, nil, err
		}
		if v.Kind != graphlite.KindList {
			newRow := row.clone()
			newRow[u.Variable] = v
			out = append(out, newRow)
			continue
		}
		for _, elem := range v.List {
			newRow := row.clone()
			newRow[u.Variable] = elem
			out = append(out, newRow)
		}
	}
	return cols, out, nil
}

func (e *Executor) runLet(n *physical.Node, seed Row, ev *evaluator) ([]string, []Row, error) {
	l, ok := n.Logical.(*logical.LetBinding)
	if !ok {
		return nil, nil, fmt.Errorf("executor: LetBinding physical node carries %T", n.Logical)
	}
	cols, rows, err := e.runNode(n.Children[0], seed)
	if err != nil {
		return nil, nil, err
	}
	for i, row := range rows {
		v, err := ev.eval(l.Value, row)
		if err != nil {
			return nil, nil, err
		}
		row[l.Variable] = v
		rows[i] = row
	}
	return cols, rows, nil
}

func (e *Executor) runForEach(n *physical.Node, seed Row, ev *evaluator) ([]string, []Row, error) {
	f, ok := n.Logical.(*logical.ForEach)
	if !ok {
		return nil, nil, fmt.Errorf("executor: ForEach physical node carries %T", n.Logical)
	}
	cols, rows, err := e.runNode(n.Children[0], seed)
	if err != nil {
		return nil, nil, err
	}
	var out []Row
	for _, row := range rows {
		v, err := ev.eval(f.Collection, row)
		if err != nil {
			return nil, nil, err
		}
		if v.Kind != graphlite.KindList {
			continue
		}
		for _, elem := range v.List {
			newRow := row.clone()
			newRow[f.Variable] = elem
			out = append(out, newRow)
		}
	}
	return cols, out, nil
}

func (e *Executor) runJoin(n *physical.Node, seed Row) ([]string, []Row, error) {
	j, ok := n.Logical.(*logical.Join)
	if !ok {
		return nil, nil, fmt.Errorf("executor: Join physical node carries %T", n.Logical)
	}
	_, left, err := e.runNode(n.Children[0], seed)
	if err != nil {
		return nil, nil, err
	}
	_, right, err := e.runNode(n.Children[1], seed)
	if err != nil {
		return nil, nil, err
	}
	ev := newEvaluator(e)

	var out []Row
	matchedLeft := make([]bool, len(left))
	for li, lrow := range left {
		matchedAny := false
		for _, rrow := range right {
			ok, err := joinCompatible(j, lrow, rrow, ev)
			if err != nil {
				return nil, nil, err
			}
			if !ok {
				continue
			}
			matchedAny = true
			if j.Kind == logical.JoinLeftSemi {
				out = append(out, lrow)
				continue
			}
			if j.Kind == logical.JoinLeftAnti {
				continue
			}
			merged := lrow.clone()
			for k, v := range rrow {
				merged[k] = v
			}
			out = append(out, merged)
		}
		matchedLeft[li] = matchedAny
		if !matchedAny && (j.Kind == logical.JoinLeftOuter || j.Kind == logical.JoinFullOuter) {
			out = append(out, lrow)
		}
	}
	if j.Kind == logical.JoinLeftAnti {
		out = nil
		for li, lrow := range left {
			if !matchedLeft[li] {
				out = append(out, lrow)
			}
		}
	}
	if j.Kind == logical.JoinRightOuter || j.Kind == logical.JoinFullOuter {
		for _, rrow := range right {
			matched := false
			for _, lrow := range left {
				ok, err := joinCompatible(j, lrow, rrow, ev)
				if err != nil {
					return nil, nil, err
				}
				if ok {
					matched = true
					break
				}
			}
			if !matched {
				out = append(out, rrow.clone())
			}
		}
	}
	return nil, out, nil
}

// joinCompatible implements the natural-join-on-shared-variables rule the
// logical planner's Join without an explicit Condition stands for, and the
// always-true Cross join.
func joinCompatible(j *logical.Join, l, r Row, ev *evaluator) (bool, error) {
	if j.Kind == logical.JoinCross {
		return true, nil
	}
	if j.Condition != nil {
		v, err := ev.eval(j.Condition, mergeRows(l, r))
		if err != nil {
			return false, err
		}
		return v.IsTruthy(), nil
	}
	for k, lv := range l {
		if rv, ok := r[k]; ok {
			if !lv.Equal(rv) {
				return false, nil
			}
		}
	}
	return true, nil
}

func mergeRows(l, r Row) Row {
	out := l.clone()
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (e *Executor) runSetOp(n *physical.Node, seed Row) ([]string, []Row, error) {
	s, ok := n.Logical.(*logical.SetOp)
	if !ok {
		return nil, nil, fmt.Errorf("executor: SetOp physical node carries %T", n.Logical)
	}
	cols, left, err := e.runNode(n.Children[0], seed)
	if err != nil {
		return nil, nil, err
	}
	_, right, err := e.runNode(n.Children[1], seed)
	if err != nil {
		return nil, nil, err
	}

	var out []Row
	switch s.Kind {
	case logical.SetOpUnion:
		out = append(append(out, left...), right...)
		if !s.All {
			out = dedupeRows(out, cols)
		}
	case logical.SetOpIntersect:
		for _, lrow := range left {
			if rowsContain(right, lrow, cols) {
				out = append(out, lrow)
			}
		}
		if !s.All {
			out = dedupeRows(out, cols)
		}
	case logical.SetOpExcept:
		for _, lrow := range left {
			if !rowsContain(right, lrow, cols) {
				out = append(out, lrow)
			}
		}
		if !s.All {
			out = dedupeRows(out, cols)
		}
	}
	return cols, out, nil
}

func rowsContain(rows []Row, target Row, cols []string) bool {
	tk := rowKey(target, cols)
	for _, r := range rows {
		if rowKey(r, cols) == tk {
			return true
		}
	}
	return false
}

func (e *Executor) runGenericFunction(n *physical.Node, seed Row) ([]string, []Row, error) {
	gf, ok := n.Logical.(*logical.GenericFunction)
	if !ok {
		return nil, nil, fmt.Errorf("executor: GenericFunction physical node carries %T", n.Logical)
	}
	var rows []Row
	if len(n.Children) > 0 {
		_, inRows, err := e.runNode(n.Children[0], seed)
		if err != nil {
			return nil, nil, err
		}
		rows = inRows
	} else {
		rows = []Row{{}}
		if seed != nil {
			rows[0] = seed.clone()
		}
	}
	// CALL procedures are host-provided (§6); the core has no built-in
	// procedure table, so yielding the input rows unchanged is the only
	// portable behavior without a catalog/procedure runtime wired in.
	_ = gf
	return nil, rows, nil
}
