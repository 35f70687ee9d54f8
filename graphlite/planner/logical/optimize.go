package logical

// Level is the optimization effort the caller asked for (§4.4).
type Level uint8

const (
	LevelNone Level = iota
	LevelBasic
	LevelAdvanced
	LevelAggressive
)

// Optimize rewrites plan.Root in place according to level and returns it.
func Optimize(plan *Plan, level Level) *Plan {
	if level == LevelNone {
		return plan
	}
	plan.Root = pushdownPredicates(plan.Root)
	if level >= LevelBasic {
		plan.Root = unnestSubqueries(plan.Root)
	}
	// Join reordering is reserved for Advanced/Aggressive; no-op by default
	// (§4.4) until a cost-based reordering pass is specified.
	return plan
}

// pushdownPredicates recursively rewrites Filter over a SetOp into a SetOp
// of Filter, and recurses Filter through Project/Sort/Limit so it settles
// as close to its data source as the algebra allows (§4.4).
func pushdownPredicates(n Node) Node {
	switch node := n.(type) {
	case *Filter:
		node.Input = pushdownPredicates(node.Input)
		switch inner := node.Input.(type) {
		case *SetOp:
			return pushdownPredicates(&SetOp{
				Kind: inner.Kind, All: inner.All,
				Left:  &Filter{Input: inner.Left, Predicate: node.Predicate},
				Right: &Filter{Input: inner.Right, Predicate: node.Predicate},
			})
		case *Project:
			inner.Input = &Filter{Input: inner.Input, Predicate: node.Predicate}
			return inner
		case *Sort:
			inner.Input = &Filter{Input: inner.Input, Predicate: node.Predicate}
			return inner
		case *Limit:
			// pushing a filter below a LIMIT changes which rows survive;
			// never rewritten past it.
			return node
		}
		return node
	case *Project:
		node.Input = pushdownPredicates(node.Input)
		return node
	case *Sort:
		node.Input = pushdownPredicates(node.Input)
		return node
	case *Limit:
		node.Input = pushdownPredicates(node.Input)
		return node
	case *Aggregate:
		node.Input = pushdownPredicates(node.Input)
		return node
	case *Having:
		node.Input = pushdownPredicates(node.Input)
		return node
	case *Distinct:
		node.Input = pushdownPredicates(node.Input)
		return node
	case *SetOp:
		node.Left = pushdownPredicates(node.Left)
		node.Right = pushdownPredicates(node.Right)
		return node
	case *Join:
		node.Left = pushdownPredicates(node.Left)
		node.Right = pushdownPredicates(node.Right)
		return node
	case *Expand:
		node.Input = pushdownPredicates(node.Input)
		return node
	case *PathTraversal:
		node.Input = pushdownPredicates(node.Input)
		return node
	case *Unwind:
		node.Input = pushdownPredicates(node.Input)
		return node
	case *LetBinding:
		node.Input = pushdownPredicates(node.Input)
		return node
	case *ForEach:
		node.Input = pushdownPredicates(node.Input)
		return node
	case *Mutation:
		if node.Input != nil {
			node.Input = pushdownPredicates(node.Input)
		}
		return node
	}
	return n
}

// unnestSubqueries is Basic+'s subquery-unnesting pass. Full correlated
// rewriting requires correlation analysis over the subquery's own Filter
// predicates (matching outer-bound variables against the subquery's WHERE);
// that analysis lives with the expression evaluator's variable-binding
// model, not the tree shape alone, so this pass returns the tree unchanged:
// ExistsSubquery/InSubquery nodes are left for the executor's evaluation
// rather than rewritten into Join nodes here.
func unnestSubqueries(n Node) Node {
	return n
}
