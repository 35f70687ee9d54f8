package logical

import "github.com/mwatts/graphlite/ast"

// translateMatch implements §4.4's MATCH translation: a single pattern
// becomes a NodeScan -> Expand -> Expand... chain; multiple comma-separated
// patterns run through the pattern-connectivity optimizer.
func translateMatch(m *ast.MatchClause) (Node, map[string]VariableInfo, error) {
	vars := map[string]VariableInfo{}
	if len(m.Patterns) == 0 {
		return &SingleRow{}, vars, nil
	}

	chains := make([]Node, len(m.Patterns))
	varSets := make([]map[string]bool, len(m.Patterns))
	for i, p := range m.Patterns {
		chain, pvars := translatePattern(p)
		chains[i] = chain
		mergeVars(vars, pvars)
		varSets[i] = setOf(p.Variables())
	}

	if len(m.Patterns) == 1 {
		return chains[0], vars, nil
	}

	if len(m.Patterns) > maxConnectivityPatterns {
		return leftDeepCross(chains), vars, nil
	}

	return connectPatterns(m.Patterns, chains, varSets), vars, nil
}

// connectPatterns implements the pattern-connectivity optimizer: patterns
// sharing a variable chain together (the shared variable becomes the next
// pattern's from_variable when it leads that pattern, else an unconditioned
// Inner Join stands in for a natural join); patterns sharing nothing fall
// back to Cross.
func connectPatterns(patterns []*ast.PathPattern, chains []Node, varSets []map[string]bool) Node {
	result := chains[0]
	resultVars := cloneSet(varSets[0])

	for i := 1; i < len(chains); i++ {
		shared := intersect(resultVars, varSets[i])
		switch {
		case len(shared) == 0:
			result = &Join{Kind: JoinCross, Left: result, Right: chains[i]}
		case patternLeadsWith(patterns[i], shared):
			result = attachExpandChain(result, patterns[i])
		default:
			result = &Join{Kind: JoinInner, Left: result, Right: chains[i]}
		}
		for v := range varSets[i] {
			resultVars[v] = true
		}
	}
	return result
}

// patternLeadsWith reports whether p's first node variable is in shared,
// meaning the second pattern's leading Expand can take the first pattern's
// tree directly as its "from" input instead of joining.
func patternLeadsWith(p *ast.PathPattern, shared map[string]bool) bool {
	if len(p.Elements) == 0 || p.Elements[0].Node == nil {
		return false
	}
	return shared[p.Elements[0].Node.Variable]
}

// attachExpandChain rebuilds pattern p's Expand chain with left as the
// source for its first node (the shared variable), instead of a fresh
// NodeScan, connecting the two patterns into one chain.
func attachExpandChain(left Node, p *ast.PathPattern) Node {
	node := left
	fromVar := p.Elements[0].Node.Variable
	for i := 1; i+1 < len(p.Elements); i += 2 {
		edge := p.Elements[i].Edge
		to := p.Elements[i+1].Node
		node = buildExpand(node, fromVar, edge, to)
		fromVar = to.Variable
	}
	return node
}

func translatePattern(p *ast.PathPattern) (Node, map[string]VariableInfo) {
	vars := map[string]VariableInfo{}
	if len(p.Elements) == 0 {
		return &SingleRow{}, vars
	}

	first := p.Elements[0].Node
	var node Node = &NodeScan{Variable: first.Variable, Labels: first.Labels}
	node = wrapPropertyFilter(node, first.Variable, first.Properties)
	vars[first.Variable] = VariableInfo{EntityType: EntityNode, Labels: first.Labels, RequiredProperties: propKeys(first.Properties)}

	fromVar := first.Variable
	for i := 1; i+1 < len(p.Elements); i += 2 {
		edge := p.Elements[i].Edge
		to := p.Elements[i+1].Node

		if edge.Quantifier != nil && edge.Quantifier.Kind != ast.QuantNone {
			min, max := quantifierBounds(edge.Quantifier)
			node = &PathTraversal{
				Input: node, FromVariable: fromVar, EdgeVariable: edge.Variable,
				EdgeLabels: edge.Labels, ToVariable: to.Variable, ToLabels: to.Labels,
				Direction: edge.Direction, Min: min, Max: max, PathType: p.Type,
			}
		} else {
			node = buildExpand(node, fromVar, edge, to)
		}
		node = wrapPropertyFilter(node, edge.Variable, edge.Properties)
		node = wrapPropertyFilter(node, to.Variable, to.Properties)

		if edge.Variable != "" {
			vars[edge.Variable] = VariableInfo{EntityType: EntityEdge, Labels: edge.Labels, RequiredProperties: propKeys(edge.Properties)}
		}
		vars[to.Variable] = VariableInfo{EntityType: EntityNode, Labels: to.Labels, RequiredProperties: propKeys(to.Properties)}
		fromVar = to.Variable
	}
	return node, vars
}

func buildExpand(input Node, fromVar string, edge *ast.EdgeElement, to *ast.NodeElement) Node {
	return &Expand{
		Input: input, FromVariable: fromVar, EdgeVariable: edge.Variable,
		EdgeLabels: edge.Labels, ToVariable: to.Variable, ToLabels: to.Labels,
		Direction: edge.Direction, Properties: edge.Properties,
	}
}

func quantifierBounds(q *ast.Quantifier) (int, int) {
	switch q.Kind {
	case ast.QuantOptional:
		return 0, 1
	case ast.QuantExact:
		return q.Min, q.Min
	case ast.QuantRange, ast.QuantAtLeast, ast.QuantAtMost:
		return q.Min, q.Max
	}
	return 1, 1
}

// wrapPropertyFilter turns an inline pattern property map ((a {k:v}))
// into a Filter over an AND-chain of var.k = v equalities appended to node.
// A variable-less element (anonymous edge) or an empty map contributes
// nothing.
func wrapPropertyFilter(node Node, variable string, pm *ast.PropertyMap) Node {
	if variable == "" || pm == nil || len(pm.Entries) == 0 {
		return node
	}
	var pred ast.Expression
	for _, e := range pm.Entries {
		eq := &ast.Binary{
			Op:    ast.OpEq,
			Left:  &ast.PropertyAccess{Object: &ast.Variable{Name: variable}, Property: e.Key},
			Right: e.Value,
		}
		if pred == nil {
			pred = eq
		} else {
			pred = &ast.Binary{Op: ast.OpAnd, Left: pred, Right: eq}
		}
	}
	return &Filter{Input: node, Predicate: pred}
}

func propKeys(pm *ast.PropertyMap) []string {
	if pm == nil {
		return nil
	}
	out := make([]string, len(pm.Entries))
	for i, e := range pm.Entries {
		out[i] = e.Key
	}
	return out
}

func leftDeepCross(chains []Node) Node {
	result := chains[0]
	for i := 1; i < len(chains); i++ {
		result = &Join{Kind: JoinCross, Left: result, Right: chains[i]}
	}
	return result
}

func setOf(names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}

func cloneSet(s map[string]bool) map[string]bool {
	out := make(map[string]bool, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

func intersect(a, b map[string]bool) map[string]bool {
	out := map[string]bool{}
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}
