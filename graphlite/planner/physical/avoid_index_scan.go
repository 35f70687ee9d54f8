package physical

// AvoidIndexScan recursively rewrites every index-based scan/expand/join
// operator to its sequential-scan equivalent, rebasing costs as §4.5
// specifies. Applied by default (the caller may skip it to keep index
// operators when the store actually maintains the indices they assume).
func AvoidIndexScan(n *Node) *Node {
	if n == nil {
		return nil
	}
	for i, c := range n.Children {
		n.Children[i] = AvoidIndexScan(c)
	}
	switch n.Op {
	case NodeIndexScan:
		n.Op = NodeSeqScan
		n.EstimatedCost = n.EstimatedRows * 0.1
	case IndexedExpand:
		n.Op = HashExpand
		n.EstimatedCost = n.EstimatedRows * 0.3
	case GraphIndexScan:
		n.Op = NodeSeqScan
		n.EstimatedCost = n.EstimatedRows * 0.1
	case IndexJoin:
		n.Op = NestedLoopJoin
		n.EstimatedCost *= 2
	}
	return n
}
