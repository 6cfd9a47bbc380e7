package coalesce

// Tree is one marginal genealogy, valid over the genomic interval
// [Left, Right). Topology is held as a parent array over the shared node
// table.
type Tree struct {
	Left  float64
	Right float64

	ts     *TreeSequence
	parent []int32
}

// Interval returns the half-open genomic span this tree covers.
func (t *Tree) Interval() (left, right float64) {
	return t.Left, t.Right
}

// Parent returns the parent of node, or NullNode for the root and for nodes
// absent from this marginal tree.
func (t *Tree) Parent(node int32) int32 {
	if node < 0 || int(node) >= len(t.parent) {
		return NullNode
	}
	return t.parent[node]
}

// Time returns the age of node in generations.
func (t *Tree) Time(node int32) float64 {
	return t.ts.Nodes[node].Time
}

// Root walks upward from the first sample to the top of the tree.
func (t *Tree) Root() int32 {
	if t.ts.nSamples == 0 {
		return NullNode
	}
	node := int32(0)
	for t.parent[node] != NullNode {
		node = t.parent[node]
	}
	return node
}

// TotalBranchLength sums the lengths, in generations, of every branch in
// the tree.
func (t *Tree) TotalBranchLength() float64 {
	var total float64
	for child, parent := range t.parent {
		if parent == NullNode {
			continue
		}
		total += t.ts.Nodes[parent].Time - t.ts.Nodes[int32(child)].Time
	}
	return total
}

// IsDescendant reports whether node lies in the subtree rooted at ancestor.
// A node is considered its own descendant.
func (t *Tree) IsDescendant(node, ancestor int32) bool {
	for v := node; v != NullNode; v = t.parent[v] {
		if v == ancestor {
			return true
		}
	}
	return false
}

// SamplesBelow lists the sample nodes in the subtree rooted at node, in
// sample order.
func (t *Tree) SamplesBelow(node int32) []int32 {
	var out []int32
	for s := int32(0); s < int32(t.ts.nSamples); s++ {
		if t.IsDescendant(s, node) {
			out = append(out, s)
		}
	}
	return out
}

// Copy returns a Tree detached from the iterator's reusable storage.
func (t *Tree) Copy() *Tree {
	p := make([]int32, len(t.parent))
	copy(p, t.parent)
	return &Tree{Left: t.Left, Right: t.Right, ts: t.ts, parent: p}
}
