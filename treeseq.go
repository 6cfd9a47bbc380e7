package coalesce

import (
	"fmt"
	"sort"

	"github.com/carbocation/pfx"
)

// NullNode marks an absent parent reference.
const NullNode int32 = -1

// Node is one entry in the node table. Sample nodes sit at time 0 and occupy
// IDs 0..n-1; coalescent nodes are appended in the order they are created.
type Node struct {
	Time     float64
	IsSample bool
}

// Edge records that Child attaches to Parent over the half-open genomic
// interval [Left, Right).
type Edge struct {
	Left   float64
	Right  float64
	Parent int32
	Child  int32
}

// Site is a polymorphic position on the simulated sequence.
type Site struct {
	Position       float64
	AncestralState string
}

// Mutation places a derived state on the branch above Node, at site Site.
// Under the infinite-sites model there is exactly one mutation per site.
type Mutation struct {
	Site         int32
	Node         int32
	DerivedState string
}

// TreeSequence holds a simulated genealogy as node/edge/site/mutation tables,
// in the spirit of the succinct tree sequence encoding: the marginal tree at
// any position is recoverable from the edges whose interval covers it.
type TreeSequence struct {
	SequenceLength float64
	Nodes          []Node
	Edges          []Edge
	Sites          []Site
	Mutations      []Mutation
	SampleIDs      []string

	nSamples int
}

// NewTreeSequence assembles a tree sequence from explicit tables. Sample
// nodes must occupy IDs 0..n-1; sites and mutations must pair up
// one-to-one. Edges and sites are re-sorted into canonical order.
func NewTreeSequence(seqLen float64, nodes []Node, edges []Edge, sites []Site, mutations []Mutation, sampleIDs []string) (*TreeSequence, error) {
	if seqLen <= 0 {
		return nil, pfx.Err(fmt.Errorf("sequence length must be positive; got %f", seqLen))
	}
	if len(sites) != len(mutations) {
		return nil, pfx.Err(fmt.Errorf("%d sites but %d mutations; infinite-sites tables pair one-to-one", len(sites), len(mutations)))
	}

	n := 0
	for i, node := range nodes {
		if node.IsSample {
			if i != n {
				return nil, pfx.Err(fmt.Errorf("sample nodes must occupy the lowest IDs; node %d is a sample after a non-sample", i))
			}
			n++
		}
	}
	if len(sampleIDs) > 0 && len(sampleIDs) != n {
		return nil, pfx.Err(fmt.Errorf("%d sample IDs provided for %d samples", len(sampleIDs), n))
	}

	ts := &TreeSequence{
		SequenceLength: seqLen,
		Nodes:          nodes,
		Edges:          edges,
		Sites:          sites,
		Mutations:      mutations,
		SampleIDs:      sampleIDs,
		nSamples:       n,
	}
	ts.sortTables()

	return ts, nil
}

// NumSamples returns the number of sampled haplotypes.
func (ts *TreeSequence) NumSamples() int {
	return ts.nSamples
}

// NumSites returns the number of segregating sites.
func (ts *TreeSequence) NumSites() int {
	return len(ts.Sites)
}

// NumTrees counts the distinct marginal trees along the sequence.
func (ts *TreeSequence) NumTrees() int {
	n := 0
	for it := ts.Trees(); it.Next(); {
		n++
	}
	return n
}

// FirstTree returns the marginal tree at the left edge of the sequence.
func (ts *TreeSequence) FirstTree() (*Tree, error) {
	it := ts.Trees()
	if !it.Next() {
		return nil, pfx.Err(fmt.Errorf("tree sequence has no trees"))
	}
	return it.Tree(), nil
}

// TreeAt returns the marginal tree covering position pos.
func (ts *TreeSequence) TreeAt(pos float64) (*Tree, error) {
	if pos < 0 || pos >= ts.SequenceLength {
		return nil, pfx.Err(fmt.Errorf("position %f is outside [0, %f)", pos, ts.SequenceLength))
	}
	for it := ts.Trees(); it.Next(); {
		t := it.Tree()
		if pos >= t.Left && pos < t.Right {
			return t, nil
		}
	}
	return nil, pfx.Err(fmt.Errorf("no tree covers position %f", pos))
}

// sortTables puts edges and sites into the canonical order required by the
// tree iterator: edges by left coordinate breaking ties on parent time, sites
// by position.
func (ts *TreeSequence) sortTables() {
	sort.SliceStable(ts.Edges, func(i, j int) bool {
		if ts.Edges[i].Left != ts.Edges[j].Left {
			return ts.Edges[i].Left < ts.Edges[j].Left
		}
		return ts.Nodes[ts.Edges[i].Parent].Time < ts.Nodes[ts.Edges[j].Parent].Time
	})
	type sitemut struct {
		s Site
		m Mutation
	}
	paired := make([]sitemut, 0, len(ts.Sites))
	for i := range ts.Sites {
		paired = append(paired, sitemut{ts.Sites[i], ts.Mutations[i]})
	}
	sort.SliceStable(paired, func(i, j int) bool { return paired[i].s.Position < paired[j].s.Position })
	for i := range paired {
		ts.Sites[i] = paired[i].s
		ts.Mutations[i] = paired[i].m
		ts.Mutations[i].Site = int32(i)
	}
}

// TreeIterator walks the marginal trees left to right. Edges are inserted as
// their left coordinate is reached and removed at their right coordinate,
// which updates the parent array incrementally instead of rebuilding each
// tree from scratch.
type TreeIterator struct {
	ts     *TreeSequence
	insert []int // edge indices ordered by Left, then parent time
	remove []int // edge indices ordered by Right, then reverse parent time
	ii, ri int
	pos    float64
	tree   *Tree
}

// Trees returns an iterator over the marginal trees and their genomic
// intervals, in left-to-right order.
func (ts *TreeSequence) Trees() *TreeIterator {
	insert := make([]int, len(ts.Edges))
	remove := make([]int, len(ts.Edges))
	for i := range ts.Edges {
		insert[i] = i
		remove[i] = i
	}
	sort.SliceStable(insert, func(a, b int) bool {
		ea, eb := ts.Edges[insert[a]], ts.Edges[insert[b]]
		if ea.Left != eb.Left {
			return ea.Left < eb.Left
		}
		return ts.Nodes[ea.Parent].Time < ts.Nodes[eb.Parent].Time
	})
	sort.SliceStable(remove, func(a, b int) bool {
		ea, eb := ts.Edges[remove[a]], ts.Edges[remove[b]]
		if ea.Right != eb.Right {
			return ea.Right < eb.Right
		}
		return ts.Nodes[ea.Parent].Time > ts.Nodes[eb.Parent].Time
	})

	return &TreeIterator{
		ts:     ts,
		insert: insert,
		remove: remove,
		tree: &Tree{
			ts:     ts,
			parent: newParentArray(len(ts.Nodes)),
		},
	}
}

func newParentArray(n int) []int32 {
	p := make([]int32, n)
	for i := range p {
		p[i] = NullNode
	}
	return p
}

// Next advances to the following marginal tree, returning false once the
// whole sequence has been covered.
func (it *TreeIterator) Next() bool {
	ts := it.ts
	if it.pos >= ts.SequenceLength {
		return false
	}

	for it.ri < len(it.remove) && ts.Edges[it.remove[it.ri]].Right <= it.pos {
		e := ts.Edges[it.remove[it.ri]]
		it.tree.parent[e.Child] = NullNode
		it.ri++
	}
	for it.ii < len(it.insert) && ts.Edges[it.insert[it.ii]].Left <= it.pos {
		e := ts.Edges[it.insert[it.ii]]
		it.tree.parent[e.Child] = e.Parent
		it.ii++
	}

	right := ts.SequenceLength
	if it.ii < len(it.insert) {
		if l := ts.Edges[it.insert[it.ii]].Left; l < right {
			right = l
		}
	}
	if it.ri < len(it.remove) {
		if r := ts.Edges[it.remove[it.ri]].Right; r < right {
			right = r
		}
	}

	it.tree.Left = it.pos
	it.tree.Right = right
	it.pos = right

	return true
}

// Tree returns the current marginal tree. The returned value is reused by
// subsequent calls to Next; copy it if it must outlive the iteration.
func (it *TreeIterator) Tree() *Tree {
	return it.tree
}
