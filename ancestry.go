package coalesce

import (
	"fmt"
	"math"
	"sort"

	"github.com/carbocation/pfx"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// ancestryBuilder simulates the genealogy backward in time. The current
// marginal tree is held as a child->parent map over the growing node table;
// edges are emitted whenever a relationship changes along the genome, so
// unbroken relationships come out pre-squashed.
type ancestryBuilder struct {
	n      int
	length float64
	rho    float64
	dem    demography
	rng    *rand.Rand

	nodes []Node
	edges []Edge
	cur   map[int32]int32   // child -> parent in the current marginal tree
	start map[int32]float64 // left coordinate of each open edge
}

func (b *ancestryBuilder) run() (*TreeSequence, error) {
	for i := 0; i < b.n; i++ {
		b.nodes = append(b.nodes, Node{Time: 0, IsSample: true})
	}
	b.firstTree()

	if b.rho > 0 {
		pos := 0.0
		for {
			pos += b.expDraw(b.rho * b.treeBranchLength())
			if pos >= b.length {
				break
			}
			if err := b.recombine(pos); err != nil {
				return nil, err
			}
		}
	}

	for _, child := range b.sortedChildren() {
		b.closeEdge(child, b.length)
	}

	ts := &TreeSequence{
		SequenceLength: b.length,
		Nodes:          b.nodes,
		Edges:          b.edges,
		nSamples:       b.n,
	}
	ts.sortTables()

	return ts, nil
}

// firstTree draws the genealogy at the left end of the sequence under the
// standard coalescent, handling population-size epochs exactly: a waiting
// time that crosses an epoch boundary is discarded and redrawn from the
// boundary.
func (b *ancestryBuilder) firstTree() {
	active := make([]int32, b.n)
	for i := range active {
		active[i] = int32(i)
	}

	t := 0.0
	for len(active) > 1 {
		k := float64(len(active))
		rate := k * (k - 1) / 2 / (2 * b.dem.sizeAt(t))
		wait := b.expDraw(rate)
		if next, ok := b.dem.nextChange(t); ok && t+wait > next {
			t = next
			continue
		}
		t += wait

		i := b.rng.Intn(len(active))
		j := b.rng.Intn(len(active) - 1)
		if j >= i {
			j++
		}
		first, second := active[i], active[j]

		parent := int32(len(b.nodes))
		b.nodes = append(b.nodes, Node{Time: t})
		b.setParent(first, parent, 0)
		b.setParent(second, parent, 0)

		if i < j {
			i, j = j, i
		}
		active[i] = active[len(active)-1]
		active = active[:len(active)-1]
		active[j] = parent
	}
}

// recombine applies one SMC step at genomic position x: cut the current tree
// at a uniformly chosen point, splice out the resulting unary node, and let
// the detached lineage re-coalesce into what remains.
func (b *ancestryBuilder) recombine(x float64) error {
	children := b.sortedChildren()
	u := b.rng.Float64() * b.treeBranchLength()
	cut := NullNode
	var h float64
	for _, child := range children {
		length := b.nodes[b.cur[child]].Time - b.nodes[child].Time
		if u < length {
			cut = child
			h = b.nodes[child].Time + u
			break
		}
		u -= length
	}
	if cut == NullNode {
		// Round-off pushed u past the total; take the top of the last branch.
		cut = children[len(children)-1]
		h = b.nodes[b.cur[cut]].Time
	}

	p := b.cur[cut]
	b.removeParent(cut, x)

	// p now has a single child; splice it out of the remaining tree.
	sib := NullNode
	for _, child := range b.sortedChildren() {
		if b.cur[child] == p {
			sib = child
			break
		}
	}
	if sib == NullNode {
		return pfx.Err(fmt.Errorf("internal node %d lost both children during recombination", p))
	}
	if g, ok := b.cur[p]; ok {
		b.removeParent(p, x)
		b.setParent(sib, g, x)
	} else {
		// p was the root, so its remaining child takes over as root.
		b.removeParent(sib, x)
	}

	root := sib
	for {
		parent, ok := b.cur[root]
		if !ok {
			break
		}
		root = parent
	}

	return b.recoalesce(cut, h, root, x)
}

// recoalesce merges the lineage detached at height h back into the remaining
// tree. The lineage competes with every branch crossing the current time,
// plus the root lineage extending indefinitely upward.
func (b *ancestryBuilder) recoalesce(detached int32, h float64, root int32, x float64) error {
	type span struct {
		lo, hi float64
		child  int32
	}

	var branches []span
	for _, child := range b.sortedChildren() {
		branches = append(branches, span{
			lo:    b.nodes[child].Time,
			hi:    b.nodes[b.cur[child]].Time,
			child: child,
		})
	}
	branches = append(branches, span{lo: b.nodes[root].Time, hi: math.Inf(1), child: root})

	t := h
	for {
		active := 0
		for _, s := range branches {
			if s.lo <= t && t < s.hi {
				active++
			}
		}
		if active == 0 {
			return pfx.Err(fmt.Errorf("no ancestral lineages available at time %f", t))
		}

		next := math.Inf(1)
		for _, s := range branches {
			if s.lo > t && s.lo < next {
				next = s.lo
			}
			if s.hi > t && s.hi < next {
				next = s.hi
			}
		}
		if ct, ok := b.dem.nextChange(t); ok && ct < next {
			next = ct
		}

		wait := b.expDraw(float64(active) / (2 * b.dem.sizeAt(t)))
		if t+wait >= next {
			t = next
			continue
		}
		t += wait

		idx := b.rng.Intn(active)
		var target span
		for _, s := range branches {
			if s.lo <= t && t < s.hi {
				if idx == 0 {
					target = s
					break
				}
				idx--
			}
		}

		merged := int32(len(b.nodes))
		b.nodes = append(b.nodes, Node{Time: t})
		if math.IsInf(target.hi, 1) {
			// Coalesced above the old root; merged becomes the new root.
			b.setParent(target.child, merged, x)
		} else {
			grand := b.cur[target.child]
			b.setParent(target.child, merged, x)
			b.setParent(merged, grand, x)
		}
		b.setParent(detached, merged, x)

		return nil
	}
}

func (b *ancestryBuilder) setParent(child, parent int32, x float64) {
	if p, ok := b.cur[child]; ok {
		if p == parent {
			return
		}
		b.closeEdge(child, x)
	}
	b.cur[child] = parent
	b.start[child] = x
}

func (b *ancestryBuilder) removeParent(child int32, x float64) {
	if _, ok := b.cur[child]; !ok {
		return
	}
	b.closeEdge(child, x)
	delete(b.cur, child)
	delete(b.start, child)
}

func (b *ancestryBuilder) closeEdge(child int32, x float64) {
	if left := b.start[child]; x > left {
		b.edges = append(b.edges, Edge{Left: left, Right: x, Parent: b.cur[child], Child: child})
	}
}

// sortedChildren lists the children of the current tree in ID order so that
// every random choice consumes the generator deterministically.
func (b *ancestryBuilder) sortedChildren() []int32 {
	out := make([]int32, 0, len(b.cur))
	for child := range b.cur {
		out = append(out, child)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (b *ancestryBuilder) treeBranchLength() float64 {
	var total float64
	for _, child := range b.sortedChildren() {
		total += b.nodes[b.cur[child]].Time - b.nodes[child].Time
	}
	return total
}

func (b *ancestryBuilder) expDraw(rate float64) float64 {
	return distuv.Exponential{Rate: rate, Src: b.rng}.Rand()
}
