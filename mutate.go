package coalesce

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// nucleotideCode translates the internal 0-3 state codes into bases.
var nucleotideCode = [...]string{"A", "C", "G", "T"}

// Nucleotide returns the base for a 0-3 state code, or "N" for anything
// else.
func Nucleotide(code uint8) string {
	if int(code) < len(nucleotideCode) {
		return nucleotideCode[code]
	}
	return "N"
}

// overlayMutations drops infinite-sites mutations onto the genealogy. Per
// marginal tree, the mutation count is Poisson with mean mu * span * total
// branch length; each mutation lands on a branch chosen proportionally to
// its length, at a position unique across the whole sequence.
func overlayMutations(ts *TreeSequence, mu float64, rng *rand.Rand) error {
	if mu == 0 {
		return nil
	}

	seen := make(map[float64]bool)

	for it := ts.Trees(); it.Next(); {
		t := it.Tree()
		span := t.Right - t.Left
		total := t.TotalBranchLength()
		lambda := mu * span * total
		if lambda <= 0 {
			continue
		}

		count := int(distuv.Poisson{Lambda: lambda, Src: rng}.Rand())
		for i := 0; i < count; i++ {
			node := chooseBranch(t, rng, total)

			pos := t.Left + rng.Float64()*span
			for seen[pos] {
				pos = t.Left + rng.Float64()*span
			}
			seen[pos] = true

			anc := rng.Intn(len(nucleotideCode))
			der := (anc + 1 + rng.Intn(len(nucleotideCode)-1)) % len(nucleotideCode)

			ts.Sites = append(ts.Sites, Site{
				Position:       pos,
				AncestralState: Nucleotide(uint8(anc)),
			})
			ts.Mutations = append(ts.Mutations, Mutation{
				Site:         int32(len(ts.Sites) - 1),
				Node:         node,
				DerivedState: Nucleotide(uint8(der)),
			})
		}
	}

	ts.sortTables()

	return nil
}

// chooseBranch picks the child end of a branch with probability proportional
// to branch length.
func chooseBranch(t *Tree, rng *rand.Rand, total float64) int32 {
	u := rng.Float64() * total
	last := NullNode
	for child := int32(0); int(child) < len(t.parent); child++ {
		parent := t.parent[child]
		if parent == NullNode {
			continue
		}
		length := t.ts.Nodes[parent].Time - t.ts.Nodes[child].Time
		if u < length {
			return child
		}
		u -= length
		last = child
	}
	return last
}
