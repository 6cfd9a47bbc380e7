package coalesce

import (
	"fmt"

	"github.com/carbocation/pfx"
)

// GenotypeMatrix extracts the site-by-sample matrix of derived-allele
// indicators. Rows follow site position order, columns follow sample order;
// entry [i][j] is 1 when sample j inherits the mutation at site i.
func (ts *TreeSequence) GenotypeMatrix() ([][]uint8, error) {
	matrix := make([][]uint8, 0, len(ts.Sites))

	next := 0
	for it := ts.Trees(); it.Next(); {
		t := it.Tree()
		for next < len(ts.Sites) && ts.Sites[next].Position < t.Right {
			if ts.Sites[next].Position < t.Left {
				return nil, pfx.Err(fmt.Errorf("site %d at position %f precedes tree interval [%f, %f)", next, ts.Sites[next].Position, t.Left, t.Right))
			}

			mut := ts.Mutations[next]
			row := make([]uint8, ts.nSamples)
			for j := range row {
				if t.IsDescendant(int32(j), mut.Node) {
					row[j] = 1
				}
			}
			matrix = append(matrix, row)
			next++
		}
	}

	if next != len(ts.Sites) {
		return nil, pfx.Err(fmt.Errorf("only %d of %d sites fell inside tree intervals", next, len(ts.Sites)))
	}

	return matrix, nil
}

// DerivedCounts returns the per-site derived-allele counts in position
// order, without materializing the full matrix.
func (ts *TreeSequence) DerivedCounts() ([]int, error) {
	counts := make([]int, 0, len(ts.Sites))

	next := 0
	for it := ts.Trees(); it.Next(); {
		t := it.Tree()
		for next < len(ts.Sites) && ts.Sites[next].Position < t.Right {
			counts = append(counts, len(t.SamplesBelow(ts.Mutations[next].Node)))
			next++
		}
	}

	if next != len(ts.Sites) {
		return nil, pfx.Err(fmt.Errorf("only %d of %d sites fell inside tree intervals", next, len(ts.Sites)))
	}

	return counts, nil
}
