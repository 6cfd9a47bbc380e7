package popstats

import (
	"fmt"

	"github.com/carbocation/pfx"
)

// derivedCount sums one matrix row, enforcing the declared sample width.
func derivedCount(row []uint8, i, n int) (int, error) {
	if len(row) != n {
		return 0, pfx.Err(fmt.Errorf("site %d has %d sample columns; expected %d", i, len(row), n))
	}
	k := 0
	for _, g := range row {
		k += int(g)
	}
	return k, nil
}

// PairwiseDifferences returns pi as a total over sites: the mean number of
// differences between two haplotypes drawn without replacement, summed over
// every segregating site. At a site with derived count k that mean is
// k*(n-k)/C(n,2).
func PairwiseDifferences(matrix [][]uint8, n int) (float64, error) {
	if n < 2 {
		return 0, pfx.Err(fmt.Errorf("pairwise differences need at least 2 samples; got %d", n))
	}

	pairs := float64(Choose(n, 2))
	var pi float64
	for i, row := range matrix {
		k, err := derivedCount(row, i, n)
		if err != nil {
			return 0, err
		}
		pi += float64(k*(n-k)) / pairs
	}

	return pi, nil
}

// NucleotideDiversity is pi per base pair: PairwiseDifferences divided by
// the sequence length. A non-positive seqLen returns the unscaled total.
func NucleotideDiversity(matrix [][]uint8, n int, seqLen float64) (float64, error) {
	pi, err := PairwiseDifferences(matrix, n)
	if err != nil {
		return 0, err
	}
	if seqLen > 0 {
		pi /= seqLen
	}
	return pi, nil
}

// SegregatingSites counts the rows that are polymorphic across the full
// sample.
func SegregatingSites(matrix [][]uint8, n int) (int, error) {
	s := 0
	for i, row := range matrix {
		k, err := derivedCount(row, i, n)
		if err != nil {
			return 0, err
		}
		if k > 0 && k < n {
			s++
		}
	}
	return s, nil
}

// SegregatingSitesSubset counts the rows that remain polymorphic when the
// sample is restricted to the given column indices.
func SegregatingSitesSubset(matrix [][]uint8, n int, cols []int) (int, error) {
	for _, c := range cols {
		if c < 0 || c >= n {
			return 0, pfx.Err(fmt.Errorf("sample column %d is out of range [0, %d)", c, n))
		}
	}

	s := 0
	for i, row := range matrix {
		if len(row) != n {
			return 0, pfx.Err(fmt.Errorf("site %d has %d sample columns; expected %d", i, len(row), n))
		}

		k := 0
		for _, c := range cols {
			k += int(row[c])
		}
		if k > 0 && k < len(cols) {
			s++
		}
	}

	return s, nil
}

// WattersonTheta estimates theta from the segregating-site count: S divided
// by the harmonic number a1 = sum(1/i, i=1..n-1), per base pair when seqLen
// is positive.
func WattersonTheta(matrix [][]uint8, n int, seqLen float64) (float64, error) {
	if n < 2 {
		return 0, pfx.Err(fmt.Errorf("Watterson's estimator needs at least 2 samples; got %d", n))
	}

	s, err := SegregatingSites(matrix, n)
	if err != nil {
		return 0, err
	}

	theta := float64(s) / harmonic(n-1, 1)
	if seqLen > 0 {
		theta /= seqLen
	}
	return theta, nil
}

// harmonic returns sum over i=1..m of 1/i^power.
func harmonic(m, power int) float64 {
	var h float64
	for i := 1; i <= m; i++ {
		term := 1.0
		for p := 0; p < power; p++ {
			term /= float64(i)
		}
		h += term
	}
	return h
}
