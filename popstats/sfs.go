// Package popstats computes standard population-genetic summary statistics
// from a genotype matrix: rows are variant sites in position order, columns
// are sampled haplotypes, and entries are derived-allele indicators.
package popstats

import (
	"fmt"

	"github.com/carbocation/pfx"
)

// SiteFrequencySpectrum bins the sites of a genotype matrix by derived-allele
// count. The result has n-1 entries; entry k-1 counts the sites where exactly
// k of the n samples carry the derived allele.
//
// Rows whose derived count is 0 or n are invariant under this sampling and
// are dropped silently: the infinite-sites model cannot produce them, but
// matrices re-coded by hand or exported with a miscoded ancestral state can.
// A row whose width differs from n is an error.
func SiteFrequencySpectrum(matrix [][]uint8, n int) ([]int, error) {
	if n < 0 {
		return nil, pfx.Err(fmt.Errorf("sample count must be non-negative; got %d", n))
	}
	if n <= 1 {
		// One sample admits no polymorphism; the spectrum has no bins.
		return []int{}, nil
	}

	spectrum := make([]int, n-1)
	for i, row := range matrix {
		if len(row) != n {
			return nil, pfx.Err(fmt.Errorf("site %d has %d sample columns; expected %d", i, len(row), n))
		}

		k := 0
		for _, g := range row {
			k += int(g)
		}
		if k <= 0 || k >= n {
			continue
		}
		spectrum[k-1]++
	}

	return spectrum, nil
}
