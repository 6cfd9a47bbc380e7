package popstats

import (
	"fmt"
	"math"

	"github.com/carbocation/pfx"
)

// TajimasD compares the pairwise-difference and segregating-site estimators
// of theta, normalized by the variance expected under neutrality at constant
// population size, following Tajima (1989). The statistic is undefined for
// fewer than 4 samples or for a matrix with no segregating sites; both
// return an error.
func TajimasD(matrix [][]uint8, n int) (float64, error) {
	if n < 4 {
		return 0, pfx.Err(fmt.Errorf("Tajima's D needs at least 4 samples; got %d", n))
	}

	s, err := SegregatingSites(matrix, n)
	if err != nil {
		return 0, err
	}
	if s == 0 {
		return 0, pfx.Err(fmt.Errorf("Tajima's D is undefined with no segregating sites"))
	}

	pi, err := PairwiseDifferences(matrix, n)
	if err != nil {
		return 0, err
	}

	nf := float64(n)
	a1 := harmonic(n-1, 1)
	a2 := harmonic(n-1, 2)
	b1 := (nf + 1) / (3 * (nf - 1))
	b2 := 2 * (nf*nf + nf + 3) / (9 * nf * (nf - 1))
	c1 := b1 - 1/a1
	c2 := b2 - (nf+2)/(a1*nf) + a2/(a1*a1)
	e1 := c1 / a1
	e2 := c2 / (a1*a1 + a2)

	sf := float64(s)
	variance := e1*sf + e2*sf*(sf-1)
	if variance <= 0 {
		return 0, pfx.Err(fmt.Errorf("non-positive variance estimate %g for S=%d, n=%d", variance, s, n))
	}

	return (pi - sf/a1) / math.Sqrt(variance), nil
}
