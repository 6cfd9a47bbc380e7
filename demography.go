package coalesce

import (
	"fmt"

	"github.com/carbocation/pfx"
)

// SizeChange sets the diploid effective population size to Size at Time
// generations in the past. Changes apply backward in time: between two
// change points the size is constant.
type SizeChange struct {
	Time float64
	Size float64
}

// demography evaluates a piecewise-constant population size history.
type demography struct {
	base    float64
	changes []SizeChange
}

func newDemography(base float64, changes []SizeChange) (demography, error) {
	if base <= 0 {
		return demography{}, pfx.Err(fmt.Errorf("effective population size must be positive; got %f", base))
	}

	prev := 0.0
	for i, c := range changes {
		if c.Size <= 0 {
			return demography{}, pfx.Err(fmt.Errorf("size change %d has non-positive size %f", i, c.Size))
		}
		if c.Time < 0 {
			return demography{}, pfx.Err(fmt.Errorf("size change %d has negative time %f", i, c.Time))
		}
		if i > 0 && c.Time <= prev {
			return demography{}, pfx.Err(fmt.Errorf("size changes must be strictly time-ordered; change %d at %f does not follow %f", i, c.Time, prev))
		}
		prev = c.Time
	}

	return demography{base: base, changes: changes}, nil
}

// sizeAt returns the population size in force at time t generations ago.
func (d demography) sizeAt(t float64) float64 {
	size := d.base
	for _, c := range d.changes {
		if c.Time > t {
			break
		}
		size = c.Size
	}
	return size
}

// nextChange returns the first change time strictly after t, if any.
func (d demography) nextChange(t float64) (float64, bool) {
	for _, c := range d.changes {
		if c.Time > t {
			return c.Time, true
		}
	}
	return 0, false
}
