package coalesce

import (
	"fmt"
	"time"

	"github.com/carbocation/pfx"
	"golang.org/x/exp/rand"
)

// SimulationParams configures a single coalescent simulation. Times are in
// generations, rates are per base pair per generation, and Ne is the diploid
// effective population size, so a pair of lineages coalesces at rate 1/(2Ne).
type SimulationParams struct {
	// SampleSize is the number of sampled haplotypes, n >= 2.
	SampleSize int

	// Ne is the diploid effective population size at time 0.
	Ne float64

	// SequenceLength is the simulated span in base pairs.
	SequenceLength float64

	// RecombinationRate is the per-bp per-generation crossover rate.
	RecombinationRate float64

	// MutationRate is the per-bp per-generation infinite-sites rate.
	MutationRate float64

	// Demography lists piecewise-constant size changes, strictly ordered by
	// time into the past. Empty means constant Ne.
	Demography []SizeChange

	// SampleIDs optionally names the sampled haplotypes. When empty,
	// identifiers of the form hap0001 are generated. A non-empty slice must
	// have exactly SampleSize entries.
	SampleIDs []string

	// Seed makes the run reproducible. Zero draws a seed from the clock.
	Seed uint64
}

func (p SimulationParams) validate() error {
	if p.SampleSize < 2 {
		return pfx.Err(fmt.Errorf("sample size must be at least 2; got %d", p.SampleSize))
	}
	if p.SequenceLength <= 0 {
		return pfx.Err(fmt.Errorf("sequence length must be positive; got %f", p.SequenceLength))
	}
	if p.RecombinationRate < 0 {
		return pfx.Err(fmt.Errorf("recombination rate must be non-negative; got %g", p.RecombinationRate))
	}
	if p.MutationRate < 0 {
		return pfx.Err(fmt.Errorf("mutation rate must be non-negative; got %g", p.MutationRate))
	}
	if len(p.SampleIDs) > 0 && len(p.SampleIDs) != p.SampleSize {
		return pfx.Err(fmt.Errorf("%d sample IDs provided for %d samples", len(p.SampleIDs), p.SampleSize))
	}

	return nil
}

// Simulate runs a backward-in-time coalescent with piecewise-constant
// population size and SMC recombination, then overlays infinite-sites
// mutations. The result is a complete tree sequence: marginal trees with
// genomic intervals, per-site mutation records, and genotype extraction.
func Simulate(p SimulationParams) (*TreeSequence, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	dem, err := newDemography(p.Ne, p.Demography)
	if err != nil {
		return nil, err
	}

	seed := p.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(seed))

	b := &ancestryBuilder{
		n:      p.SampleSize,
		length: p.SequenceLength,
		rho:    p.RecombinationRate,
		dem:    dem,
		rng:    rng,
		cur:    make(map[int32]int32),
		start:  make(map[int32]float64),
	}
	ts, err := b.run()
	if err != nil {
		return nil, err
	}

	if err := overlayMutations(ts, p.MutationRate, rng); err != nil {
		return nil, err
	}

	if len(p.SampleIDs) > 0 {
		ts.SampleIDs = append([]string(nil), p.SampleIDs...)
	} else {
		ts.SampleIDs = make([]string, p.SampleSize)
		for i := range ts.SampleIDs {
			ts.SampleIDs[i] = fmt.Sprintf("hap%04d", i+1)
		}
	}

	return ts, nil
}
