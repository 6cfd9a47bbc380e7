// Package catalog maps species and model names onto ready-to-run coalescent
// sampling configurations, in the manner of the published demographic-model
// catalogs: look up a species and a named history, get back parameters that
// can be handed straight to the simulator.
package catalog

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"

	"github.com/genostats/coalesce"
)

// Model is one catalog entry. Events encodes the piecewise-constant size
// history as semicolon-separated time=size pairs, ordered into the past,
// e.g. "1000=5000;5000=20000".
type Model struct {
	Species           string  `csv:"species"`
	Name              string  `csv:"model"`
	Description       string  `csv:"description"`
	SampleSize        int     `csv:"sample_size"`
	Ne                float64 `csv:"ne"`
	SequenceLength    float64 `csv:"sequence_length"`
	MutationRate      float64 `csv:"mutation_rate"`
	RecombinationRate float64 `csv:"recombination_rate"`
	Events            string  `csv:"events"`
}

// SimulationParams converts the entry into simulator input, parsing the
// Events string.
func (m Model) SimulationParams() (coalesce.SimulationParams, error) {
	events, err := parseEvents(m.Events)
	if err != nil {
		return coalesce.SimulationParams{}, err
	}

	return coalesce.SimulationParams{
		SampleSize:        m.SampleSize,
		Ne:                m.Ne,
		SequenceLength:    m.SequenceLength,
		MutationRate:      m.MutationRate,
		RecombinationRate: m.RecombinationRate,
		Demography:        events,
	}, nil
}

func parseEvents(s string) ([]coalesce.SizeChange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var events []coalesce.SizeChange
	for _, part := range strings.Split(s, ";") {
		fields := strings.SplitN(part, "=", 2)
		if len(fields) != 2 {
			return nil, pfx.Err(fmt.Errorf("event %q is not of the form time=size", part))
		}
		when, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			return nil, pfx.Err(err)
		}
		size, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, pfx.Err(err)
		}
		events = append(events, coalesce.SizeChange{Time: when, Size: size})
	}

	return events, nil
}

var registry = map[string]Model{}

func key(species, name string) string {
	return strings.ToLower(species) + "/" + strings.ToLower(name)
}

// Register adds or replaces a catalog entry.
func Register(m Model) error {
	if m.Species == "" || m.Name == "" {
		return pfx.Err(fmt.Errorf("catalog entries need both a species and a model name"))
	}
	registry[key(m.Species, m.Name)] = m
	return nil
}

// Lookup finds a catalog entry by species and model name,
// case-insensitively.
func Lookup(species, name string) (Model, error) {
	m, ok := registry[key(species, name)]
	if !ok {
		return Model{}, pfx.Err(fmt.Errorf("no catalog entry for species %q, model %q", species, name))
	}
	return m, nil
}

// Models lists every registered entry, sorted by species then model name.
func Models() []Model {
	out := make([]Model, 0, len(registry))
	for _, m := range registry {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Species != out[j].Species {
			return out[i].Species < out[j].Species
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// LoadCSV merges entries from CSV with a species, model, description,
// sample_size, ne, sequence_length, mutation_rate, recombination_rate,
// events header into the catalog.
func LoadCSV(r io.Reader) (int, error) {
	var models []Model
	if err := gocsv.Unmarshal(r, &models); err != nil {
		return 0, pfx.Err(err)
	}

	for _, m := range models {
		if err := Register(m); err != nil {
			return 0, err
		}
	}

	return len(models), nil
}

func init() {
	builtins := []Model{
		{
			Species:           "HomSap",
			Name:              "Constant",
			Description:       "Constant-size human population (Ne 10,000)",
			SampleSize:        20,
			Ne:                10000,
			SequenceLength:    1e6,
			MutationRate:      1.29e-8,
			RecombinationRate: 1.2e-8,
		},
		{
			Species:           "HomSap",
			Name:              "AncientExpansion",
			Description:       "Tenfold expansion 5,000 generations ago from an ancestral size of 2,400",
			SampleSize:        20,
			Ne:                24000,
			SequenceLength:    1e6,
			MutationRate:      1.29e-8,
			RecombinationRate: 1.2e-8,
			Events:            "5000=2400",
		},
		{
			Species:           "HomSap",
			Name:              "BottleneckLite",
			Description:       "Out-of-Africa-style bottleneck: recovery to 20,000, crash to 1,800 between 900 and 4,000 generations ago, ancestral 12,300",
			SampleSize:        20,
			Ne:                20000,
			SequenceLength:    1e6,
			MutationRate:      1.29e-8,
			RecombinationRate: 1.2e-8,
			Events:            "900=1800;4000=12300",
		},
		{
			Species:           "DroMel",
			Name:              "Constant",
			Description:       "Constant-size Drosophila melanogaster population",
			SampleSize:        20,
			Ne:                1720600,
			SequenceLength:    1e5,
			MutationRate:      5.49e-9,
			RecombinationRate: 8.4e-9,
		},
	}

	for _, m := range builtins {
		if err := Register(m); err != nil {
			panic(err)
		}
	}
}
