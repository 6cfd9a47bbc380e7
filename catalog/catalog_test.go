package catalog

import (
	"strings"
	"testing"
)

func TestLookupBuiltin(t *testing.T) {
	m, err := Lookup("HomSap", "BottleneckLite")
	if err != nil {
		t.Fatal(err)
	}

	p, err := m.SimulationParams()
	if err != nil {
		t.Fatal(err)
	}

	if p.SampleSize != 20 {
		t.Errorf("Got sample size %d, expected 20", p.SampleSize)
	}
	if len(p.Demography) != 2 {
		t.Fatalf("Got %d size changes, expected 2", len(p.Demography))
	}
	if p.Demography[0].Time != 900 || p.Demography[0].Size != 1800 {
		t.Errorf("Unexpected first size change: %+v", p.Demography[0])
	}
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	if _, err := Lookup("homsap", "constant"); err != nil {
		t.Error(err)
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup("PanTro", "Constant"); err == nil {
		t.Error("Expected an error for an unknown species/model pair")
	}
}

func TestLoadCSV(t *testing.T) {
	csv := strings.Join([]string{
		"species,model,description,sample_size,ne,sequence_length,mutation_rate,recombination_rate,events",
		"TestSp,Tiny,toy model,4,1000,10000,1e-8,0,100=500",
	}, "\n")

	n, err := LoadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("Loaded %d models, expected 1", n)
	}

	m, err := Lookup("TestSp", "Tiny")
	if err != nil {
		t.Fatal(err)
	}

	p, err := m.SimulationParams()
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Demography) != 1 || p.Demography[0].Size != 500 {
		t.Errorf("Unexpected demography: %+v", p.Demography)
	}
}

func TestParseEventsRejectsGarbage(t *testing.T) {
	if _, err := parseEvents("1000:500"); err == nil {
		t.Error("Expected an error for a malformed event string")
	}
}

func TestModelsSorted(t *testing.T) {
	models := Models()
	if len(models) < 4 {
		t.Fatalf("Expected at least the built-in models, got %d", len(models))
	}
	for i := 1; i < len(models); i++ {
		a, b := models[i-1], models[i]
		if a.Species > b.Species || (a.Species == b.Species && a.Name > b.Name) {
			t.Errorf("Models out of order at %d: %s/%s before %s/%s", i, a.Species, a.Name, b.Species, b.Name)
		}
	}
}
