package coalesce

import (
	"reflect"
	"testing"
)

func TestSimulateValidation(t *testing.T) {
	base := SimulationParams{SampleSize: 5, Ne: 10000, SequenceLength: 1e4, Seed: 1}

	bad := base
	bad.SampleSize = 1
	if _, err := Simulate(bad); err == nil {
		t.Error("Expected an error for a sample size below 2")
	}

	bad = base
	bad.SequenceLength = 0
	if _, err := Simulate(bad); err == nil {
		t.Error("Expected an error for a zero sequence length")
	}

	bad = base
	bad.RecombinationRate = -1e-8
	if _, err := Simulate(bad); err == nil {
		t.Error("Expected an error for a negative recombination rate")
	}

	bad = base
	bad.Ne = 0
	if _, err := Simulate(bad); err == nil {
		t.Error("Expected an error for a non-positive population size")
	}

	bad = base
	bad.SampleIDs = []string{"only-one"}
	if _, err := Simulate(bad); err == nil {
		t.Error("Expected an error for a sample ID count mismatch")
	}
}

func TestSimulateNoRecombination(t *testing.T) {
	ts, err := Simulate(SimulationParams{
		SampleSize:     8,
		Ne:             10000,
		SequenceLength: 1e4,
		MutationRate:   1e-8,
		Seed:           11,
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := ts.NumTrees(); got != 1 {
		t.Fatalf("Got %d trees without recombination, expected 1", got)
	}

	tree, err := ts.FirstTree()
	if err != nil {
		t.Fatal(err)
	}
	if tree.Left != 0 || tree.Right != ts.SequenceLength {
		t.Errorf("Single tree covers [%f, %f), expected the full sequence", tree.Left, tree.Right)
	}
	if tree.Time(tree.Root()) <= 0 {
		t.Error("Root time must be positive")
	}
	// A binary coalescent tree over n samples has 2n-1 nodes.
	if len(ts.Nodes) != 2*8-1 {
		t.Errorf("Got %d nodes, expected %d", len(ts.Nodes), 2*8-1)
	}
}

func TestSimulateInvariants(t *testing.T) {
	const (
		n = 10
		L = 1e5
	)
	ts, err := Simulate(SimulationParams{
		SampleSize:        n,
		Ne:                10000,
		SequenceLength:    L,
		RecombinationRate: 1e-8,
		MutationRate:      1e-8,
		Seed:              42,
	})
	if err != nil {
		t.Fatal(err)
	}

	if ts.NumSamples() != n {
		t.Fatalf("Got %d samples, expected %d", ts.NumSamples(), n)
	}
	for i := 0; i < n; i++ {
		if !ts.Nodes[i].IsSample || ts.Nodes[i].Time != 0 {
			t.Errorf("Node %d should be a sample at time 0", i)
		}
	}

	for i, e := range ts.Edges {
		if e.Left < 0 || e.Right > L || e.Left >= e.Right {
			t.Errorf("Edge %d has bad interval [%f, %f)", i, e.Left, e.Right)
		}
		if ts.Nodes[e.Parent].Time <= ts.Nodes[e.Child].Time {
			t.Errorf("Edge %d: parent time %f not above child time %f",
				i, ts.Nodes[e.Parent].Time, ts.Nodes[e.Child].Time)
		}
	}

	// Marginal trees must tile [0, L), each with a single root above all
	// samples.
	pos := 0.0
	trees := 0
	for it := ts.Trees(); it.Next(); {
		tree := it.Tree()
		if tree.Left != pos {
			t.Fatalf("Tree %d starts at %f, expected %f", trees, tree.Left, pos)
		}
		root := tree.Root()
		for s := int32(0); s < n; s++ {
			if !tree.IsDescendant(s, root) {
				t.Fatalf("Tree %d: sample %d does not reach root %d", trees, s, root)
			}
		}
		if tree.TotalBranchLength() <= 0 {
			t.Fatalf("Tree %d has non-positive branch length", trees)
		}
		pos = tree.Right
		trees++
	}
	if pos != L {
		t.Fatalf("Trees end at %f, expected %f", pos, L)
	}
	// With these rates the expected breakpoint count is in the hundreds.
	if trees < 2 {
		t.Errorf("Got %d trees, expected recombination to produce several", trees)
	}

	prev := -1.0
	for i, s := range ts.Sites {
		if s.Position <= prev {
			t.Errorf("Site %d at %f is not strictly after %f", i, s.Position, prev)
		}
		if s.Position < 0 || s.Position >= L {
			t.Errorf("Site %d at %f is outside the sequence", i, s.Position)
		}
		if ts.Mutations[i].DerivedState == s.AncestralState {
			t.Errorf("Site %d: derived state equals ancestral state %s", i, s.AncestralState)
		}
		prev = s.Position
	}
	if len(ts.Sites) == 0 {
		t.Fatal("Expected segregating sites at these rates")
	}

	matrix, err := ts.GenotypeMatrix()
	if err != nil {
		t.Fatal(err)
	}
	if len(matrix) != ts.NumSites() {
		t.Fatalf("Matrix has %d rows for %d sites", len(matrix), ts.NumSites())
	}
	counts, err := ts.DerivedCounts()
	if err != nil {
		t.Fatal(err)
	}
	for i, row := range matrix {
		if len(row) != n {
			t.Fatalf("Row %d has %d columns, expected %d", i, len(row), n)
		}
		k := 0
		for _, g := range row {
			if g > 1 {
				t.Fatalf("Row %d contains genotype %d", i, g)
			}
			k += int(g)
		}
		if k < 1 || k > n-1 {
			t.Errorf("Row %d has derived count %d outside 1..%d", i, k, n-1)
		}
		if k != counts[i] {
			t.Errorf("Row %d: matrix count %d disagrees with DerivedCounts %d", i, k, counts[i])
		}
	}
}

func TestSimulateSeedReproducibility(t *testing.T) {
	p := SimulationParams{
		SampleSize:        6,
		Ne:                5000,
		SequenceLength:    5e4,
		RecombinationRate: 1e-8,
		MutationRate:      2e-8,
		Seed:              7,
	}

	a, err := Simulate(p)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Simulate(p)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(a.Nodes, b.Nodes) {
		t.Error("Node tables differ between runs with the same seed")
	}
	if !reflect.DeepEqual(a.Edges, b.Edges) {
		t.Error("Edge tables differ between runs with the same seed")
	}
	if !reflect.DeepEqual(a.Sites, b.Sites) {
		t.Error("Site tables differ between runs with the same seed")
	}
	if !reflect.DeepEqual(a.Mutations, b.Mutations) {
		t.Error("Mutation tables differ between runs with the same seed")
	}
}

func TestSimulateSampleIDs(t *testing.T) {
	ts, err := Simulate(SimulationParams{
		SampleSize: 3, Ne: 1000, SequenceLength: 1000, Seed: 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ts.SampleIDs, []string{"hap0001", "hap0002", "hap0003"}) {
		t.Errorf("Got generated IDs %v", ts.SampleIDs)
	}

	ids := []string{"x", "y", "z"}
	ts, err = Simulate(SimulationParams{
		SampleSize: 3, Ne: 1000, SequenceLength: 1000, Seed: 5, SampleIDs: ids,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ts.SampleIDs, ids) {
		t.Errorf("Got IDs %v, expected %v", ts.SampleIDs, ids)
	}
}

func TestSimulateWithDemography(t *testing.T) {
	ts, err := Simulate(SimulationParams{
		SampleSize:     6,
		Ne:             10000,
		SequenceLength: 1e4,
		MutationRate:   1e-8,
		Demography: []SizeChange{
			{Time: 1000, Size: 500},
			{Time: 5000, Size: 20000},
		},
		Seed: 13,
	})
	if err != nil {
		t.Fatal(err)
	}

	tree, err := ts.FirstTree()
	if err != nil {
		t.Fatal(err)
	}
	if tree.Time(tree.Root()) <= 0 {
		t.Error("Root time must be positive")
	}

	bad := SimulationParams{
		SampleSize: 6, Ne: 10000, SequenceLength: 1e4, Seed: 13,
		Demography: []SizeChange{{Time: 500, Size: 100}, {Time: 400, Size: 200}},
	}
	if _, err := Simulate(bad); err == nil {
		t.Error("Expected an error for unordered size changes")
	}
}
