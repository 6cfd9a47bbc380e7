package cts

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/genostats/coalesce"
)

func writeBogusFile(path string) error {
	return os.WriteFile(path, make([]byte, 40), 0o644)
}

func testTreeSequence(t *testing.T) *coalesce.TreeSequence {
	t.Helper()

	nodes := []coalesce.Node{
		{Time: 0, IsSample: true},
		{Time: 0, IsSample: true},
		{Time: 0, IsSample: true},
		{Time: 0, IsSample: true},
		{Time: 1},
		{Time: 1.5},
		{Time: 3},
	}
	edges := []coalesce.Edge{
		{Left: 0, Right: 100, Parent: 4, Child: 0},
		{Left: 0, Right: 100, Parent: 4, Child: 1},
		{Left: 0, Right: 100, Parent: 5, Child: 2},
		{Left: 0, Right: 100, Parent: 5, Child: 3},
		{Left: 0, Right: 100, Parent: 6, Child: 4},
		{Left: 0, Right: 100, Parent: 6, Child: 5},
	}
	sites := []coalesce.Site{
		{Position: 10, AncestralState: "A"},
		{Position: 20, AncestralState: "C"},
		{Position: 55, AncestralState: "T"},
		{Position: 90, AncestralState: "G"},
	}
	mutations := []coalesce.Mutation{
		{Site: 0, Node: 0, DerivedState: "G"},
		{Site: 1, Node: 4, DerivedState: "T"},
		{Site: 2, Node: 5, DerivedState: "A"},
		{Site: 3, Node: 1, DerivedState: "C"},
	}
	ids := []string{"hap0001", "hap0002", "hap0003", "hap0004"}

	ts, err := coalesce.NewTreeSequence(100, nodes, edges, sites, mutations, ids)
	if err != nil {
		t.Fatal(err)
	}

	return ts
}

func TestRoundTrip(t *testing.T) {
	ts := testTreeSequence(t)

	expectedPositions := []float64{10, 20, 55, 90}
	expectedCounts := []uint32{1, 2, 2, 1}
	expectedGenotypes := [][]uint8{
		{1, 0, 0, 0},
		{1, 1, 0, 0},
		{0, 0, 1, 1},
		{0, 1, 0, 0},
	}
	expectedAncestral := []string{"A", "C", "T", "G"}
	expectedDerived := []string{"G", "T", "A", "C"}

	for _, compression := range []Compression{CompressionDisabled, CompressionZLIB, CompressionZStandard} {
		path := filepath.Join(t.TempDir(), "test.cts")
		if err := Create(path, ts, compression); err != nil {
			t.Fatal(err)
		}

		c, err := Open(path)
		if err != nil {
			t.Fatal(err)
		}

		if c.NSites != 4 {
			t.Errorf("%s: got %d sites, expected 4", compression, c.NSites)
		}
		if c.NSamples != 4 {
			t.Errorf("%s: got %d samples, expected 4", compression, c.NSamples)
		}
		if c.SequenceLength != 100 {
			t.Errorf("%s: got sequence length %f, expected 100", compression, c.SequenceLength)
		}
		if Compression(c.FlagCompression) != compression {
			t.Errorf("Got compression flag %d, expected %d", c.FlagCompression, compression)
		}
		if Layout(c.FlagLayout) != Layout2 {
			t.Errorf("Got layout flag %d, expected %d", c.FlagLayout, Layout2)
		}

		samples, err := ReadSamples(c)
		if err != nil {
			t.Fatal(err)
		}
		if len(samples) != 4 || samples[0].SampleID != "hap0001" || samples[3].SampleID != "hap0004" {
			t.Errorf("%s: unexpected samples %+v", compression, samples)
		}

		sr := c.NewSiteReader()
		for i := 0; ; i++ {
			rec := sr.Read()
			if rec == nil {
				if sr.Error() != nil {
					t.Fatal(sr.Error())
				}
				if i != 4 {
					t.Fatalf("%s: read %d records, expected 4", compression, i)
				}
				break
			}

			if rec.Position != expectedPositions[i] {
				t.Errorf("%s record %d: got position %f, expected %f", compression, i, rec.Position, expectedPositions[i])
			}
			if rec.DerivedCount != expectedCounts[i] {
				t.Errorf("%s record %d: got derived count %d, expected %d", compression, i, rec.DerivedCount, expectedCounts[i])
			}
			if !reflect.DeepEqual(rec.Genotypes, expectedGenotypes[i]) {
				t.Errorf("%s record %d: got genotypes %v, expected %v", compression, i, rec.Genotypes, expectedGenotypes[i])
			}
			if rec.AncestralState != expectedAncestral[i] || rec.DerivedState != expectedDerived[i] {
				t.Errorf("%s record %d: got states %s/%s, expected %s/%s", compression, i, rec.AncestralState, rec.DerivedState, expectedAncestral[i], expectedDerived[i])
			}
		}

		if err := c.Close(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestReadAt(t *testing.T) {
	ts := testTreeSequence(t)

	path := filepath.Join(t.TempDir(), "test.cts")
	if err := Create(path, ts, CompressionZStandard); err != nil {
		t.Fatal(err)
	}

	c, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	sr := c.NewSiteReader()
	var third *SiteRecord
	for i := 0; i < 3; i++ {
		third = sr.Read()
	}
	if third == nil {
		t.Fatal(sr.Error())
	}

	again := sr.ReadAt(third.FileStartPosition)
	if again == nil {
		t.Fatal(sr.Error())
	}
	if again.Position != third.Position || again.DerivedCount != third.DerivedCount {
		t.Errorf("ReadAt returned %+v, expected %+v", again, third)
	}
}

func TestOpenRejectsWrongMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.cts")
	if err := writeBogusFile(path); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(path); err == nil {
		t.Error("Expected an error opening a file without the magic number")
	}
}
