package popstats

import (
	"reflect"
	"testing"
)

func rowWithCount(n, k int) []uint8 {
	row := make([]uint8, n)
	for i := 0; i < k; i++ {
		row[i] = 1
	}
	return row
}

func TestSpectrumExample(t *testing.T) {
	// n=4 samples, derived counts [1,1,2,3] => bins [2,1,1]
	matrix := [][]uint8{
		rowWithCount(4, 1),
		rowWithCount(4, 1),
		rowWithCount(4, 2),
		rowWithCount(4, 3),
	}

	spectrum, err := SiteFrequencySpectrum(matrix, 4)
	if err != nil {
		t.Fatal(err)
	}

	expected := []int{2, 1, 1}
	if !reflect.DeepEqual(spectrum, expected) {
		t.Errorf("Got %v, expected %v", spectrum, expected)
	}
}

func TestSpectrumDropsInvariantRows(t *testing.T) {
	matrix := [][]uint8{
		rowWithCount(4, 0),
		rowWithCount(4, 2),
		rowWithCount(4, 4),
	}

	spectrum, err := SiteFrequencySpectrum(matrix, 4)
	if err != nil {
		t.Fatal(err)
	}

	expected := []int{0, 1, 0}
	if !reflect.DeepEqual(spectrum, expected) {
		t.Errorf("Got %v, expected %v", spectrum, expected)
	}
}

func TestSpectrumSumEqualsSegregatingSites(t *testing.T) {
	matrix := [][]uint8{
		rowWithCount(6, 1),
		rowWithCount(6, 5),
		rowWithCount(6, 3),
		rowWithCount(6, 0),
		rowWithCount(6, 6),
		rowWithCount(6, 2),
		rowWithCount(6, 2),
	}

	spectrum, err := SiteFrequencySpectrum(matrix, 6)
	if err != nil {
		t.Fatal(err)
	}

	total := 0
	for _, count := range spectrum {
		total += count
	}

	s, err := SegregatingSites(matrix, 6)
	if err != nil {
		t.Fatal(err)
	}

	if total != s {
		t.Errorf("Spectrum bins sum to %d, but there are %d segregating sites", total, s)
	}
}

func TestSpectrumSingleSample(t *testing.T) {
	spectrum, err := SiteFrequencySpectrum([][]uint8{{1}, {0}}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(spectrum) != 0 {
		t.Errorf("Expected an empty spectrum for a single sample, got %v", spectrum)
	}
}

func TestSpectrumShapeMismatch(t *testing.T) {
	matrix := [][]uint8{
		rowWithCount(4, 1),
		rowWithCount(3, 1),
	}

	if _, err := SiteFrequencySpectrum(matrix, 4); err == nil {
		t.Error("Expected a shape error for a row with the wrong sample count")
	}
}

func TestSpectrumIdempotent(t *testing.T) {
	matrix := [][]uint8{
		rowWithCount(5, 1),
		rowWithCount(5, 4),
		rowWithCount(5, 2),
	}

	first, err := SiteFrequencySpectrum(matrix, 5)
	if err != nil {
		t.Fatal(err)
	}
	second, err := SiteFrequencySpectrum(matrix, 5)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Recomputation changed the spectrum: %v vs %v", first, second)
	}
}
