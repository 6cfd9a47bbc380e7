package coalesce

import "testing"

func TestDemographySizeAt(t *testing.T) {
	d, err := newDemography(10000, []SizeChange{
		{Time: 500, Size: 2000},
		{Time: 3000, Size: 15000},
	})
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		time     float64
		expected float64
	}{
		{0, 10000},
		{499.9, 10000},
		{500, 2000},
		{2999, 2000},
		{3000, 15000},
		{1e6, 15000},
	}
	for _, c := range cases {
		if got := d.sizeAt(c.time); got != c.expected {
			t.Errorf("sizeAt(%f) = %f, expected %f", c.time, got, c.expected)
		}
	}
}

func TestDemographyNextChange(t *testing.T) {
	d, err := newDemography(10000, []SizeChange{
		{Time: 500, Size: 2000},
		{Time: 3000, Size: 15000},
	})
	if err != nil {
		t.Fatal(err)
	}

	if next, ok := d.nextChange(0); !ok || next != 500 {
		t.Errorf("nextChange(0) = %f, %v; expected 500, true", next, ok)
	}
	if next, ok := d.nextChange(500); !ok || next != 3000 {
		t.Errorf("nextChange(500) = %f, %v; expected 3000, true", next, ok)
	}
	if _, ok := d.nextChange(3000); ok {
		t.Error("Expected no change after the last change point")
	}
}

func TestDemographyValidation(t *testing.T) {
	if _, err := newDemography(0, nil); err == nil {
		t.Error("Expected an error for a non-positive base size")
	}
	if _, err := newDemography(1000, []SizeChange{{Time: 10, Size: 0}}); err == nil {
		t.Error("Expected an error for a non-positive changed size")
	}
	if _, err := newDemography(1000, []SizeChange{{Time: -1, Size: 500}}); err == nil {
		t.Error("Expected an error for a negative change time")
	}
	if _, err := newDemography(1000, []SizeChange{{Time: 100, Size: 500}, {Time: 100, Size: 800}}); err == nil {
		t.Error("Expected an error for non-increasing change times")
	}
}
