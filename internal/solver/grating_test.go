package solver

import (
	"testing"
)

func TestNewGrating_GeometryArity(t *testing.T) {
	tests := []struct {
		profile  Profile
		geometry []float64
		ok       bool
	}{
		{Rectangular, []float64{0.2, 0.5}, true},
		{Rectangular, []float64{0.2}, false},
		{Blazed, []float64{2.5, 30}, true},
		{Blazed, []float64{2.5, 30, 1}, false},
		{Sinusoidal, []float64{0.1}, true},
		{Sinusoidal, nil, false},
		{Trapezoidal, []float64{0.2, 0.3, 10, 70}, true},
		{Trapezoidal, []float64{0.2, 0.3}, false},
		{Profile("parabolic"), []float64{1}, false},
	}
	for _, tc := range tests {
		_, err := NewGrating(tc.profile, 1.0, "Au", tc.geometry)
		if tc.ok && err != nil {
			t.Errorf("NewGrating(%s, %v) unexpected error: %v", tc.profile, tc.geometry, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("NewGrating(%s, %v) expected error", tc.profile, tc.geometry)
		}
	}
}

func TestNewGrating_RejectsNonPositivePeriod(t *testing.T) {
	if _, err := NewGrating(Sinusoidal, 0, "Au", []float64{0.1}); err == nil {
		t.Error("expected error for zero period")
	}
	if _, err := NewGrating(Sinusoidal, -1.5, "Au", []float64{0.1}); err == nil {
		t.Error("expected error for negative period")
	}
}

func TestGrating_GeometryRoundTrip(t *testing.T) {
	g, err := NewGrating(Trapezoidal, 1.6, "Ni", []float64{0.2, 0.3, 10, 70})
	if err != nil {
		t.Fatalf("NewGrating: %v", err)
	}
	if got := g.GeometryString(); got != "0.2,0.3,10,70" {
		t.Errorf("GeometryString() = %q, want %q", got, "0.2,0.3,10,70")
	}
	vals := g.GeometryValues()
	want := []float64{0.2, 0.3, 10, 70}
	if len(vals) != len(want) {
		t.Fatalf("GeometryValues() length = %d, want %d", len(vals), len(want))
	}
	for i := range want {
		if vals[i] != want[i] {
			t.Errorf("GeometryValues()[%d] = %g, want %g", i, vals[i], want[i])
		}
	}
}
