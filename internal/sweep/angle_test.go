package sweep

import (
	"errors"
	"math"
	"testing"

	"github.com/beamline-tools/greff/internal/solver"
)

func testGrating(t *testing.T, period float64) solver.Grating {
	t.Helper()
	g, err := solver.NewGrating(solver.Blazed, period, "Au", []float64{2.5, 30})
	if err != nil {
		t.Fatalf("NewGrating: %v", err)
	}
	return g
}

func TestResolveStep_ConstantIncidence(t *testing.T) {
	cfg := &Config{
		Mode:           ConstantIncidence,
		IncidenceAngle: 88,
		EnergyUnits:    true,
		Grating:        testGrating(t, 1.0),
	}

	// Scenario: eV sweep at fixed incidence, wavelengths are HC/energy.
	for _, energy := range []float64{100, 105, 110} {
		in, err := cfg.ResolveStep(energy)
		if err != nil {
			t.Fatalf("ResolveStep(%g): %v", energy, err)
		}
		if in.IncidenceDeg != 88 {
			t.Errorf("incidence = %g, want fixed 88", in.IncidenceDeg)
		}
		if want := HC / energy; math.Abs(in.WavelengthUM-want) > 1e-15 {
			t.Errorf("wavelength at %g eV = %g, want %g", energy, in.WavelengthUM, want)
		}
	}
}

func TestResolveStep_ConstantWavelength(t *testing.T) {
	cfg := &Config{
		Mode:       ConstantWavelength,
		Wavelength: 2.0,
		Grating:    testGrating(t, 1.0),
	}

	// The swept coordinate is the incidence angle in degrees, unconverted.
	for _, angle := range []float64{10, 15, 20} {
		in, err := cfg.ResolveStep(angle)
		if err != nil {
			t.Fatalf("ResolveStep(%g): %v", angle, err)
		}
		if in.IncidenceDeg != angle {
			t.Errorf("incidence = %g, want sweep coordinate %g", in.IncidenceDeg, angle)
		}
		if in.WavelengthUM != 2.0 {
			t.Errorf("wavelength = %g, want fixed 2.0", in.WavelengthUM)
		}
	}
}

func TestResolveStep_ConstantWavelength_EnergyConvertsFixedValueOnly(t *testing.T) {
	cfg := &Config{
		Mode:        ConstantWavelength,
		Wavelength:  100, // eV
		EnergyUnits: true,
		Grating:     testGrating(t, 1.0),
	}
	in, err := cfg.ResolveStep(45)
	if err != nil {
		t.Fatalf("ResolveStep: %v", err)
	}
	if in.IncidenceDeg != 45 {
		t.Errorf("incidence = %g; the angle coordinate must never be energy-converted", in.IncidenceDeg)
	}
	if want := HC / 100; math.Abs(in.WavelengthUM-want) > 1e-15 {
		t.Errorf("wavelength = %g, want converted fixed value %g", in.WavelengthUM, want)
	}
}

func TestResolveStep_ConstantIncludedAngle(t *testing.T) {
	cfg := &Config{
		Mode:          ConstantIncludedAngle,
		IncludedAngle: 160,
		ToOrder:       -1,
		Grating:       testGrating(t, 1.0),
	}

	in, err := cfg.ResolveStep(0.25) // 0.25 um on a 1 um period
	if err != nil {
		t.Fatalf("ResolveStep: %v", err)
	}

	// The solution must satisfy both the included-angle constraint and the
	// grating equation: beta = cia - alpha, m*lambda/d = sin(beta) - sin(alpha).
	alpha := in.IncidenceDeg * math.Pi / 180
	cia := 160 * math.Pi / 180
	beta := cia - alpha
	lhs := float64(-1) * 0.25 / 1.0
	rhs := math.Sin(beta) - math.Sin(alpha)
	if math.Abs(lhs-rhs) > 1e-12 {
		t.Errorf("grating equation violated: m*lambda/d = %g, sin(beta)-sin(alpha) = %g", lhs, rhs)
	}
}

func TestResolveStep_IncludedAngleDomainError(t *testing.T) {
	cfg := &Config{
		Mode:          ConstantIncludedAngle,
		IncludedAngle: 160,
		ToOrder:       -5,
		Grating:       testGrating(t, 1.0),
	}

	// |m|*lambda/(2*d*cos(cia/2)) > 1: no real incidence angle exists.
	_, err := cfg.ResolveStep(2.0)
	if !errors.Is(err, ErrNoRealSolution) {
		t.Fatalf("expected ErrNoRealSolution, got %v", err)
	}

	// Shorter wavelengths stay solvable.
	if _, err := cfg.ResolveStep(0.05); err != nil {
		t.Errorf("expected real solution at 0.05 um, got %v", err)
	}
}

func TestResolveStep_IncludedAngleContinuity(t *testing.T) {
	cfg := &Config{
		Mode:          ConstantIncludedAngle,
		IncludedAngle: 160,
		ToOrder:       -1,
		Grating:       testGrating(t, 1.0),
	}

	prev := math.NaN()
	for wl := 0.05; wl <= 0.3; wl += 0.001 {
		in, err := cfg.ResolveStep(wl)
		if err != nil {
			t.Fatalf("ResolveStep(%g): %v", wl, err)
		}
		if !math.IsNaN(prev) && math.Abs(in.IncidenceDeg-prev) > 0.5 {
			t.Fatalf("incidence angle jumped from %g to %g at wavelength %g", prev, in.IncidenceDeg, wl)
		}
		prev = in.IncidenceDeg
	}
}

func TestResolveStep_ZeroEnergyIsRecoverable(t *testing.T) {
	cfg := &Config{
		Mode:        ConstantIncidence,
		EnergyUnits: true,
		Grating:     testGrating(t, 1.0),
	}
	_, err := cfg.ResolveStep(0)
	if !errors.Is(err, ErrZeroEnergy) {
		t.Fatalf("expected ErrZeroEnergy, got %v", err)
	}
}
