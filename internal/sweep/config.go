package sweep

import (
	"fmt"
	"math"
	"strconv"

	"github.com/beamline-tools/greff/internal/solver"
)

// Mode selects what the sweep coordinate means and which parameter stays
// fixed across steps. The string values match the original command-line
// vocabulary and the output header.
type Mode string

const (
	// ConstantIncidence sweeps wavelength (or energy) at a fixed incidence
	// angle.
	ConstantIncidence Mode = "constantIncidence"
	// ConstantIncludedAngle sweeps wavelength (or energy) while solving the
	// incidence angle so a fixed included angle is held between the incident
	// beam and a designated order. This is the monochromator operating mode.
	ConstantIncludedAngle Mode = "constantIncludedAngle"
	// ConstantWavelength sweeps the incidence angle in degrees at a fixed
	// wavelength.
	ConstantWavelength Mode = "constantWavelength"
)

// Config is the fully validated description of one sweep. It is built once
// by the caller and never mutated by the controller.
type Config struct {
	Mode      Mode
	Min       float64
	Max       float64
	Increment float64

	// Mode parameters; only the one matching Mode is meaningful.
	IncidenceAngle float64 // constantIncidence, degrees
	IncludedAngle  float64 // constantIncludedAngle, degrees
	ToOrder        int     // constantIncludedAngle, signed order
	Wavelength     float64 // constantWavelength, um (or eV when EnergyUnits)

	// EnergyUnits interprets Min/Max/Increment/Wavelength as photon energies
	// in eV instead of wavelengths in um. The swept coordinate of
	// constantWavelength mode is always degrees and never converted.
	EnergyUnits bool

	DebugOutput bool

	Grating         solver.Grating
	TruncationOrder int
}

// TotalSteps returns floor((Max-Min)/Increment) + 1, the step count of the
// sweep. A degenerate configuration can yield a value below 1; Validate
// rejects those.
func (c *Config) TotalSteps() int {
	return int((c.Max-c.Min)/c.Increment) + 1
}

// Coordinate returns the sweep coordinate of step i: Min + Increment*i.
func (c *Config) Coordinate(i int) float64 {
	return c.Min + c.Increment*float64(i)
}

// Validate rejects configurations the controller cannot run. Mode/parameter
// consistency is the caller's concern; this defends the controller's own
// invariants.
func (c *Config) Validate() error {
	switch c.Mode {
	case ConstantIncidence, ConstantIncludedAngle, ConstantWavelength:
	default:
		return fmt.Errorf("unknown sweep mode %q", c.Mode)
	}
	if c.Increment == 0 {
		return fmt.Errorf("increment must be non-zero")
	}
	if math.IsNaN(c.Min) || math.IsNaN(c.Max) || math.IsNaN(c.Increment) {
		return fmt.Errorf("min/max/increment must be finite")
	}
	if n := c.TotalSteps(); n < 1 {
		return fmt.Errorf("sweep from %g to %g by %g yields %d steps; need at least 1", c.Min, c.Max, c.Increment, n)
	}
	if c.TruncationOrder < 1 {
		return fmt.Errorf("truncation order must be >= 1, got %d", c.TruncationOrder)
	}
	return nil
}

// InputEcho renders the header echo of the configuration as ordered
// key=value lines for the # Input section of the output artifact.
func (c *Config) InputEcho() []string {
	units := "um"
	if c.EnergyUnits {
		units = "eV"
	}
	lines := []string{"mode=" + string(c.Mode)}
	switch c.Mode {
	case ConstantIncidence:
		lines = append(lines, "incidenceAngle="+ftoa(c.IncidenceAngle))
	case ConstantIncludedAngle:
		lines = append(lines,
			"includedAngle="+ftoa(c.IncludedAngle),
			"toOrder="+strconv.Itoa(c.ToOrder))
	case ConstantWavelength:
		lines = append(lines, "wavelength="+ftoa(c.Wavelength))
	}
	lines = append(lines,
		"units="+units,
		"min="+ftoa(c.Min),
		"max="+ftoa(c.Max),
		"increment="+ftoa(c.Increment),
		"gratingType="+string(c.Grating.Profile),
		"gratingPeriod="+ftoa(c.Grating.Period),
		"gratingGeometry="+c.Grating.GeometryString(),
		"gratingMaterial="+c.Grating.Material,
		"N="+strconv.Itoa(c.TruncationOrder),
	)
	return lines
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
