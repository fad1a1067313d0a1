package sweep

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoRealSolution reports that the included-angle equation has no real
// incidence angle at the requested wavelength and order. This is an expected
// condition for some coordinate ranges, recorded as a failed step rather
// than aborting the sweep.
var ErrNoRealSolution = errors.New("included-angle equation has no real solution")

// PhysicalInput is the resolved physical input of one step.
type PhysicalInput struct {
	WavelengthUM float64
	IncidenceDeg float64
}

// ResolveStep derives the wavelength and incidence angle for one sweep
// coordinate according to the configured mode. Errors returned here are
// per-step and recoverable.
func (c *Config) ResolveStep(coordinate float64) (PhysicalInput, error) {
	switch c.Mode {
	case ConstantIncidence:
		wl, err := ToWavelength(coordinate, c.EnergyUnits)
		if err != nil {
			return PhysicalInput{}, err
		}
		return PhysicalInput{WavelengthUM: wl, IncidenceDeg: c.IncidenceAngle}, nil

	case ConstantWavelength:
		// The swept coordinate IS the incidence angle in degrees; only the
		// fixed wavelength is subject to unit conversion.
		wl, err := ToWavelength(c.Wavelength, c.EnergyUnits)
		if err != nil {
			return PhysicalInput{}, err
		}
		return PhysicalInput{WavelengthUM: wl, IncidenceDeg: coordinate}, nil

	case ConstantIncludedAngle:
		wl, err := ToWavelength(coordinate, c.EnergyUnits)
		if err != nil {
			return PhysicalInput{}, err
		}
		incidence, err := includedAngleIncidence(wl, c.Grating.Period, c.IncludedAngle, c.ToOrder)
		if err != nil {
			return PhysicalInput{}, err
		}
		return PhysicalInput{WavelengthUM: wl, IncidenceDeg: incidence}, nil

	default:
		return PhysicalInput{}, fmt.Errorf("unknown sweep mode %q", c.Mode)
	}
}

// includedAngleIncidence solves the grating equation
// m*lambda/d = sin(beta) - sin(alpha) under the constraint alpha + beta = cia,
// giving alpha = asin(-m*lambda / (2*d*cos(cia/2))) + cia/2. Inside orders are
// negative, outside positive. All work is in radians; the result is degrees.
func includedAngleIncidence(wavelengthUM, periodUM, includedAngleDeg float64, order int) (float64, error) {
	cia := includedAngleDeg * math.Pi / 180
	arg := -float64(order) * wavelengthUM / (2 * periodUM * math.Cos(cia/2))
	if math.Abs(arg) > 1 || math.IsNaN(arg) {
		return 0, fmt.Errorf("%w: order %d, wavelength %g um, period %g um, included angle %g deg",
			ErrNoRealSolution, order, wavelengthUM, periodUM, includedAngleDeg)
	}
	return (math.Asin(arg) + cia/2) * 180 / math.Pi, nil
}
