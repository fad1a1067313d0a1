// Package sweep implements the grating-efficiency sweep: configuration,
// per-step resolution of physical inputs from the operating mode, and the
// sequential controller that drives the solver and the output artifacts.
package sweep

import "errors"

// HC is the photon energy–wavelength product, in eV·um:
// wavelength[um] = HC / energy[eV].
const HC = 1.23984172

// ErrZeroEnergy reports an attempted energy-to-wavelength conversion of zero
// photon energy.
var ErrZeroEnergy = errors.New("cannot convert zero photon energy to wavelength")

// ToWavelength interprets value as a wavelength in micrometers, or, when
// energyUnits is set, as a photon energy in eV to be converted.
func ToWavelength(value float64, energyUnits bool) (float64, error) {
	if !energyUnits {
		return value, nil
	}
	if value == 0 {
		return 0, ErrZeroEnergy
	}
	return HC / value, nil
}
