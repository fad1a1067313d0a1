// Package solver defines the boundary to the diffraction-efficiency
// calculation: the grating description consumed by a solver, the per-call
// options, the tagged Success/Failure result, and a reference implementation.
package solver

import (
	"fmt"
	"strconv"
	"strings"
)

// Profile selects the groove shape of a grating. The geometry parameters a
// profile consumes follow the original command-line convention: lengths in
// micrometers, angles in degrees.
type Profile string

const (
	Rectangular Profile = "rectangular" // depth (um), valley width (um)
	Blazed      Profile = "blazed"      // blaze angle (deg), anti-blaze angle (deg)
	Sinusoidal  Profile = "sinusoidal"  // depth (um)
	Trapezoidal Profile = "trapezoidal" // depth (um), valley width (um), blaze angle (deg), anti-blaze angle (deg)
)

// geometryArity maps each profile to the number of geometry parameters it
// requires, in the documented order.
var geometryArity = map[Profile]int{
	Rectangular: 2,
	Blazed:      2,
	Sinusoidal:  1,
	Trapezoidal: 4,
}

// Grating describes one grating to a solver. Fields that do not apply to the
// selected profile are zero. Period is in micrometers.
type Grating struct {
	Profile  Profile
	Period   float64
	Material string

	Depth             float64
	ValleyWidth       float64
	BlazeAngleDeg     float64
	AntiBlazeAngleDeg float64
}

// NewGrating builds a Grating from a profile tag, period, material name and
// the profile's geometry parameter list. It rejects unknown profiles, wrong
// geometry arity and non-positive periods.
func NewGrating(profile Profile, period float64, material string, geometry []float64) (Grating, error) {
	want, ok := geometryArity[profile]
	if !ok {
		return Grating{}, fmt.Errorf("unknown grating profile %q", profile)
	}
	if len(geometry) != want {
		return Grating{}, fmt.Errorf("%s profile needs %d geometry parameters, got %d", profile, want, len(geometry))
	}
	if period <= 0 {
		return Grating{}, fmt.Errorf("grating period must be positive, got %g", period)
	}

	g := Grating{Profile: profile, Period: period, Material: material}
	switch profile {
	case Rectangular:
		g.Depth, g.ValleyWidth = geometry[0], geometry[1]
	case Blazed:
		g.BlazeAngleDeg, g.AntiBlazeAngleDeg = geometry[0], geometry[1]
	case Sinusoidal:
		g.Depth = geometry[0]
	case Trapezoidal:
		g.Depth, g.ValleyWidth = geometry[0], geometry[1]
		g.BlazeAngleDeg, g.AntiBlazeAngleDeg = geometry[2], geometry[3]
	}
	return g, nil
}

// GeometryValues returns the profile's geometry parameters in the documented
// order, suitable for echoing back to output artifacts.
func (g Grating) GeometryValues() []float64 {
	switch g.Profile {
	case Rectangular:
		return []float64{g.Depth, g.ValleyWidth}
	case Blazed:
		return []float64{g.BlazeAngleDeg, g.AntiBlazeAngleDeg}
	case Sinusoidal:
		return []float64{g.Depth}
	case Trapezoidal:
		return []float64{g.Depth, g.ValleyWidth, g.BlazeAngleDeg, g.AntiBlazeAngleDeg}
	default:
		return nil
	}
}

// GeometryString renders the geometry list as the comma-separated form used
// on the command line and in the output header.
func (g Grating) GeometryString() string {
	vals := g.GeometryValues()
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
