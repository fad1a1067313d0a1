package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/beamline-tools/greff/internal/monitoring"
)

// reflectivity holds a crude scalar reflectance per substrate material, used
// to scale the distributed efficiency. Unknown materials fall back to
// defaultReflectivity rather than failing the step.
var reflectivity = map[string]float64{
	"Au":   0.85,
	"Pt":   0.88,
	"Ni":   0.80,
	"C":    0.70,
	"SiO2": 0.60,
}

const defaultReflectivity = 0.75

// Modal is a scalar-diffraction reference solver. It projects the groove
// phase function onto the truncated Fourier basis of the propagating orders
// (a least-squares fit solved with gonum) and distributes the material's
// reflectance over those orders. It is intentionally simple: the full
// electromagnetic treatment lives behind the same Solver interface and can be
// substituted without touching the sweep loop.
type Modal struct{}

// NewModal returns the reference solver.
func NewModal() Modal { return Modal{} }

// Evaluate computes per-order efficiencies for one (angle, wavelength) pair.
// Every internal numerical failure is converted to a Failure result; the
// method never panics across the boundary.
func (Modal) Evaluate(incidenceDeg, wavelengthUM float64, opts Options, g Grating) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Failuref("internal solver fault: %v", r)
		}
	}()

	n := opts.TruncationOrder
	if n < 1 {
		return Failuref("truncation order must be >= 1, got %d", n)
	}
	if !(wavelengthUM > 0) || math.IsInf(wavelengthUM, 0) {
		return Failuref("non-physical wavelength %g um", wavelengthUM)
	}
	if math.IsNaN(incidenceDeg) || math.Abs(incidenceDeg) >= 90 {
		return Failuref("incidence angle %g deg outside (-90, 90)", incidenceDeg)
	}
	if g.Period <= 0 {
		return Failuref("non-physical grating period %g um", g.Period)
	}

	alpha := incidenceDeg * math.Pi / 180
	sinAlpha := math.Sin(alpha)

	// Grating equation m*lambda/d = sin(beta) - sin(alpha): an order
	// propagates when its diffraction angle is real.
	orders := make([]int, 0, 2*n+1)
	sinBetas := make([]float64, 0, 2*n+1)
	for m := -n; m <= n; m++ {
		sb := sinAlpha + float64(m)*wavelengthUM/g.Period
		if math.Abs(sb) <= 1 {
			orders = append(orders, m)
			sinBetas = append(sinBetas, sb)
		}
	}
	if len(orders) == 0 {
		return Failuref("all orders evanescent at incidence %g deg, wavelength %g um", incidenceDeg, wavelengthUM)
	}
	if opts.Debug {
		monitoring.Debugf("modal: alpha=%.4f deg lambda=%.6f um propagating=%d/%d",
			incidenceDeg, wavelengthUM, len(orders), 2*n+1)
	}

	amps, err := fitGrooveField(g, wavelengthUM, alpha, orders)
	if err != nil {
		return Failuref("modal fit failed: %v", err)
	}

	// Distribute the scalar reflectance over propagating orders in
	// proportion to the fitted amplitudes. Evanescent orders report zero.
	refl, ok := reflectivity[g.Material]
	if !ok {
		refl = defaultReflectivity
	}
	var total float64
	for _, a := range amps {
		total += a * a
	}
	if !(total > 0) || math.IsInf(total, 0) || math.IsNaN(total) {
		return Failuref("degenerate modal amplitudes (sum of squares %g)", total)
	}

	effs := make([]float64, 2*n+1)
	allOrders := make([]int, 2*n+1)
	for i := range allOrders {
		allOrders[i] = i - n
	}
	for i, m := range orders {
		effs[m+n] = refl * amps[i] * amps[i] / total
	}
	return Result{Status: Success, Orders: allOrders, Efficiencies: effs}
}

// fitGrooveField least-squares fits the groove phase field sampled across one
// period onto one Fourier mode per propagating order, returning one amplitude
// per order. Non-negative orders take the cosine quadrature and negative
// orders the sine quadrature, keeping the design matrix full rank.
func fitGrooveField(g Grating, wavelengthUM, alpha float64, orders []int) ([]float64, error) {
	samples := 8 * (len(orders) + 8)
	cosAlpha := math.Cos(alpha)

	rows, cols := samples, len(orders)
	design := mat.NewDense(rows, cols, nil)
	target := mat.NewVecDense(rows, nil)
	for j := 0; j < rows; j++ {
		x := g.Period * float64(j) / float64(rows)
		h, err := grooveHeight(g, x)
		if err != nil {
			return nil, err
		}
		// Round-trip path difference picked up at groove height h.
		phase := 4 * math.Pi * h * cosAlpha / wavelengthUM
		target.SetVec(j, math.Cos(phase))
		for i, m := range orders {
			arg := 2 * math.Pi * float64(m) * x / g.Period
			if m >= 0 {
				design.Set(j, i, math.Cos(arg))
			} else {
				design.Set(j, i, math.Sin(-arg))
			}
		}
	}

	var coef mat.VecDense
	if err := coef.SolveVec(design, target); err != nil {
		return nil, fmt.Errorf("least-squares system singular: %w", err)
	}
	amps := make([]float64, cols)
	for i := range amps {
		a := coef.AtVec(i)
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return nil, fmt.Errorf("non-finite amplitude for order %d", orders[i])
		}
		amps[i] = a
	}
	return amps, nil
}

// grooveHeight evaluates the profile height at position x in [0, Period).
func grooveHeight(g Grating, x float64) (float64, error) {
	d := g.Period
	switch g.Profile {
	case Rectangular:
		if x < d-g.ValleyWidth {
			return g.Depth, nil
		}
		return 0, nil

	case Sinusoidal:
		return g.Depth / 2 * (1 + math.Sin(2*math.Pi*x/d)), nil

	case Blazed:
		return sawtoothHeight(d, g.BlazeAngleDeg, g.AntiBlazeAngleDeg, x)

	case Trapezoidal:
		rise := math.Tan(g.BlazeAngleDeg * math.Pi / 180)
		fall := math.Tan(g.AntiBlazeAngleDeg * math.Pi / 180)
		if rise <= 0 || fall <= 0 {
			return 0, fmt.Errorf("trapezoidal side angles must be in (0, 90), got %g/%g", g.BlazeAngleDeg, g.AntiBlazeAngleDeg)
		}
		riseW := g.Depth / rise
		fallW := g.Depth / fall
		topW := d - g.ValleyWidth - riseW - fallW
		if topW < 0 {
			return 0, fmt.Errorf("trapezoidal geometry does not fit in period %g um", d)
		}
		switch {
		case x < riseW:
			return x * rise, nil
		case x < riseW+topW:
			return g.Depth, nil
		case x < riseW+topW+fallW:
			return g.Depth - (x-riseW-topW)*fall, nil
		default:
			return 0, nil
		}

	default:
		return 0, fmt.Errorf("unknown grating profile %q", g.Profile)
	}
}

// sawtoothHeight evaluates a blazed (triangular) profile. An anti-blaze angle
// of 90 degrees or more means a vertical back facet.
func sawtoothHeight(d, blazeDeg, antiBlazeDeg, x float64) (float64, error) {
	if blazeDeg <= 0 || blazeDeg >= 90 {
		return 0, fmt.Errorf("blaze angle must be in (0, 90), got %g", blazeDeg)
	}
	rise := math.Tan(blazeDeg * math.Pi / 180)
	if antiBlazeDeg >= 90 {
		return x * rise, nil
	}
	if antiBlazeDeg <= 0 {
		return 0, fmt.Errorf("anti-blaze angle must be in (0, 90], got %g", antiBlazeDeg)
	}
	fall := math.Tan(antiBlazeDeg * math.Pi / 180)
	apexX := d * fall / (rise + fall)
	if x <= apexX {
		return x * rise, nil
	}
	return (d - x) * fall, nil
}
