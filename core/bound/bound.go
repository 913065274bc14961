// Package bound computes an upper bound on the fairness score any physically
// consistent schedule can reach, by solving a linear relaxation of the exact
// allocation problem aggregated per device.
//
// For device i the relaxation counts x_i charging slots and w_i in-service
// slots spent without a socket, and requires
//
//	x_i + w_i <= T                     (one state per slot)
//	sum_i x_i <= S*T                   (socket capacity)
//	w_i*d_i*dt - x_i*r_i*dt <= b0_i     (energy never goes negative)
//	z <= x_i + w_i                     (z is the minimum usage)
//
// and maximises z + sum_i (x_i + w_i) / (N*T). Schedules that let batteries go
// negative are not covered by the bound.
package bound

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/socketsched/core/model"
)

// ErrSolver wraps failures of the LP solver.
var ErrSolver = errors.New("relaxation solver failed")

const tolerance = 1e-7

// simplex points to the solver. Tests override it to simulate failures.
var simplex = lp.Simplex

// Fairness returns the relaxation bound for inst. An instance without devices
// has a bound of zero.
func Fairness(inst model.Instance) (float64, error) {
	if err := inst.Validate(); err != nil {
		return 0, err
	}
	n, slots := len(inst.Devices), inst.SlotCount()
	if n == 0 || slots == 0 {
		return 0, nil
	}
	p := newProgram(inst, n, float64(slots))
	c, a, b := lp.Convert(p.c, p.g, p.h, p.a, p.b)
	opt, _, err := simplex(c, a, b, tolerance, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSolver, err)
	}
	return -opt, nil
}

// Gap returns the relative distance between a score and its bound. A zero
// bound yields a zero gap.
func Gap(bound, score float64) float64 {
	if bound <= 0 {
		return 0
	}
	g := (bound - score) / bound
	if g < 0 {
		return 0
	}
	return g
}

// program is the relaxation in the general form
//
//	minimize c^T v  s.t.  G v <= h, A v = b
//
// over v = [x_0..x_{n-1}, w_0..w_{n-1}, z, u] where u is the total usage.
type program struct {
	c []float64
	g *mat.Dense
	h []float64
	a *mat.Dense
	b []float64
}

func newProgram(inst model.Instance, n int, slots float64) program {
	nVar := 2*n + 2
	zIdx, uIdx := 2*n, 2*n+1
	x := func(i int) int { return i }
	w := func(i int) int { return n + i }
	dt := inst.SlotDuration

	rows := 3*n + 1 + nVar
	g := mat.NewDense(rows, nVar, nil)
	h := make([]float64, rows)
	row := 0
	for i := 0; i < n; i++ {
		g.Set(row, x(i), 1)
		g.Set(row, w(i), 1)
		h[row] = slots
		row++
	}
	for i := 0; i < n; i++ {
		g.Set(row, x(i), 1)
	}
	h[row] = float64(inst.Sockets) * slots
	row++
	for i, d := range inst.Devices {
		g.Set(row, w(i), d.DischargeRate*dt)
		g.Set(row, x(i), -d.RechargeRate*dt)
		h[row] = d.InitialBattery
		row++
	}
	for i := 0; i < n; i++ {
		g.Set(row, zIdx, 1)
		g.Set(row, x(i), -1)
		g.Set(row, w(i), -1)
		row++
	}
	for v := 0; v < nVar; v++ {
		g.Set(row, v, -1)
		row++
	}

	a := mat.NewDense(1, nVar, nil)
	a.Set(0, uIdx, 1)
	for i := 0; i < n; i++ {
		a.Set(0, x(i), -1)
		a.Set(0, w(i), -1)
	}

	c := make([]float64, nVar)
	c[zIdx] = -1
	c[uIdx] = -1 / (float64(n) * slots)
	return program{c: c, g: g, h: h, a: a, b: []float64{0}}
}
