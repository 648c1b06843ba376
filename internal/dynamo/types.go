package dynamo

import (
	"fmt"
	"math"
)

// StateDim is the number of components stored per body: position then
// velocity.
const StateDim = 6

// G is the Newtonian constant of gravitation [m^3 kg^-1 s^-2].
const G = 6.67430e-11

// Time units in seconds.
const (
	Minute = 60.0
	Hour   = 3600.0
	Day    = 86400.0
	Year   = 31557600.0 // Julian year
)

// AU is the astronomical unit in meters.
const AU = 149597870700.0

type State []float64

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Bodies returns the number of bodies encoded by the state, or an error when
// the length is not a multiple of StateDim.
func (s State) Bodies() (int, error) {
	if len(s)%StateDim != 0 {
		return 0, fmt.Errorf("%w: state length %d is not a multiple of %d", ErrDimensionMismatch, len(s), StateDim)
	}
	return len(s) / StateDim, nil
}

// Trajectory is the output of a fixed-step integration: Rows states of Dim
// components each, stored row-major. Row 0 is the initial condition.
type Trajectory struct {
	Rows int
	Dim  int
	Data []float64
}

// NewTrajectory allocates a zeroed trajectory.
func NewTrajectory(rows, dim int) *Trajectory {
	return &Trajectory{Rows: rows, Dim: dim, Data: make([]float64, rows*dim)}
}

// Row returns row i without copying.
func (t *Trajectory) Row(i int) State {
	return t.Data[i*t.Dim : (i+1)*t.Dim]
}

// Steps returns the number of integration steps, one less than Rows.
func (t *Trajectory) Steps() int { return t.Rows - 1 }

// Last returns the final state.
func (t *Trajectory) Last() State { return t.Row(t.Rows - 1) }

// stepULPs is how far below an integer a quotient may fall, in units in the
// last place, and still count as that integer.
const stepULPs = 4

// StepCount returns floor(stopTime/dt). Quotients within a few ULPs below an
// integer, such as 0.3/0.1 = 2.9999999999999996, round up to it.
func StepCount(dt, stopTime float64) int {
	q := stopTime / dt
	if r := math.Round(q); r > q && r-q <= stepULPs*(math.Nextafter(r, math.Inf(1))-r) {
		return int(r)
	}
	return int(math.Floor(q))
}
