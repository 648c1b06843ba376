// Package integrators provides fixed-step integrators over a force kernel.
package integrators

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/san-kum/orbitsim/internal/compute"
	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Integrator advances an initial state through stopTime in steps of dt and
// returns every intermediate state.
type Integrator interface {
	Name() string
	Integrate(y0 []float64, dt, stopTime float64, kernel compute.Kernel, n int, mu []float64) (*dynamo.Trajectory, error)
}

// Reporting enables progress logging. A nil Logger disables it.
type Reporting struct {
	Logger    *log.Logger
	PrintStep int
}

// SetReporting replaces the progress settings.
func (r *Reporting) SetReporting(rep Reporting) { *r = rep }

func (r Reporting) tracker(name string, total int) *dynamo.Progress {
	if r.Logger == nil {
		return nil
	}
	return dynamo.NewProgress(name, total, r.PrintStep, r.Logger)
}

func validate(y0 []float64, dt, stopTime float64, n int, mu []float64) (int, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return 0, dynamo.Configurationf("dt must be positive, got %g", dt)
	}
	if !(stopTime >= 0) || math.IsInf(stopTime, 0) {
		return 0, dynamo.Configurationf("stop time must be non-negative, got %g", stopTime)
	}
	if n <= 0 {
		return 0, dynamo.Configurationf("body count must be positive, got %d", n)
	}
	if len(y0) != dynamo.StateDim*n {
		return 0, dynamo.Configurationf("state has %d components, want %d", len(y0), dynamo.StateDim*n)
	}
	if len(mu) != n {
		return 0, dynamo.Configurationf("mu has %d entries, want %d", len(mu), n)
	}
	return dynamo.StepCount(dt, stopTime), nil
}

// Names lists the integrators New accepts.
func Names() []string { return []string{"euler", "rk4"} }

// New returns the integrator with the given name.
func New(name string) (Integrator, error) {
	switch name {
	case "euler":
		return NewEuler(), nil
	case "rk4", "":
		return NewRK4(), nil
	}
	return nil, dynamo.Configurationf("unknown integrator %q (have euler, rk4)", name)
}
