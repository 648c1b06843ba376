package integrators

import (
	"github.com/san-kum/orbitsim/internal/compute"
	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Euler is the explicit first-order method.
type Euler struct {
	Reporting

	dx dynamo.State
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

// Step writes y + dt*f(y) into dst.
func (e *Euler) Step(kernel compute.Kernel, y []float64, dt float64, n int, mu []float64, dst []float64) {
	if len(e.dx) != len(y) {
		e.dx = make(dynamo.State, len(y))
	}
	kernel.Evaluate(y, e.dx, n, mu)
	for i := range y {
		dst[i] = y[i] + dt*e.dx[i]
	}
}

func (e *Euler) Integrate(y0 []float64, dt, stopTime float64, kernel compute.Kernel, n int, mu []float64) (*dynamo.Trajectory, error) {
	steps, err := validate(y0, dt, stopTime, n, mu)
	if err != nil {
		return nil, err
	}

	traj := dynamo.NewTrajectory(steps+1, len(y0))
	copy(traj.Row(0), y0)

	progress := e.tracker("euler", steps)
	for s := 0; s < steps; s++ {
		e.Step(kernel, traj.Row(s), dt, n, mu, traj.Row(s+1))
		progress.Update(s + 1)
	}
	return traj, nil
}
