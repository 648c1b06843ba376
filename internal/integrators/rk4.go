package integrators

import (
	"github.com/san-kum/orbitsim/internal/compute"
	"github.com/san-kum/orbitsim/internal/dynamo"
)

// RK4 is the classical fourth-order Runge-Kutta method. Kernels that
// implement compute.FusedRK4 run the whole loop themselves.
type RK4 struct {
	Reporting

	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

// Step writes one RK4 step from y into dst. dst may not alias y.
func (r *RK4) Step(kernel compute.Kernel, y []float64, dt float64, n int, mu []float64, dst []float64) {
	dim := len(y)
	r.ensureScratch(dim)

	kernel.Evaluate(y, r.k1, n, mu)
	for i := 0; i < dim; i++ {
		r.scratch[i] = y[i] + dt*0.5*r.k1[i]
	}
	kernel.Evaluate(r.scratch, r.k2, n, mu)

	for i := 0; i < dim; i++ {
		r.scratch[i] = y[i] + dt*0.5*r.k2[i]
	}
	kernel.Evaluate(r.scratch, r.k3, n, mu)

	for i := 0; i < dim; i++ {
		r.scratch[i] = y[i] + dt*r.k3[i]
	}
	kernel.Evaluate(r.scratch, r.k4, n, mu)

	dt6 := dt / 6.0
	for i := 0; i < dim; i++ {
		dst[i] = y[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
}

func (r *RK4) Integrate(y0 []float64, dt, stopTime float64, kernel compute.Kernel, n int, mu []float64) (*dynamo.Trajectory, error) {
	steps, err := validate(y0, dt, stopTime, n, mu)
	if err != nil {
		return nil, err
	}

	traj := dynamo.NewTrajectory(steps+1, len(y0))
	copy(traj.Row(0), y0)
	progress := r.tracker("rk4", steps)

	if fused, ok := kernel.(compute.FusedRK4); ok {
		r.integrateFused(fused, traj, dt, steps, n, mu, progress)
		return traj, nil
	}

	for s := 0; s < steps; s++ {
		r.Step(kernel, traj.Row(s), dt, n, mu, traj.Row(s+1))
		progress.Update(s + 1)
	}
	return traj, nil
}

// integrateFused hands the loop to the kernel, in batches of PrintStep
// when progress is reported.
func (r *RK4) integrateFused(fused compute.FusedRK4, traj *dynamo.Trajectory, dt float64, steps, n int, mu []float64, progress *dynamo.Progress) {
	batch := steps
	if progress != nil {
		batch = progress.PrintStep
	}

	dim := traj.Dim
	for s := 0; s < steps; s += batch {
		k := batch
		if s+k > steps {
			k = steps - s
		}
		window := traj.Data[s*dim : (s+k+1)*dim]
		fused.RK4(window[:dim], dt, k, n, mu, window)
		progress.Update(s + k)
	}
}
