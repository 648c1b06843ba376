// Package propagator turns a body list into a trajectory file.
package propagator

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/orbitsim/internal/artifact"
	"github.com/san-kum/orbitsim/internal/bodies"
	"github.com/san-kum/orbitsim/internal/compute"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/simstate"
)

// Propagator integrates body lists with a fixed integrator and kernel.
type Propagator struct {
	integrator integrators.Integrator
	kernel     compute.Kernel
	logger     *log.Logger
	progress   bool
	printStep  int
}

type Option func(*Propagator)

// WithLogger sets the logger for run and progress messages.
func WithLogger(l *log.Logger) Option {
	return func(p *Propagator) { p.logger = l }
}

// WithProgress reports progress every printStep steps.
func WithProgress(printStep int) Option {
	return func(p *Propagator) {
		p.progress = true
		p.printStep = printStep
	}
}

func New(integ integrators.Integrator, kernel compute.Kernel, opts ...Option) *Propagator {
	p := &Propagator{
		integrator: integ,
		kernel:     kernel,
		logger:     log.Default(),
		printStep:  dynamo.DefaultPrintStep,
	}
	for _, opt := range opts {
		opt(p)
	}

	if r, ok := integ.(interface{ SetReporting(integrators.Reporting) }); ok && p.progress {
		r.SetReporting(integrators.Reporting{Logger: p.logger, PrintStep: p.printStep})
	}
	return p
}

// Run integrates list without writing anything.
func (p *Propagator) Run(dt, stopTime float64, list *bodies.List) (*dynamo.Trajectory, error) {
	if err := validateRun(dt, stopTime, list); err != nil {
		return nil, err
	}
	return p.integrator.Integrate(list.Y0(), dt, stopTime, p.kernel, list.Len(), list.Mu())
}

// Propagate integrates list from t=0 to stopTime in steps of dt and writes
// the trajectory to path, which must be named for this dt and step count
// and must not exist. Nothing is written when validation fails.
func (p *Propagator) Propagate(dt, stopTime float64, list *bodies.List, path string) error {
	if err := validateRun(dt, stopTime, list); err != nil {
		return err
	}

	steps := dynamo.StepCount(dt, stopTime)
	key, err := artifact.ParseFilename(path, simstate.Ext)
	if err != nil {
		return fmt.Errorf("%w: %w", dynamo.ErrConfiguration, err)
	}
	if !key.Matches(dt, steps+1) {
		return dynamo.Configurationf("%s does not describe dt=%s with %d steps", path, artifact.FormatDt(dt), steps)
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", dynamo.ErrExists, path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	n := list.Len()
	p.logger.Info("propagating",
		"run", key.Name,
		"bodies", n,
		"steps", steps,
		"dt", dt,
		"integrator", p.integrator.Name(),
		"kernel", p.kernel.Name(),
	)
	start := time.Now()

	traj, err := p.integrator.Integrate(list.Y0(), dt, stopTime, p.kernel, n, list.Mu())
	if err != nil {
		return err
	}
	if !traj.Last().IsValid() {
		p.logger.Warn("trajectory contains non-finite values", "run", key.Name)
	}

	w, err := simstate.Create(path, n, traj.Rows, dt)
	if err != nil {
		return err
	}
	row := make([]float64, traj.Dim)
	for s := 0; s < traj.Rows; s++ {
		row = simstate.Interleave(row, traj.Row(s), n)
		if err := w.WriteStep(row); err != nil {
			return &dynamo.SimulationError{Step: s, Time: float64(s) * dt, Wrapped: err}
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	p.logger.Info("saved", "path", path, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func validateRun(dt, stopTime float64, list *bodies.List) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return dynamo.Configurationf("dt must be positive, got %g", dt)
	}
	if !(stopTime >= 0) || math.IsInf(stopTime, 0) {
		return dynamo.Configurationf("stop time must be non-negative, got %g", stopTime)
	}
	if list == nil {
		return dynamo.Configurationf("body list is nil")
	}
	return list.Validate()
}
