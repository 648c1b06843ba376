// Package experiment ties a configuration to the artifacts of its run:
// it propagates on demand, opens the trajectory and its invariants, and
// records metadata and metrics in the data directory.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/san-kum/orbitsim/internal/artifact"
	"github.com/san-kum/orbitsim/internal/bodies"
	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/metrics"
	"github.com/san-kum/orbitsim/internal/propagator"
	"github.com/san-kum/orbitsim/internal/siminteg"
	"github.com/san-kum/orbitsim/internal/simstate"
	"github.com/san-kum/orbitsim/internal/storage"
	"github.com/san-kum/orbitsim/internal/trail"
)

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	store    *storage.Store
	logger   *log.Logger
	list     *bodies.List
	key      artifact.Key

	sim *simstate.File
	inv *siminteg.File
}

type Option func(*Experiment)

func WithLogger(l *log.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

func WithRegistry(r *Registry) Option {
	return func(e *Experiment) { e.registry = r }
}

// New validates cfg and loads its body list. Nothing is written until Run.
func New(cfg *config.Config, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	list, err := cfg.Bodies()
	if err != nil {
		return nil, err
	}
	if err := list.Validate(); err != nil {
		return nil, err
	}

	e := &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		store:    storage.New(cfg.DataDir),
		logger:   log.Default(),
		list:     list,
		key:      artifact.Key{Name: cfg.Name, Dt: cfg.Dt, Steps: cfg.Steps()},
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.key.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Experiment) Key() artifact.Key     { return e.key }
func (e *Experiment) Bodies() *bodies.List  { return e.list }
func (e *Experiment) Store() *storage.Store { return e.store }

// Run opens the trajectory of the experiment, propagating it first when the
// data directory does not hold it yet.
func (e *Experiment) Run(ctx context.Context) (*simstate.File, error) {
	if e.sim != nil {
		return e.sim, nil
	}
	if err := e.store.Init(); err != nil {
		return nil, err
	}

	path := e.store.SimstatePath(e.key)
	if !e.store.Exists(e.key) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.propagate(path); err != nil {
			return nil, err
		}
	} else {
		e.logger.Debug("reusing trajectory", "path", path)
	}

	sim, err := simstate.Open(path)
	if err != nil {
		return nil, err
	}
	if sim.Bodies() != e.list.Len() {
		sim.Close()
		return nil, fmt.Errorf("%w: %s holds %d bodies, configuration has %d",
			dynamo.ErrCacheInconsistency, path, sim.Bodies(), e.list.Len())
	}
	e.sim = sim

	if _, err := e.store.Load(storage.ID(e.key)); errors.Is(err, os.ErrNotExist) {
		if err := e.store.Save(e.metadata()); err != nil {
			return nil, err
		}
	}
	return sim, nil
}

func (e *Experiment) propagate(path string) error {
	integ, err := e.registry.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}
	kernel, err := e.registry.GetKernel(e.cfg.Kernel)
	if err != nil {
		return err
	}

	opts := []propagator.Option{propagator.WithLogger(e.logger)}
	if e.cfg.Progress {
		opts = append(opts, propagator.WithProgress(e.cfg.PrintStep))
	}
	if err := propagator.New(integ, kernel, opts...).Propagate(e.cfg.Dt, e.cfg.Duration, e.list, path); err != nil {
		return err
	}
	return e.store.Save(e.metadata())
}

func (e *Experiment) metadata() *storage.RunMetadata {
	return &storage.RunMetadata{
		Name:       e.key.Name,
		Dt:         e.key.Dt,
		Duration:   e.cfg.Duration,
		Steps:      e.key.Steps,
		Integrator: e.cfg.Integrator,
		Kernel:     e.cfg.Kernel,
		Epoch:      e.list.Metadata.Epoch,
		Source:     e.list.Metadata.Source,
		Bodies:     e.list.Names(),
		Mu:         e.list.Mu(),
	}
}

// Invariants returns the energy and angular momentum of every step, loading
// them from the cache or computing them once.
func (e *Experiment) Invariants(ctx context.Context) (*siminteg.File, error) {
	if e.inv != nil {
		return e.inv, nil
	}
	sim, err := e.Run(ctx)
	if err != nil {
		return nil, err
	}
	cache, err := e.store.Cache(e.key)
	if err != nil {
		return nil, err
	}
	inv, err := cache.WithLogger(e.logger).Load(sim, e.list.Mu())
	if err != nil {
		return nil, err
	}
	e.inv = inv
	return inv, nil
}

// Evaluate runs the default metrics over the invariants and records them in
// the run metadata.
func (e *Experiment) Evaluate(ctx context.Context) (map[string]float64, error) {
	inv, err := e.Invariants(ctx)
	if err != nil {
		return nil, err
	}
	results := metrics.Evaluate(inv, e.registry.DefaultMetrics()...)
	if err := e.store.UpdateMetrics(storage.ID(e.key), results); err != nil {
		return nil, err
	}
	return results, nil
}

// Trail builds a trail over the trajectory from the trail configuration.
func (e *Experiment) Trail(ctx context.Context) (*trail.Trail, error) {
	sim, err := e.Run(ctx)
	if err != nil {
		return nil, err
	}
	focus := -1
	if name := e.cfg.Trail.Focus; name != "" {
		if focus = e.list.Index(name); focus < 0 {
			return nil, dynamo.Configurationf("unknown focus body %q", name)
		}
	}
	return trail.NewTrail(sim, trail.Options{
		Dim:        e.cfg.Trail.Dim,
		StepTime:   e.cfg.Trail.StepTime,
		LengthTime: e.cfg.Trail.LengthTime,
		Focus:      focus,
	})
}

func (e *Experiment) Close() error {
	var errs []error
	if e.inv != nil {
		errs = append(errs, e.inv.Close())
		e.inv = nil
	}
	if e.sim != nil {
		errs = append(errs, e.sim.Close())
		e.sim = nil
	}
	return errors.Join(errs...)
}
