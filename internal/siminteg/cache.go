package siminteg

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/san-kum/orbitsim/internal/artifact"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/simstate"
)

// Cache locates the siminteg file of one run. A present file is trusted
// once its header agrees with the key; it is never recomputed or repaired.
type Cache struct {
	dir    string
	key    artifact.Key
	logger *log.Logger
}

// NewCache returns the cache for the run (name, dt, steps) in dir.
func NewCache(dir, name string, dt float64, steps int) (*Cache, error) {
	key := artifact.Key{Name: name, Dt: dt, Steps: steps}
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, key: key, logger: log.Default()}, nil
}

// ForFile returns the cache next to a simstate file.
func ForFile(sim *simstate.File, dir string) (*Cache, error) {
	k := sim.Key()
	return NewCache(dir, k.Name, k.Dt, k.Steps)
}

// WithLogger sets the logger used when the cache is filled.
func (c *Cache) WithLogger(l *log.Logger) *Cache {
	c.logger = l
	return c
}

func (c *Cache) Key() artifact.Key { return c.key }

func (c *Cache) Path() string { return c.key.Path(c.dir, Ext) }

// Load returns the invariants of sim, computing and persisting them first
// when the cache file does not exist.
func (c *Cache) Load(sim *simstate.File, mu []float64) (*File, error) {
	if !c.key.Matches(sim.Dt(), sim.Steps()) {
		return nil, fmt.Errorf("%w: cache %s does not describe %s", dynamo.ErrCacheInconsistency, c.key, sim.Key())
	}

	path := c.Path()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		c.logger.Info("computing invariants", "run", c.key.Name, "rows", sim.Steps())
		data, err := Compute(sim, mu)
		if err != nil {
			return nil, err
		}
		if err := Write(path, data, sim.Steps(), sim.Dt()); err != nil && !errors.Is(err, dynamo.ErrExists) {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	f, err := Open(path)
	if err != nil {
		if errors.Is(err, dynamo.ErrFormat) {
			return nil, fmt.Errorf("%w: %w", dynamo.ErrCacheInconsistency, err)
		}
		return nil, err
	}
	return f, nil
}

// CalculateEnergy returns the total energy of every row of sim. A nil cache
// computes without persisting.
func CalculateEnergy(sim *simstate.File, mu []float64, cache *Cache) ([]float64, error) {
	if cache == nil {
		data, err := Compute(sim, mu)
		if err != nil {
			return nil, err
		}
		e := make([]float64, sim.Steps())
		for i := range e {
			e[i] = data[i*Dim]
		}
		return e, nil
	}

	f, err := cache.Load(sim, mu)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Energy(), nil
}

// CalculateAngularMomentum returns the total angular momentum vector of
// every row of sim. A nil cache computes without persisting.
func CalculateAngularMomentum(sim *simstate.File, mu []float64, cache *Cache) ([][3]float64, error) {
	if cache == nil {
		data, err := Compute(sim, mu)
		if err != nil {
			return nil, err
		}
		h := make([][3]float64, sim.Steps())
		for i := range h {
			copy(h[i][:], data[i*Dim+1:(i+1)*Dim])
		}
		return h, nil
	}

	f, err := cache.Load(sim, mu)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.AngularMomentum(), nil
}
