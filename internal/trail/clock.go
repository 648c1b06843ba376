package trail

import (
	"math"
	"time"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Clock converts elapsed wall time into whole simulation steps. The
// fractional part is carried to the next call so no step is lost.
type Clock struct {
	// Dt is the simulation time step in seconds.
	Dt float64
	// Speed is simulated seconds per wall-clock second.
	Speed float64

	frac float64
}

// Advance returns the number of steps due after elapsed wall time.
func (c *Clock) Advance(elapsed time.Duration) int {
	if c.Dt <= 0 || c.Speed <= 0 || elapsed <= 0 {
		return 0
	}
	total := c.Speed*elapsed.Seconds()/c.Dt + c.frac
	steps := math.Floor(total)
	c.frac = total - steps
	return int(steps)
}

// Fraction returns the carried partial step.
func (c *Clock) Fraction() float64 { return c.frac }

// Reset drops the carried partial step.
func (c *Clock) Reset() { c.frac = 0 }

// Sampler decides when a trajectory step becomes a trail sample.
type Sampler struct {
	// Step is the number of simulation steps between samples.
	Step int
	// Length is the number of samples kept.
	Length int

	pending int
}

// NewSampler derives the sample step and trail length from durations:
// Step = max(1, floor(stepTime/dt)) and Length = floor(lengthTime/stepTime).
func NewSampler(dt, stepTime, lengthTime float64) (Sampler, error) {
	if !(dt > 0) {
		return Sampler{}, dynamo.Configurationf("trail dt must be positive, got %g", dt)
	}
	if !(stepTime > 0) {
		return Sampler{}, dynamo.Configurationf("trail step time must be positive, got %g", stepTime)
	}
	length := int(math.Floor(lengthTime / stepTime))
	if length < 1 {
		return Sampler{}, dynamo.Configurationf("trail length time %g is shorter than its step time %g", lengthTime, stepTime)
	}

	step := int(math.Floor(stepTime / dt))
	if step < 1 {
		step = 1
	}
	return Sampler{Step: step, Length: length}, nil
}

// Advance accounts for steps more simulation steps and returns how many
// samples are now due. The remainder is kept for the next call.
func (s *Sampler) Advance(steps int) int {
	if steps <= 0 {
		return 0
	}
	s.pending += steps
	k := s.pending / s.Step
	s.pending %= s.Step
	return k
}

// Pending returns the steps elapsed since the last due sample.
func (s *Sampler) Pending() int { return s.pending }

// Reset clears the remainder.
func (s *Sampler) Reset() { s.pending = 0 }
