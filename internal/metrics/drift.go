package metrics

import "math"

// EnergyDrift is the largest relative energy error seen so far.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(row []float64) {
	energy := row[0]
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

// Final returns the relative error of the last observed row.
func (e *EnergyDrift) Final() float64 {
	if e.initialEnergy == 0 {
		return 0
	}
	return math.Abs(e.currentEnergy-e.initialEnergy) / math.Abs(e.initialEnergy)
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// MomentumDrift is the largest |H - H0| / |H0| seen so far.
type MomentumDrift struct {
	name     string
	initial  [3]float64
	norm     float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(row []float64) {
	h := row[1:4]
	if m.samples == 0 {
		copy(m.initial[:], h)
		m.norm = math.Sqrt(h[0]*h[0] + h[1]*h[1] + h[2]*h[2])
	}
	m.samples++
	if m.norm == 0 {
		return
	}

	dx, dy, dz := h[0]-m.initial[0], h[1]-m.initial[1], h[2]-m.initial[2]
	drift := math.Sqrt(dx*dx+dy*dy+dz*dz) / m.norm
	m.maxDrift = math.Max(m.maxDrift, drift)
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = [3]float64{}
	m.norm = 0
	m.maxDrift = 0
	m.samples = 0
}

// Stability is the fraction of rows whose relative energy error stays
// within a threshold. Non-finite rows count as violations.
type Stability struct {
	name       string
	threshold  float64
	initial    float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(row []float64) {
	if s.samples == 0 {
		s.initial = row[0]
	}
	s.samples++

	for _, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			s.violations++
			return
		}
	}
	if s.initial != 0 && math.Abs(row[0]-s.initial)/math.Abs(s.initial) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.initial = 0
	s.violations = 0
	s.samples = 0
}
