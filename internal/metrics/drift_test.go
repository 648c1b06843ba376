package metrics

import (
	"math"
	"testing"
)

type table [][]float64

func (t table) Steps() int          { return len(t) }
func (t table) Row(i int) []float64 { return t[i] }

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift()

	m.Observe([]float64{-2, 0, 0, 1})
	m.Observe([]float64{-2.2, 0, 0, 1})
	m.Observe([]float64{-2.1, 0, 0, 1})

	if math.Abs(m.Value()-0.1) > 1e-12 {
		t.Errorf("expected max drift 0.1, got %f", m.Value())
	}
	if math.Abs(m.Final()-0.05) > 1e-12 {
		t.Errorf("expected final drift 0.05, got %f", m.Final())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected zero after reset, got %f", m.Value())
	}
}

func TestMomentumDrift(t *testing.T) {
	m := NewMomentumDrift()

	m.Observe([]float64{0, 0, 0, 10})
	m.Observe([]float64{0, 0, 1, 10})

	if math.Abs(m.Value()-0.1) > 1e-12 {
		t.Errorf("expected drift 0.1, got %f", m.Value())
	}
}

func TestStability(t *testing.T) {
	s := NewStability(0.01)
	rows := table{
		{1, 0, 0, 0},
		{1.001, 0, 0, 0},
		{1.5, 0, 0, 0},
		{math.NaN(), 0, 0, 0},
	}

	got := Evaluate(rows, s)["stability"]
	if got != 0.5 {
		t.Errorf("expected stability 0.5, got %f", got)
	}
}

func TestEvaluateResetsFirst(t *testing.T) {
	m := NewEnergyDrift()
	m.Observe([]float64{100, 0, 0, 0})

	rows := table{{1, 0, 0, 0}, {1, 0, 0, 0}}
	values := Evaluate(rows, m, NewMomentumDrift())
	if values["energy_drift"] != 0 {
		t.Errorf("expected zero drift, got %f", values["energy_drift"])
	}
	if _, ok := values["momentum_drift"]; !ok {
		t.Error("missing momentum_drift")
	}
}

func TestRelativeDrift(t *testing.T) {
	got := RelativeDrift([]float64{-4, -4, -3, -5})
	want := []float64{0, 0, 0.25, 0.25}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-15 {
			t.Errorf("index %d: expected %f, got %f", i, want[i], got[i])
		}
	}

	if len(RelativeDrift(nil)) != 0 {
		t.Error("expected empty drift for empty series")
	}
}
