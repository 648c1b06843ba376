// Package metrics summarises how well a trajectory conserves its
// invariants.
//
// Metrics observe invariant rows in siminteg order: energy followed by the
// three angular momentum components.
package metrics

import "math"

// Metric accumulates a scalar over observed invariant rows.
type Metric interface {
	Name() string
	Observe(row []float64)
	Value() float64
	Reset()
}

// Rows is a sequence of invariant rows, such as an open siminteg file.
type Rows interface {
	Steps() int
	Row(i int) []float64
}

// Evaluate feeds every row to every metric and returns the values by name.
func Evaluate(rows Rows, ms ...Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	for i := 0; i < rows.Steps(); i++ {
		row := rows.Row(i)
		for _, m := range ms {
			m.Observe(row)
		}
	}

	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// RelativeDrift returns |x_i - x_0| / |x_0| for every element. A zero
// initial value yields absolute differences.
func RelativeDrift(series []float64) []float64 {
	out := make([]float64, len(series))
	if len(series) == 0 {
		return out
	}
	ref := math.Abs(series[0])
	for i, v := range series {
		d := math.Abs(v - series[0])
		if ref != 0 {
			d /= ref
		}
		out[i] = d
	}
	return out
}
