package siminteg

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/simstate"
)

// Compute returns the (rows, 4) invariants of sim: total energy and the
// total angular momentum vector about the origin. mu holds one
// gravitational parameter per body.
func Compute(sim *simstate.File, mu []float64) ([]float64, error) {
	n := sim.Bodies()
	if len(mu) != n {
		return nil, fmt.Errorf("%w: %d mu values for %d bodies", dynamo.ErrDimensionMismatch, len(mu), n)
	}

	rows := sim.Steps()
	out := make([]float64, rows*Dim)
	dynamo.ParallelFor(rows, 256, func(start, end int) {
		for s := start; s < end; s++ {
			e, h := Invariants(sim.State(s), mu)
			row := out[s*Dim : (s+1)*Dim]
			row[0] = e
			copy(row[1:], h[:])
		}
	})
	return out, nil
}

// Invariants evaluates one (bodies, 6) row. Coincident pairs add no
// potential energy.
func Invariants(row []float64, mu []float64) (float64, mgl64.Vec3) {
	n := len(mu)
	var kinetic, potential float64
	var h mgl64.Vec3

	for i := 0; i < n; i++ {
		r := body(row, i, 0)
		v := body(row, i, 3)
		mass := mu[i] / dynamo.G

		kinetic += 0.5 * mass * v.Dot(v)
		h = h.Add(r.Cross(v).Mul(mass))

		for j := i + 1; j < n; j++ {
			d := r.Sub(body(row, j, 0)).Len()
			if d == 0 || math.IsInf(d, 0) {
				continue
			}
			potential -= mu[i] * mu[j] / (dynamo.G * d)
		}
	}
	return kinetic + potential, h
}

func body(row []float64, i, offset int) mgl64.Vec3 {
	b := row[i*dynamo.StateDim+offset:]
	return mgl64.Vec3{b[0], b[1], b[2]}
}
