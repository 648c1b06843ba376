package compute

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// ReferenceKernel evaluates one body at a time against column arrays of all
// positions. It favours clarity over speed.
type ReferenceKernel struct {
	x, y, z    []float64
	dx, dy, dz []float64
	r2, denom  []float64
	w          []float64
}

func NewReference() *ReferenceKernel {
	return &ReferenceKernel{}
}

func (k *ReferenceKernel) Name() string { return "reference" }

func (k *ReferenceKernel) ensureScratch(n int) {
	if len(k.x) == n {
		return
	}
	k.x, k.y, k.z = make([]float64, n), make([]float64, n), make([]float64, n)
	k.dx, k.dy, k.dz = make([]float64, n), make([]float64, n), make([]float64, n)
	k.r2, k.denom = make([]float64, n), make([]float64, n)
	k.w = make([]float64, n)
}

func (k *ReferenceKernel) Evaluate(state, out []float64, n int, mu []float64) {
	k.ensureScratch(n)
	setVelocities(state, out, n)

	for j := 0; j < n; j++ {
		k.x[j] = state[3*j]
		k.y[j] = state[3*j+1]
		k.z[j] = state[3*j+2]
	}

	acc := out[3*n : 6*n]
	for i := 0; i < n; i++ {
		k.rowDelta(i)

		floats.MulTo(k.r2, k.dx, k.dx)
		floats.AddTo(k.r2, k.r2, floats.MulTo(k.denom, k.dy, k.dy))
		floats.AddTo(k.r2, k.r2, floats.MulTo(k.denom, k.dz, k.dz))

		// The self term and coincident pairs sit at infinite distance.
		for j, r2 := range k.r2 {
			if r2 == 0 {
				k.r2[j] = math.Inf(1)
			}
			k.denom[j] = math.Sqrt(k.r2[j])
		}
		floats.MulTo(k.denom, k.denom, k.r2)
		floats.DivTo(k.w, mu, k.denom)

		acc[3*i] = floats.Dot(k.w, k.dx)
		acc[3*i+1] = floats.Dot(k.w, k.dy)
		acc[3*i+2] = floats.Dot(k.w, k.dz)
	}
}

// rowDelta fills dx, dy, dz with r_j - r_i.
func (k *ReferenceKernel) rowDelta(i int) {
	copy(k.dx, k.x)
	copy(k.dy, k.y)
	copy(k.dz, k.z)
	floats.AddConst(-k.x[i], k.dx)
	floats.AddConst(-k.y[i], k.dy)
	floats.AddConst(-k.z[i], k.dz)
}
