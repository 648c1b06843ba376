package compute

import (
	"math"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// parallelThreshold is the body count above which rows are evaluated on
// multiple goroutines.
const parallelThreshold = 64

// OptimizedKernel uses the symmetric pair loop for small systems and a
// row-parallel loop for large ones. It also runs fused RK4 loops.
type OptimizedKernel struct{}

func NewOptimized() *OptimizedKernel {
	return &OptimizedKernel{}
}

func (k *OptimizedKernel) Name() string { return "optimized" }

func (k *OptimizedKernel) Evaluate(state, out []float64, n int, mu []float64) {
	setVelocities(state, out, n)
	if n < parallelThreshold {
		accelSerial(state[:3*n], out[3*n:6*n], n, mu)
		return
	}
	accelParallel(state[:3*n], out[3*n:6*n], n, mu)
}

func accelSerial(pos, acc []float64, n int, mu []float64) {
	for i := range acc {
		acc[i] = 0
	}

	for i := 0; i < n; i++ {
		xi, yi, zi := pos[3*i], pos[3*i+1], pos[3*i+2]

		for j := i + 1; j < n; j++ {
			rx := pos[3*j] - xi
			ry := pos[3*j+1] - yi
			rz := pos[3*j+2] - zi
			r2 := rx*rx + ry*ry + rz*rz
			if r2 == 0 {
				continue
			}

			r3Inv := 1.0 / (r2 * math.Sqrt(r2))

			fij := mu[j] * r3Inv
			acc[3*i] += fij * rx
			acc[3*i+1] += fij * ry
			acc[3*i+2] += fij * rz

			fji := mu[i] * r3Inv
			acc[3*j] -= fji * rx
			acc[3*j+1] -= fji * ry
			acc[3*j+2] -= fji * rz
		}
	}
}

func accelParallel(pos, acc []float64, n int, mu []float64) {
	dynamo.ParallelFor(n, 16, func(start, end int) {
		for i := start; i < end; i++ {
			xi, yi, zi := pos[3*i], pos[3*i+1], pos[3*i+2]
			var ax, ay, az float64

			for j := 0; j < n; j++ {
				rx := pos[3*j] - xi
				ry := pos[3*j+1] - yi
				rz := pos[3*j+2] - zi
				r2 := rx*rx + ry*ry + rz*rz
				if r2 == 0 {
					continue
				}

				f := mu[j] / (r2 * math.Sqrt(r2))
				ax += f * rx
				ay += f * ry
				az += f * rz
			}

			acc[3*i] = ax
			acc[3*i+1] = ay
			acc[3*i+2] = az
		}
	})
}

// RK4 integrates steps fixed steps of classical RK4 and writes every state
// into out.
func (k *OptimizedKernel) RK4(y0 []float64, dt float64, steps, n int, mu []float64, out []float64) {
	dim := 6 * n
	k1 := make([]float64, dim)
	k2 := make([]float64, dim)
	k3 := make([]float64, dim)
	k4 := make([]float64, dim)
	tmp := make([]float64, dim)

	copy(out[:dim], y0)
	half := dt / 2
	sixth := dt / 6

	for s := 0; s < steps; s++ {
		y := out[s*dim : (s+1)*dim]
		next := out[(s+1)*dim : (s+2)*dim]

		k.Evaluate(y, k1, n, mu)
		for i := range tmp {
			tmp[i] = y[i] + half*k1[i]
		}
		k.Evaluate(tmp, k2, n, mu)
		for i := range tmp {
			tmp[i] = y[i] + half*k2[i]
		}
		k.Evaluate(tmp, k3, n, mu)
		for i := range tmp {
			tmp[i] = y[i] + dt*k3[i]
		}
		k.Evaluate(tmp, k4, n, mu)

		for i := range next {
			next[i] = y[i] + sixth*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
		}
	}
}
