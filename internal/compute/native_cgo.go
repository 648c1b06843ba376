//go:build native && cgo

package compute

/*
#cgo CFLAGS: -O3
#cgo LDFLAGS: -lm
#include <math.h>

static void orbit_accel(const double* state, double* out, int n, const double* mu) {
	const double* pos = state;
	double* acc = out + 3 * n;
	int i, j;

	for (i = 0; i < 3 * n; i++) {
		out[i] = state[3 * n + i];
		acc[i] = 0.0;
	}

	for (i = 0; i < n; i++) {
		double xi = pos[3 * i], yi = pos[3 * i + 1], zi = pos[3 * i + 2];
		for (j = i + 1; j < n; j++) {
			double rx = pos[3 * j] - xi;
			double ry = pos[3 * j + 1] - yi;
			double rz = pos[3 * j + 2] - zi;
			double r2 = rx * rx + ry * ry + rz * rz;
			double inv, fij, fji;
			if (r2 == 0.0) {
				continue;
			}
			inv = 1.0 / (r2 * sqrt(r2));
			fij = mu[j] * inv;
			fji = mu[i] * inv;
			acc[3 * i] += fij * rx;
			acc[3 * i + 1] += fij * ry;
			acc[3 * i + 2] += fij * rz;
			acc[3 * j] -= fji * rx;
			acc[3 * j + 1] -= fji * ry;
			acc[3 * j + 2] -= fji * rz;
		}
	}
}
*/
import "C"
import "unsafe"

const nativeAvailable = true

// NativeKernel evaluates accelerations in C.
type NativeKernel struct{}

func NewNative() *NativeKernel {
	return &NativeKernel{}
}

func (k *NativeKernel) Name() string { return "native" }

func (k *NativeKernel) Evaluate(state, out []float64, n int, mu []float64) {
	if n == 0 {
		return
	}
	C.orbit_accel(
		(*C.double)(unsafe.Pointer(&state[0])),
		(*C.double)(unsafe.Pointer(&out[0])),
		C.int(n),
		(*C.double)(unsafe.Pointer(&mu[0])),
	)
}
