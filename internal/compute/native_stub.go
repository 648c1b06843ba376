//go:build !native || !cgo

package compute

const nativeAvailable = false

// NativeKernel falls back to the optimized kernel when the C kernel was not
// compiled in.
type NativeKernel struct {
	fallback *OptimizedKernel
}

func NewNative() *NativeKernel {
	return &NativeKernel{fallback: NewOptimized()}
}

func (k *NativeKernel) Name() string { return "native (not available)" }

func (k *NativeKernel) Evaluate(state, out []float64, n int, mu []float64) {
	k.fallback.Evaluate(state, out, n, mu)
}
