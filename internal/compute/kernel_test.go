package compute

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

func randomSystem(rng *rand.Rand, n int) ([]float64, []float64) {
	state := make([]float64, 6*n)
	for i := range state {
		state[i] = rng.Float64()*2 - 1
	}
	mu := make([]float64, n)
	for i := range mu {
		mu[i] = 0.5 + rng.Float64()
	}
	return state, mu
}

func assertClose(t *testing.T, want, got []float64, rtol, atol float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		tol := atol + rtol*math.Abs(want[i])
		if math.Abs(want[i]-got[i]) > tol {
			t.Fatalf("index %d: want %.17g, got %.17g (tol %.3g)", i, want[i], got[i], tol)
		}
	}
}

func TestKernelsAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, n := range []int{1, 2, 3, 10, 65, 130} {
		state, mu := randomSystem(rng, n)

		want := make([]float64, 6*n)
		NewReference().Evaluate(state, want, n, mu)

		for _, kind := range []Kind{Optimized, Native} {
			k, err := New(kind)
			require.NoError(t, err)

			got := make([]float64, 6*n)
			k.Evaluate(state, got, n, mu)
			assertClose(t, want, got, 1e-10, 1e-12)
		}
	}
}

func TestVelocitiesCopied(t *testing.T) {
	state := []float64{0, 0, 0, 1, 0, 0, 5, 6, 7, 8, 9, 10}
	mu := []float64{1, 1}

	for _, kind := range Kinds() {
		k, _ := New(kind)
		out := make([]float64, 12)
		k.Evaluate(state, out, 2, mu)
		assert.Equal(t, []float64{5, 6, 7, 8, 9, 10}, out[:6], kind.String())
	}
}

func TestTwoBodyAcceleration(t *testing.T) {
	// Two bodies 2 apart along x, mu 4 and 1.
	state := []float64{0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0}
	mu := []float64{4, 1}

	for _, kind := range Kinds() {
		k, _ := New(kind)
		out := make([]float64, 12)
		k.Evaluate(state, out, 2, mu)
		assert.InDelta(t, 0.25, out[6], 1e-15, kind.String())
		assert.InDelta(t, -1.0, out[9], 1e-15, kind.String())
		assert.Zero(t, out[7])
		assert.Zero(t, out[11])
	}
}

func TestCoincidentBodiesContributeNothing(t *testing.T) {
	state := []float64{
		1, 1, 1,
		1, 1, 1,
		3, 1, 1,
		0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
	mu := []float64{1, 1, 1}

	for _, kind := range Kinds() {
		k, _ := New(kind)
		out := make([]float64, 18)
		k.Evaluate(state, out, 3, mu)
		for _, v := range out {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%s produced %v", kind, out)
		}
		// Only the third body pulls on the coincident pair.
		assert.InDelta(t, 0.25, out[9], 1e-15)
		assert.InDelta(t, 0.25, out[12], 1e-15)
		assert.InDelta(t, -0.5, out[15], 1e-15)
	}
}

func TestMasslessBodyFeelsButDoesNotPull(t *testing.T) {
	state := []float64{0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0}
	mu := []float64{1, 0}

	out := make([]float64, 12)
	NewOptimized().Evaluate(state, out, 2, mu)
	assert.Zero(t, out[6])
	assert.InDelta(t, -1.0, out[9], 1e-15)
}

func TestFusedRK4MatchesSteppedLoop(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	n, steps, dt := 4, 50, 1e-3
	y0, mu := randomSystem(rng, n)

	k := NewOptimized()
	fused := make([]float64, (steps+1)*6*n)
	k.RK4(y0, dt, steps, n, mu, fused)

	y := append([]float64(nil), y0...)
	k1, k2, k3, k4, tmp := make([]float64, 6*n), make([]float64, 6*n), make([]float64, 6*n), make([]float64, 6*n), make([]float64, 6*n)
	for s := 0; s < steps; s++ {
		k.Evaluate(y, k1, n, mu)
		for i := range tmp {
			tmp[i] = y[i] + dt/2*k1[i]
		}
		k.Evaluate(tmp, k2, n, mu)
		for i := range tmp {
			tmp[i] = y[i] + dt/2*k2[i]
		}
		k.Evaluate(tmp, k3, n, mu)
		for i := range tmp {
			tmp[i] = y[i] + dt*k3[i]
		}
		k.Evaluate(tmp, k4, n, mu)
		for i := range y {
			y[i] += dt / 6 * (k1[i] + 2*k2[i] + 2*k3[i] + k4[i])
		}
	}

	assertClose(t, y, fused[steps*6*n:], 1e-12, 1e-14)
	assert.Equal(t, y0, fused[:6*n])
}

func TestParse(t *testing.T) {
	for _, name := range []string{"reference", "Optimized", "NATIVE"} {
		k, err := Parse(name)
		require.NoError(t, err, name)
		assert.NotNil(t, k)
	}

	_, err := Parse("cuda")
	assert.True(t, errors.Is(err, dynamo.ErrConfiguration))
}

func TestNativeAvailability(t *testing.T) {
	k := NewNative()
	if !Available() {
		assert.Contains(t, k.Name(), "not available")
		return
	}
	assert.Equal(t, "native", k.Name())
}

func benchmarkKernel(b *testing.B, kind Kind, n int) {
	state, mu := randomSystem(rand.New(rand.NewSource(1)), n)
	out := make([]float64, 6*n)
	k, _ := New(kind)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k.Evaluate(state, out, n, mu)
	}
}

func BenchmarkReference_N16(b *testing.B)  { benchmarkKernel(b, Reference, 16) }
func BenchmarkOptimized_N16(b *testing.B)  { benchmarkKernel(b, Optimized, 16) }
func BenchmarkNative_N16(b *testing.B)     { benchmarkKernel(b, Native, 16) }
func BenchmarkReference_N256(b *testing.B) { benchmarkKernel(b, Reference, 256) }
func BenchmarkOptimized_N256(b *testing.B) { benchmarkKernel(b, Optimized, 256) }
func BenchmarkNative_N256(b *testing.B)    { benchmarkKernel(b, Native, 256) }
