package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"text/tabwriter"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/orbitsim/internal/bodies"
	"github.com/san-kum/orbitsim/internal/compute"
	"github.com/san-kum/orbitsim/internal/config"
)

// randomBodies scatters n unit-mass bodies in a unit cube with small random
// velocities.
func randomBodies(n int, seed int64) *bodies.List {
	rng := rand.New(rand.NewSource(seed))
	l := bodies.NewList()
	for i := 0; i < n; i++ {
		mu := 1.0
		r := mgl64.Vec3{rng.Float64(), rng.Float64(), rng.Float64()}
		v := mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}.Mul(0.1)
		l.Append(bodies.Body{Name: fmt.Sprintf("b%d", i), Mu: &mu, R0: &r, V0: &v})
	}
	return l
}

func benchKernels(cmd *cobra.Command, args []string) error {
	list := randomBodies(benchBodies, 42)
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		list = p.Bodies()
	}
	n := list.Len()
	if n == 0 {
		return fmt.Errorf("no bodies to benchmark")
	}
	if benchIters < 2 {
		benchIters = 2
	}
	y := list.Y0()
	mu := list.Mu()

	ref := make([]float64, 6*n)
	compute.NewReference().Evaluate(y, ref, n, mu)

	fmt.Printf("benchmarking %d bodies, %d evaluations per kernel\n\n", n, benchIters)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KERNEL\tMEAN\tSTDDEV\tEVALS/SEC\tMAX_REL_ERR")

	for _, kind := range compute.Kinds() {
		k, err := compute.New(kind)
		if err != nil {
			return err
		}
		out := make([]float64, 6*n)
		samples := make([]float64, benchIters)
		for i := range samples {
			start := time.Now()
			k.Evaluate(y, out, n, mu)
			samples[i] = time.Since(start).Seconds()
		}
		mean, std := stat.MeanStdDev(samples, nil)

		fmt.Fprintf(w, "%s\t%v\t%v\t%.0f\t%.2e\n",
			k.Name(),
			time.Duration(mean*float64(time.Second)),
			time.Duration(std*float64(time.Second)),
			1/mean,
			maxRelErr(out, ref),
		)
	}
	return w.Flush()
}

func maxRelErr(got, want []float64) float64 {
	diff := make([]float64, len(got))
	floats.SubTo(diff, got, want)
	scale := math.Max(floats.Norm(want, math.Inf(1)), math.SmallestNonzeroFloat64)
	return floats.Norm(diff, math.Inf(1)) / scale
}
