package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/experiment"
	"github.com/san-kum/orbitsim/internal/metrics"
	"github.com/san-kum/orbitsim/internal/simstate"
	"github.com/san-kum/orbitsim/internal/storage"
	"github.com/san-kum/orbitsim/internal/trail"
	"github.com/san-kum/orbitsim/internal/viz"
)

const plotWidth = 80

func plotRun(cmd *cobra.Command, args []string) error {
	id := args[0]
	sim, meta, err := openRun(id)
	if err != nil {
		return err
	}
	defer sim.Close()
	if meta == nil {
		return fmt.Errorf("run %s has no metadata, gravitational parameters unknown", id)
	}

	st := storage.New(dataDir)
	cache, err := st.Cache(sim.Key())
	if err != nil {
		return err
	}
	inv, err := cache.WithLogger(logger).Load(sim, meta.Mu)
	if err != nil {
		return err
	}
	defer inv.Close()

	fmt.Printf("run: %s\n", id)
	fmt.Printf("rows: %d\n\n", inv.Steps())

	series := []struct {
		caption string
		data    []float64
	}{
		{"relative energy drift", metrics.RelativeDrift(inv.Energy())},
		{"relative angular momentum drift", metrics.RelativeDrift(inv.AngularMomentumNorm())},
	}
	for _, s := range series {
		graph := asciigraph.Plot(downsample(s.data, plotWidth),
			asciigraph.Height(10),
			asciigraph.Width(plotWidth),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	results := metrics.Evaluate(inv, experiment.NewRegistry().DefaultMetrics()...)
	for _, name := range []string{"energy_drift", "momentum_drift", "stability"} {
		fmt.Println(viz.Field(name, fmt.Sprintf("%.3e", results[name])))
	}
	return st.UpdateMetrics(id, results)
}

// downsample keeps the largest value of each of width buckets.
func downsample(data []float64, width int) []float64 {
	if len(data) <= width {
		return data
	}
	out := make([]float64, width)
	for i := range out {
		lo, hi := i*len(data)/width, (i+1)*len(data)/width
		m := data[lo]
		for _, v := range data[lo+1 : hi] {
			m = math.Max(m, v)
		}
		out[i] = m
	}
	return out
}

// trailLengths returns the trail settings for a run: the config file when
// given, else the defaults with the sampling of the preset of the same name.
func trailLengths(name string) (config.TrailConfig, error) {
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return config.TrailConfig{}, err
		}
		return cfg.Trail, nil
	}
	tc := config.DefaultConfig().Trail
	if p := config.GetPreset(name); p != nil {
		tc.StepTime, tc.LengthTime = p.StepTime, p.LengthTime
	}
	return tc, nil
}

func buildTrail(sim *simstate.File, meta *storage.RunMetadata, tc config.TrailConfig) (*trail.Trail, error) {
	idx := -1
	if focus != "" {
		for i, name := range bodyNames(meta, sim.Bodies()) {
			if name == focus {
				idx = i
			}
		}
		if idx < 0 {
			return nil, dynamo.Configurationf("unknown focus body %q", focus)
		}
	}

	return trail.NewTrail(sim, trail.Options{
		Dim:        3,
		StepTime:   tc.StepTime,
		LengthTime: tc.LengthTime,
		Focus:      idx,
	})
}

// showTrail builds the trail at a frame, optionally plays it forward for
// elapsed wall-clock seconds, and prints the newest samples of every body.
func showTrail(cmd *cobra.Command, args []string) error {
	sim, meta, err := openRun(args[0])
	if err != nil {
		return err
	}
	defer sim.Close()

	tc, err := trailLengths(sim.Key().Name)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("speed") || tc.Speed <= 0 {
		tc.Speed = speed
	}
	tr, err := buildTrail(sim, meta, tc)
	if err != nil {
		return err
	}
	f := frame
	if f < 0 {
		f += sim.Steps()
	}
	if f < 0 || f >= sim.Steps() {
		return dynamo.Configurationf("frame %d out of range %d", frame, sim.Steps())
	}
	tr.Rebuild(f)

	if elapsed > 0 {
		clock := trail.Clock{Dt: sim.Dt(), Speed: tc.Speed * dynamo.Day}
		steps := clock.Advance(time.Duration(elapsed * float64(time.Second)))
		tr.Advance(steps)
		logger.Debug("advanced", "steps", steps, "frame", tr.Frame())
	}

	buf := tr.Buffer()
	s := tr.Sampler()
	fmt.Println(viz.Title.Render("trail " + args[0]))
	fmt.Println(viz.Field("frame", fmt.Sprintf("%d (t = %.2f days)", tr.Frame(), sim.Times()[tr.Frame()]/dynamo.Day)))
	fmt.Println(viz.Field("sampling", fmt.Sprintf("every %d steps, %d samples", s.Step, s.Length)))
	fmt.Println()

	n := buf.Capacity()
	if samples > 0 && samples < n {
		n = samples
	}
	names := bodyNames(meta, sim.Bodies())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tSAMPLE\tX\tY\tZ")
	var line []float64
	for b, name := range names {
		line = buf.Polyline(b, line)
		for i := buf.Capacity() - n; i < buf.Capacity(); i++ {
			p := line[3*i : 3*i+3]
			fmt.Fprintf(w, "%s\t%d\t%.6e\t%.6e\t%.6e\n", name, i-buf.Capacity()+1, p[0], p[1], p[2])
		}
		live := tr.Live()
		fmt.Fprintf(w, "%s\tlive\t%.6e\t%.6e\t%.6e\n", name, live[b], live[len(names)+b], live[2*len(names)+b])
	}
	return w.Flush()
}
