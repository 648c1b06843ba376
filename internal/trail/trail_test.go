package trail_test

import (
	"errors"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/trail"
)

// ramp is a trajectory where body b at row s sits at (s + 1000b, 2s, b).
type ramp struct {
	rows, bodies int
	dt           float64
}

func (r ramp) Steps() int  { return r.rows }
func (r ramp) Bodies() int { return r.bodies }
func (r ramp) Dt() float64 { return r.dt }
func (r ramp) State(s int) []float64 {
	row := make([]float64, r.bodies*dynamo.StateDim)
	for b := 0; b < r.bodies; b++ {
		row[b*6] = float64(s + 1000*b)
		row[b*6+1] = float64(2 * s)
		row[b*6+2] = float64(b)
	}
	return row
}

func newTrail(src trail.Source, opts trail.Options) *trail.Trail {
	tr, err := trail.NewTrail(src, opts)
	Expect(err).NotTo(HaveOccurred())
	return tr
}

func contents(tr *trail.Trail) []float64 {
	b := tr.Buffer()
	span := b.Read(0, b.Capacity())
	return append(append([]float64(nil), span.A...), span.B...)
}

// xs returns the x coordinate of body 0 for every sample.
func xs(tr *trail.Trail) []float64 {
	line := tr.Buffer().Polyline(0, nil)
	dim := tr.Buffer().Dim()
	out := make([]float64, 0, len(line)/dim)
	for i := 0; i < len(line); i += dim {
		out = append(out, line[i])
	}
	return out
}

var _ = Describe("Sampler", func() {
	It("derives step and length from durations", func() {
		s, err := trail.NewSampler(1, 2, 8)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Step).To(Equal(2))
		Expect(s.Length).To(Equal(4))

		s, err = trail.NewSampler(dynamo.Hour, dynamo.Minute, dynamo.Hour)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Step).To(Equal(1))
		Expect(s.Length).To(Equal(60))
	})

	It("keeps the remainder between advances", func() {
		s, _ := trail.NewSampler(1, 3, 30)
		Expect(s.Advance(2)).To(Equal(0))
		Expect(s.Advance(2)).To(Equal(1))
		Expect(s.Pending()).To(Equal(1))
		Expect(s.Advance(8)).To(Equal(3))
		Expect(s.Pending()).To(Equal(0))
	})

	It("rejects bad durations", func() {
		for _, c := range [][3]float64{{0, 1, 1}, {1, 0, 1}, {1, 2, 1}, {-1, 1, 2}} {
			_, err := trail.NewSampler(c[0], c[1], c[2])
			Expect(errors.Is(err, dynamo.ErrConfiguration)).To(BeTrue())
		}
	})
})

var _ = Describe("Clock", func() {
	It("carries fractional steps", func() {
		c := trail.Clock{Dt: 10, Speed: 25}
		Expect(c.Advance(time.Second)).To(Equal(2))
		Expect(c.Fraction()).To(BeNumerically("~", 0.5, 1e-12))
		Expect(c.Advance(time.Second)).To(Equal(3))
		Expect(c.Fraction()).To(BeNumerically("~", 0, 1e-12))
		Expect(c.Advance(0)).To(Equal(0))
	})
})

var _ = Describe("Trail", func() {
	var src ramp

	BeforeEach(func() {
		src = ramp{rows: 50, bodies: 2, dt: 1}
	})

	It("samples backwards from the rebuild frame", func() {
		tr := newTrail(src, trail.Options{Dim: 2, StepTime: 2, LengthTime: 8, Focus: -1})
		tr.Rebuild(7)

		Expect(tr.Buffer().Polyline(0, nil)).To(Equal([]float64{1, 2, 3, 6, 5, 10, 7, 14}))
		Expect(tr.Live()).To(Equal([]float64{7, 1007, 14, 14}))
	})

	It("pads the front with the oldest sample near the start", func() {
		tr := newTrail(src, trail.Options{Dim: 2, StepTime: 2, LengthTime: 8, Focus: -1})
		tr.Rebuild(2)
		Expect(xs(tr)).To(Equal([]float64{0, 0, 0, 2}))

		tr.Rebuild(3)
		Expect(xs(tr)).To(Equal([]float64{1, 1, 1, 3}))
	})

	It("matches a rebuild after incremental advances", func() {
		opts := trail.Options{StepTime: 2, LengthTime: 8, Focus: -1}
		tr := newTrail(src, opts)
		tr.Rebuild(0)
		for i := 0; i < 5; i++ {
			tr.Advance(3)
		}
		Expect(tr.Frame()).To(Equal(15))

		ref := newTrail(src, opts)
		ref.Rebuild(14)
		Expect(contents(tr)).To(Equal(contents(ref)))
		Expect(xs(tr)).To(Equal([]float64{8, 10, 12, 14}))
		Expect(tr.Live()[0]).To(Equal(15.0))
	})

	It("rebuilds when a whole trail length is due", func() {
		opts := trail.Options{StepTime: 2, LengthTime: 8, Focus: -1}
		tr := newTrail(src, opts)
		tr.Rebuild(0)
		tr.Advance(9)

		ref := newTrail(src, opts)
		ref.Rebuild(8)
		Expect(contents(tr)).To(Equal(contents(ref)))

		tr.Advance(1)
		ref.Rebuild(10)
		Expect(contents(tr)).To(Equal(contents(ref)))
	})

	It("rebuilds from the start when playback wraps", func() {
		tr := newTrail(ramp{rows: 20, bodies: 2, dt: 1}, trail.Options{StepTime: 2, LengthTime: 8, Focus: -1})
		tr.Rebuild(18)
		tr.Advance(5)

		Expect(tr.Frame()).To(Equal(0))
		Expect(xs(tr)).To(Equal([]float64{0, 0, 0, 0}))
		Expect(tr.Live()[0]).To(Equal(0.0))
	})

	It("draws relative to the focus body", func() {
		tr := newTrail(src, trail.Options{Dim: 2, StepTime: 2, LengthTime: 8, Focus: -1})
		tr.Rebuild(6)
		Expect(tr.SetFocus(1)).To(Succeed())
		tr.Advance(0)

		Expect(xs(tr)).To(Equal([]float64{-1000, -1000, -1000, -1000}))
		Expect(tr.Buffer().Polyline(1, nil)).To(Equal(make([]float64, 8)))
		Expect(tr.Focus()).To(Equal(1))
		Expect(tr.SetFocus(2)).NotTo(Succeed())
	})

	It("applies a custom projection", func() {
		swap := func(r mgl64.Vec3, dst []float64) {
			dst[0], dst[1] = r[1], r[0]
		}
		tr := newTrail(src, trail.Options{Dim: 2, StepTime: 1, LengthTime: 1, Focus: -1, Project: swap})
		tr.Rebuild(4)
		Expect(tr.Buffer().Polyline(0, nil)).To(Equal([]float64{8, 4}))
	})

	It("resizes on SetLength", func() {
		tr := newTrail(src, trail.Options{StepTime: 2, LengthTime: 8, Focus: -1})
		tr.Rebuild(10)
		Expect(tr.SetLength(1, 3)).To(Succeed())
		tr.Advance(0)

		Expect(tr.Buffer().Capacity()).To(Equal(3))
		Expect(xs(tr)).To(Equal([]float64{8, 9, 10}))
		Expect(tr.SetLength(2, 1)).NotTo(Succeed())
	})

	It("validates its options", func() {
		_, err := trail.NewTrail(src, trail.Options{Dim: 4, StepTime: 1, LengthTime: 1, Focus: -1})
		Expect(errors.Is(err, dynamo.ErrConfiguration)).To(BeTrue())

		_, err = trail.NewTrail(src, trail.Options{StepTime: 1, LengthTime: 1, Focus: 2})
		Expect(err).To(HaveOccurred())

		_, err = trail.NewTrail(ramp{rows: 5, bodies: 1, dt: -1}, trail.Options{StepTime: 1, LengthTime: 1, Focus: -1})
		Expect(err).To(HaveOccurred())

		tr := newTrail(src, trail.Options{StepTime: 1, LengthTime: 1, Focus: -1})
		Expect(func() { tr.Rebuild(50) }).To(Panic())
		Expect(func() { tr.Advance(-1) }).To(Panic())
	})
})
