package trail_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbitsim/internal/trail"
)

// samples returns k one-value samples numbered from first.
func samples(first, k int) []float64 {
	out := make([]float64, k)
	for i := range out {
		out[i] = float64(first + i)
	}
	return out
}

func logical(b *trail.Buffer) []float64 {
	span := b.Read(0, b.Capacity())
	return append(append([]float64(nil), span.A...), span.B...)
}

var _ = Describe("Buffer", func() {
	var b *trail.Buffer

	BeforeEach(func() {
		b = trail.New(5, 1, 1)
	})

	It("starts zeroed", func() {
		Expect(logical(b)).To(Equal([]float64{0, 0, 0, 0, 0}))
	})

	It("keeps chronological order across wraps", func() {
		b.AppendPoints(samples(1, 3))
		Expect(logical(b)).To(Equal([]float64{0, 0, 1, 2, 3}))

		b.AppendPoints(samples(4, 4))
		Expect(logical(b)).To(Equal([]float64{3, 4, 5, 6, 7}))

		b.AppendPoints(samples(8, 2))
		Expect(logical(b)).To(Equal([]float64{5, 6, 7, 8, 9}))
	})

	It("splits a wrapped read into two spans", func() {
		b.AppendPoints(samples(1, 3))
		b.AppendPoints(samples(4, 4))
		span := b.Read(1, 5)
		Expect(span.Len()).To(Equal(4))
		Expect(span.B).NotTo(BeEmpty())
		Expect(append(append([]float64(nil), span.A...), span.B...)).To(Equal([]float64{4, 5, 6, 7}))
	})

	It("returns a single span when the range does not wrap", func() {
		b.AppendPoints(samples(1, 5))
		span := b.Read(0, 5)
		Expect(span.B).To(BeNil())
		Expect(span.A).To(Equal([]float64{1, 2, 3, 4, 5}))
		Expect(b.Read(2, 2).Len()).To(BeZero())
	})

	It("treats k >= capacity as a rebuild", func() {
		b.AppendPoints(samples(1, 2))
		b.AppendPoints(samples(10, 8))

		rebuilt := trail.New(5, 1, 1)
		rebuilt.Fill(func(i int, dst []float64) { dst[0] = float64(13 + i) })

		Expect(logical(b)).To(Equal(logical(rebuilt)))
		Expect(b.Read(0, 5).B).To(BeNil())
	})

	It("appends the same result one by one or in a batch", func() {
		batched := trail.New(5, 1, 1)
		batched.AppendPoints(samples(1, 4))
		batched.AppendPoints(samples(5, 4))

		for i := 1; i <= 8; i++ {
			b.AppendPoints(samples(i, 1))
		}
		Expect(logical(b)).To(Equal(logical(batched)))
	})

	It("rejects partial samples and bad ranges", func() {
		wide := trail.New(3, 2, 2)
		Expect(func() { wide.AppendPoints(make([]float64, 3)) }).To(Panic())
		Expect(func() { wide.Read(2, 1) }).To(Panic())
		Expect(func() { wide.Slot(3) }).To(Panic())
		Expect(func() { trail.New(0, 2, 2) }).To(Panic())
	})

	Describe("Polyline", func() {
		It("extracts one body in (dim, bodies) slot layout", func() {
			wide := trail.New(2, 2, 3)
			// slot = x0 x1 x2 y0 y1 y2
			wide.AppendPoints([]float64{
				1, 2, 3, 10, 20, 30,
				4, 5, 6, 40, 50, 60,
			})
			Expect(wide.Polyline(1, nil)).To(Equal([]float64{2, 20, 5, 50}))
			Expect(wide.Polyline(2, make([]float64, 0, 8))).To(Equal([]float64{3, 30, 6, 60}))
		})
	})
})
