// Package trail keeps the recent path of every body as a bounded polyline.
//
// A [Buffer] is a ring of L slots; each slot holds one sample of every body
// laid out as (dim, bodies). Logical index 0 is the oldest sample and L-1 the
// newest. Appending k samples costs O(k); a full rebuild costs O(L).
package trail

import "fmt"

// Buffer is a fixed-capacity ring of samples.
type Buffer struct {
	data     []float64
	capacity int
	dim      int
	bodies   int
	head     int
}

// Span is a logical range of the buffer as at most two contiguous slices of
// physical storage, A followed by B.
type Span struct {
	A, B []float64
}

// Len returns the number of values in the span.
func (s Span) Len() int { return len(s.A) + len(s.B) }

// New returns a zeroed buffer of capacity slots.
func New(capacity, dim, bodies int) *Buffer {
	if capacity <= 0 || dim <= 0 || bodies <= 0 {
		panic(fmt.Sprintf("trail: invalid buffer shape (%d, %d, %d)", capacity, dim, bodies))
	}
	return &Buffer{
		data:     make([]float64, capacity*dim*bodies),
		capacity: capacity,
		dim:      dim,
		bodies:   bodies,
	}
}

func (b *Buffer) Capacity() int { return b.capacity }
func (b *Buffer) Dim() int      { return b.dim }
func (b *Buffer) Bodies() int   { return b.bodies }

// SlotLen returns the number of values per sample.
func (b *Buffer) SlotLen() int { return b.dim * b.bodies }

func (b *Buffer) physical(i int) int {
	return (b.head + i) % b.capacity
}

// Slot returns logical sample i without copying.
func (b *Buffer) Slot(i int) []float64 {
	if i < 0 || i >= b.capacity {
		panic(fmt.Sprintf("trail: slot %d out of range %d", i, b.capacity))
	}
	n := b.SlotLen()
	p := b.physical(i)
	return b.data[p*n : (p+1)*n]
}

// AppendPoints pushes k samples, given as k*dim*bodies values, oldest first.
// The k oldest samples are dropped. When k >= capacity only the last
// capacity samples are kept and the ring is reset, as a rebuild would.
func (b *Buffer) AppendPoints(points []float64) {
	n := b.SlotLen()
	if len(points)%n != 0 {
		panic(fmt.Sprintf("trail: %d values is not a whole number of %d-value samples", len(points), n))
	}
	k := len(points) / n
	if k == 0 {
		return
	}

	if k >= b.capacity {
		copy(b.data, points[(k-b.capacity)*n:])
		b.head = 0
		return
	}

	// First physical slot to overwrite is the oldest, at head.
	first := b.head
	tail := b.capacity - first
	if k <= tail {
		copy(b.data[first*n:], points)
	} else {
		copy(b.data[first*n:], points[:tail*n])
		copy(b.data, points[tail*n:])
	}
	b.head = (b.head + k) % b.capacity
}

// Read returns logical samples [start, stop).
func (b *Buffer) Read(start, stop int) Span {
	if start < 0 || stop > b.capacity || start > stop {
		panic(fmt.Sprintf("trail: read [%d, %d) out of range %d", start, stop, b.capacity))
	}
	n := b.SlotLen()
	count := stop - start
	if count == 0 {
		return Span{}
	}

	p := b.physical(start)
	if p+count <= b.capacity {
		return Span{A: b.data[p*n : (p+count)*n]}
	}
	return Span{
		A: b.data[p*n:],
		B: b.data[:(p+count-b.capacity)*n],
	}
}

// Fill rewrites every slot in logical order and resets the ring.
func (b *Buffer) Fill(fn func(i int, dst []float64)) {
	b.head = 0
	n := b.SlotLen()
	for i := 0; i < b.capacity; i++ {
		fn(i, b.data[i*n:(i+1)*n])
	}
}

// Polyline writes the points of one body, oldest first, as capacity points
// of dim coordinates.
func (b *Buffer) Polyline(body int, dst []float64) []float64 {
	if body < 0 || body >= b.bodies {
		panic(fmt.Sprintf("trail: body %d out of range %d", body, b.bodies))
	}
	want := b.capacity * b.dim
	if cap(dst) < want {
		dst = make([]float64, want)
	}
	dst = dst[:want]

	for i := 0; i < b.capacity; i++ {
		slot := b.Slot(i)
		for c := 0; c < b.dim; c++ {
			dst[i*b.dim+c] = slot[c*b.bodies+body]
		}
	}
	return dst
}
