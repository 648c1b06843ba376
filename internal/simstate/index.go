package simstate

import "fmt"

// Index selects positions along one axis. Negative positions count from the
// end.
type Index struct {
	start, stop, step int
	scalar            bool
	open              bool
}

// At selects a single position. The axis is kept with length one so views
// are always three dimensional.
func At(i int) Index { return Index{start: i, step: 1, scalar: true} }

// Range selects [start, stop).
func Range(start, stop int) Index { return Index{start: start, stop: stop, step: 1} }

// Strided selects every step-th position of [start, stop).
func Strided(start, stop, step int) Index {
	if step <= 0 {
		panic(fmt.Sprintf("simstate: stride must be positive, got %d", step))
	}
	return Index{start: start, stop: stop, step: step}
}

// From selects [start, end of axis).
func From(start int) Index { return Index{start: start, step: 1, open: true} }

// All selects the whole axis.
func All() Index { return From(0) }

// resolve returns the first position, count and stride for an axis of
// length n.
func (ix Index) resolve(n int) (first, count, step int) {
	if ix.scalar {
		i := ix.start
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			panic(fmt.Sprintf("simstate: index %d out of range for axis of length %d", ix.start, n))
		}
		return i, 1, 1
	}

	start := clamp(ix.start, n)
	stop := n
	if !ix.open {
		stop = clamp(ix.stop, n)
	}
	if stop <= start {
		return start, 0, ix.step
	}
	return start, (stop - start + ix.step - 1) / ix.step, ix.step
}

func clamp(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
