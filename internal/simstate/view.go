package simstate

import "fmt"

// View is a three dimensional strided window over float64 data. Element
// (i, j, k) lives at data[offset + i*stride[0] + j*stride[1] + k*stride[2]].
// A View never owns its data; the values must not be modified.
type View struct {
	data   []float64
	offset int
	shape  [3]int
	stride [3]int
}

// Shape returns the length of each axis.
func (v View) Shape() [3]int { return v.shape }

// Strides returns the element stride of each axis.
func (v View) Strides() [3]int { return v.stride }

// Len returns the number of elements.
func (v View) Len() int { return v.shape[0] * v.shape[1] * v.shape[2] }

// At returns element (i, j, k).
func (v View) At(i, j, k int) float64 {
	if uint(i) >= uint(v.shape[0]) || uint(j) >= uint(v.shape[1]) || uint(k) >= uint(v.shape[2]) {
		panic(fmt.Sprintf("simstate: view index (%d, %d, %d) out of range %v", i, j, k, v.shape))
	}
	return v.data[v.offset+i*v.stride[0]+j*v.stride[1]+k*v.stride[2]]
}

// Transpose swaps the last two axes. Only the stride table changes.
func (v View) Transpose() View {
	v.shape[1], v.shape[2] = v.shape[2], v.shape[1]
	v.stride[1], v.stride[2] = v.stride[2], v.stride[1]
	return v
}

// Row returns the (1, shape[1], shape[2]) view of position i on the first
// axis.
func (v View) Row(i int) View {
	if uint(i) >= uint(v.shape[0]) {
		panic(fmt.Sprintf("simstate: row %d out of range %d", i, v.shape[0]))
	}
	v.offset += i * v.stride[0]
	v.shape[0] = 1
	return v
}

// CopyTo writes the view in row-major order into dst, growing it when it is
// too short, and returns the filled slice.
func (v View) CopyTo(dst []float64) []float64 {
	n := v.Len()
	if cap(dst) < n {
		dst = make([]float64, n)
	}
	dst = dst[:n]
	if flat, ok := v.contiguous(); ok {
		copy(dst, flat)
		return dst
	}

	idx := 0
	for i := 0; i < v.shape[0]; i++ {
		bi := v.offset + i*v.stride[0]
		for j := 0; j < v.shape[1]; j++ {
			bj := bi + j*v.stride[1]
			for k := 0; k < v.shape[2]; k++ {
				dst[idx] = v.data[bj+k*v.stride[2]]
				idx++
			}
		}
	}
	return dst
}

// contiguous returns the backing slice of the view when its elements are
// laid out row-major without gaps.
func (v View) contiguous() ([]float64, bool) {
	n := v.Len()
	if n == 0 {
		return nil, true
	}
	if (v.shape[2] > 1 && v.stride[2] != 1) ||
		(v.shape[1] > 1 && v.stride[1] != v.shape[2]) ||
		(v.shape[0] > 1 && v.stride[0] != v.shape[1]*v.shape[2]) {
		return nil, false
	}
	return v.data[v.offset : v.offset+n], true
}
