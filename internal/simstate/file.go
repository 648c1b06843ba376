package simstate

import (
	"fmt"

	"github.com/san-kum/orbitsim/internal/artifact"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/mmap"
)

// File is an open, memory mapped simstate file.
type File struct {
	path   string
	key    artifact.Key
	header Header

	m     *mmap.Mapping
	data  []float64
	times []float64
}

// Open validates and maps a simstate file.
func Open(path string) (*File, error) {
	key, err := artifact.ParseFilename(path, Ext)
	if err != nil {
		return nil, err
	}

	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	f, err := newFile(path, key, m)
	if err != nil {
		m.Close()
		return nil, err
	}
	return f, nil
}

func newFile(path string, key artifact.Key, m *mmap.Mapping) (*File, error) {
	h, err := ParseHeader(m.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if h.Rows == 0 {
		return nil, dynamo.Formatf("%s: simstate has no rows", path)
	}
	if !key.Matches(h.Dt, int(h.Rows)) {
		return nil, fmt.Errorf("%w: %s has dt=%g rows=%d", ErrFilenameMismatch, path, h.Dt, h.Rows)
	}
	if size := int64(m.Len()); size != h.FileSize() {
		return nil, fmt.Errorf("%w: %s is %d bytes, want %d", ErrTruncated, path, size, h.FileSize())
	}

	f := &File{
		path:   path,
		key:    key,
		header: h,
		m:      m,
		data:   m.Float64s(HeaderSize, h.Values()),
	}
	if h.Irregular() {
		f.times = m.Float64s(HeaderSize+8*h.Values(), int(h.Rows))
	}
	return f, nil
}

// Path returns the file path.
func (f *File) Path() string { return f.path }

// Key returns the run key decoded from the filename.
func (f *File) Key() artifact.Key { return f.key }

// Header returns the decoded header.
func (f *File) Header() Header { return f.header }

// Steps returns the number of stored rows, initial state included.
func (f *File) Steps() int { return int(f.header.Rows) }

// Bodies returns the number of bodies.
func (f *File) Bodies() int { return int(f.header.Bodies) }

// Dt returns the time step. It is negative for irregular trajectories.
func (f *File) Dt() float64 { return f.header.Dt }

// Times returns the time of every row.
func (f *File) Times() []float64 {
	if f.times != nil {
		return f.times
	}
	t := make([]float64, f.Steps())
	for i := range t {
		t[i] = float64(i) * f.header.Dt
	}
	return t
}

// Raw returns the whole payload in (rows, bodies, 6) order. The slice
// aliases the mapping and must not be modified.
func (f *File) Raw() []float64 { return f.data }

func (f *File) rowLen() int { return f.Bodies() * dynamo.StateDim }

// State returns the (bodies, 6) row of one step. Negative steps count from
// the end.
func (f *File) State(step int) []float64 {
	i, _, _ := At(step).resolve(f.Steps())
	n := f.rowLen()
	return f.data[i*n : (i+1)*n]
}

func (f *File) window(steps, bodies Index, component int) View {
	s0, ns, ss := steps.resolve(f.Steps())
	b0, nb, bs := bodies.resolve(f.Bodies())

	return View{
		data:   f.data,
		offset: s0*f.rowLen() + b0*dynamo.StateDim + component,
		shape:  [3]int{ns, nb, 3},
		stride: [3]int{ss * f.rowLen(), bs * dynamo.StateDim, 1},
	}
}

// R returns positions with shape (steps, bodies, 3).
func (f *File) R(steps, bodies Index) View { return f.window(steps, bodies, 0) }

// V returns velocities with shape (steps, bodies, 3).
func (f *File) V(steps, bodies Index) View { return f.window(steps, bodies, 3) }

// RVis returns positions with shape (steps, 3, bodies).
func (f *File) RVis(steps, bodies Index) View { return f.R(steps, bodies).Transpose() }

// VVis returns velocities with shape (steps, 3, bodies).
func (f *File) VVis(steps, bodies Index) View { return f.V(steps, bodies).Transpose() }

// Close unmaps the file. Views obtained earlier become invalid.
func (f *File) Close() error {
	f.data = nil
	f.times = nil
	return f.m.Close()
}
