package siminteg

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/san-kum/orbitsim/internal/artifact"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/mmap"
)

// File is an open, memory mapped siminteg file.
type File struct {
	path   string
	key    artifact.Key
	header Header
	m      *mmap.Mapping
	data   []float64
}

// Open validates and maps a siminteg file.
func Open(path string) (*File, error) {
	key, err := artifact.ParseFilename(path, Ext)
	if err != nil {
		return nil, err
	}
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	h, err := ParseHeader(m.Bytes())
	if err == nil && !key.Matches(h.Dt, int(h.Rows)) {
		err = fmt.Errorf("%w: %s has dt=%g rows=%d", ErrFilenameMismatch, path, h.Dt, h.Rows)
	}
	if err == nil && int64(m.Len()) != h.FileSize() {
		err = fmt.Errorf("%w: %s is %d bytes, want %d", ErrTruncated, path, m.Len(), h.FileSize())
	}
	if err != nil {
		m.Close()
		return nil, err
	}

	return &File{
		path:   path,
		key:    key,
		header: h,
		m:      m,
		data:   m.Float64s(HeaderSize, int(h.Rows)*Dim),
	}, nil
}

// Write stores a (rows, 4) array. The filename must encode dt and rows-1.
func Write(path string, data []float64, rows int, dt float64) error {
	key, err := artifact.ParseFilename(path, Ext)
	if err != nil {
		return err
	}
	if len(data) != rows*Dim {
		return fmt.Errorf("%w: %d values for %d rows", dynamo.ErrDimensionMismatch, len(data), rows)
	}
	if !key.Matches(dt, rows) {
		return fmt.Errorf("%w: %s for dt=%g rows=%d", ErrFilenameMismatch, path, dt, rows)
	}

	p, err := artifact.Create(path)
	if err != nil {
		return err
	}
	hdr, err := Header{Version: Version, Rows: uint64(rows), Dim: Dim, Dt: dt}.MarshalBinary()
	if err != nil {
		p.Abort()
		return err
	}

	w := bufio.NewWriter(p)
	if _, err := w.Write(hdr); err != nil {
		p.Abort()
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, data); err != nil {
		p.Abort()
		return err
	}
	if err := w.Flush(); err != nil {
		p.Abort()
		return err
	}
	return p.Commit()
}

func (f *File) Path() string      { return f.path }
func (f *File) Key() artifact.Key { return f.key }
func (f *File) Header() Header    { return f.header }
func (f *File) Steps() int        { return int(f.header.Rows) }
func (f *File) Dt() float64       { return f.header.Dt }

// Raw returns the (rows, 4) payload. It aliases the mapping.
func (f *File) Raw() []float64 { return f.data }

// Row returns energy, Hx, Hy, Hz of one row.
func (f *File) Row(i int) []float64 {
	return f.data[i*Dim : (i+1)*Dim]
}

// Energy returns a copy of the energy column.
func (f *File) Energy() []float64 {
	e := make([]float64, f.Steps())
	for i := range e {
		e[i] = f.data[i*Dim]
	}
	return e
}

// AngularMomentum returns a copy of the angular momentum vectors.
func (f *File) AngularMomentum() [][3]float64 {
	h := make([][3]float64, f.Steps())
	for i := range h {
		copy(h[i][:], f.data[i*Dim+1:(i+1)*Dim])
	}
	return h
}

// AngularMomentumNorm returns |H| per row.
func (f *File) AngularMomentumNorm() []float64 {
	out := make([]float64, f.Steps())
	for i := range out {
		r := f.data[i*Dim+1 : (i+1)*Dim]
		out[i] = math.Sqrt(r[0]*r[0] + r[1]*r[1] + r[2]*r[2])
	}
	return out
}

func (f *File) Close() error {
	f.data = nil
	return f.m.Close()
}
