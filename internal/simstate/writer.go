package simstate

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/orbitsim/internal/artifact"
	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Writer streams rows into a new simstate file. The file only appears under
// its final name once Close succeeds.
type Writer struct {
	pending *artifact.Pending
	w       *bufio.Writer
	header  Header
	rows    int
	times   bool
	err     error
}

// Create starts a simstate file of rows rows for bodies bodies. The filename
// must encode the same dt and rows-1 steps.
func Create(path string, bodies, rows int, dt float64) (*Writer, error) {
	key, err := artifact.ParseFilename(path, Ext)
	if err != nil {
		return nil, err
	}
	if bodies <= 0 || rows <= 0 {
		return nil, dynamo.Configurationf("simstate needs at least one body and one row, got %d bodies, %d rows", bodies, rows)
	}
	if dt == 0 {
		return nil, dynamo.Configurationf("simstate dt must be non-zero")
	}
	if !key.Matches(dt, rows) {
		return nil, fmt.Errorf("%w: %s for dt=%g rows=%d", ErrFilenameMismatch, path, dt, rows)
	}

	p, err := artifact.Create(path)
	if err != nil {
		return nil, err
	}

	w := &Writer{
		pending: p,
		w:       bufio.NewWriterSize(p, 1<<20),
		header: Header{
			Version:  Version,
			Rows:     uint64(rows),
			Bodies:   uint32(bodies),
			StateDim: dynamo.StateDim,
			Dt:       dt,
		},
	}
	// Placeholder; the real header is written last.
	if _, err := w.w.Write(make([]byte, HeaderSize)); err != nil {
		p.Abort()
		return nil, err
	}
	return w, nil
}

// WriteStep appends one (bodies, 6) row.
func (w *Writer) WriteStep(row []float64) error {
	if w.err != nil {
		return w.err
	}
	want := int(w.header.Bodies) * dynamo.StateDim
	if len(row) != want {
		return w.fail(fmt.Errorf("%w: row has %d values, want %d", dynamo.ErrDimensionMismatch, len(row), want))
	}
	if w.rows >= int(w.header.Rows) {
		return w.fail(fmt.Errorf("simstate: more than %d rows written", w.header.Rows))
	}
	if err := binary.Write(w.w, binary.LittleEndian, row); err != nil {
		return w.fail(err)
	}
	w.rows++
	return nil
}

// WriteTimes appends the timestamps of an irregular trajectory. It must be
// called after the last row.
func (w *Writer) WriteTimes(t []float64) error {
	if w.err != nil {
		return w.err
	}
	if !w.header.Irregular() {
		return w.fail(dynamo.Configurationf("timestamps need a negative dt"))
	}
	if w.rows != int(w.header.Rows) || w.times {
		return w.fail(errors.New("simstate: timestamps must follow the last row exactly once"))
	}
	if len(t) != int(w.header.Rows) {
		return w.fail(fmt.Errorf("%w: %d timestamps for %d rows", dynamo.ErrDimensionMismatch, len(t), w.header.Rows))
	}
	if err := binary.Write(w.w, binary.LittleEndian, t); err != nil {
		return w.fail(err)
	}
	w.times = true
	return nil
}

// Close writes the header and commits the file. On any error the partial
// file is discarded.
func (w *Writer) Close() error {
	if w.err != nil {
		return w.err
	}
	if w.rows != int(w.header.Rows) {
		return w.fail(fmt.Errorf("simstate: %d of %d rows written", w.rows, w.header.Rows))
	}
	if w.header.Irregular() && !w.times {
		return w.fail(errors.New("simstate: irregular trajectory without timestamps"))
	}
	if err := w.w.Flush(); err != nil {
		return w.fail(err)
	}

	hdr, err := w.header.MarshalBinary()
	if err != nil {
		return w.fail(err)
	}
	if _, err := w.pending.WriteAt(hdr, 0); err != nil {
		return w.fail(err)
	}

	w.err = os.ErrClosed
	return w.pending.Commit()
}

// Abort discards the file.
func (w *Writer) Abort() error {
	if w.err == nil {
		w.err = os.ErrClosed
	}
	return w.pending.Abort()
}

func (w *Writer) fail(err error) error {
	w.err = err
	w.pending.Abort()
	return err
}

// Write stores a whole (rows, bodies, 6) array. times is only used for a
// negative dt.
func Write(path string, data []float64, rows, bodies int, dt float64, times []float64) error {
	if len(data) != rows*bodies*dynamo.StateDim {
		return fmt.Errorf("%w: %d values for %d rows of %d bodies", dynamo.ErrDimensionMismatch, len(data), rows, bodies)
	}

	w, err := Create(path, bodies, rows, dt)
	if err != nil {
		return err
	}
	n := bodies * dynamo.StateDim
	for i := 0; i < rows; i++ {
		if err := w.WriteStep(data[i*n : (i+1)*n]); err != nil {
			return err
		}
	}
	if dt < 0 {
		if err := w.WriteTimes(times); err != nil {
			return err
		}
	}
	return w.Close()
}

// Interleave converts a state vector (positions block, velocities block)
// into the (bodies, 6) row layout, reusing dst when it is large enough.
func Interleave(dst, y []float64, n int) []float64 {
	if cap(dst) < len(y) {
		dst = make([]float64, len(y))
	}
	dst = dst[:len(y)]
	for i := 0; i < n; i++ {
		copy(dst[6*i:6*i+3], y[3*i:3*i+3])
		copy(dst[6*i+3:6*i+6], y[3*n+3*i:3*n+3*i+3])
	}
	return dst
}
