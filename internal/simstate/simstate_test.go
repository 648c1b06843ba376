package simstate

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/orbitsim/internal/artifact"
	"github.com/san-kum/orbitsim/internal/dynamo"
)

// sample returns a (rows, bodies, 6) array whose values encode their index.
func sample(rows, bodies int) []float64 {
	data := make([]float64, rows*bodies*6)
	for s := 0; s < rows; s++ {
		for b := 0; b < bodies; b++ {
			for c := 0; c < 6; c++ {
				data[(s*bodies+b)*6+c] = float64(s*100 + b*10 + c)
			}
		}
	}
	return data
}

func writeSample(t *testing.T, name string, rows, bodies int, dt float64) string {
	t.Helper()
	path := artifact.Key{Name: name, Dt: dt, Steps: rows - 1}.Path(t.TempDir(), Ext)
	require.NoError(t, Write(path, sample(rows, bodies), rows, bodies, dt, nil))
	return path
}

func TestHeaderLayout(t *testing.T) {
	h := Header{Version: Version, Rows: 3, Bodies: 2, StateDim: 6, Dt: 0.5}
	b, err := h.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, HeaderSize)

	assert.Equal(t, Magic, string(b[0:8]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(b[8:]))
	assert.Equal(t, uint64(3), binary.LittleEndian.Uint64(b[12:]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(b[20:]))
	assert.Equal(t, uint32(6), binary.LittleEndian.Uint32(b[24:]))
	assert.Equal(t, 0.5, math.Float64frombits(binary.LittleEndian.Uint64(b[28:])))
	assert.Equal(t, make([]byte, 28), b[36:])

	back, err := ParseHeader(b)
	require.NoError(t, err)
	assert.Equal(t, h, back)
}

func TestRoundTripIndexing(t *testing.T) {
	path := writeSample(t, "grid", 5, 3, 2)
	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, 5, f.Steps())
	assert.Equal(t, 3, f.Bodies())
	assert.Equal(t, 2.0, f.Dt())
	assert.Equal(t, []float64{0, 2, 4, 6, 8}, f.Times())

	tests := []struct {
		name   string
		view   View
		shape  [3]int
		first  float64
		second float64
	}{
		{"scalar R", f.R(At(2), At(1)), [3]int{1, 1, 3}, 210, 211},
		{"scalar V", f.V(At(-1), At(-1)), [3]int{1, 1, 3}, 423, 424},
		{"range", f.R(Range(1, 3), All()), [3]int{2, 3, 3}, 100, 101},
		{"strided", f.R(Strided(0, 5, 2), Range(1, 3)), [3]int{3, 2, 3}, 10, 11},
		{"negative range", f.V(Range(-2, 5), From(2)), [3]int{2, 1, 3}, 323, 324},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.shape, tt.view.Shape())
			assert.Equal(t, tt.first, tt.view.At(0, 0, 0))
			assert.Equal(t, tt.second, tt.view.At(0, 0, 1))
		})
	}

	strided := f.R(Strided(0, 5, 2), Range(1, 3))
	assert.Equal(t, 422.0, strided.At(2, 1, 2))

	full := f.R(All(), All()).CopyTo(nil)
	for s := 0; s < 5; s++ {
		for b := 0; b < 3; b++ {
			for c := 0; c < 3; c++ {
				assert.Equal(t, float64(s*100+b*10+c), full[(s*3+b)*3+c])
			}
		}
	}
}

func TestStateRowsAliasPayload(t *testing.T) {
	path := writeSample(t, "rows", 3, 2, 1)
	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, sample(3, 2)[12:24], f.State(1))
	assert.Equal(t, f.State(2), f.State(-1))
	assert.Len(t, f.Raw(), 36)

	contiguous, ok := f.R(At(1), All()).Row(0).contiguous()
	assert.False(t, ok)
	assert.Nil(t, contiguous)

	point := f.R(At(2), At(1))
	flat, ok := point.contiguous()
	require.True(t, ok)
	assert.Equal(t, []float64{210, 211, 212}, flat)
	assert.Equal(t, flat, point.CopyTo(nil))
}

func TestVisualizationViewIsTranspose(t *testing.T) {
	path := writeSample(t, "vis", 3, 2, 1)
	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	r := f.R(Range(0, 2), All())
	vis := f.RVis(Range(0, 2), All())
	require.Equal(t, [3]int{2, 3, 2}, vis.Shape())

	for s := 0; s < 2; s++ {
		for c := 0; c < 3; c++ {
			for b := 0; b < 2; b++ {
				assert.Equal(t, r.At(s, b, c), vis.At(s, c, b))
			}
		}
	}

	vv := f.VVis(Range(0, 2), All())
	assert.Equal(t, 13.0, vv.At(0, 0, 1))
	assert.Equal(t, r.Strides()[1], vis.Strides()[2])
}

func TestIrregularTimes(t *testing.T) {
	path := artifact.Key{Name: "irr", Dt: -1, Steps: 2}.Path(t.TempDir(), Ext)
	times := []float64{0, 0.5, 3}
	require.NoError(t, Write(path, sample(3, 1), 3, 1, -1, times))

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, times, f.Times())
}

func TestOpenRejectsFilenameMismatch(t *testing.T) {
	path := writeSample(t, "run", 3, 1, 1)
	dir := filepath.Dir(path)

	for _, name := range []string{"run__2__2.simstate", "run__1__3.simstate"} {
		wrong := filepath.Join(dir, name)
		require.NoError(t, os.Link(path, wrong))

		_, err := Open(wrong)
		assert.True(t, errors.Is(err, ErrFilenameMismatch), name)
		assert.True(t, errors.Is(err, dynamo.ErrFormat), name)
	}
}

func TestOpenRejectsCorruptFiles(t *testing.T) {
	path := writeSample(t, "run", 3, 1, 1)
	good, err := os.ReadFile(path)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		want   error
	}{
		{"magic", func(b []byte) []byte { b[0] = 'X'; return b }, ErrBadMagic},
		{"version", func(b []byte) []byte { binary.LittleEndian.PutUint32(b[8:], 9); return b }, ErrUnsupportedVersion},
		{"truncated", func(b []byte) []byte { return b[:len(b)-8] }, ErrTruncated},
		{"trailing", func(b []byte) []byte { return append(b, 0) }, ErrTruncated},
		{"short", func(b []byte) []byte { return b[:10] }, ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := filepath.Join(t.TempDir(), filepath.Base(path))
			data := tt.mutate(append([]byte(nil), good...))
			require.NoError(t, os.WriteFile(bad, data, 0644))

			_, err := Open(bad)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.True(t, errors.Is(err, dynamo.ErrFormat))
		})
	}
}

func TestCreateOrFail(t *testing.T) {
	path := writeSample(t, "dup", 2, 1, 1)
	err := Write(path, sample(2, 1), 2, 1, 1, nil)
	assert.True(t, errors.Is(err, dynamo.ErrExists))
}

func TestWriterAbortsOnShortWrite(t *testing.T) {
	dir := t.TempDir()
	path := artifact.Key{Name: "short", Dt: 1, Steps: 2}.Path(dir, Ext)

	w, err := Create(path, 1, 3, 1)
	require.NoError(t, err)
	require.NoError(t, w.WriteStep(make([]float64, 6)))
	assert.Error(t, w.Close())

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestWriterRejects(t *testing.T) {
	dir := t.TempDir()
	path := artifact.Key{Name: "w", Dt: 1, Steps: 1}.Path(dir, Ext)

	_, err := Create(path, 1, 3, 1)
	assert.True(t, errors.Is(err, ErrFilenameMismatch))

	w, err := Create(path, 1, 2, 1)
	require.NoError(t, err)
	assert.True(t, errors.Is(w.WriteStep(make([]float64, 5)), dynamo.ErrDimensionMismatch))
	assert.Error(t, w.Close())

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestInterleave(t *testing.T) {
	y := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	row := Interleave(nil, y, 2)
	assert.Equal(t, []float64{1, 2, 3, 7, 8, 9, 4, 5, 6, 10, 11, 12}, row)
	assert.Equal(t, y, deinterleave(row, 2))
}

func TestIndexPanics(t *testing.T) {
	path := writeSample(t, "p", 2, 1, 1)
	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Panics(t, func() { f.R(At(2), All()) })
	assert.Panics(t, func() { f.R(All(), At(-2)) })
	assert.Panics(t, func() { Strided(0, 1, 0) })
	assert.Equal(t, [3]int{0, 1, 3}, f.R(Range(1, 1), All()).Shape())
}

func deinterleave(row []float64, n int) []float64 {
	y := make([]float64, len(row))
	for i := 0; i < n; i++ {
		copy(y[3*i:3*i+3], row[6*i:6*i+3])
		copy(y[3*n+3*i:3*n+3*i+3], row[6*i+3:6*i+6])
	}
	return y
}
