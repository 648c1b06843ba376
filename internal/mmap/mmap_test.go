package mmap

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat64s(t *testing.T) {
	buf := make([]byte, 16+3*8)
	copy(buf, "header..padding.")
	for i, v := range []float64{1.5, -2, math.Pi} {
		binary.LittleEndian.PutUint64(buf[16+8*i:], math.Float64bits(v))
	}
	path := filepath.Join(t.TempDir(), "floats.bin")
	require.NoError(t, os.WriteFile(path, buf, 0644))

	m, err := Open(path)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, len(buf), m.Len())
	assert.Equal(t, "header..", string(m.Bytes()[:8]))
	assert.Equal(t, []float64{1.5, -2, math.Pi}, m.Float64s(16, 3))
	assert.Empty(t, m.Float64s(40, 0))
	assert.Panics(t, func() { m.Float64s(16, 4) })
}

func TestEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	m, err := Open(path)
	require.NoError(t, err)
	assert.Zero(t, m.Len())
	assert.NoError(t, m.Close())
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.bin"))
	assert.True(t, os.IsNotExist(err))
}
