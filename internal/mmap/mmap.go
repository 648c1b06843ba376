// Package mmap maps artifact files read-only and exposes their float64
// payloads without copying.
package mmap

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"unsafe"
)

// Mapping is a read-only view of a whole file.
type Mapping struct {
	data   []byte
	mapped bool
}

// Open maps path into memory.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if size == 0 {
		return &Mapping{}, nil
	}
	if size != int64(int(size)) {
		return nil, fmt.Errorf("mmap: %s is too large to map", path)
	}

	data, mapped, err := mapFile(f, int(size))
	if err != nil {
		return nil, fmt.Errorf("mmap: %s: %w", path, err)
	}
	return &Mapping{data: data, mapped: mapped}, nil
}

// Bytes returns the mapped bytes. They must not be modified.
func (m *Mapping) Bytes() []byte { return m.data }

// Len returns the size of the mapping in bytes.
func (m *Mapping) Len() int { return len(m.data) }

// Float64s returns count little-endian float64 values starting at byte
// offset. On little-endian hosts the result aliases the mapping.
func (m *Mapping) Float64s(offset, count int) []float64 {
	if count == 0 {
		return []float64{}
	}
	end := offset + 8*count
	if offset < 0 || end > len(m.data) {
		panic(fmt.Sprintf("mmap: float range [%d, %d) outside mapping of %d bytes", offset, end, len(m.data)))
	}

	if littleEndian && offset%8 == 0 {
		return unsafe.Slice((*float64)(unsafe.Pointer(&m.data[offset])), count)
	}

	out := make([]float64, count)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(m.data[offset+8*i:]))
	}
	return out
}

// Close releases the mapping. The slices returned earlier become invalid.
func (m *Mapping) Close() error {
	if m.data == nil {
		return nil
	}
	data := m.data
	m.data = nil
	if !m.mapped {
		return nil
	}
	return unmap(data)
}

var littleEndian = func() bool {
	probe := uint16(1)
	return *(*byte)(unsafe.Pointer(&probe)) == 1
}()
