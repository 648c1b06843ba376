// Package siminteg computes and caches the conserved quantities of a
// trajectory.
//
// A siminteg file holds, for every row of a simstate file, the total energy
// followed by the three components of the total angular momentum. Its 64 byte
// little-endian header is:
//
//	offset  size  field
//	     0     8  magic "SIMINTEG"
//	     8     4  version (uint32, 2)
//	    12     8  rows (uint64)
//	    20     4  columns (uint32, 4)
//	    24     8  dt (float64)
//	    32    32  zero padding
package siminteg

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

const (
	Magic      = "SIMINTEG"
	Version    = 2
	HeaderSize = 64
	Ext        = ".siminteg"

	// Dim is the number of values per row: energy, Hx, Hy, Hz.
	Dim = 4
)

var (
	ErrBadMagic           = fmt.Errorf("%w: bad siminteg magic", dynamo.ErrFormat)
	ErrUnsupportedVersion = fmt.Errorf("%w: unsupported siminteg version", dynamo.ErrFormat)
	ErrFilenameMismatch   = fmt.Errorf("%w: siminteg header disagrees with filename", dynamo.ErrFormat)
	ErrTruncated          = fmt.Errorf("%w: siminteg size disagrees with header", dynamo.ErrFormat)
)

type Header struct {
	Version uint32
	Rows    uint64
	Dim     uint32
	Dt      float64
}

type rawHeader struct {
	Magic   [8]byte
	Version uint32
	Rows    uint64
	Dim     uint32
	Dt      float64
	Pad     [32]byte
}

// FileSize returns the exact size of a file carrying this header.
func (h Header) FileSize() int64 {
	return HeaderSize + 8*int64(h.Rows)*int64(h.Dim)
}

func (h Header) MarshalBinary() ([]byte, error) {
	raw := rawHeader{Version: h.Version, Rows: h.Rows, Dim: h.Dim, Dt: h.Dt}
	copy(raw.Magic[:], Magic)

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes is shorter than the header", ErrTruncated, len(b))
	}

	var raw rawHeader
	if err := binary.Read(bytes.NewReader(b[:HeaderSize]), binary.LittleEndian, &raw); err != nil {
		return Header{}, err
	}
	if string(raw.Magic[:]) != Magic {
		return Header{}, fmt.Errorf("%w: %q", ErrBadMagic, raw.Magic[:])
	}
	if raw.Version != Version {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, raw.Version)
	}
	if raw.Dim != Dim {
		return Header{}, dynamo.Formatf("siminteg has %d columns, want %d", raw.Dim, Dim)
	}
	return Header{Version: raw.Version, Rows: raw.Rows, Dim: raw.Dim, Dt: raw.Dt}, nil
}
