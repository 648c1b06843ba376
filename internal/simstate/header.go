package simstate

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

const (
	Magic      = "SIMSTATE"
	Version    = 1
	HeaderSize = 64
	Ext        = ".simstate"
)

var (
	ErrBadMagic           = fmt.Errorf("%w: bad simstate magic", dynamo.ErrFormat)
	ErrUnsupportedVersion = fmt.Errorf("%w: unsupported simstate version", dynamo.ErrFormat)
	ErrFilenameMismatch   = fmt.Errorf("%w: simstate header disagrees with filename", dynamo.ErrFormat)
	ErrTruncated          = fmt.Errorf("%w: simstate size disagrees with header", dynamo.ErrFormat)
)

// Header describes a simstate file.
type Header struct {
	Version  uint32
	Rows     uint64
	Bodies   uint32
	StateDim uint32
	Dt       float64
}

// rawHeader is the packed on-disk layout.
type rawHeader struct {
	Magic    [8]byte
	Version  uint32
	Rows     uint64
	Bodies   uint32
	StateDim uint32
	Dt       float64
	Pad      [28]byte
}

// Irregular reports whether explicit timestamps follow the payload.
func (h Header) Irregular() bool { return h.Dt < 0 }

// Values returns the number of float64 values in the state payload.
func (h Header) Values() int {
	return int(h.Rows) * int(h.Bodies) * int(h.StateDim)
}

// FileSize returns the exact size of a file carrying this header.
func (h Header) FileSize() int64 {
	n := int64(h.Values())
	if h.Irregular() {
		n += int64(h.Rows)
	}
	return HeaderSize + 8*n
}

// WriteTo encodes the header.
func (h Header) WriteTo(w io.Writer) (int64, error) {
	raw := rawHeader{
		Version:  h.Version,
		Rows:     h.Rows,
		Bodies:   h.Bodies,
		StateDim: h.StateDim,
		Dt:       h.Dt,
	}
	copy(raw.Magic[:], Magic)
	if err := binary.Write(w, binary.LittleEndian, &raw); err != nil {
		return 0, err
	}
	return HeaderSize, nil
}

// MarshalBinary returns the 64 byte encoding.
func (h Header) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := h.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseHeader decodes and checks the magic, version and state dimension.
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
	if raw.StateDim != dynamo.StateDim {
		return Header{}, dynamo.Formatf("simstate state dimension %d, want %d", raw.StateDim, dynamo.StateDim)
	}

	return Header{
		Version:  raw.Version,
		Rows:     raw.Rows,
		Bodies:   raw.Bodies,
		StateDim: raw.StateDim,
		Dt:       raw.Dt,
	}, nil
}
