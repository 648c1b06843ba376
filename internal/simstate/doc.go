// Package simstate reads and writes trajectory files.
//
// A simstate file is a 64 byte little-endian header followed by the state of
// every body at every row, as float64 values in (rows, bodies, 6) row-major
// order with the last axis holding rx, ry, rz, vx, vy, vz:
//
//	offset  size  field
//	     0     8  magic "SIMSTATE"
//	     8     4  version (uint32, 1)
//	    12     8  rows (uint64, initial state included)
//	    20     4  bodies (uint32)
//	    24     4  state dimension (uint32, 6)
//	    28     8  dt (float64)
//	    36    28  zero padding
//
// A negative dt marks an irregular trajectory: rows float64 timestamps
// follow the payload.
//
// Files are named name__dt__steps.simstate with steps = rows - 1. Readers
// reject files whose name and header disagree.
//
// # Views
//
// [File] maps the file read-only and hands out [View] values: strided
// windows over the mapping that never copy. [File.R] and [File.V] have shape
// (steps, bodies, 3); [File.RVis] and [File.VVis] are the same windows with
// the last two axes swapped, (steps, 3, bodies).
package simstate
