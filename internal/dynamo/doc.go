// Package dynamo provides the shared primitives of the propagation engine.
//
// The package defines the types every other package agrees on:
//
//   - [State]: flat state vector, positions then velocities, body-major
//   - [Trajectory]: fixed-step integration output, one state per row
//   - [Progress]: optional percentage/ETA reporting for long loops
//   - domain errors ([ErrConfiguration], [ErrFormat], [ErrCacheInconsistency])
//
// # State layout
//
// For N bodies a state vector has 6N components. The first 3N hold the
// positions as consecutive (x, y, z) triples, body 0 first; the last 3N hold
// the velocities in the same order. Force kernels, integrators and the
// simstate reader all rely on this layout.
//
// # Thread Safety
//
// [ParallelFor] is the only concurrent helper. Callers must make sure the
// ranges handed to each worker write to disjoint memory.
package dynamo
