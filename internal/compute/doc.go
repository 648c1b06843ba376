// Package compute provides the gravitational force kernels.
//
// Every kernel maps a state vector to its time derivative:
//
//	out[0:3N]  = velocities
//	out[3N:6N] = sum over j != i of mu_j (r_j - r_i) / |r_j - r_i|^3
//
// Three variants exist:
//
//   - Reference: vectorised row-by-row evaluation, easiest to audit
//   - Optimized: symmetric pair loop, parallel above 64 bodies, fused RK4
//   - Native: C kernel compiled through cgo
//
// Pairs at exactly zero separation contribute nothing in every variant.
//
// # Native Kernel
//
// Build with the native tag to compile the C kernel:
//
//	go build -tags native ./...
//
// Without the tag [Available] reports false and the native kind falls back
// to the optimized kernel.
package compute
