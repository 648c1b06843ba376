package compute

import (
	"fmt"
	"strings"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Kernel evaluates the derivative of an N-body state vector. Kernels keep
// scratch space between calls and are not safe for concurrent use.
type Kernel interface {
	Name() string
	Evaluate(state, out []float64, n int, mu []float64)
}

// FusedRK4 is implemented by kernels that run a whole fixed-step RK4 loop
// internally. out receives steps+1 rows of 6n values, row 0 being y0.
type FusedRK4 interface {
	RK4(y0 []float64, dt float64, steps, n int, mu []float64, out []float64)
}

// Kind names a kernel variant.
type Kind int

const (
	Reference Kind = iota
	Optimized
	Native
)

var kindNames = map[Kind]string{
	Reference: "reference",
	Optimized: "optimized",
	Native:    "native",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Kinds lists every variant in declaration order.
func Kinds() []Kind {
	return []Kind{Reference, Optimized, Native}
}

// New constructs a kernel of the given kind.
func New(kind Kind) (Kernel, error) {
	switch kind {
	case Reference:
		return NewReference(), nil
	case Optimized:
		return NewOptimized(), nil
	case Native:
		return NewNative(), nil
	}
	return nil, dynamo.Configurationf("unknown kernel kind %d", int(kind))
}

// Parse constructs a kernel from its name.
func Parse(name string) (Kernel, error) {
	for kind, s := range kindNames {
		if strings.EqualFold(name, s) {
			return New(kind)
		}
	}
	return nil, dynamo.Configurationf("unknown kernel %q (have reference, optimized, native)", name)
}

// Available reports whether the native kernel was compiled in.
func Available() bool { return nativeAvailable }

func setVelocities(state, out []float64, n int) {
	copy(out[:3*n], state[3*n:6*n])
}
