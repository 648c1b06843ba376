// Package bodies holds the ordered body list a propagation starts from.
package bodies

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Body is a point mass. Nil fields are unknown: a body without Mu is still
// propagated but exerts no force, and a body without R0 or V0 cannot be
// propagated at all.
type Body struct {
	Name   string      `yaml:"name"`
	Mu     *float64    `yaml:"mu,omitempty"`
	R0     *mgl64.Vec3 `yaml:"r_0,omitempty"`
	V0     *mgl64.Vec3 `yaml:"v_0,omitempty"`
	Radius *float64    `yaml:"radius,omitempty"`
}

// Metadata describes where a body list came from.
type Metadata struct {
	Epoch  string `yaml:"epoch,omitempty"`
	Source string `yaml:"source,omitempty"`
}

// List is an ordered set of bodies. Derived vectors are cached and rebuilt
// only after a mutation through one of the List methods.
type List struct {
	Metadata Metadata

	bodies []Body
	dirty  bool
	r0     []float64
	v0     []float64
	y0     []float64
	mu     []float64
}

// NewList returns a list holding copies of bs.
func NewList(bs ...Body) *List {
	l := &List{dirty: true}
	for _, b := range bs {
		l.bodies = append(l.bodies, b.clone())
	}
	return l
}

func (b Body) clone() Body {
	c := Body{Name: b.Name}
	if b.Mu != nil {
		mu := *b.Mu
		c.Mu = &mu
	}
	if b.R0 != nil {
		r := *b.R0
		c.R0 = &r
	}
	if b.V0 != nil {
		v := *b.V0
		c.V0 = &v
	}
	if b.Radius != nil {
		r := *b.Radius
		c.Radius = &r
	}
	return c
}

// Len returns the number of bodies.
func (l *List) Len() int { return len(l.bodies) }

// At returns a copy of body i.
func (l *List) At(i int) Body { return l.bodies[i].clone() }

// Names returns the body names in order.
func (l *List) Names() []string {
	names := make([]string, len(l.bodies))
	for i, b := range l.bodies {
		names[i] = b.Name
	}
	return names
}

// Index returns the position of the named body or -1.
func (l *List) Index(name string) int {
	for i, b := range l.bodies {
		if b.Name == name {
			return i
		}
	}
	return -1
}

// Append adds a body to the end of the list.
func (l *List) Append(b Body) {
	l.bodies = append(l.bodies, b.clone())
	l.dirty = true
}

// SetPosition replaces the initial position of body i.
func (l *List) SetPosition(i int, r mgl64.Vec3) {
	l.bodies[i].R0 = &r
	l.dirty = true
}

// SetVelocity replaces the initial velocity of body i.
func (l *List) SetVelocity(i int, v mgl64.Vec3) {
	l.bodies[i].V0 = &v
	l.dirty = true
}

// SetState replaces both initial vectors of body i.
func (l *List) SetState(i int, r, v mgl64.Vec3) {
	l.bodies[i].R0 = &r
	l.bodies[i].V0 = &v
	l.dirty = true
}

// SetMu replaces the gravitational parameter of body i.
func (l *List) SetMu(i int, mu float64) {
	l.bodies[i].Mu = &mu
	l.dirty = true
}

// Validate checks that the list can be propagated.
func (l *List) Validate() error {
	if len(l.bodies) == 0 {
		return dynamo.Configurationf("body list is empty")
	}
	total := 0.0
	defined := 0
	for i, b := range l.bodies {
		if b.R0 == nil || b.V0 == nil {
			return dynamo.Configurationf("body %d (%q) has no initial state", i, b.Name)
		}
		if b.Mu != nil {
			defined++
			total += *b.Mu
		}
	}
	if defined == 0 {
		return dynamo.Configurationf("no body defines mu")
	}
	if total <= 0 {
		return dynamo.Configurationf("total mu must be positive, got %g", total)
	}
	return nil
}

func (l *List) refresh() {
	if !l.dirty && l.mu != nil {
		return
	}
	n := len(l.bodies)
	l.r0 = make([]float64, 3*n)
	l.v0 = make([]float64, 3*n)
	l.mu = make([]float64, n)
	for i, b := range l.bodies {
		if b.R0 != nil {
			copy(l.r0[3*i:], b.R0[:])
		}
		if b.V0 != nil {
			copy(l.v0[3*i:], b.V0[:])
		}
		if b.Mu != nil {
			l.mu[i] = *b.Mu
		}
	}
	l.y0 = make([]float64, 0, 6*n)
	l.y0 = append(l.y0, l.r0...)
	l.y0 = append(l.y0, l.v0...)
	l.dirty = false
}

// R0 returns the initial positions, body-major (x, y, z) triples.
// The returned slice is shared; callers must not modify it.
func (l *List) R0() []float64 {
	l.refresh()
	return l.r0
}

// V0 returns the initial velocities in the same layout as R0.
func (l *List) V0() []float64 {
	l.refresh()
	return l.v0
}

// Y0 returns the initial state vector R0 followed by V0.
func (l *List) Y0() dynamo.State {
	l.refresh()
	return l.y0
}

// Mu returns the gravitational parameters. Unknown values are zero.
func (l *List) Mu() []float64 {
	l.refresh()
	return l.mu
}

type listFile struct {
	Metadata Metadata `yaml:"metadata"`
	Bodies   []Body   `yaml:"body_list"`
}

// Load reads a YAML body file.
func Load(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read body file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML body list.
func Parse(data []byte) (*List, error) {
	var f listFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse body list: %w", err)
	}
	l := NewList(f.Bodies...)
	l.Metadata = f.Metadata
	return l, nil
}

// Save writes the list as YAML.
func (l *List) Save(path string) error {
	f := listFile{Metadata: l.Metadata, Bodies: make([]Body, len(l.bodies))}
	for i, b := range l.bodies {
		f.Bodies[i] = b.clone()
	}
	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("failed to marshal body list: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
