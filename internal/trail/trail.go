package trail

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Source is a fixed-step trajectory in (rows, bodies, 6) layout, such as an
// open simstate file.
type Source interface {
	Steps() int
	Bodies() int
	Dt() float64
	State(step int) []float64
}

// Projection maps a position into len(dst) display coordinates.
type Projection func(r mgl64.Vec3, dst []float64)

// Options configures a Trail.
type Options struct {
	// Dim is 2 or 3. Zero means 3.
	Dim int
	// StepTime is the simulated time between samples in seconds.
	StepTime float64
	// LengthTime is the simulated time covered by the trail in seconds.
	LengthTime float64
	// Focus is the body the trail is drawn relative to, or -1.
	Focus int
	// Project replaces the default projection, which keeps the first Dim
	// coordinates.
	Project Projection
}

// Trail follows playback of a trajectory and keeps the last samples of every
// body in a Buffer. Samples are taken at frames anchor, anchor-Step, ... where
// anchor is the most recent due sample; the live position at the current
// frame is kept apart from the buffer.
type Trail struct {
	src     Source
	opts    Options
	sampler Sampler
	buf     *Buffer

	frame int
	last  int
	dirty bool

	live    []float64
	scratch []float64
}

// NewTrail binds a trail to src. It is built on the first Advance or
// Rebuild.
func NewTrail(src Source, opts Options) (*Trail, error) {
	if opts.Dim == 0 {
		opts.Dim = 3
	}
	if opts.Dim != 2 && opts.Dim != 3 {
		return nil, dynamo.Configurationf("trail dimension must be 2 or 3, got %d", opts.Dim)
	}
	if src.Steps() == 0 || src.Bodies() == 0 {
		return nil, dynamo.Configurationf("trail source is empty")
	}
	if opts.Focus < -1 || opts.Focus >= src.Bodies() {
		return nil, dynamo.Configurationf("trail focus %d out of range %d", opts.Focus, src.Bodies())
	}

	sampler, err := NewSampler(src.Dt(), opts.StepTime, opts.LengthTime)
	if err != nil {
		return nil, err
	}

	return &Trail{
		src:     src,
		opts:    opts,
		sampler: sampler,
		buf:     New(sampler.Length, opts.Dim, src.Bodies()),
		dirty:   true,
		live:    make([]float64, opts.Dim*src.Bodies()),
	}, nil
}

// Buffer returns the sample ring.
func (t *Trail) Buffer() *Buffer { return t.buf }

// Sampler returns the current sampling parameters.
func (t *Trail) Sampler() Sampler { return t.sampler }

// Frame returns the current playback row.
func (t *Trail) Frame() int { return t.frame }

// Live returns the projected positions at the current frame in (dim, bodies)
// layout. The slice is reused by later calls.
func (t *Trail) Live() []float64 { return t.live }

// Focus returns the focus body or -1.
func (t *Trail) Focus() int { return t.opts.Focus }

// SetFocus changes the body the trail is relative to. The trail is rebuilt
// on the next Advance.
func (t *Trail) SetFocus(body int) error {
	if body < -1 || body >= t.src.Bodies() {
		return dynamo.Configurationf("trail focus %d out of range %d", body, t.src.Bodies())
	}
	if body != t.opts.Focus {
		t.opts.Focus = body
		t.dirty = true
	}
	return nil
}

// SetLength changes the sampling durations. The trail is rebuilt on the
// next Advance.
func (t *Trail) SetLength(stepTime, lengthTime float64) error {
	sampler, err := NewSampler(t.src.Dt(), stepTime, lengthTime)
	if err != nil {
		return err
	}
	t.opts.StepTime, t.opts.LengthTime = stepTime, lengthTime
	t.sampler = sampler
	if sampler.Length != t.buf.Capacity() {
		t.buf = New(sampler.Length, t.opts.Dim, t.src.Bodies())
	}
	t.dirty = true
	return nil
}

// Rebuild refills the whole buffer ending at frame. Samples before the start
// of the trajectory repeat the oldest available one.
func (t *Trail) Rebuild(frame int) {
	if frame < 0 || frame >= t.src.Steps() {
		panic(fmt.Sprintf("trail: frame %d out of range %d", frame, t.src.Steps()))
	}
	t.frame = frame
	t.sampler.Reset()
	t.rebuildAt(frame)
	t.project(frame, t.live)
}

func (t *Trail) rebuildAt(anchor int) {
	step, length := t.sampler.Step, t.sampler.Length

	// Oldest sample frame at or after zero on the anchor's grid.
	oldest := anchor % step
	t.buf.Fill(func(i int, dst []float64) {
		f := anchor - (length-1-i)*step
		if f < oldest {
			f = oldest
		}
		t.project(f, dst)
	})
	t.last = anchor
	t.dirty = false
}

// Advance moves playback forward by steps rows. Only newly due samples are
// appended; the buffer is rebuilt when the trail was invalidated, when at
// least a whole trail length is due, or when playback wraps to the start.
// Wrapping always lands on frame 0; the steps that overshoot the last frame
// are dropped rather than carried into the next pass.
func (t *Trail) Advance(steps int) {
	if steps < 0 {
		panic(fmt.Sprintf("trail: cannot advance by %d steps", steps))
	}

	t.frame += steps
	if t.frame >= t.src.Steps() {
		t.frame = 0
		t.dirty = true
	}
	if t.dirty {
		t.Rebuild(t.frame)
		return
	}

	k := t.sampler.Advance(steps)
	switch {
	case k >= t.sampler.Length:
		t.rebuildAt(t.last + k*t.sampler.Step)
	case k > 0:
		n := t.buf.SlotLen()
		if cap(t.scratch) < k*n {
			t.scratch = make([]float64, k*n)
		}
		points := t.scratch[:k*n]
		for i := 0; i < k; i++ {
			t.project(t.last+(i+1)*t.sampler.Step, points[i*n:(i+1)*n])
		}
		t.buf.AppendPoints(points)
		t.last += k * t.sampler.Step
	}
	t.project(t.frame, t.live)
}

// project writes the (dim, bodies) sample of one frame into dst.
func (t *Trail) project(frame int, dst []float64) {
	row := t.src.State(frame)
	bodies := t.src.Bodies()

	var origin mgl64.Vec3
	if f := t.opts.Focus; f >= 0 {
		origin = mgl64.Vec3{row[f*dynamo.StateDim], row[f*dynamo.StateDim+1], row[f*dynamo.StateDim+2]}
	}

	var coords [3]float64
	for b := 0; b < bodies; b++ {
		r := mgl64.Vec3{row[b*dynamo.StateDim], row[b*dynamo.StateDim+1], row[b*dynamo.StateDim+2]}.Sub(origin)
		out := coords[:t.opts.Dim]
		if t.opts.Project != nil {
			t.opts.Project(r, out)
		} else {
			copy(out, r[:t.opts.Dim])
		}
		for c, v := range out {
			dst[c*bodies+b] = v
		}
	}
}
