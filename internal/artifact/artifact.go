// Package artifact names and commits the binary files the engine produces.
//
// Every artifact is identified by a [Key] encoded in its filename as
// name__dt__steps.ext, where steps counts integration steps (rows minus one).
// Files are written through a [Pending] handle: the content goes to a
// temporary sibling and only appears under its final name once complete.
package artifact

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

const separator = "__"

// ErrFilename indicates a path that does not follow the name__dt__steps
// convention.
var ErrFilename = fmt.Errorf("%w: malformed artifact filename", dynamo.ErrFormat)

// Key identifies a run.
type Key struct {
	Name  string
	Dt    float64
	Steps int
}

// Validate checks that the key can be encoded in a filename.
func (k Key) Validate() error {
	if k.Name == "" {
		return dynamo.Configurationf("artifact name is empty")
	}
	if strings.Contains(k.Name, separator) || strings.ContainsRune(k.Name, os.PathSeparator) {
		return dynamo.Configurationf("artifact name %q may not contain %q or path separators", k.Name, separator)
	}
	if strings.HasPrefix(k.Name, "_") || strings.HasSuffix(k.Name, "_") {
		return dynamo.Configurationf("artifact name %q may not start or end with %q", k.Name, "_")
	}
	if k.Dt == 0 || math.IsNaN(k.Dt) || math.IsInf(k.Dt, 0) {
		return dynamo.Configurationf("artifact dt must be finite and non-zero, got %g", k.Dt)
	}
	if k.Steps < 0 {
		return dynamo.Configurationf("artifact steps must be non-negative, got %d", k.Steps)
	}
	return nil
}

// Filename returns name__dt__steps followed by ext (including the dot).
func (k Key) Filename(ext string) string {
	return k.Name + separator + FormatDt(k.Dt) + separator + strconv.Itoa(k.Steps) + ext
}

// Path joins dir and the filename.
func (k Key) Path(dir, ext string) string {
	return filepath.Join(dir, k.Filename(ext))
}

// Matches reports whether the key describes a run of the given dt and rows.
func (k Key) Matches(dt float64, rows int) bool {
	return k.Dt == dt && k.Steps == rows-1
}

func (k Key) String() string {
	return fmt.Sprintf("%s (dt=%s, steps=%d)", k.Name, FormatDt(k.Dt), k.Steps)
}

// FormatDt renders dt in its shortest round-tripping decimal form.
func FormatDt(dt float64) string {
	return strconv.FormatFloat(dt, 'f', -1, 64)
}

// ParseFilename decodes the key from path, which must end in ext.
func ParseFilename(path, ext string) (Key, error) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ext) {
		return Key{}, fmt.Errorf("%w: %q does not end in %s", ErrFilename, base, ext)
	}

	parts := strings.Split(strings.TrimSuffix(base, ext), separator)
	if len(parts) != 3 || parts[0] == "" {
		return Key{}, fmt.Errorf("%w: %q", ErrFilename, base)
	}

	dt, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Key{}, fmt.Errorf("%w: bad dt in %q: %v", ErrFilename, base, err)
	}
	steps, err := strconv.Atoi(parts[2])
	if err != nil {
		return Key{}, fmt.Errorf("%w: bad step count in %q: %v", ErrFilename, base, err)
	}

	return Key{Name: parts[0], Dt: dt, Steps: steps}, nil
}

// Glob lists the artifacts with extension ext in dir.
func Glob(dir, ext string) ([]Key, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
	if err != nil {
		return nil, err
	}

	var keys []Key
	for _, m := range matches {
		k, err := ParseFilename(m, ext)
		if err != nil {
			continue
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// Pending is a file being written. Nothing exists at the destination until
// Commit succeeds.
type Pending struct {
	*os.File

	dst  string
	done bool
}

// Create starts a new artifact at dst. It fails with dynamo.ErrExists when
// dst is already present.
func Create(dst string) (*Pending, error) {
	if _, err := os.Stat(dst); err == nil {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrExists, dst)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	dir, base := filepath.Split(dst)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	return &Pending{File: f, dst: dst}, nil
}

// Destination returns the final path.
func (p *Pending) Destination() string { return p.dst }

// Commit syncs the file and links it under its final name.
func (p *Pending) Commit() error {
	if p.done {
		return errors.New("artifact: already committed or aborted")
	}
	p.done = true
	tmp := p.Name()
	defer os.Remove(tmp)

	if err := p.Sync(); err != nil {
		p.Close()
		return fmt.Errorf("failed to sync %s: %w", tmp, err)
	}
	if err := p.Close(); err != nil {
		return err
	}

	if err := os.Link(tmp, p.dst); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", dynamo.ErrExists, p.dst)
		}
		return fmt.Errorf("failed to commit %s: %w", p.dst, err)
	}
	return nil
}

// Abort discards the file. It is a no-op after Commit.
func (p *Pending) Abort() error {
	if p.done {
		return nil
	}
	p.done = true
	p.Close()
	return os.Remove(p.Name())
}
