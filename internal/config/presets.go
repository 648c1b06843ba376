package config

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/orbitsim/internal/bodies"
	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Preset is a ready-made system with sensible run parameters.
type Preset struct {
	Description string
	Dt          float64
	Duration    float64
	StepTime    float64
	LengthTime  float64
	build       func() []bodies.Body
}

// Bodies returns a fresh copy of the preset body list.
func (p *Preset) Bodies() *bodies.List {
	l := bodies.NewList(p.build()...)
	l.Metadata = bodies.Metadata{Source: "preset"}
	return l
}

// Apply copies the preset run parameters into cfg.
func (p *Preset) Apply(name string, cfg *Config) {
	cfg.Preset = name
	cfg.BodiesFile = ""
	cfg.Dt = p.Dt
	cfg.Duration = p.Duration
	cfg.Trail.StepTime = p.StepTime
	cfg.Trail.LengthTime = p.LengthTime
}

const (
	muSun   = 1.32712440018e20
	muEarth = 3.986004418e14
	muMoon  = 4.9048695e12
	moonA   = 3.844e8
)

var Presets = map[string]*Preset{
	"kepler": {
		Description: "planet on an eccentric orbit (e ~ 0.44) around a solar mass star",
		Dt:          dynamo.Hour,
		Duration:    3 * dynamo.Year,
		StepTime:    dynamo.Day,
		LengthTime:  3 * dynamo.Year,
		build: func() []bodies.Body {
			v := 1.2 * math.Sqrt(muSun/dynamo.AU)
			return []bodies.Body{
				body("Star", muSun, mgl64.Vec3{}, mgl64.Vec3{}, 6.957e8),
				body("Planet", muEarth, mgl64.Vec3{dynamo.AU, 0, 0}, mgl64.Vec3{0, v, 0}, 6.371e6),
			}
		},
	},
	"figure_eight": {
		Description: "three equal masses on the Chenciner-Montgomery figure eight (G = m = 1 units)",
		Dt:          1e-3,
		Duration:    6.32591398,
		StepTime:    1e-2,
		LengthTime:  6.32591398,
		build: func() []bodies.Body {
			r := mgl64.Vec3{0.97000436, -0.24308753, 0}
			v3 := mgl64.Vec3{-0.93240737, -0.86473146, 0}
			v := v3.Mul(-0.5)
			return []bodies.Body{
				body("A", 1, r, v, 0),
				body("B", 1, r.Mul(-1), v, 0),
				body("C", 1, mgl64.Vec3{}, v3, 0),
			}
		},
	},
	"sun_earth_moon": {
		Description: "Sun, Earth and Moon on circular orbits",
		Dt:          dynamo.Hour,
		Duration:    dynamo.Year,
		StepTime:    dynamo.Day / 4,
		LengthTime:  dynamo.Year,
		build: func() []bodies.Body {
			ve := math.Sqrt((muSun + muEarth) / dynamo.AU)
			vm := math.Sqrt((muEarth + muMoon) / moonA)
			return []bodies.Body{
				body("Sun", muSun, mgl64.Vec3{}, mgl64.Vec3{}, 6.957e8),
				body("Earth", muEarth, mgl64.Vec3{dynamo.AU, 0, 0}, mgl64.Vec3{0, ve, 0}, 6.371e6),
				body("Moon", muMoon, mgl64.Vec3{dynamo.AU + moonA, 0, 0}, mgl64.Vec3{0, ve + vm, 0}, 1.7374e6),
			}
		},
	},
}

func body(name string, mu float64, r, v mgl64.Vec3, radius float64) bodies.Body {
	b := bodies.Body{Name: name, Mu: &mu, R0: &r, V0: &v}
	if radius > 0 {
		b.Radius = &radius
	}
	return b
}

func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
