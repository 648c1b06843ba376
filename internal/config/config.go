package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/orbitsim/internal/bodies"
	"github.com/san-kum/orbitsim/internal/dynamo"
)

const (
	DefaultDt         = dynamo.Hour
	DefaultDuration   = dynamo.Year
	DefaultDataDir    = "data"
	DefaultPrintStep  = dynamo.DefaultPrintStep
	DefaultStepTime   = dynamo.Day
	DefaultLengthTime = dynamo.Year
	DefaultSpeed      = 30.0
)

type Config struct {
	Name       string      `yaml:"name"`
	Preset     string      `yaml:"preset,omitempty"`
	BodiesFile string      `yaml:"bodies_file,omitempty"`
	Integrator string      `yaml:"integrator"`
	Kernel     string      `yaml:"kernel"`
	Dt         float64     `yaml:"dt"`
	Duration   float64     `yaml:"duration"`
	DataDir    string      `yaml:"data_dir"`
	Progress   bool        `yaml:"progress"`
	PrintStep  int         `yaml:"print_step"`
	Trail      TrailConfig `yaml:"trail"`
}

type TrailConfig struct {
	StepTime   float64 `yaml:"step_time"`
	LengthTime float64 `yaml:"length_time"`
	Focus      string  `yaml:"focus,omitempty"`
	Dim        int     `yaml:"dim"`
	// Speed is simulated days per wall-clock second during playback.
	Speed float64 `yaml:"speed"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "sun_earth_moon",
		Preset:     "sun_earth_moon",
		Integrator: "rk4",
		Kernel:     "optimized",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		DataDir:    DefaultDataDir,
		Progress:   true,
		PrintStep:  DefaultPrintStep,
		Trail: TrailConfig{
			StepTime:   DefaultStepTime,
			LengthTime: DefaultLengthTime,
			Dim:        2,
			Speed:      DefaultSpeed,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.BodiesFile != "" && !filepath.IsAbs(cfg.BodiesFile) {
		cfg.BodiesFile = filepath.Join(filepath.Dir(path), cfg.BodiesFile)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the values a run depends on.
func (c *Config) Validate() error {
	if c.Name == "" {
		return dynamo.Configurationf("run name is empty")
	}
	if c.Preset == "" && c.BodiesFile == "" {
		return dynamo.Configurationf("either preset or bodies_file is required")
	}
	if c.Preset != "" && GetPreset(c.Preset) == nil {
		return dynamo.Configurationf("unknown preset %q", c.Preset)
	}
	if !(c.Dt > 0) {
		return dynamo.Configurationf("dt must be positive, got %g", c.Dt)
	}
	if !(c.Duration >= 0) {
		return dynamo.Configurationf("duration must be non-negative, got %g", c.Duration)
	}
	if c.Trail.Dim != 0 && c.Trail.Dim != 2 && c.Trail.Dim != 3 {
		return dynamo.Configurationf("trail dim must be 2 or 3, got %d", c.Trail.Dim)
	}
	return nil
}

// Steps returns the number of integration steps of the run.
func (c *Config) Steps() int {
	return dynamo.StepCount(c.Dt, c.Duration)
}

// Bodies loads the body list from the bodies file, or from the preset when
// no file is set.
func (c *Config) Bodies() (*bodies.List, error) {
	if c.BodiesFile != "" {
		return bodies.Load(c.BodiesFile)
	}
	p := GetPreset(c.Preset)
	if p == nil {
		return nil, dynamo.Configurationf("unknown preset %q", c.Preset)
	}
	return p.Bodies(), nil
}
