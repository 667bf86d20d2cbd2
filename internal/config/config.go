package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/quarksim/internal/forces"
	"github.com/san-kum/quarksim/internal/world"
)

const (
	DefaultFrames = 2000
	DefaultSeed   = 1
)

type PopulationConfig struct {
	Ups       int `yaml:"ups"`
	Downs     int `yaml:"downs"`
	Electrons int `yaml:"electrons"`
	Carriers  int `yaml:"carriers"`
}

type Config struct {
	Population  PopulationConfig `yaml:"population"`
	HadronCap   int              `yaml:"hadron_cap"`
	NucleusCap  int              `yaml:"nucleus_cap"`
	BoxSize     float64          `yaml:"box_size"`
	QuarkRadius float64          `yaml:"quark_radius"`

	Frames        int   `yaml:"frames"`
	Seed          int64 `yaml:"seed"`
	RebuildNuclei bool  `yaml:"rebuild_nuclei"`

	Forces forces.Params `yaml:"forces"`
}

func DefaultConfig() *Config {
	opts := world.DefaultOptions()
	return &Config{
		Population: PopulationConfig{
			Ups:       opts.Ups,
			Downs:     opts.Downs,
			Electrons: opts.Electrons,
			Carriers:  opts.Carriers,
		},
		HadronCap:   opts.HadronCap,
		NucleusCap:  opts.NucleusCap,
		BoxSize:     opts.BoxSize,
		QuarkRadius: opts.QuarkRadius,
		Frames:      DefaultFrames,
		Seed:        DefaultSeed,
		Forces:      forces.Defaults(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
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

func (c *Config) Validate() error {
	if c.Frames <= 0 {
		return fmt.Errorf("config: frames must be positive, got %d", c.Frames)
	}
	if c.Population.Ups < 0 || c.Population.Downs < 0 ||
		c.Population.Electrons < 0 || c.Population.Carriers < 0 {
		return fmt.Errorf("config: population counts must be non-negative")
	}
	if c.HadronCap <= 0 || c.NucleusCap <= 0 {
		return fmt.Errorf("config: arena capacities must be positive")
	}
	return c.Forces.Validate()
}

// Scale resizes the population to roughly total particles while preserving
// the flavor mix, and grows the arena capacities in proportion.
func (c *Config) Scale(total int) {
	cur := c.Population.Ups + c.Population.Downs + c.Population.Electrons + c.Population.Carriers
	if total <= 0 || cur == 0 {
		return
	}
	f := float64(total) / float64(cur)
	c.Population.Ups = int(float64(c.Population.Ups) * f)
	c.Population.Downs = int(float64(c.Population.Downs) * f)
	c.Population.Electrons = int(float64(c.Population.Electrons) * f)
	c.Population.Carriers = int(float64(c.Population.Carriers) * f)
	c.HadronCap = int(float64(c.HadronCap) * f)
	c.NucleusCap = int(float64(c.NucleusCap) * f)
	if c.HadronCap < 1 {
		c.HadronCap = 1
	}
	if c.NucleusCap < 1 {
		c.NucleusCap = 1
	}
}

// WorldOptions maps the config onto world construction parameters.
func (c *Config) WorldOptions() world.Options {
	return world.Options{
		Ups:         c.Population.Ups,
		Downs:       c.Population.Downs,
		Electrons:   c.Population.Electrons,
		Carriers:    c.Population.Carriers,
		HadronCap:   c.HadronCap,
		NucleusCap:  c.NucleusCap,
		BoxSize:     c.BoxSize,
		QuarkRadius: c.QuarkRadius,
		Seed:        c.Seed,
	}
}
