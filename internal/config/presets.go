package config

import "sort"

func smallPreset() *Config {
	cfg := DefaultConfig()
	cfg.Population = PopulationConfig{Ups: 120, Downs: 120, Electrons: 40, Carriers: 4}
	cfg.HadronCap = 128
	cfg.NucleusCap = 32
	cfg.BoxSize = 20.0
	cfg.Frames = 1000
	return cfg
}

func densePreset() *Config {
	cfg := DefaultConfig()
	cfg.Population = PopulationConfig{Ups: 900, Downs: 900, Electrons: 300, Carriers: 30}
	cfg.HadronCap = 768
	cfg.NucleusCap = 192
	cfg.BoxSize = 30.0
	cfg.Frames = 3000
	return cfg
}

var Presets = map[string]*Config{
	"small":   smallPreset(),
	"default": DefaultConfig(),
	"dense":   densePreset(),
}

// GetPreset returns a private copy of the named preset, or nil. Callers may
// mutate the result freely.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	out := *cfg
	return &out
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
