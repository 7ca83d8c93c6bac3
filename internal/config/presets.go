package config

import (
	"sort"

	"github.com/san-kum/gravsim/internal/nbody"
)

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"disk": withInit(string(nbody.PolicyAngular), 20.0, InitConfig{
		NumBodies: 80, MinMass: 10, MaxMass: 100,
		MaxPos: 150, MaxMom: 60, AngMomMean: 400, AngMomStdDev: 40,
	}),
	"retrograde": withInit(string(nbody.PolicyAngular), 20.0, InitConfig{
		NumBodies: 50, MinMass: 10, MaxMass: 100,
		MaxPos: 100, MaxMom: 50, AngMomMean: -200, AngMomStdDev: 50,
	}),
	"cluster": withInit(string(nbody.PolicyPolar), 10.0, InitConfig{
		NumBodies: 120, MinMass: 5, MaxMass: 40,
		MaxPos: 60, MaxMom: 5,
	}),
	"scatter": withInit(string(nbody.PolicyBasic), 15.0, InitConfig{
		NumBodies: 50, MinMass: 10, MaxMass: 100,
		MaxPos: 100, MaxMom: 50,
	}),
	"binary": withInit(string(nbody.PolicyAngular), 40.0, InitConfig{
		NumBodies: 2, MinMass: 80, MaxMass: 100,
		MaxPos: 30, MaxMom: 20, AngMomMean: 300,
	}),
}

func withInit(policy string, duration float64, init InitConfig) *Config {
	cfg := DefaultConfig()
	cfg.Policy = policy
	cfg.Duration = duration
	cfg.InitState = init
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
