package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning carries the operational limits the engine itself does not
// enforce: the core generates whatever it is asked to, the surrounding
// service checks estimated sizes against these ceilings first.
type Tuning struct {
	MaxControlPoints int `yaml:"max_control_points"`
	MaxSamples       int `yaml:"max_samples"`
	MaxBlocksPerJob  int `yaml:"max_blocks_per_job"`

	PlaceBlocksPerTick int `yaml:"place_blocks_per_tick"`
	PlaceTickMs        int `yaml:"place_tick_ms"`

	World WorldLimits `yaml:"world"`
}

type WorldLimits struct {
	MinY       int   `yaml:"min_y"`
	MaxY       int   `yaml:"max_y"`
	Seed       int64 `yaml:"seed"`
	BaseHeight int   `yaml:"base_height"`
	RidgeAmp   int   `yaml:"ridge_amplitude"`
	SeaLevel   int   `yaml:"sea_level"`
}

func Default() Tuning {
	return Tuning{
		MaxControlPoints:   64,
		MaxSamples:         20000,
		MaxBlocksPerJob:    200000,
		PlaceBlocksPerTick: 512,
		PlaceTickMs:        50,
		World: WorldLimits{
			MinY:       0,
			MaxY:       255,
			Seed:       1337,
			BaseHeight: 64,
			RidgeAmp:   0,
			SeaLevel:   -1,
		},
	}
}

func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
