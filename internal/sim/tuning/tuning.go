package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning configures a simulation run. The engine constants (tick rate,
// catch-up cap) are compiled into the world package; these knobs drive the
// runner and the sinks around the engine.
type Tuning struct {
	GridU uint32 `yaml:"grid_u"`
	GridV uint32 `yaml:"grid_v"`
	Seed  int64  `yaml:"seed"`

	// DurationSeconds of simulated time to drive in a headless run.
	DurationSeconds float64 `yaml:"duration_seconds"`

	// UpdateStepMs is the wall-clock slice, in milliseconds, for one Update
	// call. It is loaded and validated here; cmd/play advances the
	// simulation one Step per tick and does not read it.
	UpdateStepMs int `yaml:"update_step_ms"`

	DataDir string `yaml:"data_dir"`

	TickLogEveryTicks int `yaml:"tick_log_every_ticks"`

	ObserverAddr string `yaml:"observer_addr"`

	IndexDB string `yaml:"index_db"`
}

func defaults() Tuning {
	return Tuning{
		GridU:             32,
		GridV:             32,
		DurationSeconds:   10,
		UpdateStepMs:      100,
		DataDir:           "./data",
		TickLogEveryTicks: 1,
	}
}

// Load reads tuning from a YAML file. Missing keys keep their defaults.
func Load(path string) (Tuning, error) {
	t := defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if t.GridU == 0 || t.GridV == 0 {
		return t, fmt.Errorf("tuning.yaml: grid dimensions must be positive")
	}
	if t.UpdateStepMs <= 0 {
		return t, fmt.Errorf("tuning.yaml: update_step_ms must be positive")
	}
	return t, nil
}

// Default returns the built-in tuning used when no file is given.
func Default() Tuning { return defaults() }
