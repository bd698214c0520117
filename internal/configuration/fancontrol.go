package configuration

import "time"

type FanControlConfig struct {
	// Whether the controller starts with corrective fan speed writes enabled.
	// Temperature monitoring runs either way.
	Enabled bool `json:"enabled"`
	// Ordered temperature -> fan speed lookup table. The first entry must be
	// the default value used below the lowest threshold.
	SpeedLUT SpeedLUT `json:"speedLut" mapstructure:"speedLut"`
	// Time between temperature poll cycles.
	PollInterval time.Duration `json:"pollInterval"`
	// Temperature margin in degrees, accepted for forward compatibility; has
	// no effect on the control decision yet.
	Hysteresis float64 `json:"hysteresis"`
}

// SpeedLUTEntry is a single step of the configured lookup table.
type SpeedLUTEntry struct {
	// Default marks the entry that supplies the value used below the lowest
	// threshold. Threshold is meaningless on a default entry.
	Default   bool    `json:"default,omitempty"`
	Threshold float64 `json:"threshold"`
	Value     float64 `json:"value"`
}

// SpeedLUT preserves the entry order of the config file; validation rejects
// misordered tables instead of sorting them.
type SpeedLUT []SpeedLUTEntry
