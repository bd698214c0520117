package configuration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/clusterhack/argononed/internal/ui"
	"github.com/clusterhack/argononed/internal/util"
)

// Validate checks CurrentConfig for errors that must prevent daemon startup.
func Validate(configPath string) error {
	return validateConfig(&CurrentConfig, configPath)
}

func validateConfig(config *Configuration, path string) error {
	if err := validateBoard(config); err != nil {
		return err
	}
	if err := validateSensor(config); err != nil {
		return err
	}
	if err := validateFanControl(config); err != nil {
		return err
	}
	if err := validatePowerButton(config); err != nil {
		return err
	}

	if config.Sensor.Cmd != nil && len(path) > 0 {
		if _, err := util.CheckFilePermissionsForExecution(path); err != nil {
			return fmt.Errorf("config file '%s' has invalid permissions: %w", path, err)
		}
	}

	return nil
}

func validateBoard(config *Configuration) error {
	if len(config.Board.I2CBus) <= 0 {
		return errors.New("board: missing i2cBus")
	}
	if len(config.Board.ButtonPin) <= 0 {
		return errors.New("board: missing buttonPin")
	}
	return nil
}

func validateSensor(config *Configuration) error {
	subConfigs := 0
	if config.Sensor.Sysfs != nil {
		subConfigs++
	}
	if config.Sensor.Cmd != nil {
		subConfigs++
	}
	if subConfigs > 1 {
		return errors.New("sensor: only one sensor type can be used, use one of: sysfs | cmd")
	}
	if subConfigs <= 0 {
		return errors.New("sensor: sub-configuration for sensor is missing, use one of: sysfs | cmd")
	}

	if config.Sensor.Sysfs != nil && len(config.Sensor.Sysfs.Path) <= 0 {
		return errors.New("sensor: no sysfs path provided")
	}
	if config.Sensor.Cmd != nil && len(config.Sensor.Cmd.Exec) <= 0 {
		return errors.New("sensor: cmd executable is missing")
	}

	return nil
}

// ValidateSpeedLUT checks the structural rules of a lookup table: it must not
// be empty, the first entry must be the default, no other entry may be a
// default, and thresholds must be strictly increasing in file order.
func ValidateSpeedLUT(lut SpeedLUT) error {
	if len(lut) < 1 {
		return errors.New("speedLut: table is empty")
	}
	if !lut[0].Default {
		return errors.New("speedLut: first entry must specify the default value")
	}

	thresholds := make([]float64, 0, len(lut)-1)
	for i, entry := range lut[1:] {
		if entry.Default {
			return fmt.Errorf("speedLut: duplicate default entry at position %d", i+1)
		}
		thresholds = append(thresholds, entry.Threshold)
	}
	if !util.IsStrictlyIncreasing(thresholds) {
		return errors.New("speedLut: threshold values are not sorted and/or not distinct")
	}

	for _, entry := range lut {
		if entry.Value < 0 || entry.Value > 100 {
			ui.Warning("speedLut: speed value %.0f is outside [0, 100] and will be clamped", entry.Value)
		}
	}

	return nil
}

func validateFanControl(config *Configuration) error {
	if err := ValidateSpeedLUT(config.FanControl.SpeedLUT); err != nil {
		return err
	}
	if config.FanControl.PollInterval < 0 {
		return errors.New("fanControl: pollInterval must not be negative")
	}
	if config.FanControl.Hysteresis < 0 {
		return errors.New("fanControl: hysteresis must not be negative")
	}
	return nil
}

func validatePowerButton(config *Configuration) error {
	if len(strings.Fields(config.PowerButton.ShutdownCmd)) <= 0 {
		return errors.New("powerButton: shutdownCmd must not be empty")
	}
	if config.PowerButton.Enabled && len(strings.Fields(config.PowerButton.RebootCmd)) <= 0 {
		return errors.New("powerButton: rebootCmd must not be empty while power button control is enabled")
	}
	return nil
}
