package configuration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validTestConfig() Configuration {
	return Configuration{
		Board: BoardConfig{
			I2CBus:     "1",
			I2CAddress: 0x1a,
			ButtonPin:  "GPIO4",
		},
		Sensor: SensorConfig{
			Sysfs: &SysfsSensorConfig{Path: "/sys/class/thermal/thermal_zone0/temp"},
		},
		FanControl: FanControlConfig{
			Enabled: true,
			SpeedLUT: SpeedLUT{
				{Default: true, Value: 0},
				{Threshold: 55, Value: 10},
				{Threshold: 60, Value: 55},
			},
			PollInterval: 10 * time.Second,
			Hysteresis:   3,
		},
		PowerButton: PowerButtonConfig{
			Enabled:     true,
			RebootCmd:   "/usr/bin/systemctl reboot",
			ShutdownCmd: "/usr/bin/systemctl poweroff",
		},
	}
}

func TestValidateValidConfig(t *testing.T) {
	config := validTestConfig()

	err := validateConfig(&config, "")

	assert.NoError(t, err)
}

func TestValidateEmptyLUT(t *testing.T) {
	config := validTestConfig()
	config.FanControl.SpeedLUT = SpeedLUT{}

	err := validateConfig(&config, "")

	assert.Error(t, err)
}

func TestValidateLUTWithoutLeadingDefault(t *testing.T) {
	config := validTestConfig()
	config.FanControl.SpeedLUT = SpeedLUT{
		{Threshold: 55, Value: 10},
		{Default: true, Value: 0},
	}

	err := validateConfig(&config, "")

	assert.Error(t, err)
}

func TestValidateLUTWithDuplicateThreshold(t *testing.T) {
	config := validTestConfig()
	config.FanControl.SpeedLUT = SpeedLUT{
		{Default: true, Value: 10},
		{Threshold: 5, Value: 20},
		{Threshold: 5, Value: 30},
	}

	err := validateConfig(&config, "")

	assert.Error(t, err)
}

func TestValidateLUTWithMisorderedThresholds(t *testing.T) {
	config := validTestConfig()
	config.FanControl.SpeedLUT = SpeedLUT{
		{Default: true, Value: 0},
		{Threshold: 60, Value: 55},
		{Threshold: 55, Value: 10},
	}

	err := validateConfig(&config, "")

	assert.Error(t, err)
}

func TestValidateLUTWithDuplicateDefault(t *testing.T) {
	config := validTestConfig()
	config.FanControl.SpeedLUT = SpeedLUT{
		{Default: true, Value: 0},
		{Default: true, Value: 10},
	}

	err := validateConfig(&config, "")

	assert.Error(t, err)
}

func TestValidateMissingSensor(t *testing.T) {
	config := validTestConfig()
	config.Sensor = SensorConfig{}

	err := validateConfig(&config, "")

	assert.Error(t, err)
}

func TestValidateAmbiguousSensor(t *testing.T) {
	config := validTestConfig()
	config.Sensor.Cmd = &CmdSensorConfig{Exec: "/usr/bin/vcgencmd", Args: []string{"measure_temp"}}

	err := validateConfig(&config, "")

	assert.Error(t, err)
}

func TestValidateEmptyShutdownCommand(t *testing.T) {
	config := validTestConfig()
	config.PowerButton.ShutdownCmd = "  "

	err := validateConfig(&config, "")

	assert.Error(t, err)
}

func TestValidateEmptyRebootCommandAllowedWhenDisabled(t *testing.T) {
	config := validTestConfig()
	config.PowerButton.Enabled = false
	config.PowerButton.RebootCmd = ""

	err := validateConfig(&config, "")

	assert.NoError(t, err)
}

func TestValidateNegativePollInterval(t *testing.T) {
	config := validTestConfig()
	config.FanControl.PollInterval = -1 * time.Second

	err := validateConfig(&config, "")

	assert.Error(t, err)
}
