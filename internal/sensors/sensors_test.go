package sensors

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/clusterhack/argononed/internal/configuration"
	"github.com/stretchr/testify/assert"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "temp")
	err := os.WriteFile(path, []byte(content), 0644)
	assert.NoError(t, err)
	return path
}

func TestSysfsSensorReadsMilliDegrees(t *testing.T) {
	path := writeTempFile(t, "48300\n")
	sensor, err := NewSensor(configuration.SensorConfig{
		Sysfs: &configuration.SysfsSensorConfig{Path: path},
	}, 10)
	assert.NoError(t, err)

	value, err := sensor.GetValue()

	assert.NoError(t, err)
	assert.InDelta(t, 48.3, value, 0.001)
}

func TestSysfsSensorFailsOnMissingFile(t *testing.T) {
	sensor, err := NewSensor(configuration.SensorConfig{
		Sysfs: &configuration.SysfsSensorConfig{Path: "/nonexistent/thermal"},
	}, 10)
	assert.NoError(t, err)

	_, err = sensor.GetValue()

	assert.Error(t, err)
}

func TestSysfsSensorFailsOnGarbage(t *testing.T) {
	path := writeTempFile(t, "not a number\n")
	sensor := &SysfsSensor{Path: path, window: newMovingWindow(10)}

	_, err := sensor.GetValue()

	assert.Error(t, err)
}

func TestParseTemperatureOutput(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		fails    bool
	}{
		{"temp=48.3'C", 48.3, false},
		{"48.3", 48.3, false},
		{" 52 \n", 52, false},
		{"temp=", 0, true},
		{"garbage", 0, true},
	}
	for _, tt := range tests {
		value, err := parseTemperatureOutput(tt.input)
		if tt.fails {
			assert.Error(t, err, "input %q", tt.input)
		} else {
			assert.NoError(t, err, "input %q", tt.input)
			assert.InDelta(t, tt.expected, value, 0.001)
		}
	}
}

func TestMovingAvg(t *testing.T) {
	sensor := NewFakeSensor(Reading(40))

	assert.Equal(t, 0.0, sensor.GetMovingAvg())

	sensor.Record(40)
	sensor.Record(50)

	assert.InDelta(t, 45.0, sensor.GetMovingAvg(), 0.001)
}

func TestMovingAvgPartialAndFullWindow(t *testing.T) {
	// GIVEN a window that holds three readings
	window := newMovingWindow(3)

	// WHEN fewer readings than the window size were recorded
	window.Record(40)

	// THEN the average covers only the recorded readings
	assert.InDelta(t, 40.0, window.GetMovingAvg(), 0.001)

	window.Record(50)
	assert.InDelta(t, 45.0, window.GetMovingAvg(), 0.001)

	// WHEN the window has rolled over
	window.Record(60)
	window.Record(70)

	// THEN only the most recent readings contribute
	assert.InDelta(t, 60.0, window.GetMovingAvg(), 0.001)
}

func TestNewSensorRejectsEmptyConfig(t *testing.T) {
	_, err := NewSensor(configuration.SensorConfig{}, 10)

	assert.Error(t, err)
}
