package configuration

import (
	"testing"

	"github.com/mitchellh/mapstructure"
	"github.com/stretchr/testify/assert"
)

func decodeLUT(t *testing.T, input interface{}) (SpeedLUT, error) {
	t.Helper()

	var target struct {
		SpeedLut SpeedLUT `mapstructure:"speedLut"`
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: speedLUTHookFunc(),
		Result:     &target,
	})
	assert.NoError(t, err)

	err = decoder.Decode(map[string]interface{}{"speedLut": input})
	return target.SpeedLut, err
}

func TestSpeedLUTHookDecodesOrderedEntries(t *testing.T) {
	// GIVEN
	input := []interface{}{
		map[string]interface{}{"default": 0},
		map[string]interface{}{"55": 10},
		map[string]interface{}{"60": 55},
		map[string]interface{}{"65": 100},
	}

	// WHEN
	lut, err := decodeLUT(t, input)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, SpeedLUT{
		{Default: true, Value: 0},
		{Threshold: 55, Value: 10},
		{Threshold: 60, Value: 55},
		{Threshold: 65, Value: 100},
	}, lut)
}

func TestSpeedLUTHookAcceptsInterfaceKeys(t *testing.T) {
	// the YAML decoder may produce non-string keys for numeric thresholds
	input := []interface{}{
		map[interface{}]interface{}{"default": 20},
		map[interface{}]interface{}{40: 50},
	}

	lut, err := decodeLUT(t, input)

	assert.NoError(t, err)
	assert.Equal(t, SpeedLUT{
		{Default: true, Value: 20},
		{Threshold: 40, Value: 50},
	}, lut)
}

func TestSpeedLUTHookRejectsMultiKeyEntry(t *testing.T) {
	input := []interface{}{
		map[string]interface{}{"default": 0},
		map[string]interface{}{"55": 10, "60": 55},
	}

	_, err := decodeLUT(t, input)

	assert.Error(t, err)
}

func TestSpeedLUTHookRejectsNonNumericThreshold(t *testing.T) {
	input := []interface{}{
		map[string]interface{}{"default": 0},
		map[string]interface{}{"warm": 10},
	}

	_, err := decodeLUT(t, input)

	assert.Error(t, err)
}

func TestSpeedLUTHookRejectsNonSequence(t *testing.T) {
	_, err := decodeLUT(t, map[string]interface{}{"default": 0})

	assert.Error(t, err)
}
