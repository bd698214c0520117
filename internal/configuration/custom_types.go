package configuration

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// speedLUTHookFunc returns a mapstructure decode hook that converts the YAML
// form of the lookup table, a sequence of single-entry mappings like
//
//	speedLut:
//	  - default: 0
//	  - 55: 10
//	  - 60: 55
//
// into a SpeedLUT, preserving the entry order of the file. Shape errors
// (multi-key entries, non-numeric keys) fail the decode; ordering rules are
// checked later during validation.
func speedLUTHookFunc() mapstructure.DecodeHookFuncType {
	lutType := reflect.TypeOf(SpeedLUT{})

	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if t != lutType {
			return data, nil
		}

		raw, ok := data.([]interface{})
		if !ok {
			return nil, fmt.Errorf("speedLut must be a sequence of single-entry mappings, got %T", data)
		}

		lut := make(SpeedLUT, 0, len(raw))
		for i, item := range raw {
			entry, err := parseLUTEntry(item)
			if err != nil {
				return nil, fmt.Errorf("speedLut entry %d: %w", i, err)
			}
			lut = append(lut, entry)
		}
		return lut, nil
	}
}

func parseLUTEntry(item interface{}) (SpeedLUTEntry, error) {
	pairs, err := entryPairs(item)
	if err != nil {
		return SpeedLUTEntry{}, err
	}
	if len(pairs) != 1 {
		return SpeedLUTEntry{}, fmt.Errorf("must consist of a single threshold:speed pair, got %d keys", len(pairs))
	}

	for key, value := range pairs {
		speed, err := anyToFloat(value)
		if err != nil {
			return SpeedLUTEntry{}, fmt.Errorf("invalid speed value %v: %w", value, err)
		}
		if strings.EqualFold(key, "default") {
			return SpeedLUTEntry{Default: true, Value: speed}, nil
		}
		threshold, err := strconv.ParseFloat(key, 64)
		if err != nil {
			return SpeedLUTEntry{}, fmt.Errorf("invalid threshold %q: %w", key, err)
		}
		return SpeedLUTEntry{Threshold: threshold, Value: speed}, nil
	}

	// unreachable, the single pair always returns above
	return SpeedLUTEntry{}, fmt.Errorf("empty entry")
}

// entryPairs normalizes the map types the YAML decoder may produce.
func entryPairs(item interface{}) (map[string]interface{}, error) {
	switch v := item.(type) {
	case map[string]interface{}:
		return v, nil
	case map[interface{}]interface{}:
		pairs := make(map[string]interface{}, len(v))
		for key, value := range v {
			pairs[fmt.Sprintf("%v", key)] = value
		}
		return pairs, nil
	default:
		return nil, fmt.Errorf("must be a mapping, got %T", item)
	}
}

func anyToFloat(v interface{}) (float64, error) {
	switch val := v.(type) {
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case float32:
		return float64(val), nil
	case float64:
		return val, nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as number: %w", val, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to number", v)
	}
}
