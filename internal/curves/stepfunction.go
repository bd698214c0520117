package curves

import (
	"errors"
	"fmt"

	"github.com/clusterhack/argononed/internal/configuration"
	"github.com/clusterhack/argononed/internal/util"
)

// ErrInvalidLUT marks all lookup table construction failures.
var ErrInvalidLUT = errors.New("invalid fan speed LUT")

// LUTEntry is one step of the serialized lookup table form. A nil Threshold
// marks the default entry, which must come first.
type LUTEntry struct {
	Threshold *float64 `json:"threshold"`
	Value     float64  `json:"value"`
}

// StepFunction is an immutable piecewise-constant mapping from temperature to
// fan speed. Evaluate(x) returns values[i] where i is the count of thresholds
// strictly below x; values[0] is the default used below the lowest threshold.
type StepFunction struct {
	thresholds []float64
	values     []float64
}

// NewStepFunction builds a step function from parallel slices. It requires
// exactly one more value than thresholds and strictly increasing thresholds.
func NewStepFunction(thresholds []float64, values []float64) (*StepFunction, error) {
	if len(values) != len(thresholds)+1 {
		return nil, fmt.Errorf("%w: number of thresholds and values do not match", ErrInvalidLUT)
	}
	if !util.IsStrictlyIncreasing(thresholds) {
		return nil, fmt.Errorf("%w: threshold values are not sorted and/or not distinct", ErrInvalidLUT)
	}

	f := &StepFunction{
		thresholds: append([]float64{}, thresholds...),
		values:     append([]float64{}, values...),
	}
	return f, nil
}

// FromConfig builds a step function from the configured lookup table.
func FromConfig(lut configuration.SpeedLUT) (*StepFunction, error) {
	if err := configuration.ValidateSpeedLUT(lut); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLUT, err)
	}

	thresholds := make([]float64, 0, len(lut)-1)
	values := make([]float64, 0, len(lut))
	for _, entry := range lut {
		if !entry.Default {
			thresholds = append(thresholds, entry.Threshold)
		}
		values = append(values, entry.Value)
	}
	return NewStepFunction(thresholds, values)
}

// FromItems rebuilds a step function from the item-sequence form produced by
// Items. The first item must be the default entry (nil threshold).
func FromItems(items []LUTEntry) (*StepFunction, error) {
	if len(items) < 1 {
		return nil, fmt.Errorf("%w: item sequence is empty", ErrInvalidLUT)
	}
	if items[0].Threshold != nil {
		return nil, fmt.Errorf("%w: first item must be the default entry", ErrInvalidLUT)
	}

	thresholds := make([]float64, 0, len(items)-1)
	values := make([]float64, 0, len(items))
	values = append(values, items[0].Value)
	for i, item := range items[1:] {
		if item.Threshold == nil {
			return nil, fmt.Errorf("%w: duplicate default entry at position %d", ErrInvalidLUT, i+1)
		}
		thresholds = append(thresholds, *item.Threshold)
		values = append(values, item.Value)
	}
	return NewStepFunction(thresholds, values)
}

// Evaluate returns the value of the first segment whose threshold exceeds x.
// Linear scan; tables have single-digit entry counts.
func (f *StepFunction) Evaluate(x float64) float64 {
	for i, threshold := range f.thresholds {
		if x < threshold {
			return f.values[i]
		}
	}
	return f.values[len(f.values)-1]
}

// Items returns the (threshold, value) sequence of this function, default
// entry first. Feeding the result into FromItems reconstructs an equivalent
// function.
func (f *StepFunction) Items() []LUTEntry {
	items := make([]LUTEntry, 0, len(f.values))
	items = append(items, LUTEntry{Value: f.values[0]})
	for i, threshold := range f.thresholds {
		t := threshold
		items = append(items, LUTEntry{Threshold: &t, Value: f.values[i+1]})
	}
	return items
}
