// Package controller contains the two long running workers of the daemon:
// the fan control loop and the power button monitor. Both run until their
// context is cancelled and report hardware trouble through the logger rather
// than by terminating.
package controller

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/clusterhack/argononed/internal/board"
	"github.com/clusterhack/argononed/internal/configuration"
	"github.com/clusterhack/argononed/internal/curves"
	"github.com/clusterhack/argononed/internal/notify"
	"github.com/clusterhack/argononed/internal/sensors"
	"github.com/clusterhack/argononed/internal/ui"
)

// FanController periodically samples the temperature sensor and drives the
// fan through the board according to the speed LUT. Writes to the board are
// edge triggered: the speed register is only touched when the target speed
// differs from the last successfully written one.
type FanController struct {
	board    *board.Board
	sensor   sensors.Sensor
	notifier notify.Notifier

	pollInterval time.Duration
	// hysteresis is accepted from configuration for compatibility but does
	// not currently influence the control decision.
	hysteresis float64

	mu              sync.Mutex
	lut             *curves.StepFunction
	enabled         bool
	lastTemperature float64
	haveTemperature bool
}

func NewFanController(
	b *board.Board,
	sensor sensors.Sensor,
	notifier notify.Notifier,
	lut *curves.StepFunction,
	config configuration.FanControlConfig,
) *FanController {
	return &FanController{
		board:        b,
		sensor:       sensor,
		notifier:     notifier,
		pollInterval: config.PollInterval,
		hysteresis:   config.Hysteresis,
		lut:          lut,
		enabled:      config.Enabled,
	}
}

// Run executes the control loop until ctx is cancelled. It always returns
// nil; sensor and bus failures are logged and the affected cycle is skipped.
func (f *FanController) Run(ctx context.Context) error {
	ui.Info("Fan control loop started, polling %s every %s", f.sensor.GetId(), f.pollInterval)
	for {
		f.cycle()

		select {
		case <-ctx.Done():
			ui.Debug("Fan control loop stopped")
			return nil
		case <-time.After(f.pollInterval):
		}
	}
}

func (f *FanController) cycle() {
	value, err := f.sensor.GetValue()
	if err != nil {
		ui.Warning("Error reading sensor %s: %v", f.sensor.GetId(), err)
		return
	}
	f.sensor.Record(value)

	f.mu.Lock()
	f.lastTemperature = value
	f.haveTemperature = true
	enabled := f.enabled
	lut := f.lut
	f.mu.Unlock()

	f.notifier.PublishValue(notify.ValueTemperature, value)

	if !enabled {
		return
	}

	target := int(math.Round(lut.Evaluate(value)))
	current, known := f.board.FanSpeed()
	if known && current == target {
		return
	}
	f.applySpeed(target)
}

// applySpeed writes the target speed and notifies with the post-write cached
// value, so a failed bus write never advertises a speed the fan does not run.
func (f *FanController) applySpeed(target int) {
	f.board.SetFanSpeed(target)
	if speed, known := f.board.FanSpeed(); known {
		f.notifier.PublishValue(notify.ValueFanSpeed, speed)
	}
}

// Temperature returns the most recent successful sensor reading. The second
// return value is false until the first successful read.
func (f *FanController) Temperature() (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastTemperature, f.haveTemperature
}

// FanSpeed returns the last fan speed successfully written to the board.
func (f *FanController) FanSpeed() (int, bool) {
	return f.board.FanSpeed()
}

// SetFanSpeed applies a manual fan speed. Automatic control, if enabled,
// overrides it on the next cycle that computes a different target.
func (f *FanController) SetFanSpeed(value int) {
	f.applySpeed(value)
}

func (f *FanController) ControlEnabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

func (f *FanController) EnableControl() {
	f.setEnabled(true)
}

func (f *FanController) DisableControl() {
	f.setEnabled(false)
}

func (f *FanController) setEnabled(enabled bool) {
	f.mu.Lock()
	changed := f.enabled != enabled
	f.enabled = enabled
	f.mu.Unlock()
	if changed {
		f.notifier.PublishValue(notify.ValueFanControlEnabled, enabled)
	}
}

// SpeedLUT returns the active speed LUT as an ordered item list, default
// entry first.
func (f *FanController) SpeedLUT() []curves.LUTEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lut.Items()
}

// SetSpeedLUT swaps the active LUT. The swap is atomic with respect to the
// control loop; an in-flight cycle finishes with the LUT it started with.
func (f *FanController) SetSpeedLUT(lut *curves.StepFunction) {
	f.mu.Lock()
	f.lut = lut
	f.mu.Unlock()
	f.notifier.PublishEvent(notify.EventLUTChanged)
}

// SetSpeedLUTItems validates and swaps the active LUT from an item list. The
// active LUT is untouched when validation fails.
func (f *FanController) SetSpeedLUTItems(items []curves.LUTEntry) error {
	lut, err := curves.FromItems(items)
	if err != nil {
		return err
	}
	f.SetSpeedLUT(lut)
	return nil
}
