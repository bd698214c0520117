// Package daemon ties the board, the sensor and the two workers together
// behind a single façade, which the REST API and the CLI talk to.
package daemon

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"

	"github.com/clusterhack/argononed/internal/board"
	"github.com/clusterhack/argononed/internal/configuration"
	"github.com/clusterhack/argononed/internal/controller"
	"github.com/clusterhack/argononed/internal/curves"
	"github.com/clusterhack/argononed/internal/notify"
	"github.com/clusterhack/argononed/internal/persistence"
	"github.com/clusterhack/argononed/internal/sensors"
	"github.com/clusterhack/argononed/internal/ui"
	"github.com/oklog/run"
)

type Daemon struct {
	config configuration.Configuration
	board  *board.Board
	sensor sensors.Sensor
	pers   persistence.Persistence

	hub          *notify.Hub
	fanControl   *controller.FanController
	powerMonitor *controller.PowerMonitor

	// persisted manual fan speed to restore on Start while automatic
	// control is disabled
	pendingFanSpeed *int

	// ctx, cancel and result are created in New, so Stop and Wait are safe
	// to call from any goroutine regardless of whether Start already ran
	ctx       context.Context
	cancel    context.CancelFunc
	result    chan error
	started   atomic.Bool
	waitOnce  sync.Once
	waitErr   error
	closeOnce sync.Once
}

// New assembles a daemon from its hardware and storage dependencies. The
// configured speed LUT must be valid; persisted runtime overrides are applied
// on top of the configuration, and dropped with a warning when corrupt.
func New(
	config configuration.Configuration,
	b *board.Board,
	sensor sensors.Sensor,
	pers persistence.Persistence,
) (*Daemon, error) {
	lut, err := curves.FromConfig(config.FanControl.SpeedLUT)
	if err != nil {
		return nil, err
	}

	fanConfig := config.FanControl
	powerConfig := config.PowerButton

	if pers != nil {
		if enabled, err := pers.LoadFanControlEnabled(); err == nil {
			ui.Info("Applying persisted fan control override: enabled=%v", enabled)
			fanConfig.Enabled = enabled
		} else if !errors.Is(err, os.ErrNotExist) {
			ui.Warning("Unable to load fan control override: %v", err)
		}

		if enabled, err := pers.LoadPowerControlEnabled(); err == nil {
			ui.Info("Applying persisted power button override: enabled=%v", enabled)
			powerConfig.Enabled = enabled
		} else if !errors.Is(err, os.ErrNotExist) {
			ui.Warning("Unable to load power button override: %v", err)
		}

		if items, err := pers.LoadSpeedLUT(); err == nil {
			if override, err := curves.FromItems(items); err == nil {
				ui.Info("Applying persisted fan speed LUT override")
				lut = override
			} else {
				ui.Warning("Ignoring invalid persisted fan speed LUT: %v", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			ui.Warning("Unable to load fan speed LUT override: %v", err)
		}
	}

	var pendingFanSpeed *int
	if pers != nil && !fanConfig.Enabled {
		if speed, err := pers.LoadFanSpeed(); err == nil {
			ui.Info("Restoring persisted manual fan speed: %d", speed)
			pendingFanSpeed = &speed
		} else if !errors.Is(err, os.ErrNotExist) {
			ui.Warning("Unable to load persisted fan speed: %v", err)
		}
	}

	hub := notify.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	d := &Daemon{
		config: config,
		board:  b,
		sensor: sensor,
		pers:   pers,
		hub:    hub,

		pendingFanSpeed: pendingFanSpeed,

		ctx:    ctx,
		cancel: cancel,
		result: make(chan error, 1),
	}
	d.fanControl = controller.NewFanController(b, sensor, hub, lut, fanConfig)
	d.powerMonitor = controller.NewPowerMonitor(b, hub, powerConfig)

	if config.StatePath != "" {
		hub.Attach("statefile", newStateFileSink(d, config.StatePath))
	}

	return d, nil
}

// Hub returns the notification hub, for attaching additional sinks such as
// the metrics counter or an API stream.
func (d *Daemon) Hub() *notify.Hub {
	return d.hub
}

// Start launches the fan control loop and the power button monitor. It does
// not block; use Wait to observe termination.
func (d *Daemon) Start() {
	if d.pendingFanSpeed != nil {
		d.fanControl.SetFanSpeed(*d.pendingFanSpeed)
		d.pendingFanSpeed = nil
	}

	var g run.Group
	g.Add(func() error {
		return d.fanControl.Run(d.ctx)
	}, func(err error) {
		d.cancel()
	})
	g.Add(func() error {
		return d.powerMonitor.Run(d.ctx)
	}, func(err error) {
		d.cancel()
	})

	d.started.Store(true)
	go func() {
		d.result <- g.Run()
	}()
}

// Stop requests the workers to finish. Safe to call repeatedly and from any
// goroutine; a stop requested before Start takes effect as soon as the
// workers launch.
func (d *Daemon) Stop() {
	d.cancel()
}

// Wait blocks until both workers have stopped and returns the first error
// any of them reported. Returns immediately when Start was never called.
func (d *Daemon) Wait() error {
	d.waitOnce.Do(func() {
		if d.started.Load() {
			d.waitErr = <-d.result
		}
	})
	return d.waitErr
}

// Close stops the workers, detaches all notification sinks and releases the
// board. Only the first call has an effect.
func (d *Daemon) Close() {
	d.closeOnce.Do(func() {
		d.Stop()
		_ = d.Wait()
		d.hub.Close()
		if err := d.board.Close(); err != nil {
			ui.Warning("Error closing board: %v", err)
		}
	})
}

// Shutdown is the graceful stop entry point of the API.
func (d *Daemon) Shutdown() {
	d.Stop()
}

// PublishValue forwards to the notification hub, making the daemon itself a
// notify.Notifier.
func (d *Daemon) PublishValue(name string, value interface{}) {
	d.hub.PublishValue(name, value)
}

func (d *Daemon) PublishEvent(name string) {
	d.hub.PublishEvent(name)
}

func (d *Daemon) Temperature() (float64, bool) {
	return d.fanControl.Temperature()
}

func (d *Daemon) TemperatureMovingAvg() float64 {
	return d.sensor.GetMovingAvg()
}

func (d *Daemon) FanSpeed() (int, bool) {
	return d.fanControl.FanSpeed()
}

// SetFanSpeed applies a manual fan speed and persists it, so the speed can be
// restored on the next start while automatic control is disabled.
func (d *Daemon) SetFanSpeed(value int) {
	d.fanControl.SetFanSpeed(value)
	if d.pers != nil {
		if err := d.pers.SaveFanSpeed(value); err != nil {
			ui.Warning("Unable to persist fan speed: %v", err)
		}
	}
}

func (d *Daemon) FanControlEnabled() bool {
	return d.fanControl.ControlEnabled()
}

// SetFanControlEnabled toggles automatic fan control and persists the choice
// across restarts.
func (d *Daemon) SetFanControlEnabled(enabled bool) {
	if enabled {
		d.fanControl.EnableControl()
	} else {
		d.fanControl.DisableControl()
	}
	if d.pers != nil {
		d.persistBool(d.pers.SaveFanControlEnabled, enabled)
	}
}

func (d *Daemon) PowerControlEnabled() bool {
	return d.powerMonitor.ControlEnabled()
}

func (d *Daemon) SetPowerControlEnabled(enabled bool) {
	if enabled {
		d.powerMonitor.EnableControl()
	} else {
		d.powerMonitor.DisableControl()
	}
	if d.pers != nil {
		d.persistBool(d.pers.SavePowerControlEnabled, enabled)
	}
}

func (d *Daemon) persistBool(save func(bool) error, enabled bool) {
	if err := save(enabled); err != nil {
		ui.Warning("Unable to persist override: %v", err)
	}
}

func (d *Daemon) SpeedLUT() []curves.LUTEntry {
	return d.fanControl.SpeedLUT()
}

// SetSpeedLUT validates, applies and persists a new fan speed LUT.
func (d *Daemon) SetSpeedLUT(items []curves.LUTEntry) error {
	if err := d.fanControl.SetSpeedLUTItems(items); err != nil {
		return err
	}
	if d.pers != nil {
		if err := d.pers.SaveSpeedLUT(items); err != nil {
			ui.Warning("Unable to persist fan speed LUT: %v", err)
		}
	}
	return nil
}

// ResetSpeedLUT drops any persisted LUT override and reverts to the
// configured one.
func (d *Daemon) ResetSpeedLUT() error {
	lut, err := curves.FromConfig(d.config.FanControl.SpeedLUT)
	if err != nil {
		return err
	}
	d.fanControl.SetSpeedLUT(lut)
	if d.pers != nil {
		if err := d.pers.DeleteSpeedLUT(); err != nil {
			ui.Warning("Unable to delete persisted fan speed LUT: %v", err)
		}
	}
	return nil
}

// Status is a point-in-time snapshot of the daemon state. Temperature and
// FanSpeed are nil until the first successful sensor read and fan write.
type Status struct {
	Temperature         *float64          `json:"temperature"`
	TemperatureAvg      float64           `json:"temperatureAvg"`
	FanSpeed            *int              `json:"fanSpeed"`
	FanControlEnabled   bool              `json:"fanControlEnabled"`
	PowerControlEnabled bool              `json:"powerControlEnabled"`
	SpeedLUT            []curves.LUTEntry `json:"speedLut"`
}

func (d *Daemon) Status() Status {
	status := Status{
		TemperatureAvg:      d.TemperatureMovingAvg(),
		FanControlEnabled:   d.FanControlEnabled(),
		PowerControlEnabled: d.PowerControlEnabled(),
		SpeedLUT:            d.SpeedLUT(),
	}
	if temperature, ok := d.Temperature(); ok {
		status.Temperature = &temperature
	}
	if speed, ok := d.FanSpeed(); ok {
		status.FanSpeed = &speed
	}
	return status
}
