package daemon

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/clusterhack/argononed/internal/board"
	"github.com/clusterhack/argononed/internal/configuration"
	"github.com/clusterhack/argononed/internal/curves"
	"github.com/clusterhack/argononed/internal/notify"
	"github.com/clusterhack/argononed/internal/persistence"
	"github.com/clusterhack/argononed/internal/sensors"
	"github.com/stretchr/testify/assert"
)

func testConfig() configuration.Configuration {
	return configuration.Configuration{
		TempRollingWindowSize: 10,
		FanControl: configuration.FanControlConfig{
			Enabled:      true,
			PollInterval: time.Millisecond,
			SpeedLUT: configuration.SpeedLUT{
				{Default: true, Value: 20},
				{Threshold: 40, Value: 50},
				{Threshold: 60, Value: 100},
			},
		},
		PowerButton: configuration.PowerButtonConfig{
			Enabled:     true,
			RebootCmd:   "systemctl reboot",
			ShutdownCmd: "systemctl poweroff",
		},
	}
}

func threshold(value float64) *float64 {
	return &value
}

func daemonForTest(t *testing.T, config configuration.Configuration, pers persistence.Persistence, readings ...*float64) (*Daemon, *board.FakeBus) {
	t.Helper()
	bus := &board.FakeBus{}
	b := board.New(bus, &board.FakeButtonPin{})
	d, err := New(config, b, sensors.NewFakeSensor(readings...), pers)
	assert.NoError(t, err)
	d.powerMonitor.SetButtonWaitTimeout(5 * time.Millisecond)
	return d, bus
}

func TestDaemonEndToEnd(t *testing.T) {
	// GIVEN
	d, bus := daemonForTest(t, testConfig(), nil,
		sensors.Reading(30),
		sensors.Reading(45),
		sensors.Reading(65),
		sensors.Reading(35),
	)

	// WHEN
	d.Start()
	assert.Eventually(t, func() bool {
		return len(bus.Writes()) >= 4
	}, 5*time.Second, time.Millisecond)
	d.Stop()
	assert.NoError(t, d.Wait())
	d.Close()

	// THEN the fan followed the temperature through the LUT
	writes := bus.Writes()
	assert.Len(t, writes, 4)
	expected := []byte{20, 50, 100, 20}
	for i, write := range writes {
		assert.Equal(t, expected[i], write.Value)
	}
	assert.True(t, bus.Closed())
}

func TestDaemonFacade(t *testing.T) {
	// GIVEN
	d, _ := daemonForTest(t, testConfig(), nil, sensors.Reading(45))
	defer d.Close()

	d.Start()
	assert.Eventually(t, func() bool {
		_, ok := d.FanSpeed()
		return ok
	}, 5*time.Second, time.Millisecond)
	d.Stop()
	assert.NoError(t, d.Wait())

	// THEN
	temperature, ok := d.Temperature()
	assert.True(t, ok)
	assert.Equal(t, 45.0, temperature)
	assert.InDelta(t, 45.0, d.TemperatureMovingAvg(), 0.001)

	speed, ok := d.FanSpeed()
	assert.True(t, ok)
	assert.Equal(t, 50, speed)

	status := d.Status()
	assert.NotNil(t, status.Temperature)
	assert.Equal(t, 45.0, *status.Temperature)
	assert.NotNil(t, status.FanSpeed)
	assert.Equal(t, 50, *status.FanSpeed)
	assert.True(t, status.FanControlEnabled)
	assert.True(t, status.PowerControlEnabled)
	assert.Len(t, status.SpeedLUT, 3)
}

func TestStopAndWaitBeforeStart(t *testing.T) {
	// GIVEN
	d, _ := daemonForTest(t, testConfig(), nil)

	// WHEN Stop and Wait are called without Start
	d.Stop()
	err := d.Wait()

	// THEN
	assert.NoError(t, err)
}

func TestStopBeforeStartIsNotLost(t *testing.T) {
	// GIVEN
	d, _ := daemonForTest(t, testConfig(), nil, sensors.Reading(30))
	defer d.Close()

	// WHEN the stop request lands before the workers launch
	d.Stop()
	d.Start()

	// THEN the workers terminate right away
	done := make(chan error, 1)
	go func() {
		done <- d.Wait()
	}()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon kept running after an early stop")
	}
}

func TestDaemonRejectsInvalidConfiguredLUT(t *testing.T) {
	// GIVEN
	config := testConfig()
	config.FanControl.SpeedLUT = configuration.SpeedLUT{}
	b := board.New(&board.FakeBus{}, &board.FakeButtonPin{})

	// WHEN
	_, err := New(config, b, sensors.NewFakeSensor(), nil)

	// THEN
	assert.ErrorIs(t, err, curves.ErrInvalidLUT)
}

func TestDaemonAppliesPersistedOverrides(t *testing.T) {
	// GIVEN persisted overrides differing from the configuration
	pers := persistence.NewPersistence(filepath.Join(t.TempDir(), "argononed.db"))
	assert.NoError(t, pers.SaveFanControlEnabled(false))
	assert.NoError(t, pers.SavePowerControlEnabled(false))
	items := []curves.LUTEntry{
		{Value: 0},
		{Threshold: threshold(50), Value: 100},
	}
	assert.NoError(t, pers.SaveSpeedLUT(items))

	// WHEN
	d, _ := daemonForTest(t, testConfig(), pers)
	defer d.Close()

	// THEN
	assert.False(t, d.FanControlEnabled())
	assert.False(t, d.PowerControlEnabled())
	assert.Equal(t, items, d.SpeedLUT())
}

func TestSetSpeedLUTPersistsAndResetReverts(t *testing.T) {
	// GIVEN
	pers := persistence.NewPersistence(filepath.Join(t.TempDir(), "argononed.db"))
	d, _ := daemonForTest(t, testConfig(), pers)
	defer d.Close()
	items := []curves.LUTEntry{
		{Value: 10},
		{Threshold: threshold(55), Value: 90},
	}

	// WHEN
	err := d.SetSpeedLUT(items)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, items, d.SpeedLUT())
	persisted, err := pers.LoadSpeedLUT()
	assert.NoError(t, err)
	assert.Equal(t, items, persisted)

	// WHEN the override is reset
	err = d.ResetSpeedLUT()

	// THEN the configured LUT is active again and the override is gone
	assert.NoError(t, err)
	assert.Len(t, d.SpeedLUT(), 3)
	_, err = pers.LoadSpeedLUT()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSetControlFlagsPersist(t *testing.T) {
	// GIVEN
	pers := persistence.NewPersistence(filepath.Join(t.TempDir(), "argononed.db"))
	d, _ := daemonForTest(t, testConfig(), pers)
	defer d.Close()

	// WHEN
	d.SetFanControlEnabled(false)
	d.SetPowerControlEnabled(false)

	// THEN
	assert.False(t, d.FanControlEnabled())
	assert.False(t, d.PowerControlEnabled())
	enabled, err := pers.LoadFanControlEnabled()
	assert.NoError(t, err)
	assert.False(t, enabled)
	enabled, err = pers.LoadPowerControlEnabled()
	assert.NoError(t, err)
	assert.False(t, enabled)
}

func TestManualFanSpeedRestoredOnStart(t *testing.T) {
	// GIVEN a previous daemon run persisted a manual fan speed
	pers := persistence.NewPersistence(filepath.Join(t.TempDir(), "argononed.db"))
	first, _ := daemonForTest(t, testConfig(), pers)
	first.SetFanSpeed(33)
	first.Close()

	// WHEN a new daemon starts with automatic control disabled
	config := testConfig()
	config.FanControl.Enabled = false
	second, bus := daemonForTest(t, config, pers)
	defer second.Close()
	second.Start()

	// THEN the persisted speed is written to the board again
	assert.Eventually(t, func() bool {
		last, ok := bus.LastWrite()
		return ok && last.Value == 33
	}, 5*time.Second, time.Millisecond)
	second.Stop()
	assert.NoError(t, second.Wait())
}

func TestDaemonForwardsNotifications(t *testing.T) {
	// GIVEN
	d, _ := daemonForTest(t, testConfig(), nil)
	defer d.Close()
	sink := notify.NewChanSink(8)
	d.Hub().Attach("test", sink)

	// WHEN
	d.PublishValue(notify.ValueFanSpeed, 42)
	d.PublishEvent(notify.EventLUTChanged)

	// THEN
	select {
	case message := <-sink.C:
		assert.Equal(t, notify.ValueFanSpeed, message.Name)
		assert.Equal(t, 42, message.Value)
	case <-time.After(time.Second):
		t.Fatal("no notification received")
	}
	select {
	case message := <-sink.C:
		assert.Equal(t, notify.EventLUTChanged, message.Name)
		assert.True(t, message.Event)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestStateFileSinkWritesSnapshot(t *testing.T) {
	// GIVEN
	config := testConfig()
	config.StatePath = filepath.Join(t.TempDir(), "state.json")
	d, _ := daemonForTest(t, config, nil)
	defer d.Close()

	// WHEN any notification fires
	d.PublishValue(notify.ValueFanSpeed, 42)

	// THEN the state file appears and holds a valid snapshot
	assert.Eventually(t, func() bool {
		_, err := os.Stat(config.StatePath)
		return err == nil
	}, 5*time.Second, time.Millisecond)

	data, err := os.ReadFile(config.StatePath)
	assert.NoError(t, err)
	var status Status
	assert.NoError(t, json.Unmarshal(data, &status))
	assert.True(t, status.FanControlEnabled)
}
