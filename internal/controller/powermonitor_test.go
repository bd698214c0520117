package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/clusterhack/argononed/internal/board"
	"github.com/clusterhack/argononed/internal/configuration"
	"github.com/clusterhack/argononed/internal/notify"
	"github.com/stretchr/testify/assert"
)

type commandRecorder struct {
	mu       sync.Mutex
	commands [][]string
}

func (r *commandRecorder) launch(executable string, args []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, append([]string{executable}, args...))
}

func (r *commandRecorder) recorded() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([][]string, len(r.commands))
	copy(result, r.commands)
	return result
}

func powerMonitorForTest(t *testing.T, enabled bool, pin *board.FakeButtonPin) (*PowerMonitor, *commandRecorder, *testNotifier) {
	t.Helper()
	b := board.New(&board.FakeBus{}, pin)
	notifier := &testNotifier{}
	recorder := &commandRecorder{}
	monitor := NewPowerMonitor(b, notifier, configuration.PowerButtonConfig{
		Enabled:     enabled,
		RebootCmd:   "systemctl reboot",
		ShutdownCmd: "systemctl poweroff",
	})
	monitor.launcher = recorder.launch
	monitor.waitTimeout = 200 * time.Millisecond
	return monitor, recorder, notifier
}

func runMonitor(t *testing.T, monitor *PowerMonitor) (cancel func()) {
	t.Helper()
	ctx, cancelCtx := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- monitor.Run(ctx) }()
	return func() {
		cancelCtx()
		assert.NoError(t, <-done)
	}
}

func TestShutdownPulseAlwaysRunsShutdownCommand(t *testing.T) {
	// GIVEN power button actions are disabled
	pin := &board.FakeButtonPin{}
	pin.QueuePulse(time.Millisecond, 35*time.Millisecond)
	monitor, recorder, notifier := powerMonitorForTest(t, false, pin)

	// WHEN
	stop := runMonitor(t, monitor)
	defer stop()

	// THEN the shutdown command still runs, the MCU cuts power regardless
	assert.Eventually(t, func() bool {
		return len(recorder.recorded()) == 1
	}, 5*time.Second, time.Millisecond)
	assert.Equal(t, [][]string{{"systemctl", "poweroff"}}, recorder.recorded())
	assert.Equal(t, 1, notifier.eventCount(notify.EventShutdownRequest))
}

func TestRebootPulseIgnoredWhenDisabled(t *testing.T) {
	// GIVEN
	pin := &board.FakeButtonPin{}
	pin.QueuePulse(time.Millisecond, 15*time.Millisecond)
	monitor, recorder, notifier := powerMonitorForTest(t, false, pin)

	// WHEN
	stop := runMonitor(t, monitor)
	defer stop()

	// THEN the request is published but no command runs
	assert.Eventually(t, func() bool {
		return notifier.eventCount(notify.EventRebootRequest) == 1
	}, 5*time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, recorder.recorded())
}

func TestRebootPulseRunsRebootCommandWhenEnabled(t *testing.T) {
	// GIVEN
	pin := &board.FakeButtonPin{}
	pin.QueuePulse(time.Millisecond, 15*time.Millisecond)
	monitor, recorder, notifier := powerMonitorForTest(t, true, pin)

	// WHEN
	stop := runMonitor(t, monitor)
	defer stop()

	// THEN
	assert.Eventually(t, func() bool {
		return len(recorder.recorded()) == 1
	}, 5*time.Second, time.Millisecond)
	assert.Equal(t, [][]string{{"systemctl", "reboot"}}, recorder.recorded())
	assert.Equal(t, 1, notifier.eventCount(notify.EventRebootRequest))
}

func TestEnableDisablePowerControlNotifiesOnChange(t *testing.T) {
	// GIVEN
	monitor, _, notifier := powerMonitorForTest(t, true, &board.FakeButtonPin{})

	// WHEN
	monitor.DisableControl()
	monitor.DisableControl()
	monitor.EnableControl()

	// THEN
	assert.Equal(t, []interface{}{false, true}, notifier.valuesNamed(notify.ValuePowerControlEnabled))
	assert.True(t, monitor.ControlEnabled())
}

func TestMonitorStopsWithinWaitTimeout(t *testing.T) {
	// GIVEN a monitor with no button activity
	monitor, _, _ := powerMonitorForTest(t, true, &board.FakeButtonPin{})
	monitor.waitTimeout = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- monitor.Run(ctx) }()

	// WHEN
	cancel()

	// THEN
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}
