// Package board owns the I2C fan controller and the power button GPIO pin of
// the Argon ONE case. All bus transactions and the cached fan speed serialize
// through one mutex, since the hardware is a single shared device. The mutex
// is never held across an edge wait, only across single bus transactions.
package board

import (
	"sync"
	"time"

	"github.com/clusterhack/argononed/internal/ui"
	"github.com/clusterhack/argononed/internal/util"
)

const (
	// register the MCU accepts fan speed percentages on
	fanSpeedRegister = 0x00
	// writing this value cuts board power once the OS has halted
	powerOffCommand = 0xff

	// a pulse whose falling edge does not arrive within this grace period is
	// treated as line noise, not as an extra long button hold
	fallingEdgeGrace = 500 * time.Millisecond
)

// Bus is the write-only I2C channel to the board MCU.
type Bus interface {
	WriteRegister(register byte, value byte) error
	Close() error
}

// ButtonPin is the power button sense line. WaitForEdge blocks until the next
// rising or falling edge, or the timeout elapses. Read reports the current
// level, true meaning high.
type ButtonPin interface {
	WaitForEdge(timeout time.Duration) bool
	Read() bool
}

// ButtonEvent is the decoded intent of a power button pulse.
type ButtonEvent int

const (
	EventNone ButtonEvent = iota
	EventReboot
	EventShutdown
)

func (e ButtonEvent) String() string {
	switch e {
	case EventReboot:
		return "reboot"
	case EventShutdown:
		return "shutdown"
	default:
		return "none"
	}
}

type Board struct {
	mu     sync.Mutex
	bus    Bus
	button ButtonPin

	fanSpeed      int
	fanSpeedKnown bool
}

func New(bus Bus, button ButtonPin) *Board {
	return &Board{
		bus:    bus,
		button: button,
	}
}

// SetFanSpeed clamps value to [0, 100] and writes it to the board. A failed
// bus write is logged and leaves the cached speed unchanged; fan control must
// not crash the monitoring loop over a transient bus glitch, so this call
// never fails observably.
func (b *Board) SetFanSpeed(value int) {
	value = util.Coerce(value, 0, 100)

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.bus.WriteRegister(fanSpeedRegister, byte(value)); err != nil {
		ui.Warning("Fan control I2C command failed: %v", err)
		return
	}
	b.fanSpeed = value
	b.fanSpeedKnown = true
}

// FanSpeed returns the last successfully written fan speed. The second return
// value is false until the first successful write.
func (b *Board) FanSpeed() (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fanSpeed, b.fanSpeedKnown
}

// PowerOff asks the board MCU to cut power. Used only after OS shutdown is
// already underway; the caller guarantees no fan speed writes race this call.
func (b *Board) PowerOff() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bus.WriteRegister(fanSpeedRegister, powerOffCommand)
}

// WaitForButton blocks until a complete button pulse is decoded or the
// timeout elapses, and classifies the pulse duration:
//
//	[10ms, 30ms) reboot, [30ms, 50ms) shutdown, anything else none.
//
// The pin is touched by a single monitoring goroutine, so the board mutex is
// not taken here; holding it across a blocking edge wait would stall
// concurrent fan speed writes.
func (b *Board) WaitForButton(timeout time.Duration) ButtonEvent {
	deadline := time.Now().Add(timeout)

	var riseTime time.Time
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return EventNone
		}
		if !b.button.WaitForEdge(remaining) {
			return EventNone
		}
		// timestamp before anything else, the classification windows are
		// tens of milliseconds wide
		riseTime = time.Now()
		if b.button.Read() {
			break
		}
		// falling leftover of an earlier pulse, keep waiting
	}

	if !b.button.WaitForEdge(fallingEdgeGrace) {
		ui.Warning("Power button monitor giving up on pulse that seems to exceed %v", fallingEdgeGrace)
		return EventNone
	}
	pulse := time.Since(riseTime)
	if b.button.Read() {
		ui.Warning("Power button line still high after edge, ignoring glitch")
		return EventNone
	}

	event := classifyPulse(pulse)
	ui.Debug("Power button pulse of %v classified as %s", pulse, event)
	return event
}

// classifyPulse maps a pulse duration to a button intent. Both ranges are
// inclusive-low, exclusive-high.
func classifyPulse(pulse time.Duration) ButtonEvent {
	switch {
	case pulse >= 10*time.Millisecond && pulse < 30*time.Millisecond:
		return EventReboot
	case pulse >= 30*time.Millisecond && pulse < 50*time.Millisecond:
		return EventShutdown
	default:
		return EventNone
	}
}

// Close releases the bus handle. Must be called exactly once, after the
// workers have stopped.
func (b *Board) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bus.Close()
}
