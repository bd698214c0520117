package controller

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/clusterhack/argononed/internal/board"
	"github.com/clusterhack/argononed/internal/configuration"
	"github.com/clusterhack/argononed/internal/notify"
	"github.com/clusterhack/argononed/internal/ui"
	"github.com/clusterhack/argononed/internal/util"
)

const (
	// upper bound on a single button wait, also bounds how long a stop
	// request can linger before the monitor loop notices it
	defaultButtonWaitTimeout = 10 * time.Second

	powerCommandTimeout = 30 * time.Second
)

// PowerMonitor watches the power button line and reacts to decoded pulses.
// A shutdown pulse always runs the shutdown command, even when power button
// actions are disabled: the board MCU cuts power a few seconds after sending
// the pulse regardless, and an unclean poweroff is worse than an unwanted
// one. Reboot pulses are only acted on while enabled.
type PowerMonitor struct {
	board    *board.Board
	notifier notify.Notifier

	rebootArgs   []string
	shutdownArgs []string
	launcher     func(executable string, args []string)

	waitTimeout time.Duration

	mu      sync.Mutex
	enabled bool
}

func NewPowerMonitor(b *board.Board, notifier notify.Notifier, config configuration.PowerButtonConfig) *PowerMonitor {
	return &PowerMonitor{
		board:        b,
		notifier:     notifier,
		rebootArgs:   strings.Fields(config.RebootCmd),
		shutdownArgs: strings.Fields(config.ShutdownCmd),
		launcher:     runPowerCommand,
		waitTimeout:  defaultButtonWaitTimeout,
		enabled:      config.Enabled,
	}
}

// Run watches the button line until ctx is cancelled. It always returns nil.
func (p *PowerMonitor) Run(ctx context.Context) error {
	ui.Info("Power button monitor started")
	for {
		event := p.board.WaitForButton(p.waitTimeout)

		select {
		case <-ctx.Done():
			ui.Debug("Power button monitor stopped")
			return nil
		default:
		}

		switch event {
		case board.EventReboot:
			p.notifier.PublishEvent(notify.EventRebootRequest)
			if p.ControlEnabled() {
				ui.Info("Power button reboot request, running reboot command")
				p.launch(p.rebootArgs)
			} else {
				ui.Info("Power button reboot request ignored, power button actions are disabled")
			}
		case board.EventShutdown:
			p.notifier.PublishEvent(notify.EventShutdownRequest)
			ui.Info("Power button shutdown request, running shutdown command")
			p.launch(p.shutdownArgs)
		}
	}
}

// SetButtonWaitTimeout adjusts the upper bound on a single button wait. Must
// be called before Run.
func (p *PowerMonitor) SetButtonWaitTimeout(timeout time.Duration) {
	p.waitTimeout = timeout
}

func (p *PowerMonitor) ControlEnabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

func (p *PowerMonitor) EnableControl() {
	p.setEnabled(true)
}

func (p *PowerMonitor) DisableControl() {
	p.setEnabled(false)
}

func (p *PowerMonitor) setEnabled(enabled bool) {
	p.mu.Lock()
	changed := p.enabled != enabled
	p.enabled = enabled
	p.mu.Unlock()
	if changed {
		p.notifier.PublishValue(notify.ValuePowerControlEnabled, enabled)
	}
}

func (p *PowerMonitor) launch(args []string) {
	if len(args) == 0 {
		ui.Warning("No power command configured, nothing to run")
		return
	}
	p.launcher(args[0], args[1:])
}

// runPowerCommand is the production launcher. Command failures are logged
// only; the monitor keeps watching the button either way.
func runPowerCommand(executable string, args []string) {
	if _, err := util.SafeCmdExecution(executable, args, powerCommandTimeout); err != nil {
		ui.Error("Power command %s failed: %v", executable, err)
	}
}
