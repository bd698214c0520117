package board

import (
	"fmt"
	"time"

	"github.com/clusterhack/argononed/internal/configuration"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Open initializes the periph host, opens the configured I2C bus and button
// pin and returns a ready Board.
func Open(config configuration.BoardConfig) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(config.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %s: %w", config.I2CBus, err)
	}

	pin := gpioreg.ByName(config.ButtonPin)
	if pin == nil {
		_ = bus.Close()
		return nil, fmt.Errorf("button pin %s not found", config.ButtonPin)
	}
	// pull down to match the board's idle-low sense line, both edges since
	// the pulse is decoded from the rising/falling pair
	if err := pin.In(gpio.PullDown, gpio.BothEdges); err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("configure button pin %s: %w", config.ButtonPin, err)
	}

	dev := &i2c.Dev{Bus: bus, Addr: config.I2CAddress}
	return New(
		&i2cBus{dev: dev, closer: bus},
		&gpioButton{pin: pin},
	), nil
}

type i2cBus struct {
	dev    *i2c.Dev
	closer i2c.BusCloser
}

func (b *i2cBus) WriteRegister(register byte, value byte) error {
	return b.dev.Tx([]byte{register, value}, nil)
}

func (b *i2cBus) Close() error {
	return b.closer.Close()
}

type gpioButton struct {
	pin gpio.PinIO
}

func (p *gpioButton) WaitForEdge(timeout time.Duration) bool {
	return p.pin.WaitForEdge(timeout)
}

func (p *gpioButton) Read() bool {
	return p.pin.Read() == gpio.High
}
