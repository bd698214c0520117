// Package sensors provides the chip temperature sources of the daemon. All
// sources fail soft: an unreadable sensor yields an error the control loop
// logs and skips, never a crash.
package sensors

import (
	"fmt"
	"sync"

	"github.com/asecurityteam/rolling"
	"github.com/clusterhack/argononed/internal/configuration"
	"github.com/clusterhack/argononed/internal/util"
)

type Sensor interface {
	GetId() string

	// GetValue returns the current temperature reading in degrees Celsius.
	GetValue() (float64, error)

	// Record appends a reading to the moving window.
	Record(value float64)
	// GetMovingAvg returns the windowed average of recorded readings,
	// reported via status and metrics; the control decision always uses the
	// raw reading.
	GetMovingAvg() float64
}

func NewSensor(config configuration.SensorConfig, windowSize int) (Sensor, error) {
	if config.Sysfs != nil {
		return &SysfsSensor{
			Path:   config.Sysfs.Path,
			window: newMovingWindow(windowSize),
		}, nil
	}

	if config.Cmd != nil {
		return &CmdSensor{
			Exec:   config.Cmd.Exec,
			Args:   config.Cmd.Args,
			window: newMovingWindow(windowSize),
		}, nil
	}

	return nil, fmt.Errorf("no matching sensor type in sensor configuration")
}

type movingWindow struct {
	mu     sync.Mutex
	window *rolling.PointPolicy
	count  int
	size   int
}

func newMovingWindow(size int) *movingWindow {
	if size <= 0 {
		size = 1
	}
	return &movingWindow{
		window: util.CreateRollingWindow(size),
		size:   size,
	}
}

func (w *movingWindow) Record(value float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.window.Append(value)
	if w.count < w.size {
		w.count++
	}
}

func (w *movingWindow) GetMovingAvg() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.count == 0 {
		return 0
	}
	// rolling.Avg divides by the bucket count of the window, which skews
	// the result until the window has been filled once
	if w.count < w.size {
		return util.GetWindowSum(w.window) / float64(w.count)
	}
	return util.GetWindowAvg(w.window)
}
