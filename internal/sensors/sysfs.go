package sensors

import (
	"fmt"

	"github.com/clusterhack/argononed/internal/util"
)

// SysfsSensor reads the SoC temperature from a thermal zone file containing
// milli-degrees Celsius, e.g. /sys/class/thermal/thermal_zone0/temp.
type SysfsSensor struct {
	Path string `json:"path"`

	window *movingWindow
}

func (sensor *SysfsSensor) GetId() string {
	return "sysfs:" + sensor.Path
}

func (sensor *SysfsSensor) GetValue() (float64, error) {
	milliDegrees, err := util.ReadIntFromFile(sensor.Path)
	if err != nil {
		return 0, fmt.Errorf("read thermal zone %s: %w", sensor.Path, err)
	}
	return float64(milliDegrees) / 1000.0, nil
}

func (sensor *SysfsSensor) Record(value float64) {
	sensor.window.Record(value)
}

func (sensor *SysfsSensor) GetMovingAvg() float64 {
	return sensor.window.GetMovingAvg()
}
