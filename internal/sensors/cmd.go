package sensors

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/clusterhack/argononed/internal/util"
)

const cmdSensorTimeout = 2 * time.Second

// CmdSensor reads the temperature from an external command, e.g.
// "vcgencmd measure_temp". Accepts either a bare number or the vcgencmd
// output format "temp=48.3'C".
type CmdSensor struct {
	Exec string   `json:"exec"`
	Args []string `json:"args"`

	window *movingWindow
}

func (sensor *CmdSensor) GetId() string {
	return "cmd:" + sensor.Exec
}

func (sensor *CmdSensor) GetValue() (float64, error) {
	output, err := util.SafeCmdExecution(sensor.Exec, sensor.Args, cmdSensorTimeout)
	if err != nil {
		return 0, fmt.Errorf("sensor command failed: %w", err)
	}
	return parseTemperatureOutput(output)
}

func parseTemperatureOutput(output string) (float64, error) {
	text := strings.TrimSpace(output)
	if after, found := strings.CutPrefix(text, "temp="); found {
		text = strings.TrimSuffix(after, "'C")
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse temperature from %q: %w", output, err)
	}
	return value, nil
}

func (sensor *CmdSensor) Record(value float64) {
	sensor.window.Record(value)
}

func (sensor *CmdSensor) GetMovingAvg() float64 {
	return sensor.window.GetMovingAvg()
}
