package sensors

import (
	"errors"
	"sync"
)

// FakeSensor replays a scripted sequence of readings. Once the sequence is
// exhausted the last reading repeats. A nil entry simulates a read failure.
type FakeSensor struct {
	mu       sync.Mutex
	readings []*float64
	index    int
	window   *movingWindow
}

func NewFakeSensor(readings ...*float64) *FakeSensor {
	return &FakeSensor{
		readings: readings,
		window:   newMovingWindow(10),
	}
}

// Reading is a convenience for building FakeSensor scripts.
func Reading(value float64) *float64 {
	return &value
}

func (sensor *FakeSensor) GetId() string {
	return "fake"
}

func (sensor *FakeSensor) GetValue() (float64, error) {
	sensor.mu.Lock()
	defer sensor.mu.Unlock()

	if len(sensor.readings) == 0 {
		return 0, errors.New("no readings scripted")
	}
	reading := sensor.readings[sensor.index]
	if sensor.index < len(sensor.readings)-1 {
		sensor.index++
	}
	if reading == nil {
		return 0, errors.New("simulated sensor failure")
	}
	return *reading, nil
}

func (sensor *FakeSensor) Record(value float64) {
	sensor.window.Record(value)
}

func (sensor *FakeSensor) GetMovingAvg() float64 {
	return sensor.window.GetMovingAvg()
}
