package statistics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const daemonSubsystem = "daemon"

// DaemonStats is the read-only slice of the daemon state the collector
// samples on every scrape.
type DaemonStats interface {
	Temperature() (float64, bool)
	TemperatureMovingAvg() float64
	FanSpeed() (int, bool)
	FanControlEnabled() bool
	PowerControlEnabled() bool
}

type DaemonCollector struct {
	daemon DaemonStats

	temperature    *prometheus.Desc
	temperatureAvg *prometheus.Desc
	fanSpeed       *prometheus.Desc
	fanControl     *prometheus.Desc
	powerControl   *prometheus.Desc
}

func NewDaemonCollector(daemon DaemonStats) *DaemonCollector {
	return &DaemonCollector{
		daemon: daemon,
		temperature: prometheus.NewDesc(prometheus.BuildFQName(namespace, daemonSubsystem, "temperature_celsius"),
			"Most recent chip temperature reading",
			nil, nil,
		),
		temperatureAvg: prometheus.NewDesc(prometheus.BuildFQName(namespace, daemonSubsystem, "temperature_avg_celsius"),
			"Moving average of recent chip temperature readings",
			nil, nil,
		),
		fanSpeed: prometheus.NewDesc(prometheus.BuildFQName(namespace, daemonSubsystem, "fan_speed_percent"),
			"Last fan speed successfully written to the board",
			nil, nil,
		),
		fanControl: prometheus.NewDesc(prometheus.BuildFQName(namespace, daemonSubsystem, "fan_control_enabled"),
			"Whether automatic fan control is enabled",
			nil, nil,
		),
		powerControl: prometheus.NewDesc(prometheus.BuildFQName(namespace, daemonSubsystem, "power_control_enabled"),
			"Whether power button actions are enabled",
			nil, nil,
		),
	}
}

func (collector *DaemonCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.temperature
	ch <- collector.temperatureAvg
	ch <- collector.fanSpeed
	ch <- collector.fanControl
	ch <- collector.powerControl
}

func (collector *DaemonCollector) Collect(ch chan<- prometheus.Metric) {
	if temperature, ok := collector.daemon.Temperature(); ok {
		ch <- prometheus.MustNewConstMetric(collector.temperature, prometheus.GaugeValue, temperature)
	}
	ch <- prometheus.MustNewConstMetric(collector.temperatureAvg, prometheus.GaugeValue, collector.daemon.TemperatureMovingAvg())
	if speed, ok := collector.daemon.FanSpeed(); ok {
		ch <- prometheus.MustNewConstMetric(collector.fanSpeed, prometheus.GaugeValue, float64(speed))
	}
	ch <- prometheus.MustNewConstMetric(collector.fanControl, prometheus.GaugeValue, boolToGauge(collector.daemon.FanControlEnabled()))
	ch <- prometheus.MustNewConstMetric(collector.powerControl, prometheus.GaugeValue, boolToGauge(collector.daemon.PowerControlEnabled()))
}

func boolToGauge(value bool) float64 {
	if value {
		return 1
	}
	return 0
}
