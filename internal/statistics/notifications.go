package statistics

import (
	"github.com/clusterhack/argononed/internal/notify"
	"github.com/prometheus/client_golang/prometheus"
)

// NotificationCollector counts notifications by name. Attached to the
// notification hub as a regular sink.
type NotificationCollector struct {
	counter *prometheus.CounterVec
}

func NewNotificationCollector() *NotificationCollector {
	return &NotificationCollector{
		counter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: daemonSubsystem,
			Name:      "notifications_total",
			Help:      "Number of notifications published, by name",
		}, []string{"name"}),
	}
}

func (collector *NotificationCollector) Notify(message notify.Message) {
	collector.counter.WithLabelValues(message.Name).Inc()
}

func (collector *NotificationCollector) Describe(ch chan<- *prometheus.Desc) {
	collector.counter.Describe(ch)
}

func (collector *NotificationCollector) Collect(ch chan<- prometheus.Metric) {
	collector.counter.Collect(ch)
}
