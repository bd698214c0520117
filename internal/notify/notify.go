// Package notify funnels daemon state changes and button events to attached
// sinks. Publishing never blocks the control loops; a slow sink drops
// messages instead of stalling the publisher.
package notify

import (
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"
)

const (
	ValueTemperature         = "temperature"
	ValueFanSpeed            = "fan_speed"
	ValueFanControlEnabled   = "fan_control_enabled"
	ValuePowerControlEnabled = "power_control_enabled"

	EventShutdownRequest = "shutdown_request"
	EventRebootRequest   = "reboot_request"
	EventLUTChanged      = "lut_changed"
)

// Message is a single notification. Value carries the new value for value
// notifications and is nil for events.
type Message struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value,omitempty"`
	Event bool        `json:"event,omitempty"`
}

type Notifier interface {
	PublishValue(name string, value interface{})
	PublishEvent(name string)
}

type Sink interface {
	Notify(message Message)
}

const subscriptionBufferSize = 64

// The messages channel is never closed; a publisher may still hold the
// subscription from an iteration snapshot after it has been detached.
// Stopping is signalled through a separate channel instead.
type subscription struct {
	messages chan Message
	stopping chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Hub fans messages out to registered sinks. Each sink gets its own buffered
// queue drained by a dedicated goroutine, so one stuck sink cannot delay the
// others.
type Hub struct {
	subscriptions cmap.ConcurrentMap[string, *subscription]
}

func NewHub() *Hub {
	return &Hub{
		subscriptions: cmap.New[*subscription](),
	}
}

// Attach registers a sink under the given id, replacing any sink previously
// registered under the same id.
func (hub *Hub) Attach(id string, sink Sink) {
	sub := &subscription{
		messages: make(chan Message, subscriptionBufferSize),
		stopping: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go func() {
		defer close(sub.done)
		for {
			select {
			case message := <-sub.messages:
				sink.Notify(message)
			case <-sub.stopping:
				// deliver what was queued before the detach
				for {
					select {
					case message := <-sub.messages:
						sink.Notify(message)
					default:
						return
					}
				}
			}
		}
	}()

	if previous, ok := hub.subscriptions.Get(id); ok {
		previous.stop()
	}
	hub.subscriptions.Set(id, sub)
}

// Detach removes the sink registered under id and waits for its queued
// messages to drain.
func (hub *Hub) Detach(id string) {
	if sub, ok := hub.subscriptions.Pop(id); ok {
		sub.stop()
	}
}

func (hub *Hub) PublishValue(name string, value interface{}) {
	hub.publish(Message{Name: name, Value: value})
}

func (hub *Hub) PublishEvent(name string) {
	hub.publish(Message{Name: name, Event: true})
}

func (hub *Hub) publish(message Message) {
	for item := range hub.subscriptions.IterBuffered() {
		select {
		case <-item.Val.stopping:
			// detached while iterating
		case item.Val.messages <- message:
		default:
			// sink is not keeping up, drop rather than block the publisher
		}
	}
}

// Close detaches all sinks and waits for their queues to drain.
func (hub *Hub) Close() {
	for _, id := range hub.subscriptions.Keys() {
		hub.Detach(id)
	}
}

func (sub *subscription) stop() {
	sub.stopOnce.Do(func() {
		close(sub.stopping)
	})
	<-sub.done
}

// ChanSink exposes notifications as a channel, used by the streaming API
// endpoint. Messages that do not fit the channel buffer are dropped.
type ChanSink struct {
	C chan Message
}

func NewChanSink(buffer int) *ChanSink {
	return &ChanSink{C: make(chan Message, buffer)}
}

func (sink *ChanSink) Notify(message Message) {
	select {
	case sink.C <- message:
	default:
	}
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(message Message)

func (f SinkFunc) Notify(message Message) {
	f(message)
}
