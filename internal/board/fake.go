package board

import (
	"errors"
	"sync"
	"time"
)

// FakeBus records register writes in place of a real I2C bus. Used by tests
// across packages, which is why it lives outside the _test files.
type FakeBus struct {
	mu         sync.Mutex
	writes     []RegisterWrite
	FailWrites bool
	closed     bool
}

type RegisterWrite struct {
	Register byte
	Value    byte
}

func (b *FakeBus) WriteRegister(register byte, value byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailWrites {
		return errors.New("simulated i2c write failure")
	}
	b.writes = append(b.writes, RegisterWrite{Register: register, Value: value})
	return nil
}

func (b *FakeBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *FakeBus) Writes() []RegisterWrite {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RegisterWrite{}, b.writes...)
}

func (b *FakeBus) LastWrite() (RegisterWrite, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.writes) == 0 {
		return RegisterWrite{}, false
	}
	return b.writes[len(b.writes)-1], true
}

func (b *FakeBus) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// FakeButtonPin replays scripted edges with real (small) delays so pulse
// durations measured by the board come out close to the scripted widths.
type FakeButtonPin struct {
	mu    sync.Mutex
	level bool
	edges []fakeEdge
}

type fakeEdge struct {
	after time.Duration
	level bool
}

// QueuePulse schedules a rising edge after delay followed by a falling edge
// width later.
func (p *FakeButtonPin) QueuePulse(delay time.Duration, width time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.edges = append(p.edges,
		fakeEdge{after: delay, level: true},
		fakeEdge{after: width, level: false},
	)
}

// QueueEdge schedules a single edge, e.g. a stray falling edge.
func (p *FakeButtonPin) QueueEdge(after time.Duration, level bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.edges = append(p.edges, fakeEdge{after: after, level: level})
}

func (p *FakeButtonPin) WaitForEdge(timeout time.Duration) bool {
	p.mu.Lock()
	if len(p.edges) == 0 {
		p.mu.Unlock()
		time.Sleep(timeout)
		return false
	}
	next := p.edges[0]
	if next.after > timeout {
		p.edges[0].after -= timeout
		p.mu.Unlock()
		time.Sleep(timeout)
		return false
	}
	p.edges = p.edges[1:]
	p.mu.Unlock()

	time.Sleep(next.after)

	p.mu.Lock()
	p.level = next.level
	p.mu.Unlock()
	return true
}

func (p *FakeButtonPin) Read() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}
