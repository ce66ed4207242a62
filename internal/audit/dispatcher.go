package audit

import (
	"context"
	"sync"
	"time"

	"github.com/primerdw/bartender-api/internal/logger"
	"go.uber.org/zap"
)

// Dispatcher hands events to a Publisher from a single background
// goroutine so request handlers never wait on the sink. Events are dropped
// when the buffer is full.
type Dispatcher struct {
	pub     Publisher
	log     *zap.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	ch     chan Event
	done   chan struct{}
}

func NewDispatcher(pub Publisher, log *zap.Logger, buffer int, timeout time.Duration) *Dispatcher {
	if buffer <= 0 {
		buffer = 1024
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if log == nil {
		log = logger.Log
	}
	d := &Dispatcher{
		pub:     pub,
		log:     log,
		timeout: timeout,
		ch:      make(chan Event, buffer),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Record queues ev. It reports false when the event was dropped.
func (d *Dispatcher) Record(ev Event) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	select {
	case d.ch <- ev:
		return true
	default:
		d.log.Warn("audit buffer full, event dropped", zap.String("resource", ev.Resource))
		return false
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.ch {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.pub.Publish(ctx, ev); err != nil {
			d.log.Error("audit publish failed",
				zap.String("event_id", ev.ID),
				zap.String("resource", ev.Resource),
				zap.Error(err))
		}
		cancel()
	}
}

// Close drains queued events and closes the publisher.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.ch)
	d.mu.Unlock()

	<-d.done
	return d.pub.Close()
}
