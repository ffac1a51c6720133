package audit

import (
	"context"
	"sync"
	"time"

	"github.com/BruksfildServices01/housecall-booking/internal/logger"
)

type Event struct {
	Actor    string
	Action   string
	Entity   string
	EntityID *uint
	Metadata any
}

// Sink receives audit events. *Dispatcher is the production one.
type Sink interface {
	Dispatch(ev Event)
}

type Dispatcher struct {
	logger *Logger
	queue  chan Event
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(logger *Logger) *Dispatcher {
	d := &Dispatcher{
		logger: logger,
		queue:  make(chan Event, 100),
	}

	d.wg.Add(1)
	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.logger.Log(ctx, ev); err != nil {
			logger.Get().Warn("audit write failed", "action", ev.Action, "error", err)
		}
		cancel()
	}
}

// Dispatch drops the event when the queue is full; audit never fails a request.
func (d *Dispatcher) Dispatch(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	select {
	case d.queue <- ev:
	default:
		logger.Get().Warn("audit queue full, dropping event", "action", ev.Action)
	}
}

func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// Discard is a Sink that ignores everything.
type Discard struct{}

func (Discard) Dispatch(Event) {}

func ID(id uint) *uint { return &id }
