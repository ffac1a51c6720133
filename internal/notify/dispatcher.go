package notify

import (
	"context"
	"sync"
	"time"

	"github.com/BruksfildServices01/housecall-booking/internal/logger"
	"github.com/BruksfildServices01/housecall-booking/internal/metrics"
)

const defaultQueueSize = 100

// Dispatcher delivers emails on a background worker. Callers enqueue after
// their transaction commits and never wait for delivery.
type Dispatcher struct {
	mailer  Mailer
	timeout time.Duration
	queue   chan Message
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(mailer Mailer, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	d := &Dispatcher{
		mailer:  mailer,
		timeout: timeout,
		queue:   make(chan Message, defaultQueueSize),
	}

	d.wg.Add(1)
	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.mailer.Send(ctx, msg); err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		logger.Get().Warn("email delivery failed",
			"to", msg.To,
			"subject", msg.Subject,
			"error", err,
		)
		return
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
}

// Dispatch never blocks; when the queue is full the message is dropped.
func (d *Dispatcher) Dispatch(msg Message) {
	if msg.To == "" {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	select {
	case d.queue <- msg:
	default:
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		logger.Get().Warn("email queue full, dropping message", "to", msg.To, "subject", msg.Subject)
	}
}

// Close stops accepting messages and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
