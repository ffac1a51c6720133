package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
	"github.com/BruksfildServices01/housecall-booking/internal/logger"
	"github.com/BruksfildServices01/housecall-booking/internal/notify"
)

const maxSerializationRetries = 3

// Notifier queues an email without waiting for delivery.
type Notifier interface {
	Dispatch(msg notify.Message)
}

type discardNotifier struct{}

func (discardNotifier) Dispatch(notify.Message) {}

// Options carries the business rules the booking use cases share.
type Options struct {
	Location          *time.Location
	ServiceDuration   time.Duration
	TravelBuffer      time.Duration
	EnforceGlobalSlot bool
	// SerializeWrites guards the create path with an in-process mutex.
	// Needed on SQLite, where there is no row locking.
	SerializeWrites bool
	Now             func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.ServiceDuration <= 0 {
		o.ServiceDuration = time.Hour
	}
	if o.TravelBuffer < 0 {
		o.TravelBuffer = 0
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// retrySerializable reruns fn while the database aborts it with a
// serialization failure or deadlock, up to maxSerializationRetries times.
// fn must start its own transaction.
func retrySerializable(ctx context.Context, op string, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !httperr.IsSerializationFailure(err) || attempt >= maxSerializationRetries {
			return err
		}
		logger.WithContext(ctx).Info("retrying after serialization failure", "op", op, "attempt", attempt+1)
	}
}
