package booking

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/housecall-booking/internal/audit"
	domain "github.com/BruksfildServices01/housecall-booking/internal/domain/booking"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

type UpdateStatus struct {
	repo  domain.Repository
	audit audit.Sink
	opts  Options
}

func NewUpdateStatus(repo domain.Repository, auditSink audit.Sink, opts Options) *UpdateStatus {
	if auditSink == nil {
		auditSink = audit.Discard{}
	}
	return &UpdateStatus{repo: repo, audit: auditSink, opts: opts.withDefaults()}
}

// Execute applies an admin status change. Completion credits the barber's
// counters in the same transaction.
func (uc *UpdateStatus) Execute(ctx context.Context, bookingID uint, status, actor string) (*models.Booking, error) {
	next := domain.Status(strings.ToLower(strings.TrimSpace(status)))
	if !next.Valid() {
		return nil, domain.ErrInvalidStatus(status)
	}

	var (
		b        *models.Booking
		previous string
	)
	err := retrySerializable(ctx, "update_booking_status", func() error {
		return uc.repo.Transaction(ctx, func(tx domain.Repository) error {
			var err error
			b, err = getBooking(ctx, tx, bookingID)
			if err != nil {
				return err
			}

			previous = b.Status
			now := uc.opts.Now().UTC()
			if err := domain.Transition(b, next, now); err != nil {
				return err
			}
			b.UpdatedAt = now
			if err := tx.UpdateBooking(ctx, b); err != nil {
				return err
			}

			if next == domain.StatusCompleted && b.BarberID != nil {
				return tx.RecordCompletion(ctx, *b.BarberID, b.ServicePrice)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		Actor:    actor,
		Action:   "booking_status_changed",
		Entity:   "booking",
		EntityID: audit.ID(b.ID),
		Metadata: map[string]any{"from": previous, "to": b.Status},
	})

	return b, nil
}
