package booking

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/housecall-booking/internal/audit"
	domainBarber "github.com/BruksfildServices01/housecall-booking/internal/domain/barber"
	domain "github.com/BruksfildServices01/housecall-booking/internal/domain/booking"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
	"github.com/BruksfildServices01/housecall-booking/internal/notify"
)

type CancelInput struct {
	BookingID uint
	Reason    string
	By        string
}

type CancelBooking struct {
	repo     domain.Repository
	barbers  domainBarber.Repository
	audit    audit.Sink
	notifier Notifier
	opts     Options
}

func NewCancelBooking(
	repo domain.Repository,
	barbers domainBarber.Repository,
	auditSink audit.Sink,
	notifier Notifier,
	opts Options,
) *CancelBooking {
	if auditSink == nil {
		auditSink = audit.Discard{}
	}
	if notifier == nil {
		notifier = discardNotifier{}
	}
	return &CancelBooking{
		repo:     repo,
		barbers:  barbers,
		audit:    auditSink,
		notifier: notifier,
		opts:     opts.withDefaults(),
	}
}

func (uc *CancelBooking) Execute(ctx context.Context, in CancelInput) (*models.Booking, error) {
	in.Reason = strings.TrimSpace(in.Reason)
	in.By = strings.TrimSpace(in.By)

	var fields []domain.FieldError
	if len([]rune(in.Reason)) < 5 {
		fields = append(fields, domain.FieldError{Field: "cancellation_reason", Message: "reason must be at least 5 characters"})
	}
	if len([]rune(in.By)) < 2 {
		fields = append(fields, domain.FieldError{Field: "cancelled_by", Message: "cancelled_by must be at least 2 characters"})
	}
	if len(fields) > 0 {
		return nil, domain.ErrValidation(fields)
	}

	var b *models.Booking
	err := retrySerializable(ctx, "cancel_booking", func() error {
		return uc.repo.Transaction(ctx, func(tx domain.Repository) error {
			var err error
			b, err = getBooking(ctx, tx, in.BookingID)
			if err != nil {
				return err
			}

			now := uc.opts.Now().UTC()
			if err := domain.Cancel(b, in.Reason, in.By, now); err != nil {
				return err
			}
			b.UpdatedAt = now
			return tx.UpdateBooking(ctx, b)
		})
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		Actor:    in.By,
		Action:   "booking_cancelled",
		Entity:   "booking",
		EntityID: audit.ID(b.ID),
		Metadata: map[string]any{"reason": in.Reason},
	})

	if b.BarberID != nil {
		if barber, err := uc.barbers.Get(ctx, *b.BarberID); err == nil {
			uc.notifier.Dispatch(notify.BookingCancelled(barber, b, uc.opts.Location))
		}
	}

	return b, nil
}

func getBooking(ctx context.Context, repo domain.Repository, id uint) (*models.Booking, error) {
	b, err := repo.GetBooking(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound()
	}
	return b, err
}
