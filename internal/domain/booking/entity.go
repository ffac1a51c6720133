package booking

import (
	"time"

	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Cancel sets the cancellation fields once; a cancelled booking stays cancelled.
func Cancel(b *models.Booking, reason, by string, now time.Time) error {
	current := Status(b.Status)
	if current == StatusCancelled {
		return httperr.Validation(CodeAlreadyCancelled, "booking is already cancelled")
	}
	if current.IsTerminal() {
		return httperr.Validation(CodeCannotCancelFinal, "a "+b.Status+" booking cannot be cancelled")
	}

	b.Status = string(StatusCancelled)
	b.CancelledAt = &now
	b.CancellationReason = reason
	b.CancelledBy = by
	return nil
}

// Transition moves a booking to next. Cancellation must go through Cancel.
func Transition(b *models.Booking, next Status, now time.Time) error {
	if next == StatusCancelled {
		return ErrInvalidTransition("use the cancel endpoint to cancel a booking")
	}
	if err := ValidateTransition(Status(b.Status), next); err != nil {
		return err
	}

	b.Status = string(next)
	if next == StatusCompleted {
		b.CompletedAt = &now
	}
	return nil
}

func Occupies(b *models.Booking) bool {
	return !Status(b.Status).IsTerminal()
}

func WindowOf(b *models.Booking) Window {
	return Window{Start: b.WindowStart, End: b.WindowEnd}
}
