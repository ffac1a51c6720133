package booking

import (
	"time"

	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeOutsideHours      = "BOOKING_OUTSIDE_HOURS"
	CodeTimeSlotConflict  = "TIME_SLOT_CONFLICT"
	CodeCustomerDouble    = "CUSTOMER_DOUBLE_BOOKING"
	CodeBarberConflict    = "BARBER_SCHEDULING_CONFLICT"
	CodeAllBarbersBusy    = "ALL_BARBERS_BUSY"
	CodeNoBarbers         = "NO_BARBERS_AVAILABLE"
	CodeNotFound          = "BOOKING_NOT_FOUND"
	CodeInvalidStatus     = "INVALID_STATUS"
	CodeInvalidTransition = "INVALID_STATUS_TRANSITION"
	CodeAlreadyCancelled  = "BOOKING_ALREADY_CANCELLED"
	CodeCannotCancelFinal = "BOOKING_CANNOT_BE_CANCELLED"
)

// ConflictSummary is what a caller gets back to reschedule around.
type ConflictSummary struct {
	BookingID         uint      `json:"booking_id"`
	PreferredDatetime time.Time `json:"preferred_datetime"`
	WindowStart       time.Time `json:"window_start"`
	WindowEnd         time.Time `json:"window_end"`
	BarberName        string    `json:"barber_name,omitempty"`
	Status            string    `json:"status"`
}

func Summarize(b *models.Booking) *ConflictSummary {
	if b == nil {
		return nil
	}
	return &ConflictSummary{
		BookingID:         b.ID,
		PreferredDatetime: b.PreferredDatetime,
		WindowStart:       b.WindowStart,
		WindowEnd:         b.WindowEnd,
		BarberName:        b.BarberName,
		Status:            b.Status,
	}
}

type conflictDetails struct {
	Conflict *ConflictSummary `json:"conflicting_booking,omitempty"`
}

func ErrTimeSlotConflict(existing *models.Booking) error {
	return httperr.Conflict(CodeTimeSlotConflict, "this time slot is already booked").
		WithDetails(conflictDetails{Conflict: Summarize(existing)})
}

func ErrCustomerDoubleBooking(existing *models.Booking) error {
	return httperr.Conflict(CodeCustomerDouble, "customer already has a booking on this day").
		WithDetails(conflictDetails{Conflict: Summarize(existing)})
}

func ErrBarberConflict(existing *models.Booking) error {
	return httperr.Conflict(CodeBarberConflict, "barber is not available at the requested time").
		WithDetails(conflictDetails{Conflict: Summarize(existing)})
}

func ErrAllBarbersBusy(last *models.Booking) error {
	return httperr.Conflict(CodeAllBarbersBusy, "all barbers are busy at the requested time").
		WithDetails(conflictDetails{Conflict: Summarize(last)})
}

func ErrNoBarbers() error {
	return httperr.Capacity(CodeNoBarbers, "no barbers are currently available")
}

func ErrNotFound() error {
	return httperr.NotFoundErr(CodeNotFound, "booking not found")
}

func ErrInvalidStatus(status string) error {
	return httperr.Validation(CodeInvalidStatus, "unknown booking status "+status)
}

func ErrInvalidTransition(msg string) error {
	return httperr.Validation(CodeInvalidTransition, msg)
}

type OutsideHoursDetails struct {
	Reason   string     `json:"reason"`
	NextOpen *time.Time `json:"next_open,omitempty"`
}

func ErrOutsideHours(reason string, nextOpen *time.Time) error {
	return httperr.Validation(CodeOutsideHours, reason).
		WithDetails(OutsideHoursDetails{Reason: reason, NextOpen: nextOpen})
}

// FieldError lists the failing input fields of a validation error.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func ErrValidation(fields []FieldError) error {
	return httperr.Validation(CodeValidation, "invalid booking request").
		WithDetails(map[string]any{"fields": fields})
}
