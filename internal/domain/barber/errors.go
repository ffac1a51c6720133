package barber

import (
	"fmt"

	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
)

const (
	CodeNotFound              = "BARBER_NOT_FOUND"
	CodeAlreadyBlocked        = "BARBER_ALREADY_BLOCKED"
	CodeNotBlocked            = "BARBER_NOT_BLOCKED"
	CodeBlockReasonRequired   = "BLOCK_REASON_REQUIRED"
	CodeBlockDurationRequired = "BLOCK_DURATION_REQUIRED"
	CodeBlockDurationTooLong  = "BLOCK_DURATION_TOO_LONG"
	CodeInvalidBlockType      = "INVALID_BLOCK_TYPE"
	CodeAlreadyExists         = "BARBER_ALREADY_EXISTS"
	CodeHasActiveBookings     = "BARBER_HAS_ACTIVE_BOOKINGS"
	CodeValidation            = "VALIDATION_ERROR"
)

func ErrNotFound() error {
	return httperr.NotFoundErr(CodeNotFound, "barber not found")
}

func ErrAlreadyBlocked() error {
	return httperr.Validation(CodeAlreadyBlocked, "barber is already blocked")
}

func ErrNotBlocked() error {
	return httperr.Validation(CodeNotBlocked, "barber is not blocked")
}

func ErrBlockReasonRequired() error {
	return httperr.Validation(CodeBlockReasonRequired, "block reason is required")
}

func ErrBlockDurationRequired() error {
	return httperr.Validation(CodeBlockDurationRequired, "temporary blocks need a positive block_duration_hours")
}

func ErrBlockDurationTooLong() error {
	return httperr.Validation(CodeBlockDurationTooLong,
		fmt.Sprintf("block_duration_hours must be at most %d; use a permanent block instead", MaxBlockHours))
}

func ErrInvalidBlockType(typ string) error {
	return httperr.Validation(CodeInvalidBlockType, "block_type must be temporary or permanent, got "+typ)
}

func ErrAlreadyExists() error {
	return httperr.Conflict(CodeAlreadyExists, "a barber with this phone or badge number already exists")
}

func ErrHasActiveBookings(n int64) error {
	return httperr.Validation(CodeHasActiveBookings, "barber has active bookings").
		WithDetails(map[string]int64{"active_bookings": n})
}
