package booking

import "fmt"

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

type PaymentStatus string

const (
	PaymentUnpaid    PaymentStatus = "unpaid"
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

// TerminalStatuses never occupy a slot.
var TerminalStatuses = []string{
	string(StatusCancelled),
	string(StatusCompleted),
	string(StatusNoShow),
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted || s == StatusNoShow
}

func InitialStatus() Status {
	return StatusPending
}

// ===============================
// Transitions
// ===============================

var transitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow},
	StatusInProgress: {StatusCompleted, StatusCancelled, StatusNoShow},
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ValidateTransition(from, to Status) error {
	if !to.Valid() {
		return ErrInvalidStatus(string(to))
	}
	if !CanTransition(from, to) {
		return ErrInvalidTransition(fmt.Sprintf("cannot change booking from %s to %s", from, to))
	}
	return nil
}
