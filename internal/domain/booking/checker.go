package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/housecall-booking/internal/models"
	"github.com/BruksfildServices01/housecall-booking/internal/timezone"
)

type scopeKind int

const (
	scopeGlobal scopeKind = iota
	scopeCustomer
	scopeBarber
)

// Scope selects which existing bookings a candidate time is checked against.
type Scope struct {
	kind          scopeKind
	barberID      uint
	customerPhone string
}

func GlobalScope() Scope { return Scope{kind: scopeGlobal} }

func CustomerScope(phone string) Scope {
	return Scope{kind: scopeCustomer, customerPhone: phone}
}

func BarberScope(barberID uint) Scope {
	return Scope{kind: scopeBarber, barberID: barberID}
}

func (s Scope) String() string {
	switch s.kind {
	case scopeCustomer:
		return "customer"
	case scopeBarber:
		return "barber"
	default:
		return "global"
	}
}

// ConflictFinder returns the first non-terminal booking matching the query,
// or nil when there is none.
type ConflictFinder interface {
	FindOverlapping(ctx context.Context, barberID *uint, w Window) (*models.Booking, error)
	FindCustomerBookingBetween(ctx context.Context, phone string, from, to time.Time) (*models.Booking, error)
}

type Checker struct {
	finder ConflictFinder
	policy WindowPolicy
	loc    *time.Location
}

func NewChecker(finder ConflictFinder, policy WindowPolicy, loc *time.Location) *Checker {
	if loc == nil {
		loc = timezone.Location(timezone.DefaultTimezone)
	}
	return &Checker{finder: finder, policy: policy, loc: loc}
}

func (c *Checker) Policy() WindowPolicy { return c.policy }

// WithFinder returns a checker bound to another finder, typically a transaction.
func (c *Checker) WithFinder(finder ConflictFinder) *Checker {
	return &Checker{finder: finder, policy: c.policy, loc: c.loc}
}

// HasConflict returns the first booking that blocks candidate in scope.
// The customer scope is per calendar day in the business timezone.
func (c *Checker) HasConflict(ctx context.Context, candidate time.Time, scope Scope) (*models.Booking, error) {
	switch scope.kind {
	case scopeCustomer:
		from, to := timezone.DayBounds(candidate, c.loc)
		return c.finder.FindCustomerBookingBetween(ctx, scope.customerPhone, from.UTC(), to.UTC())
	case scopeBarber:
		id := scope.barberID
		return c.finder.FindOverlapping(ctx, &id, c.utcWindow(candidate))
	default:
		return c.finder.FindOverlapping(ctx, nil, c.utcWindow(candidate))
	}
}

func (c *Checker) utcWindow(candidate time.Time) Window {
	w := c.policy.For(candidate)
	return Window{Start: w.Start.UTC(), End: w.End.UTC()}
}
