package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

type ListFilter struct {
	Status   string
	BarberID *uint
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

type Overview struct {
	Total      int64            `json:"total_bookings"`
	ByStatus   map[string]int64 `json:"by_status"`
	Today      int64            `json:"today_bookings"`
	Upcoming   int64            `json:"upcoming_bookings"`
	Revenue    float64          `json:"completed_revenue"`
	AvgPrice   float64          `json:"average_price"`
	Unassigned int64            `json:"unassigned_bookings"`
}

type Repository interface {
	ConflictFinder

	// Transaction runs fn against a repository bound to one database transaction.
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	// -------- Barber pool --------
	EligibleBarbers(ctx context.Context) ([]models.Barber, error)
	FindEligibleBarber(ctx context.Context, name, phone string) (*models.Barber, error)
	LockBarber(ctx context.Context, barberID uint) error

	// -------- Booking --------
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	UpdateBooking(ctx context.Context, b *models.Booking) error
	ListBookings(ctx context.Context, f ListFilter) ([]models.Booking, int64, error)
	ListOccupyingBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error)
	Overview(ctx context.Context, dayStart, dayEnd, now time.Time) (*Overview, error)

	// -------- Side tables --------
	UpsertClient(ctx context.Context, b *models.Booking, now time.Time) (*models.Client, error)
	RecordCompletion(ctx context.Context, barberID uint, price float64) error
}
