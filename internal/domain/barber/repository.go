package barber

import (
	"context"
	"time"

	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

type Stats struct {
	BarberID        uint    `json:"barber_id"`
	TotalBookings   int64   `json:"total_bookings"`
	Completed       int64   `json:"completed_bookings"`
	Cancelled       int64   `json:"cancelled_bookings"`
	Pending         int64   `json:"pending_bookings"`
	CompletedEarned float64 `json:"completed_earnings"`
	TotalServices   int     `json:"total_services"`
	TotalEarnings   float64 `json:"total_earnings"`
}

// DailySummary aggregates one barber's bookings for one day.
type DailySummary struct {
	Barber    models.Barber
	Bookings  []models.Booking
	Completed int
	Cancelled int
	Earnings  float64
}

type Repository interface {
	List(ctx context.Context, includeInactive bool) ([]models.Barber, error)
	ListEligible(ctx context.Context) ([]models.Barber, error)
	Get(ctx context.Context, id uint) (*models.Barber, error)
	Create(ctx context.Context, b *models.Barber) error
	Update(ctx context.Context, b *models.Barber) error
	Delete(ctx context.Context, id uint) error
	CountOccupyingBookings(ctx context.Context, barberID uint) (int64, error)
	Stats(ctx context.Context, barberID uint) (*Stats, error)

	// SaveBlockState persists the block columns only when the row is still in
	// the expected blocked state, so concurrent admins cannot double-apply.
	SaveBlockState(ctx context.Context, b *models.Barber, expectBlocked bool) (bool, error)

	ListExpiredTemporaryBlocks(ctx context.Context, now time.Time) ([]models.Barber, error)
	// ClearExpiredBlock unblocks one barber atomically if its temporary block
	// has expired at now. It reports whether a row changed.
	ClearExpiredBlock(ctx context.Context, barberID uint, now time.Time) (bool, error)

	ListExpiringTemporaryBlocks(ctx context.Context, now time.Time, within time.Duration) ([]models.Barber, error)
	// MarkExpiryWarned records that the current block was warned about, once.
	MarkExpiryWarned(ctx context.Context, barberID uint, at time.Time) (bool, error)

	DailySummaries(ctx context.Context, from, to time.Time) ([]DailySummary, error)
}
