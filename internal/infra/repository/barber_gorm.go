package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	domainBarber "github.com/BruksfildServices01/housecall-booking/internal/domain/barber"
	domainBooking "github.com/BruksfildServices01/housecall-booking/internal/domain/booking"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

type BarberGormRepository struct {
	db *gorm.DB
}

func NewBarberGormRepository(db *gorm.DB) *BarberGormRepository {
	return &BarberGormRepository{db: db}
}

// --------------------------------------------------
// Roster
// --------------------------------------------------

func (r *BarberGormRepository) List(ctx context.Context, includeInactive bool) ([]models.Barber, error) {
	q := r.db.WithContext(ctx).Order("badge_number ASC, id ASC")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}

	var barbers []models.Barber
	if err := q.Find(&barbers).Error; err != nil {
		return nil, err
	}
	return barbers, nil
}

func (r *BarberGormRepository) ListEligible(ctx context.Context) ([]models.Barber, error) {
	var barbers []models.Barber
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND is_blocked = ?", true, false).
		Order("badge_number ASC, id ASC").
		Find(&barbers).Error; err != nil {
		return nil, err
	}
	return barbers, nil
}

func (r *BarberGormRepository) Get(ctx context.Context, id uint) (*models.Barber, error) {
	var b models.Barber
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BarberGormRepository) Create(ctx context.Context, b *models.Barber) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BarberGormRepository) Update(ctx context.Context, b *models.Barber) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *BarberGormRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Barber{}, id).Error
}

func (r *BarberGormRepository) CountOccupyingBookings(ctx context.Context, barberID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("barber_id = ? AND status NOT IN ?", barberID, domainBooking.TerminalStatuses).
		Count(&count).Error
	return count, err
}

func (r *BarberGormRepository) Stats(ctx context.Context, barberID uint) (*domainBarber.Stats, error) {
	b, err := r.Get(ctx, barberID)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Status string
		N      int64
		Amount float64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("status, COUNT(*) AS n, COALESCE(SUM(service_price), 0) AS amount").
		Where("barber_id = ?", barberID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := &domainBarber.Stats{
		BarberID:      b.ID,
		TotalServices: b.TotalServices,
		TotalEarnings: b.TotalEarnings,
	}
	for _, row := range rows {
		stats.TotalBookings += row.N
		switch domainBooking.Status(row.Status) {
		case domainBooking.StatusCompleted:
			stats.Completed = row.N
			stats.CompletedEarned = row.Amount
		case domainBooking.StatusCancelled:
			stats.Cancelled = row.N
		case domainBooking.StatusPending, domainBooking.StatusInProgress:
			stats.Pending += row.N
		}
	}
	return stats, nil
}

// --------------------------------------------------
// Block state
// --------------------------------------------------

func blockColumns(b *models.Barber) map[string]any {
	return map[string]any{
		"is_blocked":             b.IsBlocked,
		"block_reason":           b.BlockReason,
		"block_type":             b.BlockType,
		"blocked_by":             b.BlockedBy,
		"blocked_at":             utcPtr(b.BlockedAt),
		"block_expires_at":       utcPtr(b.BlockExpiresAt),
		"block_category":         b.BlockCategory,
		"block_severity":         b.BlockSeverity,
		"block_expiry_warned_at": utcPtr(b.BlockExpiryWarnedAt),
	}
}

func (r *BarberGormRepository) SaveBlockState(
	ctx context.Context,
	b *models.Barber,
	expectBlocked bool,
) (bool, error) {

	res := r.db.WithContext(ctx).
		Model(&models.Barber{}).
		Where("id = ? AND is_blocked = ?", b.ID, expectBlocked).
		Updates(blockColumns(b))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *BarberGormRepository) ListExpiredTemporaryBlocks(
	ctx context.Context,
	now time.Time,
) ([]models.Barber, error) {

	var barbers []models.Barber
	err := r.db.WithContext(ctx).
		Where("is_blocked = ? AND block_type = ? AND block_expires_at <= ?",
			true, domainBarber.BlockTypeTemporary, now.UTC()).
		Order("block_expires_at ASC").
		Find(&barbers).Error
	return barbers, err
}

func (r *BarberGormRepository) ClearExpiredBlock(
	ctx context.Context,
	barberID uint,
	now time.Time,
) (bool, error) {

	cleared := &models.Barber{}
	domainBarber.Apply(cleared, domainBarber.Unblocked{})

	res := r.db.WithContext(ctx).
		Model(&models.Barber{}).
		Where("id = ? AND is_blocked = ? AND block_type = ? AND block_expires_at <= ?",
			barberID, true, domainBarber.BlockTypeTemporary, now.UTC()).
		Updates(blockColumns(cleared))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListExpiringTemporaryBlocks returns temporary blocks that lapse within
// (now, now+within] and have not been warned about yet.
func (r *BarberGormRepository) ListExpiringTemporaryBlocks(
	ctx context.Context,
	now time.Time,
	within time.Duration,
) ([]models.Barber, error) {

	var barbers []models.Barber
	err := r.db.WithContext(ctx).
		Where("is_blocked = ? AND block_type = ? AND block_expires_at > ? AND block_expires_at <= ? AND block_expiry_warned_at IS NULL",
			true, domainBarber.BlockTypeTemporary, now.UTC(), now.Add(within).UTC()).
		Order("block_expires_at ASC").
		Find(&barbers).Error
	return barbers, err
}

func (r *BarberGormRepository) MarkExpiryWarned(
	ctx context.Context,
	barberID uint,
	at time.Time,
) (bool, error) {

	res := r.db.WithContext(ctx).
		Model(&models.Barber{}).
		Where("id = ? AND is_blocked = ? AND block_expiry_warned_at IS NULL", barberID, true).
		Update("block_expiry_warned_at", at.UTC())
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// --------------------------------------------------
// Reporting
// --------------------------------------------------

func (r *BarberGormRepository) DailySummaries(
	ctx context.Context,
	from time.Time,
	to time.Time,
) ([]domainBarber.DailySummary, error) {

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Where("barber_id IS NOT NULL").
		Where("preferred_datetime >= ? AND preferred_datetime < ?", from.UTC(), to.UTC()).
		Order("preferred_datetime ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, nil
	}

	byBarber := map[uint][]models.Booking{}
	for _, b := range bookings {
		byBarber[*b.BarberID] = append(byBarber[*b.BarberID], b)
	}

	ids := make([]uint, 0, len(byBarber))
	for id := range byBarber {
		ids = append(ids, id)
	}

	var barbers []models.Barber
	if err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Order("badge_number ASC").
		Find(&barbers).Error; err != nil {
		return nil, err
	}

	out := make([]domainBarber.DailySummary, 0, len(barbers))
	for _, barber := range barbers {
		sum := domainBarber.DailySummary{Barber: barber, Bookings: byBarber[barber.ID]}
		for _, b := range sum.Bookings {
			switch domainBooking.Status(b.Status) {
			case domainBooking.StatusCompleted:
				sum.Completed++
				sum.Earnings += b.ServicePrice
			case domainBooking.StatusCancelled:
				sum.Cancelled++
			}
		}
		out = append(out, sum)
	}
	return out, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

var _ domainBarber.Repository = (*BarberGormRepository)(nil)
