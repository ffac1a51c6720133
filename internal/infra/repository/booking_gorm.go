package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbpkg "github.com/BruksfildServices01/housecall-booking/internal/db"
	domain "github.com/BruksfildServices01/housecall-booking/internal/domain/booking"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

type BookingGormRepository struct {
	db       *gorm.DB
	postgres bool
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db, postgres: dbpkg.IsPostgres(db)}
}

// Transaction runs fn in SERIALIZABLE isolation on Postgres. SQLite
// transactions are already serialized by its single writer.
func (r *BookingGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {

	var opts []*sql.TxOptions
	if r.postgres {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&BookingGormRepository{db: tx, postgres: r.postgres})
	}, opts...)
}

// --------------------------------------------------
// Conflict queries
// --------------------------------------------------

func (r *BookingGormRepository) occupying(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("status NOT IN ?", domain.TerminalStatuses)
}

func firstOrNil(q *gorm.DB) (*models.Booking, error) {
	var found []models.Booking
	if err := q.Limit(1).Find(&found).Error; err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (r *BookingGormRepository) FindOverlapping(
	ctx context.Context,
	barberID *uint,
	w domain.Window,
) (*models.Booking, error) {

	q := r.occupying(ctx).
		Where("window_start < ? AND window_end > ?", w.End.UTC(), w.Start.UTC())

	if barberID != nil {
		q = q.Where("barber_id = ?", *barberID)
	}

	return firstOrNil(q.Order("window_start ASC"))
}

func (r *BookingGormRepository) FindCustomerBookingBetween(
	ctx context.Context,
	phone string,
	from time.Time,
	to time.Time,
) (*models.Booking, error) {

	q := r.occupying(ctx).
		Where("customer_phone = ?", phone).
		Where("preferred_datetime >= ? AND preferred_datetime < ?", from.UTC(), to.UTC())

	return firstOrNil(q.Order("preferred_datetime ASC"))
}

// --------------------------------------------------
// Barber pool
// --------------------------------------------------

func (r *BookingGormRepository) EligibleBarbers(ctx context.Context) ([]models.Barber, error) {
	var barbers []models.Barber
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND is_blocked = ?", true, false).
		Order("badge_number ASC, id ASC").
		Find(&barbers).Error; err != nil {
		return nil, err
	}
	return barbers, nil
}

func (r *BookingGormRepository) FindEligibleBarber(
	ctx context.Context,
	name string,
	phone string,
) (*models.Barber, error) {

	var found []models.Barber
	if err := r.db.WithContext(ctx).
		Where("LOWER(name) = ? AND phone = ?", strings.ToLower(strings.TrimSpace(name)), strings.TrimSpace(phone)).
		Where("is_active = ? AND is_blocked = ?", true, false).
		Limit(1).
		Find(&found).Error; err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// LockBarber takes a row lock on Postgres so concurrent bookings for the same
// barber queue up behind each other.
func (r *BookingGormRepository) LockBarber(ctx context.Context, barberID uint) error {
	if !r.postgres {
		return nil
	}
	var b models.Barber
	return r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&b, barberID).Error
}

// --------------------------------------------------
// Booking
// --------------------------------------------------

func (r *BookingGormRepository) CountCreatedBetween(
	ctx context.Context,
	from time.Time,
	to time.Time,
) (int64, error) {

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Where("status <> ?", string(domain.StatusCancelled)).
		Count(&count).Error
	return count, err
}

func (r *BookingGormRepository) CreateBooking(ctx context.Context, b *models.Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookingGormRepository) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) UpdateBooking(ctx context.Context, b *models.Booking) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *BookingGormRepository) ListBookings(
	ctx context.Context,
	f domain.ListFilter,
) ([]models.Booking, int64, error) {

	q := r.db.WithContext(ctx).Model(&models.Booking{})

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.BarberID != nil {
		q = q.Where("barber_id = ?", *f.BarberID)
	}
	if f.From != nil {
		q = q.Where("preferred_datetime >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("preferred_datetime < ?", f.To.UTC())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.Booking
	if err := q.
		Order("preferred_datetime DESC, id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *BookingGormRepository) ListOccupyingBetween(
	ctx context.Context,
	from time.Time,
	to time.Time,
) ([]models.Booking, error) {

	var list []models.Booking
	err := r.occupying(ctx).
		Where("barber_id IS NOT NULL").
		Where("window_start < ? AND window_end > ?", to.UTC(), from.UTC()).
		Order("window_start ASC").
		Find(&list).Error
	return list, err
}

func (r *BookingGormRepository) Overview(
	ctx context.Context,
	dayStart time.Time,
	dayEnd time.Time,
	now time.Time,
) (*domain.Overview, error) {

	out := &domain.Overview{ByStatus: map[string]int64{}}

	var rows []struct {
		Status string
		N      int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out.ByStatus[row.Status] = row.N
		out.Total += row.N
	}

	base := func() *gorm.DB { return r.db.WithContext(ctx).Model(&models.Booking{}) }

	if err := base().
		Where("preferred_datetime >= ? AND preferred_datetime < ?", dayStart.UTC(), dayEnd.UTC()).
		Count(&out.Today).Error; err != nil {
		return nil, err
	}

	if err := base().
		Where("preferred_datetime >= ?", now.UTC()).
		Where("status NOT IN ?", domain.TerminalStatuses).
		Count(&out.Upcoming).Error; err != nil {
		return nil, err
	}

	if err := base().
		Where("barber_id IS NULL").
		Count(&out.Unassigned).Error; err != nil {
		return nil, err
	}

	var sums struct {
		Revenue  float64
		AvgPrice float64
	}
	if err := base().
		Select(
			"COALESCE(SUM(CASE WHEN status = ? THEN service_price ELSE 0 END), 0) AS revenue, "+
				"COALESCE(AVG(service_price), 0) AS avg_price",
			string(domain.StatusCompleted),
		).
		Scan(&sums).Error; err != nil {
		return nil, err
	}
	out.Revenue = sums.Revenue
	out.AvgPrice = sums.AvgPrice

	return out, nil
}

// --------------------------------------------------
// Side tables
// --------------------------------------------------

func (r *BookingGormRepository) UpsertClient(
	ctx context.Context,
	b *models.Booking,
	now time.Time,
) (*models.Client, error) {

	at := now.UTC()

	var found []models.Client
	if err := r.db.WithContext(ctx).
		Where("phone = ?", b.CustomerPhone).
		Limit(1).
		Find(&found).Error; err != nil {
		return nil, err
	}

	if len(found) == 0 {
		client := models.Client{
			Name:            b.CustomerName,
			Phone:           b.CustomerPhone,
			Email:           b.CustomerEmail,
			Address:         b.Address,
			TotalBookings:   1,
			FavoriteService: b.ServiceType,
			PreferredBarber: b.BarberName,
			LastBookingAt:   &at,
		}
		if err := r.db.WithContext(ctx).Create(&client).Error; err != nil {
			return nil, err
		}
		return &client, nil
	}

	client := found[0]
	updates := map[string]any{
		"name":             b.CustomerName,
		"address":          b.Address,
		"total_bookings":   gorm.Expr("total_bookings + 1"),
		"favorite_service": b.ServiceType,
		"last_booking_at":  at,
	}
	if b.CustomerEmail != "" {
		updates["email"] = b.CustomerEmail
	}
	if b.BarberName != "" {
		updates["preferred_barber"] = b.BarberName
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("id = ?", client.ID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	return &client, nil
}

func (r *BookingGormRepository) RecordCompletion(
	ctx context.Context,
	barberID uint,
	price float64,
) error {
	return r.db.WithContext(ctx).
		Model(&models.Barber{}).
		Where("id = ?", barberID).
		Updates(map[string]any{
			"total_services": gorm.Expr("total_services + 1"),
			"total_earnings": gorm.Expr("total_earnings + ?", price),
		}).Error
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
