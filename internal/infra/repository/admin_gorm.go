package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	domainBooking "github.com/BruksfildServices01/housecall-booking/internal/domain/booking"
	domainPayment "github.com/BruksfildServices01/housecall-booking/internal/domain/payment"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

type BarberTotals struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	IsActive      bool    `json:"is_active"`
	IsBlocked     bool    `json:"is_blocked"`
	TotalServices int     `json:"total_services"`
	TotalEarnings float64 `json:"total_earnings"`
	OpenBookings  int64   `json:"open_bookings"`
}

type Dashboard struct {
	ByStatus        map[string]int64 `json:"bookings_by_status"`
	TotalBookings   int64            `json:"total_bookings"`
	TodayBookings   int64            `json:"today_bookings"`
	PaymentsRevenue float64          `json:"payments_revenue"`
	PendingPayments int64            `json:"pending_payments"`
	Barbers         []BarberTotals   `json:"barbers"`
}

type AuditFilter struct {
	Action string
	Entity string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

type AdminGormRepository struct {
	db *gorm.DB
}

func NewAdminGormRepository(db *gorm.DB) *AdminGormRepository {
	return &AdminGormRepository{db: db}
}

// --------------------------------------------------
// Accounts
// --------------------------------------------------

func (r *AdminGormRepository) FindByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	var u models.AdminUser
	if err := r.db.WithContext(ctx).
		Where("username = ?", strings.TrimSpace(username)).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *AdminGormRepository) Get(ctx context.Context, id uint) (*models.AdminUser, error) {
	var u models.AdminUser
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *AdminGormRepository) TouchLogin(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.AdminUser{}).
		Where("id = ?", id).
		Update("last_login_at", at.UTC()).Error
}

// --------------------------------------------------
// Dashboard
// --------------------------------------------------

func (r *AdminGormRepository) Dashboard(ctx context.Context, dayStart, dayEnd time.Time) (*Dashboard, error) {
	out := &Dashboard{ByStatus: map[string]int64{}}

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
		out.TotalBookings += row.N
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("preferred_datetime >= ? AND preferred_datetime < ?", dayStart.UTC(), dayEnd.UTC()).
		Count(&out.TodayBookings).Error; err != nil {
		return nil, err
	}

	var revenue struct{ Total float64 }
	if err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("payment_status = ?", string(domainPayment.StatusCompleted)).
		Scan(&revenue).Error; err != nil {
		return nil, err
	}
	out.PaymentsRevenue = revenue.Total

	if err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("payment_status = ?", string(domainPayment.StatusPending)).
		Count(&out.PendingPayments).Error; err != nil {
		return nil, err
	}

	var barbers []models.Barber
	if err := r.db.WithContext(ctx).
		Order("badge_number ASC, id ASC").
		Find(&barbers).Error; err != nil {
		return nil, err
	}

	var open []struct {
		BarberID uint
		N        int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("barber_id, COUNT(*) AS n").
		Where("barber_id IS NOT NULL").
		Where("status NOT IN ?", domainBooking.TerminalStatuses).
		Group("barber_id").
		Scan(&open).Error; err != nil {
		return nil, err
	}
	openBy := make(map[uint]int64, len(open))
	for _, o := range open {
		openBy[o.BarberID] = o.N
	}

	out.Barbers = make([]BarberTotals, 0, len(barbers))
	for _, b := range barbers {
		out.Barbers = append(out.Barbers, BarberTotals{
			ID:            b.ID,
			Name:          b.Name,
			IsActive:      b.IsActive,
			IsBlocked:     b.IsBlocked,
			TotalServices: b.TotalServices,
			TotalEarnings: b.TotalEarnings,
			OpenBookings:  openBy[b.ID],
		})
	}

	return out, nil
}

// --------------------------------------------------
// Audit trail
// --------------------------------------------------

func (r *AdminGormRepository) AuditLogs(ctx context.Context, f AuditFilter) ([]models.AuditLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.AuditLog{})

	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.Entity != "" {
		q = q.Where("entity = ?", f.Entity)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("created_at < ?", f.To.UTC())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	if err := q.
		Order("created_at DESC, id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
