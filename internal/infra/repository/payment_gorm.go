package repository

import (
	"context"

	"gorm.io/gorm"

	domainBooking "github.com/BruksfildServices01/housecall-booking/internal/domain/booking"
	domain "github.com/BruksfildServices01/housecall-booking/internal/domain/payment"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

func (r *PaymentGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PaymentGormRepository{db: tx})
	})
}

func (r *PaymentGormRepository) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PaymentGormRepository) SetBookingPaymentStatus(
	ctx context.Context,
	bookingID uint,
	status domainBooking.PaymentStatus,
) error {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Update("payment_status", string(status)).Error
}

func (r *PaymentGormRepository) ClaimBooking(ctx context.Context, bookingID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND payment_status = ?", bookingID, string(domainBooking.PaymentUnpaid)).
		Update("payment_status", string(domainBooking.PaymentPending))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PaymentGormRepository) Create(ctx context.Context, p *models.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentGormRepository) Get(ctx context.Context, id uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentGormRepository) Update(ctx context.Context, p *models.Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *PaymentGormRepository) List(
	ctx context.Context,
	f domain.Filter,
) ([]models.Payment, int64, error) {

	q := r.db.WithContext(ctx).Model(&models.Payment{})

	if f.Status != "" {
		q = q.Where("payment_status = ?", f.Status)
	}
	if f.Method != "" {
		q = q.Where("payment_method = ?", f.Method)
	}
	if f.BookingID != nil {
		q = q.Where("booking_id = ?", *f.BookingID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.Payment
	if err := q.
		Order("created_at DESC, id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

var _ domain.Repository = (*PaymentGormRepository)(nil)
