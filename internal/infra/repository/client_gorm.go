package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

type ClientGormRepository struct {
	db *gorm.DB
}

func NewClientGormRepository(db *gorm.DB) *ClientGormRepository {
	return &ClientGormRepository{db: db}
}

// Search matches name, phone or email case-insensitively; an empty query lists all.
func (r *ClientGormRepository) Search(
	ctx context.Context,
	query string,
	limit int,
	offset int,
) ([]models.Client, int64, error) {

	q := r.db.WithContext(ctx).Model(&models.Client{})

	query = strings.ToLower(strings.TrimSpace(query))
	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?",
			like, like, like,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []models.Client
	if err := q.
		Order("last_booking_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (r *ClientGormRepository) GetByPhone(ctx context.Context, phone string) (*models.Client, error) {
	var c models.Client
	if err := r.db.WithContext(ctx).
		Where("phone = ?", strings.TrimSpace(phone)).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// Bookings returns the client's most recent bookings.
func (r *ClientGormRepository) Bookings(ctx context.Context, phone string, limit int) ([]models.Booking, error) {
	var list []models.Booking
	err := r.db.WithContext(ctx).
		Where("customer_phone = ?", strings.TrimSpace(phone)).
		Order("preferred_datetime DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}
