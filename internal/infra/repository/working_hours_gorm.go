package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/housecall-booking/internal/domain/workinghours"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

type WorkingHoursGormRepository struct {
	db *gorm.DB
}

func NewWorkingHoursGormRepository(db *gorm.DB) *WorkingHoursGormRepository {
	return &WorkingHoursGormRepository{db: db}
}

func (r *WorkingHoursGormRepository) List(ctx context.Context) ([]models.WorkingHours, error) {
	var hours []models.WorkingHours
	if err := r.db.WithContext(ctx).
		Order("day_of_week ASC").
		Find(&hours).Error; err != nil {
		return nil, err
	}
	return hours, nil
}

// SaveDay upserts by day_of_week.
func (r *WorkingHoursGormRepository) SaveDay(ctx context.Context, wh *models.WorkingHours) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "day_of_week"}},
			DoUpdates: clause.AssignmentColumns([]string{"day_name", "is_open", "open_time", "close_time", "notes", "updated_at"}),
		}).
		Create(wh).Error
}

func (r *WorkingHoursGormRepository) Reset(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.WorkingHours{}).Error; err != nil {
			return err
		}
		defaults := domain.Defaults()
		return tx.Create(&defaults).Error
	})
}

var _ domain.Repository = (*WorkingHoursGormRepository)(nil)
