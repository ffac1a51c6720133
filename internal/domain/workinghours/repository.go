package workinghours

import (
	"context"

	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.WorkingHours, error)
	SaveDay(ctx context.Context, wh *models.WorkingHours) error
	Reset(ctx context.Context) error
}
