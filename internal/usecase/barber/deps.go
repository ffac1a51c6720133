package barber

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/housecall-booking/internal/domain/barber"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
	"github.com/BruksfildServices01/housecall-booking/internal/notify"
)

type Notifier interface {
	Dispatch(msg notify.Message)
}

type discardNotifier struct{}

func (discardNotifier) Dispatch(notify.Message) {}

// PhotoStore keeps profile photos and returns their public URL.
type PhotoStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type Clock func() time.Time

func orNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

func getBarber(ctx context.Context, repo domain.Repository, id uint) (*models.Barber, error) {
	b, err := repo.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound()
	}
	return b, err
}
