package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	domain "github.com/BruksfildServices01/housecall-booking/internal/domain/workinghours"
	"github.com/BruksfildServices01/housecall-booking/internal/logger"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

const (
	workingHoursKey = "housecall:working_hours:v1"
	DefaultTTL      = 5 * time.Minute
)

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// WorkingHours caches the weekly table in Redis. A nil client disables caching.
// Redis errors are logged and the database is used instead.
type WorkingHours struct {
	repo domain.Repository
	rdb  *redis.Client
	ttl  time.Duration
}

func NewWorkingHours(repo domain.Repository, rdb *redis.Client, ttl time.Duration) *WorkingHours {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &WorkingHours{repo: repo, rdb: rdb, ttl: ttl}
}

func (c *WorkingHours) List(ctx context.Context) ([]models.WorkingHours, error) {
	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, workingHoursKey).Bytes()
		switch {
		case err == nil:
			var hours []models.WorkingHours
			if jsonErr := json.Unmarshal(raw, &hours); jsonErr == nil {
				return hours, nil
			}
		case !errors.Is(err, redis.Nil):
			logger.WithContext(ctx).Warn("working hours cache read failed", "error", err)
		}
	}

	hours, err := c.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if c.rdb != nil {
		if raw, err := json.Marshal(hours); err == nil {
			if err := c.rdb.Set(ctx, workingHoursKey, raw, c.ttl).Err(); err != nil {
				logger.WithContext(ctx).Warn("working hours cache write failed", "error", err)
			}
		}
	}
	return hours, nil
}

func (c *WorkingHours) SaveDay(ctx context.Context, wh *models.WorkingHours) error {
	if err := c.repo.SaveDay(ctx, wh); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *WorkingHours) Reset(ctx context.Context) error {
	if err := c.repo.Reset(ctx); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *WorkingHours) invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, workingHoursKey).Err(); err != nil {
		logger.WithContext(ctx).Warn("working hours cache invalidation failed", "error", err)
	}
}

var _ domain.Repository = (*WorkingHours)(nil)
