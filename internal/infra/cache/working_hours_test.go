package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/housecall-booking/internal/domain/workinghours"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

type countingRepo struct {
	hours []models.WorkingHours
	lists int
}

func (r *countingRepo) List(context.Context) ([]models.WorkingHours, error) {
	r.lists++
	return append([]models.WorkingHours(nil), r.hours...), nil
}

func (r *countingRepo) SaveDay(_ context.Context, wh *models.WorkingHours) error {
	for i := range r.hours {
		if r.hours[i].DayOfWeek == wh.DayOfWeek {
			r.hours[i] = *wh
		}
	}
	return nil
}

func (r *countingRepo) Reset(context.Context) error {
	r.hours = domain.Defaults()
	return nil
}

func TestCacheServesFromRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := &countingRepo{hours: domain.Defaults()}
	c := NewWorkingHours(repo, rdb, time.Minute)
	ctx := context.Background()

	first, err := c.List(ctx)
	require.NoError(t, err)
	second, err := c.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.lists)
	assert.Equal(t, len(first), len(second))
	assert.True(t, mr.Exists(workingHoursKey))

	mr.FastForward(2 * time.Minute)
	_, err = c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.lists)
}

func TestCacheInvalidatesOnWrite(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := &countingRepo{hours: domain.Defaults()}
	c := NewWorkingHours(repo, rdb, time.Minute)
	ctx := context.Background()

	_, err := c.List(ctx)
	require.NoError(t, err)

	require.NoError(t, c.SaveDay(ctx, &models.WorkingHours{DayOfWeek: 0, DayName: "Sunday", IsOpen: true, OpenTime: "10:00", CloseTime: "14:00"}))
	assert.False(t, mr.Exists(workingHoursKey))

	hours, err := c.List(ctx)
	require.NoError(t, err)
	assert.True(t, hours[0].IsOpen)
	assert.Equal(t, 2, repo.lists)
}

func TestCacheDisabledWithoutClient(t *testing.T) {
	repo := &countingRepo{hours: domain.Defaults()}
	c := NewWorkingHours(repo, nil, 0)

	_, _ = c.List(context.Background())
	_, _ = c.List(context.Background())
	assert.Equal(t, 2, repo.lists)
}

func TestCacheFallsBackWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	mr.Close()

	repo := &countingRepo{hours: domain.Defaults()}
	hours, err := NewWorkingHours(repo, rdb, time.Minute).List(context.Background())

	require.NoError(t, err)
	assert.Len(t, hours, 7)
}
