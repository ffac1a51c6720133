package assignment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainBarber "github.com/BruksfildServices01/housecall-booking/internal/domain/barber"
	domainBooking "github.com/BruksfildServices01/housecall-booking/internal/domain/booking"
	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

func pool() []models.Barber {
	p := []models.Barber{
		{ID: 3, Name: "C", BadgeNumber: "3", IsActive: true},
		{ID: 1, Name: "A", BadgeNumber: "1", IsActive: true},
		{ID: 2, Name: "B", BadgeNumber: "2", IsActive: true},
	}
	domainBarber.SortPool(p)
	return p
}

func free(context.Context, models.Barber) (*models.Booking, error) { return nil, nil }

func busy(ids ...uint) Probe {
	return func(_ context.Context, b models.Barber) (*models.Booking, error) {
		for _, id := range ids {
			if b.ID == id {
				return &models.Booking{ID: 100 + id, BarberName: b.Name}, nil
			}
		}
		return nil, nil
	}
}

func TestRoundRobinRotation(t *testing.T) {
	ctx := context.Background()
	want := []string{"A", "B", "C", "A"}

	for count, name := range want {
		res, err := Select(ctx, Request{Pool: pool(), TodayCount: int64(count)}, free)
		require.NoError(t, err)
		assert.Equal(t, name, res.Barber.Name, "booking #%d", count+1)
		assert.Equal(t, ReasonRoundRobin, res.Reason)
	}
}

func TestRoundRobinIsDeterministic(t *testing.T) {
	ctx := context.Background()
	req := Request{Pool: pool(), TodayCount: 7}

	first, err := Select(ctx, req, free)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Select(ctx, req, free)
		require.NoError(t, err)
		assert.Equal(t, first.Barber.ID, again.Barber.ID)
	}
}

func TestPreferredBarberWins(t *testing.T) {
	p := pool()
	preferred := p[2]

	res, err := Select(context.Background(), Request{Pool: p, Preferred: &preferred, TodayCount: 0}, free)
	require.NoError(t, err)
	assert.Equal(t, "C", res.Barber.Name)
	assert.Equal(t, ReasonPreferred, res.Reason)
}

func TestBlockedPreferredFallsBackToRoundRobin(t *testing.T) {
	p := pool()
	preferred := p[2]
	preferred.IsBlocked = true

	res, err := Select(context.Background(), Request{Pool: p, Preferred: &preferred, TodayCount: 1}, free)
	require.NoError(t, err)
	assert.Equal(t, "B", res.Barber.Name)
	assert.Equal(t, ReasonRoundRobin, res.Reason)
}

func TestConflictAdvancesAndWraps(t *testing.T) {
	ctx := context.Background()

	res, err := Select(ctx, Request{Pool: pool(), TodayCount: 0}, busy(1))
	require.NoError(t, err)
	assert.Equal(t, "B", res.Barber.Name)
	assert.Equal(t, ReasonFallback, res.Reason)
	assert.Equal(t, 2, res.Attempts)

	// start at C, C busy, wrap to A
	res, err = Select(ctx, Request{Pool: pool(), TodayCount: 2}, busy(3))
	require.NoError(t, err)
	assert.Equal(t, "A", res.Barber.Name)
}

func TestExhaustion(t *testing.T) {
	calls := 0
	probe := func(ctx context.Context, b models.Barber) (*models.Booking, error) {
		calls++
		return busy(1, 2, 3)(ctx, b)
	}

	_, err := Select(context.Background(), Request{Pool: pool(), TodayCount: 1}, probe)
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, domainBooking.CodeAllBarbersBusy))
	assert.Equal(t, 3, calls)
}

func TestEmptyPool(t *testing.T) {
	_, err := Select(context.Background(), Request{}, free)

	be, ok := httperr.AsBusiness(err)
	require.True(t, ok)
	assert.Equal(t, domainBooking.CodeNoBarbers, be.Code)
	assert.Equal(t, httperr.KindCapacity, be.Kind)
}

func TestProbeErrorStops(t *testing.T) {
	boom := errors.New("db down")
	_, err := Select(context.Background(), Request{Pool: pool()}, func(context.Context, models.Barber) (*models.Booking, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}
