package assignment

import (
	"context"

	domainBarber "github.com/BruksfildServices01/housecall-booking/internal/domain/barber"
	domainBooking "github.com/BruksfildServices01/housecall-booking/internal/domain/booking"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

type Reason string

const (
	ReasonPreferred  Reason = "preferred"
	ReasonRoundRobin Reason = "round_robin"
	// ReasonFallback means the first pick was busy and a later pool member was used.
	ReasonFallback Reason = "fallback"
)

// Probe returns the booking that makes b unavailable, or nil when b is free.
type Probe func(ctx context.Context, b models.Barber) (*models.Booking, error)

type Request struct {
	// Pool must already be eligible-only and ordered (see barber.SortPool).
	Pool       []models.Barber
	Preferred  *models.Barber
	TodayCount int64
}

type Result struct {
	Barber   models.Barber `json:"-"`
	Reason   Reason        `json:"reason"`
	Attempts int           `json:"attempts"`
}

// RoundRobinIndex is todayCount mod poolSize.
func RoundRobinIndex(todayCount int64, poolSize int) int {
	if poolSize <= 0 {
		return 0
	}
	if todayCount < 0 {
		todayCount = 0
	}
	return int(todayCount % int64(poolSize))
}

// StartIndex picks the first barber to probe: the preferred barber when it is
// part of the pool, otherwise the round-robin position.
func StartIndex(req Request) (int, Reason) {
	if req.Preferred != nil && domainBarber.IsEligible(req.Preferred) {
		for i := range req.Pool {
			if req.Pool[i].ID == req.Preferred.ID {
				return i, ReasonPreferred
			}
		}
	}
	return RoundRobinIndex(req.TodayCount, len(req.Pool)), ReasonRoundRobin
}

// Select walks the pool from StartIndex, wrapping, for at most len(Pool)
// probes and returns the first free barber.
func Select(ctx context.Context, req Request, probe Probe) (*Result, error) {
	n := len(req.Pool)
	if n == 0 {
		return nil, domainBooking.ErrNoBarbers()
	}

	start, reason := StartIndex(req)

	var last *models.Booking
	for attempt := 0; attempt < n; attempt++ {
		candidate := req.Pool[(start+attempt)%n]

		conflict, err := probe(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if conflict == nil {
			if attempt > 0 {
				reason = ReasonFallback
			}
			return &Result{Barber: candidate, Reason: reason, Attempts: attempt + 1}, nil
		}
		last = conflict
	}

	return nil, domainBooking.ErrAllBarbersBusy(last)
}
