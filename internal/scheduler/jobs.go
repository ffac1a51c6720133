package scheduler

import (
	"context"
	"time"

	usecaseBarber "github.com/BruksfildServices01/housecall-booking/internal/usecase/barber"
)

const (
	BlockExpiryJob        = "block_expiry"
	BlockExpiryWarningJob = "block_expiry_warning"
	DailySummaryJob       = "daily_summary"
)

// NewBlockExpiry sweeps expired temporary blocks on every tick and once at start.
func NewBlockExpiry(sweep *usecaseBarber.SweepExpiredBlocks, interval time.Duration) *Job {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return NewJob(BlockExpiryJob, interval, func(ctx context.Context) (any, error) {
		return sweep.Execute(ctx)
	}, RunOnStart())
}

// NewBlockExpiryWarning warns about blocks expiring within a day, on the same
// cadence as the sweep.
func NewBlockExpiryWarning(warn *usecaseBarber.WarnExpiringBlocks, interval time.Duration) *Job {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return NewJob(BlockExpiryWarningJob, interval, func(ctx context.Context) (any, error) {
		return warn.Execute(ctx)
	}, RunOnStart())
}

// NewDailySummary checks hourly and sends the barbers' summary once a day at hour.
func NewDailySummary(summary *usecaseBarber.DailySummary, hour int, loc *time.Location) *Job {
	return NewJob(DailySummaryJob, time.Hour, func(ctx context.Context) (any, error) {
		return summary.Execute(ctx)
	}, WithGate(DailyAt(hour, loc)))
}
