package barber

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/housecall-booking/internal/domain/barber"
	"github.com/BruksfildServices01/housecall-booking/internal/logger"
	"github.com/BruksfildServices01/housecall-booking/internal/notify"
	"github.com/BruksfildServices01/housecall-booking/internal/timezone"
)

type SummaryRun struct {
	Day     string `json:"day"`
	Barbers int    `json:"barbers"`
	Emailed int    `json:"emailed"`
}

type DailySummary struct {
	repo     domain.Repository
	notifier Notifier
	loc      *time.Location
	now      Clock
}

func NewDailySummary(repo domain.Repository, notifier Notifier, loc *time.Location, now Clock) *DailySummary {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DailySummary{repo: repo, notifier: notifier, loc: loc, now: orNow(now)}
}

// Execute emails every active barber who worked yesterday (business timezone)
// a summary of that day.
func (uc *DailySummary) Execute(ctx context.Context) (*SummaryRun, error) {
	today, _ := timezone.DayBounds(uc.now(), uc.loc)
	yesterday := today.AddDate(0, 0, -1)

	summaries, err := uc.repo.DailySummaries(ctx, yesterday, today)
	if err != nil {
		return nil, err
	}

	run := &SummaryRun{Day: yesterday.Format("2006-01-02"), Barbers: len(summaries)}
	for _, s := range summaries {
		if s.Barber.Email == "" {
			continue
		}
		barber := s.Barber
		uc.notifier.Dispatch(notify.DailySummary(&barber, yesterday, s.Bookings, s.Completed, s.Cancelled, s.Earnings, uc.loc))
		run.Emailed++
	}

	logger.WithContext(ctx).Info("daily summary sent", "day", run.Day, "emailed", run.Emailed)
	return run, nil
}
