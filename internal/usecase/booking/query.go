package booking

import (
	"context"
	"time"

	domainBarber "github.com/BruksfildServices01/housecall-booking/internal/domain/barber"
	domain "github.com/BruksfildServices01/housecall-booking/internal/domain/booking"
	"github.com/BruksfildServices01/housecall-booking/internal/domain/workinghours"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
	"github.com/BruksfildServices01/housecall-booking/internal/timezone"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

type GetBooking struct {
	repo domain.Repository
}

func NewGetBooking(repo domain.Repository) *GetBooking {
	return &GetBooking{repo: repo}
}

func (uc *GetBooking) Execute(ctx context.Context, id uint) (*models.Booking, error) {
	return getBooking(ctx, uc.repo, id)
}

// ======================================================
// LIST
// ======================================================

type ListInput struct {
	Status   string
	BarberID *uint
	// Date is YYYY-MM-DD in the business timezone.
	Date   string
	Limit  int
	Offset int
}

type ListBookings struct {
	repo domain.Repository
	opts Options
}

func NewListBookings(repo domain.Repository, opts Options) *ListBookings {
	return &ListBookings{repo: repo, opts: opts.withDefaults()}
}

func (uc *ListBookings) Execute(ctx context.Context, in ListInput) ([]models.Booking, int64, error) {
	f := domain.ListFilter{
		Status:   in.Status,
		BarberID: in.BarberID,
		Limit:    ClampLimit(in.Limit),
		Offset:   in.Offset,
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Status != "" && !domain.Status(f.Status).Valid() {
		return nil, 0, domain.ErrInvalidStatus(f.Status)
	}

	if in.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", in.Date, uc.opts.Location)
		if err != nil {
			return nil, 0, domain.ErrValidation([]domain.FieldError{{Field: "date", Message: "date must be YYYY-MM-DD"}})
		}
		from, to := timezone.DayBounds(day, uc.opts.Location)
		f.From, f.To = &from, &to
	}

	return uc.repo.ListBookings(ctx, f)
}

func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// ======================================================
// OVERVIEW
// ======================================================

type Overview struct {
	repo domain.Repository
	opts Options
}

func NewOverview(repo domain.Repository, opts Options) *Overview {
	return &Overview{repo: repo, opts: opts.withDefaults()}
}

func (uc *Overview) Execute(ctx context.Context) (*domain.Overview, error) {
	now := uc.opts.Now()
	from, to := timezone.DayBounds(now, uc.opts.Location)
	return uc.repo.Overview(ctx, from, to, now)
}

// ======================================================
// AVAILABLE SLOTS
// ======================================================

type DaySlots struct {
	Date  string              `json:"date"`
	Open  bool                `json:"is_open"`
	Slots []workinghours.Slot `json:"slots"`
}

type AvailableSlots struct {
	repo  domain.Repository
	hours workinghours.Repository
	opts  Options
}

func NewAvailableSlots(repo domain.Repository, hours workinghours.Repository, opts Options) *AvailableSlots {
	return &AvailableSlots{repo: repo, hours: hours, opts: opts.withDefaults()}
}

// Execute marks a slot available when at least one eligible barber has no
// occupying booking overlapping the slot's protected window.
func (uc *AvailableSlots) Execute(ctx context.Context, date string, duration time.Duration) (*DaySlots, error) {
	day, err := time.ParseInLocation("2006-01-02", date, uc.opts.Location)
	if err != nil {
		return nil, domain.ErrValidation([]domain.FieldError{{Field: "date", Message: "date must be YYYY-MM-DD"}})
	}
	if duration <= 0 {
		duration = uc.opts.ServiceDuration
	}

	hours, err := uc.hours.List(ctx)
	if err != nil {
		return nil, err
	}
	slots := workinghours.NewSchedule(hours, uc.opts.Location).Slots(day, duration)
	out := &DaySlots{Date: date, Open: len(slots) > 0, Slots: slots}
	if len(slots) == 0 {
		out.Slots = []workinghours.Slot{}
		return out, nil
	}

	pool, err := uc.repo.EligibleBarbers(ctx)
	if err != nil {
		return nil, err
	}
	domainBarber.SortPool(pool)

	policy := domain.WindowPolicy{Buffer: uc.opts.TravelBuffer, Service: duration}
	first := policy.For(slots[0].Start)
	last := policy.For(slots[len(slots)-1].Start)
	busy, err := uc.repo.ListOccupyingBetween(ctx, first.Start, last.End)
	if err != nil {
		return nil, err
	}

	byBarber := make(map[uint][]domain.Window, len(pool))
	for _, b := range busy {
		if b.BarberID != nil {
			byBarber[*b.BarberID] = append(byBarber[*b.BarberID], domain.WindowOf(&b))
		}
	}

	for i := range out.Slots {
		w := policy.For(out.Slots[i].Start)
		out.Slots[i].Available = anyBarberFree(pool, byBarber, w)
	}
	return out, nil
}

func anyBarberFree(pool []models.Barber, busy map[uint][]domain.Window, w domain.Window) bool {
	for _, b := range pool {
		free := true
		for _, taken := range busy[b.ID] {
			if taken.Overlaps(w) {
				free = false
				break
			}
		}
		if free {
			return true
		}
	}
	return false
}
