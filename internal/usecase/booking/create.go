package booking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/BruksfildServices01/housecall-booking/internal/audit"
	"github.com/BruksfildServices01/housecall-booking/internal/domain/assignment"
	domainBarber "github.com/BruksfildServices01/housecall-booking/internal/domain/barber"
	domain "github.com/BruksfildServices01/housecall-booking/internal/domain/booking"
	"github.com/BruksfildServices01/housecall-booking/internal/domain/workinghours"
	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
	"github.com/BruksfildServices01/housecall-booking/internal/logger"
	"github.com/BruksfildServices01/housecall-booking/internal/metrics"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
	"github.com/BruksfildServices01/housecall-booking/internal/notify"
	"github.com/BruksfildServices01/housecall-booking/internal/timezone"
	"github.com/BruksfildServices01/housecall-booking/internal/validators"
)

// ======================================================
// INPUT / OUTPUT
// ======================================================

type CreateInput struct {
	CustomerName      string
	CustomerEmail     string
	CustomerPhone     string
	Address           string
	PreferredDatetime string
	ServiceType       string
	ServicePrice      float64
	PaymentMethod     string
	Notes             string

	PreferredBarberName  string
	PreferredBarberPhone string
}

type AssignedBarber struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	BadgeNumber string `json:"identity_badge_number"`
}

type CreateResult struct {
	Booking        *models.Booking   `json:"booking"`
	AssignedBarber AssignedBarber    `json:"assigned_barber"`
	Assignment     assignment.Result `json:"assignment"`
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo     domain.Repository
	hours    workinghours.Repository
	checker  *domain.Checker
	audit    audit.Sink
	notifier Notifier
	opts     Options

	mu sync.Mutex
}

func NewCreateBooking(
	repo domain.Repository,
	hours workinghours.Repository,
	auditSink audit.Sink,
	notifier Notifier,
	opts Options,
) *CreateBooking {
	opts = opts.withDefaults()
	if auditSink == nil {
		auditSink = audit.Discard{}
	}
	if notifier == nil {
		notifier = discardNotifier{}
	}
	policy := domain.WindowPolicy{Buffer: opts.TravelBuffer, Service: opts.ServiceDuration}
	return &CreateBooking{
		repo:     repo,
		hours:    hours,
		checker:  domain.NewChecker(repo, policy, opts.Location),
		audit:    auditSink,
		notifier: notifier,
		opts:     opts,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(ctx context.Context, in CreateInput) (*CreateResult, error) {
	res, err := uc.execute(ctx, in)
	if err != nil {
		code := "INTERNAL_ERROR"
		if be, ok := httperr.AsBusiness(err); ok {
			code = be.Code
		}
		metrics.BookingRejections.WithLabelValues(code).Inc()
		return nil, err
	}
	return res, nil
}

func (uc *CreateBooking) execute(ctx context.Context, in CreateInput) (*CreateResult, error) {

	// --------------------------------------------------
	// 1. Input
	// --------------------------------------------------
	in = normalize(in)
	start, err := validate(in, uc.opts.Location)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2. Working hours
	// --------------------------------------------------
	hours, err := uc.hours.List(ctx)
	if err != nil {
		return nil, err
	}
	check := workinghours.NewSchedule(hours, uc.opts.Location).Check(start, uc.opts.ServiceDuration)
	if !check.IsOpen {
		return nil, domain.ErrOutsideHours(check.Reason, check.NextOpen)
	}

	// --------------------------------------------------
	// 3. Probe + insert, serialized
	// --------------------------------------------------
	if uc.opts.SerializeWrites {
		uc.mu.Lock()
		defer uc.mu.Unlock()
	}

	var (
		booking *models.Booking
		picked  *assignment.Result
	)
	err = retrySerializable(ctx, "create_booking", func() error {
		var err error
		booking, picked, err = uc.write(ctx, in, start)
		return err
	})
	if err != nil {
		if httperr.IsExclusionViolation(err) {
			return nil, domain.ErrBarberConflict(nil)
		}
		return nil, err
	}

	// --------------------------------------------------
	// 4. After commit
	// --------------------------------------------------
	metrics.BookingsCreated.WithLabelValues(string(picked.Reason)).Inc()

	uc.audit.Dispatch(audit.Event{
		Actor:    booking.CustomerPhone,
		Action:   "booking_created",
		Entity:   "booking",
		EntityID: audit.ID(booking.ID),
		Metadata: map[string]any{
			"barber_id":  picked.Barber.ID,
			"assignment": picked.Reason,
			"attempts":   picked.Attempts,
		},
	})

	barber := picked.Barber
	uc.notifier.Dispatch(notify.BarberAssigned(&barber, booking, uc.opts.Location))
	uc.notifier.Dispatch(notify.BookingConfirmation(booking, uc.opts.Location))

	logger.WithContext(ctx).Info("booking created",
		"booking_id", booking.ID,
		"barber_id", barber.ID,
		"assignment", picked.Reason,
	)

	return &CreateResult{
		Booking: booking,
		AssignedBarber: AssignedBarber{
			ID:          barber.ID,
			Name:        barber.Name,
			Phone:       barber.Phone,
			BadgeNumber: barber.BadgeNumber,
		},
		Assignment: *picked,
	}, nil
}

// write runs every check that depends on stored bookings and the insert in
// one transaction.
func (uc *CreateBooking) write(
	ctx context.Context,
	in CreateInput,
	start time.Time,
) (*models.Booking, *assignment.Result, error) {

	now := uc.opts.Now().UTC()

	var (
		booking *models.Booking
		picked  *assignment.Result
	)

	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		checker := uc.checker.WithFinder(tx)

		if uc.opts.EnforceGlobalSlot {
			existing, err := checker.HasConflict(ctx, start, domain.GlobalScope())
			if err != nil {
				return err
			}
			if existing != nil {
				return domain.ErrTimeSlotConflict(existing)
			}
		}

		existing, err := checker.HasConflict(ctx, start, domain.CustomerScope(in.CustomerPhone))
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrCustomerDoubleBooking(existing)
		}

		pool, err := tx.EligibleBarbers(ctx)
		if err != nil {
			return err
		}
		domainBarber.SortPool(pool)

		var preferred *models.Barber
		if in.PreferredBarberName != "" && in.PreferredBarberPhone != "" {
			if preferred, err = tx.FindEligibleBarber(ctx, in.PreferredBarberName, in.PreferredBarberPhone); err != nil {
				return err
			}
		}

		dayStart, dayEnd := timezone.DayBounds(now, uc.opts.Location)
		todayCount, err := tx.CountCreatedBetween(ctx, dayStart, dayEnd)
		if err != nil {
			return err
		}

		picked, err = assignment.Select(ctx, assignment.Request{
			Pool:       pool,
			Preferred:  preferred,
			TodayCount: todayCount,
		}, func(ctx context.Context, b models.Barber) (*models.Booking, error) {
			if err := tx.LockBarber(ctx, b.ID); err != nil {
				return nil, err
			}
			return checker.HasConflict(ctx, start, domain.BarberScope(b.ID))
		})
		if err != nil {
			return err
		}

		window := checker.Policy().For(start)
		barberID := picked.Barber.ID
		booking = &models.Booking{
			CustomerName:      in.CustomerName,
			CustomerEmail:     in.CustomerEmail,
			CustomerPhone:     in.CustomerPhone,
			Address:           in.Address,
			PreferredDatetime: start.UTC(),
			WindowStart:       window.Start.UTC(),
			WindowEnd:         window.End.UTC(),
			ServiceType:       in.ServiceType,
			ServicePrice:      in.ServicePrice,
			PaymentMethod:     in.PaymentMethod,
			PaymentStatus:     string(domain.PaymentUnpaid),
			Status:            string(domain.InitialStatus()),
			Notes:             in.Notes,
			BarberID:          &barberID,
			BarberName:        picked.Barber.Name,
			BarberPhone:       picked.Barber.Phone,
			BarberBadge:       picked.Barber.BadgeNumber,
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		client, err := tx.UpsertClient(ctx, booking, now)
		if err != nil {
			return err
		}
		booking.ClientID = &client.ID

		return tx.CreateBooking(ctx, booking)
	})
	if err != nil {
		return nil, nil, err
	}
	return booking, picked, nil
}

// ======================================================
// VALIDATION
// ======================================================

func normalize(in CreateInput) CreateInput {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerEmail = strings.TrimSpace(in.CustomerEmail)
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.Address = strings.TrimSpace(in.Address)
	in.PreferredDatetime = strings.TrimSpace(in.PreferredDatetime)
	in.ServiceType = strings.TrimSpace(in.ServiceType)
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	in.Notes = strings.TrimSpace(in.Notes)
	in.PreferredBarberName = strings.TrimSpace(in.PreferredBarberName)
	in.PreferredBarberPhone = strings.TrimSpace(in.PreferredBarberPhone)
	return in
}

var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDatetime accepts ISO-8601 with or without an offset. A value without
// an offset is read in loc.
func ParseDatetime(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("invalid datetime")
}

func validate(in CreateInput, loc *time.Location) (time.Time, error) {
	var fields []domain.FieldError
	add := func(field, msg string) {
		fields = append(fields, domain.FieldError{Field: field, Message: msg})
	}

	if len([]rune(in.CustomerName)) < 2 {
		add("customer_name", "name must be at least 2 characters")
	}
	if in.CustomerEmail != "" && !validators.IsEmail(in.CustomerEmail) {
		add("customer_email", "invalid email format")
	}
	if in.CustomerPhone == "" {
		add("customer_phone", "phone number is required")
	}
	if len([]rune(in.Address)) < 5 {
		add("address", "address must be at least 5 characters")
	}
	start, err := ParseDatetime(in.PreferredDatetime, loc)
	if err != nil {
		add("preferred_datetime", "invalid date format")
	}
	if in.ServiceType == "" {
		add("service_type", "service type is required")
	}
	if in.ServicePrice < 0 {
		add("service_price", "invalid price")
	}
	if in.PaymentMethod == "" {
		add("payment_method", "payment method is required")
	}

	if len(fields) > 0 {
		return time.Time{}, domain.ErrValidation(fields)
	}
	return start, nil
}
