package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/housecall-booking/internal/audit"
	domainBooking "github.com/BruksfildServices01/housecall-booking/internal/domain/booking"
	domain "github.com/BruksfildServices01/housecall-booking/internal/domain/payment"
	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
	"github.com/BruksfildServices01/housecall-booking/internal/logger"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
	"github.com/BruksfildServices01/housecall-booking/internal/notify"
)

type Notifier interface {
	Dispatch(msg notify.Message)
}

type discardNotifier struct{}

func (discardNotifier) Dispatch(notify.Message) {}

type Deps struct {
	Repo     domain.Repository
	Gateway  domain.Gateway
	Audit    audit.Sink
	Notifier Notifier
	Location *time.Location
	Now      func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Audit == nil {
		d.Audit = audit.Discard{}
	}
	if d.Notifier == nil {
		d.Notifier = discardNotifier{}
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// ======================================================
// CREATE
// ======================================================

type CreateInput struct {
	BookingID     uint
	Amount        float64
	PaymentMethod string
	PhoneNumber   string
	CardToken     string
	Notes         string
}

type CreatePayment struct {
	deps Deps
}

func NewCreatePayment(deps Deps) *CreatePayment {
	return &CreatePayment{deps: deps.withDefaults()}
}

// Execute records a payment. Cash and M-Pesa stay pending until an admin marks
// them received; card payments are charged straight away.
func (uc *CreatePayment) Execute(ctx context.Context, in CreateInput) (*models.Payment, error) {
	method, err := domain.ParseMethod(in.PaymentMethod)
	if err != nil {
		return nil, err
	}
	phone := strings.TrimSpace(in.PhoneNumber)
	if method == domain.MethodMpesa && !domain.ValidKenyanPhone(phone) {
		return nil, httperr.Validation(domain.CodeInvalidPhone, "a valid Kenyan phone number is required for M-Pesa")
	}
	if method == domain.MethodCard && strings.TrimSpace(in.CardToken) == "" {
		return nil, httperr.Validation(domain.CodeCardTokenRequired, "card payments need a card_token")
	}

	var (
		p       *models.Payment
		booking *models.Booking
	)
	err = uc.deps.Repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		booking, err = tx.GetBooking(ctx, in.BookingID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainBooking.ErrNotFound()
		}
		if err != nil {
			return err
		}
		if err := domain.CheckPayable(booking, in.Amount); err != nil {
			return err
		}

		claimed, err := tx.ClaimBooking(ctx, booking.ID)
		if err != nil {
			return err
		}
		if !claimed {
			return httperr.Validation(domain.CodeAlreadyPaid, "booking already has a payment")
		}

		p = &models.Payment{
			BookingID:     booking.ID,
			Amount:        in.Amount,
			PaymentMethod: string(method),
			PaymentStatus: string(domain.StatusPending),
			TransactionID: domain.NewTransactionID(method),
			PhoneNumber:   phone,
			CustomerNotes: strings.TrimSpace(in.Notes),
		}
		return tx.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	if method == domain.MethodCard {
		if err := uc.charge(ctx, booking, p, in.CardToken); err != nil {
			return nil, err
		}
	}

	uc.deps.Audit.Dispatch(audit.Event{
		Actor:    booking.CustomerPhone,
		Action:   "payment_created",
		Entity:   "payment",
		EntityID: audit.ID(p.ID),
		Metadata: map[string]any{
			"booking_id": booking.ID,
			"method":     p.PaymentMethod,
			"status":     p.PaymentStatus,
			"amount":     p.Amount,
		},
	})

	if p.PaymentStatus == string(domain.StatusCompleted) {
		uc.deps.Notifier.Dispatch(notify.PaymentReceipt(booking, p, uc.deps.Location))
	}
	return p, nil
}

// charge runs the processor outside any transaction and then settles both
// the payment and the booking.
func (uc *CreatePayment) charge(ctx context.Context, booking *models.Booking, p *models.Payment, token string) error {
	res, err := uc.deps.Gateway.Charge(ctx, domain.ChargeRequest{
		Amount:        p.Amount,
		Description:   fmt.Sprintf("%s booking #%d", booking.ServiceType, booking.ID),
		Method:        domain.MethodCard,
		CardToken:     token,
		PayerEmail:    booking.CustomerEmail,
		PayerPhone:    booking.CustomerPhone,
		TransactionID: p.TransactionID,
	})

	status := domain.StatusFailed
	if err == nil {
		status = res.Status
		p.GatewayRef = res.GatewayRef
	} else {
		logger.WithContext(ctx).Warn("card charge failed", "payment_id", p.ID, "error", err)
	}

	p.PaymentStatus = string(status)
	if status == domain.StatusCompleted {
		at := uc.deps.Now().UTC()
		p.PaymentReceivedAt = &at
	}

	txErr := uc.deps.Repo.Transaction(ctx, func(tx domain.Repository) error {
		if err := tx.Update(ctx, p); err != nil {
			return err
		}
		return tx.SetBookingPaymentStatus(ctx, booking.ID, domain.BookingPaymentStatus(status))
	})
	if txErr != nil {
		return txErr
	}
	booking.PaymentStatus = string(domain.BookingPaymentStatus(status))
	return err
}

// ======================================================
// MARK RECEIVED
// ======================================================

type MarkReceived struct {
	deps Deps
}

func NewMarkReceived(deps Deps) *MarkReceived {
	return &MarkReceived{deps: deps.withDefaults()}
}

func (uc *MarkReceived) Execute(ctx context.Context, id uint, notes, actor string) (*models.Payment, error) {
	var (
		p       *models.Payment
		booking *models.Booking
	)
	err := uc.deps.Repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		p, err = getPayment(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := domain.MarkReceived(p, strings.TrimSpace(notes), uc.deps.Now().UTC()); err != nil {
			return err
		}
		if err := tx.Update(ctx, p); err != nil {
			return err
		}
		if err := tx.SetBookingPaymentStatus(ctx, p.BookingID, domainBooking.PaymentCompleted); err != nil {
			return err
		}
		booking, err = tx.GetBooking(ctx, p.BookingID)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.deps.Audit.Dispatch(audit.Event{
		Actor:    actor,
		Action:   "payment_received",
		Entity:   "payment",
		EntityID: audit.ID(p.ID),
		Metadata: map[string]any{"booking_id": p.BookingID, "amount": p.Amount},
	})
	uc.deps.Notifier.Dispatch(notify.PaymentReceipt(booking, p, uc.deps.Location))

	return p, nil
}

// ======================================================
// MARK PENDING
// ======================================================

type MarkPending struct {
	deps Deps
}

func NewMarkPending(deps Deps) *MarkPending {
	return &MarkPending{deps: deps.withDefaults()}
}

// Execute reverts a payment to pending and moves the booking with it.
func (uc *MarkPending) Execute(ctx context.Context, id uint, reason, actor string) (*models.Payment, error) {
	var (
		p        *models.Payment
		previous string
	)
	err := uc.deps.Repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		p, err = getPayment(ctx, tx, id)
		if err != nil {
			return err
		}
		previous = p.PaymentStatus
		if err := domain.MarkPending(p, strings.TrimSpace(reason)); err != nil {
			return err
		}
		if err := tx.Update(ctx, p); err != nil {
			return err
		}
		return tx.SetBookingPaymentStatus(ctx, p.BookingID, domainBooking.PaymentPending)
	})
	if err != nil {
		return nil, err
	}

	uc.deps.Audit.Dispatch(audit.Event{
		Actor:    actor,
		Action:   "payment_marked_pending",
		Entity:   "payment",
		EntityID: audit.ID(p.ID),
		Metadata: map[string]any{"booking_id": p.BookingID, "previous_status": previous, "reason": p.AdminNotes},
	})
	logger.WithContext(ctx).Info("payment reverted to pending", "payment_id", p.ID, "booking_id", p.BookingID)

	return p, nil
}

// ======================================================
// RESEND RECEIPT
// ======================================================

type ResendReceipt struct {
	deps Deps
}

func NewResendReceipt(deps Deps) *ResendReceipt {
	return &ResendReceipt{deps: deps.withDefaults()}
}

func (uc *ResendReceipt) Execute(ctx context.Context, id uint, actor string) (*models.Payment, error) {
	p, err := getPayment(ctx, uc.deps.Repo, id)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckReceiptable(p); err != nil {
		return nil, err
	}
	booking, err := uc.deps.Repo.GetBooking(ctx, p.BookingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainBooking.ErrNotFound()
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(booking.CustomerEmail) == "" {
		return nil, httperr.Validation(domain.CodeNoReceiptEmail, "the booking has no customer email")
	}

	uc.deps.Notifier.Dispatch(notify.PaymentReceipt(booking, p, uc.deps.Location))
	uc.deps.Audit.Dispatch(audit.Event{
		Actor:    actor,
		Action:   "payment_receipt_resent",
		Entity:   "payment",
		EntityID: audit.ID(p.ID),
		Metadata: map[string]any{"booking_id": p.BookingID, "to": booking.CustomerEmail},
	})
	return p, nil
}

// ======================================================
// QUERIES
// ======================================================

type Query struct {
	repo domain.Repository
}

func NewQuery(repo domain.Repository) *Query {
	return &Query{repo: repo}
}

func (q *Query) Get(ctx context.Context, id uint) (*models.Payment, error) {
	return getPayment(ctx, q.repo, id)
}

func (q *Query) List(ctx context.Context, f domain.Filter) ([]models.Payment, int64, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return q.repo.List(ctx, f)
}

func getPayment(ctx context.Context, repo domain.Repository, id uint) (*models.Payment, error) {
	p, err := repo.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound()
	}
	return p, err
}
