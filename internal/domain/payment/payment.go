package payment

import (
	"context"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	domainBooking "github.com/BruksfildServices01/housecall-booking/internal/domain/booking"
	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

type Method string

const (
	MethodMpesa Method = "mpesa"
	MethodCash  Method = "cash"
	MethodCard  Method = "card"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

const amountTolerance = 0.01

var kenyanPhone = regexp.MustCompile(`^(\+254|254|0)?[17]\d{8}$`)

const (
	CodeNotFound          = "PAYMENT_NOT_FOUND"
	CodeInvalidMethod     = "INVALID_PAYMENT_METHOD"
	CodeInvalidPhone      = "INVALID_MPESA_PHONE"
	CodeAmountMismatch    = "AMOUNT_MISMATCH"
	CodeAlreadyPaid       = "BOOKING_ALREADY_PAID"
	CodeAlreadyReceived   = "PAYMENT_ALREADY_RECEIVED"
	CodeAlreadyPending    = "PAYMENT_ALREADY_PENDING"
	CodeNotCompleted      = "PAYMENT_NOT_COMPLETED"
	CodeNoReceiptEmail    = "RECEIPT_EMAIL_MISSING"
	CodeBookingClosed     = "BOOKING_NOT_PAYABLE"
	CodeGatewayMissing    = "PAYMENT_GATEWAY_UNAVAILABLE"
	CodeCardTokenRequired = "CARD_TOKEN_REQUIRED"
)

func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MethodMpesa, MethodCash, MethodCard:
		return m, nil
	}
	return "", httperr.Validation(CodeInvalidMethod, "payment_method must be one of mpesa, cash, card")
}

func ValidKenyanPhone(phone string) bool {
	return kenyanPhone.MatchString(strings.ReplaceAll(phone, " ", ""))
}

// AmountMatches compares against the booked service price.
func AmountMatches(amount, price float64) bool {
	return math.Abs(amount-price) < amountTolerance
}

// NewTransactionID returns METHOD_<uuid>.
func NewTransactionID(m Method) string {
	return strings.ToUpper(string(m)) + "_" + uuid.NewString()
}

// CheckPayable enforces the rules a booking must meet before money is taken.
func CheckPayable(b *models.Booking, amount float64) error {
	if b.PaymentStatus != string(domainBooking.PaymentUnpaid) {
		return httperr.Validation(CodeAlreadyPaid, "booking already has a payment ("+b.PaymentStatus+")")
	}
	if b.Status == string(domainBooking.StatusCancelled) || b.Status == string(domainBooking.StatusNoShow) {
		return httperr.Validation(CodeBookingClosed, "a "+b.Status+" booking cannot be paid")
	}
	if !AmountMatches(amount, b.ServicePrice) {
		return httperr.Validation(CodeAmountMismatch, "amount must equal the service price").
			WithDetails(map[string]float64{"expected": b.ServicePrice, "received": amount})
	}
	return nil
}

// BookingPaymentStatus maps a payment outcome onto the booking.
func BookingPaymentStatus(s Status) domainBooking.PaymentStatus {
	switch s {
	case StatusCompleted:
		return domainBooking.PaymentCompleted
	case StatusPending:
		return domainBooking.PaymentPending
	default:
		return domainBooking.PaymentUnpaid
	}
}

// MarkReceived confirms an offline payment.
func MarkReceived(p *models.Payment, notes string, now time.Time) error {
	if p.PaymentStatus == string(StatusCompleted) {
		return httperr.Validation(CodeAlreadyReceived, "payment is already marked as received")
	}
	p.PaymentStatus = string(StatusCompleted)
	p.PaymentReceivedAt = &now
	if notes != "" {
		p.AdminNotes = notes
	}
	return nil
}

// MarkPending reverts a payment that was confirmed by mistake.
func MarkPending(p *models.Payment, reason string) error {
	if p.PaymentStatus == string(StatusPending) {
		return httperr.Validation(CodeAlreadyPending, "payment is already pending")
	}
	p.PaymentStatus = string(StatusPending)
	p.PaymentReceivedAt = nil
	if reason != "" {
		p.AdminNotes = reason
	}
	return nil
}

// CheckReceiptable reports whether a receipt may be sent for p.
func CheckReceiptable(p *models.Payment) error {
	if p.PaymentStatus != string(StatusCompleted) {
		return httperr.Validation(CodeNotCompleted, "receipts are only sent for completed payments")
	}
	return nil
}

func ErrNotFound() error {
	return httperr.NotFoundErr(CodeNotFound, "payment not found")
}

// ===============================
// Gateway
// ===============================

type ChargeRequest struct {
	Amount        float64
	Description   string
	Method        Method
	CardToken     string
	PayerEmail    string
	PayerPhone    string
	TransactionID string
}

type ChargeResult struct {
	Status     Status
	GatewayRef string
}

// Gateway charges a customer through an external processor.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

type Filter struct {
	Status    string
	Method    string
	BookingID *uint
	Limit     int
	Offset    int
}

type Repository interface {
	Transaction(ctx context.Context, fn func(tx Repository) error) error
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	SetBookingPaymentStatus(ctx context.Context, bookingID uint, status domainBooking.PaymentStatus) error
	// ClaimBooking moves an unpaid booking to pending. It reports false when
	// another payment got there first.
	ClaimBooking(ctx context.Context, bookingID uint) (bool, error)
	Create(ctx context.Context, p *models.Payment) error
	Get(ctx context.Context, id uint) (*models.Payment, error)
	Update(ctx context.Context, p *models.Payment) error
	List(ctx context.Context, f Filter) ([]models.Payment, int64, error)
}
