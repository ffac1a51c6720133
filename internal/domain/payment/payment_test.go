package payment

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainBooking "github.com/BruksfildServices01/housecall-booking/internal/domain/booking"
	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod(" MPesa ")
	require.NoError(t, err)
	assert.Equal(t, MethodMpesa, m)

	_, err = ParseMethod("bitcoin")
	assert.True(t, httperr.IsBusiness(err, CodeInvalidMethod))
}

func TestKenyanPhone(t *testing.T) {
	for _, ok := range []string{"0712345678", "+254712345678", "254112345678", "712345678", "0712 345 678"} {
		assert.True(t, ValidKenyanPhone(ok), ok)
	}
	for _, bad := range []string{"0812345678", "07123", "+255712345678", ""} {
		assert.False(t, ValidKenyanPhone(bad), bad)
	}
}

func TestCheckPayable(t *testing.T) {
	b := &models.Booking{ServicePrice: 2000, PaymentStatus: "unpaid", Status: "pending"}

	assert.NoError(t, CheckPayable(b, 2000))
	assert.NoError(t, CheckPayable(b, 2000.005))
	assert.True(t, httperr.IsBusiness(CheckPayable(b, 1999), CodeAmountMismatch))

	paid := *b
	paid.PaymentStatus = "completed"
	assert.True(t, httperr.IsBusiness(CheckPayable(&paid, 2000), CodeAlreadyPaid))

	cancelled := *b
	cancelled.Status = "cancelled"
	assert.True(t, httperr.IsBusiness(CheckPayable(&cancelled, 2000), CodeBookingClosed))
}

func TestBookingPaymentStatus(t *testing.T) {
	assert.Equal(t, domainBooking.PaymentCompleted, BookingPaymentStatus(StatusCompleted))
	assert.Equal(t, domainBooking.PaymentPending, BookingPaymentStatus(StatusPending))
	assert.Equal(t, domainBooking.PaymentUnpaid, BookingPaymentStatus(StatusFailed))
}

func TestMarkReceived(t *testing.T) {
	p := &models.Payment{PaymentStatus: "pending"}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, MarkReceived(p, "cash handed to barber", now))
	assert.Equal(t, "completed", p.PaymentStatus)
	assert.Equal(t, now, *p.PaymentReceivedAt)

	assert.True(t, httperr.IsBusiness(MarkReceived(p, "", now), CodeAlreadyReceived))
}

func TestMarkPending(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	p := &models.Payment{PaymentStatus: "completed", PaymentReceivedAt: &now, AdminNotes: "cash"}

	require.NoError(t, MarkPending(p, "counted wrong"))
	assert.Equal(t, "pending", p.PaymentStatus)
	assert.Nil(t, p.PaymentReceivedAt)
	assert.Equal(t, "counted wrong", p.AdminNotes)
	assert.True(t, httperr.IsBusiness(MarkPending(p, ""), CodeAlreadyPending))
	assert.True(t, httperr.IsBusiness(CheckReceiptable(p), CodeNotCompleted))

	failed := &models.Payment{PaymentStatus: "failed", AdminNotes: "kept"}
	require.NoError(t, MarkPending(failed, ""))
	assert.Equal(t, "kept", failed.AdminNotes)
}

func TestTransactionID(t *testing.T) {
	id := NewTransactionID(MethodCash)
	assert.True(t, strings.HasPrefix(id, "CASH_"))
	assert.NotEqual(t, id, NewTransactionID(MethodCash))
}
