package payment

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	domainBooking "github.com/BruksfildServices01/housecall-booking/internal/domain/booking"
	domain "github.com/BruksfildServices01/housecall-booking/internal/domain/payment"
	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
	"github.com/BruksfildServices01/housecall-booking/internal/infra/repository"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
	"github.com/BruksfildServices01/housecall-booking/internal/notify"
	"github.com/BruksfildServices01/housecall-booking/internal/testutil"
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (n *recordingNotifier) Dispatch(msg notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

type stubGateway struct {
	result *domain.ChargeResult
	err    error
	calls  int
}

func (g *stubGateway) Charge(_ context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
	g.calls++
	return g.result, g.err
}

func seedBooking(t *testing.T, db *gorm.DB, price float64) *models.Booking {
	t.Helper()
	at := time.Date(2024, 6, 3, 7, 0, 0, 0, time.UTC)
	b := &models.Booking{
		CustomerName:      "Jane",
		CustomerEmail:     "jane@example.com",
		CustomerPhone:     "0712345678",
		Address:           "12 Riverside Drive",
		PreferredDatetime: at,
		WindowStart:       at.Add(-time.Hour),
		WindowEnd:         at.Add(2 * time.Hour),
		ServiceType:       "Haircut",
		ServicePrice:      price,
		PaymentMethod:     "mpesa",
		PaymentStatus:     "unpaid",
		Status:            "pending",
	}
	require.NoError(t, db.Create(b).Error)
	return b
}

func bookingPaymentStatus(t *testing.T, db *gorm.DB, id uint) string {
	t.Helper()
	var b models.Booking
	require.NoError(t, db.First(&b, id).Error)
	return b.PaymentStatus
}

func TestMpesaPaymentLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	booking := seedBooking(t, db, 1500)
	repo := repository.NewPaymentGormRepository(db)
	notifier := &recordingNotifier{}
	deps := Deps{Repo: repo, Gateway: &stubGateway{}, Notifier: notifier}
	ctx := context.Background()

	create := NewCreatePayment(deps)

	_, err := create.Execute(ctx, CreateInput{BookingID: booking.ID, Amount: 1500, PaymentMethod: "mpesa", PhoneNumber: "12345"})
	assert.True(t, httperr.IsBusiness(err, domain.CodeInvalidPhone))

	_, err = create.Execute(ctx, CreateInput{BookingID: booking.ID, Amount: 1400, PaymentMethod: "mpesa", PhoneNumber: "0712345678"})
	assert.True(t, httperr.IsBusiness(err, domain.CodeAmountMismatch))

	p, err := create.Execute(ctx, CreateInput{BookingID: booking.ID, Amount: 1500.004, PaymentMethod: "MPESA", PhoneNumber: "+254712345678"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPending), p.PaymentStatus)
	assert.True(t, strings.HasPrefix(p.TransactionID, "MPESA_"))
	assert.Equal(t, string(domainBooking.PaymentPending), bookingPaymentStatus(t, db, booking.ID))
	assert.Empty(t, notifier.msgs)

	_, err = create.Execute(ctx, CreateInput{BookingID: booking.ID, Amount: 1500, PaymentMethod: "cash"})
	assert.True(t, httperr.IsBusiness(err, domain.CodeAlreadyPaid))

	mark := NewMarkReceived(deps)
	received, err := mark.Execute(ctx, p.ID, "paid at door", "admin")
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), received.PaymentStatus)
	require.NotNil(t, received.PaymentReceivedAt)
	assert.Equal(t, "paid at door", received.AdminNotes)
	assert.Equal(t, string(domainBooking.PaymentCompleted), bookingPaymentStatus(t, db, booking.ID))
	require.Len(t, notifier.msgs, 1)
	assert.Equal(t, "jane@example.com", notifier.msgs[0].To)

	_, err = mark.Execute(ctx, p.ID, "", "admin")
	assert.True(t, httperr.IsBusiness(err, domain.CodeAlreadyReceived))

	_, err = mark.Execute(ctx, 999, "", "admin")
	assert.True(t, httperr.IsBusiness(err, domain.CodeNotFound))
}

func TestMarkPendingAndResendReceipt(t *testing.T) {
	db := testutil.NewDB(t)
	booking := seedBooking(t, db, 800)
	repo := repository.NewPaymentGormRepository(db)
	notifier := &recordingNotifier{}
	deps := Deps{Repo: repo, Gateway: &stubGateway{}, Notifier: notifier}
	ctx := context.Background()

	p, err := NewCreatePayment(deps).Execute(ctx, CreateInput{BookingID: booking.ID, Amount: 800, PaymentMethod: "cash"})
	require.NoError(t, err)

	resend := NewResendReceipt(deps)
	_, err = resend.Execute(ctx, p.ID, "admin")
	assert.True(t, httperr.IsBusiness(err, domain.CodeNotCompleted))
	assert.Empty(t, notifier.msgs)

	revert := NewMarkPending(deps)
	_, err = revert.Execute(ctx, p.ID, "", "admin")
	assert.True(t, httperr.IsBusiness(err, domain.CodeAlreadyPending))

	_, err = NewMarkReceived(deps).Execute(ctx, p.ID, "", "admin")
	require.NoError(t, err)
	require.Len(t, notifier.msgs, 1)

	_, err = resend.Execute(ctx, p.ID, "admin")
	require.NoError(t, err)
	require.Len(t, notifier.msgs, 2)
	assert.Equal(t, notifier.msgs[0].Subject, notifier.msgs[1].Subject)

	reverted, err := revert.Execute(ctx, p.ID, "note was counterfeit", "admin")
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPending), reverted.PaymentStatus)
	assert.Nil(t, reverted.PaymentReceivedAt)
	assert.Equal(t, string(domainBooking.PaymentPending), bookingPaymentStatus(t, db, booking.ID))

	var stored models.Payment
	require.NoError(t, db.First(&stored, p.ID).Error)
	assert.Nil(t, stored.PaymentReceivedAt)
	assert.Equal(t, "note was counterfeit", stored.AdminNotes)

	// Pending again, so it can be received a second time.
	_, err = NewMarkReceived(deps).Execute(ctx, p.ID, "", "admin")
	require.NoError(t, err)

	_, err = resend.Execute(ctx, 999, "admin")
	assert.True(t, httperr.IsBusiness(err, domain.CodeNotFound))
}

func TestCardPaymentOutcomes(t *testing.T) {
	tests := []struct {
		name         string
		gateway      *stubGateway
		wantErr      bool
		wantPayment  domain.Status
		wantBooking  domainBooking.PaymentStatus
		wantReceipts int
	}{
		{
			name:         "approved",
			gateway:      &stubGateway{result: &domain.ChargeResult{Status: domain.StatusCompleted, GatewayRef: "991"}},
			wantPayment:  domain.StatusCompleted,
			wantBooking:  domainBooking.PaymentCompleted,
			wantReceipts: 1,
		},
		{
			name:        "in review",
			gateway:     &stubGateway{result: &domain.ChargeResult{Status: domain.StatusPending, GatewayRef: "992"}},
			wantPayment: domain.StatusPending,
			wantBooking: domainBooking.PaymentPending,
		},
		{
			name:        "rejected",
			gateway:     &stubGateway{result: &domain.ChargeResult{Status: domain.StatusFailed}},
			wantPayment: domain.StatusFailed,
			wantBooking: domainBooking.PaymentUnpaid,
		},
		{
			name:        "processor down",
			gateway:     &stubGateway{err: errors.New("timeout")},
			wantErr:     true,
			wantPayment: domain.StatusFailed,
			wantBooking: domainBooking.PaymentUnpaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.NewDB(t)
			booking := seedBooking(t, db, 2000)
			notifier := &recordingNotifier{}
			repo := repository.NewPaymentGormRepository(db)

			p, err := NewCreatePayment(Deps{Repo: repo, Gateway: tt.gateway, Notifier: notifier}).
				Execute(context.Background(), CreateInput{BookingID: booking.ID, Amount: 2000, PaymentMethod: "card", CardToken: "tok"})
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, string(tt.wantPayment), p.PaymentStatus)
			}

			var stored models.Payment
			require.NoError(t, db.Where("booking_id = ?", booking.ID).First(&stored).Error)
			assert.Equal(t, string(tt.wantPayment), stored.PaymentStatus)
			assert.Equal(t, string(tt.wantBooking), bookingPaymentStatus(t, db, booking.ID))
			assert.Len(t, notifier.msgs, tt.wantReceipts)
			assert.Equal(t, 1, tt.gateway.calls)
		})
	}
}

func TestCardNeedsToken(t *testing.T) {
	db := testutil.NewDB(t)
	booking := seedBooking(t, db, 100)
	gw := &stubGateway{}

	_, err := NewCreatePayment(Deps{Repo: repository.NewPaymentGormRepository(db), Gateway: gw}).
		Execute(context.Background(), CreateInput{BookingID: booking.ID, Amount: 100, PaymentMethod: "card"})
	assert.True(t, httperr.IsBusiness(err, domain.CodeCardTokenRequired))
	assert.Zero(t, gw.calls)
}

func TestPaymentRejectsClosedBooking(t *testing.T) {
	db := testutil.NewDB(t)
	booking := seedBooking(t, db, 100)
	require.NoError(t, db.Model(booking).Update("status", "cancelled").Error)
	create := NewCreatePayment(Deps{Repo: repository.NewPaymentGormRepository(db)})

	_, err := create.Execute(context.Background(), CreateInput{BookingID: booking.ID, Amount: 100, PaymentMethod: "cash"})
	assert.True(t, httperr.IsBusiness(err, domain.CodeBookingClosed))

	_, err = create.Execute(context.Background(), CreateInput{BookingID: 404, Amount: 100, PaymentMethod: "cash"})
	assert.True(t, httperr.IsBusiness(err, domainBooking.CodeNotFound))

	_, err = create.Execute(context.Background(), CreateInput{BookingID: booking.ID, Amount: 100, PaymentMethod: "cheque"})
	assert.True(t, httperr.IsBusiness(err, domain.CodeInvalidMethod))
}

func TestQueryList(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewPaymentGormRepository(db)
	create := NewCreatePayment(Deps{Repo: repo})

	for i := 0; i < 3; i++ {
		b := seedBooking(t, db, 100)
		_, err := create.Execute(context.Background(), CreateInput{BookingID: b.ID, Amount: 100, PaymentMethod: "cash"})
		require.NoError(t, err)
	}

	q := NewQuery(repo)
	list, total, err := q.List(context.Background(), domain.Filter{Method: "cash", Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, list, 2)

	got, err := q.Get(context.Background(), list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, list[0].TransactionID, got.TransactionID)
}
