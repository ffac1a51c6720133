package payments

import (
	"context"
	"fmt"
	"strconv"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"

	domain "github.com/BruksfildServices01/housecall-booking/internal/domain/payment"
	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
)

type MercadoPago struct {
	client mppayment.Client
}

func NewMercadoPago(accessToken string) (*MercadoPago, error) {
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &MercadoPago{client: mppayment.NewClient(cfg)}, nil
}

func (g *MercadoPago) Charge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
	if req.CardToken == "" {
		return nil, httperr.Validation(domain.CodeCardTokenRequired, "card payments need a card_token")
	}

	res, err := g.client.Create(ctx, mppayment.Request{
		TransactionAmount: req.Amount,
		Token:             req.CardToken,
		Description:       req.Description,
		Installments:      1,
		ExternalReference: req.TransactionID,
		Payer: &mppayment.PayerRequest{
			Email: req.PayerEmail,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mercadopago charge: %w", err)
	}

	return &domain.ChargeResult{
		Status:     MapStatus(res.Status),
		GatewayRef: strconv.Itoa(res.ID),
	}, nil
}

// MapStatus folds the processor's states into ours.
func MapStatus(s string) domain.Status {
	switch s {
	case "approved", "authorized":
		return domain.StatusCompleted
	case "pending", "in_process", "in_mediation":
		return domain.StatusPending
	default:
		return domain.StatusFailed
	}
}

// Unavailable is used when no processor is configured.
type Unavailable struct{}

func (Unavailable) Charge(context.Context, domain.ChargeRequest) (*domain.ChargeResult, error) {
	return nil, httperr.Capacity(domain.CodeGatewayMissing, "card payments are not available")
}

// New picks the processor from config.
func New(accessToken string) (domain.Gateway, error) {
	if accessToken == "" {
		return Unavailable{}, nil
	}
	return NewMercadoPago(accessToken)
}
