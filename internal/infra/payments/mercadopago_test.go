package payments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/housecall-booking/internal/domain/payment"
	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
)

func TestMapStatus(t *testing.T) {
	assert.Equal(t, domain.StatusCompleted, MapStatus("approved"))
	assert.Equal(t, domain.StatusPending, MapStatus("in_process"))
	assert.Equal(t, domain.StatusFailed, MapStatus("rejected"))
	assert.Equal(t, domain.StatusFailed, MapStatus(""))
}

func TestNewWithoutTokenIsUnavailable(t *testing.T) {
	g, err := New("")
	require.NoError(t, err)

	_, err = g.Charge(context.Background(), domain.ChargeRequest{Amount: 10})
	assert.True(t, httperr.IsBusiness(err, domain.CodeGatewayMissing))
}
