package barber

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

var t0 = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func TestTemporaryBlockExpiry(t *testing.T) {
	state, err := Block(Unblocked{}, BlockRequest{Reason: "late twice", Type: "temporary", DurationHours: 1}, t0)
	require.NoError(t, err)

	tmp, ok := state.Kind.(Temporary)
	require.True(t, ok)
	assert.Equal(t, t0.Add(time.Hour), tmp.ExpiresAt)

	assert.False(t, Expired(state, t0.Add(30*time.Minute)))
	assert.False(t, Expired(state, t0.Add(59*time.Minute+59*time.Second)))
	assert.True(t, Expired(state, t0.Add(time.Hour)))
	assert.True(t, Expired(state, t0.Add(61*time.Minute)))
}

func TestBlockDefaults(t *testing.T) {
	state, err := Block(Unblocked{}, BlockRequest{Reason: "  misconduct "}, t0)
	require.NoError(t, err)

	assert.Equal(t, "misconduct", state.Reason)
	assert.Equal(t, DefaultBlockedBy, state.BlockedBy)
	assert.Equal(t, DefaultBlockCategory, state.Category)
	assert.Equal(t, DefaultBlockSeverity, state.Severity)
	assert.IsType(t, Permanent{}, state.Kind)
	assert.False(t, Expired(state, t0.AddDate(10, 0, 0)))
}

func TestBlockRejections(t *testing.T) {
	tests := []struct {
		name    string
		current BlockState
		req     BlockRequest
		code    string
	}{
		{"already blocked", Blocked{Kind: Permanent{}}, BlockRequest{Reason: "x"}, CodeAlreadyBlocked},
		{"missing reason", Unblocked{}, BlockRequest{Reason: "  "}, CodeBlockReasonRequired},
		{"temporary without duration", Unblocked{}, BlockRequest{Reason: "x", Type: "temporary"}, CodeBlockDurationRequired},
		{"negative duration", Unblocked{}, BlockRequest{Reason: "x", Type: "temporary", DurationHours: -2}, CodeBlockDurationRequired},
		{"duration past a year", Unblocked{}, BlockRequest{Reason: "fraud", Type: "temporary", DurationHours: 2600000}, CodeBlockDurationTooLong},
		{"unknown type", Unblocked{}, BlockRequest{Reason: "x", Type: "forever"}, CodeInvalidBlockType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Block(tt.current, tt.req, t0)
			be, ok := httperr.AsBusiness(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, be.Code)
			assert.Equal(t, httperr.KindValidation, be.Kind)
		})
	}
}

func TestLongestTemporaryBlockExpiresInFuture(t *testing.T) {
	state, err := Block(Unblocked{}, BlockRequest{Reason: "fraud", Type: "temporary", DurationHours: MaxBlockHours}, t0)
	require.NoError(t, err)

	kind, ok := state.Kind.(Temporary)
	require.True(t, ok)
	assert.True(t, kind.ExpiresAt.After(t0))
	assert.False(t, Expired(state, t0.Add(time.Hour)))
}

func TestUnblockRequiresBlocked(t *testing.T) {
	_, err := Unblock(Unblocked{})
	assert.True(t, httperr.IsBusiness(err, CodeNotBlocked))

	_, err = Unblock(Blocked{Kind: Permanent{}})
	assert.NoError(t, err)
}

func TestApplyRoundTrip(t *testing.T) {
	b := &models.Barber{ID: 1, IsActive: true}

	state, err := Block(StateOf(b), BlockRequest{Reason: "no show", Type: "temporary", DurationHours: 24, BlockedBy: "ops"}, t0)
	require.NoError(t, err)
	Apply(b, state)

	assert.True(t, b.IsBlocked)
	assert.Equal(t, BlockTypeTemporary, b.BlockType)
	require.NotNil(t, b.BlockExpiresAt)
	assert.Equal(t, t0.Add(24*time.Hour), *b.BlockExpiresAt)
	assert.Equal(t, state, StateOf(b))
	assert.False(t, IsEligible(b))

	Apply(b, Unblocked{})
	assert.False(t, b.IsBlocked)
	assert.Nil(t, b.BlockExpiresAt)
	assert.Nil(t, b.BlockedAt)
	assert.Empty(t, b.BlockReason)
	assert.Empty(t, b.BlockType)
	assert.Equal(t, Unblocked{}, StateOf(b))
	assert.True(t, IsEligible(b))
}

func TestPermanentBlockHasNoExpiry(t *testing.T) {
	b := &models.Barber{}
	state, err := Block(Unblocked{}, BlockRequest{Reason: "fraud", Type: "permanent", DurationHours: 5}, t0)
	require.NoError(t, err)

	Apply(b, state)
	assert.Nil(t, b.BlockExpiresAt)
	assert.Equal(t, BlockTypePermanent, b.BlockType)
}

func TestEligibleOrdersByBadge(t *testing.T) {
	roster := []models.Barber{
		{ID: 1, BadgeNumber: "B-20", IsActive: true},
		{ID: 2, BadgeNumber: "B-03", IsActive: true},
		{ID: 3, BadgeNumber: "B-01", IsActive: false},
		{ID: 4, BadgeNumber: "B-02", IsActive: true, IsBlocked: true},
		{ID: 5, BadgeNumber: "B-10", IsActive: true},
	}

	pool := Eligible(roster)

	ids := make([]uint, 0, len(pool))
	for _, b := range pool {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []uint{2, 5, 1}, ids)
}

// Badges compare as strings, as the column does in SQL: "B10" sorts before
// "B2". Zero-padded badges sort numerically.
func TestSortPoolComparesBadgesAsText(t *testing.T) {
	pool := []models.Barber{
		{ID: 7, BadgeNumber: "B2"},
		{ID: 3, BadgeNumber: "B10"},
		{ID: 9, BadgeNumber: "B2"},
		{ID: 1, BadgeNumber: "B1"},
	}

	SortPool(pool)

	ids := make([]uint, 0, len(pool))
	for _, b := range pool {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []uint{1, 3, 7, 9}, ids)
}
