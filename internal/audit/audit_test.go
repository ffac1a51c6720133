package audit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/housecall-booking/internal/models"
	"github.com/BruksfildServices01/housecall-booking/internal/testutil"
)

func TestDispatcherPersistsEvents(t *testing.T) {
	db := testutil.NewDB(t)
	d := NewDispatcher(New(db))

	d.Dispatch(Event{
		Actor:    "admin",
		Action:   "barber_blocked",
		Entity:   "barber",
		EntityID: ID(3),
		Metadata: map[string]any{"reason": "late", "hours": 2},
	})
	d.Close()

	var logs []models.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "barber_blocked", logs[0].Action)
	assert.Equal(t, uint(3), *logs[0].EntityID)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(logs[0].Metadata, &meta))
	assert.Equal(t, "late", meta["reason"])
}

func TestDispatchAfterClose(t *testing.T) {
	d := NewDispatcher(New(testutil.NewDB(t)))
	d.Close()

	assert.NotPanics(t, func() { d.Dispatch(Event{Action: "late"}) })
}
