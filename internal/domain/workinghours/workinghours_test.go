package workinghours

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

var loc = time.FixedZone("EAT", 3*60*60)

// 2024-06-01 is a Saturday, 2024-06-02 a Sunday, 2024-06-03 a Monday.
func local(day, h, m int) time.Time {
	return time.Date(2024, 6, day, h, m, 0, 0, loc)
}

func TestCheckWithinHours(t *testing.T) {
	s := NewSchedule(Defaults(), loc)

	assert.True(t, s.Check(local(3, 8, 0), time.Hour).IsOpen)
	assert.True(t, s.Check(local(3, 17, 0), time.Hour).IsOpen)
	assert.True(t, s.Check(local(1, 15, 0), time.Hour).IsOpen)
}

func TestCheckOutsideHours(t *testing.T) {
	s := NewSchedule(Defaults(), loc)

	early := s.Check(local(3, 7, 30), time.Hour)
	assert.False(t, early.IsOpen)
	require.NotNil(t, early.NextOpen)
	assert.Equal(t, local(3, 8, 0), *early.NextOpen)

	late := s.Check(local(1, 15, 30), time.Hour)
	assert.False(t, late.IsOpen)
	require.NotNil(t, late.NextOpen)
	// Sunday is closed, so Monday morning
	assert.Equal(t, local(3, 8, 0), *late.NextOpen)

	sunday := s.Check(local(2, 10, 0), time.Hour)
	assert.False(t, sunday.IsOpen)
	assert.Contains(t, sunday.Reason, "Sunday")
}

func TestCheckConvertsToBusinessZone(t *testing.T) {
	s := NewSchedule(Defaults(), loc)

	// 05:00 UTC is 08:00 in Nairobi
	assert.True(t, s.Check(time.Date(2024, 6, 3, 5, 0, 0, 0, time.UTC), time.Hour).IsOpen)
	assert.False(t, s.Check(time.Date(2024, 6, 3, 4, 59, 0, 0, time.UTC), time.Hour).IsOpen)
}

func TestSlots(t *testing.T) {
	s := NewSchedule(Defaults(), loc)

	slots := s.Slots(local(1, 0, 0), time.Hour)
	require.Len(t, slots, 8)
	assert.Equal(t, "08:00", slots[0].Label)
	assert.Equal(t, "15:00", slots[7].Label)

	assert.Empty(t, s.Slots(local(2, 0, 0), time.Hour))
	assert.Len(t, s.Slots(local(3, 0, 0), 90*time.Minute), 6)
}

func TestValidateDay(t *testing.T) {
	assert.NoError(t, ValidateDay(models.WorkingHours{DayOfWeek: 1, IsOpen: true, OpenTime: "09:00", CloseTime: "17:30"}))
	assert.NoError(t, ValidateDay(models.WorkingHours{DayOfWeek: 0, IsOpen: false}))
	assert.Error(t, ValidateDay(models.WorkingHours{DayOfWeek: 1, IsOpen: true, OpenTime: "9:00", CloseTime: "17:00"}))
	assert.Error(t, ValidateDay(models.WorkingHours{DayOfWeek: 1, IsOpen: true, OpenTime: "18:00", CloseTime: "08:00"}))
	assert.Error(t, ValidateDay(models.WorkingHours{DayOfWeek: 7, IsOpen: false}))
}

func TestSummary(t *testing.T) {
	sum := NewSchedule(Defaults(), loc).Summary()

	require.Len(t, sum, 7)
	assert.Equal(t, "Closed", sum[0].Hours)
	assert.Equal(t, "08:00 - 18:00", sum[1].Hours)
	assert.Equal(t, "08:00 - 16:00", sum[6].Hours)
}
