package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocationFallsBackToDefault(t *testing.T) {
	loc := Location("Not/AZone")
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC).In(loc)

	_, offset := ts.Zone()
	assert.Equal(t, 3*60*60, offset)
}

func TestDayBounds(t *testing.T) {
	loc := Location(DefaultTimezone)

	// 22:30 UTC on May 31 is already June 1 in Nairobi.
	ts := time.Date(2024, 5, 31, 22, 30, 0, 0, time.UTC)
	start, end := DayBounds(ts, loc)

	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, loc), start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}
