package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	dbpkg "github.com/BruksfildServices01/housecall-booking/internal/db"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

// NewDB returns a migrated SQLite database living in the test's temp dir.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := dbpkg.Open(dbpkg.DriverSQLite, path)
	require.NoError(t, err)
	require.NoError(t, dbpkg.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeedBarbers inserts active barbers with badges "1".."n" named A, B, C...
func SeedBarbers(t *testing.T, db *gorm.DB, n int) []models.Barber {
	t.Helper()

	out := make([]models.Barber, 0, n)
	for i := 0; i < n; i++ {
		b := models.Barber{
			Name:        string(rune('A' + i)),
			Phone:       "07000000" + string(rune('0'+i/10)) + string(rune('0'+i%10)),
			Email:       "barber" + string(rune('a'+i)) + "@example.com",
			BadgeNumber: string(rune('1' + i)),
			IsActive:    true,
		}
		require.NoError(t, db.Create(&b).Error)
		out = append(out, b)
	}
	return out
}

// Clock is a settable time source for use cases under test.
type Clock struct {
	T time.Time
}

func (c *Clock) Now() time.Time { return c.T }

func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }
