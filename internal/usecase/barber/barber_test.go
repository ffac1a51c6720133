package barber

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/housecall-booking/internal/domain/barber"
	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
	"github.com/BruksfildServices01/housecall-booking/internal/infra/repository"
	"github.com/BruksfildServices01/housecall-booking/internal/infra/storage"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
	"github.com/BruksfildServices01/housecall-booking/internal/notify"
	"github.com/BruksfildServices01/housecall-booking/internal/testutil"
)

var t0 = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (n *recordingNotifier) Dispatch(msg notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func setup(t *testing.T, n int) (*gorm.DB, *repository.BarberGormRepository, []models.Barber, *testutil.Clock) {
	t.Helper()
	db := testutil.NewDB(t)
	barbers := testutil.SeedBarbers(t, db, n)
	return db, repository.NewBarberGormRepository(db), barbers, &testutil.Clock{T: t0}
}

func ptr[T any](v T) *T { return &v }

func TestSweepRespectsExpiry(t *testing.T) {
	_, repo, barbers, clock := setup(t, 2)
	ctx := context.Background()

	block := NewBlockBarber(repo, nil, nil, time.UTC, clock.Now)
	sweep := NewSweepExpiredBlocks(repo, nil, clock.Now)

	b, err := block.Execute(ctx, barbers[0].ID, domain.BlockRequest{Reason: "late twice", Type: "temporary", DurationHours: 1})
	require.NoError(t, err)
	require.NotNil(t, b.BlockExpiresAt)
	assert.True(t, b.BlockExpiresAt.Equal(t0.Add(time.Hour)))

	_, err = block.Execute(ctx, barbers[1].ID, domain.BlockRequest{Reason: "fraud"})
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	res, err := sweep.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.UnblockedCount)
	assert.Empty(t, res.UnblockedBarbers)

	clock.Advance(31 * time.Minute)
	res, err = sweep.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.UnblockedCount)
	require.Len(t, res.UnblockedBarbers, 1)
	assert.Equal(t, barbers[0].ID, res.UnblockedBarbers[0].ID)

	got, err := repo.Get(ctx, barbers[0].ID)
	require.NoError(t, err)
	assert.False(t, got.IsBlocked)
	assert.Nil(t, got.BlockExpiresAt)
	assert.Nil(t, got.BlockedAt)
	assert.Empty(t, got.BlockReason)
	assert.Empty(t, got.BlockType)

	// Permanent block survives any sweep.
	perm, err := repo.Get(ctx, barbers[1].ID)
	require.NoError(t, err)
	assert.True(t, perm.IsBlocked)

	res, err = sweep.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.UnblockedCount)
}

func TestWarnExpiringBlocksOncePerBlock(t *testing.T) {
	_, repo, barbers, clock := setup(t, 3)
	ctx := context.Background()
	notifier := &recordingNotifier{}

	block := NewBlockBarber(repo, nil, nil, time.UTC, clock.Now)
	warn := NewWarnExpiringBlocks(repo, notifier, "admin@example.com", time.UTC, clock.Now)

	_, err := block.Execute(ctx, barbers[0].ID, domain.BlockRequest{Reason: "late", Type: "temporary", DurationHours: 12})
	require.NoError(t, err)
	_, err = block.Execute(ctx, barbers[1].ID, domain.BlockRequest{Reason: "no-show", Type: "temporary", DurationHours: 48})
	require.NoError(t, err)
	_, err = block.Execute(ctx, barbers[2].ID, domain.BlockRequest{Reason: "fraud"})
	require.NoError(t, err)

	res, err := warn.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.WarnedCount)
	require.Len(t, res.Barbers, 1)
	assert.Equal(t, barbers[0].ID, res.Barbers[0].ID)
	require.Len(t, notifier.msgs, 2)
	assert.Equal(t, "admin@example.com", notifier.msgs[0].To)
	assert.Contains(t, notifier.msgs[0].HTML, "12 hours")
	assert.Equal(t, "barbera@example.com", notifier.msgs[1].To)

	// Same block, later run: no repeat.
	clock.Advance(time.Hour)
	res, err = warn.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.WarnedCount)
	assert.Len(t, notifier.msgs, 2)

	// The 48h block enters the window a day later.
	clock.Advance(24 * time.Hour)
	res, err = warn.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.WarnedCount)
	assert.Equal(t, barbers[1].ID, res.Barbers[0].ID)
	assert.Len(t, notifier.msgs, 4)
}

func TestReblockResetsExpiryWarning(t *testing.T) {
	_, repo, barbers, clock := setup(t, 1)
	ctx := context.Background()
	notifier := &recordingNotifier{}

	block := NewBlockBarber(repo, nil, nil, time.UTC, clock.Now)
	unblock := NewUnblockBarber(repo, nil)
	warn := NewWarnExpiringBlocks(repo, notifier, "", time.UTC, clock.Now)

	_, err := block.Execute(ctx, barbers[0].ID, domain.BlockRequest{Reason: "late", Type: "temporary", DurationHours: 2})
	require.NoError(t, err)
	res, err := warn.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.WarnedCount)
	require.Len(t, notifier.msgs, 1, "no admin address, barber only")

	got, err := repo.Get(ctx, barbers[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got.BlockExpiryWarnedAt)

	_, err = unblock.Execute(ctx, barbers[0].ID, "admin")
	require.NoError(t, err)
	got, err = repo.Get(ctx, barbers[0].ID)
	require.NoError(t, err)
	assert.Nil(t, got.BlockExpiryWarnedAt)

	_, err = block.Execute(ctx, barbers[0].ID, domain.BlockRequest{Reason: "late again", Type: "temporary", DurationHours: 3})
	require.NoError(t, err)
	res, err = warn.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.WarnedCount)
	assert.Len(t, notifier.msgs, 2)
}

func TestBlockTwiceAndUnblockTwice(t *testing.T) {
	_, repo, barbers, clock := setup(t, 1)
	ctx := context.Background()
	notifier := &recordingNotifier{}

	block := NewBlockBarber(repo, nil, notifier, time.UTC, clock.Now)
	unblock := NewUnblockBarber(repo, nil)

	b, err := block.Execute(ctx, barbers[0].ID, domain.BlockRequest{Reason: "misconduct"})
	require.NoError(t, err)
	assert.Equal(t, domain.BlockTypePermanent, b.BlockType)
	assert.Equal(t, domain.DefaultBlockCategory, b.BlockCategory)
	assert.Len(t, notifier.msgs, 1)

	_, err = block.Execute(ctx, barbers[0].ID, domain.BlockRequest{Reason: "again"})
	assert.True(t, httperr.IsBusiness(err, domain.CodeAlreadyBlocked))

	_, err = unblock.Execute(ctx, barbers[0].ID, "admin")
	require.NoError(t, err)

	_, err = unblock.Execute(ctx, barbers[0].ID, "admin")
	assert.True(t, httperr.IsBusiness(err, domain.CodeNotBlocked))

	_, err = block.Execute(ctx, 999, domain.BlockRequest{Reason: "x"})
	assert.True(t, httperr.IsBusiness(err, domain.CodeNotFound))
}

func TestTemporaryBlockNeedsDuration(t *testing.T) {
	_, repo, barbers, clock := setup(t, 1)

	_, err := NewBlockBarber(repo, nil, nil, time.UTC, clock.Now).
		Execute(context.Background(), barbers[0].ID, domain.BlockRequest{Reason: "late", Type: "temporary"})
	assert.True(t, httperr.IsBusiness(err, domain.CodeBlockDurationRequired))

	got, err := repo.Get(context.Background(), barbers[0].ID)
	require.NoError(t, err)
	assert.False(t, got.IsBlocked)
}

func TestManageLifecycle(t *testing.T) {
	db, repo, barbers, _ := setup(t, 1)
	ctx := context.Background()
	m := NewManage(repo)

	created, err := m.Create(ctx, Input{
		Name:        ptr("Zed"),
		Phone:       ptr("0799999999"),
		Email:       ptr("zed@example.com"),
		BadgeNumber: ptr("0"),
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	_, err = m.Create(ctx, Input{Name: ptr("Dup"), Phone: ptr("0799999999"), BadgeNumber: ptr("77")})
	assert.True(t, httperr.IsBusiness(err, domain.CodeAlreadyExists))

	_, err = m.Create(ctx, Input{Name: ptr("X"), Email: ptr("bad")})
	assert.True(t, httperr.IsBusiness(err, domain.CodeValidation))

	pool, err := m.Available(ctx)
	require.NoError(t, err)
	require.Len(t, pool, 2)
	assert.Equal(t, "Zed", pool[0].Name, "badge 0 sorts first")

	updated, err := m.Update(ctx, created.ID, Input{IsActive: ptr(false)})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	all, err := m.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	all, err = m.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	barberID := barbers[0].ID
	require.NoError(t, db.Create(&models.Booking{
		CustomerName:      "C",
		CustomerPhone:     "0711",
		Address:           "somewhere",
		PreferredDatetime: t0,
		WindowStart:       t0.Add(-time.Hour),
		WindowEnd:         t0.Add(2 * time.Hour),
		ServiceType:       "Haircut",
		ServicePrice:      500,
		PaymentMethod:     "cash",
		Status:            "pending",
		BarberID:          &barberID,
	}).Error)

	err = m.Delete(ctx, barberID)
	assert.True(t, httperr.IsBusiness(err, domain.CodeHasActiveBookings))

	stats, err := m.Stats(ctx, barberID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalBookings)
	assert.EqualValues(t, 1, stats.Pending)

	require.NoError(t, m.Delete(ctx, created.ID))
	_, err = m.Get(ctx, created.ID)
	assert.True(t, httperr.IsBusiness(err, domain.CodeNotFound))
}

type memStore struct {
	keys []string
}

func (s *memStore) Put(_ context.Context, key string, body []byte, contentType string) (string, error) {
	s.keys = append(s.keys, key)
	return "https://cdn.example.com/" + key, nil
}

func TestUploadPhoto(t *testing.T) {
	_, repo, barbers, clock := setup(t, 1)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 40))))

	store := &memStore{}
	b, err := NewUploadPhoto(repo, store, clock.Now).Execute(ctx, barbers[0].ID, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, store.keys, 1)
	assert.Equal(t, "https://cdn.example.com/"+store.keys[0], b.ProfilePhotoURL)
	assert.Contains(t, store.keys[0], ".webp")

	_, err = NewUploadPhoto(repo, store, clock.Now).Execute(ctx, barbers[0].ID, bytes.NewReader([]byte("nope")))
	assert.True(t, httperr.IsBusiness(err, CodeInvalidImage))

	_, err = NewUploadPhoto(repo, storage.Disabled{}, clock.Now).Execute(ctx, barbers[0].ID, bytes.NewReader(buf.Bytes()))
	assert.True(t, httperr.IsBusiness(err, CodeStorageUnavailable))
}

func TestDailySummary(t *testing.T) {
	db, repo, barbers, _ := setup(t, 2)
	ctx := context.Background()

	yesterday := time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC)
	for i, status := range []string{"completed", "cancelled", "completed"} {
		id := barbers[0].ID
		require.NoError(t, db.Create(&models.Booking{
			CustomerName:      "C",
			CustomerPhone:     "071100000" + string(rune('0'+i)),
			Address:           "somewhere",
			PreferredDatetime: yesterday.Add(time.Duration(i) * 3 * time.Hour),
			WindowStart:       yesterday,
			WindowEnd:         yesterday,
			ServiceType:       "Haircut",
			ServicePrice:      1000,
			PaymentMethod:     "cash",
			Status:            status,
			BarberID:          &id,
		}).Error)
	}

	notifier := &recordingNotifier{}
	clock := &testutil.Clock{T: time.Date(2024, 6, 3, 6, 0, 0, 0, time.UTC)}
	run, err := NewDailySummary(repo, notifier, time.UTC, clock.Now).Execute(ctx)
	require.NoError(t, err)

	assert.Equal(t, "2024-06-02", run.Day)
	assert.Equal(t, 1, run.Barbers)
	assert.Equal(t, 1, run.Emailed)
	require.Len(t, notifier.msgs, 1)
	assert.Equal(t, "barbera@example.com", notifier.msgs[0].To)
	assert.Contains(t, notifier.msgs[0].HTML, "KES 2000.00")
}
