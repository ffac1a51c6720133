package barber

import (
	"context"
	"time"

	"github.com/BruksfildServices01/housecall-booking/internal/audit"
	domain "github.com/BruksfildServices01/housecall-booking/internal/domain/barber"
	"github.com/BruksfildServices01/housecall-booking/internal/logger"
	"github.com/BruksfildServices01/housecall-booking/internal/metrics"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
	"github.com/BruksfildServices01/housecall-booking/internal/notify"
)

// ======================================================
// BLOCK
// ======================================================

type BlockBarber struct {
	repo     domain.Repository
	audit    audit.Sink
	notifier Notifier
	loc      *time.Location
	now      Clock
}

func NewBlockBarber(repo domain.Repository, auditSink audit.Sink, notifier Notifier, loc *time.Location, now Clock) *BlockBarber {
	if auditSink == nil {
		auditSink = audit.Discard{}
	}
	if notifier == nil {
		notifier = discardNotifier{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &BlockBarber{repo: repo, audit: auditSink, notifier: notifier, loc: loc, now: orNow(now)}
}

func (uc *BlockBarber) Execute(ctx context.Context, id uint, req domain.BlockRequest) (*models.Barber, error) {
	b, err := getBarber(ctx, uc.repo, id)
	if err != nil {
		return nil, err
	}

	state, err := domain.Block(domain.StateOf(b), req, uc.now().UTC())
	if err != nil {
		return nil, err
	}
	domain.Apply(b, state)

	saved, err := uc.repo.SaveBlockState(ctx, b, false)
	if err != nil {
		return nil, err
	}
	if !saved {
		return nil, domain.ErrAlreadyBlocked()
	}

	meta := map[string]any{
		"reason":   state.Reason,
		"type":     state.Kind.TypeName(),
		"category": state.Category,
		"severity": state.Severity,
	}
	if b.BlockExpiresAt != nil {
		meta["expires_at"] = *b.BlockExpiresAt
	}
	uc.audit.Dispatch(audit.Event{
		Actor:    state.BlockedBy,
		Action:   "barber_blocked",
		Entity:   "barber",
		EntityID: audit.ID(b.ID),
		Metadata: meta,
	})
	uc.notifier.Dispatch(notify.BarberBlocked(b, uc.loc))

	logger.WithContext(ctx).Info("barber blocked", "barber_id", b.ID, "type", b.BlockType)
	return b, nil
}

// ======================================================
// UNBLOCK
// ======================================================

type UnblockBarber struct {
	repo  domain.Repository
	audit audit.Sink
}

func NewUnblockBarber(repo domain.Repository, auditSink audit.Sink) *UnblockBarber {
	if auditSink == nil {
		auditSink = audit.Discard{}
	}
	return &UnblockBarber{repo: repo, audit: auditSink}
}

func (uc *UnblockBarber) Execute(ctx context.Context, id uint, actor string) (*models.Barber, error) {
	b, err := getBarber(ctx, uc.repo, id)
	if err != nil {
		return nil, err
	}

	state, err := domain.Unblock(domain.StateOf(b))
	if err != nil {
		return nil, err
	}
	previous := b.BlockReason
	domain.Apply(b, state)

	saved, err := uc.repo.SaveBlockState(ctx, b, true)
	if err != nil {
		return nil, err
	}
	if !saved {
		return nil, domain.ErrNotBlocked()
	}

	uc.audit.Dispatch(audit.Event{
		Actor:    actor,
		Action:   "barber_unblocked",
		Entity:   "barber",
		EntityID: audit.ID(b.ID),
		Metadata: map[string]any{"previous_reason": previous},
	})

	logger.WithContext(ctx).Info("barber unblocked", "barber_id", b.ID)
	return b, nil
}

// ======================================================
// EXPIRY SWEEP
// ======================================================

type UnblockedBarber struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Reason    string    `json:"block_reason"`
	ExpiredAt time.Time `json:"expired_at"`
}

type SweepResult struct {
	UnblockedCount   int               `json:"unblocked_count"`
	UnblockedBarbers []UnblockedBarber `json:"unblocked_barbers"`
}

type SweepExpiredBlocks struct {
	repo  domain.Repository
	audit audit.Sink
	now   Clock
}

func NewSweepExpiredBlocks(repo domain.Repository, auditSink audit.Sink, now Clock) *SweepExpiredBlocks {
	if auditSink == nil {
		auditSink = audit.Discard{}
	}
	return &SweepExpiredBlocks{repo: repo, audit: auditSink, now: orNow(now)}
}

// Execute lifts every temporary block whose expiry is at or before now. Each
// barber is cleared with its own guarded update, so an admin unblocking the
// same barber at the same moment is not counted twice.
func (uc *SweepExpiredBlocks) Execute(ctx context.Context) (*SweepResult, error) {
	now := uc.now().UTC()

	candidates, err := uc.repo.ListExpiredTemporaryBlocks(ctx, now)
	if err != nil {
		return nil, err
	}

	out := &SweepResult{UnblockedBarbers: []UnblockedBarber{}}
	for _, b := range candidates {
		if !domain.Expired(domain.StateOf(&b), now) {
			continue
		}

		cleared, err := uc.repo.ClearExpiredBlock(ctx, b.ID, now)
		if err != nil {
			return out, err
		}
		if !cleared {
			continue
		}

		out.UnblockedCount++
		out.UnblockedBarbers = append(out.UnblockedBarbers, UnblockedBarber{
			ID:        b.ID,
			Name:      b.Name,
			Reason:    b.BlockReason,
			ExpiredAt: *b.BlockExpiresAt,
		})
		metrics.BlocksExpired.Inc()

		uc.audit.Dispatch(audit.Event{
			Actor:    "system",
			Action:   "barber_block_expired",
			Entity:   "barber",
			EntityID: audit.ID(b.ID),
			Metadata: map[string]any{"reason": b.BlockReason, "expired_at": *b.BlockExpiresAt},
		})
	}

	if out.UnblockedCount > 0 {
		logger.WithContext(ctx).Info("expired blocks lifted", "count", out.UnblockedCount)
	}
	return out, nil
}

// ======================================================
// EXPIRY WARNING
// ======================================================

// ExpiryWarningWindow is how far ahead a temporary block counts as expiring.
const ExpiryWarningWindow = 24 * time.Hour

type ExpiringBlock struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Reason    string    `json:"block_reason"`
	ExpiresAt time.Time `json:"expires_at"`
}

type WarnResult struct {
	WarnedCount int             `json:"warned_count"`
	Barbers     []ExpiringBlock `json:"barbers"`
}

type WarnExpiringBlocks struct {
	repo       domain.Repository
	notifier   Notifier
	adminEmail string
	loc        *time.Location
	now        Clock
}

func NewWarnExpiringBlocks(repo domain.Repository, notifier Notifier, adminEmail string, loc *time.Location, now Clock) *WarnExpiringBlocks {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &WarnExpiringBlocks{repo: repo, notifier: notifier, adminEmail: adminEmail, loc: loc, now: orNow(now)}
}

// Execute emails the admin and the barber once for every temporary block that
// lapses within ExpiryWarningWindow. A block is marked warned before the
// emails go out, so overlapping runs send each warning at most once.
func (uc *WarnExpiringBlocks) Execute(ctx context.Context) (*WarnResult, error) {
	now := uc.now().UTC()

	candidates, err := uc.repo.ListExpiringTemporaryBlocks(ctx, now, ExpiryWarningWindow)
	if err != nil {
		return nil, err
	}

	out := &WarnResult{Barbers: []ExpiringBlock{}}
	for i := range candidates {
		b := &candidates[i]
		if b.BlockExpiresAt == nil {
			continue
		}

		marked, err := uc.repo.MarkExpiryWarned(ctx, b.ID, now)
		if err != nil {
			return out, err
		}
		if !marked {
			continue
		}

		if uc.adminEmail != "" {
			uc.notifier.Dispatch(notify.BlockExpiringAdmin(uc.adminEmail, b, now, uc.loc))
		}
		if b.Email != "" {
			uc.notifier.Dispatch(notify.BlockExpiringBarber(b, now, uc.loc))
		}

		out.WarnedCount++
		out.Barbers = append(out.Barbers, ExpiringBlock{
			ID:        b.ID,
			Name:      b.Name,
			Reason:    b.BlockReason,
			ExpiresAt: *b.BlockExpiresAt,
		})
	}

	if out.WarnedCount > 0 {
		logger.WithContext(ctx).Info("expiring block warnings sent", "count", out.WarnedCount)
	}
	return out, nil
}
