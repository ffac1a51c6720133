package barber

import (
	"strings"
	"time"

	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

const (
	BlockTypeTemporary = "temporary"
	BlockTypePermanent = "permanent"

	// MaxBlockHours caps temporary blocks at 366 days.
	MaxBlockHours = 24 * 366

	DefaultBlockCategory = "Policy Violation"
	DefaultBlockSeverity = "suspension"
	DefaultBlockedBy     = "admin"
)

// BlockState is either Unblocked or Blocked.
type BlockState interface {
	isBlockState()
}

type Unblocked struct{}

type Blocked struct {
	Reason    string
	BlockedBy string
	BlockedAt time.Time
	Category  string
	Severity  string
	Kind      BlockKind
}

// BlockKind is either Temporary or Permanent.
type BlockKind interface {
	isBlockKind()
	TypeName() string
}

type Temporary struct {
	ExpiresAt time.Time
}

type Permanent struct{}

func (Unblocked) isBlockState() {}
func (Blocked) isBlockState()   {}

func (Temporary) isBlockKind()     {}
func (Temporary) TypeName() string { return BlockTypeTemporary }
func (Permanent) isBlockKind()     {}
func (Permanent) TypeName() string { return BlockTypePermanent }

// BlockRequest is the admin input for a new block.
type BlockRequest struct {
	Reason        string
	BlockedBy     string
	Type          string
	DurationHours int
	Category      string
	Severity      string
}

// Block computes the next state. expires_at is fixed here and never recomputed.
func Block(current BlockState, req BlockRequest, now time.Time) (Blocked, error) {
	if _, ok := current.(Blocked); ok {
		return Blocked{}, ErrAlreadyBlocked()
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return Blocked{}, ErrBlockReasonRequired()
	}

	typ := strings.ToLower(strings.TrimSpace(req.Type))
	if typ == "" {
		typ = BlockTypePermanent
	}

	var kind BlockKind
	switch typ {
	case BlockTypePermanent:
		kind = Permanent{}
	case BlockTypeTemporary:
		if req.DurationHours <= 0 {
			return Blocked{}, ErrBlockDurationRequired()
		}
		if req.DurationHours > MaxBlockHours {
			return Blocked{}, ErrBlockDurationTooLong()
		}
		kind = Temporary{ExpiresAt: now.Add(time.Duration(req.DurationHours) * time.Hour)}
	default:
		return Blocked{}, ErrInvalidBlockType(typ)
	}

	return Blocked{
		Reason:    reason,
		BlockedBy: defaultString(req.BlockedBy, DefaultBlockedBy),
		BlockedAt: now,
		Category:  defaultString(req.Category, DefaultBlockCategory),
		Severity:  defaultString(req.Severity, DefaultBlockSeverity),
		Kind:      kind,
	}, nil
}

func Unblock(current BlockState) (Unblocked, error) {
	if _, ok := current.(Blocked); !ok {
		return Unblocked{}, ErrNotBlocked()
	}
	return Unblocked{}, nil
}

// Expired reports whether the sweep may lift the block at now.
// It never fires before ExpiresAt.
func Expired(state BlockState, now time.Time) bool {
	b, ok := state.(Blocked)
	if !ok {
		return false
	}
	t, ok := b.Kind.(Temporary)
	if !ok {
		return false
	}
	return !now.Before(t.ExpiresAt)
}

// ===============================
// Persistence mapping
// ===============================

func StateOf(b *models.Barber) BlockState {
	if !b.IsBlocked {
		return Unblocked{}
	}

	var kind BlockKind = Permanent{}
	if b.BlockType == BlockTypeTemporary && b.BlockExpiresAt != nil {
		kind = Temporary{ExpiresAt: *b.BlockExpiresAt}
	}

	var blockedAt time.Time
	if b.BlockedAt != nil {
		blockedAt = *b.BlockedAt
	}

	return Blocked{
		Reason:    b.BlockReason,
		BlockedBy: b.BlockedBy,
		BlockedAt: blockedAt,
		Category:  b.BlockCategory,
		Severity:  b.BlockSeverity,
		Kind:      kind,
	}
}

// Apply writes state onto the barber's columns. Unblocked clears every block field.
func Apply(b *models.Barber, state BlockState) {
	switch s := state.(type) {
	case Blocked:
		at := s.BlockedAt
		b.IsBlocked = true
		b.BlockReason = s.Reason
		b.BlockedBy = s.BlockedBy
		b.BlockedAt = &at
		b.BlockCategory = s.Category
		b.BlockSeverity = s.Severity
		b.BlockType = s.Kind.TypeName()
		b.BlockExpiresAt = nil
		b.BlockExpiryWarnedAt = nil
		if t, ok := s.Kind.(Temporary); ok {
			exp := t.ExpiresAt
			b.BlockExpiresAt = &exp
		}
	default:
		b.IsBlocked = false
		b.BlockReason = ""
		b.BlockedBy = ""
		b.BlockedAt = nil
		b.BlockCategory = ""
		b.BlockSeverity = ""
		b.BlockType = ""
		b.BlockExpiresAt = nil
		b.BlockExpiryWarnedAt = nil
	}
}

func defaultString(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
