package models

import "time"

type Barber struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Phone       string `gorm:"size:20;not null;uniqueIndex" json:"phone"`
	Email       string `gorm:"size:100" json:"email"`
	BadgeNumber string `gorm:"size:30;not null;uniqueIndex" json:"identity_badge_number"`

	Specialties     string `gorm:"type:text" json:"specialties"`
	ExperienceYears int    `json:"experience_years"`
	ProfilePhotoURL string `gorm:"size:500" json:"profile_photo_url"`

	IsActive bool `gorm:"not null;index" json:"is_active"`

	// Block columns are read and written through domain/barber.BlockState.
	IsBlocked      bool       `gorm:"not null;default:false;index" json:"is_blocked"`
	BlockReason    string     `gorm:"type:text" json:"block_reason"`
	BlockType      string     `gorm:"size:20" json:"block_type"`
	BlockedBy      string     `gorm:"size:100" json:"blocked_by"`
	BlockedAt      *time.Time `json:"blocked_at"`
	BlockExpiresAt *time.Time `gorm:"index" json:"block_expires_at"`
	BlockCategory  string     `gorm:"size:50" json:"block_category"`
	BlockSeverity  string     `gorm:"size:30" json:"block_severity"`
	// Set once the expiry warning for the current block has gone out.
	BlockExpiryWarnedAt *time.Time `json:"block_expiry_warned_at,omitempty"`

	TotalServices int     `gorm:"not null;default:0" json:"total_services"`
	TotalEarnings float64 `gorm:"not null;default:0" json:"total_earnings"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
