package models

import "time"

// WorkingHours is one row per weekday (0 = Sunday) for the whole business.
type WorkingHours struct {
	ID uint `gorm:"primaryKey" json:"id"`

	DayOfWeek int    `gorm:"not null;uniqueIndex" json:"day_of_week"`
	DayName   string `gorm:"size:10;not null" json:"day_name"`
	IsOpen    bool   `gorm:"not null" json:"is_open"`
	OpenTime  string `gorm:"size:5" json:"open_time"`
	CloseTime string `gorm:"size:5" json:"close_time"`
	Notes     string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
