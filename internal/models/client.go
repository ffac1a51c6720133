package models

import "time"

// Customer without login, keyed by phone.
type Client struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name    string `gorm:"size:100;not null" json:"name"`
	Phone   string `gorm:"size:20;not null;uniqueIndex" json:"phone"`
	Email   string `gorm:"size:100" json:"email"`
	Address string `gorm:"size:255" json:"address"`

	TotalBookings    int        `gorm:"not null;default:0" json:"total_bookings"`
	FavoriteService  string     `gorm:"size:100" json:"favorite_service"`
	PreferredBarber  string     `gorm:"size:100" json:"preferred_barber"`
	LastBookingAt    *time.Time `json:"last_booking_at"`
	PreferencesNotes string     `gorm:"type:text" json:"preferences_notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
