package models

import "time"

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CustomerName  string `gorm:"size:100;not null" json:"customer_name"`
	CustomerEmail string `gorm:"size:100" json:"customer_email"`
	CustomerPhone string `gorm:"size:20;not null;index" json:"customer_phone"`
	Address       string `gorm:"size:255;not null" json:"address"`

	PreferredDatetime time.Time `gorm:"not null;index" json:"preferred_datetime"`

	// Protected window [WindowStart, WindowEnd) frozen at write time.
	WindowStart time.Time `gorm:"not null;index:idx_bookings_barber_window,priority:2" json:"window_start"`
	WindowEnd   time.Time `gorm:"not null" json:"window_end"`

	ServiceType   string  `gorm:"size:100;not null" json:"service_type"`
	ServicePrice  float64 `gorm:"not null" json:"service_price"`
	PaymentMethod string  `gorm:"size:30;not null" json:"payment_method"`
	PaymentStatus string  `gorm:"size:20;not null;default:'unpaid'" json:"payment_status"`

	Status string `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Notes  string `gorm:"type:text" json:"notes"`

	BarberID    *uint   `gorm:"index:idx_bookings_barber_window,priority:1" json:"barber_id"`
	Barber      *Barber `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	BarberName  string  `gorm:"size:100" json:"barber_name"`
	BarberPhone string  `gorm:"size:20" json:"barber_phone"`
	BarberBadge string  `gorm:"size:30" json:"barber_badge"`

	ClientID *uint `gorm:"index" json:"client_id"`

	CancelledAt        *time.Time `json:"cancelled_at"`
	CancellationReason string     `gorm:"type:text" json:"cancellation_reason"`
	CancelledBy        string     `gorm:"size:100" json:"cancelled_by"`
	CompletedAt        *time.Time `json:"completed_at"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
