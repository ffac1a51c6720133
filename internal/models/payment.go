package models

import "time"

type Payment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BookingID uint     `gorm:"not null;index" json:"booking_id"`
	Booking   *Booking `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Amount        float64 `gorm:"not null" json:"amount"`
	PaymentMethod string  `gorm:"size:20;not null" json:"payment_method"`
	PaymentStatus string  `gorm:"size:20;not null;default:'pending';index" json:"payment_status"`
	TransactionID string  `gorm:"size:100;uniqueIndex" json:"transaction_id"`
	GatewayRef    string  `gorm:"size:100" json:"gateway_ref"`
	PhoneNumber   string  `gorm:"size:20" json:"phone_number"`

	CustomerNotes     string     `gorm:"type:text" json:"customer_notes"`
	AdminNotes        string     `gorm:"type:text" json:"admin_notes"`
	PaymentReceivedAt *time.Time `json:"payment_received_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
