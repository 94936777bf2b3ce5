package models

import "time"

// ShippingAddress is one entry in a user's address book. At most one address
// per user may have IsDefault set; the swap happens inside a transaction.
type ShippingAddress struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	AddressLine1 string    `gorm:"not null" json:"address_line1"`
	AddressLine2 string    `json:"address_line2"`
	City         string    `gorm:"not null" json:"city"`
	State        string    `json:"state"`
	PostalCode   string    `gorm:"not null" json:"postal_code"`
	Country      string    `gorm:"not null" json:"country"`
	IsDefault    bool      `gorm:"default:false" json:"is_default"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
