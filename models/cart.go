package models

import "time"

type Cart struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CustomerID uint       `gorm:"uniqueIndex" json:"customer_id"` // one cart per customer
	Items      []CartItem `gorm:"foreignKey:CartID" json:"items"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"index;not null" json:"cart_id"`
	ProductID uint      `gorm:"index;not null" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Price     float64   `gorm:"not null" json:"price"` // snapshot taken when the line is first created
	AddedAt   time.Time `json:"added_at"`
}
