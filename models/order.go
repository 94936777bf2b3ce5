package models

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

type Order struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	OrderRef          string      `gorm:"uniqueIndex;not null" json:"order_ref"`
	CustomerID        uint        `gorm:"index;not null" json:"customer_id"`
	ShippingAddressID uint        `gorm:"not null" json:"shipping_address_id"`
	OrderDate         time.Time   `gorm:"index" json:"order_date"`
	TotalAmount       float64     `gorm:"not null" json:"total_amount"`
	PaymentMethod     string      `json:"payment_method"`
	Status            OrderStatus `gorm:"type:VARCHAR(20);default:'PENDING'" json:"status"`
	Items             []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	OrderID         uint    `gorm:"index;not null" json:"order_id"`
	ProductID       uint    `gorm:"not null" json:"product_id"`
	ProductName     string  `json:"product_name"` // snapshot, survives later catalog edits
	Quantity        int     `gorm:"not null" json:"quantity"`
	PriceAtPurchase float64 `gorm:"not null" json:"price_at_purchase"`
}
