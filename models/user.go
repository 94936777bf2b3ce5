package models

import "time"

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleSeller   Role = "SELLER"
	RoleAdmin    Role = "ADMIN"
)

type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Username    string `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Password    string `gorm:"not null" json:"-"` // bcrypt hash, never serialized
	Role        Role   `gorm:"type:VARCHAR(20);not null;default:'CUSTOMER'" json:"role"`
	FullName    string `json:"full_name"`
	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	PhoneNumber string `json:"phone_number"`

	Addresses []ShippingAddress `gorm:"foreignKey:UserID" json:"-"`
	Orders    []Order           `gorm:"foreignKey:CustomerID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ParseRole maps a request string onto a role, defaulting empty input to CUSTOMER.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case "":
		return RoleCustomer, true
	case RoleCustomer, RoleSeller, RoleAdmin:
		return Role(s), true
	default:
		return "", false
	}
}
