package addressControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopstack/ecommerce-api/apperr"
	"github.com/shopstack/ecommerce-api/middleware"
	"github.com/shopstack/ecommerce-api/models"
	"gorm.io/gorm"
)

type AddressRequest struct {
	AddressLine1 string `json:"address_line1" binding:"required"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code" binding:"required"`
	Country      string `json:"country" binding:"required"`
	IsDefault    bool   `json:"is_default"`
}

// -------- Core Logic --------

// CreateAddress adds an entry to the user's address book. When the new entry
// is flagged default, the previous default is cleared in the same transaction.
func CreateAddress(db *gorm.DB, userID uint, req AddressRequest) (*models.ShippingAddress, error) {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "User not found with id: %d", userID)
		}
		return nil, err
	}

	address := models.ShippingAddress{
		UserID:       userID,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		IsDefault:    req.IsDefault,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			if err := clearDefault(tx, userID); err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// UpdateAddress rewrites the address fields. A false is_default does not
// clear an existing default; the flag is only ever promoted here.
func UpdateAddress(db *gorm.DB, addressID, userID uint, req AddressRequest) (*models.ShippingAddress, error) {
	address, err := findOwnedAddress(db, addressID, userID)
	if err != nil {
		return nil, err
	}

	address.AddressLine1 = req.AddressLine1
	address.AddressLine2 = req.AddressLine2
	address.City = req.City
	address.State = req.State
	address.PostalCode = req.PostalCode
	address.Country = req.Country

	makeDefault := req.IsDefault && !address.IsDefault
	err = db.Transaction(func(tx *gorm.DB) error {
		if makeDefault {
			if err := clearDefault(tx, userID); err != nil {
				return err
			}
			address.IsDefault = true
		}
		return tx.Save(address).Error
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

func DeleteAddress(db *gorm.DB, addressID, userID uint) error {
	address, err := findOwnedAddress(db, addressID, userID)
	if err != nil {
		return err
	}
	return db.Delete(address).Error
}

func GetAddressByID(db *gorm.DB, addressID, userID uint) (*models.ShippingAddress, error) {
	return findOwnedAddress(db, addressID, userID)
}

func GetUserAddresses(db *gorm.DB, userID uint) ([]models.ShippingAddress, error) {
	var addresses []models.ShippingAddress
	if err := db.Where("user_id = ?", userID).Order("id").Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

// SetDefaultAddress swaps the default flag onto the given address. Clearing
// the old default and setting the new one share one transaction so at most
// one default ever survives, even under concurrent swaps.
func SetDefaultAddress(db *gorm.DB, addressID, userID uint) (*models.ShippingAddress, error) {
	address, err := findOwnedAddress(db, addressID, userID)
	if err != nil {
		return nil, err
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := clearDefault(tx, userID); err != nil {
			return err
		}
		address.IsDefault = true
		return tx.Save(address).Error
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

func clearDefault(tx *gorm.DB, userID uint) error {
	return tx.Model(&models.ShippingAddress{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}

// findOwnedAddress resolves an address and verifies ownership. Existence of
// another user's address is not revealed beyond the Forbidden error.
func findOwnedAddress(db *gorm.DB, addressID, userID uint) (*models.ShippingAddress, error) {
	var address models.ShippingAddress
	if err := db.First(&address, "id = ?", addressID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "Address not found with id: %d", addressID)
		}
		return nil, err
	}
	if address.UserID != userID {
		return nil, apperr.New(apperr.Forbidden, "Address does not belong to you")
	}
	return &address, nil
}

// -------- Handlers --------

// POST /api/addresses
func CreateAddressHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		address, err := CreateAddress(db, middleware.UserID(c), req)
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusCreated, address)
	}
}

// PUT /api/addresses/:id
func UpdateAddressHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		addressID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address id"})
			return
		}
		var req AddressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		address, err := UpdateAddress(db, uint(addressID), middleware.UserID(c), req)
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, address)
	}
}

// DELETE /api/addresses/:id
func DeleteAddressHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		addressID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address id"})
			return
		}
		if err := DeleteAddress(db, uint(addressID), middleware.UserID(c)); err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
	}
}

// GET /api/addresses/:id
func GetAddressByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		addressID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address id"})
			return
		}
		address, err := GetAddressByID(db, uint(addressID), middleware.UserID(c))
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, address)
	}
}

// GET /api/addresses
func ListAddressesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		addresses, err := GetUserAddresses(db, middleware.UserID(c))
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, addresses)
	}
}

// PUT /api/addresses/:id/default
func SetDefaultAddressHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		addressID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address id"})
			return
		}
		address, err := SetDefaultAddress(db, uint(addressID), middleware.UserID(c))
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, address)
	}
}
