package cartControllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopstack/ecommerce-api/apperr"
	"github.com/shopstack/ecommerce-api/middleware"
	"github.com/shopstack/ecommerce-api/models"
	"gorm.io/gorm"
)

type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

type CartItemResponse struct {
	ID           uint    `json:"id"`
	ProductID    uint    `json:"product_id"`
	ProductName  string  `json:"product_name"`
	ProductImage string  `json:"product_image"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	Subtotal     float64 `json:"subtotal"`
}

type CartResponse struct {
	ID        uint               `json:"id"`
	Items     []CartItemResponse `json:"items"`
	Total     float64            `json:"total"`
	ItemCount int                `json:"item_count"`
}

// -------- Core Logic --------

// GetOrCreateCart returns the customer's single cart, creating an empty one
// on first access.
func GetOrCreateCart(db *gorm.DB, customerID uint) (*models.Cart, error) {
	var cart models.Cart
	err := db.Where("customer_id = ?", customerID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{CustomerID: customerID}
		if err := db.Create(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddToCart merges quantity into an existing line for the same product, or
// creates a new line snapshotting the product's current price. Stock is
// checked but not reserved; the decrement happens at checkout.
func AddToCart(db *gorm.DB, customerID uint, req AddToCartRequest) (*CartResponse, error) {
	var product models.Product
	if err := db.First(&product, "id = ?", req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "Product not found with id: %d", req.ProductID)
		}
		return nil, err
	}
	if product.StockQuantity < req.Quantity {
		return nil, apperr.Newf(apperr.InsufficientStock, "Insufficient stock for product: %s", product.Name)
	}

	cart, err := GetOrCreateCart(db, customerID)
	if err != nil {
		return nil, err
	}

	var item models.CartItem
	err = db.Where("cart_id = ? AND product_id = ?", cart.ID, product.ID).First(&item).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  req.Quantity,
			Price:     product.Price,
			AddedAt:   time.Now(),
		}
		if err := db.Create(&item).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		// Merge; the price snapshot from the first insert stays.
		item.Quantity += req.Quantity
		if err := db.Save(&item).Error; err != nil {
			return nil, err
		}
	}

	return BuildCartResponse(db, cart)
}

// UpdateCartItem replaces the line's quantity after ownership and stock checks.
func UpdateCartItem(db *gorm.DB, customerID, itemID uint, quantity int) (*CartResponse, error) {
	if quantity < 1 {
		return nil, apperr.New(apperr.InvalidInput, "Quantity must be at least 1")
	}

	item, cart, err := findOwnedItem(db, customerID, itemID)
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := db.First(&product, "id = ?", item.ProductID).Error; err != nil {
		return nil, err
	}
	if quantity > product.StockQuantity {
		return nil, apperr.Newf(apperr.InsufficientStock, "Insufficient stock for product: %s", product.Name)
	}

	item.Quantity = quantity
	if err := db.Save(item).Error; err != nil {
		return nil, err
	}
	return BuildCartResponse(db, cart)
}

// RemoveFromCart deletes the line after the ownership check.
func RemoveFromCart(db *gorm.DB, customerID, itemID uint) (*CartResponse, error) {
	item, cart, err := findOwnedItem(db, customerID, itemID)
	if err != nil {
		return nil, err
	}
	if err := db.Delete(item).Error; err != nil {
		return nil, err
	}
	return BuildCartResponse(db, cart)
}

// ClearCart deletes every line in the customer's cart.
func ClearCart(db *gorm.DB, customerID uint) error {
	cart, err := GetOrCreateCart(db, customerID)
	if err != nil {
		return err
	}
	return db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
}

// findOwnedItem resolves a cart line and verifies it belongs to the caller.
func findOwnedItem(db *gorm.DB, customerID, itemID uint) (*models.CartItem, *models.Cart, error) {
	var item models.CartItem
	if err := db.First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.Newf(apperr.NotFound, "Cart item not found with id: %d", itemID)
		}
		return nil, nil, err
	}
	var cart models.Cart
	if err := db.First(&cart, "id = ?", item.CartID).Error; err != nil {
		return nil, nil, err
	}
	if cart.CustomerID != customerID {
		return nil, nil, apperr.New(apperr.Forbidden, "Cart item does not belong to you")
	}
	return &item, &cart, nil
}

// BuildCartResponse loads the cart's lines in insertion order and computes
// per-line subtotals plus cart totals. Product names come from one batched
// lookup rather than per-line fetches.
func BuildCartResponse(db *gorm.DB, cart *models.Cart) (*CartResponse, error) {
	var items []models.CartItem
	if err := db.Where("cart_id = ?", cart.ID).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}

	productIDs := make([]uint, 0, len(items))
	for _, it := range items {
		productIDs = append(productIDs, it.ProductID)
	}
	products := map[uint]models.Product{}
	if len(productIDs) > 0 {
		var list []models.Product
		if err := db.Where("id IN ?", productIDs).Find(&list).Error; err != nil {
			return nil, err
		}
		for _, p := range list {
			products[p.ID] = p
		}
	}

	resp := &CartResponse{ID: cart.ID, Items: make([]CartItemResponse, 0, len(items))}
	for _, it := range items {
		p := products[it.ProductID]
		subtotal := it.Price * float64(it.Quantity)
		resp.Items = append(resp.Items, CartItemResponse{
			ID:           it.ID,
			ProductID:    it.ProductID,
			ProductName:  p.Name,
			ProductImage: p.ImageURL,
			Price:        it.Price,
			Quantity:     it.Quantity,
			Subtotal:     subtotal,
		})
		resp.Total += subtotal
		resp.ItemCount += it.Quantity
	}
	return resp, nil
}

// -------- Handlers --------

// GET /api/cart
func GetCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := GetOrCreateCart(db, middleware.UserID(c))
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		resp, err := BuildCartResponse(db, cart)
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// POST /api/cart/items
func AddToCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		resp, err := AddToCart(db, middleware.UserID(c), req)
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// PUT /api/cart/items/:itemId
func UpdateCartItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := strconv.ParseUint(c.Param("itemId"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
			return
		}
		var req UpdateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		resp, err := UpdateCartItem(db, middleware.UserID(c), uint(itemID), req.Quantity)
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// DELETE /api/cart/items/:itemId
func RemoveCartItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := strconv.ParseUint(c.Param("itemId"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
			return
		}
		resp, err := RemoveFromCart(db, middleware.UserID(c), uint(itemID))
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// DELETE /api/cart
func ClearCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ClearCart(db, middleware.UserID(c)); err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}
