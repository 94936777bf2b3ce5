package orderControllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopstack/ecommerce-api/apperr"
	"github.com/shopstack/ecommerce-api/middleware"
	"github.com/shopstack/ecommerce-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// -------- Request Structs --------

type CheckoutRequest struct {
	ShippingAddressID uint   `json:"shipping_address_id" binding:"required"`
	PaymentMethod     string `json:"payment_method" binding:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// -------- Response Structs --------

type OrderItemResponse struct {
	ID              uint    `json:"id"`
	ProductID       uint    `json:"product_id"`
	ProductName     string  `json:"product_name"`
	Quantity        int     `json:"quantity"`
	PriceAtPurchase float64 `json:"price_at_purchase"`
	Subtotal        float64 `json:"subtotal"`
}

type OrderResponse struct {
	ID              uint                   `json:"id"`
	OrderRef        string                 `json:"order_ref"`
	OrderDate       time.Time              `json:"order_date"`
	TotalAmount     float64                `json:"total_amount"`
	PaymentMethod   string                 `json:"payment_method"`
	Status          string                 `json:"status"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	Items           []OrderItemResponse    `json:"items"`
}

// -------- Helpers --------

// ParseOrderStatus maps a request string onto the status enum, case-insensitively.
func ParseOrderStatus(status string) (models.OrderStatus, error) {
	switch models.OrderStatus(strings.ToUpper(strings.TrimSpace(status))) {
	case models.OrderStatusPending:
		return models.OrderStatusPending, nil
	case models.OrderStatusProcessing:
		return models.OrderStatusProcessing, nil
	case models.OrderStatusShipped:
		return models.OrderStatusShipped, nil
	case models.OrderStatusDelivered:
		return models.OrderStatusDelivered, nil
	case models.OrderStatusCancelled:
		return models.OrderStatusCancelled, nil
	default:
		return "", apperr.Newf(apperr.InvalidInput, "Invalid order status: %s", status)
	}
}

func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

// -------- Core Logic --------

// PlaceOrder converts the customer's cart into an immutable order snapshot.
// Order header, order items, stock decrements and the cart wipe all land in
// one transaction. The decrement is guarded (stock_quantity >= quantity in
// the WHERE clause) so a cart that went stale since the add cannot drive
// stock negative.
func PlaceOrder(db *gorm.DB, logger *zap.Logger, customerID uint, req CheckoutRequest) (*OrderResponse, error) {
	var user models.User
	if err := db.First(&user, "id = ?", customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "User not found with id: %d", customerID)
		}
		return nil, err
	}

	var cart models.Cart
	if err := db.Where("customer_id = ?", customerID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Cart is empty")
		}
		return nil, err
	}
	var cartItems []models.CartItem
	if err := db.Where("cart_id = ?", cart.ID).Order("id").Find(&cartItems).Error; err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, apperr.New(apperr.InvalidState, "Cart is empty")
	}

	var address models.ShippingAddress
	if err := db.First(&address, "id = ?", req.ShippingAddressID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Shipping address not found")
		}
		return nil, err
	}
	if address.UserID != customerID {
		return nil, apperr.New(apperr.Forbidden, "Shipping address does not belong to you")
	}

	// Totals come from the cart's price snapshots, not live product prices.
	var total float64
	for _, item := range cartItems {
		total += item.Price * float64(item.Quantity)
	}

	productIDs := make([]uint, 0, len(cartItems))
	for _, item := range cartItems {
		productIDs = append(productIDs, item.ProductID)
	}
	var products []models.Product
	if err := db.Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		return nil, err
	}
	productByID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}

	order := models.Order{
		OrderRef:          generateOrderRef(),
		CustomerID:        customerID,
		ShippingAddressID: address.ID,
		OrderDate:         time.Now(),
		TotalAmount:       total,
		PaymentMethod:     req.PaymentMethod,
		Status:            models.OrderStatusPending,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, item := range cartItems {
			product, ok := productByID[item.ProductID]
			if !ok {
				return apperr.Newf(apperr.NotFound, "Product not found with id: %d", item.ProductID)
			}

			orderItem := models.OrderItem{
				OrderID:         order.ID,
				ProductID:       item.ProductID,
				ProductName:     product.Name,
				Quantity:        item.Quantity,
				PriceAtPurchase: item.Price,
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}

			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock_quantity >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperr.Newf(apperr.InsufficientStock, "Insufficient stock for product: %s", product.Name)
			}
		}

		return tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info("order placed",
		zap.Uint("order_id", order.ID),
		zap.String("order_ref", order.OrderRef),
		zap.Uint("customer_id", customerID),
		zap.Float64("total_amount", total),
		zap.Int("line_count", len(cartItems)),
	)

	return loadOrderResponse(db, order.ID)
}

// CancelOrder flips a not-yet-shipped order to CANCELLED and returns its
// quantities to inventory, all in one transaction.
func CancelOrder(db *gorm.DB, logger *zap.Logger, orderID, customerID uint) error {
	var order models.Order
	if err := db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Newf(apperr.NotFound, "Order not found with id: %d", orderID)
		}
		return err
	}
	if order.CustomerID != customerID {
		return apperr.New(apperr.Forbidden, "You don't have permission to cancel this order")
	}
	if order.Status == models.OrderStatusShipped || order.Status == models.OrderStatusDelivered {
		return apperr.New(apperr.InvalidState, "Cannot cancel order that has been shipped or delivered")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("status", models.OrderStatusCancelled).Error; err != nil {
			return err
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return err
		}
		for _, item := range items {
			if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("order cancelled",
		zap.Uint("order_id", order.ID),
		zap.String("order_ref", order.OrderRef),
		zap.Uint("customer_id", customerID),
	)
	return nil
}

// UpdateOrderStatus sets any parseable status. Transitions are deliberately
// permissive here; only cancellation has its own guard.
func UpdateOrderStatus(db *gorm.DB, orderID uint, status string) (*OrderResponse, error) {
	newStatus, err := ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	var order models.Order
	if err := db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "Order not found with id: %d", orderID)
		}
		return nil, err
	}
	if err := db.Model(&order).Update("status", newStatus).Error; err != nil {
		return nil, err
	}
	return loadOrderResponse(db, order.ID)
}

// GetOrderByID returns the order if the caller owns it or is an admin.
func GetOrderByID(db *gorm.DB, orderID, callerID uint, callerRole models.Role) (*OrderResponse, error) {
	var order models.Order
	if err := db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "Order not found with id: %d", orderID)
		}
		return nil, err
	}
	if order.CustomerID != callerID && callerRole != models.RoleAdmin {
		return nil, apperr.New(apperr.Forbidden, "You don't have permission to view this order")
	}
	return loadOrderResponse(db, order.ID)
}

// GetCustomerOrders lists the customer's orders newest first, paginated.
func GetCustomerOrders(db *gorm.DB, customerID uint, page, size int) ([]OrderResponse, error) {
	var orders []models.Order
	if err := db.Where("customer_id = ?", customerID).
		Order("order_date DESC").
		Limit(size).Offset(page * size).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return buildOrderResponses(db, orders)
}

// GetAllOrders is the admin view across customers, newest first.
func GetAllOrders(db *gorm.DB, page, size int) ([]OrderResponse, error) {
	var orders []models.Order
	if err := db.Order("order_date DESC").
		Limit(size).Offset(page * size).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return buildOrderResponses(db, orders)
}

func loadOrderResponse(db *gorm.DB, orderID uint) (*OrderResponse, error) {
	var order models.Order
	if err := db.First(&order, "id = ?", orderID).Error; err != nil {
		return nil, err
	}
	resps, err := buildOrderResponses(db, []models.Order{order})
	if err != nil {
		return nil, err
	}
	return &resps[0], nil
}

func buildOrderResponses(db *gorm.DB, orders []models.Order) ([]OrderResponse, error) {
	resps := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		var items []models.OrderItem
		if err := db.Where("order_id = ?", order.ID).Order("id").Find(&items).Error; err != nil {
			return nil, err
		}
		var address models.ShippingAddress
		if err := db.First(&address, "id = ?", order.ShippingAddressID).Error; err != nil &&
			!errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		resp := OrderResponse{
			ID:              order.ID,
			OrderRef:        order.OrderRef,
			OrderDate:       order.OrderDate,
			TotalAmount:     order.TotalAmount,
			PaymentMethod:   order.PaymentMethod,
			Status:          string(order.Status),
			ShippingAddress: address,
			Items:           make([]OrderItemResponse, 0, len(items)),
		}
		for _, item := range items {
			resp.Items = append(resp.Items, OrderItemResponse{
				ID:              item.ID,
				ProductID:       item.ProductID,
				ProductName:     item.ProductName,
				Quantity:        item.Quantity,
				PriceAtPurchase: item.PriceAtPurchase,
				Subtotal:        item.PriceAtPurchase * float64(item.Quantity),
			})
		}
		resps = append(resps, resp)
	}
	return resps, nil
}

func pageParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		page = 0
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size < 1 || size > 100 {
		size = 10
	}
	return page, size
}

// -------- Handlers --------

// POST /api/orders
func PlaceOrderHandler(db *gorm.DB, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		resp, err := PlaceOrder(db, logger, middleware.UserID(c), req)
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		broadcastOrderEvent(orderEvent{Type: eventOrderPlaced, Order: *resp})
		c.JSON(http.StatusCreated, resp)
	}
}

// DELETE /api/orders/:id
func CancelOrderHandler(db *gorm.DB, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
			return
		}
		if err := CancelOrder(db, logger, uint(orderID), middleware.UserID(c)); err != nil {
			apperr.JSON(c, err)
			return
		}
		if resp, err := loadOrderResponse(db, uint(orderID)); err == nil {
			broadcastOrderEvent(orderEvent{Type: eventOrderCancelled, Order: *resp})
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully"})
	}
}

// PUT /api/orders/:id/status
func UpdateOrderStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
			return
		}
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		resp, err := UpdateOrderStatus(db, uint(orderID), req.Status)
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		broadcastOrderEvent(orderEvent{Type: eventOrderStatusUpdated, Order: *resp})
		c.JSON(http.StatusOK, resp)
	}
}

// GET /api/orders/:id
func GetOrderByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
			return
		}
		resp, err := GetOrderByID(db, uint(orderID), middleware.UserID(c), middleware.CallerRole(c))
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// GET /api/orders
func GetCustomerOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, size := pageParams(c)
		resps, err := GetCustomerOrders(db, middleware.UserID(c), page, size)
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, resps)
	}
}

// GET /api/orders/all (admin)
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, size := pageParams(c)
		resps, err := GetAllOrders(db, page, size)
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, resps)
	}
}
