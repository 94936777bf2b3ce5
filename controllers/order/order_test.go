package orderControllers

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopstack/ecommerce-api/apperr"
	cartControllers "github.com/shopstack/ecommerce-api/controllers/cart"
	"github.com/shopstack/ecommerce-api/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Category{}, &models.Product{},
		&models.Cart{}, &models.CartItem{},
		&models.Order{}, &models.OrderItem{}, &models.ShippingAddress{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Password: "x",
		Role:     models.RoleCustomer,
		Email:    username + "@example.com",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) *models.Product {
	t.Helper()
	category := models.Category{Name: "cat-" + name}
	require.NoError(t, db.Create(&category).Error)
	product := models.Product{
		Name:          name,
		Price:         price,
		StockQuantity: stock,
		CategoryID:    category.ID,
		SellerID:      1,
	}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

func seedAddress(t *testing.T, db *gorm.DB, userID uint) *models.ShippingAddress {
	t.Helper()
	address := models.ShippingAddress{
		UserID:       userID,
		AddressLine1: "1 Main St",
		City:         "Springfield",
		PostalCode:   "12345",
		Country:      "US",
	}
	require.NoError(t, db.Create(&address).Error)
	return &address
}

func stockOf(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", productID).Error)
	return product.StockQuantity
}

func TestPlaceOrderSnapshotsCartAndDecrementsStock(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "alice")
	address := seedAddress(t, db, user.ID)
	a := seedProduct(t, db, "a", 10.0, 5)
	b := seedProduct(t, db, "b", 5.0, 3)

	_, err := cartControllers.AddToCart(db, user.ID, cartControllers.AddToCartRequest{ProductID: a.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = cartControllers.AddToCart(db, user.ID, cartControllers.AddToCartRequest{ProductID: b.ID, Quantity: 1})
	require.NoError(t, err)

	resp, err := PlaceOrder(db, zap.NewNop(), user.ID, CheckoutRequest{
		ShippingAddressID: address.ID,
		PaymentMethod:     "card",
	})
	require.NoError(t, err)

	require.Equal(t, 25.0, resp.TotalAmount)
	require.Equal(t, string(models.OrderStatusPending), resp.Status)
	require.NotEmpty(t, resp.OrderRef)
	require.Len(t, resp.Items, 2)
	require.Equal(t, 10.0, resp.Items[0].PriceAtPurchase)
	require.Equal(t, 5.0, resp.Items[1].PriceAtPurchase)

	require.Equal(t, 3, stockOf(t, db, a.ID))
	require.Equal(t, 2, stockOf(t, db, b.ID))

	var lines int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&lines).Error)
	require.Zero(t, lines)
}

func TestPlaceOrderTotalsUseCartSnapshotNotLivePrice(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "alice")
	address := seedAddress(t, db, user.ID)
	product := seedProduct(t, db, "widget", 10.0, 5)

	_, err := cartControllers.AddToCart(db, user.ID, cartControllers.AddToCartRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	// Catalog price moves after the add; the order must not see it.
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("price", 999.0).Error)

	resp, err := PlaceOrder(db, zap.NewNop(), user.ID, CheckoutRequest{
		ShippingAddressID: address.ID,
		PaymentMethod:     "cod",
	})
	require.NoError(t, err)
	require.Equal(t, 20.0, resp.TotalAmount)
	require.Equal(t, 10.0, resp.Items[0].PriceAtPurchase)
}

func TestPlaceOrderEmptyCartLeavesNothingBehind(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "alice")
	address := seedAddress(t, db, user.ID)

	_, err := cartControllers.GetOrCreateCart(db, user.ID)
	require.NoError(t, err)

	_, err = PlaceOrder(db, zap.NewNop(), user.ID, CheckoutRequest{
		ShippingAddressID: address.ID,
		PaymentMethod:     "card",
	})
	require.Equal(t, apperr.InvalidState, apperr.KindOf(err))

	var orders, items int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&items).Error)
	require.Zero(t, orders)
	require.Zero(t, items)
}

func TestPlaceOrderForeignAddressForbidden(t *testing.T) {
	db := setupDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	bobsAddress := seedAddress(t, db, bob.ID)
	product := seedProduct(t, db, "widget", 10.0, 5)

	_, err := cartControllers.AddToCart(db, alice.ID, cartControllers.AddToCartRequest{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = PlaceOrder(db, zap.NewNop(), alice.ID, CheckoutRequest{
		ShippingAddressID: bobsAddress.ID,
		PaymentMethod:     "card",
	})
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestPlaceOrderStaleCartRollsBack(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "alice")
	address := seedAddress(t, db, user.ID)
	product := seedProduct(t, db, "widget", 10.0, 5)

	_, err := cartControllers.AddToCart(db, user.ID, cartControllers.AddToCartRequest{ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)

	// Stock drains between cart-add and checkout; the guarded decrement
	// must refuse rather than go negative.
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("stock_quantity", 2).Error)

	_, err = PlaceOrder(db, zap.NewNop(), user.ID, CheckoutRequest{
		ShippingAddressID: address.ID,
		PaymentMethod:     "card",
	})
	require.Equal(t, apperr.InsufficientStock, apperr.KindOf(err))

	require.Equal(t, 2, stockOf(t, db, product.ID))
	var orders, lines int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.CartItem{}).Count(&lines).Error)
	require.Zero(t, orders)
	require.EqualValues(t, 1, lines) // cart untouched
}

func placeTestOrder(t *testing.T, db *gorm.DB, user *models.User, address *models.ShippingAddress, product *models.Product, qty int) *OrderResponse {
	t.Helper()
	_, err := cartControllers.AddToCart(db, user.ID, cartControllers.AddToCartRequest{ProductID: product.ID, Quantity: qty})
	require.NoError(t, err)
	resp, err := PlaceOrder(db, zap.NewNop(), user.ID, CheckoutRequest{
		ShippingAddressID: address.ID,
		PaymentMethod:     "card",
	})
	require.NoError(t, err)
	return resp
}

func TestCancelOrderRestoresStock(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "alice")
	address := seedAddress(t, db, user.ID)
	product := seedProduct(t, db, "widget", 10.0, 5)

	resp := placeTestOrder(t, db, user, address, product, 2)
	require.Equal(t, 3, stockOf(t, db, product.ID))

	require.NoError(t, CancelOrder(db, zap.NewNop(), resp.ID, user.ID))
	require.Equal(t, 5, stockOf(t, db, product.ID))

	var order models.Order
	require.NoError(t, db.First(&order, "id = ?", resp.ID).Error)
	require.Equal(t, models.OrderStatusCancelled, order.Status)
}

func TestCancelShippedOrderFailsWithoutStockChange(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "alice")
	address := seedAddress(t, db, user.ID)
	product := seedProduct(t, db, "widget", 10.0, 5)

	resp := placeTestOrder(t, db, user, address, product, 2)
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", resp.ID).
		Update("status", models.OrderStatusShipped).Error)

	err := CancelOrder(db, zap.NewNop(), resp.ID, user.ID)
	require.Equal(t, apperr.InvalidState, apperr.KindOf(err))
	require.Equal(t, 3, stockOf(t, db, product.ID))
}

func TestCancelOrderOwnership(t *testing.T) {
	db := setupDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	address := seedAddress(t, db, alice.ID)
	product := seedProduct(t, db, "widget", 10.0, 5)

	resp := placeTestOrder(t, db, alice, address, product, 1)

	err := CancelOrder(db, zap.NewNop(), resp.ID, bob.ID)
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestUpdateOrderStatusParsesCaseInsensitively(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "alice")
	address := seedAddress(t, db, user.ID)
	product := seedProduct(t, db, "widget", 10.0, 5)

	resp := placeTestOrder(t, db, user, address, product, 1)

	updated, err := UpdateOrderStatus(db, resp.ID, "shipped")
	require.NoError(t, err)
	require.Equal(t, string(models.OrderStatusShipped), updated.Status)

	// Any parseable status is accepted, even reopening a cancelled order.
	updated, err = UpdateOrderStatus(db, resp.ID, " Cancelled ")
	require.NoError(t, err)
	require.Equal(t, string(models.OrderStatusCancelled), updated.Status)

	_, err = UpdateOrderStatus(db, resp.ID, "teleported")
	require.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
}

func TestGetOrderByIDPermissions(t *testing.T) {
	db := setupDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	address := seedAddress(t, db, alice.ID)
	product := seedProduct(t, db, "widget", 10.0, 5)

	resp := placeTestOrder(t, db, alice, address, product, 1)

	_, err := GetOrderByID(db, resp.ID, alice.ID, models.RoleCustomer)
	require.NoError(t, err)

	_, err = GetOrderByID(db, resp.ID, bob.ID, models.RoleCustomer)
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	_, err = GetOrderByID(db, resp.ID, bob.ID, models.RoleAdmin)
	require.NoError(t, err)
}

func TestGetCustomerOrdersNewestFirstPaginated(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "alice")
	address := seedAddress(t, db, user.ID)
	product := seedProduct(t, db, "widget", 10.0, 50)

	var refs []string
	for i := 0; i < 3; i++ {
		resp := placeTestOrder(t, db, user, address, product, 1)
		// Spread order dates so the sort is deterministic.
		require.NoError(t, db.Model(&models.Order{}).Where("id = ?", resp.ID).
			Update("order_date", time.Now().Add(time.Duration(i)*time.Hour)).Error)
		refs = append(refs, resp.OrderRef)
	}

	page0, err := GetCustomerOrders(db, user.ID, 0, 2)
	require.NoError(t, err)
	require.Len(t, page0, 2)
	require.Equal(t, refs[2], page0[0].OrderRef)
	require.Equal(t, refs[1], page0[1].OrderRef)

	page1, err := GetCustomerOrders(db, user.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, page1, 1)
	require.Equal(t, refs[0], page1[0].OrderRef)
}
