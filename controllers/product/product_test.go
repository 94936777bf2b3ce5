package productController

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopstack/ecommerce-api/apperr"
	"github.com/shopstack/ecommerce-api/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Category{}, &models.Product{}))
	return db
}

func seedCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := models.Category{Name: name}
	require.NoError(t, db.Create(&category).Error)
	return &category
}

func TestCreateProductRequiresCategory(t *testing.T) {
	db := setupDB(t)

	_, err := CreateProduct(db, 1, ProductRequest{Name: "widget", Price: 9.99, CategoryID: 42})
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))

	category := seedCategory(t, db, "Gadgets")
	resp, err := CreateProduct(db, 1, ProductRequest{
		Name: "widget", Price: 9.99, StockQuantity: 5, CategoryID: category.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "Gadgets", resp.CategoryName)
	require.EqualValues(t, 1, resp.SellerID)
}

func TestUpdateProductOwnership(t *testing.T) {
	db := setupDB(t)
	category := seedCategory(t, db, "Gadgets")

	created, err := CreateProduct(db, 1, ProductRequest{
		Name: "widget", Price: 9.99, CategoryID: category.ID,
	})
	require.NoError(t, err)

	req := ProductRequest{Name: "widget v2", Price: 12.50, CategoryID: category.ID}

	_, err = UpdateProduct(db, created.ID, 2, models.RoleSeller, req)
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	// Admins bypass the ownership check.
	resp, err := UpdateProduct(db, created.ID, 2, models.RoleAdmin, req)
	require.NoError(t, err)
	require.Equal(t, "widget v2", resp.Name)

	resp, err = UpdateProduct(db, created.ID, 1, models.RoleSeller, req)
	require.NoError(t, err)
	require.Equal(t, 12.50, resp.Price)
}

func TestDeleteProductOwnership(t *testing.T) {
	db := setupDB(t)
	category := seedCategory(t, db, "Gadgets")

	created, err := CreateProduct(db, 1, ProductRequest{
		Name: "widget", Price: 9.99, CategoryID: category.ID,
	})
	require.NoError(t, err)

	err = DeleteProduct(db, created.ID, 2, models.RoleSeller)
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	require.NoError(t, DeleteProduct(db, created.ID, 1, models.RoleSeller))

	_, err = GetProductByID(db, created.ID)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestSearchProducts(t *testing.T) {
	db := setupDB(t)
	category := seedCategory(t, db, "Gadgets")

	for _, name := range []string{"Blue Widget", "Red Widget", "Green Gizmo"} {
		_, err := CreateProduct(db, 1, ProductRequest{
			Name: name, Price: 1.0, CategoryID: category.ID,
		})
		require.NoError(t, err)
	}

	widgets, err := SearchProducts(db, "widget", 0, 10)
	require.NoError(t, err)
	require.Len(t, widgets, 2)

	gizmos, err := SearchProducts(db, "GIZMO", 0, 10)
	require.NoError(t, err)
	require.Len(t, gizmos, 1)
	require.Equal(t, "Green Gizmo", gizmos[0].Name)
}

func TestGetProductsByCategoryAndSeller(t *testing.T) {
	db := setupDB(t)
	gadgets := seedCategory(t, db, "Gadgets")
	books := seedCategory(t, db, "Books")

	_, err := CreateProduct(db, 1, ProductRequest{Name: "widget", Price: 1, CategoryID: gadgets.ID})
	require.NoError(t, err)
	_, err = CreateProduct(db, 2, ProductRequest{Name: "novel", Price: 1, CategoryID: books.ID})
	require.NoError(t, err)

	inGadgets, err := GetProductsByCategory(db, gadgets.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, inGadgets, 1)
	require.Equal(t, "widget", inGadgets[0].Name)

	bySeller, err := GetProductsBySeller(db, 2, 0, 10)
	require.NoError(t, err)
	require.Len(t, bySeller, 1)
	require.Equal(t, "novel", bySeller[0].Name)
}
