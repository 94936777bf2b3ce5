package categoryControllers

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

func TestCreateCategoryDuplicate(t *testing.T) {
	db := setupDB(t)

	_, err := CreateCategory(db, "Books")
	require.NoError(t, err)

	_, err = CreateCategory(db, "Books")
	require.Equal(t, apperr.AlreadyExists, apperr.KindOf(err))
}

func TestUpdateCategory(t *testing.T) {
	db := setupDB(t)

	books, err := CreateCategory(db, "Books")
	require.NoError(t, err)
	_, err = CreateCategory(db, "Games")
	require.NoError(t, err)

	updated, err := UpdateCategory(db, books.ID, "Comics")
	require.NoError(t, err)
	require.Equal(t, "Comics", updated.Name)

	_, err = UpdateCategory(db, books.ID, "Games")
	require.Equal(t, apperr.AlreadyExists, apperr.KindOf(err))

	_, err = UpdateCategory(db, 9999, "Ghosts")
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestDeleteCategoryGuardedByProducts(t *testing.T) {
	db := setupDB(t)

	category, err := CreateCategory(db, "Books")
	require.NoError(t, err)

	product := models.Product{Name: "novel", Price: 9.99, CategoryID: category.ID, SellerID: 1}
	require.NoError(t, db.Create(&product).Error)

	err = DeleteCategory(db, category.ID)
	require.Equal(t, apperr.InvalidState, apperr.KindOf(err))

	require.NoError(t, db.Delete(&product).Error)
	require.NoError(t, DeleteCategory(db, category.ID))

	_, err = GetCategoryByID(db, category.ID)
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}
