package categoryControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopstack/ecommerce-api/apperr"
	"github.com/shopstack/ecommerce-api/models"
	"gorm.io/gorm"
)

type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// -------- Core Logic --------

func CreateCategory(db *gorm.DB, name string) (*models.Category, error) {
	var count int64
	if err := db.Model(&models.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.Newf(apperr.AlreadyExists, "Category already exists: %s", name)
	}
	category := models.Category{Name: name}
	if err := db.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func UpdateCategory(db *gorm.DB, categoryID uint, name string) (*models.Category, error) {
	category, err := findCategory(db, categoryID)
	if err != nil {
		return nil, err
	}
	var count int64
	if err := db.Model(&models.Category{}).
		Where("name = ? AND id <> ?", name, categoryID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.Newf(apperr.AlreadyExists, "Category already exists: %s", name)
	}
	category.Name = name
	if err := db.Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory refuses to delete a category that still has products.
func DeleteCategory(db *gorm.DB, categoryID uint) error {
	category, err := findCategory(db, categoryID)
	if err != nil {
		return err
	}
	var count int64
	if err := db.Model(&models.Product{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperr.New(apperr.InvalidState, "Cannot delete category with existing products")
	}
	return db.Delete(category).Error
}

func GetCategoryByID(db *gorm.DB, categoryID uint) (*models.Category, error) {
	return findCategory(db, categoryID)
}

func GetAllCategories(db *gorm.DB) ([]models.Category, error) {
	var categories []models.Category
	if err := db.Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func findCategory(db *gorm.DB, categoryID uint) (*models.Category, error) {
	var category models.Category
	if err := db.First(&category, "id = ?", categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "Category not found with id: %d", categoryID)
		}
		return nil, err
	}
	return &category, nil
}

// -------- Handlers --------

// POST /api/categories (admin)
func CreateCategoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		category, err := CreateCategory(db, req.Name)
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

// PUT /api/categories/:id (admin)
func UpdateCategoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
			return
		}
		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		category, err := UpdateCategory(db, uint(categoryID), req.Name)
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

// DELETE /api/categories/:id (admin)
func DeleteCategoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
			return
		}
		if err := DeleteCategory(db, uint(categoryID)); err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
	}
}

// GET /api/categories/:id
func GetCategoryByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
			return
		}
		category, err := GetCategoryByID(db, uint(categoryID))
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

// GET /api/categories
func GetAllCategoriesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := GetAllCategories(db)
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}
