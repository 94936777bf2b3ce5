package productController

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

type ProductRequest struct {
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	Price         float64 `json:"price" binding:"required,gte=0"`
	StockQuantity int     `json:"stock_quantity" binding:"gte=0"`
	ImageURL      string  `json:"image_url"`
	CategoryID    uint    `json:"category_id" binding:"required"`
}

type ProductResponse struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
	ImageURL      string  `json:"image_url"`
	CategoryID    uint    `json:"category_id"`
	CategoryName  string  `json:"category_name"`
	SellerID      uint    `json:"seller_id"`
}

// -------- Core Logic --------

func CreateProduct(db *gorm.DB, sellerID uint, req ProductRequest) (*ProductResponse, error) {
	var category models.Category
	if err := db.First(&category, "id = ?", req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "Category not found with id: %d", req.CategoryID)
		}
		return nil, err
	}

	product := models.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		ImageURL:      req.ImageURL,
		CategoryID:    req.CategoryID,
		SellerID:      sellerID,
	}
	if err := db.Create(&product).Error; err != nil {
		return nil, err
	}
	return toResponse(product, category.Name), nil
}

// UpdateProduct rewrites the catalog fields. Sellers may only touch their
// own products; admins may touch any.
func UpdateProduct(db *gorm.DB, productID, callerID uint, callerRole models.Role, req ProductRequest) (*ProductResponse, error) {
	product, err := findProduct(db, productID)
	if err != nil {
		return nil, err
	}
	if product.SellerID != callerID && callerRole != models.RoleAdmin {
		return nil, apperr.New(apperr.Forbidden, "You don't have permission to update this product")
	}

	var category models.Category
	if err := db.First(&category, "id = ?", req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "Category not found with id: %d", req.CategoryID)
		}
		return nil, err
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.StockQuantity = req.StockQuantity
	product.ImageURL = req.ImageURL
	product.CategoryID = req.CategoryID
	if err := db.Save(product).Error; err != nil {
		return nil, err
	}
	return toResponse(*product, category.Name), nil
}

func DeleteProduct(db *gorm.DB, productID, callerID uint, callerRole models.Role) error {
	product, err := findProduct(db, productID)
	if err != nil {
		return err
	}
	if product.SellerID != callerID && callerRole != models.RoleAdmin {
		return apperr.New(apperr.Forbidden, "You don't have permission to delete this product")
	}
	return db.Delete(product).Error
}

func GetProductByID(db *gorm.DB, productID uint) (*ProductResponse, error) {
	product, err := findProduct(db, productID)
	if err != nil {
		return nil, err
	}
	resps, err := withCategoryNames(db, []models.Product{*product})
	if err != nil {
		return nil, err
	}
	return &resps[0], nil
}

var sortColumns = map[string]string{
	"id":         "id",
	"name":       "name",
	"price":      "price",
	"created_at": "created_at",
}

func GetAllProducts(db *gorm.DB, page, size int, sortBy string) ([]ProductResponse, error) {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = "id"
	}
	var products []models.Product
	if err := db.Order(column).Limit(size).Offset(page * size).Find(&products).Error; err != nil {
		return nil, err
	}
	return withCategoryNames(db, products)
}

func GetProductsByCategory(db *gorm.DB, categoryID uint, page, size int) ([]ProductResponse, error) {
	var products []models.Product
	if err := db.Where("category_id = ?", categoryID).
		Order("id").Limit(size).Offset(page * size).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return withCategoryNames(db, products)
}

func GetProductsBySeller(db *gorm.DB, sellerID uint, page, size int) ([]ProductResponse, error) {
	var products []models.Product
	if err := db.Where("seller_id = ?", sellerID).
		Order("id").Limit(size).Offset(page * size).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return withCategoryNames(db, products)
}

func SearchProducts(db *gorm.DB, keyword string, page, size int) ([]ProductResponse, error) {
	pattern := "%" + keyword + "%"
	var products []models.Product
	if err := db.Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", pattern, pattern).
		Order("id").Limit(size).Offset(page * size).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return withCategoryNames(db, products)
}

// GetRecentProducts returns the ten newest catalog entries.
func GetRecentProducts(db *gorm.DB) ([]ProductResponse, error) {
	var products []models.Product
	if err := db.Order("created_at DESC").Limit(10).Find(&products).Error; err != nil {
		return nil, err
	}
	return withCategoryNames(db, products)
}

func findProduct(db *gorm.DB, productID uint) (*models.Product, error) {
	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "Product not found with id: %d", productID)
		}
		return nil, err
	}
	return &product, nil
}

func toResponse(p models.Product, categoryName string) *ProductResponse {
	return &ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		ImageURL:      p.ImageURL,
		CategoryID:    p.CategoryID,
		CategoryName:  categoryName,
		SellerID:      p.SellerID,
	}
}

// withCategoryNames resolves category names with one batched query instead
// of a lookup per product.
func withCategoryNames(db *gorm.DB, products []models.Product) ([]ProductResponse, error) {
	ids := make([]uint, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.CategoryID)
	}
	names := map[uint]string{}
	if len(ids) > 0 {
		var categories []models.Category
		if err := db.Where("id IN ?", ids).Find(&categories).Error; err != nil {
			return nil, err
		}
		for _, cat := range categories {
			names[cat.ID] = cat.Name
		}
	}
	resps := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		resps = append(resps, *toResponse(p, names[p.CategoryID]))
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

// POST /api/products (seller/admin)
func CreateProductHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		resp, err := CreateProduct(db, middleware.UserID(c), req)
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusCreated, resp)
	}
}

// PUT /api/products/:id (owner seller/admin)
func UpdateProductHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
			return
		}
		var req ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		resp, err := UpdateProduct(db, uint(productID), middleware.UserID(c), middleware.CallerRole(c), req)
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// DELETE /api/products/:id (owner seller/admin)
func DeleteProductHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
			return
		}
		if err := DeleteProduct(db, uint(productID), middleware.UserID(c), middleware.CallerRole(c)); err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
	}
}

// GET /api/products/:id
func GetProductByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
			return
		}
		resp, err := GetProductByID(db, uint(productID))
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// GET /api/products
func GetAllProductsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, size := pageParams(c)
		resps, err := GetAllProducts(db, page, size, c.DefaultQuery("sortBy", "id"))
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, resps)
	}
}

// GET /api/products/category/:categoryId
func GetProductsByCategoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryID, err := strconv.ParseUint(c.Param("categoryId"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
			return
		}
		page, size := pageParams(c)
		resps, err := GetProductsByCategory(db, uint(categoryID), page, size)
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, resps)
	}
}

// GET /api/products/seller (the calling seller's catalog)
func GetSellerProductsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, size := pageParams(c)
		resps, err := GetProductsBySeller(db, middleware.UserID(c), page, size)
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, resps)
	}
}

// GET /api/products/search?keyword=
func SearchProductsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		keyword := c.Query("keyword")
		if keyword == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "keyword is required"})
			return
		}
		page, size := pageParams(c)
		resps, err := SearchProducts(db, keyword, page, size)
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, resps)
	}
}

// GET /api/products/recent
func GetRecentProductsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		resps, err := GetRecentProducts(db)
		if err != nil {
			apperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, resps)
	}
}
