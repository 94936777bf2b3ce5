package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/shopstack/ecommerce-api/config"
	productController "github.com/shopstack/ecommerce-api/controllers/product"
	"github.com/shopstack/ecommerce-api/middleware"
	"github.com/shopstack/ecommerce-api/models"
	"gorm.io/gorm"
)

func SetupProductRoutes(api *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	group := api.Group("/products")
	{
		group.GET("", productController.GetAllProductsHandler(db))
		group.GET("/recent", productController.GetRecentProductsHandler(db))
		group.GET("/search", productController.SearchProductsHandler(db))
		group.GET("/category/:categoryId", productController.GetProductsByCategoryHandler(db))
		group.GET("/:id", productController.GetProductByIDHandler(db))

		sellers := group.Group("", middleware.ValidateToken(cfg.JWTSecret),
			middleware.RequireRole(models.RoleSeller, models.RoleAdmin))
		{
			sellers.POST("", productController.CreateProductHandler(db))
			sellers.PUT("/:id", productController.UpdateProductHandler(db))
			sellers.DELETE("/:id", productController.DeleteProductHandler(db))
			sellers.GET("/seller/mine", productController.GetSellerProductsHandler(db))
			sellers.GET("/export", productController.ExportProductsToExcel(db))
		}
	}
}
