package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/shopstack/ecommerce-api/config"
	categoryControllers "github.com/shopstack/ecommerce-api/controllers/category"
	"github.com/shopstack/ecommerce-api/middleware"
	"github.com/shopstack/ecommerce-api/models"
	"gorm.io/gorm"
)

func SetupCategoryRoutes(api *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	group := api.Group("/categories")
	{
		group.GET("", categoryControllers.GetAllCategoriesHandler(db))
		group.GET("/:id", categoryControllers.GetCategoryByIDHandler(db))

		admin := group.Group("", middleware.ValidateToken(cfg.JWTSecret),
			middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("", categoryControllers.CreateCategoryHandler(db))
			admin.PUT("/:id", categoryControllers.UpdateCategoryHandler(db))
			admin.DELETE("/:id", categoryControllers.DeleteCategoryHandler(db))
		}
	}
}
