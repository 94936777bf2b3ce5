package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/shopstack/ecommerce-api/config"
	userControllers "github.com/shopstack/ecommerce-api/controllers/user"
	"github.com/shopstack/ecommerce-api/middleware"
	"github.com/shopstack/ecommerce-api/models"
	"gorm.io/gorm"
)

func SetupUserRoutes(api *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	group := api.Group("/users", middleware.ValidateToken(cfg.JWTSecret))
	{
		group.GET("/profile", userControllers.GetProfileHandler(db))
		group.PUT("/profile", userControllers.UpdateProfileHandler(db))

		admin := group.Group("", middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/:id", userControllers.GetUserByIDHandler(db))
		}
	}
}
