package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/shopstack/ecommerce-api/config"
	cartControllers "github.com/shopstack/ecommerce-api/controllers/cart"
	"github.com/shopstack/ecommerce-api/middleware"
	"gorm.io/gorm"
)

func SetupCartRoutes(api *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	group := api.Group("/cart", middleware.ValidateToken(cfg.JWTSecret))
	{
		group.GET("", cartControllers.GetCartHandler(db))
		group.POST("/items", cartControllers.AddToCartHandler(db))
		group.PUT("/items/:itemId", cartControllers.UpdateCartItemHandler(db))
		group.DELETE("/items/:itemId", cartControllers.RemoveCartItemHandler(db))
		group.DELETE("", cartControllers.ClearCartHandler(db))
	}
}
