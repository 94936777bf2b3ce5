package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/shopstack/ecommerce-api/config"
	orderControllers "github.com/shopstack/ecommerce-api/controllers/order"
	"github.com/shopstack/ecommerce-api/middleware"
	"github.com/shopstack/ecommerce-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func SetupOrderRoutes(api *gin.RouterGroup, db *gorm.DB, cfg *config.Config, logger *zap.Logger) {
	group := api.Group("/orders", middleware.ValidateToken(cfg.JWTSecret))
	{
		group.POST("", orderControllers.PlaceOrderHandler(db, logger))
		group.GET("", orderControllers.GetCustomerOrdersHandler(db))
		group.GET("/:id", orderControllers.GetOrderByIDHandler(db))
		group.DELETE("/:id", orderControllers.CancelOrderHandler(db, logger))

		admin := group.Group("", middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/all", orderControllers.GetAllOrdersHandler(db))
			admin.PUT("/:id/status", orderControllers.UpdateOrderStatusHandler(db))
			admin.GET("/ws", orderControllers.OrderFeedHandler(logger))
		}
	}
}
