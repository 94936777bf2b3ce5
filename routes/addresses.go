package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/shopstack/ecommerce-api/config"
	addressControllers "github.com/shopstack/ecommerce-api/controllers/address"
	"github.com/shopstack/ecommerce-api/middleware"
	"gorm.io/gorm"
)

func SetupAddressRoutes(api *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	group := api.Group("/addresses", middleware.ValidateToken(cfg.JWTSecret))
	{
		group.GET("", addressControllers.ListAddressesHandler(db))
		group.GET("/:id", addressControllers.GetAddressByIDHandler(db))
		group.POST("", addressControllers.CreateAddressHandler(db))
		group.PUT("/:id", addressControllers.UpdateAddressHandler(db))
		group.DELETE("/:id", addressControllers.DeleteAddressHandler(db))
		group.PUT("/:id/default", addressControllers.SetDefaultAddressHandler(db))
	}
}
