package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/shopstack/ecommerce-api/auth"
	"github.com/shopstack/ecommerce-api/config"
	"gorm.io/gorm"
)

func SetupAuthRoutes(api *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	group := api.Group("/auth")
	{
		group.POST("/register", auth.RegisterHandler(db, cfg))
		group.POST("/login", auth.LoginHandler(db, cfg))
	}
}
