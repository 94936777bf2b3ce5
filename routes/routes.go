package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/shopstack/ecommerce-api/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRoutes is the single entry point that wires every route group under /api.
func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, logger *zap.Logger) {
	api := r.Group("/api")

	SetupAuthRoutes(api, db, cfg)
	SetupCartRoutes(api, db, cfg)
	SetupOrderRoutes(api, db, cfg, logger)
	SetupProductRoutes(api, db, cfg)
	SetupCategoryRoutes(api, db, cfg)
	SetupAddressRoutes(api, db, cfg)
	SetupUserRoutes(api, db, cfg)
}
