package http

import (
	"github.com/gin-gonic/gin"

	"github.com/comarapa/catalog-desk/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware(handler.log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", handler.ListProducts)
			products.GET("/search", handler.SearchProducts)
			products.GET("/low-stock", handler.GetLowStockProducts)
			products.GET("/sku/:sku", handler.GetProductBySKU)
			products.GET("/:id", handler.GetProduct)
		}

		imports := v1.Group("/import")
		{
			imports.GET("/health", handler.ImportHealth)
			imports.GET("/progress", handler.ExtractionProgress)
			imports.POST("/match", handler.MatchProduct)
			imports.POST("/autocomplete", handler.AutocompleteProduct)

			sessions := imports.Group("/sessions")
			{
				sessions.POST("", handler.CreateSession)
				sessions.GET("/:id", handler.GetSession)
				sessions.DELETE("/:id", handler.DeleteSession)
				sessions.POST("/:id/extract", handler.ExtractSession)
				sessions.POST("/:id/select-invoice", handler.SelectInvoice)
				sessions.POST("/:id/select-product", handler.SelectProduct)
				sessions.PUT("/:id/edits/:index", handler.PutEdit)
				sessions.DELETE("/:id/edits/:index", handler.DeleteEdit)
				sessions.POST("/:id/create", handler.CreateProducts)
				sessions.POST("/:id/reset", handler.ResetSession)
				sessions.POST("/:id/clear-error", handler.ClearSessionError)
				sessions.GET("/:id/export", handler.ExportSession)
			}
		}
	}

	return router
}
