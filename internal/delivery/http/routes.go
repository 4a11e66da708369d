package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/precifica/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, log zerolog.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestLogger(log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		invoices := v1.Group("/invoices")
		{
			invoices.GET("", handler.ListInvoices)
			invoices.POST("/import", handler.ImportInvoice)
			invoices.POST("/enqueue", handler.EnqueueInvoice)
			invoices.GET("/:key", handler.GetInvoice)
			invoices.GET("/:key/review", handler.ReviewColumns)
			invoices.GET("/:key/export", handler.ExportReview)
		}

		pricing := v1.Group("/pricing")
		{
			pricing.POST("/preview", handler.PreviewPricing)
		}

		tools := v1.Group("/tools")
		{
			tools.POST("/size-trace", handler.TraceSize)
		}
	}

	return router
}
