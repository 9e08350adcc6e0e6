package router

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/limtzeyng/HERizon/internal/http/handler"
	"github.com/limtzeyng/HERizon/internal/http/middleware"
	"github.com/limtzeyng/HERizon/internal/service"
)

type RouterConfig struct {
	// Limiter caps request throughput on /api. Nil disables limiting.
	Limiter *rate.Limiter
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.Use(middleware.RateLimit(cfg.Limiter))
	{
		deliveryHandler := handler.NewDeliveryHandler(services.Delivery())
		DeliveryRouter(api, deliveryHandler)

		schemaHandler := handler.NewSchemaHandler()
		SchemaRouter(api.Group("/schema"), schemaHandler)
	}
}
