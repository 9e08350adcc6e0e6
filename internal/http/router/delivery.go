package router

import (
	"github.com/gin-gonic/gin"

	"github.com/limtzeyng/HERizon/internal/http/handler"
)

func DeliveryRouter(router *gin.RouterGroup, h *handler.DeliveryHandler) {
	router.POST("/send", h.Send)
	router.GET("/poll", h.Poll)
	router.POST("/response", h.Response)
	router.GET("/status", h.Status)
}
