package router

import (
	"github.com/gin-gonic/gin"

	"github.com/limtzeyng/HERizon/internal/http/handler"
)

func SchemaRouter(router *gin.RouterGroup, h *handler.SchemaHandler) {
	router.GET("", h.List)
	router.GET("/:name", h.Get)
}
