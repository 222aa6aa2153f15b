package api

import (
	"alarm_gateway/metrics"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the middleware chain, the gateway endpoints and /metrics
func NewRouter(h *Handler) *gin.Engine {
	metrics.Init()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(AccessLog())
	router.Use(CORSMiddleware())

	h.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	return router
}
