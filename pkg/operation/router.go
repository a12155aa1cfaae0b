package operation

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrg444/Cygni/pkg/stats"
	"k8s.io/klog/v2"
)

// NewRouter wires the conversion, health and metrics endpoints
func NewRouter(converter Converter, metrics *stats.MetricsRecorder) *gin.Engine {
	handler := NewGinHandler(converter)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.POST("/convert", handler.ConvertHandler)
	router.GET("/health", handler.HealthHandler)
	router.GET("/readyz", handler.HealthHandler)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		klog.V(2).InfoS("Handled request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
