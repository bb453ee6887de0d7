package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Siilah/services"
)

// Metrics records request counts and latency per route template.
func Metrics(c *gin.Context) {
	start := time.Now()
	services.HTTPRequestStarted()

	c.Next()

	path := c.FullPath()
	if path == "" {
		path = "unmatched"
	}
	services.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
}
