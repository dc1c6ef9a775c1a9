package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether a dependency is reachable.
type Pinger func(ctx context.Context) error

// RegisterPublicRoutes mounts /healthz and /metrics. When mediaDir is set
// the stored files are also served under mediaURL, for setups without a
// fronting web server.
func RegisterPublicRoutes(r *gin.Engine, ping Pinger, mediaURL, mediaDir string) {
	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if ping != nil {
			if err := ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if mediaDir != "" && mediaURL != "" && mediaURL[0] == '/' {
		r.Static(mediaURL, mediaDir)
	}
}
