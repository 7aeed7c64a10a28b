package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check probes one dependency; nil means healthy.
type Check func(ctx context.Context) error

var startTime = time.Now()

// RegisterHealth mounts /health (liveness) and /ready (all checks pass).
func RegisterHealth(r *gin.Engine, checks map[string]Check) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		ready := true
		deps := make(map[string]bool, len(checks))
		for name, check := range checks {
			deps[name] = check(ctx) == nil
			if !deps[name] {
				ready = false
			}
		}

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	})
}
