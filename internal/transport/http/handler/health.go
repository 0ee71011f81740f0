package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type DependencyChecker interface {
	Dependencies(ctx context.Context) map[string]string
}

type HealthHandler struct {
	name      string
	env       string
	startedAt time.Time
	deps      DependencyChecker
}

func NewHealthHandler(name, env string, startedAt time.Time, deps DependencyChecker) *HealthHandler {
	return &HealthHandler{name: name, env: env, startedAt: startedAt, deps: deps}
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "AI Document Q&A API is running",
	})
}

// Check reports 503 when any backend in use is down.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	deps := h.deps.Dependencies(ctx)
	statusCode := http.StatusOK
	status := "healthy"
	for _, state := range deps {
		if state == "down" {
			statusCode = http.StatusServiceUnavailable
			status = "degraded"
			break
		}
	}

	c.JSON(statusCode, gin.H{
		"status":       status,
		"message":      "Server is running",
		"app":          h.name,
		"env":          h.env,
		"uptime_sec":   int(time.Since(h.startedAt).Seconds()),
		"dependencies": deps,
	})
}
