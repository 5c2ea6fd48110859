package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lodestone-ai/lodestone"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// HealthHandler handles health check requests
type HealthHandler struct {
	client *lodestone.Client
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(client *lodestone.Client) *HealthHandler {
	return &HealthHandler{client: client}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "lodestone",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// LivenessCheck handles GET /live - Kubernetes liveness probe
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

// ReadinessCheck handles GET /ready. Ready means the tool catalog is
// non-empty and every tool's store resolves; tools over unregistered
// stores soft-fail to empty results, so they are reported but do not
// flip readiness.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	response := gin.H{
		"status":    "ready",
		"service":   "lodestone",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	tools := h.client.Tools()
	response["tools"] = len(tools)
	response["stores"] = h.client.Registry().Names()

	if len(tools) == 0 {
		response["status"] = "not ready"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}

// DetailedHealthCheck handles GET /health/detailed
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "lodestone",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"build": gin.H{
			"version":    Version,
			"git_commit": GitCommit,
			"build_time": BuildTime,
			"go_version": GoVersion,
		},
		"runtime": gin.H{
			"goroutines":      runtime.NumGoroutine(),
			"heap_alloc_mb":   memStats.HeapAlloc / 1024 / 1024,
			"total_alloc_mb":  memStats.TotalAlloc / 1024 / 1024,
			"gc_cycles":       memStats.NumGC,
			"last_gc_pause_b": memStats.PauseNs[(memStats.NumGC+255)%256],
		},
		"tools":  len(h.client.Tools()),
		"stores": h.client.Registry().Names(),
	})
}
