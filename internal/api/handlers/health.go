package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/vidgrab/internal/database"
	"github.com/denisAlshanov/vidgrab/internal/services/storage"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

const healthCheckTimeout = 5 * time.Second

type HealthHandler struct {
	journal database.Journal
	storage storage.Saver
	version string
}

type HealthResponse struct {
	Status    string                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Version   string                   `json:"version"`
	Services  map[string]ServiceHealth `json:"services"`
}

type ServiceHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

func NewHealthHandler(journal database.Journal, saver storage.Saver, version string) *HealthHandler {
	return &HealthHandler{
		journal: journal,
		storage: saver,
		version: version,
	}
}

// Health godoc
// @Summary Health check endpoint
// @Description Check the download journal and the save destination
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Success 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   h.version,
		Services: map[string]ServiceHealth{
			// Check journal
			"journal": h.check(ctx, "journal", h.journal.Ping),
		},
	}
	// Check storage, when the saver can be probed
	if checker, ok := h.storage.(storage.Checker); ok {
		response.Services["storage"] = h.check(ctx, "storage", checker.Check)
	}

	// One unhealthy service fails the whole check
	for _, service := range response.Services {
		if service.Status != "healthy" {
			response.Status = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
	}

	c.JSON(http.StatusOK, response)
}

// Readiness godoc
// @Summary Readiness check endpoint
// @Description Check if the service is ready to accept requests
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Success 503 {object} map[string]interface{}
// @Router /ready [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	ready := true
	checks := make(map[string]interface{})

	// Check journal
	if err := h.journal.Ping(ctx); err != nil {
		ready = false
		checks["journal"] = map[string]interface{}{
			"ready": false,
			"error": err.Error(),
		}
	} else {
		checks["journal"] = map[string]interface{}{
			"ready": true,
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, map[string]interface{}{
		"ready":     ready,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// Liveness godoc
// @Summary Liveness check endpoint
// @Description Check if the service is alive
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /live [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"alive":     true,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *HealthHandler) check(ctx context.Context, name string, probe func(context.Context) error) ServiceHealth {
	start := time.Now()

	checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	err := probe(checkCtx)
	responseTime := time.Since(start).String()

	if err != nil {
		utils.LogError(ctx, "Health check failed", err, utils.Fields{"service": name})
		return ServiceHealth{
			Status:       "unhealthy",
			ResponseTime: responseTime,
			Error:        err.Error(),
		}
	}

	return ServiceHealth{
		Status:       "healthy",
		ResponseTime: responseTime,
	}
}
