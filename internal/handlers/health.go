package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"ourxmas-backend/internal/models"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	version string
	db      Pinger
}

func NewHealthHandler(version string, db Pinger) *HealthHandler {
	return &HealthHandler{version: version, db: db}
}

// Root godoc
// @Summary     Root
// @Tags        health
// @Produce     json
// @Success     200 {object} map[string]string
// @Router      / [get]
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello World"})
}

// Health godoc
// @Summary     Health check
// @Description Returns the health status of the API
// @Tags        health
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Router      /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
	})
}

// Ready godoc
// @Summary     Readiness check
// @Description Reports whether the database is reachable
// @Tags        health
// @Produce     json
// @Success     200 {object} models.ReadyResponse
// @Failure     503 {object} models.ReadyResponse
// @Router      /health/ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	resp := models.ReadyResponse{Ready: true, Database: "connected", Timestamp: time.Now().UTC()}

	if h.db == nil {
		resp.Ready = false
		resp.Database = "not configured"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			resp.Ready = false
			resp.Database = "disconnected"
		}
	}

	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
