package handler

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medstock/backend/internal/infrastructure/persistence"
)

// SystemHandler serves health and runtime information endpoints.
type SystemHandler struct {
	BaseHandler
	db        *persistence.Database
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *persistence.Database) *SystemHandler {
	return &SystemHandler{
		db:        db,
		startTime: time.Now(),
	}
}

// RegisterRoutes wires the system endpoints into the API group.
func (h *SystemHandler) RegisterRoutes(api *gin.RouterGroup) {
	system := api.Group("/system")
	{
		system.GET("/ping", h.Ping)
		system.GET("/health", h.Health)
		system.GET("/info", h.GetSystemInfo)
	}
}

// Ping responds with pong, for liveness probes.
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, gin.H{"message": "pong"})
}

// Health reports whether the service and its database are reachable.
func (h *SystemHandler) Health(c *gin.Context) {
	dbStatus := "ok"
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			dbStatus = "unreachable"
		}
	}

	h.Success(c, gin.H{
		"status":   "ok",
		"database": dbStatus,
	})
}

// GetSystemInfo returns runtime details for diagnostics.
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := gin.H{
		"name":       "MedStock Backend API",
		"go_version": runtime.Version(),
		"goroutines": runtime.NumGoroutine(),
		"uptime":     time.Since(h.startTime).String(),
	}

	if h.db != nil {
		if stats, err := h.db.Stats(); err == nil {
			info["database"] = stats
		}
	}

	h.Success(c, info)
}
