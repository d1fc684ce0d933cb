package monitor

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobassist-backend/internal/profiles"
	"jobassist-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the monitoring service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches monitoring routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs/monitoring/enable", h.enable)
	rg.POST("/jobs/monitoring/disable", h.disable)
	rg.PUT("/jobs/monitoring/preferences", h.updatePreferences)
	rg.GET("/jobs/monitoring/status", h.status)
	rg.POST("/jobs/monitoring/scan", h.scan)
}

func (h *Handler) enable(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "user_id is required", nil)
		return
	}
	respond.OK(c, h.Svc.Enable(userID))
}

func (h *Handler) disable(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "user_id is required", nil)
		return
	}
	h.Svc.Disable(userID)
	respond.OK(c, gin.H{"success": true})
}

func (h *Handler) updatePreferences(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "user_id is required", nil)
		return
	}

	var prefs Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	status, err := h.Svc.UpdatePreferences(userID, prefs)
	if err != nil {
		if errors.Is(err, ErrNotEnabled) {
			respond.Error(c, http.StatusConflict, "not_enabled", "enable monitoring before setting preferences", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update preferences", nil)
		return
	}
	respond.OK(c, status)
}

func (h *Handler) status(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "user_id is required", nil)
		return
	}
	respond.OK(c, h.Svc.StatusFor(userID))
}

func (h *Handler) scan(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "user_id is required", nil)
		return
	}

	report, err := h.Svc.Scan(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotEnabled):
			respond.Error(c, http.StatusConflict, "not_enabled", "enable monitoring before scanning", nil)
		case errors.Is(err, profiles.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "no profile for user", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "scan failed", nil)
		}
		return
	}
	respond.OK(c, report)
}
