package notifications

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobassist-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the notification service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches notification routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications", h.list)
	rg.POST("/notifications/:id/read", h.markRead)
	rg.POST("/notifications/:id/action", h.action)
}

func (h *Handler) list(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "user_id is required", nil)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be a non-negative integer", nil)
			return
		}
		limit = parsed
	}
	unreadOnly := c.Query("unread_only") == "true"

	items, err := h.Svc.List(c.Request.Context(), userID, limit, unreadOnly)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list notifications", nil)
		return
	}
	if items == nil {
		items = []Notification{}
	}
	respond.OK(c, gin.H{"notifications": items})
}

func (h *Handler) markRead(c *gin.Context) {
	userID := c.Query("user_id")
	notificationID := c.Param("id")
	if userID == "" || notificationID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "user_id and notification id are required", nil)
		return
	}

	if err := h.Svc.MarkRead(c.Request.Context(), notificationID, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "notification not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to mark notification read", nil)
		return
	}
	respond.OK(c, gin.H{"success": true})
}

type actionRequest struct {
	Action string `json:"action"`
}

func (h *Handler) action(c *gin.Context) {
	userID := c.Query("user_id")
	notificationID := c.Param("id")
	if userID == "" || notificationID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "user_id and notification id are required", nil)
		return
	}

	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Action == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "action is required", nil)
		return
	}

	result, err := h.Svc.HandleAction(c.Request.Context(), notificationID, userID, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "notification not found", nil)
		case errors.Is(err, ErrExpired):
			respond.Error(c, http.StatusGone, "expired", "notification has expired", nil)
		case errors.Is(err, ErrInvalidAction):
			respond.Error(c, http.StatusConflict, "invalid_action", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to resolve notification", nil)
		}
		return
	}
	respond.OK(c, result)
}
