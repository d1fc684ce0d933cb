package workflow

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobassist-backend/internal/match"
	"jobassist-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the workflow service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches workflow routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/workflows", h.startWorkflow)
	rg.GET("/workflows/:id/status", h.getStatus)
	rg.POST("/workflows/:id/approve", h.approve)
	rg.DELETE("/workflows/:id", h.cancel)
}

type startRequest struct {
	Job match.JobPosting `json:"job"`
}

type approveRequest struct {
	Refinements *Refinements `json:"refinements,omitempty"`
}

func (h *Handler) startWorkflow(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "user_id is required", nil)
		return
	}

	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	workflowID, err := h.Svc.Start(c.Request.Context(), userID, req.Job)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"workflowId": workflowID,
		"status":     StatusPending,
	})
}

func (h *Handler) getStatus(c *gin.Context) {
	userID := c.Query("user_id")
	workflowID := c.Param("id")
	if userID == "" || workflowID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "user_id and workflow id are required", nil)
		return
	}

	snapshot, err := h.Svc.Status(c.Request.Context(), workflowID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "workflow not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load workflow", nil)
		return
	}
	respond.OK(c, snapshot)
}

func (h *Handler) approve(c *gin.Context) {
	userID := c.Query("user_id")
	workflowID := c.Param("id")
	if userID == "" || workflowID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "user_id and workflow id are required", nil)
		return
	}

	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	result, err := h.Svc.Approve(c.Request.Context(), workflowID, userID, req.Refinements)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "workflow not found", nil)
		case errors.Is(err, ErrInvalidState):
			respond.Error(c, http.StatusConflict, "invalid_state", err.Error(), nil)
		default:
			var stageErr *StageError
			if errors.As(err, &stageErr) {
				respond.Error(c, http.StatusBadGateway, "stage_error", stageErr.Error(), gin.H{
					"stage": stageErr.Stage,
					"kind":  stageErr.Kind,
				})
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to approve workflow", nil)
		}
		return
	}
	respond.OK(c, result)
}

func (h *Handler) cancel(c *gin.Context) {
	userID := c.Query("user_id")
	workflowID := c.Param("id")
	if userID == "" || workflowID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "user_id and workflow id are required", nil)
		return
	}

	if err := h.Svc.Cancel(c.Request.Context(), workflowID, userID); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "workflow not found", nil)
		case errors.Is(err, ErrInvalidState):
			respond.Error(c, http.StatusConflict, "invalid_state", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to cancel workflow", nil)
		}
		return
	}
	respond.OK(c, gin.H{"success": true, "message": "workflow cancelled"})
}
