package profiles

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobassist-backend/internal/match"
	"jobassist-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the profile store.
type Handler struct {
	Repo Repo
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes attaches profile routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PUT("/profiles", h.put)
	rg.GET("/profiles", h.get)
}

func (h *Handler) put(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "user_id is required", nil)
		return
	}

	var profile match.CandidateProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	profile.UserID = userID

	if err := h.Repo.PutProfile(c.Request.Context(), profile); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	respond.OK(c, gin.H{"success": true})
}

func (h *Handler) get(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "user_id is required", nil)
		return
	}

	profile, err := h.Repo.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "profile not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load profile", nil)
		return
	}
	respond.OK(c, profile)
}
