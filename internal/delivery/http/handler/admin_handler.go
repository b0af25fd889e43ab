package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrv/soulmate-bot/internal/infrastructure/janitor"
	"github.com/dmitrv/soulmate-bot/internal/repository"
)

// ErrorResponse is the admin API error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

type AdminHandler struct {
	profileRepo  repository.ProfileRepository
	decisionRepo repository.DecisionRepository
	janitor      *janitor.Janitor
}

func NewAdminHandler(
	profileRepo repository.ProfileRepository,
	decisionRepo repository.DecisionRepository,
	j *janitor.Janitor,
) *AdminHandler {
	return &AdminHandler{
		profileRepo:  profileRepo,
		decisionRepo: decisionRepo,
		janitor:      j,
	}
}

// Stats handles GET /api/v1/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	profiles, err := h.profileRepo.CountProfiles(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to count profiles"})
		return
	}
	likes, err := h.decisionRepo.CountLikes(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to count likes"})
		return
	}
	skips, err := h.decisionRepo.CountSkips(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to count skips"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profiles": profiles,
		"likes":    likes,
		"skips":    skips,
	})
}

// SweepSessions handles POST /api/v1/janitor/sweep
func (h *AdminHandler) SweepSessions(c *gin.Context) {
	swept := h.janitor.Sweep(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"swept": swept})
}
