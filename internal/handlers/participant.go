package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SmaylovSerikbay/locals-sub000/internal/authz"
	"github.com/SmaylovSerikbay/locals-sub000/internal/dto"
	apierrors "github.com/SmaylovSerikbay/locals-sub000/internal/errors"
	"github.com/SmaylovSerikbay/locals-sub000/internal/middleware"
	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
	"github.com/SmaylovSerikbay/locals-sub000/internal/services"
)

// ParticipantHandler handles join and participant requests
type ParticipantHandler struct {
	items *services.ItemService
}

// NewParticipantHandler creates a new ParticipantHandler
func NewParticipantHandler(items *services.ItemService) *ParticipantHandler {
	return &ParticipantHandler{items: items}
}

// Join handles POST /items/:id/join. For events the user becomes a
// participant; for tasks the request is recorded as a response.
func (h *ParticipantHandler) Join(c *gin.Context) {
	var req struct {
		UserID  uint64 `json:"userId" binding:"required"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	item := middleware.ItemFromContext(c)
	if item == nil {
		apierrors.NotFound(c, "Item not found")
		return
	}

	if item.Type == models.ItemTypeTask {
		response, err := h.items.Respond(c.Request.Context(), item.ID, req.UserID, req.Message)
		if err != nil {
			if errors.Is(err, authz.ErrForbidden) {
				apierrors.BadRequest(c, "You cannot join your own item")
				return
			}
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dto.ToResponseDTO(*response))
		return
	}

	participant, err := h.items.JoinEvent(c.Request.Context(), item.ID, req.UserID)
	if err != nil {
		if errors.Is(err, authz.ErrForbidden) {
			apierrors.BadRequest(c, "You cannot join your own item")
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToParticipantDTO(*participant))
}

// ListParticipants handles GET /items/:id/join
func (h *ParticipantHandler) ListParticipants(c *gin.Context) {
	item := middleware.ItemFromContext(c)
	if item == nil {
		apierrors.NotFound(c, "Item not found")
		return
	}

	var status *models.ParticipantStatus
	if raw := c.Query("status"); raw != "" {
		parsed := models.ParticipantStatus(raw)
		status = &parsed
	}

	participants, err := h.items.ListParticipants(item.ID, status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]dto.ParticipantDTO, len(participants))
	for i, p := range participants {
		out[i] = dto.ToParticipantDTO(p)
	}
	c.JSON(http.StatusOK, gin.H{"participants": out})
}

// UpdateParticipant handles PATCH /items/:id/join/:participantId
func (h *ParticipantHandler) UpdateParticipant(c *gin.Context) {
	var req struct {
		Status   string `json:"status" binding:"required"`
		AuthorID uint64 `json:"authorId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	status := models.ParticipantStatus(req.Status)
	participant, err := h.items.UpdateParticipant(c.Request.Context(), c.Param("participantId"), req.AuthorID, status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToParticipantDTO(*participant))
}

// RemoveParticipant handles DELETE /items/:id/join/:participantId
func (h *ParticipantHandler) RemoveParticipant(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("userId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "userId is required")
		return
	}

	item := middleware.ItemFromContext(c)
	if item == nil {
		apierrors.NotFound(c, "Item not found")
		return
	}

	if err := h.items.RemoveParticipant(c.Request.Context(), item.ID, c.Param("participantId"), userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Participant removed"})
}
