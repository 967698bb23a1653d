package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SmaylovSerikbay/locals-sub000/internal/authz"
	"github.com/SmaylovSerikbay/locals-sub000/internal/dto"
	apierrors "github.com/SmaylovSerikbay/locals-sub000/internal/errors"
	"github.com/SmaylovSerikbay/locals-sub000/internal/middleware"
	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
	"github.com/SmaylovSerikbay/locals-sub000/internal/services"
)

// ResponseHandler handles task response requests
type ResponseHandler struct {
	items *services.ItemService
}

// NewResponseHandler creates a new ResponseHandler
func NewResponseHandler(items *services.ItemService) *ResponseHandler {
	return &ResponseHandler{items: items}
}

// CreateResponse handles POST /items/:id/responses
func (h *ResponseHandler) CreateResponse(c *gin.Context) {
	var req struct {
		UserID  uint64 `json:"user_id" binding:"required"`
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

	response, err := h.items.Respond(c.Request.Context(), item.ID, req.UserID, req.Message)
	if err != nil {
		// Responding to your own item is a client mistake, not an access
		// control failure.
		if errors.Is(err, authz.ErrForbidden) {
			apierrors.BadRequest(c, "You cannot respond to your own item")
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToResponseDTO(*response))
}

// ListResponses handles GET /items/:id/responses
func (h *ResponseHandler) ListResponses(c *gin.Context) {
	item := middleware.ItemFromContext(c)
	if item == nil {
		apierrors.NotFound(c, "Item not found")
		return
	}

	responses, err := h.items.ListResponses(item.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]dto.ResponseDTO, len(responses))
	for i, r := range responses {
		out[i] = dto.ToResponseDTO(r)
	}
	c.JSON(http.StatusOK, gin.H{"responses": out})
}

// UpdateResponse handles PATCH /responses/:id
func (h *ResponseHandler) UpdateResponse(c *gin.Context) {
	var req struct {
		Status   string `json:"status" binding:"required"`
		AuthorID uint64 `json:"author_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	status := models.ResponseStatus(req.Status)
	response, err := h.items.UpdateResponse(c.Request.Context(), c.Param("id"), req.AuthorID, status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToResponseDTO(*response))
}
