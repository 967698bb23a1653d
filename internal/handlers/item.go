package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SmaylovSerikbay/locals-sub000/internal/authz"
	"github.com/SmaylovSerikbay/locals-sub000/internal/constants"
	"github.com/SmaylovSerikbay/locals-sub000/internal/dto"
	apierrors "github.com/SmaylovSerikbay/locals-sub000/internal/errors"
	"github.com/SmaylovSerikbay/locals-sub000/internal/middleware"
	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
	"github.com/SmaylovSerikbay/locals-sub000/internal/repository"
	"github.com/SmaylovSerikbay/locals-sub000/internal/services"
	"github.com/SmaylovSerikbay/locals-sub000/internal/utils"
)

// ItemHandler handles item-related requests
type ItemHandler struct {
	items *services.ItemService
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(items *services.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

// ListItems handles GET /items
func (h *ItemHandler) ListItems(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := repository.ItemFilter{
		Page:  params.Page,
		Limit: params.Limit,
	}
	if raw := c.Query("type"); raw != "" {
		itemType := models.ItemType(raw)
		if !itemType.Valid() {
			apierrors.BadRequest(c, "type must be TASK or EVENT")
			return
		}
		filter.Type = &itemType
	}
	if raw := c.Query("status"); raw != "" {
		status := models.ItemStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("author_id"); raw != "" {
		authorID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "author_id must be a number")
			return
		}
		filter.AuthorID = &authorID
	}

	items, total, err := h.items.ListItems(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToItemListResponse(items, params.Page, params.Limit, total))
}

// NearbyItems handles GET /items/nearby
func (h *ItemHandler) NearbyItems(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		apierrors.BadRequest(c, "lat is required")
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		apierrors.BadRequest(c, "lng is required")
		return
	}

	radius := float64(constants.DefaultNearbyRadius)
	if raw := c.Query("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			apierrors.BadRequest(c, "radius must be a positive number")
			return
		}
		if radius > constants.MaxNearbyRadius {
			radius = constants.MaxNearbyRadius
		}
	}

	var itemType *models.ItemType
	if raw := c.Query("type"); raw != "" {
		parsed := models.ItemType(raw)
		if !parsed.Valid() {
			apierrors.BadRequest(c, "type must be TASK or EVENT")
			return
		}
		itemType = &parsed
	}

	items, err := h.items.Nearby(c.Request.Context(), lat, lng, radius, itemType)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]dto.NearbyItemDTO, len(items))
	for i, item := range items {
		out[i] = dto.ToNearbyItemDTO(item)
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

// CreateItem handles POST /items
func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req struct {
		Type             string     `json:"type" binding:"required"`
		Title            string     `json:"title" binding:"required"`
		Description      string     `json:"description"`
		Price            *float64   `json:"price"`
		Currency         string     `json:"currency"`
		EventDate        *time.Time `json:"event_date"`
		MaxParticipants  int        `json:"max_participants"`
		RequiresApproval bool       `json:"requires_approval"`
		Latitude         *float64   `json:"latitude" binding:"required"`
		Longitude        *float64   `json:"longitude" binding:"required"`
		AuthorID         uint64     `json:"author_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	item, err := h.items.CreateItem(c.Request.Context(), services.CreateItemInput{
		Type:             models.ItemType(req.Type),
		Title:            req.Title,
		Description:      req.Description,
		Price:            req.Price,
		Currency:         req.Currency,
		EventDate:        req.EventDate,
		MaxParticipants:  req.MaxParticipants,
		RequiresApproval: req.RequiresApproval,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		AuthorID:         req.AuthorID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToItemDTO(*item))
}

// GetItem handles GET /items/:id
func (h *ItemHandler) GetItem(c *gin.Context) {
	item, err := h.items.GetItem(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToItemDTO(*item))
}

// UpdateItem handles PATCH /items/:id
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	var req struct {
		AuthorID    uint64     `json:"author_id" binding:"required"`
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Price       *float64   `json:"price"`
		Currency    *string    `json:"currency"`
		EventDate   *time.Time `json:"event_date"`
		Latitude    *float64   `json:"latitude"`
		Longitude   *float64   `json:"longitude"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	item, err := h.items.UpdateItem(c.Request.Context(), c.Param("id"), req.AuthorID, services.UpdateItemInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Currency:    req.Currency,
		EventDate:   req.EventDate,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToItemDTO(*item))
}

// DeleteItem handles DELETE /items/:id
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	authorID, err := strconv.ParseUint(c.Query("authorId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "authorId is required")
		return
	}

	if err := h.items.DeleteItem(c.Request.Context(), c.Param("id"), authorID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

// CompleteItem handles POST /items/:id/complete
func (h *ItemHandler) CompleteItem(c *gin.Context) {
	var req struct {
		UserID uint64 `json:"user_id" binding:"required"`
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

	updated, err := h.items.CompleteItem(c.Request.Context(), item.ID, req.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToItemDTO(*updated))
}

// CancelItem handles POST /items/:id/cancel
func (h *ItemHandler) CancelItem(c *gin.Context) {
	var req struct {
		UserID uint64 `json:"user_id" binding:"required"`
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

	updated, err := h.items.CancelItem(c.Request.Context(), item.ID, req.UserID)
	if err != nil {
		if errors.Is(err, authz.ErrInvalidState) {
			apierrors.Conflict(c, "Item is already closed")
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToItemDTO(*updated))
}
