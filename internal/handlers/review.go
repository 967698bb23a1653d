package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SmaylovSerikbay/locals-sub000/internal/dto"
	apierrors "github.com/SmaylovSerikbay/locals-sub000/internal/errors"
	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
	"github.com/SmaylovSerikbay/locals-sub000/internal/services"
)

// ReviewHandler handles review requests
type ReviewHandler struct {
	reviews *services.ReviewService
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// ListReviews handles GET /reviews. Accepts either item_id or
// target_user_id as the filter.
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	var (
		reviews []models.Review
		err     error
	)
	switch {
	case c.Query("item_id") != "":
		reviews, err = h.reviews.ListByItem(c.Query("item_id"))
	case c.Query("target_user_id") != "":
		var targetID uint64
		targetID, err = strconv.ParseUint(c.Query("target_user_id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "target_user_id must be a number")
			return
		}
		reviews, err = h.reviews.ListByTarget(targetID)
	default:
		apierrors.BadRequest(c, "item_id or target_user_id is required")
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]dto.ReviewDTO, len(reviews))
	for i, r := range reviews {
		out[i] = dto.ToReviewDTO(r)
	}
	c.JSON(http.StatusOK, gin.H{"reviews": out})
}

// CreateReview handles POST /reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req struct {
		ItemID   string `json:"item_id" binding:"required"`
		AuthorID uint64 `json:"author_id" binding:"required"`
		TargetID uint64 `json:"target_user_id" binding:"required"`
		Rating   int    `json:"rating" binding:"required"`
		Text     string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	review, err := h.reviews.Submit(c.Request.Context(), services.SubmitReviewInput{
		ItemID:   req.ItemID,
		AuthorID: req.AuthorID,
		TargetID: req.TargetID,
		Rating:   req.Rating,
		Text:     req.Text,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToReviewDTO(*review))
}
