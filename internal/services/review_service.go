package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/SmaylovSerikbay/locals-sub000/internal/authz"
	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
	"github.com/SmaylovSerikbay/locals-sub000/internal/relay"
	"github.com/SmaylovSerikbay/locals-sub000/internal/repository"
	"github.com/SmaylovSerikbay/locals-sub000/pkg/logger"
	"gorm.io/gorm"
)

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// ReviewService is the post-completion rating exchange. One review per
// (item, author, target); retries upsert the same row.
type ReviewService struct {
	reviewRepo repository.ReviewRepository
	itemRepo   repository.ItemRepository
	userRepo   repository.UserRepository
	hub        *relay.Hub
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
	hub *relay.Hub,
) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		itemRepo:   itemRepo,
		userRepo:   userRepo,
		hub:        hub,
	}
}

// SubmitReviewInput represents input for submitting a review
type SubmitReviewInput struct {
	ItemID   string
	AuthorID uint64
	TargetID uint64
	Rating   int
	Text     string
}

// Submit validates and upserts a review, then opportunistically recomputes
// the target's reputation. The recompute is not transactional with the
// review write; its failure is only logged.
func (s *ReviewService) Submit(ctx context.Context, input SubmitReviewInput) (*models.Review, error) {
	if input.Rating < models.MinRating || input.Rating > models.MaxRating {
		return nil, ErrInvalidRating
	}

	item, err := s.itemRepo.FindByID(input.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}

	if err := authz.CanReview(*item, input.AuthorID, input.TargetID); err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.Upsert(&models.Review{
		ItemID:   input.ItemID,
		AuthorID: input.AuthorID,
		TargetID: input.TargetID,
		Rating:   input.Rating,
		Text:     input.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save review: %w", err)
	}

	s.recomputeRating(ctx, input.TargetID)

	s.hub.Publish(ctx, relay.Event{
		Kind:     relay.KindReview,
		Change:   relay.ChangeCreated,
		EntityID: review.ID,
		ItemID:   input.ItemID,
		Payload:  review,
	})
	return review, nil
}

// ListByItem lists reviews for an item
func (s *ReviewService) ListByItem(itemID string) ([]models.Review, error) {
	reviews, err := s.reviewRepo.ListByItem(itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// ListByTarget lists reviews targeting a user
func (s *ReviewService) ListByTarget(targetID uint64) ([]models.Review, error) {
	reviews, err := s.reviewRepo.ListByTarget(targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (s *ReviewService) recomputeRating(ctx context.Context, targetID uint64) {
	avg, count, err := s.reviewRepo.AverageForTarget(targetID)
	if err != nil {
		logger.Warn(ctx, "Reputation recompute failed", "error", err, "user_id", targetID)
		return
	}
	if count == 0 {
		return
	}
	if err := s.userRepo.UpdateRating(targetID, avg); err != nil {
		logger.Warn(ctx, "Reputation update failed", "error", err, "user_id", targetID)
	}
}
