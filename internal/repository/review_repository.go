package repository

import (
	"time"

	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReviewRepository is a GORM implementation of ReviewRepository
type GormReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new ReviewRepository
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &GormReviewRepository{db: db}
}

// Upsert creates or overwrites the (item, author, target) review. Retrying
// with the same key updates the stored row in place; latest values win.
func (r *GormReviewRepository) Upsert(review *models.Review) (*models.Review, error) {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "item_id"}, {Name: "author_id"}, {Name: "target_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"rating":     review.Rating,
			"text":       review.Text,
			"updated_at": time.Now(),
		}),
	}).Create(review).Error
	if err != nil {
		return nil, err
	}

	var stored models.Review
	if err := r.db.Where("item_id = ? AND author_id = ? AND target_id = ?",
		review.ItemID, review.AuthorID, review.TargetID).
		First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// ListByItem lists reviews for an item
func (r *GormReviewRepository) ListByItem(itemID string) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.db.Preload("Author").Preload("Target").
		Where("item_id = ?", itemID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// ListByTarget lists reviews targeting a user
func (r *GormReviewRepository) ListByTarget(targetID uint64) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.db.Preload("Author").
		Where("target_id = ?", targetID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// AverageForTarget returns the mean rating over all reviews targeting the user
func (r *GormReviewRepository) AverageForTarget(targetID uint64) (float64, int64, error) {
	var result struct {
		Avg   float64
		Count int64
	}
	err := r.db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("target_id = ?", targetID).
		Scan(&result).Error
	if err != nil {
		return 0, 0, err
	}
	return result.Avg, result.Count, nil
}
