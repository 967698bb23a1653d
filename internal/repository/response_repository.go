package repository

import (
	"time"

	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormResponseRepository is a GORM implementation of ResponseRepository
type GormResponseRepository struct {
	db *gorm.DB
}

// NewResponseRepository creates a new ResponseRepository
func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &GormResponseRepository{db: db}
}

// Upsert creates a response or overwrites the user's prior one for the item.
// Re-submission resets the row to PENDING with the new message; it never
// produces a second row for the same (item, user) pair.
func (r *GormResponseRepository) Upsert(response *models.Response) (*models.Response, error) {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "item_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"message":    response.Message,
			"status":     models.ResponseStatusPending,
			"updated_at": time.Now(),
		}),
	}).Create(response).Error
	if err != nil {
		return nil, err
	}

	// On conflict the generated ID does not match the stored row; re-read.
	var stored models.Response
	if err := r.db.Where("item_id = ? AND user_id = ?", response.ItemID, response.UserID).
		First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// FindByID finds a response by ID
func (r *GormResponseRepository) FindByID(id string, preload ...string) (*models.Response, error) {
	var response models.Response
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&response, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &response, nil
}

// ListByItem lists all responses for an item
func (r *GormResponseRepository) ListByItem(itemID string) ([]models.Response, error) {
	var responses []models.Response
	if err := r.db.Preload("User").
		Where("item_id = ?", itemID).
		Order("created_at ASC").
		Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

// Accept applies the whole accept operation as one transaction: the item
// moves OPEN -> IN_PROGRESS with its executor set, the chosen response
// becomes ACCEPTED, and every other pending response becomes REJECTED.
// The item transition is a conditional write, so a second accept racing on
// the same item loses with ErrStaleState.
func (r *GormResponseRepository) Accept(itemID, responseID string, responderID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Item{}).
			Where("id = ? AND status = ?", itemID, models.ItemStatusOpen).
			Updates(map[string]interface{}{
				"status":      models.ItemStatusInProgress,
				"executor_id": responderID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleState
		}

		res = tx.Model(&models.Response{}).
			Where("id = ? AND status = ?", responseID, models.ResponseStatusPending).
			Update("status", models.ResponseStatusAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleState
		}

		return tx.Model(&models.Response{}).
			Where("item_id = ? AND id <> ? AND status = ?", itemID, responseID, models.ResponseStatusPending).
			Update("status", models.ResponseStatusRejected).Error
	})
}

// Reject transitions a pending response to REJECTED
func (r *GormResponseRepository) Reject(responseID string) error {
	res := r.db.Model(&models.Response{}).
		Where("id = ? AND status = ?", responseID, models.ResponseStatusPending).
		Update("status", models.ResponseStatusRejected)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}
