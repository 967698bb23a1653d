package repository

import (
	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
	"gorm.io/gorm"
)

// GormMessageRepository is a GORM implementation of MessageRepository
type GormMessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &GormMessageRepository{db: db}
}

// Create appends a message
func (r *GormMessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

// ListByItem lists an item's messages in chronological order
func (r *GormMessageRepository) ListByItem(itemID string) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.Preload("Sender").
		Where("item_id = ?", itemID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// FindByExternalID finds a mirrored message by its external identifier
func (r *GormMessageRepository) FindByExternalID(itemID string, externalID int64) (*models.Message, error) {
	var message models.Message
	if err := r.db.Where("item_id = ? AND external_id = ?", itemID, externalID).
		First(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}
