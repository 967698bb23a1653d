package repository

import (
	"github.com/SmaylovSerikbay/locals-sub000/internal/database"
	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
	"github.com/SmaylovSerikbay/locals-sub000/internal/utils"
	"gorm.io/gorm"
)

// GormItemRepository is a GORM implementation of ItemRepository
type GormItemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new ItemRepository
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &GormItemRepository{db: db}
}

// Create creates a new item
func (r *GormItemRepository) Create(item *models.Item) error {
	return r.db.Create(item).Error
}

// FindByID finds an item by ID with optional preloading
func (r *GormItemRepository) FindByID(id string, preload ...string) (*models.Item, error) {
	var item models.Item
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}

	return &item, nil
}

// FindByThread resolves an external (chat, thread) pair to an item
func (r *GormItemRepository) FindByThread(chatID, threadID int64) (*models.Item, error) {
	var item models.Item
	if err := r.db.Where("external_chat_id = ? AND external_thread_id = ?", chatID, threadID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// List retrieves items with filtering and pagination
func (r *GormItemRepository) List(filter ItemFilter) ([]models.Item, int64, error) {
	var items []models.Item

	query := r.db.Model(&models.Item{})

	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.AuthorID != nil {
		query = query.Where("author_id = ?", *filter.AuthorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("created_at DESC")
	if filter.Page > 0 && filter.Limit > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.Limit,
			Offset: (filter.Page - 1) * filter.Limit,
		}))
	}

	if err := listQuery.Preload("Author").Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// ListActive returns all OPEN or IN_PROGRESS items, optionally by type
func (r *GormItemRepository) ListActive(itemType *models.ItemType) ([]models.Item, error) {
	var items []models.Item
	query := r.db.Where("status IN ?", []models.ItemStatus{
		models.ItemStatusOpen,
		models.ItemStatusInProgress,
	})
	if itemType != nil {
		query = query.Where("type = ?", *itemType)
	}
	if err := query.Preload("Author").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Update saves the full item record
func (r *GormItemRepository) Update(item *models.Item) error {
	return r.db.Save(item).Error
}

// UpdateStatusIf transitions status via a conditional write
func (r *GormItemRepository) UpdateStatusIf(id string, from, to models.ItemStatus, extra map[string]interface{}) error {
	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}

	res := r.db.Model(&models.Item{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// SetThread records the external chat/thread identifiers
func (r *GormItemRepository) SetThread(id string, chatID, threadID int64) error {
	return r.db.Model(&models.Item{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"external_chat_id":   chatID,
			"external_thread_id": threadID,
		}).Error
}

// Delete hard-deletes the item and all owned entities in a transaction
func (r *GormItemRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&models.Response{}).Error; err != nil {
			return err
		}
		if err := tx.Where("item_id = ?", id).Delete(&models.Participant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("item_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("item_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Item{}, "id = ?", id).Error
	})
}
