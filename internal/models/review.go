package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a post-completion rating from one party of an item to the other.
// One row per (item, author, target); re-submission overwrites.
type Review struct {
	ID       string `gorm:"type:varchar(36);primarykey" json:"id"`
	ItemID   string `gorm:"type:varchar(36);not null;uniqueIndex:idx_reviews_item_author_target;index" json:"item_id"`
	AuthorID uint64 `gorm:"not null;uniqueIndex:idx_reviews_item_author_target" json:"author_id"`
	TargetID uint64 `gorm:"not null;uniqueIndex:idx_reviews_item_author_target;index" json:"target_user_id"`
	Rating   int    `gorm:"not null" json:"rating"`
	Text     string `gorm:"type:text" json:"text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Item   Item `gorm:"foreignKey:ItemID" json:"-"`
	Author User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Target User `gorm:"foreignKey:TargetID" json:"target,omitempty"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
