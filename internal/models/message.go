package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is one entry in an item's chat thread. Append-only. Messages
// mirrored from the external platform carry the external message id so
// duplicate webhook deliveries can be detected.
type Message struct {
	ID         string `gorm:"type:varchar(36);primarykey" json:"id"`
	ItemID     string `gorm:"type:varchar(36);not null;index" json:"item_id"`
	SenderID   uint64 `gorm:"not null" json:"sender_id"`
	Text       string `gorm:"type:text;not null" json:"text"`
	ExternalID *int64 `gorm:"index" json:"external_id,omitempty"`
	IsSystem   bool   `gorm:"not null;default:false" json:"is_system"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Item   Item `gorm:"foreignKey:ItemID" json:"-"`
	Sender User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
