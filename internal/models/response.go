package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResponseStatus string

const (
	ResponseStatusPending  ResponseStatus = "PENDING"
	ResponseStatusAccepted ResponseStatus = "ACCEPTED"
	ResponseStatusRejected ResponseStatus = "REJECTED"
)

// Response is a task-specific offer to perform the task. One row per
// (item, user) pair; re-submission overwrites the prior one.
type Response struct {
	ID      string         `gorm:"type:varchar(36);primarykey" json:"id"`
	ItemID  string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_responses_item_user;index" json:"item_id"`
	UserID  uint64         `gorm:"not null;uniqueIndex:idx_responses_item_user" json:"user_id"`
	Message string         `gorm:"type:text" json:"message"`
	Status  ResponseStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Item Item `gorm:"foreignKey:ItemID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (r *Response) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
