package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ItemType string

const (
	ItemTypeTask  ItemType = "TASK"
	ItemTypeEvent ItemType = "EVENT"
)

// Valid reports whether the type is one of the known variants.
func (t ItemType) Valid() bool {
	return t == ItemTypeTask || t == ItemTypeEvent
}

type ItemStatus string

const (
	ItemStatusOpen       ItemStatus = "OPEN"
	ItemStatusInProgress ItemStatus = "IN_PROGRESS"
	ItemStatusCompleted  ItemStatus = "COMPLETED"
	ItemStatusCancelled  ItemStatus = "CANCELLED"
)

// Terminal reports whether no further transitions are allowed from the status.
func (s ItemStatus) Terminal() bool {
	return s == ItemStatusCompleted || s == ItemStatusCancelled
}

// Item is a TASK or EVENT posting anchored to a location. Price/Currency are
// only meaningful for tasks; EventDate, MaxParticipants and RequiresApproval
// only for events.
type Item struct {
	ID          string   `gorm:"type:varchar(36);primarykey" json:"id"`
	Type        ItemType `gorm:"type:varchar(10);not null;index" json:"type"`
	Title       string   `gorm:"type:varchar(255);not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`

	Price    *float64 `json:"price,omitempty"`
	Currency string   `gorm:"type:varchar(8)" json:"currency,omitempty"`

	EventDate           *time.Time `json:"event_date,omitempty"`
	MaxParticipants     int        `gorm:"not null;default:0" json:"max_participants"`
	RequiresApproval    bool       `gorm:"not null;default:false" json:"requires_approval"`
	CurrentParticipants int        `gorm:"not null;default:0" json:"current_participants"`

	Latitude  float64 `gorm:"not null" json:"latitude"`
	Longitude float64 `gorm:"not null" json:"longitude"`

	Status     ItemStatus `gorm:"type:varchar(20);not null;default:'OPEN';index" json:"status"`
	AuthorID   uint64     `gorm:"not null;index" json:"author_id"`
	ExecutorID *uint64    `json:"executor_id,omitempty"`

	// External messaging thread the item's chat mirrors into.
	ExternalChatID   *int64 `json:"external_chat_id,omitempty"`
	ExternalThreadID *int64 `gorm:"index" json:"external_thread_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Author       User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Executor     *User         `gorm:"foreignKey:ExecutorID" json:"executor,omitempty"`
	Responses    []Response    `gorm:"foreignKey:ItemID" json:"responses,omitempty"`
	Participants []Participant `gorm:"foreignKey:ItemID" json:"participants,omitempty"`
	Reviews      []Review      `gorm:"foreignKey:ItemID" json:"reviews,omitempty"`
	Messages     []Message     `gorm:"foreignKey:ItemID" json:"-"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// AtCapacity reports whether the approved-participant cap is set and reached.
func (i Item) AtCapacity() bool {
	return i.MaxParticipants > 0 && i.CurrentParticipants >= i.MaxParticipants
}
