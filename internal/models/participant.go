package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ParticipantStatus string

const (
	ParticipantStatusPending  ParticipantStatus = "PENDING"
	ParticipantStatusApproved ParticipantStatus = "APPROVED"
	ParticipantStatusRejected ParticipantStatus = "REJECTED"
	ParticipantStatusLeft     ParticipantStatus = "LEFT"
)

// Active reports whether the participant still occupies a join slot for
// uniqueness purposes. LEFT rows are kept for history but do not count.
func (s ParticipantStatus) Active() bool {
	return s != ParticipantStatusLeft
}

// Participant is an event-specific join record. The partial unique index
// over non-LEFT rows keeps at most one active row per (item, user) pair at
// commit time; LEFT rows stay behind as history.
type Participant struct {
	ID     string            `gorm:"type:varchar(36);primarykey" json:"id"`
	ItemID string            `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_participants_item_user_active,where:status <> 'LEFT'" json:"item_id"`
	UserID uint64            `gorm:"not null;index;uniqueIndex:idx_participants_item_user_active" json:"user_id"`
	Status ParticipantStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`

	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	ApprovedBy *uint64    `json:"approved_by,omitempty"`
	JoinedAt   time.Time  `json:"joined_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Item Item `gorm:"foreignKey:ItemID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (p *Participant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now()
	}
	return nil
}
