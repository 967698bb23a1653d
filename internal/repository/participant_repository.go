package repository

import (
	"errors"
	"time"

	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
	"gorm.io/gorm"
)

// GormParticipantRepository is a GORM implementation of ParticipantRepository
type GormParticipantRepository struct {
	db *gorm.DB
}

// NewParticipantRepository creates a new ParticipantRepository
func NewParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &GormParticipantRepository{db: db}
}

// Create inserts a participant row with a commit-time duplicate check
func (r *GormParticipantRepository) Create(participant *models.Participant) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return insertActive(tx, participant)
	})
}

// CreateApproved inserts an APPROVED participant and claims a slot on the
// item's counter in the same transaction. The capacity condition sits in the
// UPDATE itself, so two concurrent joins cannot both claim the last slot.
func (r *GormParticipantRepository) CreateApproved(participant *models.Participant) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := insertActive(tx, participant); err != nil {
			return err
		}
		return claimSlot(tx, participant.ItemID)
	})
}

// FindByID finds a participant by ID
func (r *GormParticipantRepository) FindByID(id string, preload ...string) (*models.Participant, error) {
	var participant models.Participant
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&participant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}

// FindActive returns the user's non-LEFT participant row for the item
func (r *GormParticipantRepository) FindActive(itemID string, userID uint64) (*models.Participant, error) {
	var participant models.Participant
	if err := r.db.Where("item_id = ? AND user_id = ? AND status <> ?",
		itemID, userID, models.ParticipantStatusLeft).
		First(&participant).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}

// ListByItem lists participants for an item, optionally filtered by status
func (r *GormParticipantRepository) ListByItem(itemID string, status *models.ParticipantStatus) ([]models.Participant, error) {
	var participants []models.Participant
	query := r.db.Preload("User").Where("item_id = ?", itemID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if err := query.Order("created_at ASC").Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

// Approve transitions PENDING -> APPROVED with a commit-time capacity
// re-check. Two pending approvals both reading "not full" cannot both
// commit: the second increment matches no row and the loser gets
// ErrEventFull.
func (r *GormParticipantRepository) Approve(participantID string, approverID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var participant models.Participant
		if err := tx.First(&participant, "id = ?", participantID).Error; err != nil {
			return err
		}
		if participant.Status != models.ParticipantStatusPending {
			return ErrStaleState
		}

		if err := claimSlot(tx, participant.ItemID); err != nil {
			return err
		}

		now := time.Now()
		res := tx.Model(&models.Participant{}).
			Where("id = ? AND status = ?", participantID, models.ParticipantStatusPending).
			Updates(map[string]interface{}{
				"status":      models.ParticipantStatusApproved,
				"approved_at": now,
				"approved_by": approverID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleState
		}
		return nil
	})
}

// Reject transitions PENDING -> REJECTED
func (r *GormParticipantRepository) Reject(participantID string, approverID uint64) error {
	now := time.Now()
	res := r.db.Model(&models.Participant{}).
		Where("id = ? AND status = ?", participantID, models.ParticipantStatusPending).
		Updates(map[string]interface{}{
			"status":      models.ParticipantStatusRejected,
			"approved_at": now,
			"approved_by": approverID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// MarkLeft transitions an active participant to LEFT, releasing the item's
// slot when the row was APPROVED.
func (r *GormParticipantRepository) MarkLeft(participantID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var participant models.Participant
		if err := tx.First(&participant, "id = ?", participantID).Error; err != nil {
			return err
		}
		if !participant.Status.Active() {
			return ErrStaleState
		}

		res := tx.Model(&models.Participant{}).
			Where("id = ? AND status = ?", participantID, participant.Status).
			Update("status", models.ParticipantStatusLeft)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleState
		}

		if participant.Status == models.ParticipantStatusApproved {
			return tx.Model(&models.Item{}).
				Where("id = ? AND current_participants > 0", participant.ItemID).
				UpdateColumn("current_participants", gorm.Expr("current_participants - 1")).Error
		}
		return nil
	})
}

// insertActive inserts a participant row after re-checking, inside the
// caller's transaction, that the user holds no active row for the item.
// The partial unique index over non-LEFT rows backs the check at commit
// time, so a racing duplicate that slips past the read still fails the
// insert. Both paths surface as ErrAlreadyJoined.
func insertActive(tx *gorm.DB, participant *models.Participant) error {
	var count int64
	if err := tx.Model(&models.Participant{}).
		Where("item_id = ? AND user_id = ? AND status <> ?",
			participant.ItemID, participant.UserID, models.ParticipantStatusLeft).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyJoined
	}
	if err := tx.Create(participant).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyJoined
		}
		return err
	}
	return nil
}

// claimSlot increments the item's approved-participant counter, enforcing
// the cap and the item's non-terminal status inside the UPDATE condition.
func claimSlot(tx *gorm.DB, itemID string) error {
	var item models.Item
	if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
		return err
	}
	if item.Status.Terminal() {
		return ErrStaleState
	}

	res := tx.Model(&models.Item{}).
		Where("id = ? AND status IN ? AND (max_participants = 0 OR current_participants < max_participants)",
			itemID,
			[]models.ItemStatus{models.ItemStatusOpen, models.ItemStatusInProgress}).
		UpdateColumn("current_participants", gorm.Expr("current_participants + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEventFull
	}
	return nil
}
