// Package authz holds the authorization predicates for item lifecycle
// operations. Every predicate is a pure function over already-loaded
// entities: no persistence, no side effects. Callers check the returned
// error before mutating anything.
package authz

import (
	"errors"

	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
)

var (
	// ErrForbidden means the actor is not allowed to perform the action.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict means the action duplicates existing state.
	ErrConflict = errors.New("conflict")
	// ErrCapacityExceeded means the event's approved-participant cap is reached.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrInvalidState means the item's status does not allow the action.
	ErrInvalidState = errors.New("invalid state")
)

// CanCreateResponse decides whether user may respond to a task item.
// Authors cannot respond to their own items, and closed items take no
// further responses.
func CanCreateResponse(item models.Item, userID uint64) error {
	if item.AuthorID == userID {
		return ErrForbidden
	}
	if item.Status.Terminal() {
		return ErrInvalidState
	}
	return nil
}

// CanCreateParticipant decides whether user may join an event item.
// existing is the user's active participant row if one exists (nil otherwise).
// wouldApprove is true when the join would land directly in APPROVED, which
// makes the capacity cap apply immediately.
func CanCreateParticipant(item models.Item, userID uint64, existing *models.Participant, wouldApprove bool) error {
	if item.AuthorID == userID {
		return ErrForbidden
	}
	if item.Status.Terminal() {
		return ErrInvalidState
	}
	if existing != nil && existing.Status.Active() {
		return ErrConflict
	}
	if wouldApprove && item.AtCapacity() {
		return ErrCapacityExceeded
	}
	return nil
}

// CanActOnResponse decides whether actor may accept or reject a response.
// Only the item's author may transition a pending response.
func CanActOnResponse(item models.Item, response models.Response, actorID uint64) error {
	if item.AuthorID != actorID {
		return ErrForbidden
	}
	if response.Status != models.ResponseStatusPending {
		return ErrConflict
	}
	return nil
}

// CanActOnParticipant decides whether actor may approve or reject a join
// request. Only the item's author may transition a pending participant.
func CanActOnParticipant(item models.Item, participant models.Participant, actorID uint64) error {
	if item.AuthorID != actorID {
		return ErrForbidden
	}
	if participant.Status != models.ParticipantStatusPending {
		return ErrConflict
	}
	return nil
}

// CanRemoveParticipant decides whether actor may transition a participant to
// LEFT: the participant themself (leave) or the item's author (kick).
func CanRemoveParticipant(item models.Item, participant models.Participant, actorID uint64) error {
	if actorID != participant.UserID && actorID != item.AuthorID {
		return ErrForbidden
	}
	if !participant.Status.Active() {
		return ErrConflict
	}
	return nil
}

// CanCompleteItem decides whether actor may mark the item completed.
// Tasks complete only from IN_PROGRESS; events carry no executor acceptance
// step and may complete straight from OPEN as well.
func CanCompleteItem(item models.Item, actorID uint64) error {
	if item.AuthorID != actorID {
		return ErrForbidden
	}
	switch item.Type {
	case models.ItemTypeEvent:
		if item.Status != models.ItemStatusOpen && item.Status != models.ItemStatusInProgress {
			return ErrInvalidState
		}
	default:
		if item.Status != models.ItemStatusInProgress {
			return ErrInvalidState
		}
	}
	return nil
}

// CanCancelItem decides whether actor may cancel the item. Cancellation is
// reachable from OPEN or IN_PROGRESS only and is terminal.
func CanCancelItem(item models.Item, actorID uint64) error {
	if item.AuthorID != actorID {
		return ErrForbidden
	}
	if item.Status.Terminal() {
		return ErrInvalidState
	}
	return nil
}

// CanDeleteItem decides whether actor may hard-delete the item.
func CanDeleteItem(item models.Item, actorID uint64) error {
	if item.AuthorID != actorID {
		return ErrForbidden
	}
	return nil
}

// CanUpdateItem decides whether actor may patch the item's fields.
func CanUpdateItem(item models.Item, actorID uint64) error {
	if item.AuthorID != actorID {
		return ErrForbidden
	}
	return nil
}

// CanReview decides whether actor may review target for the item. Reviews
// are only open on completed items, and only between the item's author and
// its executor, in either direction.
func CanReview(item models.Item, actorID, targetID uint64) error {
	if item.Status != models.ItemStatusCompleted {
		return ErrInvalidState
	}
	if actorID == targetID {
		return ErrForbidden
	}

	executorID := uint64(0)
	if item.ExecutorID != nil {
		executorID = *item.ExecutorID
	}

	switch actorID {
	case item.AuthorID:
		if targetID != executorID {
			return ErrForbidden
		}
	case executorID:
		if targetID != item.AuthorID {
			return ErrForbidden
		}
	default:
		return ErrForbidden
	}
	return nil
}
