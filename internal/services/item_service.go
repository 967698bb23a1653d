package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SmaylovSerikbay/locals-sub000/internal/authz"
	"github.com/SmaylovSerikbay/locals-sub000/internal/cache"
	"github.com/SmaylovSerikbay/locals-sub000/internal/geo"
	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
	"github.com/SmaylovSerikbay/locals-sub000/internal/relay"
	"github.com/SmaylovSerikbay/locals-sub000/internal/repository"
	"github.com/SmaylovSerikbay/locals-sub000/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrItemNotFound        = errors.New("item not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrResponseNotFound    = errors.New("response not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrTitleRequired       = errors.New("title is required")
	ErrInvalidItemType     = errors.New("item type must be TASK or EVENT")
	ErrWrongItemType       = errors.New("operation does not apply to this item type")
	ErrMissingCoordinates  = errors.New("latitude and longitude are required")
	ErrInvalidStatusValue  = errors.New("unsupported status value")
)

// ItemService is the item lifecycle engine: creation, responses, joins,
// acceptance, approval, completion, cancellation and deletion, with the
// cross-entity invariants enforced via the repositories' conditional writes.
type ItemService struct {
	itemRepo        repository.ItemRepository
	responseRepo    repository.ResponseRepository
	participantRepo repository.ParticipantRepository
	userRepo        repository.UserRepository
	messages        *MessageService
	cache           *cache.Cache
	hub             *relay.Hub
	bridge          *BridgeService
}

// NewItemService creates a new ItemService
func NewItemService(
	itemRepo repository.ItemRepository,
	responseRepo repository.ResponseRepository,
	participantRepo repository.ParticipantRepository,
	userRepo repository.UserRepository,
	messages *MessageService,
	itemCache *cache.Cache,
	hub *relay.Hub,
	bridge *BridgeService,
) *ItemService {
	return &ItemService{
		itemRepo:        itemRepo,
		responseRepo:    responseRepo,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		messages:        messages,
		cache:           itemCache,
		hub:             hub,
		bridge:          bridge,
	}
}

// CreateItemInput represents input for creating an item
type CreateItemInput struct {
	Type             models.ItemType
	Title            string
	Description      string
	Price            *float64
	Currency         string
	EventDate        *time.Time
	MaxParticipants  int
	RequiresApproval bool
	Latitude         *float64
	Longitude        *float64
	AuthorID         uint64
}

// UpdateItemInput represents the allow-listed patchable fields
type UpdateItemInput struct {
	Title       *string
	Description *string
	Price       *float64
	Currency    *string
	EventDate   *time.Time
	Latitude    *float64
	Longitude   *float64
}

// ListItems returns items with filtering and pagination
func (s *ItemService) ListItems(filter repository.ItemFilter) ([]models.Item, int64, error) {
	items, total, err := s.itemRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list items: %w", err)
	}
	return items, total, nil
}

// Nearby returns OPEN and IN_PROGRESS items within radius meters of the
// point, sorted ascending by haversine distance. The active-item projection
// is served from cache when warm.
func (s *ItemService) Nearby(ctx context.Context, lat, lng, radius float64, itemType *models.ItemType) ([]geo.ItemWithDistance, error) {
	items, ok := s.cache.GetActiveItems(ctx, itemType)
	if !ok {
		var err error
		items, err = s.itemRepo.ListActive(itemType)
		if err != nil {
			return nil, fmt.Errorf("failed to load active items: %w", err)
		}
		s.cache.SetActiveItems(ctx, itemType, items)
	}

	return geo.Nearby(items, lat, lng, radius), nil
}

// GetItem returns an item with nested responses and reviews
func (s *ItemService) GetItem(id string) (*models.Item, error) {
	item, err := s.itemRepo.FindByID(id,
		"Author", "Executor", "Responses", "Responses.User", "Reviews", "Reviews.Author")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	return item, nil
}

// CreateItem creates a new item in OPEN and fires the best-effort external
// thread creation.
func (s *ItemService) CreateItem(ctx context.Context, input CreateItemInput) (*models.Item, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if !input.Type.Valid() {
		return nil, ErrInvalidItemType
	}
	// Pointers distinguish an omitted coordinate from a legitimate zero
	// on the equator or the prime meridian.
	if input.Latitude == nil || input.Longitude == nil {
		return nil, ErrMissingCoordinates
	}

	if _, err := s.userRepo.FindByID(input.AuthorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to verify author: %w", err)
	}

	item := &models.Item{
		Type:        input.Type,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Latitude:    *input.Latitude,
		Longitude:   *input.Longitude,
		Status:      models.ItemStatusOpen,
		AuthorID:    input.AuthorID,
	}

	// Type-specific fields: price/currency only carry meaning for tasks,
	// event date, cap and approval flag only for events.
	switch input.Type {
	case models.ItemTypeTask:
		item.Price = input.Price
		item.Currency = input.Currency
	case models.ItemTypeEvent:
		item.EventDate = input.EventDate
		item.MaxParticipants = input.MaxParticipants
		item.RequiresApproval = input.RequiresApproval
	}

	if err := s.itemRepo.Create(item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.publishItem(ctx, relay.ChangeCreated, item)
	s.bridge.EnsureThread(item)

	return s.itemRepo.FindByID(item.ID, "Author")
}

// UpdateItem patches allow-listed fields; type, status and author are not
// patchable through this path.
func (s *ItemService) UpdateItem(ctx context.Context, id string, actorID uint64, input UpdateItemInput) (*models.Item, error) {
	item, err := s.findItem(id)
	if err != nil {
		return nil, err
	}

	if err := authz.CanUpdateItem(*item, actorID); err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleRequired
		}
		item.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.Latitude != nil {
		item.Latitude = *input.Latitude
	}
	if input.Longitude != nil {
		item.Longitude = *input.Longitude
	}
	if item.Type == models.ItemTypeTask {
		if input.Price != nil {
			item.Price = input.Price
		}
		if input.Currency != nil {
			item.Currency = *input.Currency
		}
	}
	if item.Type == models.ItemTypeEvent && input.EventDate != nil {
		item.EventDate = input.EventDate
	}

	if err := s.itemRepo.Update(item); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	s.publishItem(ctx, relay.ChangeUpdated, item)
	return s.itemRepo.FindByID(item.ID, "Author")
}

// CompleteItem transitions the item to COMPLETED. Tasks complete only from
// IN_PROGRESS; events may also complete straight from OPEN. The transition
// is a conditional write against the freshly read status, so a concurrent
// transition loses with a conflict.
func (s *ItemService) CompleteItem(ctx context.Context, id string, actorID uint64) (*models.Item, error) {
	item, err := s.findItem(id)
	if err != nil {
		return nil, err
	}

	if err := authz.CanCompleteItem(*item, actorID); err != nil {
		return nil, err
	}

	if err := s.itemRepo.UpdateStatusIf(id, item.Status, models.ItemStatusCompleted, nil); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, authz.ErrConflict
		}
		return nil, fmt.Errorf("failed to complete item: %w", err)
	}

	s.messages.System(ctx, item, "Marked as completed")

	updated, err := s.itemRepo.FindByID(id, "Author", "Executor")
	if err != nil {
		return nil, fmt.Errorf("failed to reload item: %w", err)
	}
	s.publishItem(ctx, relay.ChangeUpdated, updated)
	return updated, nil
}

// CancelItem transitions the item to CANCELLED (terminal). Pending responses
// and participants are left as they are; the terminal parent makes them moot.
func (s *ItemService) CancelItem(ctx context.Context, id string, actorID uint64) (*models.Item, error) {
	item, err := s.findItem(id)
	if err != nil {
		return nil, err
	}

	if err := authz.CanCancelItem(*item, actorID); err != nil {
		return nil, err
	}

	if err := s.itemRepo.UpdateStatusIf(id, item.Status, models.ItemStatusCancelled, nil); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, authz.ErrConflict
		}
		return nil, fmt.Errorf("failed to cancel item: %w", err)
	}

	s.messages.System(ctx, item, "Cancelled by the author")

	updated, err := s.itemRepo.FindByID(id, "Author")
	if err != nil {
		return nil, fmt.Errorf("failed to reload item: %w", err)
	}
	s.publishItem(ctx, relay.ChangeUpdated, updated)
	return updated, nil
}

// DeleteItem hard-deletes the item and everything it owns
func (s *ItemService) DeleteItem(ctx context.Context, id string, actorID uint64) error {
	item, err := s.findItem(id)
	if err != nil {
		return err
	}

	if err := authz.CanDeleteItem(*item, actorID); err != nil {
		return err
	}

	if err := s.itemRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	s.hub.Publish(ctx, relay.Event{
		Kind:     relay.KindItem,
		Change:   relay.ChangeDeleted,
		EntityID: id,
		ItemID:   id,
	})
	return nil
}

// Respond submits or re-submits a task response. One row per (item, user);
// re-submission overwrites.
func (s *ItemService) Respond(ctx context.Context, itemID string, userID uint64, message string) (*models.Response, error) {
	item, err := s.findItem(itemID)
	if err != nil {
		return nil, err
	}
	if item.Type != models.ItemTypeTask {
		return nil, ErrWrongItemType
	}

	if err := authz.CanCreateResponse(*item, userID); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to verify user: %w", err)
	}

	response, err := s.responseRepo.Upsert(&models.Response{
		ItemID:  itemID,
		UserID:  userID,
		Message: message,
		Status:  models.ResponseStatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save response: %w", err)
	}

	s.hub.Publish(ctx, relay.Event{
		Kind:     relay.KindResponse,
		Change:   relay.ChangeCreated,
		EntityID: response.ID,
		ItemID:   itemID,
		Payload:  response,
	})
	return response, nil
}

// ListResponses lists all responses for an item
func (s *ItemService) ListResponses(itemID string) ([]models.Response, error) {
	responses, err := s.responseRepo.ListByItem(itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	return responses, nil
}

// UpdateResponse accepts or rejects a pending response. Accept atomically
// rejects every other pending response, sets the executor and moves the item
// to IN_PROGRESS; a second accept racing on the same item fails with a
// conflict.
func (s *ItemService) UpdateResponse(ctx context.Context, responseID string, actorID uint64, status models.ResponseStatus) (*models.Response, error) {
	response, err := s.responseRepo.FindByID(responseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResponseNotFound
		}
		return nil, fmt.Errorf("failed to find response: %w", err)
	}

	item, err := s.findItem(response.ItemID)
	if err != nil {
		return nil, err
	}

	if err := authz.CanActOnResponse(*item, *response, actorID); err != nil {
		return nil, err
	}

	switch status {
	case models.ResponseStatusAccepted:
		if err := s.responseRepo.Accept(item.ID, responseID, response.UserID); err != nil {
			if errors.Is(err, repository.ErrStaleState) {
				return nil, authz.ErrConflict
			}
			return nil, fmt.Errorf("failed to accept response: %w", err)
		}
		s.messages.System(ctx, item, "Response accepted, work started")
	case models.ResponseStatusRejected:
		if err := s.responseRepo.Reject(responseID); err != nil {
			if errors.Is(err, repository.ErrStaleState) {
				return nil, authz.ErrConflict
			}
			return nil, fmt.Errorf("failed to reject response: %w", err)
		}
	default:
		return nil, ErrInvalidStatusValue
	}

	updated, err := s.responseRepo.FindByID(responseID, "User")
	if err != nil {
		return nil, fmt.Errorf("failed to reload response: %w", err)
	}

	s.hub.Publish(ctx, relay.Event{
		Kind:     relay.KindResponse,
		Change:   relay.ChangeUpdated,
		EntityID: responseID,
		ItemID:   item.ID,
		Payload:  updated,
	})
	s.publishItemByID(ctx, item.ID)
	return updated, nil
}

// JoinEvent creates a participant for an event item. Without the approval
// flag the join lands directly in APPROVED, claiming a capacity slot
// atomically; with the flag it waits in PENDING.
func (s *ItemService) JoinEvent(ctx context.Context, itemID string, userID uint64) (*models.Participant, error) {
	item, err := s.findItem(itemID)
	if err != nil {
		return nil, err
	}
	if item.Type != models.ItemTypeEvent {
		return nil, ErrWrongItemType
	}

	var existing *models.Participant
	if p, err := s.participantRepo.FindActive(itemID, userID); err == nil {
		existing = p
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing participant: %w", err)
	}

	wouldApprove := !item.RequiresApproval
	if err := authz.CanCreateParticipant(*item, userID, existing, wouldApprove); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to verify user: %w", err)
	}

	participant := &models.Participant{
		ItemID: itemID,
		UserID: userID,
		Status: models.ParticipantStatusPending,
	}

	if wouldApprove {
		now := time.Now()
		participant.Status = models.ParticipantStatusApproved
		participant.ApprovedAt = &now
		participant.ApprovedBy = &item.AuthorID
		if err := s.participantRepo.CreateApproved(participant); err != nil {
			if errors.Is(err, repository.ErrEventFull) {
				return nil, authz.ErrCapacityExceeded
			}
			if errors.Is(err, repository.ErrAlreadyJoined) || errors.Is(err, repository.ErrStaleState) {
				return nil, authz.ErrConflict
			}
			return nil, fmt.Errorf("failed to join event: %w", err)
		}
	} else {
		if err := s.participantRepo.Create(participant); err != nil {
			if errors.Is(err, repository.ErrAlreadyJoined) {
				return nil, authz.ErrConflict
			}
			return nil, fmt.Errorf("failed to join event: %w", err)
		}
	}

	s.hub.Publish(ctx, relay.Event{
		Kind:     relay.KindParticipant,
		Change:   relay.ChangeCreated,
		EntityID: participant.ID,
		ItemID:   itemID,
		Payload:  participant,
	})
	s.publishItemByID(ctx, itemID)
	return participant, nil
}

// ListParticipants lists an item's participants, optionally by status
func (s *ItemService) ListParticipants(itemID string, status *models.ParticipantStatus) ([]models.Participant, error) {
	participants, err := s.participantRepo.ListByItem(itemID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participants, nil
}

// UpdateParticipant approves or rejects a pending join request. Approval
// re-checks capacity at commit time; of two racing approvals only one can
// claim the last slot.
func (s *ItemService) UpdateParticipant(ctx context.Context, participantID string, actorID uint64, status models.ParticipantStatus) (*models.Participant, error) {
	participant, err := s.participantRepo.FindByID(participantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}

	item, err := s.findItem(participant.ItemID)
	if err != nil {
		return nil, err
	}

	if err := authz.CanActOnParticipant(*item, *participant, actorID); err != nil {
		return nil, err
	}

	switch status {
	case models.ParticipantStatusApproved:
		if err := s.participantRepo.Approve(participantID, actorID); err != nil {
			if errors.Is(err, repository.ErrEventFull) {
				return nil, authz.ErrCapacityExceeded
			}
			if errors.Is(err, repository.ErrStaleState) {
				return nil, authz.ErrConflict
			}
			return nil, fmt.Errorf("failed to approve participant: %w", err)
		}
	case models.ParticipantStatusRejected:
		if err := s.participantRepo.Reject(participantID, actorID); err != nil {
			if errors.Is(err, repository.ErrStaleState) {
				return nil, authz.ErrConflict
			}
			return nil, fmt.Errorf("failed to reject participant: %w", err)
		}
	default:
		return nil, ErrInvalidStatusValue
	}

	updated, err := s.participantRepo.FindByID(participantID, "User")
	if err != nil {
		return nil, fmt.Errorf("failed to reload participant: %w", err)
	}

	s.hub.Publish(ctx, relay.Event{
		Kind:     relay.KindParticipant,
		Change:   relay.ChangeUpdated,
		EntityID: participantID,
		ItemID:   item.ID,
		Payload:  updated,
	})
	s.publishItemByID(ctx, item.ID)
	return updated, nil
}

// RemoveParticipant transitions an active participant to LEFT: the
// participant leaves, or the author kicks.
func (s *ItemService) RemoveParticipant(ctx context.Context, itemID, participantID string, actorID uint64) error {
	participant, err := s.participantRepo.FindByID(participantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrParticipantNotFound
		}
		return fmt.Errorf("failed to find participant: %w", err)
	}
	if participant.ItemID != itemID {
		return ErrParticipantNotFound
	}

	item, err := s.findItem(itemID)
	if err != nil {
		return err
	}

	if err := authz.CanRemoveParticipant(*item, *participant, actorID); err != nil {
		return err
	}

	if err := s.participantRepo.MarkLeft(participantID); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return authz.ErrConflict
		}
		return fmt.Errorf("failed to remove participant: %w", err)
	}

	s.hub.Publish(ctx, relay.Event{
		Kind:     relay.KindParticipant,
		Change:   relay.ChangeUpdated,
		EntityID: participantID,
		ItemID:   itemID,
	})
	s.publishItemByID(ctx, itemID)
	return nil
}

// findItem does the fresh read every transition starts from
func (s *ItemService) findItem(id string) (*models.Item, error) {
	item, err := s.itemRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	return item, nil
}

func (s *ItemService) publishItem(ctx context.Context, change relay.ChangeKind, item *models.Item) {
	s.hub.Publish(ctx, relay.Event{
		Kind:     relay.KindItem,
		Change:   change,
		EntityID: item.ID,
		ItemID:   item.ID,
		Payload:  item,
	})
}

func (s *ItemService) publishItemByID(ctx context.Context, id string) {
	item, err := s.itemRepo.FindByID(id)
	if err != nil {
		logger.Debug(ctx, "Reload item for relay event failed", "error", err, "item_id", id)
		return
	}
	s.publishItem(ctx, relay.ChangeUpdated, item)
}
