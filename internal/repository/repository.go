package repository

import (
	"errors"

	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
)

var (
	// ErrStaleState is returned when a conditional write finds the entity's
	// status changed between the caller's read and the commit.
	ErrStaleState = errors.New("repository: entity state changed concurrently")
	// ErrEventFull is returned when an approval would push the approved
	// participant count past the item's cap.
	ErrEventFull = errors.New("repository: event is at capacity")
	// ErrAlreadyJoined is returned when an insert would leave two active
	// participant rows for the same (item, user) pair.
	ErrAlreadyJoined = errors.New("repository: user already joined this item")
)

// ItemFilter holds filtering options for listing items
type ItemFilter struct {
	Type     *models.ItemType
	Status   *models.ItemStatus
	AuthorID *uint64
	Page     int
	Limit    int
}

// ItemRepository defines the interface for item data access
type ItemRepository interface {
	// Create creates a new item
	Create(item *models.Item) error

	// FindByID finds an item by ID with optional preloading
	FindByID(id string, preload ...string) (*models.Item, error)

	// FindByThread resolves an external (chat, thread) pair to an item
	FindByThread(chatID, threadID int64) (*models.Item, error)

	// List retrieves items with filtering and pagination
	List(filter ItemFilter) ([]models.Item, int64, error)

	// ListActive returns all OPEN or IN_PROGRESS items, optionally by type
	ListActive(itemType *models.ItemType) ([]models.Item, error)

	// Update saves the full item record
	Update(item *models.Item) error

	// UpdateStatusIf transitions status only when the stored status matches
	// from; extra columns are applied atomically with the transition.
	// Returns ErrStaleState when the conditional write matches no row.
	UpdateStatusIf(id string, from, to models.ItemStatus, extra map[string]interface{}) error

	// SetThread records the external chat/thread identifiers
	SetThread(id string, chatID, threadID int64) error

	// Delete hard-deletes the item and cascades to all owned entities
	Delete(id string) error
}

// ResponseRepository defines the interface for task response data access
type ResponseRepository interface {
	// Upsert creates a response or overwrites the user's prior one for the
	// item, resetting it to PENDING. Returns the stored row.
	Upsert(response *models.Response) (*models.Response, error)

	// FindByID finds a response by ID
	FindByID(id string, preload ...string) (*models.Response, error)

	// ListByItem lists all responses for an item
	ListByItem(itemID string) ([]models.Response, error)

	// Accept accepts one response and, in the same transaction, rejects all
	// other pending responses, sets the item's executor, and moves the item
	// OPEN -> IN_PROGRESS. Fails with ErrStaleState if the item has already
	// left OPEN.
	Accept(itemID, responseID string, responderID uint64) error

	// Reject transitions a pending response to REJECTED
	Reject(responseID string) error
}

// ParticipantRepository defines the interface for event participant data access
type ParticipantRepository interface {
	// Create inserts a participant row. When the row is already APPROVED the
	// item's counter must have been claimed via CreateApproved instead.
	// Fails with ErrAlreadyJoined when the user holds an active row.
	Create(participant *models.Participant) error

	// CreateApproved inserts an APPROVED participant and increments the
	// item's participant counter in one transaction, re-checking capacity
	// and uniqueness at commit time. Fails with ErrEventFull when the cap is
	// reached and ErrAlreadyJoined when the user holds an active row.
	CreateApproved(participant *models.Participant) error

	// FindByID finds a participant by ID
	FindByID(id string, preload ...string) (*models.Participant, error)

	// FindActive returns the user's non-LEFT participant row for the item
	FindActive(itemID string, userID uint64) (*models.Participant, error)

	// ListByItem lists participants for an item, optionally filtered by status
	ListByItem(itemID string, status *models.ParticipantStatus) ([]models.Participant, error)

	// Approve transitions PENDING -> APPROVED, incrementing the item's
	// counter with a commit-time capacity re-check. Fails with ErrEventFull
	// when the cap is reached and ErrStaleState when the participant is no
	// longer pending.
	Approve(participantID string, approverID uint64) error

	// Reject transitions PENDING -> REJECTED
	Reject(participantID string, approverID uint64) error

	// MarkLeft transitions an active participant to LEFT, decrementing the
	// item's counter when the row was APPROVED.
	MarkLeft(participantID string) error
}

// MessageRepository defines the interface for chat message data access
type MessageRepository interface {
	// Create appends a message
	Create(message *models.Message) error

	// ListByItem lists an item's messages in chronological order
	ListByItem(itemID string) ([]models.Message, error)

	// FindByExternalID finds a mirrored message by its external identifier
	FindByExternalID(itemID string, externalID int64) (*models.Message, error)
}

// ReviewRepository defines the interface for review data access
type ReviewRepository interface {
	// Upsert creates or overwrites the (item, author, target) review
	Upsert(review *models.Review) (*models.Review, error)

	// ListByItem lists reviews for an item
	ListByItem(itemID string) ([]models.Review, error)

	// ListByTarget lists reviews targeting a user
	ListByTarget(targetID uint64) ([]models.Review, error)

	// AverageForTarget returns the mean rating over all reviews targeting
	// the user, and the review count
	AverageForTarget(targetID uint64) (float64, int64, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Upsert creates the user or refreshes profile fields on conflict,
	// leaving the reputation score untouched.
	Upsert(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// UpdateRating sets the user's reputation score
	UpdateRating(id uint64, rating float64) error
}
