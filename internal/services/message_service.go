package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
	"github.com/SmaylovSerikbay/locals-sub000/internal/relay"
	"github.com/SmaylovSerikbay/locals-sub000/internal/repository"
	"github.com/SmaylovSerikbay/locals-sub000/pkg/logger"
	"gorm.io/gorm"
)

var ErrTextRequired = errors.New("message text is required")

// MessageService appends to and reads an item's chat thread. Messages are
// append-only; lifecycle notices are appended as system messages.
type MessageService struct {
	messageRepo repository.MessageRepository
	itemRepo    repository.ItemRepository
	userRepo    repository.UserRepository
	hub         *relay.Hub
	bridge      *BridgeService
}

// NewMessageService creates a new MessageService
func NewMessageService(
	messageRepo repository.MessageRepository,
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
	hub *relay.Hub,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		itemRepo:    itemRepo,
		userRepo:    userRepo,
		hub:         hub,
	}
}

// SetBridge wires the outbound bridge after construction (the bridge itself
// needs the message service for failure notices).
func (s *MessageService) SetBridge(bridge *BridgeService) {
	s.bridge = bridge
}

// Append adds a user message to the item's thread and mirrors it to the
// external thread when one exists.
func (s *MessageService) Append(ctx context.Context, itemID string, senderID uint64, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrTextRequired
	}

	item, err := s.itemRepo.FindByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}

	if _, err := s.userRepo.FindByID(senderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to verify sender: %w", err)
	}

	message := &models.Message{
		ItemID:   itemID,
		SenderID: senderID,
		Text:     text,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	s.publish(ctx, message)
	s.bridge.MirrorOutbound(item, message)
	return message, nil
}

// System appends a synthetic lifecycle notice to the item's thread. Failures
// are logged and swallowed: a missing notice never fails the transition that
// produced it.
func (s *MessageService) System(ctx context.Context, item *models.Item, text string) {
	message := &models.Message{
		ItemID:   item.ID,
		SenderID: item.AuthorID,
		Text:     text,
		IsSystem: true,
	}
	if err := s.messageRepo.Create(message); err != nil {
		logger.Warn(ctx, "Append system message failed", "error", err, "item_id", item.ID)
		return
	}
	s.publish(ctx, message)
}

// AppendMirrored stores a message ingested from the external platform,
// keeping the external id for dedup.
func (s *MessageService) AppendMirrored(ctx context.Context, itemID string, senderID uint64, text string, externalID int64) (*models.Message, error) {
	message := &models.Message{
		ItemID:     itemID,
		SenderID:   senderID,
		Text:       text,
		ExternalID: &externalID,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, fmt.Errorf("failed to save mirrored message: %w", err)
	}
	s.publish(ctx, message)
	return message, nil
}

// List returns the item's messages in chronological order
func (s *MessageService) List(itemID string) ([]models.Message, error) {
	if _, err := s.itemRepo.FindByID(itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}

	messages, err := s.messageRepo.ListByItem(itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

func (s *MessageService) publish(ctx context.Context, message *models.Message) {
	s.hub.Publish(ctx, relay.Event{
		Kind:     relay.KindMessage,
		Change:   relay.ChangeCreated,
		EntityID: message.ID,
		ItemID:   message.ItemID,
		Payload:  message,
	})
}
