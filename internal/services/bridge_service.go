package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SmaylovSerikbay/locals-sub000/internal/bridge"
	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
	"github.com/SmaylovSerikbay/locals-sub000/internal/repository"
	"github.com/SmaylovSerikbay/locals-sub000/pkg/logger"
	"gorm.io/gorm"
)

// BridgeService synchronizes item chat threads with the external messaging
// platform. Outbound calls run in their own goroutine with a bounded
// timeout and never affect the triggering mutation; inbound webhook updates
// are ingested idempotently.
type BridgeService struct {
	client   bridge.Client
	itemRepo repository.ItemRepository
	userRepo repository.UserRepository
	messages *MessageService
	timeout  time.Duration
}

// NewBridgeService creates a new BridgeService. client may be nil, which
// disables the outbound side entirely.
func NewBridgeService(
	client bridge.Client,
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
	messages *MessageService,
	timeout time.Duration,
) *BridgeService {
	return &BridgeService{
		client:   client,
		itemRepo: itemRepo,
		userRepo: userRepo,
		messages: messages,
		timeout:  timeout,
	}
}

// EnsureThread requests an external discussion thread for the item,
// fire-and-forget. On failure a system message is appended to the item's
// log instead of failing anything.
func (s *BridgeService) EnsureThread(item *models.Item) {
	if s == nil || s.client == nil || item.ExternalThreadID != nil {
		return
	}

	itemID := item.ID
	title := item.Title
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		chatID, threadID, err := s.client.CreateThread(ctx, title)
		if err != nil {
			logger.Warn(ctx, "External thread creation failed", "error", err, "item_id", itemID)
			s.noteFailure(ctx, itemID)
			return
		}
		if err := s.itemRepo.SetThread(itemID, chatID, threadID); err != nil {
			logger.Error(ctx, "Persist external thread failed", "error", err, "item_id", itemID)
			return
		}
		logger.Info(ctx, "External thread created", "item_id", itemID, "thread_id", threadID)
	}()
}

// MirrorOutbound forwards a local message into the item's external thread,
// fire-and-forget. Messages that came from the platform are not echoed back.
func (s *BridgeService) MirrorOutbound(item *models.Item, message *models.Message) {
	if s == nil || s.client == nil || message.ExternalID != nil {
		return
	}
	if item.ExternalChatID == nil || item.ExternalThreadID == nil {
		return
	}

	chatID, threadID := *item.ExternalChatID, *item.ExternalThreadID
	text := message.Text
	senderID := message.SenderID
	isSystem := message.IsSystem
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		// Prefix user messages with the sender's name so the external
		// thread stays readable; system notices go out as-is.
		if !isSystem {
			if sender, err := s.userRepo.FindByID(senderID); err == nil {
				text = sender.DisplayName() + ": " + text
			}
		}

		if _, err := s.client.SendMessage(ctx, chatID, threadID, text); err != nil {
			logger.Warn(ctx, "Mirror message to external thread failed", "error", err, "item_id", item.ID)
		}
	}()
}

// HandleUpdate ingests one webhook update. Every drop is silent: events
// without a thread, from bots, for unknown threads, or duplicating an
// already-mirrored external message id all resolve to nil.
func (s *BridgeService) HandleUpdate(ctx context.Context, update bridge.Update) error {
	msg := update.Message
	if msg == nil || msg.ThreadID == nil || msg.Text == "" {
		return nil
	}
	if msg.From == nil || msg.From.IsBot || msg.From.ID <= 0 {
		return nil
	}

	item, err := s.itemRepo.FindByThread(msg.Chat.ID, *msg.ThreadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Debug(ctx, "Webhook update for unknown thread dropped", "thread_id", *msg.ThreadID)
			return nil
		}
		return fmt.Errorf("failed to resolve thread: %w", err)
	}

	if _, err := s.messages.messageRepo.FindByExternalID(item.ID, msg.MessageID); err == nil {
		// Duplicate delivery of the same external message.
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check external message: %w", err)
	}

	sender := &models.User{
		ID:        uint64(msg.From.ID),
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
		Username:  msg.From.Username,
	}
	if err := s.userRepo.Upsert(sender); err != nil {
		return fmt.Errorf("failed to upsert external sender: %w", err)
	}

	if _, err := s.messages.AppendMirrored(ctx, item.ID, sender.ID, msg.Text, msg.MessageID); err != nil {
		return err
	}
	return nil
}

// noteFailure records the unavailable external thread in the item's log.
func (s *BridgeService) noteFailure(ctx context.Context, itemID string) {
	item, err := s.itemRepo.FindByID(itemID)
	if err != nil {
		return
	}
	s.messages.System(ctx, item, "External chat thread unavailable")
}
