// Package bridge synchronizes item chat threads with an external
// Telegram-style messaging platform. Outbound calls are best-effort with a
// bounded timeout and never fail the triggering mutation; inbound webhook
// updates are parsed here and ingested by the bridge service.
package bridge

import "context"

// Client is the outbound contract against the external platform.
type Client interface {
	// CreateThread opens a discussion thread for an item and returns the
	// (chat, thread) identifier pair.
	CreateThread(ctx context.Context, title string) (chatID, threadID int64, err error)

	// SendMessage posts text into an existing thread and returns the
	// external message identifier.
	SendMessage(ctx context.Context, chatID, threadID int64, text string) (int64, error)
}

// Update is the platform's webhook envelope.
type Update struct {
	UpdateID int64            `json:"update_id"`
	Message  *IncomingMessage `json:"message"`
}

// IncomingMessage is a message event inside an Update.
type IncomingMessage struct {
	MessageID int64   `json:"message_id"`
	ThreadID  *int64  `json:"message_thread_id"`
	From      *Sender `json:"from"`
	Chat      Chat    `json:"chat"`
	Text      string  `json:"text"`
}

// Sender identifies the external author of a message.
type Sender struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// Chat identifies the external group chat.
type Chat struct {
	ID int64 `json:"id"`
}
