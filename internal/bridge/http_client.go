package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPClient talks to the platform's bot API over plain HTTP. All item
// threads live as forum topics inside one configured group chat.
type HTTPClient struct {
	apiBase string
	token   string
	chatID  int64
	http    *http.Client
}

// NewHTTPClient builds a client against apiBase with a bounded per-call
// timeout.
func NewHTTPClient(apiBase, token string, chatID int64, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		apiBase: apiBase,
		token:   token,
		chatID:  chatID,
		http:    &http.Client{Timeout: timeout},
	}
}

type apiResponse struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
}

func (c *HTTPClient) call(ctx context.Context, method string, body interface{}, result interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("%s returned status %d", method, resp.StatusCode)
	}
	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

// CreateThread opens a forum topic named after the item.
func (c *HTTPClient) CreateThread(ctx context.Context, title string) (int64, int64, error) {
	var result struct {
		MessageThreadID int64 `json:"message_thread_id"`
	}
	err := c.call(ctx, "createForumTopic", map[string]interface{}{
		"chat_id": c.chatID,
		"name":    title,
	}, &result)
	if err != nil {
		return 0, 0, err
	}
	return c.chatID, result.MessageThreadID, nil
}

// SendMessage posts text into a thread.
func (c *HTTPClient) SendMessage(ctx context.Context, chatID, threadID int64, text string) (int64, error) {
	var result struct {
		MessageID int64 `json:"message_id"`
	}
	err := c.call(ctx, "sendMessage", map[string]interface{}{
		"chat_id":           chatID,
		"message_thread_id": threadID,
		"text":              text,
	}, &result)
	if err != nil {
		return 0, err
	}
	return result.MessageID, nil
}
