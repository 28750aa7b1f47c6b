// Package telegram provides a minimal Bot API client for posting to a group chat.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

var ErrNotConfigured = errors.New("telegram bot not configured")

// Client represents a Telegram client used to send notifications.
type Client struct {
	token   string
	baseURL string
	client  *http.Client
}

// NewClient creates a new Telegram Client instance with the given bot token.
func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURL points the client at a different Bot API host.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

// SendMessage posts text to chatID using Markdown formatting and returns the
// Telegram message id.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) (string, error) {
	if c.token == "" || chatID == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "Markdown",
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	var out sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("telegram API error: %s", resp.Status)
	}
	if resp.StatusCode != http.StatusOK || !out.OK {
		return "", fmt.Errorf("telegram API error: %s: %s", resp.Status, out.Description)
	}

	return strconv.FormatInt(out.Result.MessageID, 10), nil
}
