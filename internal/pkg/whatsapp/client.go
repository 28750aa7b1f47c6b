// Package whatsapp is a thin client for an HTTP WhatsApp gateway that exposes
// a bulk-send endpoint.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrNotConfigured = errors.New("whatsapp gateway not configured")

type Config struct {
	BaseURL string
	APIKey  string
	Sender  string
}

type Client struct {
	cfg    Config
	client *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: 20 * time.Second},
	}
}

type bulkMessage struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

type bulkSendRequest struct {
	Sender   string        `json:"sender,omitempty"`
	Messages []bulkMessage `json:"messages"`
}

type bulkSendResult struct {
	To        string `json:"to"`
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Error     string `json:"error"`
}

type bulkSendResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Results []bulkSendResult `json:"results"`
}

// Send posts a single-recipient batch to the gateway and returns the
// gateway's message id.
func (c *Client) Send(ctx context.Context, phone, text string) (string, error) {
	if c.cfg.BaseURL == "" {
		return "", ErrNotConfigured
	}

	to := NormalizePhone(phone)
	if to == "" {
		return "", fmt.Errorf("invalid phone number %q", phone)
	}

	body, err := json.Marshal(bulkSendRequest{
		Sender:   c.cfg.Sender,
		Messages: []bulkMessage{{To: to, Text: text}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/messages/bulk"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("gateway error: %s: %s", resp.Status, bytes.TrimSpace(raw))
	}

	var out bulkSendResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if !out.Success {
		return "", fmt.Errorf("gateway rejected message: %s", out.Message)
	}
	for _, r := range out.Results {
		if r.Error != "" {
			return "", fmt.Errorf("gateway rejected %s: %s", r.To, r.Error)
		}
		if r.MessageID != "" {
			return r.MessageID, nil
		}
	}
	return "", nil
}

// NormalizePhone keeps digits and a leading '+'.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "+" {
		return ""
	}
	return out
}
