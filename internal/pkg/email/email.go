// Package email holds the provider implementations behind the email channel.
package email

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("email provider not configured")

// Message is a single HTML email addressed to one recipient.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers one message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (messageID string, err error)
}
