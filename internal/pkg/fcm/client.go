// Package fcm sends push notifications to device tokens through Firebase
// Cloud Messaging.
package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
)

// maxTokensPerBatch is the FCM multicast limit.
const maxTokensPerBatch = 500

// Messenger is the subset of *messaging.Client used here.
type Messenger interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

type Client struct {
	messenger Messenger
}

func NewClient(ctx context.Context, app *firebase.App) (*Client, error) {
	m, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}
	return &Client{messenger: m}, nil
}

func NewClientWithMessenger(m Messenger) *Client {
	return &Client{messenger: m}
}

type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

// Result summarises a multicast. MessageIDs is keyed by token. Unregistered
// lists tokens FCM reported as no longer valid.
type Result struct {
	Sent         int
	MessageIDs   map[string]string
	Failed       map[string]error
	Unregistered []string
}

// Send delivers n to every token, batching at the multicast limit. A batch
// transport error marks every token in that batch as failed.
func (c *Client) Send(ctx context.Context, tokens []string, n Notification) Result {
	res := Result{MessageIDs: make(map[string]string), Failed: make(map[string]error)}

	for start := 0; start < len(tokens); start += maxTokensPerBatch {
		end := min(start+maxTokensPerBatch, len(tokens))
		batch := tokens[start:end]

		br, err := c.messenger.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens: batch,
			Notification: &messaging.Notification{
				Title: n.Title,
				Body:  n.Body,
			},
			Data: n.Data,
		})
		if err != nil {
			for _, t := range batch {
				res.Failed[t] = err
			}
			continue
		}

		for i, r := range br.Responses {
			if i >= len(batch) {
				break
			}
			if r.Success {
				res.Sent++
				res.MessageIDs[batch[i]] = r.MessageID
				continue
			}
			res.Failed[batch[i]] = r.Error
			if messaging.IsUnregistered(r.Error) {
				res.Unregistered = append(res.Unregistered, batch[i])
			}
		}
	}

	return res
}
