package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2/clientcredentials"
)

const (
	graphBaseURL = "https://graph.microsoft.com/v1.0"
	graphScope   = "https://graph.microsoft.com/.default"
)

// GraphConfig describes an app registration allowed to send as SenderUser.
type GraphConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	SenderUser   string

	// Overrides for tests; empty means the public Microsoft endpoints.
	TokenURL string
	BaseURL  string
}

type graphSender struct {
	cfg        GraphConfig
	httpClient *http.Client
}

// NewGraphSender sends through Microsoft Graph sendMail using the client
// credentials grant.
func NewGraphSender(ctx context.Context, cfg GraphConfig) Sender {
	if cfg.TokenURL == "" {
		cfg.TokenURL = fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", url.PathEscape(cfg.TenantID))
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = graphBaseURL
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       []string{graphScope},
	}

	return &graphSender{
		cfg:        cfg,
		httpClient: cc.Client(ctx),
	}
}

type graphEmailAddress struct {
	Address string `json:"address"`
}

type graphRecipient struct {
	EmailAddress graphEmailAddress `json:"emailAddress"`
}

type graphBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type graphMessage struct {
	Subject      string           `json:"subject"`
	Body         graphBody        `json:"body"`
	ToRecipients []graphRecipient `json:"toRecipients"`
}

type sendMailRequest struct {
	Message         graphMessage `json:"message"`
	SaveToSentItems bool         `json:"saveToSentItems"`
}

func (g *graphSender) Send(ctx context.Context, msg Message) (string, error) {
	if g.cfg.ClientID == "" || g.cfg.SenderUser == "" {
		return "", ErrNotConfigured
	}

	payload, err := json.Marshal(sendMailRequest{
		Message: graphMessage{
			Subject:      msg.Subject,
			Body:         graphBody{ContentType: "HTML", Content: msg.HTML},
			ToRecipients: []graphRecipient{{EmailAddress: graphEmailAddress{Address: msg.To}}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/users/%s/sendMail", g.cfg.BaseURL, url.PathEscape(g.cfg.SenderUser))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("graph API error: %s: %s", resp.Status, bytes.TrimSpace(body))
	}

	return resp.Header.Get("request-id"), nil
}
