package channel

import "time"

type EmailProvider string

const (
	EmailProviderSMTP  EmailProvider = "smtp"
	EmailProviderGraph EmailProvider = "graph"
)

// EmailProfile is an admin-configured email provider. Only one profile is
// active at a time. Credential fields are stored encrypted.
type EmailProfile struct {
	ID          string
	Name        string
	Provider    EmailProvider
	IsActive    bool
	FromAddress string
	FromName    string

	// smtp
	Host     string
	Port     int
	Username string
	Password string

	// graph
	TenantID     string
	ClientID     string
	ClientSecret string

	UpdatedAt time.Time
}

// WhatsAppGateway is the active chat-app gateway configuration.
type WhatsAppGateway struct {
	ID        string
	Name      string
	BaseURL   string
	APIKey    string
	Sender    string
	IsActive  bool
	UpdatedAt time.Time
}

// TelegramSettings targets a single group chat.
type TelegramSettings struct {
	BotToken    string
	GroupChatID string
	Enabled     bool
	UpdatedAt   time.Time
}
