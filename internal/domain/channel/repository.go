package channel

import "context"

// SettingsRepository reads and writes delivery-provider settings. Secrets are
// decrypted on read and encrypted on write.
type SettingsRepository interface {
	GetActiveEmailProfile(ctx context.Context) (EmailProfile, error)
	SaveEmailProfile(ctx context.Context, p EmailProfile) error
	GetActiveWhatsAppGateway(ctx context.Context) (WhatsAppGateway, error)
	SaveWhatsAppGateway(ctx context.Context, g WhatsAppGateway) error
	GetTelegramSettings(ctx context.Context) (TelegramSettings, error)
	SaveTelegramSettings(ctx context.Context, s TelegramSettings) error
}
