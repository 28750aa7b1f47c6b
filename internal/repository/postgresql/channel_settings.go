package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-notify/internal/domain/channel"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/database"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/secret"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type settingsRepository struct {
	db  *database.DB
	box *secret.Box
}

// NewSettingsRepository stores provider credentials sealed with box.
func NewSettingsRepository(db *database.DB, box *secret.Box) channel.SettingsRepository {
	return &settingsRepository{db: db, box: box}
}

func (r *settingsRepository) seal(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	return r.box.Seal([]byte(plain))
}

func (r *settingsRepository) open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	plain, err := r.box.Open(sealed)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func (r *settingsRepository) GetActiveEmailProfile(ctx context.Context) (channel.EmailProfile, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, provider, is_active, from_address, from_name, host, port, username,
		       password_enc, tenant_id, client_id, client_secret_enc, updated_at
		FROM email_profiles
		WHERE is_active
		LIMIT 1
	`

	var p channel.EmailProfile
	var provider, passwordEnc, secretEnc string
	err := q.QueryRow(ctx, query).Scan(
		&p.ID,
		&p.Name,
		&provider,
		&p.IsActive,
		&p.FromAddress,
		&p.FromName,
		&p.Host,
		&p.Port,
		&p.Username,
		&passwordEnc,
		&p.TenantID,
		&p.ClientID,
		&secretEnc,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return channel.EmailProfile{}, channel.ErrNoActiveProfile
		}
		return channel.EmailProfile{}, fmt.Errorf("failed to get email profile: %w", err)
	}
	p.Provider = channel.EmailProvider(provider)

	if p.Password, err = r.open(passwordEnc); err != nil {
		return channel.EmailProfile{}, fmt.Errorf("decrypt email password: %w", err)
	}
	if p.ClientSecret, err = r.open(secretEnc); err != nil {
		return channel.EmailProfile{}, fmt.Errorf("decrypt email client secret: %w", err)
	}
	return p, nil
}

// SaveEmailProfile upserts p. Activating it deactivates every other profile.
func (r *settingsRepository) SaveEmailProfile(ctx context.Context, p channel.EmailProfile) error {
	if p.Provider != channel.EmailProviderSMTP && p.Provider != channel.EmailProviderGraph {
		return channel.ErrInvalidEmailProvider
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	passwordEnc, err := r.seal(p.Password)
	if err != nil {
		return fmt.Errorf("encrypt email password: %w", err)
	}
	secretEnc, err := r.seal(p.ClientSecret)
	if err != nil {
		return fmt.Errorf("encrypt email client secret: %w", err)
	}

	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		if p.IsActive {
			if _, err := tx.Exec(ctx, `UPDATE email_profiles SET is_active = FALSE WHERE is_active AND id <> $1`, p.ID); err != nil {
				return fmt.Errorf("failed to deactivate email profiles: %w", err)
			}
		}

		query := `
			INSERT INTO email_profiles (
				id, name, provider, is_active, from_address, from_name, host, port, username,
				password_enc, tenant_id, client_id, client_secret_enc, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				provider = EXCLUDED.provider,
				is_active = EXCLUDED.is_active,
				from_address = EXCLUDED.from_address,
				from_name = EXCLUDED.from_name,
				host = EXCLUDED.host,
				port = EXCLUDED.port,
				username = EXCLUDED.username,
				password_enc = EXCLUDED.password_enc,
				tenant_id = EXCLUDED.tenant_id,
				client_id = EXCLUDED.client_id,
				client_secret_enc = EXCLUDED.client_secret_enc,
				updated_at = NOW()
		`
		_, err := tx.Exec(ctx, query,
			p.ID, p.Name, string(p.Provider), p.IsActive, p.FromAddress, p.FromName,
			p.Host, p.Port, p.Username, passwordEnc, p.TenantID, p.ClientID, secretEnc,
		)
		if err != nil {
			return fmt.Errorf("failed to save email profile: %w", err)
		}
		return nil
	})
}

func (r *settingsRepository) GetActiveWhatsAppGateway(ctx context.Context) (channel.WhatsAppGateway, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, base_url, api_key_enc, sender, is_active, updated_at
		FROM whatsapp_gateways
		WHERE is_active
		LIMIT 1
	`

	var g channel.WhatsAppGateway
	var keyEnc string
	err := q.QueryRow(ctx, query).Scan(&g.ID, &g.Name, &g.BaseURL, &keyEnc, &g.Sender, &g.IsActive, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return channel.WhatsAppGateway{}, channel.ErrNoActiveProfile
		}
		return channel.WhatsAppGateway{}, fmt.Errorf("failed to get whatsapp gateway: %w", err)
	}
	if g.APIKey, err = r.open(keyEnc); err != nil {
		return channel.WhatsAppGateway{}, fmt.Errorf("decrypt gateway api key: %w", err)
	}
	return g, nil
}

func (r *settingsRepository) SaveWhatsAppGateway(ctx context.Context, g channel.WhatsAppGateway) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	keyEnc, err := r.seal(g.APIKey)
	if err != nil {
		return fmt.Errorf("encrypt gateway api key: %w", err)
	}

	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		if g.IsActive {
			if _, err := tx.Exec(ctx, `UPDATE whatsapp_gateways SET is_active = FALSE WHERE is_active AND id <> $1`, g.ID); err != nil {
				return fmt.Errorf("failed to deactivate whatsapp gateways: %w", err)
			}
		}

		query := `
			INSERT INTO whatsapp_gateways (id, name, base_url, api_key_enc, sender, is_active, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				base_url = EXCLUDED.base_url,
				api_key_enc = EXCLUDED.api_key_enc,
				sender = EXCLUDED.sender,
				is_active = EXCLUDED.is_active,
				updated_at = NOW()
		`
		if _, err := tx.Exec(ctx, query, g.ID, g.Name, g.BaseURL, keyEnc, g.Sender, g.IsActive); err != nil {
			return fmt.Errorf("failed to save whatsapp gateway: %w", err)
		}
		return nil
	})
}

func (r *settingsRepository) GetTelegramSettings(ctx context.Context) (channel.TelegramSettings, error) {
	q := GetQuerier(ctx, r.db)

	var s channel.TelegramSettings
	var tokenEnc string
	err := q.QueryRow(ctx, `SELECT bot_token_enc, group_chat_id, enabled, updated_at FROM telegram_settings WHERE id = 1`).
		Scan(&tokenEnc, &s.GroupChatID, &s.Enabled, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return channel.TelegramSettings{}, channel.ErrNoActiveProfile
		}
		return channel.TelegramSettings{}, fmt.Errorf("failed to get telegram settings: %w", err)
	}
	if s.BotToken, err = r.open(tokenEnc); err != nil {
		return channel.TelegramSettings{}, fmt.Errorf("decrypt telegram token: %w", err)
	}
	return s, nil
}

func (r *settingsRepository) SaveTelegramSettings(ctx context.Context, s channel.TelegramSettings) error {
	q := GetQuerier(ctx, r.db)

	tokenEnc, err := r.seal(s.BotToken)
	if err != nil {
		return fmt.Errorf("encrypt telegram token: %w", err)
	}

	query := `
		INSERT INTO telegram_settings (id, bot_token_enc, group_chat_id, enabled, updated_at)
		VALUES (1, $1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET
			bot_token_enc = EXCLUDED.bot_token_enc,
			group_chat_id = EXCLUDED.group_chat_id,
			enabled = EXCLUDED.enabled,
			updated_at = NOW()
	`
	if _, err := q.Exec(ctx, query, tokenEnc, s.GroupChatID, s.Enabled); err != nil {
		return fmt.Errorf("failed to save telegram settings: %w", err)
	}
	return nil
}
