package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	Auth         AuthConfig
	SMTP         SMTPConfig
	Firebase     FirebaseConfig
	Telegram     TelegramConfig
	Notification NotificationConfig
	Attendance   AttendanceConfig
	Branding     BrandingConfig
	Secret       SecretConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
	AutoMigrate bool
}

// AuthConfig selects the identity provider used to verify bearer tokens.
// Provider is "jwt" (HS256 tokens signed with JWT.Secret) or "firebase".
type AuthConfig struct {
	Provider string
}

// SMTPConfig is the fallback email profile used when no active profile is stored.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
}

type TelegramConfig struct {
	BotToken    string
	GroupChatID string
}

// NotificationConfig tunes fan-out behaviour.
type NotificationConfig struct {
	SettingsCacheTTL time.Duration
	DispatchTimeout  time.Duration
	Parallelism      int
	InboxRetention   time.Duration
}

// AttendanceConfig holds the cut-offs used to derive the attendance flag.
type AttendanceConfig struct {
	Timezone     string
	LateAfter    string
	HalfDayAfter string
}

type BrandingConfig struct {
	AppName      string
	CompanyName  string
	CurrencyCode string
}

// SecretConfig holds the key material used to encrypt stored provider credentials.
type SecretConfig struct {
	SettingsKey string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hris-notify"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		AutoMigrate: getEnv("AUTO_MIGRATE", "false") == "true",
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	config.Auth = AuthConfig{
		Provider: strings.ToLower(getEnv("AUTH_PROVIDER", "jwt")),
	}

	// SMTP fallback profile
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@localhost"),
		FromName: getEnv("SMTP_FROM_NAME", "HRIS"),
	}

	config.Firebase = FirebaseConfig{
		ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
	}

	config.Telegram = TelegramConfig{
		BotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
		GroupChatID: getEnv("TELEGRAM_GROUP_CHAT_ID", ""),
	}

	// Notification configuration
	cacheTTL, err := time.ParseDuration(getEnv("NOTIFY_SETTINGS_CACHE_TTL", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_SETTINGS_CACHE_TTL: %w", err)
	}
	dispatchTimeout, err := time.ParseDuration(getEnv("NOTIFY_DISPATCH_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_DISPATCH_TIMEOUT: %w", err)
	}
	parallelism, err := strconv.Atoi(getEnv("NOTIFY_PARALLELISM", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_PARALLELISM: %w", err)
	}
	retention, err := time.ParseDuration(getEnv("NOTIFY_INBOX_RETENTION", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_INBOX_RETENTION: %w", err)
	}
	config.Notification = NotificationConfig{
		SettingsCacheTTL: cacheTTL,
		DispatchTimeout:  dispatchTimeout,
		Parallelism:      parallelism,
		InboxRetention:   retention,
	}

	config.Attendance = AttendanceConfig{
		Timezone:     getEnv("ATTENDANCE_TIMEZONE", "UTC"),
		LateAfter:    getEnv("ATTENDANCE_LATE_AFTER", "09:30 AM"),
		HalfDayAfter: getEnv("ATTENDANCE_HALF_DAY_AFTER", "01:00 PM"),
	}

	config.Branding = BrandingConfig{
		AppName:      getEnv("APP_NAME", "HRIS"),
		CompanyName:  getEnv("COMPANY_NAME", "CMLabs"),
		CurrencyCode: getEnv("CURRENCY_CODE", "IDR"),
	}

	config.Secret = SecretConfig{
		SettingsKey: getEnv("SETTINGS_ENCRYPTION_KEY", ""),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	switch c.Auth.Provider {
	case "jwt":
	case "firebase":
		if c.Firebase.ProjectID == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required when AUTH_PROVIDER=firebase")
		}
	default:
		return fmt.Errorf("AUTH_PROVIDER must be one of: jwt, firebase")
	}
	if c.Secret.SettingsKey == "" {
		return fmt.Errorf("SETTINGS_ENCRYPTION_KEY is required")
	}
	if c.Notification.Parallelism < 1 {
		return fmt.Errorf("NOTIFY_PARALLELISM must be at least 1")
	}
	if _, err := time.LoadLocation(c.Attendance.Timezone); err != nil {
		return fmt.Errorf("invalid ATTENDANCE_TIMEZONE: %w", err)
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location returns the attendance timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Attendance.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SlogLevel maps LOG_LEVEL to a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
