// Package config provides centralized configuration management for the bot.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Telegram update delivery modes.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Dataset source kinds.
const (
	SourceSheets = "sheets"
	SourceCSV    = "csv"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Telegram TelegramConfig
	Data     DataConfig
	Voice    VoiceConfig
	Webhook  WebhookConfig
	Audit    AuditConfig
	Logging  LoggingConfig
}

// TelegramConfig holds bot API and update dispatch settings.
type TelegramConfig struct {
	// Token is the bot token from @BotFather (required)
	Token string `env:"TELEGRAM_BOT_TOKEN" envAlt:"TELEGRAM_TOKEN"`

	// Mode is how updates arrive: polling or webhook (default: polling)
	Mode string `env:"TELEGRAM_MODE" default:"polling"`

	// APIEndpoint overrides the Bot API URL format, e.g. for a local Bot API server
	APIEndpoint string `env:"TELEGRAM_API_ENDPOINT"`

	// PollTimeout is the long-poll timeout in seconds (default: 60)
	PollTimeout int `env:"TELEGRAM_POLL_TIMEOUT" default:"60"`

	// QueueSize is how many updates may wait for the dispatcher (default: 100)
	QueueSize int `env:"TELEGRAM_QUEUE_SIZE" default:"100"`

	// EnqueueWait is how long an update waits for queue space (default: 5s)
	EnqueueWait time.Duration `env:"TELEGRAM_ENQUEUE_WAIT" default:"5s"`

	// ShutdownTimeout bounds draining queued updates on shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"30s"`

	// Debug logs raw Bot API traffic (default: false)
	Debug bool `env:"TELEGRAM_DEBUG" default:"false"`
}

// DataConfig holds dataset source settings.
type DataConfig struct {
	// Source is where rows come from: sheets or csv (default: sheets)
	Source string `env:"DATA_SOURCE" default:"sheets"`

	// SheetID is the spreadsheet id from the sheet URL (required for sheets)
	SheetID string `env:"GOOGLE_SHEET_ID" envAlt:"SPREADSHEET_ID"`

	// Range is the A1 range to read (default: Sheet1!A:Z)
	Range string `env:"SHEETS_RANGE" default:"Sheet1!A:Z"`

	// CSVPath is the local file to read (required for csv)
	CSVPath string `env:"DATA_CSV_PATH"`

	// CredentialsFile is the OAuth client or service account key (default: credentials.json)
	CredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE" envAlt:"GOOGLE_APPLICATION_CREDENTIALS" default:"credentials.json"`

	// TokenFile caches the OAuth user token (default: token.json)
	TokenFile string `env:"GOOGLE_TOKEN_FILE" default:"token.json"`

	// InteractiveAuth lets serve start the consent flow when no token is cached (default: false)
	InteractiveAuth bool `env:"SHEETS_INTERACTIVE_AUTH" default:"false"`

	// AuthAddr is the loopback address for the consent redirect (default: localhost:8080)
	AuthAddr string `env:"SHEETS_AUTH_ADDR" default:"localhost:8080"`

	// AuthTimeout bounds waiting for consent; FetchTimeout does not cut it short (default: 5m)
	AuthTimeout time.Duration `env:"SHEETS_AUTH_TIMEOUT" default:"5m"`

	// FetchTimeout bounds a single fetch (default: 30s)
	FetchTimeout time.Duration `env:"SHEETS_FETCH_TIMEOUT" default:"30s"`
}

// VoiceConfig holds speech settings.
type VoiceConfig struct {
	// Enabled turns on voice message transcription (default: false)
	Enabled bool `env:"VOICE_ENABLED" default:"false"`

	// Replies also sends every answer as a voice note (default: false)
	Replies bool `env:"VOICE_REPLIES" default:"false"`

	// Language is the BCP-47 code for recognition and synthesis (default: en-US)
	Language string `env:"VOICE_LANGUAGE" default:"en-US"`

	// CredentialsFile is a service account key for Cloud Speech; empty uses ADC
	CredentialsFile string `env:"VOICE_CREDENTIALS_FILE"`

	// MaxDuration rejects longer voice notes (default: 60s)
	MaxDuration time.Duration `env:"VOICE_MAX_DURATION" default:"60s"`
}

// WebhookConfig holds webhook HTTP server settings.
type WebhookConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"WEBHOOK_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8443)
	Port int `env:"WEBHOOK_PORT" default:"8443"`

	// Path receives update POSTs (default: /telegram/webhook)
	Path string `env:"WEBHOOK_PATH" default:"/telegram/webhook"`

	// PublicURL is registered with setWebhook on startup when set
	PublicURL string `env:"WEBHOOK_URL"`

	// SecretToken is checked against X-Telegram-Bot-Api-Secret-Token
	SecretToken string `env:"WEBHOOK_SECRET"`

	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// MaxBodyBytes caps an update body (default: 1MB)
	MaxBodyBytes int64 `env:"WEBHOOK_MAX_BODY_BYTES" default:"1048576"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"WEBHOOK_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 15s)
	WriteTimeout time.Duration `env:"WEBHOOK_WRITE_TIMEOUT" default:"15s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"WEBHOOK_IDLE_TIMEOUT" default:"60s"`
}

// AuditConfig holds the optional query log settings.
type AuditConfig struct {
	// DatabaseURL enables the query log when set.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// RetentionDays is how long query log entries are kept (default: 90)
	RetentionDays int `env:"AUDIT_RETENTION_DAYS" default:"90"`

	// CheckInterval is how often old entries are purged (default: 24h)
	CheckInterval time.Duration `env:"AUDIT_CHECK_INTERVAL" default:"24h"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the webhook listen address in host:port format.
func (c *WebhookConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Enabled reports whether the query log is configured.
func (c *AuditConfig) Enabled() bool {
	return c.DatabaseURL != ""
}
