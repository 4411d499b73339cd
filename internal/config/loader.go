package config

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadData is Load for commands that only read the data source.
// Telegram, webhook and audit settings are not validated.
func LoadData() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}

	if err := joinErrors(cfg.dataErrors(), cfg.loggingErrors()); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Read parses the environment and applies defaults without validating.
func Read() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		if value == "" {
			value = defaultVal
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		// Split comma-separated values, trim whitespace
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		field.Set(reflect.ValueOf(result))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Telegram accepts 1-256 characters from this set as a webhook secret.
var secretTokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,256}$`)

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	return joinErrors(
		c.telegramErrors(),
		c.dataErrors(),
		c.voiceErrors(),
		c.webhookErrors(),
		c.auditErrors(),
		c.loggingErrors(),
	)
}

func joinErrors(groups ...[]string) error {
	var errs []string
	for _, g := range groups {
		errs = append(errs, g...)
	}
	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func (c *Config) telegramErrors() []string {
	var errs []string
	if c.Telegram.Token == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required")
	}
	switch c.Telegram.Mode {
	case ModePolling, ModeWebhook:
	default:
		errs = append(errs, fmt.Sprintf("TELEGRAM_MODE (%q) must be one of: polling, webhook", c.Telegram.Mode))
	}
	if c.Telegram.QueueSize <= 0 {
		errs = append(errs, "TELEGRAM_QUEUE_SIZE must be positive")
	}
	if c.Telegram.EnqueueWait <= 0 {
		errs = append(errs, "TELEGRAM_ENQUEUE_WAIT must be positive")
	}
	if c.Telegram.PollTimeout < 0 {
		errs = append(errs, "TELEGRAM_POLL_TIMEOUT must be non-negative")
	}
	if c.Telegram.ShutdownTimeout <= 0 {
		errs = append(errs, "SHUTDOWN_TIMEOUT must be positive")
	}
	return errs
}

func (c *Config) dataErrors() []string {
	var errs []string
	switch c.Data.Source {
	case SourceSheets:
		if c.Data.SheetID == "" {
			errs = append(errs, "GOOGLE_SHEET_ID is required when DATA_SOURCE is sheets")
		}
		if c.Data.CredentialsFile == "" {
			errs = append(errs, "GOOGLE_CREDENTIALS_FILE must not be empty")
		}
	case SourceCSV:
		if c.Data.CSVPath == "" {
			errs = append(errs, "DATA_CSV_PATH is required when DATA_SOURCE is csv")
		}
	default:
		errs = append(errs, fmt.Sprintf("DATA_SOURCE (%q) must be one of: sheets, csv", c.Data.Source))
	}
	if c.Data.FetchTimeout <= 0 {
		errs = append(errs, "SHEETS_FETCH_TIMEOUT must be positive")
	}
	if c.Data.AuthTimeout <= 0 {
		errs = append(errs, "SHEETS_AUTH_TIMEOUT must be positive")
	}
	return errs
}

func (c *Config) voiceErrors() []string {
	var errs []string
	if c.Voice.Enabled && c.Voice.Language == "" {
		errs = append(errs, "VOICE_LANGUAGE is required when VOICE_ENABLED is true")
	}
	if c.Voice.Replies && !c.Voice.Enabled {
		errs = append(errs, "VOICE_REPLIES requires VOICE_ENABLED")
	}
	if c.Voice.MaxDuration <= 0 {
		errs = append(errs, "VOICE_MAX_DURATION must be positive")
	}
	return errs
}

func (c *Config) webhookErrors() []string {
	var errs []string
	if c.Telegram.Mode == ModeWebhook {
		if c.Webhook.Port <= 0 || c.Webhook.Port > 65535 {
			errs = append(errs, fmt.Sprintf("WEBHOOK_PORT (%d) must be 1-65535", c.Webhook.Port))
		}
		if !strings.HasPrefix(c.Webhook.Path, "/") {
			errs = append(errs, fmt.Sprintf("WEBHOOK_PATH (%q) must start with /", c.Webhook.Path))
		}
		if c.Webhook.SecretToken == "" {
			errs = append(errs, "WEBHOOK_SECRET is required when TELEGRAM_MODE is webhook")
		}
		if c.Webhook.MaxBodyBytes <= 0 {
			errs = append(errs, "WEBHOOK_MAX_BODY_BYTES must be positive")
		}
	}
	if c.Webhook.SecretToken != "" && !secretTokenPattern.MatchString(c.Webhook.SecretToken) {
		errs = append(errs, "WEBHOOK_SECRET may only contain A-Z, a-z, 0-9, _ and - (1-256 characters)")
	}
	return errs
}

func (c *Config) auditErrors() []string {
	var errs []string
	if c.Audit.Enabled() {
		if c.Audit.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if c.Audit.MinConns < 0 {
			errs = append(errs, "DB_MIN_CONNS must be non-negative")
		}
		if c.Audit.MaxConns < c.Audit.MinConns {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
				c.Audit.MaxConns, c.Audit.MinConns))
		}
		if c.Audit.RetentionDays <= 0 {
			errs = append(errs, "AUDIT_RETENTION_DAYS must be positive")
		}
		if c.Audit.CheckInterval <= 0 {
			errs = append(errs, "AUDIT_CHECK_INTERVAL must be positive")
		}
	}
	return errs
}

func (c *Config) loggingErrors() []string {
	var errs []string
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}
	return errs
}

// String returns a safe string representation of the config for logging.
// The bot token, webhook secret and database URL are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Telegram: {Token: %s, Mode: %q, QueueSize: %d}, ",
		mask(c.Telegram.Token), c.Telegram.Mode, c.Telegram.QueueSize)
	fmt.Fprintf(&b, "Data: {Source: %q, SheetID: %q, Range: %q, CSVPath: %q}, ",
		c.Data.Source, c.Data.SheetID, c.Data.Range, c.Data.CSVPath)
	fmt.Fprintf(&b, "Voice: {Enabled: %v, Replies: %v, Language: %q}, ",
		c.Voice.Enabled, c.Voice.Replies, c.Voice.Language)
	fmt.Fprintf(&b, "Webhook: {Addr: %q, Path: %q, Secret: %s}, ",
		c.Webhook.Addr(), c.Webhook.Path, mask(c.Webhook.SecretToken))
	fmt.Fprintf(&b, "Audit: {DatabaseURL: %s, RetentionDays: %d}, ",
		mask(c.Audit.DatabaseURL), c.Audit.RetentionDays)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}

func mask(secret string) string {
	if secret == "" {
		return "[UNSET]"
	}
	return "[MASKED]"
}
