package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	SecretKey      string // Secret key for session and reset token signing
	DatabaseDriver string // "postgres" or "sqlite"
	DatabaseURL    string
	RedisURL       string // Optional, enables phone verification codes
	BaseURL        string // Public base URL used in reset links; derived from the request when empty
	Port           int
	SessionTTL     time.Duration
	ResetTokenTTL  time.Duration
	CookieSecure   bool
	LogLevel       string

	Twilio  TwilioConfig
	Mailgun MailgunConfig
}

// TwilioConfig holds SMS gateway credentials. Empty credentials switch SMS to log-only mode.
type TwilioConfig struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
}

func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != ""
}

// MailgunConfig holds email gateway credentials. Empty credentials switch email to log-only mode.
type MailgunConfig struct {
	APIKey  string
	Domain  string
	APIBase string // e.g. https://api.eu.mailgun.net/v3
	From    string
}

func (m MailgunConfig) Enabled() bool {
	return m.APIKey != "" && m.Domain != ""
}

// Sender returns the From header for outgoing mail.
func (m MailgunConfig) Sender() string {
	if m.From != "" {
		return m.From
	}
	return fmt.Sprintf("Your App <mailgun@%s>", m.Domain)
}

func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	cfg := &Config{
		SecretKey:      getEnv("SECRET_KEY", ""),
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", DriverPostgres)),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		BaseURL:        strings.TrimRight(getEnv("BASE_URL", ""), "/"),
		Port:           getEnvInt("PORT", 8080),
		SessionTTL:     time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		ResetTokenTTL:  time.Duration(getEnvInt("RESET_TOKEN_TTL_MINUTES", 60)) * time.Minute,
		CookieSecure:   getEnvBool("COOKIE_SECURE", false),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Twilio: TwilioConfig{
			AccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
			PhoneNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
		},
		Mailgun: MailgunConfig{
			APIKey:  getEnv("MAILGUN_API_KEY", ""),
			Domain:  getEnv("MAILGUN_DOMAIN", ""),
			APIBase: getEnv("MAILGUN_API_BASE", ""),
			From:    getEnv("MAIL_FROM", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing or malformed setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY is required"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.DatabaseDriver != DriverPostgres && c.DatabaseDriver != DriverSQLite {
		errs = append(errs, fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Port))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL_HOURS must be positive"))
	}
	if c.ResetTokenTTL <= 0 {
		errs = append(errs, errors.New("RESET_TOKEN_TTL_MINUTES must be positive"))
	}
	if c.Twilio.Enabled() && c.Twilio.PhoneNumber == "" {
		errs = append(errs, errors.New("TWILIO_PHONE_NUMBER is required when Twilio credentials are set"))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
