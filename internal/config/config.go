// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	SecretKey  string `env:"CGV_SECRET_KEY" validate:"required"`
	APIURL     string `env:"API_URL" validate:"required,url"`
	WebhookURL string `env:"WEBHOOK_URL" validate:"required,url"`

	SeenStore  string `env:"SEEN_STORE" validate:"oneof=json sqlite"`
	SeenFile   string `env:"SEEN_FILE" validate:"required"`
	SeenDBPath string `env:"SEEN_DB_PATH" validate:"required"`

	LogLevel      string        `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	HTTPTimeout   time.Duration `env:"HTTP_TIMEOUT" validate:"gt=0"`
	CheckSchedule string        `env:"CHECK_SCHEDULE" validate:"required"`
	MessageHeader string        `env:"MESSAGE_HEADER"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN" validate:"required_with=TelegramChatID"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID" validate:"required_with=TelegramBotToken"`

	Query Query
}

// Query holds the codes identifying the watched movie and venue.
type Query struct {
	CoCd   string `env:"CGV_CO_CD" validate:"required"`
	SiteNo string `env:"CGV_SITE_NO" validate:"required"`
	MovNo  string `env:"CGV_MOV_NO" validate:"required"`
	Div    string `env:"CGV_DIV" validate:"required"`
	AttrCd string `env:"CGV_ATTR_CD" validate:"required"`
}

// Keys lists every environment variable Load reads.
var Keys = []string{
	"CGV_SECRET_KEY", "API_URL", "WEBHOOK_URL",
	"SEEN_STORE", "SEEN_FILE", "SEEN_DB_PATH",
	"LOG_LEVEL", "HTTP_TIMEOUT", "CHECK_SCHEDULE", "MESSAGE_HEADER",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
	"CGV_CO_CD", "CGV_SITE_NO", "CGV_MOV_NO", "CGV_DIV", "CGV_ATTR_CD",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Load reads configuration from a .env file (if present) and the environment.
// Variables already set in the environment take precedence over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds and validates a Config from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		SecretKey:     os.Getenv("CGV_SECRET_KEY"),
		APIURL:        strings.TrimSpace(os.Getenv("API_URL")),
		WebhookURL:    strings.TrimSpace(os.Getenv("WEBHOOK_URL")),
		SeenStore:     strings.ToLower(envOrDefault("SEEN_STORE", "json")),
		SeenFile:      envOrDefault("SEEN_FILE", "seen_dates.json"),
		SeenDBPath:    envOrDefault("SEEN_DB_PATH", "./data/seen.db"),
		LogLevel:      strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
		CheckSchedule: envOrDefault("CHECK_SCHEDULE", "*/10 * * * *"),
		MessageHeader: os.Getenv("MESSAGE_HEADER"),

		TelegramBotToken: strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),

		Query: Query{
			CoCd:   envOrDefault("CGV_CO_CD", "A420"),
			SiteNo: envOrDefault("CGV_SITE_NO", "0013"),
			MovNo:  envOrDefault("CGV_MOV_NO", "89706"),
			Div:    envOrDefault("CGV_DIV", "TCSCNS_GRAD_CD"),
			AttrCd: envOrDefault("CGV_ATTR_CD", "03"),
		},
	}

	timeout, err := time.ParseDuration(envOrDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	if raw := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); raw != "" {
		cfg.TelegramChatID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required values and formats.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// TelegramEnabled reports whether the Telegram channel is configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

// StorePath returns the location used by the selected store backend.
func (c *Config) StorePath() string {
	if c.SeenStore == "sqlite" {
		return c.SeenDBPath
	}
	return c.SeenFile
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "required_with":
		return fmt.Sprintf("%s is required when %s is set", fe.Field(), envName(fe.Param()))
	case "url":
		return fmt.Sprintf("%s must be a URL", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %q check", fe.Field(), fe.Tag())
	}
}

func envName(field string) string {
	if f, ok := reflect.TypeOf(Config{}).FieldByName(field); ok {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
	}
	return field
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
