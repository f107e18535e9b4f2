// Package config loads service settings from the environment, after
// merging an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"

	"github.com/finebot/penalty-ledger/internal/line"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// DefaultRoster is the member list offered by the menu when ROSTER is unset.
var DefaultRoster = []string{"uj", "建霖", "聖宗", "勾八", "小麻", "小蘋果", "冠珉"}

type Config struct {
	LineChannelAccessToken string
	LineChannelSecret      string
	LineAPIEndpoint        string

	HTTPAddr string

	StoreDriver string
	DatabaseURL string
	SQLitePath  string

	KafkaBrokers   []string
	KafkaTopic     string
	PublishTimeout time.Duration

	Roster        []string
	GroupSize     int
	CorrectionTTL time.Duration

	LogLevel string
}

// Load reads files (".env" when none given) into the process environment
// without overriding variables that are already set, then builds a Config.
// Missing .env files are not an error.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables alone.
func FromEnv() (*Config, error) {
	cfg := &Config{
		LineChannelAccessToken: os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"),
		LineChannelSecret:      os.Getenv("LINE_CHANNEL_SECRET"),
		LineAPIEndpoint:        os.Getenv("LINE_API_ENDPOINT"),
		HTTPAddr:               getenv("HTTP_ADDR", ":5000"),
		StoreDriver:            strings.ToLower(getenv("STORE_DRIVER", StoreMemory)),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		SQLitePath:             getenv("SQLITE_PATH", "ledger.db"),
		KafkaBrokers:           splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:             getenv("KAFKA_TOPIC", "penalty_events"),
		Roster:                 splitList(os.Getenv("ROSTER")),
		LogLevel:               strings.ToLower(getenv("LOG_LEVEL", "info")),
	}
	if len(cfg.Roster) == 0 {
		cfg.Roster = append([]string(nil), DefaultRoster...)
	}

	groupSize, err := strconv.Atoi(getenv("MENU_GROUP_SIZE", "3"))
	if err != nil {
		return nil, fmt.Errorf("MENU_GROUP_SIZE: %w", err)
	}
	cfg.GroupSize = groupSize

	ttl, err := time.ParseDuration(getenv("CORRECTION_TTL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("CORRECTION_TTL: %w", err)
	}
	cfg.CorrectionTTL = ttl

	publishTimeout, err := time.ParseDuration(getenv("PUBLISH_TIMEOUT", "2s"))
	if err != nil {
		return nil, fmt.Errorf("PUBLISH_TIMEOUT: %w", err)
	}
	cfg.PublishTimeout = publishTimeout

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	// the menu is a LINE carousel: one column per group, one action per member
	if c.GroupSize <= 0 || c.GroupSize > line.MaxColumnActions {
		return fmt.Errorf("MENU_GROUP_SIZE must be between 1 and %d, got %d", line.MaxColumnActions, c.GroupSize)
	}
	if c.CorrectionTTL < 0 {
		return fmt.Errorf("CORRECTION_TTL must not be negative, got %s", c.CorrectionTTL)
	}
	if c.PublishTimeout <= 0 {
		return fmt.Errorf("PUBLISH_TIMEOUT must be positive, got %s", c.PublishTimeout)
	}
	if len(c.Roster) == 0 {
		return errors.New("ROSTER is empty")
	}
	if limit := c.GroupSize * line.MaxCarouselColumns; len(c.Roster) > limit {
		return fmt.Errorf("ROSTER has %d members, a menu of groups of %d holds at most %d", len(c.Roster), c.GroupSize, limit)
	}
	for _, name := range c.Roster {
		if utf8.RuneCountInString(name) > line.MaxActionLabelRunes {
			return fmt.Errorf("ROSTER member %q is longer than %d characters", name, line.MaxActionLabelRunes)
		}
	}
	return nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// splitList splits a comma separated value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
