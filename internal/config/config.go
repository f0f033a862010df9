package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration for the application.
type Config struct {
	APIURL           string
	APIToken         string
	APISigningKey    string
	ShoppingListPath string
	RequestTimeout   time.Duration

	DatabasePath     string
	LogLevel         string
	WeekStart        time.Weekday
	ReminderInterval time.Duration
	Port             string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	TelegramChatID         int64
}

// LoadDotEnv loads variables from a .env file into the environment when present.
// Variables already set are left alone.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	apiURL := os.Getenv("LEMBAS_API_URL")
	if apiURL == "" {
		return nil, fmt.Errorf("LEMBAS_API_URL environment variable not set")
	}

	apiToken := os.Getenv("LEMBAS_API_TOKEN")
	signingKey := os.Getenv("LEMBAS_API_SIGNING_KEY")
	if apiToken == "" && signingKey == "" {
		return nil, fmt.Errorf("LEMBAS_API_TOKEN or LEMBAS_API_SIGNING_KEY environment variable not set")
	}

	timeout, err := time.ParseDuration(getEnvOrDefault("LEMBAS_REQUEST_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEMBAS_REQUEST_TIMEOUT: %w", err)
	}

	reminderInterval, err := time.ParseDuration(getEnvOrDefault("LEMBAS_REMINDER_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEMBAS_REMINDER_INTERVAL: %w", err)
	}
	if reminderInterval <= 0 {
		return nil, fmt.Errorf("invalid LEMBAS_REMINDER_INTERVAL: must be positive")
	}

	weekStart, err := ParseWeekday(getEnvOrDefault("LEMBAS_WEEK_START", "monday"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEMBAS_WEEK_START: %w", err)
	}

	listPath := getEnvOrDefault("LEMBAS_SHOPPING_LIST_PATH", "/shoppinglist")
	if !strings.HasPrefix(listPath, "/") {
		listPath = "/" + listPath
	}

	// Telegram Config (Optional for CLI, required for Bot)
	allowedIDs, err := parseIDList(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}

	var chatID int64
	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		chatID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
	}

	return &Config{
		APIURL:                 strings.TrimRight(apiURL, "/"),
		APIToken:               apiToken,
		APISigningKey:          signingKey,
		ShoppingListPath:       listPath,
		RequestTimeout:         timeout,
		DatabasePath:           getEnvOrDefault("LEMBAS_DATABASE_PATH", "data/lembas.db"),
		LogLevel:               getEnvOrDefault("LOG_LEVEL", "info"),
		WeekStart:              weekStart,
		ReminderInterval:       reminderInterval,
		Port:                   getEnvOrDefault("PORT", "8080"),
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowedIDs,
		TelegramChatID:         chatID,
	}, nil
}

// IsAllowedUser reports whether a Telegram user may talk to the bot.
// An empty allow list admits nobody.
func (c *Config) IsAllowedUser(id int64) bool {
	for _, allowed := range c.TelegramAllowedUserIDs {
		if allowed == id {
			return true
		}
	}
	return false
}

// ParseWeekday parses an English weekday name such as "monday" or "Tue".
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) >= 3 {
		for d := time.Sunday; d <= time.Saturday; d++ {
			name := strings.ToLower(d.String())
			if strings.HasPrefix(name, s) {
				return d, nil
			}
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a user id", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
