package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/betting-pool/models"
	"github.com/Dosada05/betting-pool/utils"
	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL   string
	JWTSecretKey  string
	JWTExpiration time.Duration
	ServerPort    int
	LockDatetime  time.Time
	Debug         bool

	AllowedOrigins []string

	RulesFile string
	Rules     models.Rules

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OfficialResultsURL string
	SyncFetcher        string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	TelegramBotToken string
	TelegramChatID   int64
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	port, err := strconv.Atoi(utils.GetEnvOrDefault("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	expiration, err := strconv.Atoi(utils.GetEnvOrDefault("JWT_EXPIRATION_TIME", "86400"))
	if err != nil || expiration <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRATION_TIME must be a positive number of seconds")
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		JWTSecretKey:       os.Getenv("JWT_SECRET_KEY"),
		JWTExpiration:      time.Duration(expiration) * time.Second,
		ServerPort:         port,
		Debug:              utils.GetEnvOrDefault("DEBUG", "false") == "true",
		AllowedOrigins:     splitList(utils.GetEnvOrDefault("ALLOWED_ORIGINS", "*")),
		RulesFile:          os.Getenv("RULES_FILE"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		OfficialResultsURL: os.Getenv("OFFICIAL_RESULTS_URL"),
		SyncFetcher:        utils.GetEnvOrDefault("SYNC_FETCHER", "http"),
		R2AccountID:        os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:      os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:  os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:       os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:    os.Getenv("R2_PUBLIC_BASE_URL"),
		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	if raw := os.Getenv("LOCK_DATETIME"); raw != "" {
		lock, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid LOCK_DATETIME, expected RFC3339: %w", err)
		}
		cfg.LockDatetime = lock.UTC()
	}

	if cfg.RedisDB, err = strconv.Atoi(utils.GetEnvOrDefault("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB environment variable: %w", err)
	}

	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		if cfg.TelegramChatID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID environment variable: %w", err)
		}
	}

	if cfg.SyncFetcher != "http" && cfg.SyncFetcher != "chrome" {
		return nil, fmt.Errorf("SYNC_FETCHER must be http or chrome, got %q", cfg.SyncFetcher)
	}

	if cfg.RulesFile != "" {
		rules, err := LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		cfg.Rules = *rules
	}
	if err := applyScoringOverrides(&cfg.Rules); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if c.JWTSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}
	if c.LockDatetime.IsZero() {
		return fmt.Errorf("LOCK_DATETIME environment variable is not set")
	}
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
