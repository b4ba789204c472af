package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/salesdojo/backend/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	Storage     string
	DatabaseURL string
	AutoMigrate bool

	BotToken       string
	JWTSecret      string
	AuthMaxAge     int64 // seconds, auth_date freshness window
	PasswordPepper string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AllowedOrigins []string
	CookieSecure   bool
	CookieDomain   string

	APIRateLimit   int
	AuthRateLimit  int
	WriteRateLimit int
	RateWindow     time.Duration
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE", StoragePostgres)
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("TELEGRAM_AUTH_MAX_AGE", 86400)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("API_RATE_LIMIT", 120)
	v.SetDefault("AUTH_RATE_LIMIT", 20)
	v.SetDefault("WRITE_RATE_LIMIT", 60)
	v.SetDefault("RATE_WINDOW", "1m")
	return v
}

// Parse reads configuration from the environment (after .env) and validates it.
func Parse() (*Config, error) {
	_ = godotenv.Load()
	v := newViper()

	cfg := &Config{
		AppPort:        v.GetString("APP_PORT"),
		AppEnv:         v.GetString("APP_ENV"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		Storage:        strings.ToLower(v.GetString("STORAGE")),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		AutoMigrate:    v.GetBool("AUTO_MIGRATE"),
		BotToken:       firstNonEmpty(v.GetString("TELEGRAM_BOT_TOKEN"), v.GetString("BOT_TOKEN")),
		JWTSecret:      v.GetString("JWT_SECRET"),
		AuthMaxAge:     v.GetInt64("TELEGRAM_AUTH_MAX_AGE"),
		PasswordPepper: v.GetString("PASSWORD_PEPPER"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		CookieDomain:   v.GetString("COOKIE_DOMAIN"),
		APIRateLimit:   v.GetInt("API_RATE_LIMIT"),
		AuthRateLimit:  v.GetInt("AUTH_RATE_LIMIT"),
		WriteRateLimit: v.GetInt("WRITE_RATE_LIMIT"),
		RateWindow:     v.GetDuration("RATE_WINDOW"),
	}
	cfg.CookieSecure = cfg.IsProduction()
	if v.IsSet("COOKIE_SECURE") {
		cfg.CookieSecure = v.GetBool("COOKIE_SECURE")
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	switch cfg.Storage {
	case StorageMemory:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is not set")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}
	if cfg.AuthMaxAge <= 0 {
		cfg.AuthMaxAge = 86400
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = time.Minute
	}
	return cfg, nil
}

// Загрузка конфига из env, ошибки фатальны
func Load() *Config {
	cfg, err := Parse()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	if cfg.BotToken == "" {
		// telegram sign-in answers 500 until the token is set
		logger.Warn("TELEGRAM_BOT_TOKEN is not set, telegram sign-in is disabled")
	}
	return cfg
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
