package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	Environment string `mapstructure:"ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	HTTPAddr    string `mapstructure:"HTTP_ADDR"`
	Store       string `mapstructure:"STORE"`
	DBDSN       string `mapstructure:"DB_DSN"`

	// Пустая строка отключает кэш слотов
	RedisAddr    string        `mapstructure:"REDIS_ADDR"`
	SlotCacheTTL time.Duration `mapstructure:"SLOT_CACHE_TTL"`

	TelegramToken  string `mapstructure:"TELEGRAM_TOKEN"`
	TelegramChatID int64  `mapstructure:"TELEGRAM_CHAT_ID"`

	MigrationsDir string        `mapstructure:"MIGRATIONS_DIR"`
	StoreTimeout  time.Duration `mapstructure:"STORE_TIMEOUT"`

	// Единственная часовая зона движка
	Timezone         string  `mapstructure:"TIMEZONE"`
	SlotStepMinutes  int     `mapstructure:"SLOT_STEP_MINUTES"`
	FeeBaseHours     float64 `mapstructure:"FEE_BASE_HOURS"`
	DefaultBaseFee   int64   `mapstructure:"DEFAULT_BASE_FEE"`
	DefaultHourlyFee int64   `mapstructure:"DEFAULT_HOURLY_FEE"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv()
}

// FromEnv читает конфигурацию из переменных окружения и проставляет значения по умолчанию
func FromEnv() (*Config, error) {
	cfg := &Config{
		Environment:   getString("ENV", "development"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		HTTPAddr:      getString("HTTP_ADDR", ":8080"),
		Store:         getString("STORE", StorePostgres),
		DBDSN:         os.Getenv("DB_DSN"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		MigrationsDir: getString("MIGRATIONS_DIR", "."),
		Timezone:      getString("TIMEZONE", "Asia/Tokyo"),
	}

	var err error
	if cfg.SlotCacheTTL, err = getDuration("SLOT_CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.StoreTimeout, err = getDuration("STORE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.TelegramChatID, err = getInt64("TELEGRAM_CHAT_ID", 0); err != nil {
		return nil, err
	}
	if cfg.DefaultBaseFee, err = getInt64("DEFAULT_BASE_FEE", 6000); err != nil {
		return nil, err
	}
	if cfg.DefaultHourlyFee, err = getInt64("DEFAULT_HOURLY_FEE", 3000); err != nil {
		return nil, err
	}
	step, err := getInt64("SLOT_STEP_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	cfg.SlotStepMinutes = int(step)
	if cfg.FeeBaseHours, err = getFloat("FEE_BASE_HOURS", 2); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Printf("Config loaded\n")

	return cfg, nil
}

// Validate проверяет обязательные поля
func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required but not set")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}

	if c.SlotStepMinutes <= 0 {
		return fmt.Errorf("SLOT_STEP_MINUTES must be positive")
	}
	if c.FeeBaseHours < 0 {
		return fmt.Errorf("FEE_BASE_HOURS must not be negative")
	}
	if c.DefaultBaseFee < 0 || c.DefaultHourlyFee < 0 {
		return fmt.Errorf("default fees must not be negative")
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.LogLevel != "" {
		if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	return nil
}

// Location возвращает часовую зону движка
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
