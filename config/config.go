package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// TargetSpec is the raw monitored-targets specification
	// (NAME|URL[|MODE] entries separated by semicolons or newlines)
	TargetSpec string

	// DefaultMode applies to targets that do not specify one
	DefaultMode string

	// Telegram configuration
	TelegramBotToken string
	TelegramChatID   string

	// Snapshot storage configuration
	SnapshotBackend string // "file" or "redis"
	StorageFile     string
	RedisAddr       string
	RedisDB         int
	RedisKeyPrefix  string

	// Fetching configuration
	Fetcher        string // "http" or "browser"
	BrowserURL     string
	MemcacheAddr   string
	FetchBlockTime time.Duration
	FetchTimeout   time.Duration

	// TargetDelay is the pause between consecutive target fetches
	TargetDelay time.Duration

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	targetDelay, _ := strconv.Atoi(getEnv("TARGET_DELAY_SECONDS", "2"))
	blockTime, _ := strconv.Atoi(getEnv("FETCH_BLOCK_SECONDS", "600"))
	fetchTimeout, _ := strconv.Atoi(getEnv("FETCH_TIMEOUT_SECONDS", "30"))

	// CAR_LISTING_URLS supersedes the older single-URL variable
	targetSpec := os.Getenv("CAR_LISTING_URLS")
	if targetSpec == "" {
		targetSpec = os.Getenv("CAR_LISTING_URL")
	}

	return &Config{
		TargetSpec:       targetSpec,
		DefaultMode:      getEnv("CARWATCH_MODE", "listings"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
		SnapshotBackend:  getEnv("SNAPSHOT_BACKEND", "file"),
		StorageFile:      getEnv("STORAGE_FILE", "carwatch_data.json"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:          redisDB,
		RedisKeyPrefix:   getEnv("REDIS_KEY_PREFIX", "carwatch:snapshot"),
		Fetcher:          getEnv("FETCHER", "http"),
		BrowserURL:       os.Getenv("BROWSER_URL"),
		MemcacheAddr:     os.Getenv("MEMCACHE_ADDR"),
		FetchBlockTime:   time.Duration(blockTime) * time.Second,
		FetchTimeout:     time.Duration(fetchTimeout) * time.Second,
		TargetDelay:      time.Duration(targetDelay) * time.Second,
		Environment:      getEnv("CARWATCH_ENV", "development"),
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.TargetSpec == "" {
		return fmt.Errorf("no target URLs configured; set CAR_LISTING_URLS (format: URL1;URL2 or NAME1|URL1;NAME2|URL2)")
	}
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	if c.TelegramChatID == "" {
		return fmt.Errorf("TELEGRAM_CHAT_ID is not set")
	}
	if c.DefaultMode != "listings" && c.DefaultMode != "count" {
		return fmt.Errorf("unknown CARWATCH_MODE %q (expected listings or count)", c.DefaultMode)
	}
	if c.SnapshotBackend != "file" && c.SnapshotBackend != "redis" {
		return fmt.Errorf("unknown SNAPSHOT_BACKEND %q (expected file or redis)", c.SnapshotBackend)
	}
	if c.Fetcher != "http" && c.Fetcher != "browser" {
		return fmt.Errorf("unknown FETCHER %q (expected http or browser)", c.Fetcher)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
