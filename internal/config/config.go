package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kapu/viralscope-go/pkg/errors"
)

type Config struct {
	Server   ServerConfig
	Relay    RelayConfig
	Apify    ApifyConfig
	YouTube  YouTubeConfig
	Gemini   GeminiConfig
	OpenAI   OpenAIConfig
	Gateway  GatewayConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Logging  LoggingConfig
	Analysis AnalysisConfig
}

type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// RelayConfig points at the same-origin relay. An empty BaseURL disables the
// primary channel.
type RelayConfig struct {
	BaseURL      string
	ScrapePath   string
	GeneratePath string
}

type ApifyConfig struct {
	Token   string
	BaseURL string
	Actors  map[string]string
}

type YouTubeConfig struct {
	APIKey       string
	RecentVideos int
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey         string
	Model          string
	EnableFallback bool
}

type GatewayConfig struct {
	ScrapeTimeout   time.Duration
	GenerateTimeout time.Duration
	RetryBaseDelay  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type LoggingConfig struct {
	Level string
	File  string
}

type AnalysisConfig struct {
	BatchConcurrency int
	MaxBatchSize     int
	DefaultObjective string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("SERVER_ADDR", ":8080"),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT_SECONDS", 10, time.Second),
		},
		Relay: RelayConfig{
			BaseURL:      strings.TrimRight(getEnv("RELAY_BASE_URL", ""), "/"),
			ScrapePath:   getEnv("RELAY_SCRAPE_PATH", "/api/scrape"),
			GeneratePath: getEnv("RELAY_GENERATE_PATH", "/api/generate"),
		},
		Apify: ApifyConfig{
			Token:   getEnv("APIFY_TOKEN", ""),
			BaseURL: strings.TrimRight(getEnv("APIFY_BASE_URL", "https://api.apify.com/v2"), "/"),
			Actors: map[string]string{
				"instagram": getEnv("APIFY_ACTOR_INSTAGRAM", "apify~instagram-profile-scraper"),
				"tiktok":    getEnv("APIFY_ACTOR_TIKTOK", "clockworks~tiktok-scraper"),
				"youtube":   getEnv("APIFY_ACTOR_YOUTUBE", "streamers~youtube-channel-scraper"),
				"kwai":      getEnv("APIFY_ACTOR_KWAI", ""),
			},
		},
		YouTube: YouTubeConfig{
			APIKey:       getEnv("YOUTUBE_API_KEY", ""),
			RecentVideos: getEnvInt("YOUTUBE_RECENT_VIDEOS", 12),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-4.1-mini"),
			EnableFallback: getEnvBool("OPENAI_ENABLE_FALLBACK", true),
		},
		Gateway: GatewayConfig{
			ScrapeTimeout:   getEnvDuration("SCRAPE_TIMEOUT_SECONDS", 55, time.Second),
			GenerateTimeout: getEnvDuration("GENERATE_TIMEOUT_SECONDS", 0, time.Second),
			RetryBaseDelay:  getEnvDuration("RETRY_BASE_DELAY_MS", 1000, time.Millisecond),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("REDIS_SNAPSHOT_TTL_HOURS", 24, time.Hour),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", ""),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "viralscope"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "viralscope"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Analysis: AnalysisConfig{
			BatchConcurrency: getEnvInt("ANALYSIS_BATCH_CONCURRENCY", 4),
			MaxBatchSize:     getEnvInt("ANALYSIS_MAX_BATCH_SIZE", 10),
			DefaultObjective: getEnv("ANALYSIS_DEFAULT_OBJECTIVE", "grow reach and engagement"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("SERVER_ADDR is required")
	}
	if c.Gateway.ScrapeTimeout <= 0 {
		return fmt.Errorf("SCRAPE_TIMEOUT_SECONDS must be positive")
	}
	if c.Gateway.RetryBaseDelay < 0 {
		return fmt.Errorf("RETRY_BASE_DELAY_MS must not be negative")
	}
	if c.Analysis.BatchConcurrency < 1 {
		return fmt.Errorf("ANALYSIS_BATCH_CONCURRENCY must be at least 1")
	}
	if !c.HasGenerationCredential() {
		return errors.NewCredentialError("RELAY_BASE_URL, GEMINI_API_KEY or OPENAI_API_KEY is required", "generate")
	}
	return nil
}

// HasGenerationCredential reports whether any channel can serve generation.
func (c *Config) HasGenerationCredential() bool {
	return c.Relay.BaseURL != "" || c.Gemini.APIKey != "" || c.OpenAI.APIKey != ""
}

// RelayEnabled reports whether the primary channel is configured.
func (c *Config) RelayEnabled() bool {
	return c.Relay.BaseURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue int, unit time.Duration) time.Duration {
	return time.Duration(getEnvInt(key, defaultValue)) * unit
}
