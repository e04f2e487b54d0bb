package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Defaults for the e-paper archive. These are the values the harvester was
// originally hard-coded with.
const (
	DefaultBaseURL    = "https://epaper.andhrajyothy.com"
	DefaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	DefaultEditionMin = 1
	DefaultEditionMax = 225
	DefaultMonthsBack = 3
	DefaultDelay      = 2 * time.Second
	DefaultOutputDir  = "andhrajyothy_dataset"
)

// Config holds all configuration for the application
type Config struct {
	// Archive source
	BaseURL      string        `json:"base_url" validate:"required,url"`
	UserAgent    string        `json:"user_agent"`
	InsecureTLS  bool          `json:"insecure_tls"`
	HTTPTimeout  time.Duration `json:"http_timeout" validate:"gte=0"`
	RequestDelay time.Duration `json:"request_delay" validate:"gte=0"`

	// Harvest window
	EditionMin int `json:"edition_min" validate:"gte=1"`
	EditionMax int `json:"edition_max" validate:"gtefield=EditionMin"`
	MonthsBack int `json:"months_back" validate:"gte=0"`

	// Storage
	OutputDir string `json:"output_dir" validate:"required"`

	// Redis run status (optional)
	RedisURL    string        `json:"redis_url"`
	RedisPrefix string        `json:"redis_prefix"`
	CacheTTL    time.Duration `json:"cache_ttl"`

	// CloudFlare R2 mirror (optional)
	R2Endpoint  string `json:"r2_endpoint" validate:"omitempty,url"`
	R2AccessKey string `json:"r2_access_key"`
	R2SecretKey string `json:"r2_secret_key"`
	R2Bucket    string `json:"r2_bucket"`
	R2Prefix    string `json:"r2_prefix"`

	// Results API
	Port            string        `json:"port"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`

	// Logging
	LogLevel  string `json:"log_level" validate:"oneof=debug info warn error fatal panic disabled"`
	LogFile   string `json:"log_file"`
	LogPretty bool   `json:"log_pretty"`
}

// Load reads configuration from the environment (and .env if present) and
// validates it. Startup aborts on an invalid configuration.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

// FromEnv builds a Config from environment variables without validating it.
func FromEnv() *Config {
	return &Config{
		BaseURL:      strings.TrimRight(getEnv("EPAPER_BASE_URL", DefaultBaseURL), "/"),
		UserAgent:    getEnv("USER_AGENT", DefaultUserAgent),
		InsecureTLS:  getEnvAsBool("EPAPER_INSECURE_TLS", true),
		HTTPTimeout:  getEnvAsDuration("HTTP_TIMEOUT", 60*time.Second),
		RequestDelay: getEnvAsDuration("REQUEST_DELAY", DefaultDelay),

		EditionMin: getEnvAsInt("EDITION_MIN", DefaultEditionMin),
		EditionMax: getEnvAsInt("EDITION_MAX", DefaultEditionMax),
		MonthsBack: getEnvAsInt("MONTHS_BACK", DefaultMonthsBack),

		OutputDir: getEnv("OUTPUT_DIR", DefaultOutputDir),

		RedisURL:    getEnv("REDIS_URL", ""),
		RedisPrefix: getEnv("REDIS_PREFIX", "epaper:"),
		CacheTTL:    getEnvAsDuration("CACHE_TTL", 720*time.Hour), // 30 days

		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", ""),
		R2Prefix:    getEnv("R2_PREFIX", "andhrajyothy"),

		Port:            getEnv("PORT", "8080"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFile:   getEnv("LOG_FILE", ""),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if (c.R2Endpoint == "") != (c.R2Bucket == "") {
		return fmt.Errorf("config validation: R2_ENDPOINT and R2_BUCKET must be set together")
	}
	return nil
}

// MirrorEnabled reports whether output files should be copied to R2.
func (c *Config) MirrorEnabled() bool {
	return c.R2Endpoint != "" && c.R2Bucket != ""
}

// Editions returns the edition ids to harvest, ascending.
func (c *Config) Editions() []int {
	ids := make([]int, 0, c.EditionMax-c.EditionMin+1)
	for id := c.EditionMin; id <= c.EditionMax; id++ {
		ids = append(ids, id)
	}
	return ids
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %t", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
