package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Config struct {
	Port        string `validate:"required,numeric"`
	Environment string `validate:"oneof=development staging production test"`
	LogLevel    string

	// Storage
	DatabaseURL string
	RedisURL    string
	MongoDBURL  string
	MongoDBName string `validate:"required"`

	// Auth. Empty disables bearer-token checks on /api/v1.
	JWTSecret string

	// Model
	CorpusPath    string
	MaxFeatures   int     `validate:"gt=0"`
	SVMC          float64 `validate:"gt=0"`
	ClassWeight   string  `validate:"oneof=balanced none"`
	SVMMaxIter    int     `validate:"gt=0"`
	SVMTolerance  float64 `validate:"gt=0"`
	EvalTestSize  float64 `validate:"gt=0,lt=1"`
	EvalSeed      int64
	EvalOnStartup bool

	// Worker
	WorkerID        string
	NodeID          int64 `validate:"gte=0,lte=1023"`
	WorkerCount     int   `validate:"gt=0"`
	WorkerQueueSize int   `validate:"gt=0"`
	WorkerBatchSize int   `validate:"gt=0"`

	// Consumer (Redis Stream)
	InboxStream             string `validate:"required"`
	ConsumerGroup           string `validate:"required"`
	ConsumerBatchSize       int    `validate:"gt=0"`
	ConsumerBlockMS         int    `validate:"gt=0"`
	ConsumerMaxRetries      int    `validate:"gt=0"`
	ConsumerPendingCheckSec int    `validate:"gt=0"`

	// Cache
	CacheTTL        time.Duration
	CacheMaxEntries int `validate:"gt=0"`

	// HTTP
	RateLimitPerMin int `validate:"gte=0"`
	MaxTextBytes    int `validate:"gt=0"`
	AllowedOrigins  []string
}

// generateWorkerID creates a consumer name from hostname and PID.
func generateWorkerID() string {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "sorter"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		MongoDBURL:  getEnv("MONGODB_URL", ""),
		MongoDBName: getEnv("MONGODB_DATABASE", "sorter"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		CorpusPath:    getEnv("CORPUS_PATH", ""),
		MaxFeatures:   getEnvInt("MAX_FEATURES", 3000),
		SVMC:          getEnvFloat("SVM_C", 1.0),
		ClassWeight:   getEnv("CLASS_WEIGHT", "balanced"),
		SVMMaxIter:    getEnvInt("SVM_MAX_ITER", 1000),
		SVMTolerance:  getEnvFloat("SVM_TOLERANCE", 1e-4),
		EvalTestSize:  getEnvFloat("EVAL_TEST_SIZE", 0.2),
		EvalSeed:      int64(getEnvInt("EVAL_SEED", 42)),
		EvalOnStartup: getEnvBool("EVAL_ON_STARTUP", true),

		WorkerID:        getEnv("WORKER_ID", generateWorkerID()),
		NodeID:          int64(getEnvInt("NODE_ID", 1)),
		WorkerCount:     getEnvInt("WORKER_COUNT", 4),
		WorkerQueueSize: getEnvInt("WORKER_QUEUE_SIZE", 100),
		WorkerBatchSize: getEnvInt("WORKER_BATCH_SIZE", 1),

		InboxStream:             getEnv("INBOX_STREAM", "inbox:messages"),
		ConsumerGroup:           getEnv("CONSUMER_GROUP", "sorter"),
		ConsumerBatchSize:       getEnvInt("CONSUMER_BATCH_SIZE", 50),
		ConsumerBlockMS:         getEnvInt("CONSUMER_BLOCK_MS", 5000),
		ConsumerMaxRetries:      getEnvInt("CONSUMER_MAX_RETRIES", 3),
		ConsumerPendingCheckSec: getEnvInt("CONSUMER_PENDING_CHECK_SEC", 60),

		CacheTTL:        time.Duration(getEnvInt("CACHE_TTL_MIN", 30)) * time.Minute,
		CacheMaxEntries: getEnvInt("CACHE_MAX_ENTRIES", 10000),

		RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MIN", 120),
		MaxTextBytes:    getEnvInt("MAX_TEXT_BYTES", 64*1024),
		AllowedOrigins:  getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
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

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AuthEnabled reports whether API routes require a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}
