package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	OCR          OCRConfig
	Completion   CompletionConfig
	FraudService FraudServiceConfig
	Storage      StorageConfig
	NATS         NATSConfig
	Sentry       SentryConfig
	Tracing      TracingConfig
	Breaker      BreakerConfig
	Secrets      SecretsConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string // Comma-separated list of allowed origins
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConns       int
	MinConns       int
	MigrationsPath string
	AutoMigrate    bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// OCRConfig holds configuration for the OCR providers
type OCRConfig struct {
	APIKey          string
	Endpoint        string
	PrimaryEngine   int
	SecondaryEngine int
	Timeout         time.Duration
}

// CompletionConfig holds configuration for the chat-completion service
type CompletionConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// FraudServiceConfig holds configuration for the external fraud-scoring endpoint
type FraudServiceConfig struct {
	BaseURL string
	Timeout time.Duration
}

// StorageConfig holds S3-compatible object storage configuration
type StorageConfig struct {
	Enabled    bool
	Bucket     string
	Region     string
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BaseURL    string
	PresignTTL time.Duration
}

// NATSConfig holds NATS event bus configuration
type NATSConfig struct {
	URL     string
	Enabled bool
}

// SentryConfig holds Sentry error reporting configuration
type SentryConfig struct {
	DSN string
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Enabled      bool
	OTLPEndpoint string
	SampleRatio  float64
}

// BreakerConfig holds circuit breaker tuning knobs shared by remote adapters
type BreakerConfig struct {
	IntervalSeconds  int
	TimeoutSeconds   int
	FailureThreshold int
	SuccessThreshold int
}

// SecretsConfig selects where secret:// references in other settings are resolved
type SecretsConfig struct {
	Provider     string // aws, vault or file; empty disables resolution
	CacheTTL     time.Duration
	AWSRegion    string
	AWSEndpoint  string
	VaultAddress string
	VaultToken   string
	VaultMount   string
	FileBasePath string
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 60),
			CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "crediscore"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxConns:       getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:       getEnvAsInt("DB_MIN_CONNS", 5),
			MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "file://migrations"),
			AutoMigrate:    getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		OCR: OCRConfig{
			APIKey:          getEnv("OCR_API_KEY", ""),
			Endpoint:        getEnv("OCR_ENDPOINT", "https://api.ocr.space/parse/image"),
			PrimaryEngine:   getEnvAsInt("OCR_PRIMARY_ENGINE", 2),
			SecondaryEngine: getEnvAsInt("OCR_SECONDARY_ENGINE", 1),
			Timeout:         getEnvAsDuration("OCR_TIMEOUT", 30*time.Second),
		},
		Completion: CompletionConfig{
			APIKey:      getEnv("COMPLETION_API_KEY", ""),
			BaseURL:     getEnv("COMPLETION_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("COMPLETION_MODEL", "gpt-4o-mini"),
			Temperature: getEnvAsFloat("COMPLETION_TEMPERATURE", 0.1),
			MaxTokens:   getEnvAsInt("COMPLETION_MAX_TOKENS", 1500),
			Timeout:     getEnvAsDuration("COMPLETION_TIMEOUT", 30*time.Second),
		},
		FraudService: FraudServiceConfig{
			BaseURL: getEnv("FRAUD_SERVICE_URL", "http://localhost:8000"),
			Timeout: getEnvAsDuration("FRAUD_SERVICE_TIMEOUT", 10*time.Second),
		},
		Storage: StorageConfig{
			Enabled:    getEnvAsBool("STORAGE_ENABLED", false),
			Bucket:     getEnv("STORAGE_BUCKET", ""),
			Region:     getEnv("STORAGE_REGION", "us-east-1"),
			Endpoint:   getEnv("STORAGE_ENDPOINT", ""),
			AccessKey:  getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:  getEnv("STORAGE_SECRET_KEY", ""),
			BaseURL:    getEnv("STORAGE_BASE_URL", ""),
			PresignTTL: getEnvAsDuration("STORAGE_PRESIGN_TTL", 15*time.Minute),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Enabled: getEnvAsBool("NATS_ENABLED", false),
		},
		Sentry: SentryConfig{
			DSN: getEnv("SENTRY_DSN", ""),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvAsBool("TRACING_ENABLED", false),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRatio:  getEnvAsFloat("TRACING_SAMPLE_RATIO", 0.1),
		},
		Breaker: BreakerConfig{
			IntervalSeconds:  getEnvAsInt("BREAKER_INTERVAL_SECONDS", 60),
			TimeoutSeconds:   getEnvAsInt("BREAKER_TIMEOUT_SECONDS", 30),
			FailureThreshold: getEnvAsInt("BREAKER_FAILURE_THRESHOLD", 5),
			SuccessThreshold: getEnvAsInt("BREAKER_SUCCESS_THRESHOLD", 1),
		},
		Secrets: SecretsConfig{
			Provider:     getEnv("SECRETS_PROVIDER", ""),
			CacheTTL:     getEnvAsDuration("SECRETS_CACHE_TTL", 5*time.Minute),
			AWSRegion:    getEnv("SECRETS_AWS_REGION", getEnv("STORAGE_REGION", "us-east-1")),
			AWSEndpoint:  getEnv("SECRETS_AWS_ENDPOINT", ""),
			VaultAddress: getEnv("VAULT_ADDR", ""),
			VaultToken:   getEnv("VAULT_TOKEN", ""),
			VaultMount:   getEnv("VAULT_MOUNT", "secret"),
			FileBasePath: getEnv("SECRETS_FILE_PATH", "/var/run/secrets/crediscore"),
		},
	}

	if cfg.Server.Environment == "production" && cfg.Completion.APIKey == "" {
		return nil, fmt.Errorf("COMPLETION_API_KEY is required in production")
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the database connection string in URL form (used by migrations)
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
