package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	OCR      OCRConfig
	Callback CallbackConfig
}

// ServerConfig holds HTTP/gRPC server configuration
type ServerConfig struct {
	HTTPAddr      string
	GRPCAddr      string
	BasicAuthUser string
	BasicAuthPass string
}

// DatabaseConfig holds the job store configuration. An empty DSN selects the
// embedded SQLite store at SQLitePath.
type DatabaseConfig struct {
	DSN             string
	SQLitePath      string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// OCRConfig holds engine and image handling configuration
type OCRConfig struct {
	Tesseract        string
	Language         string
	TessdataDir      string
	TSVConfidence    bool
	ArtifactCacheDir string
	MaxImageSizeMB   int
	FetchTimeout     time.Duration
}

// CallbackConfig holds asynchronous result delivery configuration
type CallbackConfig struct {
	Secret    string
	Timeout   time.Duration
	Workers   int
	QueueSize int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:      getEnv("HTTP_ADDR", ":8000"),
			GRPCAddr:      getEnv("GRPC_ADDR", ":8081"),
			BasicAuthUser: getEnv("OCR_BASIC_AUTH_USER", "ocr_user"),
			BasicAuthPass: getEnv("OCR_BASIC_AUTH_PASS", "ocr_secret_2024"),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			SQLitePath:      getEnv("SQLITE_PATH", "./ocr-jobs.db"),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		OCR: OCRConfig{
			Tesseract:        getEnv("TESSERACT_BIN", "tesseract"),
			Language:         getEnv("OCR_LANG", "spa"),
			TessdataDir:      getEnv("TESSDATA_PREFIX", ""),
			TSVConfidence:    getEnvAsBool("OCR_TSV_CONFIDENCE", true),
			ArtifactCacheDir: getEnv("ARTIFACT_CACHE_DIR", "./tmp"),
			MaxImageSizeMB:   getEnvAsInt("MAX_IMAGE_SIZE_MB", 10),
			FetchTimeout:     getEnvAsDuration("IMAGE_FETCH_TIMEOUT", 30*time.Second),
		},
		Callback: CallbackConfig{
			Secret:    getEnv("CALLBACK_SECRET", "callback_secret_key"),
			Timeout:   getEnvAsDuration("CALLBACK_TIMEOUT", 30*time.Second),
			Workers:   getEnvAsInt("CALLBACK_WORKERS", 4),
			QueueSize: getEnvAsInt("CALLBACK_QUEUE_SIZE", 256),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Server.BasicAuthUser == "" || c.Server.BasicAuthPass == "" {
		return NewAppError("CONFIG_ERROR", "basic auth credentials are required", ErrInvalidInput)
	}
	if c.OCR.MaxImageSizeMB <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_IMAGE_SIZE_MB must be positive", ErrInvalidInput)
	}
	if c.Database.DSN == "" && c.Database.SQLitePath == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL or SQLITE_PATH is required", ErrInvalidInput)
	}
	return nil
}
