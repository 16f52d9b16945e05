package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Model    ModelConfig
	Pipeline PipelineConfig
	Archive  ArchiveConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	BodyLimit    int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type ModelConfig struct {
	ArtifactDir string
	// Required makes an artifact load failure fatal for the process instead of
	// serving 503 on every endpoint.
	Required bool
}

type PipelineConfig struct {
	Concurrency    int
	RequestTimeout time.Duration
	DefaultTopK    int
}

type ArchiveConfig struct {
	MaxEntries    int
	MaxTotalBytes int64
	MaxDepth      int
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment and default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8000"),
			Env:          getEnv("ENV", "development"),
			BodyLimit:    getEnvAsInt64("MAX_UPLOAD_SIZE", 52428800),
			ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", "60s"),
			WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", "60s"),
		},
		Model: ModelConfig{
			ArtifactDir: getEnv("MODEL_DIR", "./models"),
			Required:    getEnvAsBool("MODEL_REQUIRED", false),
		},
		Pipeline: PipelineConfig{
			Concurrency:    getEnvAsInt("PIPELINE_CONCURRENCY", 4),
			RequestTimeout: getEnvAsDuration("PIPELINE_TIMEOUT", "60s"),
			DefaultTopK:    getEnvAsInt("DEFAULT_TOP_K", 5),
		},
		Archive: ArchiveConfig{
			MaxEntries:    getEnvAsInt("ARCHIVE_MAX_ENTRIES", 200),
			MaxTotalBytes: getEnvAsInt64("ARCHIVE_MAX_TOTAL_BYTES", 104857600),
			MaxDepth:      getEnvAsInt("ARCHIVE_MAX_DEPTH", 2),
		},
		Log: LogConfig{
			JSON:  getEnvAsBool("LOG_JSON", false),
			Debug: getEnvAsBool("LOG_DEBUG", false),
		},
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.Server.BodyLimit <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive, got %d", c.Server.BodyLimit)
	}
	if c.Pipeline.Concurrency <= 0 {
		return fmt.Errorf("PIPELINE_CONCURRENCY must be positive, got %d", c.Pipeline.Concurrency)
	}
	if c.Pipeline.RequestTimeout < 0 {
		return fmt.Errorf("PIPELINE_TIMEOUT must not be negative, got %s", c.Pipeline.RequestTimeout)
	}
	if c.Pipeline.DefaultTopK <= 0 {
		return fmt.Errorf("DEFAULT_TOP_K must be positive, got %d", c.Pipeline.DefaultTopK)
	}
	if c.Archive.MaxEntries <= 0 {
		return fmt.Errorf("ARCHIVE_MAX_ENTRIES must be positive, got %d", c.Archive.MaxEntries)
	}
	if c.Archive.MaxTotalBytes <= 0 {
		return fmt.Errorf("ARCHIVE_MAX_TOTAL_BYTES must be positive, got %d", c.Archive.MaxTotalBytes)
	}
	if c.Archive.MaxDepth <= 0 {
		return fmt.Errorf("ARCHIVE_MAX_DEPTH must be positive, got %d", c.Archive.MaxDepth)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
