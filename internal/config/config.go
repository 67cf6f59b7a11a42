package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/ulule/limiter/v3"

	"github.com/dgallion1/pdfchunk/internal/chunker"
)

type Config struct {
	Port           string `env:"PORT" envDefault:"8000"`
	AppName        string `env:"APP_NAME" envDefault:"PDF Extraction Service"`
	ServiceName    string `env:"SERVICE_NAME" envDefault:"pdf-extraction"`
	ServiceVersion string `env:"SERVICE_VERSION" envDefault:"1.0.0"`
	Debug          bool   `env:"DEBUG"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Auth is disabled when APIKey is empty.
	APIKey      string   `env:"API_KEY"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	// RateLimit uses the "<limit>-<S|M|H|D>" form, e.g. "60-M". Empty disables it.
	RateLimit string `env:"RATE_LIMIT"`

	// Upload limits
	MaxFileSizeMB int `env:"MAX_FILE_SIZE_MB" envDefault:"10"`

	// Chunking defaults
	DefaultChunkSize    int `env:"DEFAULT_CHUNK_SIZE" envDefault:"1000"`
	DefaultChunkOverlap int `env:"DEFAULT_CHUNK_OVERLAP" envDefault:"200"`

	// PDF
	PDFFallbackPdftotext bool `env:"PDF_FALLBACK_PDFTOTEXT" envDefault:"true"`

	// Worker pool
	WorkerCount          int `env:"WORKER_COUNT" envDefault:"4"`
	MaxQueueSize         int `env:"MAX_QUEUE_SIZE" envDefault:"100"`
	MaxConcurrentExtract int `env:"MAX_CONCURRENT_EXTRACT" envDefault:"4"`

	// ResultCacheSize is the number of results kept for repeat uploads; 0 disables the cache.
	ResultCacheSize int `env:"RESULT_CACHE_SIZE" envDefault:"128"`

	// Job and stats retention
	JobTTL      time.Duration `env:"JOB_TTL" envDefault:"1h"`
	StatsWindow time.Duration `env:"STATS_WINDOW" envDefault:"1h"`
}

// Load reads an optional .env file and then the process environment.
// Non-positive numeric settings fall back to their defaults.
func Load(envFiles ...string) (Config, error) {
	// A missing .env is the normal production case.
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.MaxFileSizeMB <= 0 {
		cfg.MaxFileSizeMB = 10
	}
	if cfg.DefaultChunkSize <= 0 {
		cfg.DefaultChunkSize = 1000
	}
	if cfg.DefaultChunkOverlap < 0 {
		cfg.DefaultChunkOverlap = 200
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentExtract <= 0 {
		cfg.MaxConcurrentExtract = 4
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = time.Hour
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if err := c.ChunkConfig().Validate(); err != nil {
		return fmt.Errorf("DEFAULT_CHUNK_OVERLAP/DEFAULT_CHUNK_SIZE: %w", err)
	}
	if c.ResultCacheSize < 0 {
		return fmt.Errorf("RESULT_CACHE_SIZE must not be negative, got %d", c.ResultCacheSize)
	}
	if c.RateLimit != "" {
		if _, err := limiter.NewRateFromFormatted(c.RateLimit); err != nil {
			return fmt.Errorf("RATE_LIMIT: %w", err)
		}
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	return nil
}

// ChunkConfig returns the default chunker settings.
func (c Config) ChunkConfig() chunker.Config {
	return chunker.Config{
		WindowSize: c.DefaultChunkSize,
		Overlap:    c.DefaultChunkOverlap,
	}
}

// MaxUploadBytes is the upload limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}
