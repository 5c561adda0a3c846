package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/mdsite/internal/yamlutil"
)

type Config struct {
	Port string

	// Page store connection; publishing is off when SitestoreURL is empty.
	SitestoreURL    string
	SitestoreAPIKey string
	SiteName        string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount          int
	MaxQueueSize         int
	MaxConcurrentPublish int

	// Upload limits
	MaxUploadBytes int64

	// Search index
	IndexChunkSize    int
	IndexChunkOverlap int

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Render latency window
	StatsWindow time.Duration
}

// fileConfig is the YAML overlay named by MDSITE_CONFIG. Unset keys keep the
// defaults; environment variables win over both.
type fileConfig struct {
	Port                 *string        `yaml:"port"`
	SitestoreURL         *string        `yaml:"sitestore_url"`
	SiteName             *string        `yaml:"site_name"`
	WorkerCount          *int           `yaml:"worker_count"`
	MaxQueueSize         *int           `yaml:"max_queue_size"`
	MaxConcurrentPublish *int           `yaml:"max_concurrent_publish"`
	MaxUploadBytes       *int64         `yaml:"max_upload_bytes"`
	IndexChunkSize       *int           `yaml:"index_chunk_size"`
	IndexChunkOverlap    *int           `yaml:"index_chunk_overlap"`
	JobTTL               *time.Duration `yaml:"job_ttl"`
	PDFFallbackPdftotext *bool          `yaml:"pdf_fallback_pdftotext"`
	StatsWindow          *time.Duration `yaml:"stats_window"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:                 "8090",
		SiteName:             "default",
		WorkerCount:          4,
		MaxQueueSize:         100,
		MaxConcurrentPublish: 10,
		MaxUploadBytes:       10 << 20, // 10MB
		IndexChunkSize:       300,
		IndexChunkOverlap:    40,
		JobTTL:               1 * time.Hour,
		PDFFallbackPdftotext: true,
		StatsWindow:          1 * time.Hour,
	}
}

// Load reads the optional YAML overlay, then the environment.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("MDSITE_CONFIG"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return cfg, err
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)

	cfg.SitestoreURL = envOr("SITESTORE_URL", cfg.SitestoreURL)
	cfg.SitestoreAPIKey = os.Getenv("SITESTORE_API_KEY")
	cfg.SiteName = envOr("SITE_NAME", cfg.SiteName)

	cfg.APIKey = os.Getenv("MDSITE_API_KEY")

	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.MaxConcurrentPublish = envInt("MAX_CONCURRENT_PUBLISH", cfg.MaxConcurrentPublish)

	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)

	cfg.IndexChunkSize = envInt("INDEX_CHUNK_SIZE", cfg.IndexChunkSize)
	cfg.IndexChunkOverlap = envInt("INDEX_CHUNK_OVERLAP", cfg.IndexChunkOverlap)

	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)
	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)
	cfg.StatsWindow = envDuration("STATS_WINDOW", cfg.StatsWindow)

	cfg.clamp()
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yamlutil.UnmarshalStrict(data, &fc); err != nil {
		if errors.Is(err, yamlutil.ErrNilData) {
			return nil
		}
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setIf(&c.Port, fc.Port)
	setIf(&c.SitestoreURL, fc.SitestoreURL)
	setIf(&c.SiteName, fc.SiteName)
	setIf(&c.WorkerCount, fc.WorkerCount)
	setIf(&c.MaxQueueSize, fc.MaxQueueSize)
	setIf(&c.MaxConcurrentPublish, fc.MaxConcurrentPublish)
	setIf(&c.MaxUploadBytes, fc.MaxUploadBytes)
	setIf(&c.IndexChunkSize, fc.IndexChunkSize)
	setIf(&c.IndexChunkOverlap, fc.IndexChunkOverlap)
	setIf(&c.JobTTL, fc.JobTTL)
	setIf(&c.PDFFallbackPdftotext, fc.PDFFallbackPdftotext)
	setIf(&c.StatsWindow, fc.StatsWindow)
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// clamp replaces non-positive values with defaults.
func (c *Config) clamp() {
	d := Defaults()
	if c.WorkerCount <= 0 {
		c.WorkerCount = d.WorkerCount
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = d.MaxQueueSize
	}
	if c.MaxConcurrentPublish <= 0 {
		c.MaxConcurrentPublish = d.MaxConcurrentPublish
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.IndexChunkSize <= 0 {
		c.IndexChunkSize = d.IndexChunkSize
	}
	if c.IndexChunkOverlap <= 0 {
		c.IndexChunkOverlap = d.IndexChunkOverlap
	}
	if c.JobTTL <= 0 {
		c.JobTTL = d.JobTTL
	}
	if c.StatsWindow <= 0 {
		c.StatsWindow = d.StatsWindow
	}
	if c.SiteName == "" {
		c.SiteName = d.SiteName
	}
}

// PublishEnabled reports whether rendered pages go to the page store.
func (c Config) PublishEnabled() bool {
	return c.SitestoreURL != ""
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("MDSITE_API_KEY is required")
	}
	if c.PublishEnabled() && c.SitestoreAPIKey == "" {
		return fmt.Errorf("SITESTORE_API_KEY is required when SITESTORE_URL is set")
	}
	if c.IndexChunkOverlap >= c.IndexChunkSize {
		return fmt.Errorf("INDEX_CHUNK_OVERLAP (%d) must be below INDEX_CHUNK_SIZE (%d)", c.IndexChunkOverlap, c.IndexChunkSize)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
