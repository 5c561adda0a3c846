package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"MDSITE_CONFIG", "PORT", "SITESTORE_URL", "SITESTORE_API_KEY", "SITE_NAME",
	"MDSITE_API_KEY", "WORKER_COUNT", "MAX_QUEUE_SIZE", "MAX_CONCURRENT_PUBLISH",
	"MAX_UPLOAD_BYTES", "INDEX_CHUNK_SIZE", "INDEX_CHUNK_OVERLAP", "JOB_TTL",
	"PDF_FALLBACK_PDFTOTEXT", "STATS_WINDOW",
}

// clearEnv blanks every variable Load reads; an empty value counts as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != Defaults() {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, Defaults())
	}
	if cfg.PublishEnabled() {
		t.Error("publishing should be off without SITESTORE_URL")
	}
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("SITESTORE_URL", "http://store:8080")
	t.Setenv("SITESTORE_API_KEY", "sk")
	t.Setenv("MDSITE_API_KEY", "ak")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("JOB_TTL", "30m")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")
	t.Setenv("MAX_UPLOAD_BYTES", "2048")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9000" || cfg.WorkerCount != 8 || cfg.JobTTL != 30*time.Minute {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback off")
	}
	if cfg.MaxUploadBytes != 2048 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if !cfg.PublishEnabled() {
		t.Error("expected publishing on")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_ClampsNonPositive(t *testing.T) {
	clearEnv(t)
	t.Setenv("WORKER_COUNT", "0")
	t.Setenv("MAX_QUEUE_SIZE", "-5")
	t.Setenv("INDEX_CHUNK_SIZE", "nope")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WorkerCount != 4 || cfg.MaxQueueSize != 100 || cfg.IndexChunkSize != 300 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_YAMLOverlay(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "mdsite.yaml")
	data := "site_name: docs\nworker_count: 2\njob_ttl: 10m\npdf_fallback_pdftotext: false\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MDSITE_CONFIG", path)
	t.Setenv("WORKER_COUNT", "6")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SiteName != "docs" {
		t.Errorf("SiteName = %q, want %q", cfg.SiteName, "docs")
	}
	if cfg.JobTTL != 10*time.Minute {
		t.Errorf("JobTTL = %v", cfg.JobTTL)
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("overlay should turn the fallback off")
	}
	if cfg.WorkerCount != 6 {
		t.Errorf("env should win over file: WorkerCount = %d", cfg.WorkerCount)
	}
	if cfg.Port != "8090" {
		t.Errorf("unset keys keep defaults: Port = %q", cfg.Port)
	}
}

func TestLoad_YAMLOverlayErrors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	t.Setenv("MDSITE_CONFIG", filepath.Join(dir, "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Error("expected error for missing file")
	}

	unknown := filepath.Join(dir, "unknown.yaml")
	if err := os.WriteFile(unknown, []byte("colour: blue\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MDSITE_CONFIG", unknown)
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Errorf("expected strict parse error, got %v", err)
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MDSITE_CONFIG", empty)
	if _, err := Load(); err != nil {
		t.Errorf("empty overlay should be ignored, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := Defaults()
	base.APIKey = "k"

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"missing api key", func(c *Config) { c.APIKey = "" }, "MDSITE_API_KEY"},
		{"store without key", func(c *Config) { c.SitestoreURL = "http://x" }, "SITESTORE_API_KEY"},
		{"store with key", func(c *Config) { c.SitestoreURL = "http://x"; c.SitestoreAPIKey = "s" }, ""},
		{"overlap too big", func(c *Config) { c.IndexChunkOverlap = c.IndexChunkSize }, "INDEX_CHUNK_OVERLAP"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
