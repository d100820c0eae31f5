package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DOCSCAN_LOG_LEVEL", "DOCSCAN_LOG_FORMAT", "DOCSCAN_WORKERS",
		"DOCSCAN_INFERENCE_URL", "DOCSCAN_INFERENCE_TIMEOUT", "DOCSCAN_MIN_CONFIDENCE",
		"DOCSCAN_JPEG_QUALITY", "DOCSCAN_OUTPUT_DIR", "DOCSCAN_OCR_LANGUAGE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel: got %q, want info", cfg.LogLevel)
	}
	if cfg.Workers <= 0 {
		t.Errorf("Workers: got %d, want > 0", cfg.Workers)
	}
	if cfg.InferenceURL != "" {
		t.Errorf("InferenceURL: got %q, want empty", cfg.InferenceURL)
	}
	if cfg.MinConfidence != 0.6 {
		t.Errorf("MinConfidence: got %v, want 0.6", cfg.MinConfidence)
	}
	if cfg.JPEGQuality != 80 {
		t.Errorf("JPEGQuality: got %d, want 80", cfg.JPEGQuality)
	}
	if cfg.OutputDir != os.TempDir() {
		t.Errorf("OutputDir: got %q, want %q", cfg.OutputDir, os.TempDir())
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOCSCAN_WORKERS", "3")
	t.Setenv("DOCSCAN_INFERENCE_URL", "http://localhost:5000")
	t.Setenv("DOCSCAN_INFERENCE_TIMEOUT", "2s")
	t.Setenv("DOCSCAN_MIN_CONFIDENCE", "0.75")
	t.Setenv("DOCSCAN_JPEG_QUALITY", "90")
	t.Setenv("DOCSCAN_OUTPUT_DIR", "/var/tmp/scans")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if cfg.Workers != 3 {
		t.Errorf("Workers: got %d, want 3", cfg.Workers)
	}
	if cfg.InferenceURL != "http://localhost:5000" {
		t.Errorf("InferenceURL: got %q", cfg.InferenceURL)
	}
	if cfg.InferenceTimeout != 2*time.Second {
		t.Errorf("InferenceTimeout: got %s", cfg.InferenceTimeout)
	}
	if cfg.MinConfidence != 0.75 {
		t.Errorf("MinConfidence: got %v", cfg.MinConfidence)
	}
	if cfg.JPEGQuality != 90 {
		t.Errorf("JPEGQuality: got %d", cfg.JPEGQuality)
	}
	if cfg.OutputDir != "/var/tmp/scans" {
		t.Errorf("OutputDir: got %q", cfg.OutputDir)
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"zero workers", "DOCSCAN_WORKERS", "0"},
		{"confidence above one", "DOCSCAN_MIN_CONFIDENCE", "1.5"},
		{"confidence zero", "DOCSCAN_MIN_CONFIDENCE", "0"},
		{"quality too high", "DOCSCAN_JPEG_QUALITY", "101"},
		{"quality zero", "DOCSCAN_JPEG_QUALITY", "0"},
		{"non-http inference url", "DOCSCAN_INFERENCE_URL", "localhost:5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := LoadFromEnv(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoadFromEnv_BadDurationFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOCSCAN_INFERENCE_TIMEOUT", "soon")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.InferenceTimeout != 10*time.Second {
		t.Errorf("InferenceTimeout: got %s, want default 10s", cfg.InferenceTimeout)
	}
}
