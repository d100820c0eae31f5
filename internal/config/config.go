// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Config holds all process settings. Zero values are never valid; use
// LoadFromEnv or Default.
type Config struct {
	LogLevel  string
	LogFormat string

	// Workers is the size of the pipeline worker pool.
	Workers int

	// InferenceURL is the base URL of a rectangle-inference service.
	// Empty selects the contour-search detector.
	InferenceURL     string
	InferenceTimeout time.Duration
	MinConfidence    float64

	JPEGQuality int
	OutputDir   string
	OCRLanguage string
}

// Default returns the configuration used when no environment is set.
func Default() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "json",
		Workers:          runtime.NumCPU(),
		InferenceTimeout: 10 * time.Second,
		MinConfidence:    0.6,
		JPEGQuality:      80,
		OutputDir:        os.TempDir(),
		OCRLanguage:      "eng",
	}
}

// LoadFromEnv reads DOCSCAN_* variables over the defaults and validates them.
func LoadFromEnv() (*Config, error) {
	def := Default()
	cfg := &Config{
		LogLevel:         getEnvOrDefault("DOCSCAN_LOG_LEVEL", def.LogLevel),
		LogFormat:        getEnvOrDefault("DOCSCAN_LOG_FORMAT", def.LogFormat),
		Workers:          int(parseIntOrDefault("DOCSCAN_WORKERS", int64(def.Workers))),
		InferenceURL:     strings.TrimSpace(os.Getenv("DOCSCAN_INFERENCE_URL")),
		InferenceTimeout: parseDurationOrDefault("DOCSCAN_INFERENCE_TIMEOUT", def.InferenceTimeout),
		MinConfidence:    parseFloatOrDefault("DOCSCAN_MIN_CONFIDENCE", def.MinConfidence),
		JPEGQuality:      int(parseIntOrDefault("DOCSCAN_JPEG_QUALITY", int64(def.JPEGQuality))),
		OutputDir:        getEnvOrDefault("DOCSCAN_OUTPUT_DIR", def.OutputDir),
		OCRLanguage:      getEnvOrDefault("DOCSCAN_OCR_LANGUAGE", def.OCRLanguage),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("DOCSCAN_WORKERS must be > 0 (got %d)", c.Workers)
	}
	if c.InferenceTimeout <= 0 {
		return fmt.Errorf("DOCSCAN_INFERENCE_TIMEOUT must be > 0 (got %s)", c.InferenceTimeout)
	}
	if math.IsNaN(c.MinConfidence) || c.MinConfidence <= 0 || c.MinConfidence > 1 {
		return fmt.Errorf("DOCSCAN_MIN_CONFIDENCE must be in (0,1] (got %v)", c.MinConfidence)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("DOCSCAN_JPEG_QUALITY must be in [1,100] (got %d)", c.JPEGQuality)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("DOCSCAN_OUTPUT_DIR must not be empty")
	}
	if c.InferenceURL != "" && !strings.HasPrefix(c.InferenceURL, "http://") && !strings.HasPrefix(c.InferenceURL, "https://") {
		return fmt.Errorf("DOCSCAN_INFERENCE_URL must be an http(s) URL (got %q)", c.InferenceURL)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}
