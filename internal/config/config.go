package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Lixing-Zhang/potluck/internal/models"
)

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server     ServerConfig
	Backend    BackendConfig
	Session    SessionConfig
	Categories []models.Category
	LogLevel   string
	LogFormat  string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
	CORSOrigins     []string
}

type BackendConfig struct {
	URL string
	// Timeout in seconds for each backend call. 0 disables the timeout.
	Timeout int
}

type SessionConfig struct {
	// Capacity bounds how many browser sessions are held at once.
	Capacity int
}

// Environment variables for the category configuration
const (
	EnvCategoryNames  = "CATEGORY_NAMES"
	EnvCategoryLabels = "CATEGORY_LABELS"
	EnvCategoryMaxQty = "CATEGORY_MAX_QTY"
)

// LoadDotEnv loads variables from .env files without overriding the real
// environment. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 60),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
			CORSOrigins:     getEnvAsSlice("CORS_ORIGINS", []string{"*"}),
		},
		Backend: BackendConfig{
			URL:     getEnv("BACKEND_URL", "http://localhost:8000"),
			Timeout: getEnvAsInt("BACKEND_TIMEOUT", 0),
		},
		Session: SessionConfig{
			Capacity: getEnvAsInt("SESSION_CAPACITY", 1024),
		},
		Categories: LoadCategories(
			os.Getenv(EnvCategoryNames),
			os.Getenv(EnvCategoryLabels),
			os.Getenv(EnvCategoryMaxQty),
		),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Backend.URL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}

	if c.Backend.Timeout < 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must not be negative")
	}

	if c.Session.Capacity <= 0 {
		return fmt.Errorf("SESSION_CAPACITY must be positive")
	}

	if len(c.Categories) == 0 {
		return fmt.Errorf("at least one category must be configured")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// LoadCategories builds the category list from the three parallel lists.
// Each list is either comma separated or a JSON array. Lists that are unset
// or malformed fall back to the defaults; if the resulting lists still have
// different lengths, the whole configuration falls back to the defaults.
func LoadCategories(rawNames, rawLabels, rawMax string) []models.Category {
	defaults := models.DefaultCategories()
	defNames := make([]string, len(defaults))
	defLabels := make([]string, len(defaults))
	defMax := make([]int, len(defaults))
	for i, c := range defaults {
		defNames[i] = c.Name
		defLabels[i] = c.Label
		defMax[i] = c.Max
	}

	names, ok := parseList(rawNames)
	if !ok {
		names = defNames
	}
	labels, ok := parseList(rawLabels)
	if !ok {
		labels = defLabels
	}
	maxQty, ok := parseIntList(rawMax)
	if !ok {
		maxQty = defMax
	}

	if len(labels) != len(names) || len(maxQty) != len(names) {
		return defaults
	}

	categories := make([]models.Category, len(names))
	for i := range names {
		categories[i] = models.Category{Name: names[i], Label: labels[i], Max: maxQty[i]}
	}
	return categories
}

// parseList decodes a JSON array or a comma separated string. Blank items
// are dropped; an empty result counts as malformed.
func parseList(raw string) ([]string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}

	var items []string
	if strings.HasPrefix(raw, "[") {
		var values []any
		if err := json.Unmarshal([]byte(raw), &values); err != nil {
			return nil, false
		}
		for _, v := range values {
			switch v := v.(type) {
			case string:
				items = append(items, v)
			case float64:
				items = append(items, strconv.FormatFloat(v, 'f', -1, 64))
			default:
				return nil, false
			}
		}
	} else {
		items = strings.Split(raw, ",")
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out, len(out) > 0
}

// parseIntList parses a list of non-negative integers.
func parseIntList(raw string) ([]int, bool) {
	items, ok := parseList(raw)
	if !ok {
		return nil, false
	}
	out := make([]int, len(items))
	for i, item := range items {
		n, err := strconv.Atoi(item)
		if err != nil || n < 0 {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
