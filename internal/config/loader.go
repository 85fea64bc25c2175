package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.lungscan.yaml",               // Project-specific config (highest priority)
	"~/.config/lungscan/config.yaml", // User config
	"/etc/lungscan/config.yaml",      // System config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
	getenv      func(string) string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
		getenv:      os.Getenv,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables
// 3. ./.lungscan.yaml
// 4. ~/.config/lungscan/config.yaml
// 5. /etc/lungscan/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Lowest priority first so later files win
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			expandedPath := expandPath(l.configPaths[i])
			if !fileExists(expandedPath) {
				continue
			}
			if err := l.loadFromFile(config, expandedPath); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
			}
		}
	}

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile decodes a YAML file over the existing config.
// Keys absent from the file keep their current value.
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() or comes from ConfigPaths
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Decode into a copy so a parse error leaves config untouched
	merged := *config
	merged.Input.AllowedTypes = append([]string(nil), config.Input.AllowedTypes...)
	if err := yaml.Unmarshal(data, &merged); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	*config = merged

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		// Service Config
		"LUNGSCAN_SERVICE_BASE_URL":         func(v string) error { config.Service.BaseURL = v; return nil },
		"LUNGSCAN_SERVICE_PREDICT_PATH":     func(v string) error { config.Service.PredictPath = v; return nil },
		"LUNGSCAN_SERVICE_HEALTH_PATH":      func(v string) error { config.Service.HealthPath = v; return nil },
		"LUNGSCAN_SERVICE_TIMEOUT":          func(v string) error { return parseDuration(v, &config.Service.Timeout) },
		"LUNGSCAN_SERVICE_PROBE_TIMEOUT":    func(v string) error { return parseDuration(v, &config.Service.ProbeTimeout) },
		"LUNGSCAN_SERVICE_MAX_UPLOAD_BYTES": func(v string) error { return parseInt64(v, &config.Service.MaxUploadBytes) },
		"LUNGSCAN_SERVICE_RATE_LIMIT":       func(v string) error { return parseFloat(v, &config.Service.RateLimit) },

		// Input Config
		"LUNGSCAN_INPUT_WATCH_DIR": func(v string) error { config.Input.WatchDir = v; return nil },

		// Report Config
		"LUNGSCAN_REPORT_OUTPUT_DIR":       func(v string) error { config.Report.OutputDir = v; return nil },
		"LUNGSCAN_REPORT_TIMESTAMP_FORMAT": func(v string) error { config.Report.TimestampFormat = v; return nil },
		"LUNGSCAN_REPORT_FORMAT":           func(v string) error { config.Report.Format = v; return nil },

		// Output Config
		"LUNGSCAN_OUTPUT_COLOR_MODE": func(v string) error { config.Output.ColorMode = v; return nil },
		"LUNGSCAN_OUTPUT_VERBOSE":    func(v string) error { return parseBool(v, &config.Output.Verbose) },
		"LUNGSCAN_OUTPUT_THEME":      func(v string) error { config.Output.Theme = v; return nil },
		"LUNGSCAN_OUTPUT_EMOJI":      func(v string) error { return parseBool(v, &config.Output.Emoji) },
	}

	for envVar, setter := range envMappings {
		if value := l.getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	// Comma-separated MIME allow-list
	if types := l.getenv("LUNGSCAN_INPUT_ALLOWED_TYPES"); types != "" {
		config.Input.AllowedTypes = strings.Split(types, ",")
		for i, t := range config.Input.AllowedTypes {
			config.Input.AllowedTypes[i] = strings.TrimSpace(t)
		}
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := expandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// Helper functions

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if strings.HasPrefix(absPath, "/proc/") || strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// ExpandPath is the exported form of expandPath for CLI flags
func ExpandPath(path string) string {
	return expandPath(path)
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Type conversion helpers

func parseInt64(s string, dst *int64) error {
	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseFloat(s string, dst *float64) error {
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
