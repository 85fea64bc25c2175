package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", cfg.Version)
	}

	if cfg.Service.BaseURL != "http://localhost:8000" {
		t.Errorf("Expected base URL http://localhost:8000, got %s", cfg.Service.BaseURL)
	}

	if cfg.Service.Timeout != 30*time.Second {
		t.Errorf("Expected timeout 30s, got %v", cfg.Service.Timeout)
	}

	if len(cfg.Input.AllowedTypes) != 4 {
		t.Errorf("Expected 4 allowed types, got %d", len(cfg.Input.AllowedTypes))
	}

	if cfg.Report.Format != "text" {
		t.Errorf("Expected report format text, got %s", cfg.Report.Format)
	}
}

func TestDefaultConfigAllowedTypesAreCopied(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Input.AllowedTypes[0] = "image/bmp"

	if DefaultAllowedTypes[0] != "image/jpeg" {
		t.Errorf("DefaultAllowedTypes was mutated through a config: %v", DefaultAllowedTypes)
	}
}

func TestConfigValidation(t *testing.T) {
	withService := func(mut func(*Config)) *Config {
		cfg := DefaultConfig()
		mut(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name:    "missing base url",
			config:  withService(func(c *Config) { c.Service.BaseURL = "" }),
			wantErr: true,
			errMsg:  "service base_url is required",
		},
		{
			name:    "relative base url",
			config:  withService(func(c *Config) { c.Service.BaseURL = "localhost:8000" }),
			wantErr: true,
		},
		{
			name:    "unsupported scheme",
			config:  withService(func(c *Config) { c.Service.BaseURL = "ftp://example.com" }),
			wantErr: true,
			errMsg:  "invalid service base_url scheme: ftp (must be http or https)",
		},
		{
			name:    "negative timeout",
			config:  withService(func(c *Config) { c.Service.Timeout = -time.Second }),
			wantErr: true,
			errMsg:  "timeout must be non-negative",
		},
		{
			name:    "zero upload limit",
			config:  withService(func(c *Config) { c.Service.MaxUploadBytes = 0 }),
			wantErr: true,
			errMsg:  "max_upload_bytes must be greater than 0",
		},
		{
			name:    "negative rate limit",
			config:  withService(func(c *Config) { c.Service.RateLimit = -1 }),
			wantErr: true,
			errMsg:  "rate_limit must be non-negative",
		},
		{
			name:    "empty allow-list",
			config:  withService(func(c *Config) { c.Input.AllowedTypes = nil }),
			wantErr: true,
			errMsg:  "allowed_types must list at least one MIME type",
		},
		{
			name:    "invalid report format",
			config:  withService(func(c *Config) { c.Report.Format = "pdf" }),
			wantErr: true,
			errMsg:  "invalid report format: pdf (must be one of: text, markdown, json)",
		},
		{
			name:    "invalid color mode",
			config:  withService(func(c *Config) { c.Output.ColorMode = "invalid" }),
			wantErr: true,
			errMsg:  "invalid color mode: invalid (must be one of: auto, always, never)",
		},
		{
			name:    "invalid theme",
			config:  withService(func(c *Config) { c.Output.Theme = "neon" }),
			wantErr: true,
			errMsg:  "invalid theme: neon (must be one of: default, high-contrast, minimal)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none")
				} else if tt.errMsg != "" && err.Error() != tt.errMsg {
					t.Errorf("Expected error message '%s', got '%s'", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestEndpointURLs(t *testing.T) {
	tests := []struct {
		base        string
		wantPredict string
		wantHealth  string
	}{
		{"http://localhost:8000", "http://localhost:8000/predict/", "http://localhost:8000/docs"},
		{"http://localhost:8000/", "http://localhost:8000/predict/", "http://localhost:8000/docs"},
		{"https://scan.example.com/api", "https://scan.example.com/api/predict/", "https://scan.example.com/api/docs"},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Service.BaseURL = tt.base

			if got := cfg.PredictURL(); got != tt.wantPredict {
				t.Errorf("PredictURL() = %s, want %s", got, tt.wantPredict)
			}
			if got := cfg.HealthURL(); got != tt.wantHealth {
				t.Errorf("HealthURL() = %s, want %s", got, tt.wantHealth)
			}
		})
	}
}
