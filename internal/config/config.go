package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds the complete application configuration
type Config struct {
	Version string        `yaml:"version" json:"version"`
	Service ServiceConfig `yaml:"service" json:"service"`
	Input   InputConfig   `yaml:"input" json:"input"`
	Report  ReportConfig  `yaml:"report" json:"report"`
	Output  OutputConfig  `yaml:"output" json:"output"`
}

// ServiceConfig configures the remote prediction service
type ServiceConfig struct {
	BaseURL        string        `yaml:"base_url" json:"base_url"`                 // prediction service root
	PredictPath    string        `yaml:"predict_path" json:"predict_path"`         // upload endpoint
	HealthPath     string        `yaml:"health_path" json:"health_path"`           // startup probe endpoint
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`                   // prediction request timeout
	ProbeTimeout   time.Duration `yaml:"probe_timeout" json:"probe_timeout"`       // health probe timeout
	MaxUploadBytes int64         `yaml:"max_upload_bytes" json:"max_upload_bytes"` // largest image accepted
	RateLimit      float64       `yaml:"rate_limit" json:"rate_limit"`             // batch uploads per second, 0 = unlimited
}

// InputConfig configures how images are selected
type InputConfig struct {
	AllowedTypes []string `yaml:"allowed_types" json:"allowed_types"`
	WatchDir     string   `yaml:"watch_dir" json:"watch_dir"` // drop folder, empty disables
}

// ReportConfig configures exported reports
type ReportConfig struct {
	OutputDir       string `yaml:"output_dir" json:"output_dir"`
	TimestampFormat string `yaml:"timestamp_format" json:"timestamp_format"`
	Format          string `yaml:"format" json:"format"` // text|markdown|json
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	ColorMode string `yaml:"color_mode" json:"color_mode"` // auto|always|never
	Verbose   bool   `yaml:"verbose" json:"verbose"`
	Theme     string `yaml:"theme" json:"theme"`
	Emoji     bool   `yaml:"emoji" json:"emoji"`
}

// DefaultAllowedTypes is the image MIME allow-list
var DefaultAllowedTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/gif"}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	allowed := make([]string, len(DefaultAllowedTypes))
	copy(allowed, DefaultAllowedTypes)

	return &Config{
		Version: "1.0",
		Service: ServiceConfig{
			BaseURL:        "http://localhost:8000",
			PredictPath:    "/predict/",
			HealthPath:     "/docs",
			Timeout:        30 * time.Second,
			ProbeTimeout:   5 * time.Second,
			MaxUploadBytes: 10 << 20, // 10MB
		},
		Input: InputConfig{
			AllowedTypes: allowed,
			WatchDir:     "",
		},
		Report: ReportConfig{
			OutputDir:       ".",
			TimestampFormat: "2006-01-02 15:04:05",
			Format:          "text",
		},
		Output: OutputConfig{
			ColorMode: "auto",
			Verbose:   false,
			Theme:     "default",
			Emoji:     true,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateServiceConfig(); err != nil {
		return err
	}
	if err := c.validateInputConfig(); err != nil {
		return err
	}
	if err := c.validateReportConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	return nil
}

// validateServiceConfig validates prediction service settings
func (c *Config) validateServiceConfig() error {
	if c.Service.BaseURL == "" {
		return fmt.Errorf("service base_url is required")
	}
	u, err := url.Parse(c.Service.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid service base_url: %s", c.Service.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid service base_url scheme: %s (must be http or https)", u.Scheme)
	}
	if c.Service.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	if c.Service.ProbeTimeout < 0 {
		return fmt.Errorf("probe_timeout must be non-negative")
	}
	if c.Service.MaxUploadBytes < 1 {
		return fmt.Errorf("max_upload_bytes must be greater than 0")
	}
	if c.Service.RateLimit < 0 {
		return fmt.Errorf("rate_limit must be non-negative")
	}
	return nil
}

// validateInputConfig validates input selection settings
func (c *Config) validateInputConfig() error {
	if len(c.Input.AllowedTypes) == 0 {
		return fmt.Errorf("allowed_types must list at least one MIME type")
	}
	for _, t := range c.Input.AllowedTypes {
		if t == "" {
			return fmt.Errorf("allowed_types must not contain empty entries")
		}
	}
	return nil
}

// validateReportConfig validates report export settings
func (c *Config) validateReportConfig() error {
	if c.Report.Format != "" {
		validFormats := map[string]bool{
			"text":     true,
			"markdown": true,
			"json":     true,
		}
		if !validFormats[c.Report.Format] {
			return fmt.Errorf("invalid report format: %s (must be one of: text, markdown, json)", c.Report.Format)
		}
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	if c.Output.Theme != "" {
		validThemes := map[string]bool{
			"default":       true,
			"high-contrast": true,
			"minimal":       true,
		}
		if !validThemes[c.Output.Theme] {
			return fmt.Errorf("invalid theme: %s (must be one of: default, high-contrast, minimal)", c.Output.Theme)
		}
	}
	return nil
}

// PredictURL returns the absolute prediction endpoint
func (c *Config) PredictURL() string {
	return joinURL(c.Service.BaseURL, c.Service.PredictPath)
}

// HealthURL returns the absolute health probe endpoint
func (c *Config) HealthURL() string {
	return joinURL(c.Service.BaseURL, c.Service.HealthPath)
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
