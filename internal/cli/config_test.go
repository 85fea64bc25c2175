package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yildizm/LungScan/internal/config"
)

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "lungscan.yaml")

	stdout, _, err := executeCommand(t, "config", "init", "--output", path)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(stdout, "Configuration file created at: "+path) {
		t.Errorf("Unexpected output: %s", stdout)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected config file: %v", err)
	}
	if string(data) != config.SampleConfig() {
		t.Error("Expected the full sample config")
	}

	if _, _, err := executeCommand(t, "config", "init", "--output", path); err == nil {
		t.Error("Expected refusal to overwrite without --force")
	}
	if _, _, err := executeCommand(t, "config", "init", "--output", path, "--minimal", "--force"); err != nil {
		t.Fatalf("config init --force failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != config.MinimalSampleConfig() {
		t.Error("Expected the minimal sample config after --force")
	}
}

func TestConfigShow(t *testing.T) {
	path := writeConfig(t, "service:\n  base_url: \"http://scanner.local:8000\"\nreport:\n  format: markdown\n")

	stdout, _, err := executeCommand(t, "--config", path, "config", "show", "--format", "json")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}

	var cfg config.Config
	if err := json.Unmarshal([]byte(stdout), &cfg); err != nil {
		t.Fatalf("Invalid JSON: %v\n%s", err, stdout)
	}
	if cfg.Service.BaseURL != "http://scanner.local:8000" || cfg.Report.Format != "markdown" {
		t.Errorf("Unexpected config %+v", cfg)
	}
	// untouched keys keep their defaults
	if cfg.Service.PredictPath != "/predict/" {
		t.Errorf("Expected default predict path, got %s", cfg.Service.PredictPath)
	}

	stdout, _, err = executeCommand(t, "--config", path, "config", "show")
	if err != nil || !strings.Contains(stdout, "scanner.local:8000") {
		t.Errorf("Unexpected YAML output (%v): %s", err, stdout)
	}

	if _, _, err := executeCommand(t, "--config", path, "config", "show", "--format", "toml"); err == nil {
		t.Error("Expected unsupported format error")
	}
}

func TestConfigValidate(t *testing.T) {
	valid := writeConfig(t, "output:\n  theme: minimal\n")
	stdout, _, err := executeCommand(t, "--config", valid, "config", "validate")
	if err != nil {
		t.Fatalf("config validate failed: %v", err)
	}
	for _, want := range []string{"[OK] Configuration is valid", "Prediction endpoint: http://localhost:8000/predict/", "Theme: minimal"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("Expected %q in output:\n%s", want, stdout)
		}
	}

	invalid := writeConfig(t, "output:\n  theme: neon\n")
	stdout, _, err = executeCommand(t, "--config", invalid, "config", "validate")
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(stdout, "Configuration validation failed") || !strings.Contains(stdout, "invalid theme: neon") {
		t.Errorf("Unexpected output: %s", stdout)
	}
}

func TestConfigPath(t *testing.T) {
	stdout, _, err := executeCommand(t, "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	for _, want := range []string{"./.lungscan.yaml", "Priority: Highest", "LUNGSCAN_"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("Expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "present.yaml")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if !fileExists(path) {
		t.Error("Expected file to exist")
	}
	if fileExists(filepath.Join(dir, "absent.yaml")) {
		t.Error("Expected file to be absent")
	}
}
