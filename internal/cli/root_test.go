package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yildizm/LungScan/internal/emoji"
	"github.com/yildizm/LungScan/internal/ui"
)

// executeCommand runs a fresh root command with color and emoji off
func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := NewRootCommand("1.2.3", "abc123", "2025-01-02")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--no-color", "--no-emoji"}, args...))

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// writeConfig writes a config file into a temp dir and returns its path
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lungscan.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCommand(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(stdout, "LungScan 1.2.3 (abc123) built on 2025-01-02") {
		t.Errorf("Unexpected version output: %s", stdout)
	}
}

func TestVersionDisplaysDevBuild(t *testing.T) {
	cmd := NewRootCommand("dev", "none", "unknown")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out.String(), "LungScan development (local-build) built on local-build") {
		t.Errorf("Unexpected version output: %s", out.String())
	}
}

func TestRootAppliesOutputFlags(t *testing.T) {
	path := writeConfig(t, "output:\n  theme: high-contrast\n  emoji: true\n")

	// the probe fails, the hook has already run
	_, _, _ = executeCommand(t, "--config", path, "--base-url", "http://127.0.0.1:1", "health", "--timeout", "50ms")

	cfg := GetGlobalConfig()
	if cfg.Service.BaseURL != "http://127.0.0.1:1" {
		t.Errorf("Expected base URL override, got %s", cfg.Service.BaseURL)
	}
	if cfg.Output.Emoji || !emoji.IsEmojiDisabled() {
		t.Error("Expected --no-emoji to win over the config file")
	}
	if !ui.IsColorDisabled() {
		t.Error("Expected --no-color to disable styles")
	}
	if ui.GetTheme().Name != "high-contrast" {
		t.Errorf("Expected high-contrast theme, got %s", ui.GetTheme().Name)
	}
}

func TestRootRejectsInvalidConfig(t *testing.T) {
	path := writeConfig(t, "service:\n  base_url: \"ftp://scanner\"\n")

	_, _, err := executeCommand(t, "--config", path, "health")
	if err == nil || !strings.Contains(err.Error(), "failed to load configuration") {
		t.Errorf("Expected configuration error, got %v", err)
	}
}

func TestRootRejectsInvalidBaseURLFlag(t *testing.T) {
	_, _, err := executeCommand(t, "--base-url", "not a url", "health")
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("Expected invalid configuration error, got %v", err)
	}
}

func TestGetGlobalConfigDefaults(t *testing.T) {
	old := GetGlobalConfig()
	defer setGlobalConfig(old)

	setGlobalConfig(nil)
	cfg := GetGlobalConfig()
	if cfg == nil || cfg.Service.BaseURL != "http://localhost:8000" {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}
