package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dhavalsavalia/avwatch/internal/device"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
[detector]
poll_interval = "500ms"
enumerate_timeout = "2s"
native = false
debounce = "100ms"

[display]
kinds = ["audioinput", "videoinput"]

[log]
level = "debug"
format = "json"
file = "/tmp/avwatch.log"
`
	path := writeTempConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Detector
	if cfg.Detector.PollInterval != Duration(500*time.Millisecond) {
		t.Errorf("detector.poll_interval = %v, want 500ms", cfg.Detector.PollInterval)
	}
	if cfg.Detector.EnumerateTimeout != Duration(2*time.Second) {
		t.Errorf("detector.enumerate_timeout = %v, want 2s", cfg.Detector.EnumerateTimeout)
	}
	if cfg.Detector.NativeEnabled() {
		t.Error("detector.native = true, want false")
	}
	if cfg.Detector.Debounce != Duration(100*time.Millisecond) {
		t.Errorf("detector.debounce = %v, want 100ms", cfg.Detector.Debounce)
	}

	// Display
	kinds := cfg.Display.KindSet()
	if !kinds[device.AudioInput] || !kinds[device.VideoInput] || kinds[device.AudioOutput] {
		t.Errorf("display.kinds = %v, want audioinput and videoinput", cfg.Display.Kinds)
	}

	// Log
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log.format = %q, want %q", cfg.Log.Format, "json")
	}
	if cfg.Log.File != "/tmp/avwatch.log" {
		t.Errorf("log.file = %q, want %q", cfg.Log.File, "/tmp/avwatch.log")
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeTempConfig(t, "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Detector.PollInterval != DefaultPollInterval {
		t.Errorf("poll_interval = %v, want default %v", cfg.Detector.PollInterval, DefaultPollInterval)
	}
	if cfg.Detector.EnumerateTimeout != cfg.Detector.PollInterval {
		t.Errorf("enumerate_timeout = %v, want poll_interval %v", cfg.Detector.EnumerateTimeout, cfg.Detector.PollInterval)
	}
	if !cfg.Detector.NativeEnabled() {
		t.Error("native should default to enabled")
	}
	if cfg.Detector.Debounce != DefaultDebounce {
		t.Errorf("debounce = %v, want default %v", cfg.Detector.Debounce, DefaultDebounce)
	}
	if len(cfg.Display.KindSet()) != 3 {
		t.Errorf("display.kinds = %v, want all kinds", cfg.Display.Kinds)
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.Log.Format != DefaultLogFormat {
		t.Errorf("log = %+v, want level %q format %q", cfg.Log, DefaultLogLevel, DefaultLogFormat)
	}
}

func TestLoad_EnumerateTimeoutFollowsInterval(t *testing.T) {
	path := writeTempConfig(t, `
[detector]
poll_interval = "3s"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Detector.EnumerateTimeout != Duration(3*time.Second) {
		t.Errorf("enumerate_timeout = %v, want 3s", cfg.Detector.EnumerateTimeout)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"interval too short", "[detector]\npoll_interval = \"1ms\"", "poll_interval"},
		{"negative debounce", "[detector]\ndebounce = \"-1s\"", "debounce"},
		{"unknown kind", "[display]\nkinds = [\"midi\"]", "midi"},
		{"bad level", "[log]\nlevel = \"loud\"", "log.level"},
		{"bad format", "[log]\nformat = \"xml\"", "log.format"},
		{"bad duration", "[detector]\npoll_interval = \"soon\"", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTempConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_ReportsAllErrors(t *testing.T) {
	content := `
[detector]
poll_interval = "1ms"

[log]
format = "xml"
`
	_, err := Load(writeTempConfig(t, content))
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"poll_interval", "log.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.toml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_DefaultPathMissingUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Detector.PollInterval != DefaultPollInterval {
		t.Errorf("poll_interval = %v, want default", cfg.Detector.PollInterval)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	content := `this is not valid toml {{{`
	path := writeTempConfig(t, content)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvPollInterval, "250ms")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvNative, "false")

	path := writeTempConfig(t, `
[detector]
poll_interval = "5s"
native = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Detector.PollInterval != Duration(250*time.Millisecond) {
		t.Errorf("poll_interval = %v, want 250ms from env", cfg.Detector.PollInterval)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %q, want warn from env", cfg.Log.Level)
	}
	if cfg.Detector.NativeEnabled() {
		t.Error("native should be disabled by env")
	}
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv(EnvNative, "maybe")

	_, err := Load(writeTempConfig(t, ""))
	if err == nil {
		t.Fatal("expected error for bad AVWATCH_NATIVE")
	}
	if !strings.Contains(err.Error(), EnvNative) {
		t.Errorf("error %q does not mention %s", err, EnvNative)
	}
}

func TestGenerateExampleConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "avwatch", "config.toml")

	result, err := GenerateExampleConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result != path {
		t.Errorf("returned path = %q, want %q", result, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cannot read generated file: %v", err)
	}

	if string(data) != ExampleConfig {
		t.Error("generated config does not match ExampleConfig")
	}

	// Verify the generated config is valid and loadable
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("generated config is not loadable: %v", err)
	}
	if cfg.Detector.PollInterval != DefaultPollInterval {
		t.Errorf("example poll_interval = %v, want %v", cfg.Detector.PollInterval, DefaultPollInterval)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")

	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !filepath.IsAbs(path) {
		t.Errorf("path %q is not absolute", path)
	}

	if filepath.Base(path) != "config.toml" {
		t.Errorf("path base = %q, want config.toml", filepath.Base(path))
	}
}

func TestDefaultPath_XDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/xdg/config")

	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := "/custom/xdg/config/avwatch/config.toml"
	if path != expected {
		t.Errorf("path = %q, want %q", path, expected)
	}
}

func TestGenerateExampleConfig_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	// Create existing file
	if err := os.WriteFile(path, []byte("existing"), 0644); err != nil {
		t.Fatalf("cannot create existing file: %v", err)
	}

	_, err := GenerateExampleConfig(path)
	if err == nil {
		t.Fatal("expected error for existing file")
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("cannot write temp config: %v", err)
	}
	return path
}
