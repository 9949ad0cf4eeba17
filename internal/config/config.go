package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dhavalsavalia/avwatch/internal/device"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

// Duration wraps time.Duration for TOML string parsing.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config represents the complete avwatch configuration.
type Config struct {
	Detector DetectorConfig `toml:"detector"`
	Display  DisplayConfig  `toml:"display"`
	Log      LogConfig      `toml:"log"`
}

// DetectorConfig defines device change detection settings.
type DetectorConfig struct {
	PollInterval     Duration `toml:"poll_interval"`
	EnumerateTimeout Duration `toml:"enumerate_timeout"`
	Native           *bool    `toml:"native"`
	Debounce         Duration `toml:"debounce"`
}

// NativeEnabled reports whether native change notification may be used.
func (d DetectorConfig) NativeEnabled() bool {
	return d.Native == nil || *d.Native
}

// DisplayConfig selects what the inventory shows.
type DisplayConfig struct {
	Kinds []string `toml:"kinds"`
}

// KindSet returns the configured kinds. Unknown names are dropped; validate
// rejects them on load.
func (d DisplayConfig) KindSet() map[device.Kind]bool {
	set := make(map[device.Kind]bool, len(d.Kinds))
	for _, name := range d.Kinds {
		if k, ok := device.ParseKind(name); ok {
			set[k] = true
		}
	}
	return set
}

// LogConfig defines diagnostic output.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// Environment variables that override the config file.
const (
	EnvPollInterval = "AVWATCH_POLL_INTERVAL"
	EnvLogLevel     = "AVWATCH_LOG_LEVEL"
	EnvNative       = "AVWATCH_NATIVE"
)

// DefaultPath returns the default config file path following XDG conventions.
// On Unix, checks $XDG_CONFIG_HOME first, then falls back to ~/.config.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "avwatch", "config.toml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "avwatch", "config.toml"), nil
}

// Load reads and parses a config file from the given path.
// If path is empty, it uses the default XDG path, and a missing file there
// yields the defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config file: %w", err)
		}
	case !explicit && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyEnv overrides config values from the environment.
func applyEnv(cfg *Config) error {
	var errs []error

	if v := os.Getenv(EnvPollInterval); v != "" {
		var d Duration
		if err := d.UnmarshalText([]byte(v)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvPollInterval, err))
		} else {
			cfg.Detector.PollInterval = d
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvNative); v != "" {
		native, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvNative, err))
		} else {
			cfg.Detector.Native = &native
		}
	}

	return errors.Join(errs...)
}

// applyDefaults sets default values for optional fields.
func applyDefaults(cfg *Config) {
	if cfg.Detector.PollInterval == 0 {
		cfg.Detector.PollInterval = DefaultPollInterval
	}
	if cfg.Detector.EnumerateTimeout == 0 {
		cfg.Detector.EnumerateTimeout = cfg.Detector.PollInterval
	}
	if cfg.Detector.Debounce == 0 {
		cfg.Detector.Debounce = DefaultDebounce
	}
	if len(cfg.Display.Kinds) == 0 {
		cfg.Display.Kinds = append([]string(nil), DefaultKinds...)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// validate checks field ranges and names.
func validate(cfg *Config) error {
	var errs []error

	if time.Duration(cfg.Detector.PollInterval) < MinPollInterval {
		errs = append(errs, fmt.Errorf("detector.poll_interval must be at least %s", MinPollInterval))
	}
	if cfg.Detector.EnumerateTimeout < 0 {
		errs = append(errs, errors.New("detector.enumerate_timeout must not be negative"))
	}
	if cfg.Detector.Debounce < 0 {
		errs = append(errs, errors.New("detector.debounce must not be negative"))
	}
	for _, name := range cfg.Display.Kinds {
		if _, ok := device.ParseKind(name); !ok {
			errs = append(errs, fmt.Errorf("display.kinds: unknown kind %q", name))
		}
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level)); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", cfg.Log.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
