package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Default values for optional config fields.
const (
	DefaultPollInterval = Duration(time.Second)
	DefaultDebounce     = Duration(250 * time.Millisecond)
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "console"

	MinPollInterval = 10 * time.Millisecond
)

// DefaultKinds lists every device kind.
var DefaultKinds = []string{"audioinput", "audiooutput", "videoinput"}

// ExampleConfig is the template for --init with documentation comments.
const ExampleConfig = `# avwatch configuration

[detector]
# How often to poll the device list when the platform has no native
# change notification (duration string: "500ms", "1s", etc.)
poll_interval = "1s"

# Upper bound for one enumeration. Defaults to poll_interval.
enumerate_timeout = "1s"

# Use native change notification when the platform supports it.
# Set to false to always poll.
native = true

# Window in which device node events are coalesced into one change.
debounce = "250ms"

[display]
# Device kinds shown in the inventory
kinds = ["audioinput", "audiooutput", "videoinput"]

[log]
# trace, debug, info, warn, error
level = "info"

# console or json
format = "console"

# Where to write logs while the TUI is running. Empty discards them.
file = ""
`

// GenerateExampleConfig writes the example config to the given path.
// If path is empty, it uses the default XDG path.
// Returns the path where the file was written.
func GenerateExampleConfig(path string) (string, error) {
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config file already exists: %s", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("cannot check config file: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("cannot create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(ExampleConfig), 0644); err != nil {
		return "", fmt.Errorf("cannot write config file: %w", err)
	}

	return path, nil
}
