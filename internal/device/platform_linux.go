//go:build linux

package device

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	soundDevDir = "/dev/snd"
	devDir      = "/dev"
)

func platformVideoEnumerator() Enumerator {
	return NewVideoEnumerator(DefaultVideoClassDir)
}

func platformChangeSource(debounce time.Duration, log zerolog.Logger) ChangeSource {
	var dirs []string
	for _, d := range []string{soundDevDir, devDir} {
		if fi, err := os.Stat(d); err == nil && fi.IsDir() {
			dirs = append(dirs, d)
		}
	}
	if len(dirs) == 0 {
		return nil
	}

	return &WatchSource{
		Dirs:     dirs,
		Match:    matchLinuxDeviceNode,
		Debounce: debounce,
		Log:      log,
	}
}

// matchLinuxDeviceNode accepts ALSA nodes and V4L2 capture nodes.
func matchLinuxDeviceNode(dir, name string) bool {
	switch dir {
	case soundDevDir:
		return true
	case devDir:
		return strings.HasPrefix(name, "video")
	default:
		return false
	}
}
