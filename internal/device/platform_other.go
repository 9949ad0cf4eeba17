//go:build !linux

package device

import (
	"time"

	"github.com/rs/zerolog"
)

func platformVideoEnumerator() Enumerator {
	return nil
}

// No device node tree to watch; detection falls back to polling.
func platformChangeSource(time.Duration, zerolog.Logger) ChangeSource {
	return nil
}
