package device

import (
	"time"

	"github.com/rs/zerolog"
)

// PlatformEnumerator returns the host's device enumerator, or nil when the
// host exposes no enumeration facility.
func PlatformEnumerator() Enumerator {
	var enums MultiEnumerator
	if a := platformAudioEnumerator(); a != nil {
		enums = append(enums, a)
	}
	if v := platformVideoEnumerator(); v != nil {
		enums = append(enums, v)
	}

	switch len(enums) {
	case 0:
		return nil
	case 1:
		return enums[0]
	default:
		return enums
	}
}

// PlatformChangeSource returns the host's native device change signal, or
// nil when there is none.
func PlatformChangeSource(debounce time.Duration, log zerolog.Logger) ChangeSource {
	return platformChangeSource(debounce, log)
}
