package device

import (
	"context"
	"errors"
	"sort"
	"strings"
)

// ErrUnsupported is returned by enumerators that have no backing facility
// on the current platform.
var ErrUnsupported = errors.New("media device enumeration not supported")

// Kind is the category of a media device.
type Kind int

const (
	Unknown Kind = iota
	AudioInput
	AudioOutput
	VideoInput
)

func (k Kind) String() string {
	switch k {
	case AudioInput:
		return "audioinput"
	case AudioOutput:
		return "audiooutput"
	case VideoInput:
		return "videoinput"
	default:
		return "unknown"
	}
}

// ParseKind maps a kind name back to a Kind. Matching is case-insensitive.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "audioinput":
		return AudioInput, true
	case "audiooutput":
		return AudioOutput, true
	case "videoinput":
		return VideoInput, true
	default:
		return Unknown, false
	}
}

// Descriptor identifies one audio or video endpoint.
type Descriptor struct {
	ID    string
	Kind  Kind
	Label string
}

// Snapshot is one enumeration result.
type Snapshot []Descriptor

// Canonical returns a copy sorted descending by ID so that two enumerations
// of the same device set compare equal regardless of return order.
func (s Snapshot) Canonical() Snapshot {
	out := make(Snapshot, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ID > out[j].ID
	})
	return out
}

// ChangedFrom reports whether s differs from prev by length or by the ID at
// any position. Kind and Label are not compared. Both snapshots are expected
// to be canonical.
func (s Snapshot) ChangedFrom(prev Snapshot) bool {
	if len(s) != len(prev) {
		return true
	}
	for i := range s {
		if s[i].ID != prev[i].ID {
			return true
		}
	}
	return false
}

// Enumerator lists the media devices currently present on the host.
type Enumerator interface {
	Enumerate(ctx context.Context) ([]Descriptor, error)
}

// EnumeratorFunc adapts a function to the Enumerator interface.
type EnumeratorFunc func(ctx context.Context) ([]Descriptor, error)

func (f EnumeratorFunc) Enumerate(ctx context.Context) ([]Descriptor, error) {
	return f(ctx)
}

// ChangeSource is a host-provided "device set changed" signal.
// Subscribe starts delivering signals to handler until the returned
// unsubscribe func is called. Handler may be invoked from any goroutine.
type ChangeSource interface {
	Subscribe(handler func()) (unsubscribe func(), err error)
}

// Observer is any comparable value registered with a Controller. Observers
// implementing ChangeObserver are told about changes; others are skipped.
type Observer any

// ChangeObserver is the optional callback of an Observer.
type ChangeObserver interface {
	DeviceChanged()
}
