//go:build cgo

package device

import (
	"context"
	"fmt"

	"github.com/gen2brain/malgo"
)

// AudioEnumerator lists capture and playback devices through miniaudio.
type AudioEnumerator struct {
	// Backends restricts the miniaudio backends tried. Nil means the
	// platform default order.
	Backends []malgo.Backend
}

// NewAudioEnumerator returns an AudioEnumerator using the default backends.
func NewAudioEnumerator() *AudioEnumerator {
	return &AudioEnumerator{}
}

// Enumerate opens a fresh miniaudio context per call so that hotplugged
// devices are picked up.
func (a *AudioEnumerator) Enumerate(ctx context.Context) ([]Descriptor, error) {
	mctx, err := malgo.InitContext(a.Backends, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}
	defer func() {
		_ = mctx.Uninit()
		mctx.Free()
	}()

	var devices []Descriptor
	for _, t := range []struct {
		typ  malgo.DeviceType
		kind Kind
	}{
		{malgo.Capture, AudioInput},
		{malgo.Playback, AudioOutput},
	} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		infos, err := mctx.Devices(t.typ)
		if err != nil {
			return nil, fmt.Errorf("list %s devices: %w", t.kind, err)
		}
		for i := range infos {
			devices = append(devices, Descriptor{
				ID:    t.kind.String() + ":" + infos[i].ID.String(),
				Kind:  t.kind,
				Label: infos[i].Name(),
			})
		}
	}
	return devices, nil
}

func platformAudioEnumerator() Enumerator {
	return NewAudioEnumerator()
}
