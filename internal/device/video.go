package device

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultVideoClassDir is where Linux exposes V4L2 capture nodes.
const DefaultVideoClassDir = "/sys/class/video4linux"

// VideoEnumerator lists V4L2 devices from sysfs.
type VideoEnumerator struct {
	ClassDir string
}

// NewVideoEnumerator returns a VideoEnumerator reading classDir, or
// DefaultVideoClassDir when classDir is empty.
func NewVideoEnumerator(classDir string) *VideoEnumerator {
	if classDir == "" {
		classDir = DefaultVideoClassDir
	}
	return &VideoEnumerator{ClassDir: classDir}
}

// Enumerate returns one VideoInput per videoN entry. A missing class
// directory means no video devices, not an error.
func (v *VideoEnumerator) Enumerate(ctx context.Context) ([]Descriptor, error) {
	entries, err := os.ReadDir(v.ClassDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Descriptor{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", v.ClassDir, err)
	}

	devices := make([]Descriptor, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !strings.HasPrefix(e.Name(), "video") {
			continue
		}

		entry := filepath.Join(v.ClassDir, e.Name())

		// Class entries are symlinks into the device tree; the resolved path
		// stays the same for as long as the device is plugged in.
		id, err := filepath.EvalSymlinks(entry)
		if err != nil {
			id = entry
		}

		label := e.Name()
		if name, err := os.ReadFile(filepath.Join(entry, "name")); err == nil {
			if s := strings.TrimSpace(string(name)); s != "" {
				label = s
			}
		}

		devices = append(devices, Descriptor{
			ID:    VideoInput.String() + ":" + id,
			Kind:  VideoInput,
			Label: label,
		})
	}
	return devices, nil
}
