package device

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoEnumerator_MissingDir(t *testing.T) {
	v := NewVideoEnumerator(filepath.Join(t.TempDir(), "absent"))
	devices, err := v.Enumerate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, devices)
	assert.NotNil(t, devices)
}

func TestVideoEnumerator_DefaultDir(t *testing.T) {
	assert.Equal(t, DefaultVideoClassDir, NewVideoEnumerator("").ClassDir)
}

func TestVideoEnumerator_Lists(t *testing.T) {
	root := t.TempDir()
	devicesDir := filepath.Join(root, "devices", "usb1")
	classDir := filepath.Join(root, "class")
	require.NoError(t, os.MkdirAll(classDir, 0755))

	mkVideo := func(node, name string) {
		target := filepath.Join(devicesDir, node)
		require.NoError(t, os.MkdirAll(target, 0755))
		if name != "" {
			require.NoError(t, os.WriteFile(filepath.Join(target, "name"), []byte(name+"\n"), 0644))
		}
		require.NoError(t, os.Symlink(target, filepath.Join(classDir, node)))
	}
	mkVideo("video0", "HD Webcam")
	mkVideo("video1", "")
	require.NoError(t, os.Mkdir(filepath.Join(classDir, "v4l-subdev0"), 0755))

	devices, err := NewVideoEnumerator(classDir).Enumerate(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)

	byLabel := map[string]Descriptor{}
	for _, d := range devices {
		assert.Equal(t, VideoInput, d.Kind)
		byLabel[d.Label] = d
	}
	require.Contains(t, byLabel, "HD Webcam")
	require.Contains(t, byLabel, "video1")

	resolved, err := filepath.EvalSymlinks(filepath.Join(devicesDir, "video0"))
	require.NoError(t, err)
	assert.Equal(t, "videoinput:"+resolved, byLabel["HD Webcam"].ID)
}

func TestVideoEnumerator_Cancelled(t *testing.T) {
	classDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(classDir, "video0"), 0755))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewVideoEnumerator(classDir).Enumerate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
