package device

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchSource_SignalsMatchingNodes(t *testing.T) {
	dir := t.TempDir()
	w := &WatchSource{
		Dirs:  []string{dir},
		Match: func(_, name string) bool { return strings.HasPrefix(name, "video") },
	}

	var n atomic.Int32
	unsubscribe, err := w.Subscribe(func() { n.Add(1) })
	require.NoError(t, err)
	defer unsubscribe()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tty0"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "video0"), nil, 0644))

	require.Eventually(t, func() bool { return n.Load() >= 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), n.Load(), "only video0 should signal")

	require.NoError(t, os.Remove(filepath.Join(dir, "video0")))
	require.Eventually(t, func() bool { return n.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestWatchSource_Debounce(t *testing.T) {
	dir := t.TempDir()
	w := &WatchSource{Dirs: []string{dir}, Debounce: 100 * time.Millisecond}

	var n atomic.Int32
	unsubscribe, err := w.Subscribe(func() { n.Add(1) })
	require.NoError(t, err)
	defer unsubscribe()

	for _, name := range []string{"pcmC0D0c", "pcmC0D0p", "controlC0"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	require.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), n.Load())
}

func TestWatchSource_Unsubscribe(t *testing.T) {
	dir := t.TempDir()
	w := &WatchSource{Dirs: []string{dir}}

	var n atomic.Int32
	unsubscribe, err := w.Subscribe(func() { n.Add(1) })
	require.NoError(t, err)
	unsubscribe()
	unsubscribe()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "video0"), nil, 0644))
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, n.Load())
}

func TestWatchSource_NoDirectories(t *testing.T) {
	_, err := (&WatchSource{}).Subscribe(func() {})
	assert.Error(t, err)

	w := &WatchSource{Dirs: []string{filepath.Join(t.TempDir(), "missing")}}
	_, err = w.Subscribe(func() {})
	assert.Error(t, err)
}

func TestWatchSource_SkipsMissingDirectory(t *testing.T) {
	dir := t.TempDir()
	w := &WatchSource{Dirs: []string{filepath.Join(dir, "missing"), dir}}

	var n atomic.Int32
	unsubscribe, err := w.Subscribe(func() { n.Add(1) })
	require.NoError(t, err)
	defer unsubscribe()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "video0"), nil, 0644))
	require.Eventually(t, func() bool { return n.Load() >= 1 }, time.Second, 5*time.Millisecond)
}

func TestController_WithWatchSource(t *testing.T) {
	dir := t.TempDir()
	src := &WatchSource{Dirs: []string{dir}}
	c := New(&fakeEnumerator{}, src)
	obs := &countingObserver{}
	c.RegisterObserver(obs)
	c.Start()
	require.Equal(t, StateNative, c.State())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "video0"), nil, 0644))
	require.Eventually(t, func() bool { return obs.count() >= 1 }, time.Second, 5*time.Millisecond)

	c.Stop()
	// Notifications scheduled before Stop may still land.
	time.Sleep(20 * time.Millisecond)
	seen := obs.count()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "video1"), nil, 0644))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, seen, obs.count())
}
