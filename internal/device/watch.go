package device

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is the window in which device node events are coalesced.
const DefaultDebounce = 250 * time.Millisecond

// WatchSource is a ChangeSource driven by device nodes appearing and
// disappearing in a set of directories.
type WatchSource struct {
	Dirs []string

	// Match filters events by directory and base name. Nil matches all.
	Match func(dir, name string) bool

	// Debounce coalesces a burst of node events into one signal. Plugging a
	// sound card alone creates several nodes. Zero signals on every event.
	Debounce time.Duration

	Log zerolog.Logger
}

// Subscribe implements ChangeSource. Every subscription owns its own
// watcher; unsubscribe waits for it to shut down.
func (w *WatchSource) Subscribe(handler func()) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	var errs []error
	for _, dir := range w.Dirs {
		if err := watcher.Add(dir); err != nil {
			errs = append(errs, fmt.Errorf("watch %s: %w", dir, err))
		}
	}
	if len(errs) == len(w.Dirs) {
		_ = watcher.Close()
		if len(errs) == 0 {
			return nil, errors.New("no directories to watch")
		}
		return nil, errors.Join(errs...)
	}
	for _, err := range errs {
		w.Log.Debug().Err(err).Msg("skipping device directory")
	}

	done := make(chan struct{})
	stopped := make(chan struct{})
	go w.loop(watcher, handler, done, stopped)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-stopped
		})
	}, nil
}

func (w *WatchSource) loop(watcher *fsnotify.Watcher, handler func(), done, stopped chan struct{}) {
	defer close(stopped)
	defer watcher.Close()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-done:
			return

		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if w.Debounce <= 0 {
				handler()
				continue
			}
			if fire != nil {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.Debounce)
			} else {
				timer.Reset(w.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			handler()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.Log.Warn().Err(err).Msg("device directory watch error")
		}
	}
}

func (w *WatchSource) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	if w.Match == nil {
		return true
	}
	return w.Match(filepath.Dir(ev.Name), filepath.Base(ev.Name))
}
