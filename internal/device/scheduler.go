package device

import (
	"sync"
	"time"
)

// Scheduler drives the controller's timers.
type Scheduler interface {
	// Every runs fn once per period until cancel is called. Runs of fn never
	// overlap; a tick that fires while fn is still running is dropped.
	Every(period time.Duration, fn func()) (cancel func())

	// Defer runs fn later, outside the caller's stack.
	Defer(fn func())
}

// NewScheduler returns a Scheduler backed by goroutines and time.Ticker.
func NewScheduler() Scheduler {
	return goScheduler{}
}

type goScheduler struct{}

func (goScheduler) Every(period time.Duration, fn func()) func() {
	done := make(chan struct{})
	var once sync.Once

	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				// done may have closed while we waited on the ticker
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}

func (goScheduler) Defer(fn func()) {
	go fn()
}
