package device

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultInterval is how often the device list is polled when the host has
// no native change notification.
const DefaultInterval = time.Second

// State is the controller's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateNative
	StatePolling
)

func (s State) String() string {
	switch s {
	case StateNative:
		return "native"
	case StatePolling:
		return "polling"
	default:
		return "idle"
	}
}

// Capabilities is the result of the probe run when a Controller is built.
type Capabilities struct {
	MediaDevices       bool
	ChangeNotification bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithInterval sets the polling period. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithEnumerateTimeout bounds each poll's enumeration. Zero means the poll
// interval; a negative value disables the bound.
func WithEnumerateTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.enumTimeout = d
	}
}

// WithScheduler replaces the goroutine scheduler.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) {
		if s != nil {
			c.sched = s
		}
	}
}

// WithLogger sets the diagnostic sink.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// Controller detects changes to the media device set and notifies
// registered observers. It uses the native ChangeSource when one exists and
// falls back to polling the Enumerator otherwise.
//
// All methods are safe for concurrent use and may be called from inside an
// observer callback.
type Controller struct {
	enum        Enumerator
	source      ChangeSource
	caps        Capabilities
	interval    time.Duration
	enumTimeout time.Duration
	sched       Scheduler
	log         zerolog.Logger

	mu        sync.Mutex
	state     State
	run       *run
	observers map[Observer]struct{}
	prev      Snapshot
	havePrev  bool
}

// run is one Start..Stop activation of a strategy.
type run struct {
	ctx    context.Context
	cancel context.CancelFunc
	stop   func()
}

// New builds a Controller. A nil enumerator marks the platform as having no
// media device facility; a nil source means no native change notification.
// The source must not invoke its handler synchronously from Subscribe.
func New(enum Enumerator, source ChangeSource, opts ...Option) *Controller {
	c := &Controller{
		enum:      enum,
		source:    source,
		interval:  DefaultInterval,
		sched:     NewScheduler(),
		log:       zerolog.Nop(),
		observers: make(map[Observer]struct{}),
	}
	c.caps.MediaDevices = enum != nil
	c.caps.ChangeNotification = c.caps.MediaDevices && source != nil

	for _, opt := range opts {
		opt(c)
	}
	if c.enumTimeout == 0 {
		c.enumTimeout = c.interval
	}
	return c
}

// Capabilities returns the probe result.
func (c *Controller) Capabilities() Capabilities {
	return c.caps
}

// State returns the active strategy, or StateIdle.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start activates change detection. It is a no-op when already started and
// leaves the controller inert when the platform cannot enumerate devices.
func (c *Controller) Start() {
	if !c.caps.MediaDevices {
		c.log.Error().Err(ErrUnsupported).Msg("device change detection unavailable")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &run{ctx: ctx, cancel: cancel}

	if c.caps.ChangeNotification {
		unsubscribe, err := c.source.Subscribe(func() { c.handleNative(r) })
		if err == nil {
			r.stop = unsubscribe
			c.run, c.state = r, StateNative
			c.log.Debug().Msg("device change detection started (native)")
			return
		}
		c.log.Warn().Err(err).Msg("native device change subscription failed, polling instead")
	}

	r.stop = c.sched.Every(c.interval, func() { c.poll(r) })
	c.run, c.state = r, StatePolling
	c.log.Debug().Dur("interval", c.interval).Msg("device change detection started (polling)")
}

// Stop deactivates change detection. Notifications already scheduled may
// still be delivered to observers that remain registered.
func (c *Controller) Stop() {
	c.mu.Lock()
	r := c.run
	if r == nil {
		c.mu.Unlock()
		return
	}
	c.run, c.state = nil, StateIdle
	r.cancel()
	c.mu.Unlock()

	// Outside the lock: unsubscribing may wait on a handler that is itself
	// waiting for c.mu.
	r.stop()
	c.log.Debug().Msg("device change detection stopped")
}

// RegisterObserver adds o to the observer set. Registering twice has no
// further effect.
func (c *Controller) RegisterObserver(o Observer) {
	if o == nil {
		return
	}
	if !reflect.ValueOf(o).Comparable() {
		c.log.Warn().Str("type", fmt.Sprintf("%T", o)).Msg("ignoring non-comparable device change observer")
		return
	}

	c.mu.Lock()
	c.observers[o] = struct{}{}
	c.mu.Unlock()
}

// RemoveObserver removes o. Pending notifications for o are dropped.
func (c *Controller) RemoveObserver(o Observer) {
	if o == nil || !reflect.ValueOf(o).Comparable() {
		return
	}

	c.mu.Lock()
	delete(c.observers, o)
	c.mu.Unlock()
}

func (c *Controller) handleNative(r *run) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if r.ctx.Err() != nil {
		return
	}
	c.fanOutLocked()
}

func (c *Controller) poll(r *run) {
	ctx := r.ctx
	if c.enumTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.enumTimeout)
		defer cancel()
	}

	devices, err := c.enumerate(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if r.ctx.Err() != nil {
		return
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("device enumeration failed")
		return
	}

	next := Snapshot(devices).Canonical()
	changed := c.havePrev && next.ChangedFrom(c.prev)
	c.prev, c.havePrev = next, true

	if changed {
		c.log.Debug().Int("devices", len(next)).Msg("device set changed")
		c.fanOutLocked()
	}
}

func (c *Controller) enumerate(ctx context.Context) (devices []Descriptor, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("enumerator panicked: %v", p)
		}
	}()
	return c.enum.Enumerate(ctx)
}

// fanOutLocked schedules one notification per registered observer. Each
// notification re-checks membership when it runs. c.mu must be held.
func (c *Controller) fanOutLocked() {
	for o := range c.observers {
		o := o
		c.sched.Defer(func() { c.notify(o) })
	}
}

func (c *Controller) notify(o Observer) {
	c.mu.Lock()
	_, registered := c.observers[o]
	c.mu.Unlock()
	if !registered {
		return
	}

	co, ok := o.(ChangeObserver)
	if !ok {
		return
	}

	defer func() {
		if p := recover(); p != nil {
			c.log.Error().Interface("panic", p).Str("observer", fmt.Sprintf("%T", o)).Msg("device change observer panicked")
		}
	}()
	co.DeviceChanged()
}
