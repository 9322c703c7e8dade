// Package notify holds the single transient notification shown at the top of
// the page. Showing a new notification replaces the current one, and each
// notification dismisses itself after a TTL.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/events"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 5 * time.Second

// Kind selects the notification styling.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notification is a displayed message.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notifier is the subset of Center used by the submission flow.
type Notifier interface {
	Show(message string, kind Kind) Notification
}

// Option configures a Center.
type Option func(*Center)

// WithTTL overrides DefaultTTL. Non-positive values disable auto-dismiss.
func WithTTL(ttl time.Duration) Option {
	return func(c *Center) {
		c.ttl = ttl
	}
}

// WithClock sets the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Center) {
		if now != nil {
			c.now = now
		}
	}
}

// WithBus publishes events.NotificationShown.
func WithBus(bus *events.Bus) Option {
	return func(c *Center) {
		c.bus = bus
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Center) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Center owns at most one visible notification.
type Center struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	bus     *events.Bus
	logger  *zap.Logger
	current *Notification
	timer   *time.Timer
	closed  bool
}

// NewCenter returns a Center with DefaultTTL.
func NewCenter(opts ...Option) *Center {
	c := &Center{
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// TTL returns the configured auto-dismiss delay.
func (c *Center) TTL() time.Duration {
	return c.ttl
}

// Show replaces any current notification with a new one and schedules its
// dismissal.
func (c *Center) Show(message string, kind Kind) Notification {
	if kind == "" {
		kind = KindInfo
	}
	n := Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Kind:      kind,
		CreatedAt: c.now(),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return n
	}
	c.stopLocked()
	c.current = &n
	if c.ttl > 0 {
		id := n.ID
		c.timer = time.AfterFunc(c.ttl, func() { c.Dismiss(id) })
	}
	c.mu.Unlock()

	c.logger.Debug("notification shown", zap.String("kind", string(kind)), zap.String("id", n.ID))
	c.bus.Publish(events.Event{Topic: events.NotificationShown, Payload: n})
	return n
}

// Current returns the visible notification, if any.
func (c *Center) Current() (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Notification{}, false
	}
	return *c.current, true
}

// Dismiss removes the notification with id. A stale id, for a notification
// already replaced, is ignored.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.ID != id {
		return false
	}
	c.stopLocked()
	c.current = nil
	return true
}

// Close dismisses the current notification and stops pending timers. Show is
// a no-op afterwards.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.current = nil
	c.closed = true
}

func (c *Center) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
