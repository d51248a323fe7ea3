// services/button/classifier.go
package button

import (
	"sync"
	"time"
)

// EventKind is the classification of a completed press/release pair.
type EventKind uint8

const (
	Click EventKind = iota // held shorter than the long-press threshold
	Hold                   // held for the threshold or longer
)

func (k EventKind) String() string {
	if k == Hold {
		return "hold"
	}
	return "click"
}

// Event is one classified button event.
type Event struct {
	Kind EventKind
	Held time.Duration
	At   time.Time // release time
}

// Config holds the classifier timing thresholds.
type Config struct {
	Debounce  time.Duration // minimum quiet interval after a release
	LongPress time.Duration // held >= LongPress classifies as Hold
}

const (
	DefaultDebounce  = 50 * time.Millisecond
	DefaultLongPress = 800 * time.Millisecond
)

// Classifier is the two-state debounce and click/hold state machine. OnEdge
// is intended to run in interrupt context: it only writes primitive fields
// under a short critical section, never performs I/O, and never blocks.
// Exactly one event can be pending; Take consumes it exactly once.
type Classifier struct {
	mu sync.Mutex

	pressed   bool
	pressAt   time.Time
	releaseAt time.Time

	pending bool
	event   Event

	cfg Config
	now func() time.Time
}

// New creates a classifier. Zero thresholds fall back to the defaults.
func New(cfg Config) *Classifier {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.LongPress <= 0 {
		cfg.LongPress = DefaultLongPress
	}
	return &Classifier{cfg: cfg, now: time.Now}
}

// OnEdge feeds one raw pin edge. level is the logical state after inversion:
// true means pressed. Electrical bounce may deliver many edges per physical
// press; the debounce interval suppresses them.
func (c *Classifier) OnEdge(level bool) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case level && !c.pressed:
		// Released -> Pressed, only after a quiet interval since the last
		// recorded release.
		if now.Sub(c.releaseAt) >= c.cfg.Debounce {
			c.pressed = true
			c.pressAt = now
		}
	case !level && c.pressed:
		// Pressed -> Released: classify by held duration at release.
		c.pressed = false
		c.releaseAt = now
		held := now.Sub(c.pressAt)
		kind := Click
		if held >= c.cfg.LongPress {
			kind = Hold
		}
		c.event = Event{Kind: kind, Held: held, At: now}
		c.pending = true
	}
}

// Take atomically consumes the pending event, if any. Each press/release pair
// yields exactly one Take success.
func (c *Classifier) Take() (Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pending {
		return Event{}, false
	}
	c.pending = false
	return c.event, true
}

// Pressed reports whether the button is currently held down.
func (c *Classifier) Pressed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pressed
}

// HeldFor returns how long the button has been held so far. ok is false when
// the button is not currently pressed.
func (c *Classifier) HeldFor() (d time.Duration, ok bool) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pressed {
		return 0, false
	}
	return now.Sub(c.pressAt), true
}

// LongPress returns the configured hold threshold.
func (c *Classifier) LongPress() time.Duration { return c.cfg.LongPress }
