// Package cursor implements the navigation cursor over a sibling set.
//
// A Controller holds the current index and turns raw directional input into
// index changes. Moves are debounced, never wrap around, and run through a
// two-phase transition: the content swap happens at the midpoint, so a view
// can fade out, swap, and fade back in using IsTransitioning alone.
package cursor

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/dyluth/artmatrix/pkg/catalog"
)

// Direction of a navigation intent.
type Direction int

const (
	// Forward is scroll-down / swipe-up: towards higher indices
	Forward Direction = 1

	// Backward is scroll-up / swipe-down: towards lower indices
	Backward Direction = -1
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// DirectionOf maps a signed input delta to a direction. Positive is forward.
func DirectionOf(delta float64) Direction {
	if delta < 0 {
		return Backward
	}
	return Forward
}

// Outcome reports what the controller did with one input.
type Outcome int

const (
	// OutcomeAccepted started a transition to a neighbouring entry
	OutcomeAccepted Outcome = iota
	// OutcomeEmpty means there are no entries (terminal not-found state)
	OutcomeEmpty
	// OutcomeScrolled routed the delta to the nested scroll region
	OutcomeScrolled
	// OutcomeNoise dropped an input whose magnitude is below the threshold
	OutcomeNoise
	// OutcomeLocked dropped an input because a transition is in progress
	OutcomeLocked
	// OutcomeDebounced dropped an input that arrived inside the debounce window
	OutcomeDebounced
	// OutcomeBoundary recognised the intent but the index is already at the edge
	OutcomeBoundary
)

var outcomeNames = map[Outcome]string{
	OutcomeAccepted:  "accepted",
	OutcomeEmpty:     "empty",
	OutcomeScrolled:  "scrolled",
	OutcomeNoise:     "noise",
	OutcomeLocked:    "locked",
	OutcomeDebounced: "debounced",
	OutcomeBoundary:  "boundary",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// ScrollRegion is a nested scrollable area (the description text) that takes
// priority over index navigation while it can still move.
type ScrollRegion interface {
	// CanScroll reports whether the region is not yet at its extent in dir.
	CanScroll(dir Direction) bool
	// ScrollBy moves the region's content by delta.
	ScrollBy(delta float64)
}

// Config holds the timing and threshold constants.
type Config struct {
	// NoiseThreshold is the magnitude an input must exceed to count as intent.
	NoiseThreshold float64
	// Debounce is the minimum spacing between accepted moves.
	Debounce time.Duration
	// Transition is the length of each half of the fade.
	Transition time.Duration
}

// DefaultConfig returns the constants used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		NoiseThreshold: 15,
		Debounce:       400 * time.Millisecond,
		Transition:     150 * time.Millisecond,
	}
}

// State is a consistent snapshot of the controller.
type State struct {
	Index         int  `json:"index"`
	Len           int  `json:"len"`
	Transitioning bool `json:"transitioning"`
}

// Controller is safe for concurrent use; scheduler callbacks may run on other goroutines.
type Controller struct {
	mu sync.Mutex

	cfg      Config
	clock    Clock
	sched    Scheduler
	onChange func()

	items         []catalog.Entry
	index         int
	transitioning bool
	quietUntil    time.Time

	pending Timer
	epoch   uint64
	closed  bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithScheduler replaces time.AfterFunc.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

// WithOnChange registers a callback invoked (without locks held) whenever the
// index or the transition flag changes.
func WithOnChange(f func()) Option {
	return func(c *Controller) { c.onChange = f }
}

// New creates a controller over items starting at index start.
// start is clamped into range.
func New(items []catalog.Entry, start int, cfg Config, opts ...Option) *Controller {
	c := &Controller{
		cfg:   cfg,
		clock: SystemClock{},
		sched: SystemScheduler{},
		items: items,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.index = clamp(start, 0, len(items)-1)
	return c
}

// Handle evaluates one raw input. delta is signed: positive moves forward.
// region may be nil when no nested scroll area is present.
func (c *Controller) Handle(delta float64, region ScrollRegion) Outcome {
	dir := DirectionOf(delta)

	c.mu.Lock()
	empty := len(c.items) == 0 || c.closed
	c.mu.Unlock()
	if empty {
		return OutcomeEmpty
	}

	// The nested region consumes input until it reaches its extent.
	// The debounce clock is deliberately left untouched here.
	if region != nil && region.CanScroll(dir) {
		region.ScrollBy(delta)
		return OutcomeScrolled
	}

	if math.Abs(delta) <= c.cfg.NoiseThreshold {
		return OutcomeNoise
	}

	c.mu.Lock()
	outcome := c.evaluate(dir)
	c.mu.Unlock()

	if outcome == OutcomeAccepted {
		c.notify()
	}
	return outcome
}

// evaluate applies the transition-lock, debounce and boundary rules.
// Caller must hold c.mu.
func (c *Controller) evaluate(dir Direction) Outcome {
	if c.transitioning {
		return OutcomeLocked
	}

	now := c.clock.Now()
	if now.Before(c.quietUntil) {
		return OutcomeDebounced
	}

	target := clamp(c.index+int(dir), 0, len(c.items)-1)
	if target == c.index {
		return OutcomeBoundary
	}

	// Reserve the debounce window for at least the whole transition so no
	// intent can queue up behind it
	window := c.cfg.Debounce
	if full := 2 * c.cfg.Transition; full > window {
		window = full
	}
	c.quietUntil = now.Add(window)
	c.transitioning = true

	epoch := c.epoch
	c.pending = c.sched.AfterFunc(c.cfg.Transition, func() { c.swap(epoch, target) })

	log.Printf("[Cursor] %s %d -> %d", dir, c.index, target)
	return OutcomeAccepted
}

// swap commits the new index at the midpoint of the transition.
func (c *Controller) swap(epoch uint64, target int) {
	c.mu.Lock()
	if c.closed || epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	c.index = target
	c.pending = c.sched.AfterFunc(c.cfg.Transition, func() { c.finish(epoch) })
	c.mu.Unlock()

	c.notify()
}

// finish ends the transition.
func (c *Controller) finish(epoch uint64) {
	c.mu.Lock()
	if c.closed || epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	c.transitioning = false
	c.pending = nil
	c.mu.Unlock()

	c.notify()
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}

// Advance is a forward intent of unbounded magnitude with no nested region.
func (c *Controller) Advance() Outcome {
	return c.Handle(math.Inf(1), nil)
}

// Retreat is a backward intent of unbounded magnitude with no nested region.
func (c *Controller) Retreat() Outcome {
	return c.Handle(math.Inf(-1), nil)
}

// Current returns the entry under the cursor. ok is false when the set is empty.
func (c *Controller) Current() (entry catalog.Entry, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 {
		return catalog.Entry{}, false
	}
	return c.items[c.index], true
}

// Index returns the current position.
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Len returns the number of entries.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// IsTransitioning reports whether a fade is in progress.
func (c *Controller) IsTransitioning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transitioning
}

// State returns index, length and transition flag in one consistent read.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Index: c.index, Len: len(c.items), Transitioning: c.transitioning}
}

// Close cancels any pending transition step. Further input returns OutcomeEmpty.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.epoch++
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.transitioning = false
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
