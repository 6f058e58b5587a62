// Package session owns the per-view state of the detail screen: one
// resolution pass at a time, the navigation cursor built from its result, and
// the diagnostics shown when nothing was found.
package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/dyluth/artmatrix/internal/address"
	"github.com/dyluth/artmatrix/internal/cursor"
	"github.com/dyluth/artmatrix/internal/resolver"
	"github.com/dyluth/artmatrix/pkg/catalog"
)

var (
	// ErrStale is returned by Open when a newer Open (or Close) superseded it.
	// The result has been discarded.
	ErrStale = errors.New("resolution superseded by a newer request")

	// ErrClosed is returned by Open after Close.
	ErrClosed = errors.New("session closed")
)

// State of the detail view.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateNotFound
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateNotFound:
		return "not_found"
	default:
		return "idle"
	}
}

// MarshalText renders the state by name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Debug is the diagnostics panel shown with a not-found view.
type Debug struct {
	// Exists is nil until a lookup has answered
	Exists    *bool    `json:"exists"`
	LastError string   `json:"lastError,omitempty"`
	Tried     []string `json:"tried,omitempty"`
}

// Snapshot is a consistent read of the session.
type Snapshot struct {
	Address       string         `json:"address"`
	Generation    uint64         `json:"generation"`
	State         State          `json:"state"`
	Entry         *catalog.Entry `json:"entry,omitempty"`
	Index         int            `json:"index"`
	Total         int            `json:"total"`
	Transitioning bool           `json:"transitioning"`
	Debug         Debug          `json:"debug"`
}

// Detail is one detail-view session. It is safe for concurrent use.
type Detail struct {
	resolver   *resolver.Resolver
	cursorCfg  cursor.Config
	cursorOpts []cursor.Option

	mu     sync.Mutex
	gen    uint64
	closed bool
	raw    string
	state  State
	cur    *cursor.Controller
	debug  Debug
}

// NewDetail creates an idle session. cursorOpts are passed to every cursor
// the session builds (clock, scheduler, change callback).
func NewDetail(r *resolver.Resolver, cfg cursor.Config, cursorOpts ...cursor.Option) *Detail {
	return &Detail{
		resolver:   r,
		cursorCfg:  cfg,
		cursorOpts: cursorOpts,
	}
}

// resolution is the outcome of one Open, built without holding the lock.
type resolution struct {
	items []catalog.Entry
	start int
	debug Debug
}

// Open resolves raw and, unless superseded, replaces the session's cursor.
//
// Parent addresses open the whole sibling set at its first entry. Child
// addresses open their parent's set positioned on the child, falling back to a
// single-document lookup when the set is empty. Anything else is looked up as
// an exact key.
func (d *Detail) Open(ctx context.Context, raw string) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.gen++
	gen := d.gen
	d.raw = raw
	d.state = StateLoading
	d.debug = Debug{}
	if d.cur != nil {
		d.cur.Close()
		d.cur = nil
	}
	d.mu.Unlock()

	res := d.resolve(ctx, raw)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || gen != d.gen {
		log.Printf("[Session] discarding stale result for %q (generation %d)", raw, gen)
		return ErrStale
	}

	d.debug = res.debug
	if len(res.items) == 0 {
		d.state = StateNotFound
		return nil
	}
	d.cur = cursor.New(res.items, res.start, d.cursorCfg, d.cursorOpts...)
	d.state = StateReady
	return nil
}

func (d *Detail) resolve(ctx context.Context, raw string) resolution {
	addr := address.ParseAddress(raw)

	switch addr.Kind {
	case address.KindParent:
		set := d.resolver.ResolveParent(ctx, addr.Parent)
		return resolution{items: set.Entries, debug: setDebug(set)}

	case address.KindChild:
		set := d.resolver.ResolveParent(ctx, addr.Parent)
		if set.Len() > 0 {
			return resolution{
				items: set.Entries,
				start: resolver.LocateIndex(set, raw),
				debug: setDebug(set),
			}
		}
		return d.resolveSingle(ctx, raw, set.LastError)

	default:
		return d.resolveSingle(ctx, raw, "")
	}
}

func (d *Detail) resolveSingle(ctx context.Context, raw, priorErr string) resolution {
	entry, lookup := d.resolver.ResolveSingle(ctx, raw)
	exists := lookup.Exists
	dbg := Debug{Exists: &exists, LastError: lookup.Error, Tried: lookup.Tried}
	if dbg.LastError == "" {
		dbg.LastError = priorErr
	}
	if entry == nil {
		return resolution{debug: dbg}
	}
	return resolution{items: []catalog.Entry{*entry}, debug: dbg}
}

func setDebug(set *resolver.SiblingSet) Debug {
	exists := set.Found > 0
	return Debug{Exists: &exists, LastError: set.LastError}
}

// Handle forwards one raw input to the cursor.
func (d *Detail) Handle(delta float64, region cursor.ScrollRegion) cursor.Outcome {
	cur := d.cursor()
	if cur == nil {
		return cursor.OutcomeEmpty
	}
	return cur.Handle(delta, region)
}

// Advance moves to the next sibling.
func (d *Detail) Advance() cursor.Outcome {
	cur := d.cursor()
	if cur == nil {
		return cursor.OutcomeEmpty
	}
	return cur.Advance()
}

// Retreat moves to the previous sibling.
func (d *Detail) Retreat() cursor.Outcome {
	cur := d.cursor()
	if cur == nil {
		return cursor.OutcomeEmpty
	}
	return cur.Retreat()
}

func (d *Detail) cursor() *cursor.Controller {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cur
}

// Generation returns the number of Open calls so far.
func (d *Detail) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen
}

// Snapshot returns the current view state.
func (d *Detail) Snapshot() Snapshot {
	d.mu.Lock()
	snap := Snapshot{
		Address:    d.raw,
		Generation: d.gen,
		State:      d.state,
		Debug:      d.debug,
	}
	cur := d.cur
	d.mu.Unlock()

	if cur != nil {
		st := cur.State()
		snap.Index = st.Index
		snap.Total = st.Len
		snap.Transitioning = st.Transitioning
		if e, ok := cur.Current(); ok {
			snap.Entry = &e
		}
	}
	return snap
}

// Close discards any in-flight resolution and stops the cursor.
func (d *Detail) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.gen++
	if d.cur != nil {
		d.cur.Close()
		d.cur = nil
	}
}
