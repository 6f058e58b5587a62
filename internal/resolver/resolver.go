package resolver

import (
	"context"
	"log"
	"sync"

	"github.com/dyluth/artmatrix/internal/address"
	"github.com/dyluth/artmatrix/pkg/catalog"
)

// MaxSiblings is the size of a full sub-grid.
const MaxSiblings = address.SubGridSize * address.SubGridSize

// SiblingSet is the filtered, row-major list of a parent's existing children.
type SiblingSet struct {
	Parent  address.ParentKey `json:"parent"`
	Entries []catalog.Entry   `json:"entries"`

	// Found counts documents that existed before image filtering.
	Found int `json:"found"`

	// LastError holds the most recent probe failure, for the debug panel only.
	// Failures never abort resolution.
	LastError string `json:"lastError,omitempty"`
}

// Len returns the number of entries in the set.
func (s *SiblingSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

// Lookup describes a single-document resolution for diagnostics.
type Lookup struct {
	Address address.Address `json:"-"`
	Tried   []string        `json:"tried"`
	Exists  bool            `json:"exists"`
	Key     string          `json:"key,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Resolver maps grid addresses to catalog documents.
type Resolver struct {
	store       catalog.Getter
	strictImage bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithStrictImages selects the image rule used when filtering sibling sets.
// Strict (the default) requires an http(s) URL; lenient accepts any non-empty,
// non-sentinel value.
func WithStrictImages(strict bool) Option {
	return func(r *Resolver) {
		r.strictImage = strict
	}
}

// New creates a Resolver backed by store.
func New(store catalog.Getter, opts ...Option) *Resolver {
	r := &Resolver{store: store, strictImage: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StrictImages reports which image rule the resolver applies.
func (r *Resolver) StrictImages() bool {
	return r.strictImage
}

// slotResult is the outcome of probing one sub-grid position.
type slotResult struct {
	entry   *catalog.Entry
	lastErr error
}

// ResolveParent probes all 16 sub-grid slots of parent and returns the
// children that exist and carry an image.
//
// Slots are probed concurrently. Within a slot the candidate spellings are
// tried in priority order and the first existing document wins. The result is
// assembled in row-major order only after every slot has finished, so
// completion order never affects the output. A failing probe counts as "not
// found" for that candidate.
func (r *Resolver) ResolveParent(ctx context.Context, parent address.ParentKey) *SiblingSet {
	slots := address.Slots()
	results := make([]slotResult, len(slots))

	var wg sync.WaitGroup
	for i, slot := range slots {
		wg.Add(1)
		go func(i int, slot address.Slot) {
			defer wg.Done()
			results[i] = r.probeSlot(ctx, parent, slot)
		}(i, slot)
	}
	wg.Wait()

	set := &SiblingSet{Parent: parent, Entries: make([]catalog.Entry, 0, len(slots))}
	for _, res := range results {
		if res.lastErr != nil {
			set.LastError = res.lastErr.Error()
		}
		if res.entry == nil {
			continue
		}
		set.Found++
		if !res.entry.HasImage(r.strictImage) {
			continue
		}
		set.Entries = append(set.Entries, *res.entry)
	}

	return set
}

func (r *Resolver) probeSlot(ctx context.Context, parent address.ParentKey, slot address.Slot) slotResult {
	var res slotResult
	for _, key := range address.CandidateKeys(parent, slot.SubRow, slot.SubCol) {
		entry, err := r.probe(ctx, key)
		if err != nil {
			res.lastErr = err
			continue
		}
		if entry != nil {
			res.entry = entry
			return res
		}
	}
	return res
}

// probe fetches one key. It returns (nil, nil) when the document does not
// exist and (nil, err) on any other failure.
func (r *Resolver) probe(ctx context.Context, key string) (*catalog.Entry, error) {
	entry, err := r.store.GetEntry(ctx, key)
	if err != nil {
		if catalog.IsNotFound(err) {
			return nil, nil
		}
		log.Printf("[Resolver] probe %s failed: %v", key, err)
		return nil, err
	}
	// The spelling that hit is the entry's address, whatever the stored field says
	entry.Key = key
	return entry, nil
}

// ResolveSingle looks up one document.
//
// Child addresses try every historical spelling of the key. Parent and invalid
// addresses are looked up verbatim. The entry is nil when nothing exists or
// when every probe failed; the two cases are not distinguished here, but the
// returned Lookup keeps the last error for display.
func (r *Resolver) ResolveSingle(ctx context.Context, raw string) (*catalog.Entry, Lookup) {
	addr := address.ParseAddress(raw)
	lookup := Lookup{Address: addr}

	candidates := []string{raw}
	if addr.Kind == address.KindChild {
		candidates = address.CandidateKeys(addr.Parent, addr.SubRow, addr.SubCol)
	}

	for _, key := range candidates {
		lookup.Tried = append(lookup.Tried, key)
		entry, err := r.probe(ctx, key)
		if err != nil {
			lookup.Error = err.Error()
			continue
		}
		if entry != nil {
			lookup.Exists = true
			lookup.Key = key
			return entry, lookup
		}
	}

	return nil, lookup
}
