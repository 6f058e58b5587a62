package catalog

import (
	"fmt"
	"net/url"
	"strings"
)

// NoImageSentinel is the literal stored in image_url when an entry
// intentionally has no image.
const NoImageSentinel = "no_URL"

// Entry is a single artwork document.
// All descriptive fields are optional; an empty string means the field is absent.
type Entry struct {
	Key         string   `json:"key"`                   // Document key, e.g. "R1C1-r1c1"
	Title       string   `json:"title,omitempty"`       // Work title
	Author      string   `json:"author,omitempty"`      // Artist name
	Year        string   `json:"year,omitempty"`        // Free-form year ("2025", "c. 1890")
	Description string   `json:"description,omitempty"` // Long text, may contain newlines
	ImageURL    string   `json:"imageUrl,omitempty"`    // Image reference, see HasImage
	Tags        []string `json:"tags,omitempty"`        // Free-form tags ("oil", "portrait")
}

// Validate checks the fields required before an entry can be stored.
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.Key) == "" {
		return fmt.Errorf("key is required")
	}
	if strings.ContainsAny(e.Key, " \t\r\n") {
		return fmt.Errorf("key must not contain whitespace: %q", e.Key)
	}
	return nil
}

// HasImage reports whether an entry's image reference points at something
// displayable.
//
// In lenient mode any non-empty value other than NoImageSentinel counts.
// In strict mode the value must additionally parse as an absolute http or
// https URL with a host.
func HasImage(imageURL string, strict bool) bool {
	v := strings.TrimSpace(imageURL)
	if v == "" || v == NoImageSentinel {
		return false
	}
	if !strict {
		return true
	}

	u, err := url.Parse(v)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// HasImage is a convenience wrapper around the package-level HasImage.
func (e *Entry) HasImage(strict bool) bool {
	return HasImage(e.ImageURL, strict)
}

// EventOp identifies the kind of change carried by an Event.
type EventOp string

const (
	// EventOpSet is published after an entry was written
	EventOpSet EventOp = "set"

	// EventOpDelete is published after an entry was removed
	EventOpDelete EventOp = "delete"
)

// Event describes a change to the collection.
// Entry is nil for deletes.
type Event struct {
	Op    EventOp `json:"op"`
	Key   string  `json:"key"`
	Entry *Entry  `json:"entry,omitempty"`
}

// Identity is an anonymous session registered with the store.
type Identity struct {
	UID         string `json:"uid"`
	CreatedAtMs int64  `json:"created_at_ms"`
}
