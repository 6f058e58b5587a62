package catalog

import (
	"encoding/json"
	"fmt"
)

// Serialization helpers for converting between Entry and Redis hashes
//
// Redis stores data as string-to-string maps. Tags are JSON-encoded into a
// single field; every other field maps one to one.

// EntryToHash converts an Entry to a Redis hash.
func EntryToHash(e *Entry) (map[string]interface{}, error) {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}

	hash := map[string]interface{}{
		"key":         e.Key,
		"title":       e.Title,
		"author":      e.Author,
		"year":        e.Year,
		"description": e.Description,
		"image_url":   e.ImageURL,
		"tags":        string(tagsJSON),
	}

	return hash, nil
}

// HashToEntry converts a Redis hash to an Entry.
// A missing "key" field is filled from fallbackKey so that documents written
// by other tools still round-trip.
func HashToEntry(hash map[string]string, fallbackKey string) (*Entry, error) {
	var tags []string
	if tagsJSON := hash["tags"]; tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	if len(tags) == 0 {
		tags = nil
	}

	key := hash["key"]
	if key == "" {
		key = fallbackKey
	}

	return &Entry{
		Key:         key,
		Title:       hash["title"],
		Author:      hash["author"],
		Year:        hash["year"],
		Description: hash["description"],
		ImageURL:    hash["image_url"],
		Tags:        tags,
	}, nil
}
