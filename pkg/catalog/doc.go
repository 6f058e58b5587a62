// Package catalog provides the entry type, storage schema and document store
// clients for the artmatrix catalog.
//
// # Overview
//
// The catalog is a flat key/value collection of artwork entries. Every entry is
// addressed by a composite key built from its grid position, for example
// "R2C5-r3c1" (parent cell row 2, column 5, sub-cell row 3, column 1). The key
// grammar itself lives in internal/address; this package treats keys as opaque
// strings.
//
// Two stores implement the Store interface:
//
//   - Client: Redis-backed. Each entry is a hash. Writes and deletes publish a
//     JSON event so that other processes can follow changes.
//   - SQLiteStore: a single local database file, useful for offline work and
//     for the maintenance tools.
//
// # Usage Example
//
//	client, err := catalog.NewClient(&redis.Options{Addr: "localhost:6379"}, "details")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	entry := &catalog.Entry{
//		Key:      "R1C1-r1c1",
//		Title:    "Still life",
//		ImageURL: "https://example.com/still-life.png",
//	}
//	if err := client.SetEntry(ctx, entry); err != nil {
//		log.Fatal(err)
//	}
//
// # Redis Schema
//
// All Redis keys follow the pattern: artmatrix:{collection}:{entity}:{id}
//
// Entries: artmatrix:{collection}:detail:{key}
// Entry events: artmatrix:{collection}:detail_events
// Anonymous identities: artmatrix:identity:{uid}
//
// # Missing images
//
// An entry's image reference may be absent in three ways: the field is empty,
// it holds the sentinel NoImageSentinel ("no_URL"), or it is not a usable URL.
// HasImage folds all three into one answer.
package catalog
