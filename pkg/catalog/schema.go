package catalog

import "fmt"

// Redis key pattern helpers
//
// Keys and channels are namespaced by collection so that several catalogs can
// share one Redis server.
//
// Key pattern: artmatrix:{collection}:{entity}:{id}
// Channel pattern: artmatrix:{collection}:{event_type}_events

// EntryKey returns the Redis key for an entry.
// Pattern: artmatrix:{collection}:detail:{key}
func EntryKey(collection, key string) string {
	return fmt.Sprintf("artmatrix:%s:detail:%s", collection, key)
}

// EntryKeyPrefix returns the prefix shared by all entry keys of a collection.
// Used to strip the namespace from SCAN results.
func EntryKeyPrefix(collection string) string {
	return fmt.Sprintf("artmatrix:%s:detail:", collection)
}

// EntryEventsChannel returns the Pub/Sub channel name for entry events.
// Pattern: artmatrix:{collection}:detail_events
func EntryEventsChannel(collection string) string {
	return fmt.Sprintf("artmatrix:%s:detail_events", collection)
}

// IdentityKey returns the Redis key for an anonymous identity.
// Identities are not collection scoped.
// Pattern: artmatrix:identity:{uid}
func IdentityKey(uid string) string {
	return fmt.Sprintf("artmatrix:identity:%s", uid)
}
