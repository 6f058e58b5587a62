package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var _ Store = (*Client)(nil)

// Client provides collection-scoped Redis operations for the catalog.
// All keys and channels are automatically namespaced with the collection name.
// The client is thread-safe and can be used concurrently from multiple goroutines.
type Client struct {
	rdb        *redis.Client
	collection string
}

// NewClient creates a new catalog client for the specified collection.
//
// Parameters:
//   - redisOpts: Redis connection options (address, password, DB, etc.)
//   - collection: Collection name, e.g. "details" (must not be empty)
//
// Returns an error if collection is empty.
func NewClient(redisOpts *redis.Options, collection string) (*Client, error) {
	if collection == "" {
		return nil, fmt.Errorf("collection name cannot be empty")
	}

	return &Client{
		rdb:        redis.NewClient(redisOpts),
		collection: collection,
	}, nil
}

// Collection returns the collection this client is scoped to.
func (c *Client) Collection() string {
	return c.collection
}

// RedisClient exposes the underlying connection for callers that need raw commands.
func (c *Client) RedisClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// SetEntry writes an entry as a Redis hash and publishes a set event.
// Existing fields are replaced in a single transaction so that stale fields
// from an earlier version never survive.
func (c *Client) SetEntry(ctx context.Context, e *Entry) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("invalid entry: %w", err)
	}

	hash, err := EntryToHash(e)
	if err != nil {
		return fmt.Errorf("failed to serialize entry: %w", err)
	}

	key := EntryKey(c.collection, e.Key)
	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, hash)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write entry to Redis: %w", err)
	}

	return c.publish(ctx, Event{Op: EventOpSet, Key: e.Key, Entry: e})
}

// GetEntry retrieves an entry by key.
// Returns (nil, ErrNotFound) if no document exists.
func (c *Client) GetEntry(ctx context.Context, key string) (*Entry, error) {
	hashData, err := c.rdb.HGetAll(ctx, EntryKey(c.collection, key)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read entry from Redis: %w", err)
	}

	// HGetAll returns an empty map for missing keys
	if len(hashData) == 0 {
		return nil, ErrNotFound
	}

	entry, err := HashToEntry(hashData, key)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize entry: %w", err)
	}

	return entry, nil
}

// EntryExists checks if an entry exists without fetching it.
func (c *Client) EntryExists(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, EntryKey(c.collection, key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check entry existence: %w", err)
	}
	return n > 0, nil
}

// DeleteEntry removes an entry and publishes a delete event.
func (c *Client) DeleteEntry(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, EntryKey(c.collection, key)).Err(); err != nil {
		return fmt.Errorf("failed to delete entry from Redis: %w", err)
	}
	return c.publish(ctx, Event{Op: EventOpDelete, Key: key})
}

// ListKeys returns the keys of all entries matching a glob pattern.
// Uses SCAN so large collections never block the server.
func (c *Client) ListKeys(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	prefix := EntryKeyPrefix(c.collection)
	iter := c.rdb.Scan(ctx, 0, prefix+pattern, 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan entries: %w", err)
	}

	sort.Strings(keys)
	return keys, nil
}

// SignInAnonymously registers a fresh anonymous identity that expires after ttl.
func (c *Client) SignInAnonymously(ctx context.Context, ttl time.Duration) (*Identity, error) {
	identity := &Identity{
		UID:         uuid.New().String(),
		CreatedAtMs: time.Now().UnixMilli(),
	}

	data, err := json.Marshal(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal identity: %w", err)
	}

	if err := c.rdb.Set(ctx, IdentityKey(identity.UID), data, ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to register identity: %w", err)
	}

	return identity, nil
}

func (c *Client) publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal entry event: %w", err)
	}
	if err := c.rdb.Publish(ctx, EntryEventsChannel(c.collection), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish entry event: %w", err)
	}
	return nil
}

// Subscription represents an active Pub/Sub subscription to entry events.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan *Event
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of entry events.
// The channel will be closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *Event {
	return s.events
}

// Errors returns the channel of subscription errors.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription and cleans up resources. Implements io.Closer.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeEntryEvents subscribes to set/delete events for this collection.
// Caller must call subscription.Close() when done.
// Context cancellation also stops the subscription.
//
// Events are delivered on a buffered channel (size 10). Redis Pub/Sub is
// at-most-once, so a slow subscriber may miss events.
func (c *Client) SubscribeEntryEvents(ctx context.Context) (*Subscription, error) {
	pubsub := c.rdb.Subscribe(ctx, EntryEventsChannel(c.collection))

	// Wait for the subscription to be confirmed so no event published right
	// after this call is lost
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to entry events: %w", err)
	}

	eventsChan := make(chan *Event, 10)
	errorsChan := make(chan error, 10)
	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal entry event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &ev:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}
