package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/dyluth/artmatrix/pkg/catalog"
)

// Signer registers an anonymous identity with the store.
type Signer interface {
	SignInAnonymously(ctx context.Context, ttl time.Duration) (*catalog.Identity, error)
}

// IdentityBootstrap tracks a background anonymous sign-in.
type IdentityBootstrap struct {
	ready chan struct{}

	mu       sync.Mutex
	identity *catalog.Identity
	err      error
}

// Bootstrap starts anonymous sign-in on its own goroutine and returns
// immediately, so the first render never waits for it.
func Bootstrap(ctx context.Context, signer Signer, ttl time.Duration) *IdentityBootstrap {
	b := &IdentityBootstrap{ready: make(chan struct{})}

	go func() {
		defer close(b.ready)

		id, err := signer.SignInAnonymously(ctx, ttl)

		b.mu.Lock()
		b.identity, b.err = id, err
		b.mu.Unlock()

		if err != nil {
			log.Printf("[Identity] anonymous sign-in failed: %v", err)
			return
		}
		log.Printf("[Identity] signed in as %s", id.UID)
	}()

	return b
}

// Ready is closed once sign-in has finished, successfully or not.
func (b *IdentityBootstrap) Ready() <-chan struct{} {
	return b.ready
}

// Identity returns the signed-in identity, or nil while pending or on failure.
func (b *IdentityBootstrap) Identity() *catalog.Identity {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.identity
}

// Err returns the sign-in error, if any.
func (b *IdentityBootstrap) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}
