// Package keyring manages a rotating set of WhiteBIT API credentials.
// Accounts can hold several key pairs; rotating spreads the per-key
// rate budget and routes around keys the exchange has started
// rejecting.
package keyring

import (
	"fmt"
	"sync"
	"time"

	"whitebit/pkg/core"
)

// Key is one API key pair with its rotation bookkeeping.
type Key struct {
	// ID names the key in logs and management calls; it is never sent
	// to the exchange.
	ID          string
	Credentials core.Credentials
	Disabled    bool
	LastUsed    time.Time
	ErrorCount  int
}

// String masks the key material.
func (k *Key) String() string {
	return fmt.Sprintf("Key{ID:%s, APIKey:%s}", k.ID, maskKey(k.Credentials.APIKey))
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

// RotationStrategy decides when the ring advances to the next key.
type RotationStrategy int

const (
	// RotateManually advances only on explicit Rotate calls.
	RotateManually RotationStrategy = iota
	// RotateOnError advances whenever the exchange rejects the current key.
	RotateOnError
)

// Ring is a thread-safe rotating credential set.
type Ring struct {
	mu       sync.RWMutex
	keys     []*Key
	current  int
	strategy RotationStrategy
}

// New creates a Ring over copies of the given keys. At least one key
// with complete credentials is required.
func New(keys []*Key, strategy RotationStrategy) (*Ring, error) {
	if len(keys) == 0 {
		return nil, core.NewConfigError("keys", "must not be empty")
	}

	copies := make([]*Key, len(keys))
	for i, k := range keys {
		if k.Credentials.APIKey == "" || k.Credentials.SecretKey == "" {
			return nil, core.NewConfigError("keys", fmt.Sprintf("key %q has incomplete credentials", k.ID))
		}
		c := *k
		copies[i] = &c
	}

	return &Ring{keys: copies, strategy: strategy}, nil
}

// Current returns the active key, skipping disabled ones. It returns
// nil when every key is disabled.
func (r *Ring) Current() *Key {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := 0; i < len(r.keys); i++ {
		idx := (r.current + i) % len(r.keys)
		if !r.keys[idx].Disabled {
			return r.keys[idx]
		}
	}
	return nil
}

// Rotate advances to the next enabled key.
func (r *Ring) Rotate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rotateLocked()
}

func (r *Ring) rotateLocked() {
	start := r.current
	for {
		r.current = (r.current + 1) % len(r.keys)
		if !r.keys[r.current].Disabled || r.current == start {
			return
		}
	}
}

// OnError records a rejection of the current key and rotates when the
// strategy calls for it.
func (r *Ring) OnError() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.keys[r.current].ErrorCount++
	if r.strategy == RotateOnError {
		r.rotateLocked()
	}
}

// MarkUsed stamps the current key's last-used time.
func (r *Ring) MarkUsed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[r.current].LastUsed = time.Now()
}

// Disable takes the named key out of rotation.
func (r *Ring) Disable(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range r.keys {
		if key.ID == id {
			key.Disabled = true
			return
		}
	}
}

// Enable returns the named key to rotation and clears its error count.
func (r *Ring) Enable(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range r.keys {
		if key.ID == id {
			key.Disabled = false
			key.ErrorCount = 0
			return
		}
	}
}

// Keys returns a snapshot of the ring for inspection.
func (r *Ring) Keys() []Key {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Key, len(r.keys))
	for i, k := range r.keys {
		out[i] = *k
	}
	return out
}
