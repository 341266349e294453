// Package keylock provides a registry of mutexes keyed by string,
// with bounded acquisition. It is the in-process equivalent of
// SELECT ... FOR UPDATE on one row: callers contending on the same
// key serialize, callers on different keys never block each other.
package keylock

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrTimeout = errors.New("lock acquisition timed out")

type Registry struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewRegistry() *Registry {
	return &Registry{locks: make(map[string]chan struct{})}
}

// lockFor returns the channel-backed mutex for a key, creating it on
// first use. Locks are never removed; the key space is bounded by the
// inventory and household populations.
func (r *Registry) lockFor(key string) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		r.locks[key] = ch
	}
	return ch
}

// Acquire takes the lock for key, waiting at most timeout. On success
// it returns a release func that must be called exactly once. On
// timeout it returns ErrTimeout; on context cancellation, ctx.Err().
func (r *Registry) Acquire(ctx context.Context, key string, timeout time.Duration) (func(), error) {
	ch := r.lockFor(key)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-timer.C:
		return nil, ErrTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
