package keylock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAcquire_MutualExclusion(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	var inCritical atomic.Int32
	var violations atomic.Int32
	var counter int

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			release, err := r.Acquire(ctx, "key-a", time.Second)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if inCritical.Add(1) != 1 {
				violations.Add(1)
			}
			counter++
			inCritical.Add(-1)

			release()
		}()
	}
	wg.Wait()

	if violations.Load() != 0 {
		t.Errorf("observed %d concurrent critical sections", violations.Load())
	}
	if counter != 50 {
		t.Errorf("expected counter 50, got %d", counter)
	}
}

func TestAcquire_Timeout(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	release, err := r.Acquire(ctx, "held", time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer release()

	_, err = r.Acquire(ctx, "held", 20*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got: %v", err)
	}
}

func TestAcquire_DifferentKeysDoNotContend(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	release, err := r.Acquire(ctx, "key-a", time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer release()

	// key-b must be acquirable immediately while key-a is held.
	releaseB, err := r.Acquire(ctx, "key-b", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("expected independent key to acquire, got: %v", err)
	}
	releaseB()
}

func TestAcquire_ContextCancelled(t *testing.T) {
	r := NewRegistry()

	release, err := r.Acquire(context.Background(), "held", time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.Acquire(ctx, "held", time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
}

func TestAcquire_ReleaseAllowsNextWaiter(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	release, err := r.Acquire(ctx, "key", time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	release()

	release2, err := r.Acquire(ctx, "key", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("expected re-acquire after release, got: %v", err)
	}
	release2()
}
