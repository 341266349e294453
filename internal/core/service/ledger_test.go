package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rl1809/aid-distribution/internal/core/domain"
)

func TestLedgerReserve_Success(t *testing.T) {
	store := newMockInventoryStore()
	store.stock[key11] = 10

	ledger := NewLedger(store, time.Second)

	if err := ledger.Reserve(context.Background(), key11, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.quantity(key11) != 7 {
		t.Errorf("expected quantity 7, got %d", store.quantity(key11))
	}
}

func TestLedgerReserve_RecordNotFound(t *testing.T) {
	ledger := NewLedger(newMockInventoryStore(), time.Second)

	err := ledger.Reserve(context.Background(), key11, 1)
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got: %v", err)
	}
}

func TestLedgerReserve_InsufficientStock(t *testing.T) {
	store := newMockInventoryStore()
	store.stock[key11] = 2

	ledger := NewLedger(store, time.Second)

	err := ledger.Reserve(context.Background(), key11, 5)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("expected ErrInsufficientStock, got: %v", err)
	}
	if store.quantity(key11) != 2 {
		t.Errorf("quantity must be untouched, got %d", store.quantity(key11))
	}
}

// At-most-one-winner: concurrent reservations against one key never
// drive quantity below zero and exactly stock-many calls succeed.
func TestLedgerReserve_Concurrent(t *testing.T) {
	initialStock := 20
	totalRequests := 50

	store := newMockInventoryStore()
	store.stock[key11] = initialStock

	ledger := NewLedger(store, 5*time.Second)

	var success atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := ledger.Reserve(context.Background(), key11, 1)
			if err == nil {
				success.Add(1)
			} else if !errors.Is(err, ErrInsufficientStock) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if success.Load() != int32(initialStock) {
		t.Errorf("expected %d successes, got %d", initialStock, success.Load())
	}
	if store.quantity(key11) != 0 {
		t.Errorf("expected quantity 0, got %d", store.quantity(key11))
	}
}

func TestLedgerReserve_LockTimeout(t *testing.T) {
	store := newMockInventoryStore()
	store.stock[key11] = 10
	store.getDelay = 300 * time.Millisecond

	ledger := NewLedger(store, 30*time.Millisecond)

	// First caller holds the key lock for the duration of its slow
	// store read.
	done := make(chan struct{})
	go func() {
		defer close(done)
		ledger.Reserve(context.Background(), key11, 1)
	}()

	time.Sleep(50 * time.Millisecond)
	err := ledger.Reserve(context.Background(), key11, 1)
	if !errors.Is(err, ErrLockTimeout) {
		t.Errorf("expected ErrLockTimeout, got: %v", err)
	}
	<-done
}

func TestLedgerRestock_CreatesRecord(t *testing.T) {
	store := newMockInventoryStore()
	ledger := NewLedger(store, time.Second)

	qty, err := ledger.Restock(context.Background(), key11, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if qty != 10 {
		t.Errorf("expected quantity 10, got %d", qty)
	}

	qty, err = ledger.Restock(context.Background(), key11, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if qty != 15 {
		t.Errorf("expected quantity 15, got %d", qty)
	}
}

func TestLedgerRestock_RejectsNonPositive(t *testing.T) {
	ledger := NewLedger(newMockInventoryStore(), time.Second)

	if _, err := ledger.Restock(context.Background(), key11, 0); err == nil {
		t.Error("expected error for zero amount")
	}
	if _, err := ledger.Restock(context.Background(), key11, -1); err == nil {
		t.Error("expected error for negative amount")
	}
}

func TestLedgerRelease_RestoresStock(t *testing.T) {
	store := newMockInventoryStore()
	store.stock[key11] = 5

	ledger := NewLedger(store, time.Second)

	if err := ledger.Reserve(context.Background(), key11, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ledger.Release(context.Background(), key11, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.quantity(key11) != 5 {
		t.Errorf("expected quantity restored to 5, got %d", store.quantity(key11))
	}
}

// Reservations on different keys must proceed in parallel: a slow
// reservation on one key cannot delay another key past its own lock
// timeout.
func TestLedgerReserve_IndependentKeys(t *testing.T) {
	otherKey := domain.InventoryKey{CenterID: 2, PackageID: 1}

	store := newMockInventoryStore()
	store.stock[key11] = 1
	store.stock[otherKey] = 1
	store.getDelay = 200 * time.Millisecond

	ledger := NewLedger(store, 50*time.Millisecond)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	keys := []domain.InventoryKey{key11, otherKey}
	for i, k := range keys {
		wg.Add(1)
		go func(i int, k domain.InventoryKey) {
			defer wg.Done()
			errs[i] = ledger.Reserve(context.Background(), k, 1)
		}(i, k)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("key %s: expected success, got %v", keys[i], err)
		}
	}
}
