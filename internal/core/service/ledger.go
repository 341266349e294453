package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rl1809/aid-distribution/internal/core/domain"
	"github.com/rl1809/aid-distribution/internal/keylock"
	"github.com/rl1809/aid-distribution/internal/port"
)

var (
	ErrRecordNotFound    = errors.New("inventory record not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrLockTimeout       = errors.New("inventory lock wait timed out")
)

// Ledger owns the per-(center,package) stock counters. Every mutation
// goes through a per-key exclusive lock held across the full
// read-check-write, so concurrent reservations against one key are
// linearized while different keys proceed fully in parallel.
type Ledger struct {
	locks       *keylock.Registry
	store       port.InventoryStore
	lockTimeout time.Duration
}

func NewLedger(store port.InventoryStore, lockTimeout time.Duration) *Ledger {
	return &Ledger{
		locks:       keylock.NewRegistry(),
		store:       store,
		lockTimeout: lockTimeout,
	}
}

// Reserve atomically checks and decrements stock for one key.
// Returns ErrRecordNotFound for an unknown (center, package) pair,
// ErrInsufficientStock when quantity is too low, and ErrLockTimeout
// when the per-key lock could not be acquired in time (transient,
// retryable with backoff).
func (l *Ledger) Reserve(ctx context.Context, key domain.InventoryKey, amount int) error {
	release, err := l.acquire(ctx, key)
	if err != nil {
		return err
	}
	defer release()

	quantity, found, err := l.store.GetStock(ctx, key)
	if err != nil {
		return fmt.Errorf("read stock %s: %w", key, err)
	}
	if !found {
		return ErrRecordNotFound
	}
	if quantity < amount {
		return ErrInsufficientStock
	}

	ok, err := l.store.DecrementStock(ctx, key, amount)
	if err != nil {
		return fmt.Errorf("decrement stock %s: %w", key, err)
	}
	if !ok {
		// The store re-checks the guard; under the lock this
		// only trips if the store was mutated out of band.
		return ErrInsufficientStock
	}

	return nil
}

// Release restores a previously reserved amount. It is the
// compensating action for a failed log append and must not be used
// for restocking.
func (l *Ledger) Release(ctx context.Context, key domain.InventoryKey, amount int) error {
	release, err := l.acquire(ctx, key)
	if err != nil {
		return err
	}
	defer release()

	if _, err := l.store.IncrementStock(ctx, key, amount); err != nil {
		return fmt.Errorf("restore stock %s: %w", key, err)
	}
	return nil
}

// Restock adds stock, creating the record at the restocked quantity
// when none exists. Purely additive; participates in the same per-key
// mutual exclusion as Reserve so it cannot race a reservation.
func (l *Ledger) Restock(ctx context.Context, key domain.InventoryKey, amount int) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("restock amount must be positive, got %d", amount)
	}

	release, err := l.acquire(ctx, key)
	if err != nil {
		return 0, err
	}
	defer release()

	quantity, err := l.store.IncrementStock(ctx, key, amount)
	if err != nil {
		return 0, fmt.Errorf("restock %s: %w", key, err)
	}
	return quantity, nil
}

// Quantity reads the current stock level through the store.
func (l *Ledger) Quantity(ctx context.Context, key domain.InventoryKey) (int, bool, error) {
	return l.store.GetStock(ctx, key)
}

func (l *Ledger) acquire(ctx context.Context, key domain.InventoryKey) (func(), error) {
	start := time.Now()
	release, err := l.locks.Acquire(ctx, key.String(), l.lockTimeout)
	inventoryLockWait.Observe(time.Since(start).Seconds())

	if errors.Is(err, keylock.ErrTimeout) {
		return nil, ErrLockTimeout
	}
	if err != nil {
		return nil, err
	}
	return release, nil
}
