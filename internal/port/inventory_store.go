package port

import (
	"context"

	"github.com/rl1809/aid-distribution/internal/core/domain"
)

type InventoryStore interface {
	// GetStock returns the current quantity for a key; found is false
	// when no record exists for the (center, package) pair.
	GetStock(ctx context.Context, key domain.InventoryKey) (quantity int, found bool, err error)

	// DecrementStock atomically decreases stock, returns false if
	// insufficient or the record does not exist. Quantity never goes
	// negative.
	DecrementStock(ctx context.Context, key domain.InventoryKey, amount int) (bool, error)

	// IncrementStock adds stock, creating the record if absent, and
	// returns the updated quantity. Used by restock and by the
	// orchestrator's rollback path.
	IncrementStock(ctx context.Context, key domain.InventoryKey, amount int) (int, error)

	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)
}
