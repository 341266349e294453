package domain

import (
	"fmt"
	"time"
)

// InventoryKey identifies one stock row: a package held at a center.
// All locking and linearization in the ledger is scoped to this key.
type InventoryKey struct {
	CenterID  int64
	PackageID int64
}

func (k InventoryKey) String() string {
	return fmt.Sprintf("%d:%d", k.CenterID, k.PackageID)
}

type InventoryRecord struct {
	Key         InventoryKey
	Quantity    int
	LastUpdated time.Time
}
