package domain

import "time"

type LogStatus string

const (
	LogStatusSuccess   LogStatus = "success"
	LogStatusFailed    LogStatus = "failed"
	LogStatusCancelled LogStatus = "cancelled"
)

// LogEntry is an immutable record of one completed distribution.
// Entries are created exactly once, after a successful inventory
// decrement, and are never updated or deleted.
type LogEntry struct {
	LogID            string
	HouseholdID      int64
	PackageID        int64
	CenterID         int64
	Quantity         int
	DistributionDate time.Time
	Status           LogStatus
	Notes            string
}
