package port

import (
	"context"

	"github.com/rl1809/aid-distribution/internal/core/domain"
)

// LogFilter narrows a log query. Zero values mean no filtering on
// that column.
type LogFilter struct {
	HouseholdID int64
	PackageID   int64
	CenterID    int64
}

type DistributionLogRepository interface {
	// Append durably records one completed distribution and returns
	// its log ID. Append-only: nothing in the engine updates or
	// removes entries.
	Append(ctx context.Context, entry domain.LogEntry) (string, error)

	// LastFor returns the most recent successful entry for a
	// household, or nil if none exists. packageID 0 means any
	// package. This is the hot path of every eligibility check.
	LastFor(ctx context.Context, householdID, packageID int64) (*domain.LogEntry, error)

	// Query returns entries matching the filter, newest first.
	Query(ctx context.Context, filter LogFilter, limit int) ([]domain.LogEntry, error)
}
