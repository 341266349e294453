package port

import (
	"context"

	"github.com/rl1809/aid-distribution/internal/core/domain"
)

// DirectoryRepository provides read-only lookups of the entities the
// engine references but does not own. Lookups return (nil, nil) when
// the id is unknown.
type DirectoryRepository interface {
	GetCenter(ctx context.Context, id int64) (*domain.Center, error)
	GetPackage(ctx context.Context, id int64) (*domain.AidPackage, error)
	GetHousehold(ctx context.Context, id int64) (*domain.Household, error)
}
