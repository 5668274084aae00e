package domain

import (
	"context"

	"github.com/google/uuid"
)

// FundHouseRepository defines the interface for fund house persistence operations
type FundHouseRepository interface {
	// GetOrCreate atomically inserts a fund house by name if absent.
	// Returns the stored row and whether it was created by this call.
	GetOrCreate(ctx context.Context, name string) (*FundHouse, bool, error)

	// GetByID retrieves a fund house by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*FundHouse, error)

	// List retrieves all fund houses ordered by name
	List(ctx context.Context) ([]*FundHouse, error)
}

// SchemeRepository defines the interface for scheme persistence operations
type SchemeRepository interface {
	// GetByCode retrieves a scheme by its external scheme code.
	// Returns ErrNotFound when the code is not in the catalog.
	GetByCode(ctx context.Context, code int64) (*Scheme, error)

	// GetByID retrieves a scheme by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Scheme, error)

	// GetOrCreate atomically inserts the scheme if its code is absent.
	// Existing schemes are returned unchanged.
	GetOrCreate(ctx context.Context, scheme *Scheme) (*Scheme, bool, error)

	// ListOpenEndedByFundHouse retrieves the open-ended schemes of a fund house
	ListOpenEndedByFundHouse(ctx context.Context, fundHouseID uuid.UUID) ([]*Scheme, error)
}

// NAVRepository defines the interface for NAV history persistence operations
type NAVRepository interface {
	// Upsert inserts the NAV for (scheme, date) or overwrites its value
	Upsert(ctx context.Context, nav *NAV) error

	// Latest retrieves the NAV with the most recent date for a scheme.
	// Returns ErrNotFound when the scheme has no NAV history.
	Latest(ctx context.Context, schemeID uuid.UUID) (*NAV, error)
}

// PortfolioRepository defines the interface for holding persistence operations
type PortfolioRepository interface {
	// Create stores a new holding
	Create(ctx context.Context, p *Portfolio) error

	// ListByScheme retrieves every holding referencing a scheme
	ListByScheme(ctx context.Context, schemeID uuid.UUID) ([]*Portfolio, error)

	// ListByUser retrieves the holdings of a user
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Portfolio, error)

	// SaveValuation persists CurrentNAV and CurrentValue and stamps LastUpdated
	SaveValuation(ctx context.Context, p *Portfolio) error
}

// PeriodicTaskRepository defines the interface for the scheduled job registry
type PeriodicTaskRepository interface {
	// CreateIfAbsent registers the task unless one with the same name exists.
	// Returns ErrCatalogNotReady when the registry table is missing.
	CreateIfAbsent(ctx context.Context, task *PeriodicTask) (bool, error)

	// ListEnabled retrieves every enabled task
	ListEnabled(ctx context.Context) ([]*PeriodicTask, error)
}
