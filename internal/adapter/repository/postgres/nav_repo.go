package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/mutualfund-backend/internal/domain"
)

// navRepository implements domain.NAVRepository
type navRepository struct {
	db *DB
}

// NewNAVRepository creates a new NAV repository
func NewNAVRepository(db *DB) domain.NAVRepository {
	return &navRepository{db: db}
}

// Upsert inserts the NAV for (scheme, date) or overwrites the stored value
func (r *navRepository) Upsert(ctx context.Context, nav *domain.NAV) error {
	if err := nav.Validate(); err != nil {
		return err
	}
	if nav.ID == uuid.Nil {
		nav.ID = uuid.New()
	}

	query := `
		INSERT INTO navs (id, scheme_id, nav_date, nav)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (scheme_id, nav_date) DO UPDATE SET nav = EXCLUDED.nav
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		nav.ID,
		nav.SchemeID,
		nav.Date.Format("2006-01-02"),
		nav.Value.String(),
	).Scan(&nav.ID)
	if err != nil {
		return wrapError(err, "failed to upsert nav for scheme %s on %s", nav.SchemeID, nav.Date.Format("2006-01-02"))
	}

	return nil
}

// Latest retrieves the most recent NAV for a scheme
func (r *navRepository) Latest(ctx context.Context, schemeID uuid.UUID) (*domain.NAV, error) {
	query := `
		SELECT id, scheme_id, nav_date, nav
		FROM navs
		WHERE scheme_id = $1
		ORDER BY nav_date DESC
		LIMIT 1
	`

	var nav domain.NAV
	var navStr string

	err := r.db.QueryRowContext(ctx, query, schemeID).Scan(
		&nav.ID,
		&nav.SchemeID,
		&nav.Date,
		&navStr,
	)
	if err != nil {
		return nil, wrapError(err, "no nav history found for scheme %s", schemeID)
	}

	// Parse nav (NUMERIC)
	value, err := decimal.NewFromString(navStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse nav: %w", err)
	}
	nav.Value = value
	nav.Date = nav.Date.UTC()

	return &nav, nil
}
