package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/mutualfund-backend/internal/domain"
)

const portfolioColumns = `id, user_id, scheme_id, units, current_nav, current_value, last_updated`

// portfolioRepository implements domain.PortfolioRepository
type portfolioRepository struct {
	db *DB
}

// NewPortfolioRepository creates a new portfolio repository
func NewPortfolioRepository(db *DB) domain.PortfolioRepository {
	return &portfolioRepository{db: db}
}

// Create stores a new holding; last_updated is stamped by the database
func (r *portfolioRepository) Create(ctx context.Context, p *domain.Portfolio) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	query := `
		INSERT INTO portfolios (id, user_id, scheme_id, units, current_nav, current_value, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING last_updated
	`

	err := r.db.QueryRowContext(ctx, query,
		p.ID,
		p.UserID,
		p.SchemeID,
		p.Units.String(),
		p.CurrentNAV.String(),
		p.CurrentValue.String(),
	).Scan(&p.LastUpdated)
	if err != nil {
		return wrapError(err, "failed to create portfolio")
	}

	return nil
}

// ListByScheme retrieves every holding referencing a scheme
func (r *portfolioRepository) ListByScheme(ctx context.Context, schemeID uuid.UUID) ([]*domain.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE scheme_id = $1 ORDER BY id`
	return r.list(ctx, query, schemeID)
}

// ListByUser retrieves the holdings of a user
func (r *portfolioRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE user_id = $1 ORDER BY last_updated DESC, id`
	return r.list(ctx, query, userID)
}

func (r *portfolioRepository) list(ctx context.Context, query string, arg any) ([]*domain.Portfolio, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, wrapError(err, "failed to list portfolios")
	}
	defer rows.Close()

	portfolios := make([]*domain.Portfolio, 0)
	for rows.Next() {
		var p domain.Portfolio
		var unitsStr, navStr, valueStr string

		if err := rows.Scan(&p.ID, &p.UserID, &p.SchemeID, &unitsStr, &navStr, &valueStr, &p.LastUpdated); err != nil {
			return nil, wrapError(err, "failed to scan portfolio")
		}

		// Parse NUMERIC columns
		if p.Units, err = decimal.NewFromString(unitsStr); err != nil {
			return nil, fmt.Errorf("failed to parse units: %w", err)
		}
		if p.CurrentNAV, err = decimal.NewFromString(navStr); err != nil {
			return nil, fmt.Errorf("failed to parse current_nav: %w", err)
		}
		if p.CurrentValue, err = decimal.NewFromString(valueStr); err != nil {
			return nil, fmt.Errorf("failed to parse current_value: %w", err)
		}

		portfolios = append(portfolios, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError(err, "error iterating portfolios")
	}

	return portfolios, nil
}

// SaveValuation persists the cached valuation of one holding
func (r *portfolioRepository) SaveValuation(ctx context.Context, p *domain.Portfolio) error {
	query := `
		UPDATE portfolios
		SET current_nav = $2, current_value = $3, last_updated = NOW()
		WHERE id = $1
		RETURNING last_updated
	`

	err := r.db.QueryRowContext(ctx, query, p.ID, p.CurrentNAV.String(), p.CurrentValue.String()).
		Scan(&p.LastUpdated)
	if err != nil {
		return wrapError(err, "failed to save valuation of portfolio %s", p.ID)
	}

	return nil
}
