package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/simaogato/mutualfund-backend/internal/domain"
)

// fundHouseRepository implements domain.FundHouseRepository
type fundHouseRepository struct {
	db *DB
}

// NewFundHouseRepository creates a new fund house repository
func NewFundHouseRepository(db *DB) domain.FundHouseRepository {
	return &fundHouseRepository{db: db}
}

// GetOrCreate inserts the fund house unless the name exists, then returns the stored row
func (r *fundHouseRepository) GetOrCreate(ctx context.Context, name string) (*domain.FundHouse, bool, error) {
	fh := domain.FundHouse{ID: uuid.New(), Name: strings.TrimSpace(name)}
	if err := fh.Validate(); err != nil {
		return nil, false, err
	}

	insert := `
		INSERT INTO fund_houses (id, name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
		RETURNING id, name
	`

	var created domain.FundHouse
	err := r.db.QueryRowContext(ctx, insert, fh.ID, fh.Name).Scan(&created.ID, &created.Name)
	if err == nil {
		return &created, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, wrapError(err, "failed to insert fund house %q", fh.Name)
	}

	// Lost the race or already present: read the winner
	var existing domain.FundHouse
	err = r.db.QueryRowContext(ctx, `SELECT id, name FROM fund_houses WHERE name = $1`, fh.Name).
		Scan(&existing.ID, &existing.Name)
	if err != nil {
		return nil, false, wrapError(err, "failed to get fund house %q", fh.Name)
	}
	return &existing, false, nil
}

// GetByID retrieves a fund house by its ID
func (r *fundHouseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FundHouse, error) {
	var fh domain.FundHouse
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM fund_houses WHERE id = $1`, id).
		Scan(&fh.ID, &fh.Name)
	if err != nil {
		return nil, wrapError(err, "fund house %s", id)
	}
	return &fh, nil
}

// List retrieves all fund houses ordered by name
func (r *fundHouseRepository) List(ctx context.Context) ([]*domain.FundHouse, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM fund_houses ORDER BY name`)
	if err != nil {
		return nil, wrapError(err, "failed to list fund houses")
	}
	defer rows.Close()

	fundHouses := make([]*domain.FundHouse, 0)
	for rows.Next() {
		var fh domain.FundHouse
		if err := rows.Scan(&fh.ID, &fh.Name); err != nil {
			return nil, wrapError(err, "failed to scan fund house")
		}
		fundHouses = append(fundHouses, &fh)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError(err, "error iterating fund houses")
	}

	return fundHouses, nil
}
