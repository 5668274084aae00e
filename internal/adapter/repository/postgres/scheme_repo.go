package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/simaogato/mutualfund-backend/internal/domain"
)

const schemeColumns = `id, fund_house_id, scheme_code, scheme_name, scheme_type, scheme_category,
	isin_growth, isin_reinvestment, is_open_ended`

// schemeRepository implements domain.SchemeRepository
type schemeRepository struct {
	db *DB
}

// NewSchemeRepository creates a new scheme repository
func NewSchemeRepository(db *DB) domain.SchemeRepository {
	return &schemeRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScheme(row rowScanner) (*domain.Scheme, error) {
	var s domain.Scheme
	var isinGrowth, isinReinvestment sql.NullString

	err := row.Scan(
		&s.ID,
		&s.FundHouseID,
		&s.SchemeCode,
		&s.SchemeName,
		&s.SchemeType,
		&s.SchemeCategory,
		&isinGrowth,
		&isinReinvestment,
		&s.IsOpenEnded,
	)
	if err != nil {
		return nil, err
	}

	// Parse nullable ISINs
	if isinGrowth.Valid {
		s.ISINGrowth = &isinGrowth.String
	}
	if isinReinvestment.Valid {
		s.ISINReinvestment = &isinReinvestment.String
	}

	return &s, nil
}

// GetByCode retrieves a scheme by its external scheme code
func (r *schemeRepository) GetByCode(ctx context.Context, code int64) (*domain.Scheme, error) {
	query := `SELECT ` + schemeColumns + ` FROM schemes WHERE scheme_code = $1`

	s, err := scanScheme(r.db.QueryRowContext(ctx, query, code))
	if err != nil {
		return nil, wrapError(err, "scheme code %d", code)
	}
	return s, nil
}

// GetByID retrieves a scheme by its ID
func (r *schemeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Scheme, error) {
	query := `SELECT ` + schemeColumns + ` FROM schemes WHERE id = $1`

	s, err := scanScheme(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapError(err, "scheme %s", id)
	}
	return s, nil
}

// GetOrCreate inserts the scheme unless its code exists. Existing rows are never updated.
func (r *schemeRepository) GetOrCreate(ctx context.Context, scheme *domain.Scheme) (*domain.Scheme, bool, error) {
	if err := scheme.Validate(); err != nil {
		return nil, false, err
	}

	id := scheme.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	insert := `
		INSERT INTO schemes (` + schemeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (scheme_code) DO NOTHING
		RETURNING ` + schemeColumns

	created, err := scanScheme(r.db.QueryRowContext(ctx, insert,
		id,
		scheme.FundHouseID,
		scheme.SchemeCode,
		scheme.SchemeName,
		scheme.SchemeType,
		scheme.SchemeCategory,
		nullString(scheme.ISINGrowth),
		nullString(scheme.ISINReinvestment),
		scheme.IsOpenEnded,
	))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, wrapError(err, "failed to insert scheme %d", scheme.SchemeCode)
	}

	existing, err := r.GetByCode(ctx, scheme.SchemeCode)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// ListOpenEndedByFundHouse retrieves the open-ended schemes of a fund house
func (r *schemeRepository) ListOpenEndedByFundHouse(ctx context.Context, fundHouseID uuid.UUID) ([]*domain.Scheme, error) {
	query := `SELECT ` + schemeColumns + `
		FROM schemes
		WHERE fund_house_id = $1 AND is_open_ended
		ORDER BY scheme_code`

	rows, err := r.db.QueryContext(ctx, query, fundHouseID)
	if err != nil {
		return nil, wrapError(err, "failed to list schemes of fund house %s", fundHouseID)
	}
	defer rows.Close()

	schemes := make([]*domain.Scheme, 0)
	for rows.Next() {
		s, err := scanScheme(rows)
		if err != nil {
			return nil, wrapError(err, "failed to scan scheme")
		}
		schemes = append(schemes, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError(err, "error iterating schemes")
	}

	return schemes, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
