package postgres

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS fund_houses (
    id   UUID PRIMARY KEY,
    name VARCHAR(255) NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS schemes (
    id                UUID PRIMARY KEY,
    fund_house_id     UUID NOT NULL REFERENCES fund_houses(id) ON DELETE CASCADE,
    scheme_code       BIGINT NOT NULL UNIQUE,
    scheme_name       VARCHAR(255) NOT NULL DEFAULT '',
    scheme_type       VARCHAR(100) NOT NULL DEFAULT '',
    scheme_category   VARCHAR(100) NOT NULL DEFAULT '',
    isin_growth       VARCHAR(20),
    isin_reinvestment VARCHAR(20),
    is_open_ended     BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_schemes_fund_house ON schemes (fund_house_id) WHERE is_open_ended;

CREATE TABLE IF NOT EXISTS navs (
    id        UUID PRIMARY KEY,
    scheme_id UUID NOT NULL REFERENCES schemes(id) ON DELETE CASCADE,
    nav_date  DATE NOT NULL,
    nav       NUMERIC(20, 6) NOT NULL CHECK (nav > 0),
    UNIQUE (scheme_id, nav_date)
);

CREATE INDEX IF NOT EXISTS idx_navs_scheme_date ON navs (scheme_id, nav_date DESC);

CREATE TABLE IF NOT EXISTS portfolios (
    id            UUID PRIMARY KEY,
    user_id       UUID NOT NULL,
    scheme_id     UUID NOT NULL REFERENCES schemes(id) ON DELETE CASCADE,
    units         NUMERIC(24, 6) NOT NULL CHECK (units > 0),
    current_nav   NUMERIC(20, 6) NOT NULL DEFAULT 0,
    current_value NUMERIC(24, 2) NOT NULL DEFAULT 0,
    last_updated  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_portfolios_scheme ON portfolios (scheme_id);
CREATE INDEX IF NOT EXISTS idx_portfolios_user ON portfolios (user_id);

CREATE TABLE IF NOT EXISTS periodic_tasks (
    name             VARCHAR(200) PRIMARY KEY,
    task             VARCHAR(200) NOT NULL,
    interval_seconds BIGINT NOT NULL CHECK (interval_seconds > 0),
    enabled          BOOLEAN NOT NULL DEFAULT TRUE
);
`

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
