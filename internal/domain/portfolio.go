package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Decimal places kept for each stored quantity. These match the NUMERIC
// scales of the navs and portfolios columns.
const (
	ValuePrecision = 2
	NAVPrecision   = 6
	UnitsPrecision = 6
)

// Portfolio represents a user's holding of units in one scheme
// CurrentNAV and CurrentValue are denormalized caches refreshed through Revalue
type Portfolio struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	SchemeID     uuid.UUID
	Units        decimal.Decimal
	CurrentNAV   decimal.Decimal
	CurrentValue decimal.Decimal
	LastUpdated  time.Time // Set by the store on every save
}

// Validate ensures the portfolio adheres to domain rules
func (p *Portfolio) Validate() error {
	if p.UserID == uuid.Nil {
		return errors.New("portfolio must reference a user")
	}
	if p.SchemeID == uuid.Nil {
		return errors.New("portfolio must reference a scheme")
	}
	if p.Units.LessThanOrEqual(decimal.Zero) {
		return errors.New("portfolio units must be positive")
	}
	return nil
}

// Revalue refreshes the cached valuation for the given NAV.
// The NAV is quantized to NAVPrecision first, so after the call
// CurrentValue == round(Units * CurrentNAV, 2) holds for the stored row too.
func (p *Portfolio) Revalue(nav decimal.Decimal) {
	p.CurrentNAV = QuantizeNAV(nav)
	p.CurrentValue = ValueOf(p.Units, p.CurrentNAV)
}

// QuantizeNAV rounds a NAV to the precision it is stored with
func QuantizeNAV(nav decimal.Decimal) decimal.Decimal {
	return nav.Round(NAVPrecision)
}

// QuantizeUnits rounds a unit count to the precision it is stored with
func QuantizeUnits(units decimal.Decimal) decimal.Decimal {
	return units.Round(UnitsPrecision)
}

// ValueOf computes round(units * nav, 2)
func ValueOf(units, nav decimal.Decimal) decimal.Decimal {
	return units.Mul(nav).Round(ValuePrecision)
}
