package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NAVDateLayout is the feed's date format, e.g. "01-Apr-2024". The day may
// also come without its leading zero.
const NAVDateLayout = "2-Jan-2006"

// NAV is the per-unit price of a scheme on one trading day
// (SchemeID, Date) is unique; the latest NAV of a scheme is the row with the max Date
type NAV struct {
	ID       uuid.UUID
	SchemeID uuid.UUID
	Date     time.Time       // Calendar day, UTC midnight
	Value    decimal.Decimal // Always positive
}

// Validate ensures the NAV adheres to domain rules
func (n *NAV) Validate() error {
	if n.SchemeID == uuid.Nil {
		return errors.New("nav must reference a scheme")
	}
	if n.Date.IsZero() {
		return errors.New("nav date must be set")
	}
	if n.Value.LessThanOrEqual(decimal.Zero) {
		return errors.New("nav value must be positive")
	}
	return nil
}

// ParseNAVDate parses a feed date as a UTC calendar day
func ParseNAVDate(s string) (time.Time, error) {
	return time.ParseInLocation(NAVDateLayout, strings.TrimSpace(s), time.UTC)
}
