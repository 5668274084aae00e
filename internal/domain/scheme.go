package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Scheme represents an investable mutual-fund product
// SchemeCode is the external identifier used by the NAV feed
type Scheme struct {
	ID               uuid.UUID
	FundHouseID      uuid.UUID
	SchemeCode       int64
	SchemeName       string
	SchemeType       string
	SchemeCategory   string
	ISINGrowth       *string
	ISINReinvestment *string
	IsOpenEnded      bool
}

// Validate ensures the scheme adheres to domain rules
func (s *Scheme) Validate() error {
	if s.SchemeCode <= 0 {
		return errors.New("scheme code must be positive")
	}
	if s.FundHouseID == uuid.Nil {
		return errors.New("scheme must reference a fund house")
	}
	return nil
}

// IsOpenEndedType reports whether a feed scheme type describes an open-ended scheme
func IsOpenEndedType(schemeType string) bool {
	return strings.Contains(strings.ToLower(schemeType), "open")
}
