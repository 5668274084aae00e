package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// FundHouse represents an asset-management company offering one or more schemes
type FundHouse struct {
	ID   uuid.UUID
	Name string // Unique across the catalog
}

// Validate ensures the fund house adheres to domain rules
func (f *FundHouse) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.New("fund house name cannot be empty")
	}
	return nil
}
