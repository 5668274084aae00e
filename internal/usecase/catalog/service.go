package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/mutualfund-backend/internal/domain"
)

// CatalogService handles fund house and scheme queries
type CatalogService struct {
	FundHouseRepo domain.FundHouseRepository
	SchemeRepo    domain.SchemeRepository
}

// NewCatalogService creates a new CatalogService instance
func NewCatalogService(fundHouseRepo domain.FundHouseRepository, schemeRepo domain.SchemeRepository) *CatalogService {
	return &CatalogService{
		FundHouseRepo: fundHouseRepo,
		SchemeRepo:    schemeRepo,
	}
}

// ListFundHouses returns every fund house ordered by name
func (s *CatalogService) ListFundHouses(ctx context.Context) ([]*domain.FundHouse, error) {
	fundHouses, err := s.FundHouseRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list fund houses: %w", err)
	}
	return fundHouses, nil
}

// ListSchemes returns the open-ended schemes of a fund house.
// Returns domain.ErrNotFound when the fund house does not exist.
func (s *CatalogService) ListSchemes(ctx context.Context, fundHouseID uuid.UUID) ([]*domain.Scheme, error) {
	if _, err := s.FundHouseRepo.GetByID(ctx, fundHouseID); err != nil {
		return nil, err
	}

	schemes, err := s.SchemeRepo.ListOpenEndedByFundHouse(ctx, fundHouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemes: %w", err)
	}
	return schemes, nil
}
