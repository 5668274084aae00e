package portfolio

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/mutualfund-backend/internal/domain"
	"github.com/simaogato/mutualfund-backend/internal/usecase/revaluation"
)

// ErrInvalidUnits is returned when a holding is created with non-positive units
var ErrInvalidUnits = errors.New("units must be positive")

// Position is a holding valued at read time together with its scheme
type Position struct {
	revaluation.Holding
	Scheme *domain.Scheme
}

// PortfolioService handles holding operations for one user at a time
type PortfolioService struct {
	PortfolioRepo domain.PortfolioRepository
	SchemeRepo    domain.SchemeRepository
	Revaluator    *revaluation.Service
}

// NewPortfolioService creates a new PortfolioService instance
func NewPortfolioService(
	portfolioRepo domain.PortfolioRepository,
	schemeRepo domain.SchemeRepository,
	revaluator *revaluation.Service,
) *PortfolioService {
	return &PortfolioService{
		PortfolioRepo: portfolioRepo,
		SchemeRepo:    schemeRepo,
		Revaluator:    revaluator,
	}
}

// List returns the user's holdings valued from the latest stored NAV of each scheme.
// Stored valuations are not touched.
func (s *PortfolioService) List(ctx context.Context, userID uuid.UUID) ([]Position, error) {
	portfolios, err := s.PortfolioRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolio: %w", err)
	}

	schemes := map[uuid.UUID]*domain.Scheme{}
	positions := make([]Position, 0, len(portfolios))
	for _, p := range portfolios {
		h, err := s.Revaluator.Valuate(ctx, p)
		if err != nil {
			return nil, err
		}

		scheme, ok := schemes[p.SchemeID]
		if !ok {
			scheme, err = s.SchemeRepo.GetByID(ctx, p.SchemeID)
			if err != nil {
				return nil, fmt.Errorf("failed to load scheme of holding %s: %w", p.ID, err)
			}
			schemes[p.SchemeID] = scheme
		}

		positions = append(positions, Position{Holding: h, Scheme: scheme})
	}

	return positions, nil
}

// Create adds a holding for the user, valued from the latest NAV of the scheme
func (s *PortfolioService) Create(ctx context.Context, userID, schemeID uuid.UUID, units decimal.Decimal) (*Position, error) {
	units = domain.QuantizeUnits(units)
	if !units.IsPositive() {
		return nil, ErrInvalidUnits
	}

	scheme, err := s.SchemeRepo.GetByID(ctx, schemeID)
	if err != nil {
		return nil, err
	}

	p := &domain.Portfolio{
		ID:       uuid.New(),
		UserID:   userID,
		SchemeID: scheme.ID,
		Units:    units,
	}

	h, err := s.Revaluator.Valuate(ctx, p)
	if err != nil {
		return nil, err
	}
	*p = h.Portfolio

	if err := s.PortfolioRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create holding: %w", err)
	}

	h.Portfolio = *p
	return &Position{Holding: h, Scheme: scheme}, nil
}
