// Package revaluation keeps holding valuations in step with scheme NAVs.
//
// There are two entry points over the same refresh rule: PushNAV persists
// the new valuation of every holding after a NAV write, and Valuate computes
// a read-time valuation from the latest stored NAV without persisting it.
package revaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simaogato/mutualfund-backend/internal/domain"
)

// Service applies NAVs to holdings
type Service struct {
	PortfolioRepo domain.PortfolioRepository
	NAVRepo       domain.NAVRepository
	Logger        *zap.Logger
}

// NewService creates a new revaluation Service instance
func NewService(portfolioRepo domain.PortfolioRepository, navRepo domain.NAVRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		PortfolioRepo: portfolioRepo,
		NAVRepo:       navRepo,
		Logger:        logger,
	}
}

// Refresh recomputes the cached NAV and value of a holding
func Refresh(p *domain.Portfolio, nav decimal.Decimal) {
	p.Revalue(nav)
}

// PushResult counts the holdings touched by one PushNAV call
type PushResult struct {
	Revalued int
	Failed   int
}

// PushNAV refreshes and persists every holding of the scheme.
// A holding that fails to save is logged and counted; the others still go through.
// The error is only set when the holdings could not be listed at all.
func (s *Service) PushNAV(ctx context.Context, scheme *domain.Scheme, nav decimal.Decimal) (PushResult, error) {
	var res PushResult

	portfolios, err := s.PortfolioRepo.ListByScheme(ctx, scheme.ID)
	if err != nil {
		return res, fmt.Errorf("failed to list portfolios of scheme %d: %w", scheme.SchemeCode, err)
	}

	for _, p := range portfolios {
		Refresh(p, nav)
		if err := s.PortfolioRepo.SaveValuation(ctx, p); err != nil {
			res.Failed++
			s.Logger.Warn("failed to save portfolio valuation",
				zap.Int64("scheme_code", scheme.SchemeCode),
				zap.String("portfolio_id", p.ID.String()),
				zap.Error(err),
			)
			continue
		}
		res.Revalued++
	}

	return res, nil
}

// Holding is a read-time valuation of one portfolio row
type Holding struct {
	Portfolio domain.Portfolio
	NAVDate   *time.Time // Date of the NAV used; nil when the scheme has no NAV yet
}

// Valuate values a holding from the latest stored NAV of its scheme.
// Schemes without NAV history value at zero. The stored row is never written.
func (s *Service) Valuate(ctx context.Context, p *domain.Portfolio) (Holding, error) {
	h := Holding{Portfolio: *p}

	latest, err := s.NAVRepo.Latest(ctx, p.SchemeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			Refresh(&h.Portfolio, decimal.Zero)
			return h, nil
		}
		return h, fmt.Errorf("failed to look up latest nav for scheme %s: %w", p.SchemeID, err)
	}

	Refresh(&h.Portfolio, latest.Value)
	date := latest.Date
	h.NAVDate = &date
	return h, nil
}
