// Package reconcile applies NAV feed snapshots to the scheme catalog.
//
// Each record is handled on its own: it is parsed, matched to a known scheme
// by code, upserted as the scheme's NAV for its date and then pushed to every
// holding of that scheme. A bad record is counted as a skip and never stops
// the rest of the batch. Only a failed snapshot fetch or a cancelled context
// ends a run early.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/simaogato/mutualfund-backend/internal/adapter/lock"
	"github.com/simaogato/mutualfund-backend/internal/domain"
	"github.com/simaogato/mutualfund-backend/internal/metrics"
	"github.com/simaogato/mutualfund-backend/internal/usecase/revaluation"
)

// Feed returns the latest NAV snapshot
type Feed interface {
	FetchLatestSnapshot(ctx context.Context) ([]domain.RawRecord, error)
}

// Revaluator pushes a new NAV to the holdings of a scheme
type Revaluator interface {
	PushNAV(ctx context.Context, scheme *domain.Scheme, nav decimal.Decimal) (revaluation.PushResult, error)
}

// Service reconciles feed snapshots against the catalog
type Service struct {
	Feed       Feed
	SchemeRepo domain.SchemeRepository
	NAVRepo    domain.NAVRepository
	Revaluator Revaluator
	Logger     *zap.Logger

	// Optional
	Locker  lock.Locker   // Guards RunScheduled against overlapping runs
	Metrics *metrics.Sync // Receives run and record outcomes
	Workers int           // Scheme partitions applied concurrently; <= 1 is sequential
}

// NewService creates a new reconcile Service instance
func NewService(
	feed Feed,
	schemeRepo domain.SchemeRepository,
	navRepo domain.NAVRepository,
	revaluator Revaluator,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		Feed:       feed,
		SchemeRepo: schemeRepo,
		NAVRepo:    navRepo,
		Revaluator: revaluator,
		Logger:     logger,
		Workers:    1,
	}
}

// Run fetches the latest snapshot and applies it.
// The returned error is a feed error, or ctx.Err() when the run was cancelled
// part way; per-record failures only show up in the Summary.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	start := time.Now()

	records, err := s.Feed.FetchLatestSnapshot(ctx)
	if err != nil {
		return newSummary(0), err
	}

	summary := s.Apply(ctx, records)
	summary.Duration = time.Since(start)
	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("nav sync interrupted with %d records unprocessed: %w", summary.Unprocessed, err)
	}
	return summary, nil
}

// entry is a feed record that passed parsing
type entry struct {
	code  int64
	date  time.Time
	nav   decimal.Decimal
	index int // Position in the snapshot
}

func parseRecord(rec domain.RawRecord) (entry, error) {
	codeText := rec.Text(domain.FieldSchemeCode)
	navText := rec.Text(domain.FieldNetAssetValue)
	dateText := rec.Text(domain.FieldDate)
	if codeText == "" || navText == "" || dateText == "" {
		return entry{}, fmt.Errorf("%w: missing scheme code, nav or date", domain.ErrMalformedRecord)
	}

	code, ok := rec.SchemeCode()
	if !ok {
		return entry{}, fmt.Errorf("%w: scheme code %q is not an integer", domain.ErrMalformedRecord, codeText)
	}

	date, err := domain.ParseNAVDate(dateText)
	if err != nil {
		return entry{}, fmt.Errorf("%w: date %q: %v", domain.ErrMalformedRecord, dateText, err)
	}

	nav, err := decimal.NewFromString(navText)
	if err == nil {
		nav = domain.QuantizeNAV(nav)
	}
	if err != nil || !nav.IsPositive() {
		return entry{}, fmt.Errorf("%w: nav %q is not a positive number", domain.ErrMalformedRecord, navText)
	}

	return entry{code: code, date: date, nav: nav}, nil
}

// Apply reconciles records against the catalog and returns the tally.
// Records sharing a scheme code are always applied in snapshot order, so the
// last duplicate (code, date) wins. Once ctx is done the remaining records are
// counted as Unprocessed instead of being attempted.
func (s *Service) Apply(ctx context.Context, records []domain.RawRecord) Summary {
	summary := newSummary(len(records))

	entries := make([]entry, 0, len(records))
	for i, rec := range records {
		e, err := parseRecord(rec)
		if err != nil {
			summary.skip(SkipMalformed)
			s.Logger.Debug("skipping malformed record", zap.Int("index", i), zap.Error(err))
			continue
		}
		e.index = i
		entries = append(entries, e)
	}

	if s.Workers <= 1 {
		for _, e := range entries {
			s.applyEntry(ctx, e, &summary)
		}
		return summary
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.Workers)
	for _, part := range partitionByScheme(entries) {
		g.Go(func() error {
			local := newSummary(0)
			for _, e := range part {
				s.applyEntry(ctx, e, &local)
			}
			mu.Lock()
			summary.merge(local)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return summary
}

// partitionByScheme groups entries by scheme code, keeping snapshot order within each group
func partitionByScheme(entries []entry) [][]entry {
	slot := map[int64]int{}
	parts := make([][]entry, 0)
	for _, e := range entries {
		i, ok := slot[e.code]
		if !ok {
			i = len(parts)
			slot[e.code] = i
			parts = append(parts, nil)
		}
		parts[i] = append(parts[i], e)
	}
	return parts
}

func (s *Service) applyEntry(ctx context.Context, e entry, summary *Summary) {
	if ctx.Err() != nil {
		summary.Unprocessed++
		return
	}

	scheme, err := s.SchemeRepo.GetByCode(ctx, e.code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			summary.skip(SkipUnknownScheme)
			s.Logger.Debug("skipping unknown scheme", zap.Int64("scheme_code", e.code))
			return
		}
		s.processingError(ctx, e, summary, err)
		return
	}

	nav := &domain.NAV{SchemeID: scheme.ID, Date: e.date, Value: e.nav}
	if err := s.NAVRepo.Upsert(ctx, nav); err != nil {
		s.processingError(ctx, e, summary, err)
		return
	}

	push, err := s.Revaluator.PushNAV(ctx, scheme, e.nav)
	if err != nil {
		s.processingError(ctx, e, summary, err)
		return
	}

	summary.update(push)
}

func (s *Service) processingError(ctx context.Context, e entry, summary *Summary, err error) {
	// A failure caused by cancellation says nothing about the record
	if ctx.Err() != nil {
		summary.Unprocessed++
		return
	}
	summary.skip(SkipProcessingError)
	s.Logger.Error("failed to process nav record",
		zap.Int64("scheme_code", e.code),
		zap.Int("index", e.index),
		zap.Error(err),
	)
}
