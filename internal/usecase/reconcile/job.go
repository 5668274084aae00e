package reconcile

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/simaogato/mutualfund-backend/internal/adapter/lock"
	"github.com/simaogato/mutualfund-backend/internal/metrics"
)

// RunScheduled is the unattended hourly job. It never returns an error:
// outcomes go to the log and to metrics, and a failed run waits for the next trigger.
func (s *Service) RunScheduled(ctx context.Context) {
	if s.Locker != nil {
		release, err := s.Locker.Acquire(ctx)
		if errors.Is(err, lock.ErrHeld) {
			s.Logger.Info("nav sync already running elsewhere, skipping")
			s.Metrics.ObserveRun(metrics.RunSkipped, 0)
			return
		}
		if err != nil && ctx.Err() != nil {
			s.Logger.Warn("nav sync cancelled before start", zap.Error(err))
			s.Metrics.ObserveRun(metrics.RunCancelled, 0)
			return
		}
		if err != nil {
			s.Logger.Error("failed to acquire nav sync lease", zap.Error(err))
			s.Metrics.ObserveRun(metrics.RunFailed, 0)
			return
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.Logger.Warn("failed to release nav sync lease", zap.Error(err))
			}
		}()
	}

	summary, err := s.Run(ctx)
	switch {
	case err != nil && ctx.Err() != nil:
		s.Logger.Warn("nav sync cancelled", append(summaryFields(summary), zap.Error(err))...)
		s.observeRecords(summary)
		s.Metrics.ObserveRun(metrics.RunCancelled, 0)
		return
	case err != nil:
		s.Logger.Error("nav sync aborted", zap.Error(err))
		s.Metrics.ObserveRun(metrics.RunFailed, 0)
		return
	}

	s.Logger.Info("nav sync finished", summaryFields(summary)...)
	s.observeRecords(summary)
	s.Metrics.ObserveRun(metrics.RunSucceeded, summary.Duration)
}

func summaryFields(summary Summary) []zap.Field {
	return []zap.Field{
		zap.Int("received", summary.Received),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("skipped_malformed", summary.SkippedByReason[SkipMalformed]),
		zap.Int("skipped_unknown_scheme", summary.SkippedByReason[SkipUnknownScheme]),
		zap.Int("skipped_processing_error", summary.SkippedByReason[SkipProcessingError]),
		zap.Int("unprocessed", summary.Unprocessed),
		zap.Int("portfolios_revalued", summary.PortfoliosRevalued),
		zap.Int("portfolios_failed", summary.PortfoliosFailed),
		zap.Duration("duration", summary.Duration),
	}
}

func (s *Service) observeRecords(summary Summary) {
	s.Metrics.ObserveRecords("updated", summary.Updated)
	for reason, n := range summary.SkippedByReason {
		s.Metrics.ObserveRecords(string(reason), n)
	}
	s.Metrics.ObserveRevaluation(summary.PortfoliosRevalued, summary.PortfoliosFailed)
}
