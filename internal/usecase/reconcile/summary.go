package reconcile

import (
	"time"

	"github.com/simaogato/mutualfund-backend/internal/usecase/revaluation"
)

// SkipReason classifies a feed record that did not produce a NAV write
type SkipReason string

const (
	SkipMalformed       SkipReason = "malformed"
	SkipUnknownScheme   SkipReason = "unknown_scheme"
	SkipProcessingError SkipReason = "processing_error"
)

// Summary aggregates the outcome of one run.
// Received == Updated + Skipped + Unprocessed.
type Summary struct {
	Received           int
	Updated            int
	Skipped            int
	SkippedByReason    map[SkipReason]int
	Unprocessed        int // Left untouched because the run was cancelled
	PortfoliosRevalued int
	PortfoliosFailed   int
	Duration           time.Duration
}

func newSummary(received int) Summary {
	return Summary{
		Received:        received,
		SkippedByReason: map[SkipReason]int{},
	}
}

func (s *Summary) skip(reason SkipReason) {
	s.Skipped++
	s.SkippedByReason[reason]++
}

func (s *Summary) update(push revaluation.PushResult) {
	s.Updated++
	s.PortfoliosRevalued += push.Revalued
	s.PortfoliosFailed += push.Failed
}

func (s *Summary) merge(other Summary) {
	s.Updated += other.Updated
	s.Skipped += other.Skipped
	s.Unprocessed += other.Unprocessed
	for reason, n := range other.SkippedByReason {
		s.SkippedByReason[reason] += n
	}
	s.PortfoliosRevalued += other.PortfoliosRevalued
	s.PortfoliosFailed += other.PortfoliosFailed
}
