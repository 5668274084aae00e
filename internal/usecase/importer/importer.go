// Package importer seeds the fund house and scheme catalog from the NAV feed.
package importer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/simaogato/mutualfund-backend/internal/domain"
)

// Feed returns the latest NAV snapshot
type Feed interface {
	FetchLatestSnapshot(ctx context.Context) ([]domain.RawRecord, error)
}

// FundHouseImportResult counts the outcome of ImportFundHouses
type FundHouseImportResult struct {
	Created  int
	Existing int
}

// SchemeImportResult counts the outcome of ImportSchemes
type SchemeImportResult struct {
	Created int
	Skipped int
}

// Importer handles catalog bootstrap from the feed
type Importer struct {
	Feed          Feed
	FundHouseRepo domain.FundHouseRepository
	SchemeRepo    domain.SchemeRepository
	Logger        *zap.Logger
}

// NewImporter creates a new Importer instance
func NewImporter(feed Feed, fundHouseRepo domain.FundHouseRepository, schemeRepo domain.SchemeRepository, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{
		Feed:          feed,
		FundHouseRepo: fundHouseRepo,
		SchemeRepo:    schemeRepo,
		Logger:        logger,
	}
}

// ImportFundHouses creates every distinct fund house named in the snapshot.
// Names already in the catalog are counted as existing and left untouched.
func (i *Importer) ImportFundHouses(ctx context.Context) (FundHouseImportResult, error) {
	var res FundHouseImportResult

	records, err := i.Feed.FetchLatestSnapshot(ctx)
	if err != nil {
		return res, err
	}

	seen := map[string]struct{}{}
	for _, rec := range records {
		if name := rec.Text(domain.FieldFundFamily); name != "" {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		_, created, err := i.FundHouseRepo.GetOrCreate(ctx, name)
		if err != nil {
			return res, fmt.Errorf("failed to import fund house %q: %w", name, err)
		}
		if created {
			res.Created++
		} else {
			res.Existing++
		}
	}

	i.Logger.Info("fund houses imported",
		zap.Int("created", res.Created),
		zap.Int("existing", res.Existing),
	)
	return res, nil
}

// ImportSchemes creates the open-ended schemes listed in the snapshot.
// Existing schemes are never updated. Records without a usable scheme code are skipped.
func (i *Importer) ImportSchemes(ctx context.Context) (SchemeImportResult, error) {
	var res SchemeImportResult

	records, err := i.Feed.FetchLatestSnapshot(ctx)
	if err != nil {
		return res, err
	}

	fundHouses := map[string]*domain.FundHouse{}
	for _, rec := range records {
		if !domain.IsOpenEndedType(rec.Text(domain.FieldSchemeType)) {
			continue
		}
		name := rec.Text(domain.FieldFundFamily)
		if name == "" {
			continue
		}

		fh, ok := fundHouses[name]
		if !ok {
			fh, _, err = i.FundHouseRepo.GetOrCreate(ctx, name)
			if err != nil {
				return res, fmt.Errorf("failed to import fund house %q: %w", name, err)
			}
			fundHouses[name] = fh
		}

		code, ok := rec.SchemeCode()
		if !ok {
			res.Skipped++
			continue
		}

		_, created, err := i.SchemeRepo.GetOrCreate(ctx, schemeFromRecord(rec, fh, code))
		if err != nil {
			return res, fmt.Errorf("failed to import scheme %d: %w", code, err)
		}
		if created {
			res.Created++
		}
	}

	i.Logger.Info("schemes imported",
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

func schemeFromRecord(rec domain.RawRecord, fh *domain.FundHouse, code int64) *domain.Scheme {
	return &domain.Scheme{
		FundHouseID:      fh.ID,
		SchemeCode:       code,
		SchemeName:       rec.Text(domain.FieldSchemeName),
		SchemeType:       strings.TrimSpace(rec.Text(domain.FieldSchemeType)),
		SchemeCategory:   rec.Text(domain.FieldSchemeCategory),
		ISINGrowth:       rec.OptionalText(domain.FieldISINGrowth),
		ISINReinvestment: rec.OptionalText(domain.FieldISINReinvestment),
		IsOpenEnded:      true,
	}
}
