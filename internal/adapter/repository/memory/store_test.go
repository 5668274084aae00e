package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/mutualfund-backend/internal/domain"
)

func seedScheme(t *testing.T, s *Store, code int64) *domain.Scheme {
	t.Helper()
	ctx := context.Background()
	fh, _, err := s.FundHouses().GetOrCreate(ctx, "HDFC Mutual Fund")
	require.NoError(t, err)
	sc, _, err := s.Schemes().GetOrCreate(ctx, &domain.Scheme{
		FundHouseID: fh.ID,
		SchemeCode:  code,
		SchemeName:  "HDFC Flexi Cap Fund",
		IsOpenEnded: true,
	})
	require.NoError(t, err)
	return sc
}

func TestFundHouses_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	first, created, err := s.FundHouses().GetOrCreate(ctx, "SBI Mutual Fund")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := s.FundHouses().GetOrCreate(ctx, "SBI Mutual Fund")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	_, _, err = s.FundHouses().GetOrCreate(ctx, "  ")
	assert.EqualError(t, err, "fund house name cannot be empty")
}

func TestSchemes_GetOrCreateKeepsExisting(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	original := seedScheme(t, s, 118989)

	again, created, err := s.Schemes().GetOrCreate(ctx, &domain.Scheme{
		FundHouseID: original.FundHouseID,
		SchemeCode:  118989,
		SchemeName:  "Renamed",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "HDFC Flexi Cap Fund", again.SchemeName)

	_, err = s.Schemes().GetByCode(ctx, 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestNAVs_UpsertAndLatest(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	sc := seedScheme(t, s, 118989)

	day1 := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	require.NoError(t, s.NAVs().Upsert(ctx, &domain.NAV{SchemeID: sc.ID, Date: day2, Value: decimal.RequireFromString("11")}))
	require.NoError(t, s.NAVs().Upsert(ctx, &domain.NAV{SchemeID: sc.ID, Date: day1, Value: decimal.RequireFromString("10")}))
	require.NoError(t, s.NAVs().Upsert(ctx, &domain.NAV{SchemeID: sc.ID, Date: day2, Value: decimal.RequireFromString("12")}))

	assert.Len(t, s.NAVHistory(sc.ID), 2)

	latest, err := s.NAVs().Latest(ctx, sc.ID)
	require.NoError(t, err)
	assert.True(t, latest.Date.Equal(day2))
	assert.True(t, latest.Value.Equal(decimal.RequireFromString("12")))

	_, err = s.NAVs().Latest(ctx, uuid.New())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPortfolios_SaveValuation(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	sc := seedScheme(t, s, 118989)
	fixed := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	p := &domain.Portfolio{UserID: uuid.New(), SchemeID: sc.ID, Units: decimal.RequireFromString("10.5")}
	require.NoError(t, s.Portfolios().Create(ctx, p))

	p.Revalue(decimal.RequireFromString("250.3333"))
	fixed = fixed.Add(time.Hour)
	require.NoError(t, s.Portfolios().SaveValuation(ctx, p))

	stored, err := s.Portfolios().ListByScheme(ctx, sc.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].CurrentValue.Equal(decimal.RequireFromString("2628.5")))
	assert.True(t, stored[0].LastUpdated.Equal(fixed))

	missing := &domain.Portfolio{ID: uuid.New()}
	assert.True(t, errors.Is(s.Portfolios().SaveValuation(ctx, missing), domain.ErrNotFound))
}
