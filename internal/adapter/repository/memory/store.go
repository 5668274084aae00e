// Package memory provides an in-process implementation of every domain
// repository. It backs local runs without a database and the pipeline tests.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/simaogato/mutualfund-backend/internal/domain"
)

type navKey struct {
	schemeID uuid.UUID
	day      string
}

// Store holds all catalog, NAV, holding and task rows behind one RWMutex
type Store struct {
	mu sync.RWMutex

	fundHouses     map[uuid.UUID]domain.FundHouse
	fundHouseNames map[string]uuid.UUID

	schemes     map[uuid.UUID]domain.Scheme
	schemeCodes map[int64]uuid.UUID

	navs map[navKey]domain.NAV

	portfolios map[uuid.UUID]domain.Portfolio

	tasks map[string]domain.PeriodicTask

	now func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		fundHouses:     map[uuid.UUID]domain.FundHouse{},
		fundHouseNames: map[string]uuid.UUID{},
		schemes:        map[uuid.UUID]domain.Scheme{},
		schemeCodes:    map[int64]uuid.UUID{},
		navs:           map[navKey]domain.NAV{},
		portfolios:     map[uuid.UUID]domain.Portfolio{},
		tasks:          map[string]domain.PeriodicTask{},
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// FundHouses returns the store as a domain.FundHouseRepository
func (s *Store) FundHouses() domain.FundHouseRepository { return fundHouseRepository{s} }

// Schemes returns the store as a domain.SchemeRepository
func (s *Store) Schemes() domain.SchemeRepository { return schemeRepository{s} }

// NAVs returns the store as a domain.NAVRepository
func (s *Store) NAVs() domain.NAVRepository { return navRepository{s} }

// Portfolios returns the store as a domain.PortfolioRepository
func (s *Store) Portfolios() domain.PortfolioRepository { return portfolioRepository{s} }

// PeriodicTasks returns the store as a domain.PeriodicTaskRepository
func (s *Store) PeriodicTasks() domain.PeriodicTaskRepository { return periodicTaskRepository{s} }

// NAVHistory returns every stored NAV of a scheme, oldest first
func (s *Store) NAVHistory(schemeID uuid.UUID) []domain.NAV {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.NAV, 0)
	for k, n := range s.navs {
		if k.schemeID == schemeID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
