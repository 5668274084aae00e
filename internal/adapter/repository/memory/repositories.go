package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/simaogato/mutualfund-backend/internal/domain"
)

type fundHouseRepository struct{ s *Store }

func (r fundHouseRepository) GetOrCreate(ctx context.Context, name string) (*domain.FundHouse, bool, error) {
	fh := domain.FundHouse{ID: uuid.New(), Name: strings.TrimSpace(name)}
	if err := fh.Validate(); err != nil {
		return nil, false, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if id, ok := r.s.fundHouseNames[fh.Name]; ok {
		existing := r.s.fundHouses[id]
		return &existing, false, nil
	}
	r.s.fundHouses[fh.ID] = fh
	r.s.fundHouseNames[fh.Name] = fh.ID
	return &fh, true, nil
}

func (r fundHouseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FundHouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	fh, ok := r.s.fundHouses[id]
	if !ok {
		return nil, fmt.Errorf("fund house %s: %w", id, domain.ErrNotFound)
	}
	return &fh, nil
}

func (r fundHouseRepository) List(ctx context.Context) ([]*domain.FundHouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.FundHouse, 0, len(r.s.fundHouses))
	for _, fh := range r.s.fundHouses {
		fh := fh
		out = append(out, &fh)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type schemeRepository struct{ s *Store }

func (r schemeRepository) GetByCode(ctx context.Context, code int64) (*domain.Scheme, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.schemeCodes[code]
	if !ok {
		return nil, fmt.Errorf("scheme code %d: %w", code, domain.ErrNotFound)
	}
	sc := r.s.schemes[id]
	return &sc, nil
}

func (r schemeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Scheme, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sc, ok := r.s.schemes[id]
	if !ok {
		return nil, fmt.Errorf("scheme %s: %w", id, domain.ErrNotFound)
	}
	return &sc, nil
}

func (r schemeRepository) GetOrCreate(ctx context.Context, scheme *domain.Scheme) (*domain.Scheme, bool, error) {
	if err := scheme.Validate(); err != nil {
		return nil, false, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if id, ok := r.s.schemeCodes[scheme.SchemeCode]; ok {
		existing := r.s.schemes[id]
		return &existing, false, nil
	}
	if _, ok := r.s.fundHouses[scheme.FundHouseID]; !ok {
		return nil, false, fmt.Errorf("fund house %s: %w", scheme.FundHouseID, domain.ErrNotFound)
	}

	sc := *scheme
	if sc.ID == uuid.Nil {
		sc.ID = uuid.New()
	}
	sc.ISINGrowth = clonePtr(scheme.ISINGrowth)
	sc.ISINReinvestment = clonePtr(scheme.ISINReinvestment)
	r.s.schemes[sc.ID] = sc
	r.s.schemeCodes[sc.SchemeCode] = sc.ID
	return &sc, true, nil
}

func (r schemeRepository) ListOpenEndedByFundHouse(ctx context.Context, fundHouseID uuid.UUID) ([]*domain.Scheme, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Scheme, 0)
	for _, sc := range r.s.schemes {
		if sc.FundHouseID == fundHouseID && sc.IsOpenEnded {
			sc := sc
			out = append(out, &sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SchemeCode < out[j].SchemeCode })
	return out, nil
}

type navRepository struct{ s *Store }

func (r navRepository) Upsert(ctx context.Context, nav *domain.NAV) error {
	if err := nav.Validate(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.schemes[nav.SchemeID]; !ok {
		return fmt.Errorf("scheme %s: %w", nav.SchemeID, domain.ErrNotFound)
	}

	key := navKey{schemeID: nav.SchemeID, day: dayKey(nav.Date)}
	if existing, ok := r.s.navs[key]; ok {
		existing.Value = nav.Value
		r.s.navs[key] = existing
		nav.ID = existing.ID
		return nil
	}
	if nav.ID == uuid.Nil {
		nav.ID = uuid.New()
	}
	r.s.navs[key] = *nav
	return nil
}

func (r navRepository) Latest(ctx context.Context, schemeID uuid.UUID) (*domain.NAV, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var latest *domain.NAV
	for k, n := range r.s.navs {
		if k.schemeID != schemeID {
			continue
		}
		if latest == nil || n.Date.After(latest.Date) {
			n := n
			latest = &n
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("no nav history for scheme %s: %w", schemeID, domain.ErrNotFound)
	}
	return latest, nil
}

type portfolioRepository struct{ s *Store }

func (r portfolioRepository) Create(ctx context.Context, p *domain.Portfolio) error {
	if err := p.Validate(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.schemes[p.SchemeID]; !ok {
		return fmt.Errorf("scheme %s: %w", p.SchemeID, domain.ErrNotFound)
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.LastUpdated = r.s.now()
	r.s.portfolios[p.ID] = *p
	return nil
}

func (r portfolioRepository) ListByScheme(ctx context.Context, schemeID uuid.UUID) ([]*domain.Portfolio, error) {
	return r.list(func(p domain.Portfolio) bool { return p.SchemeID == schemeID }), nil
}

func (r portfolioRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Portfolio, error) {
	return r.list(func(p domain.Portfolio) bool { return p.UserID == userID }), nil
}

func (r portfolioRepository) list(match func(domain.Portfolio) bool) []*domain.Portfolio {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Portfolio, 0)
	for _, p := range r.s.portfolios {
		if match(p) {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

func (r portfolioRepository) SaveValuation(ctx context.Context, p *domain.Portfolio) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.portfolios[p.ID]
	if !ok {
		return fmt.Errorf("portfolio %s: %w", p.ID, domain.ErrNotFound)
	}
	stored.CurrentNAV = p.CurrentNAV
	stored.CurrentValue = p.CurrentValue
	stored.LastUpdated = r.s.now()
	r.s.portfolios[p.ID] = stored
	p.LastUpdated = stored.LastUpdated
	return nil
}

type periodicTaskRepository struct{ s *Store }

func (r periodicTaskRepository) CreateIfAbsent(ctx context.Context, task *domain.PeriodicTask) (bool, error) {
	if err := task.Validate(); err != nil {
		return false, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[task.Name]; ok {
		return false, nil
	}
	r.s.tasks[task.Name] = *task
	return true, nil
}

func (r periodicTaskRepository) ListEnabled(ctx context.Context) ([]*domain.PeriodicTask, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.PeriodicTask, 0)
	for _, t := range r.s.tasks {
		if t.Enabled {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
