package catalog

import (
	"context"
	"sync"
	"time"

	"steprighthomes/pkg/types"
)

type serviceRepository interface {
	AllServices(ctx context.Context) ([]*types.Service, error)
	ServiceByID(ctx context.Context, id string) (*types.Service, error)
}

// Postgres reads the catalog from the services table and keeps the list in
// memory for ttl, since it changes only when `seed` runs.
type Postgres struct {
	repo serviceRepository
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	cached  []*types.Service
	fetched time.Time
}

func NewPostgres(repo serviceRepository, ttl time.Duration) *Postgres {
	return &Postgres{repo: repo, ttl: ttl, now: time.Now}
}

func (p *Postgres) Services(ctx context.Context) ([]*types.Service, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil && p.now().Sub(p.fetched) < p.ttl {
		return p.cached, nil
	}

	services, err := p.repo.AllServices(ctx)
	if err != nil {
		return nil, err
	}

	p.cached = services
	p.fetched = p.now()
	return services, nil
}

func (p *Postgres) Service(ctx context.Context, id string) (*types.Service, error) {
	return p.repo.ServiceByID(ctx, id)
}
