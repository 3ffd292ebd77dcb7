// Package pricing resolves regional unit prices with a TTL cache and a
// per-dimension fallback to compiled-in defaults.
package pricing

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/costing"
	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
	"github.com/diillson/falcon-cost-estimator-go/internal/domain/repository"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/logging"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/retry"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/types"
)

// DefaultTTL é a validade padrão de uma tabela em cache.
const DefaultTTL = 24 * time.Hour

// Resolver is safe for concurrent use. The cache is the only state shared
// between workers; a refresh replaces a region's table wholesale.
type Resolver struct {
	repo   repository.PricingRepository
	retry  retry.Policy
	logger *zap.Logger
	ttl    time.Duration
	now    func() time.Time

	mu    sync.RWMutex
	cache map[string]entity.PriceTable
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithTTL sets the cache lifetime; zero or negative disables caching.
func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) { r.ttl = ttl }
}

// WithClock injeta o relógio usado para expirar o cache.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// NewResolver creates a resolver. A nil repo means offline mode: every
// table comes from the static defaults.
func NewResolver(repo repository.PricingRepository, policy retry.Policy, logger *zap.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{
		repo:   repo,
		retry:  policy,
		logger: logger,
		ttl:    DefaultTTL,
		now:    time.Now,
		cache:  make(map[string]entity.PriceTable),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the price table for region. It never fails: a dimension
// whose lookup fails takes its static default and is listed in
// FallbackDimensions.
func (r *Resolver) Resolve(ctx context.Context, region string, forceRefresh bool) entity.PriceTable {
	if !forceRefresh {
		if t, ok := r.cached(region); ok {
			return t
		}
	}

	if r.repo == nil {
		r.logger.Debug("pricing offline, using static defaults", logging.Region(region))
		t := StaticTable(region)
		t.ResolvedAt = r.now()
		return t
	}

	table := entity.PriceTable{Region: region, Currency: "USD", ResolvedAt: r.now()}
	for _, dim := range entity.AllPriceDimensions() {
		price, err := r.lookup(ctx, region, dim)
		if err != nil {
			r.logger.Warn("price lookup failed, using static default",
				logging.Region(region),
				logging.Dimension(string(dim)),
				zap.Error(err))
			price = staticPrices[dim]
			table.FallbackDimensions = append(table.FallbackDimensions, dim)
		}
		apply(&table, dim, price)
	}

	if table.FullyStatic() {
		r.logger.Warn("pricing API unavailable for every dimension", logging.Region(region))
		return table
	}

	r.store(region, table)
	return table
}

// Invalidate drops every cached table.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]entity.PriceTable)
}

func (r *Resolver) cached(region string) (entity.PriceTable, bool) {
	if r.ttl <= 0 {
		return entity.PriceTable{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.cache[region]
	if !ok || r.now().Sub(t.ResolvedAt) >= r.ttl {
		return entity.PriceTable{}, false
	}
	return t, true
}

func (r *Resolver) store(region string, t entity.PriceTable) {
	if r.ttl <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[region] = t
}

func (r *Resolver) lookup(ctx context.Context, region string, dim entity.PriceDimension) (entity.Price, error) {
	var price entity.Price
	err := r.retry.Do(ctx, "pricing:"+string(dim), func(ctx context.Context) error {
		p, err := r.repo.LookupPrice(ctx, region, dim)
		if err != nil {
			return err
		}
		price = p
		return nil
	})
	if err != nil {
		return entity.Price{}, fmt.Errorf("%w: %s in %s: %v", types.ErrPricingUnavailable, dim, region, err)
	}
	if math.IsNaN(price.Amount) || math.IsInf(price.Amount, 0) || price.Amount <= 0 {
		return entity.Price{}, fmt.Errorf("%w: %s in %s: invalid amount %v", types.ErrPricingUnavailable, dim, region, price.Amount)
	}
	if price.Currency != "" && price.Currency != "USD" {
		return entity.Price{}, fmt.Errorf("%w: %s in %s: unsupported currency %s", types.ErrPricingUnavailable, dim, region, price.Currency)
	}
	return price, nil
}

// apply grava o preço na tabela; throughput e compute são normalizados
// para valor mensal (x730) quando vierem por hora.
func apply(t *entity.PriceTable, dim entity.PriceDimension, p entity.Price) {
	switch dim {
	case entity.DimensionThroughputUnit:
		t.ThroughputUnitMonthly = monthly(p)
	case entity.DimensionStorageGB:
		t.StorageGBMonthly = p.Amount
	case entity.DimensionComputeInstance:
		t.ComputeInstanceMonthly = monthly(p)
	case entity.DimensionSecretsPer10K:
		t.SecretsPer10K = p.Amount
	case entity.DimensionPrivateConnection:
		t.PrivateConnectionHourly = p.Amount
	case entity.DimensionGateway:
		t.GatewayHourly = p.Amount
	}
}

func monthly(p entity.Price) float64 {
	if p.Unit != entity.PerHour {
		return p.Amount
	}
	return decimal.NewFromFloat(p.Amount).Mul(decimal.NewFromInt(costing.HoursPerMonth)).Round(6).InexactFloat64()
}
