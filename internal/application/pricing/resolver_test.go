package pricing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/costing"
	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
	"github.com/diillson/falcon-cost-estimator-go/internal/domain/sizing"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/retry"
)

type fakePricingRepo struct {
	calls  int32
	fail   map[entity.PriceDimension]bool
	prices map[entity.PriceDimension]entity.Price
}

func newFakePricingRepo() *fakePricingRepo {
	return &fakePricingRepo{
		fail: map[entity.PriceDimension]bool{},
		prices: map[entity.PriceDimension]entity.Price{
			entity.DimensionThroughputUnit:    {Amount: 0.02, Unit: entity.PerHour, Currency: "USD"},
			entity.DimensionStorageGB:         {Amount: 0.025, Unit: entity.PerGBMonth, Currency: "USD"},
			entity.DimensionComputeInstance:   {Amount: 0.05, Unit: entity.PerHour, Currency: "USD"},
			entity.DimensionSecretsPer10K:     {Amount: 0.06, Unit: entity.Per10K, Currency: "USD"},
			entity.DimensionPrivateConnection: {Amount: 0.011, Unit: entity.PerHour, Currency: "USD"},
			entity.DimensionGateway:           {Amount: 0.048, Unit: entity.PerHour, Currency: "USD"},
		},
	}
}

func (f *fakePricingRepo) LookupPrice(_ context.Context, _ string, dim entity.PriceDimension) (entity.Price, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.fail[dim] {
		return entity.Price{}, errors.New("ThrottlingException")
	}
	return f.prices[dim], nil
}

func noRetry() retry.Policy {
	return retry.NoRetry()
}

func TestResolve_StorageFailureOnlyAffectsStorage(t *testing.T) {
	repo := newFakePricingRepo()
	repo.fail[entity.DimensionStorageGB] = true
	r := NewResolver(repo, noRetry(), zap.NewNop())

	table := r.Resolve(context.Background(), "eu-west-1", false)

	assert.Equal(t, []entity.PriceDimension{entity.DimensionStorageGB}, table.FallbackDimensions)
	assert.Equal(t, StaticPrice(entity.DimensionStorageGB).Amount, table.StorageGBMonthly)
	assert.Equal(t, 14.6, table.ThroughputUnitMonthly)
	assert.Equal(t, 36.5, table.ComputeInstanceMonthly)
	assert.Equal(t, 0.06, table.SecretsPer10K)
	assert.Equal(t, 0.011, table.PrivateConnectionHourly)
	assert.Equal(t, 0.048, table.GatewayHourly)

	usage := entity.UsageSample{UnitID: "1", UnitName: "root", Region: "eu-west-1", IsDefaultUnit: true, PrimaryEventCountPerDay: 1e7, AverageEventSizeKB: 1}
	req := sizing.ComputeSizing(usage, sizing.DefaultConfig())
	cost := costing.ComputeCost(req, table, false, costing.DefaultConfig())
	require.Positive(t, req.StorageGB)
	assert.InDelta(t, float64(req.StorageGB)*0.023, cost.Line(entity.LineStorage).MonthlyCost, 0.006)
}

func TestResolve_CachesWithinTTL(t *testing.T) {
	repo := newFakePricingRepo()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewResolver(repo, noRetry(), zap.NewNop(), WithTTL(time.Hour), WithClock(func() time.Time { return now }))

	first := r.Resolve(context.Background(), "us-east-1", false)
	second := r.Resolve(context.Background(), "us-east-1", false)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(6), atomic.LoadInt32(&repo.calls))

	now = now.Add(time.Hour)
	r.Resolve(context.Background(), "us-east-1", false)
	assert.Equal(t, int32(12), atomic.LoadInt32(&repo.calls), "expired entry is refetched")
}

func TestResolve_ForceRefreshBypassesCache(t *testing.T) {
	repo := newFakePricingRepo()
	r := NewResolver(repo, noRetry(), zap.NewNop())

	r.Resolve(context.Background(), "us-east-1", false)
	r.Resolve(context.Background(), "us-east-1", true)

	assert.Equal(t, int32(12), atomic.LoadInt32(&repo.calls))
}

func TestResolve_FullyStaticTableIsNotCached(t *testing.T) {
	repo := newFakePricingRepo()
	for _, dim := range entity.AllPriceDimensions() {
		repo.fail[dim] = true
	}
	r := NewResolver(repo, noRetry(), zap.NewNop())

	table := r.Resolve(context.Background(), "us-east-1", false)
	require.True(t, table.FullyStatic())
	assert.Equal(t, 10.95, table.ThroughputUnitMonthly)

	r.Resolve(context.Background(), "us-east-1", false)
	assert.Equal(t, int32(12), atomic.LoadInt32(&repo.calls))
}

func TestResolve_RejectsNonPositiveAndForeignCurrency(t *testing.T) {
	repo := newFakePricingRepo()
	repo.prices[entity.DimensionGateway] = entity.Price{Amount: 0, Unit: entity.PerHour}
	repo.prices[entity.DimensionSecretsPer10K] = entity.Price{Amount: 0.05, Unit: entity.Per10K, Currency: "CNY"}
	r := NewResolver(repo, noRetry(), zap.NewNop())

	table := r.Resolve(context.Background(), "us-east-1", false)

	assert.True(t, table.IsFallback(entity.DimensionGateway))
	assert.True(t, table.IsFallback(entity.DimensionSecretsPer10K))
	assert.Equal(t, 0.045, table.GatewayHourly)
}

func TestResolve_OfflineUsesStaticTable(t *testing.T) {
	r := NewResolver(nil, noRetry(), nil)

	table := r.Resolve(context.Background(), "sa-east-1", false)

	assert.True(t, table.FullyStatic())
	assert.Equal(t, "sa-east-1", table.Region)
	assert.Equal(t, 36.0401, table.ComputeInstanceMonthly)
}

func TestResolve_ConcurrentReaders(t *testing.T) {
	repo := newFakePricingRepo()
	r := NewResolver(repo, noRetry(), zap.NewNop())
	r.Resolve(context.Background(), "us-east-1", false)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Resolve(context.Background(), "us-east-1", i%8 == 0)
		}(i)
	}
	wg.Wait()

	table := r.Resolve(context.Background(), "us-east-1", false)
	assert.Empty(t, table.FallbackDimensions)
}

func TestInvalidate(t *testing.T) {
	repo := newFakePricingRepo()
	r := NewResolver(repo, noRetry(), zap.NewNop())

	r.Resolve(context.Background(), "us-east-1", false)
	r.Invalidate()
	r.Resolve(context.Background(), "us-east-1", false)

	assert.Equal(t, int32(12), atomic.LoadInt32(&repo.calls))
}
