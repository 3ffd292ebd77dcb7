package usage

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
	"github.com/diillson/falcon-cost-estimator-go/internal/domain/repository"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/retry"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/types"
)

var testNow = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

type baseRepo struct {
	resources int
	resErr    error
}

func (b *baseRepo) Connect(context.Context, string) (entity.CallerIdentity, error) {
	return entity.CallerIdentity{AccountID: "111111111111"}, nil
}

func (b *baseRepo) ListUnits(context.Context) ([]entity.Unit, error) { return nil, nil }

func (b *baseRepo) CountResources(context.Context, entity.Unit) (int, error) {
	return b.resources, b.resErr
}

type queryCall struct {
	start, end time.Time
	token      string
}

type eventSource struct {
	calls   []queryCall
	respond func(start, end time.Time, token string, limit int) (entity.EventPage, error)
}

func (e *eventSource) QueryEvents(_ context.Context, _ entity.Unit, start, end time.Time, token string, limit int) (entity.EventPage, error) {
	e.calls = append(e.calls, queryCall{start: start, end: end, token: token})
	return e.respond(start, end, token, limit)
}

type derivedSource struct {
	signal entity.DerivedSignal
	err    error
}

func (d *derivedSource) DerivedSignal(context.Context, entity.Unit, time.Time, time.Time) (entity.DerivedSignal, error) {
	return d.signal, d.err
}

type directorySource struct {
	principals int
	err        error
}

func (d *directorySource) CountPrincipals(context.Context) (int, error) { return d.principals, d.err }

type eventsRepo struct {
	*baseRepo
	*eventSource
}

type derivedRepo struct {
	*baseRepo
	*derivedSource
}

type fullRepo struct {
	*baseRepo
	*eventSource
	*derivedSource
	*directorySource
}

func records(n int, category string, size int) []entity.EventRecord {
	msg := `{"p":"` + strings.Repeat("x", size-8) + `"}`
	out := make([]entity.EventRecord, n)
	for i := range out {
		out[i] = entity.EventRecord{Category: category, Message: msg}
	}
	return out
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.WindowDays = 7
	return cfg
}

func newTestAggregator(repo repository.UsageRepository, cfg Config) *Aggregator {
	return NewAggregator(repo, cfg, retry.NoRetry(), nil, zap.NewNop(), WithClock(func() time.Time { return testNow }), WithSeed(42))
}

func unit(id string, isDefault bool) entity.Unit {
	return entity.Unit{ID: id, Name: "acct-" + id, Region: "us-east-1", IsDefault: isDefault}
}

func TestCollect_MeasuredGrowsChunkAfterCleanPages(t *testing.T) {
	src := &eventSource{respond: func(time.Time, time.Time, string, int) (entity.EventPage, error) {
		return entity.EventPage{Records: records(100, "Management", 1024)}, nil
	}}
	agg := newTestAggregator(&eventsRepo{&baseRepo{}, src}, testConfig())

	s := agg.Collect(context.Background(), unit("1", true), 7, 50)

	var got []time.Duration
	for _, c := range src.calls {
		got = append(got, c.end.Sub(c.start))
	}
	assert.Equal(t, []time.Duration{24 * time.Hour, 24 * time.Hour, 24 * time.Hour, 36 * time.Hour, 36 * time.Hour, 24 * time.Hour}, got)
	assert.Equal(t, entity.TierMeasured, s.EventTier)
	assert.InDelta(t, 600.0/7, s.PrimaryEventCountPerDay, 1e-9)
	assert.True(t, s.DataComplete)
	assert.Equal(t, entity.TierMeasured, s.SizeTier)
	assert.InDelta(t, 1.0, s.AverageEventSizeKB, 1e-9)
}

func TestCollect_FullPageHalvesChunk(t *testing.T) {
	cfg := testConfig()
	cfg.PageRecordCap = 10
	src := &eventSource{respond: func(start, end time.Time, _ string, limit int) (entity.EventPage, error) {
		if end.Sub(start) > 6*time.Hour {
			return entity.EventPage{Records: records(limit, "Management", 512), NextToken: "more"}, nil
		}
		return entity.EventPage{Records: records(3, "Management", 512)}, nil
	}}
	agg := newTestAggregator(&eventsRepo{&baseRepo{}, src}, cfg)

	s := agg.Collect(context.Background(), unit("1", true), 1, 10)

	require.GreaterOrEqual(t, len(src.calls), 3)
	start := testNow.Add(-24 * time.Hour)
	assert.Equal(t, start, src.calls[0].start)
	assert.Equal(t, 24*time.Hour, src.calls[0].end.Sub(src.calls[0].start))
	assert.Equal(t, start, src.calls[1].start, "re-queries the same start")
	assert.Equal(t, 12*time.Hour, src.calls[1].end.Sub(src.calls[1].start))
	assert.Equal(t, 6*time.Hour, src.calls[2].end.Sub(src.calls[2].start))
	assert.True(t, s.DataComplete)
	assert.Equal(t, 12.0, s.PrimaryEventCountPerDay, "four 6h chunks of 3 records")
}

func TestCollect_FloorChunkIsFlaggedIncomplete(t *testing.T) {
	cfg := testConfig()
	cfg.PageRecordCap = 5
	cfg.StartChunk = 4 * time.Hour
	cfg.MaxPagesAtFloor = 3
	src := &eventSource{respond: func(_, _ time.Time, _ string, limit int) (entity.EventPage, error) {
		return entity.EventPage{Records: records(limit, "Data", 256), NextToken: "more"}, nil
	}}
	agg := newTestAggregator(&eventsRepo{&baseRepo{}, src}, cfg)

	s := agg.Collect(context.Background(), unit("1", true), 1, 10)

	assert.Equal(t, entity.TierMeasured, s.EventTier)
	assert.False(t, s.DataComplete)
	assert.True(t, s.Degraded())
	assert.NotEmpty(t, s.Warnings)
	// 24 chunks of 1h, 3 pages each
	assert.Equal(t, float64(24*3*5), s.PrimaryEventCountPerDay)

	var tokens int
	for _, c := range src.calls {
		if c.token != "" {
			tokens++
		}
		assert.LessOrEqual(t, c.end.Sub(c.start), 4*time.Hour)
	}
	assert.Equal(t, 24*2, tokens)
}

// sparseEvents serves one record per page for events spread evenly over the
// window, so pages are never full but continuation tokens keep coming.
func sparseEvents(windowStart time.Time, window time.Duration, n int) *eventSource {
	at := make([]time.Time, n)
	for i := range at {
		at[i] = windowStart.Add(time.Duration(i) * window / time.Duration(n))
	}
	return &eventSource{respond: func(start, end time.Time, token string, _ int) (entity.EventPage, error) {
		var in []int
		for i, ts := range at {
			if !ts.Before(start) && ts.Before(end) {
				in = append(in, i)
			}
		}
		offset := 0
		if token != "" {
			offset, _ = strconv.Atoi(token)
		}
		if offset >= len(in) {
			return entity.EventPage{}, nil
		}
		page := entity.EventPage{Records: records(1, "Management", 512)}
		if offset+1 < len(in) {
			page.NextToken = strconv.Itoa(offset + 1)
		}
		return page, nil
	}}
}

func TestCollect_SparsePagesShrinkAboveFloor(t *testing.T) {
	cfg := testConfig()
	cfg.GrowAfterPages = 0
	src := sparseEvents(testNow.Add(-24*time.Hour), 24*time.Hour, 25)
	agg := newTestAggregator(&eventsRepo{&baseRepo{}, src}, cfg)

	s := agg.Collect(context.Background(), unit("1", true), 1, 10)

	assert.Equal(t, entity.TierMeasured, s.EventTier)
	assert.Equal(t, 25.0, s.PrimaryEventCountPerDay)
	assert.True(t, s.DataComplete)
	assert.Empty(t, s.Warnings)

	// 20 pages of the 24h chunk are dropped, then two 12h chunks of 13 and 12 pages
	require.Len(t, src.calls, 20+13+12)
	assert.Equal(t, 24*time.Hour, src.calls[0].end.Sub(src.calls[0].start))
	assert.Equal(t, testNow.Add(-24*time.Hour), src.calls[20].start)
	assert.Equal(t, 12*time.Hour, src.calls[20].end.Sub(src.calls[20].start))
}

func TestCollect_AccessDeniedFallsToDerived(t *testing.T) {
	events := &eventSource{respond: func(time.Time, time.Time, string, int) (entity.EventPage, error) {
		return entity.EventPage{}, types.NewUnitAccessError("1", "FilterLogEvents", errors.New("AccessDeniedException"))
	}}
	derived := &derivedSource{signal: entity.DerivedSignal{Source: "ec2+lambda api calls", CountPerDay: 1000}}
	agg := newTestAggregator(&fullRepo{&baseRepo{resources: 10}, events, derived, &directorySource{}}, testConfig())

	s := agg.Collect(context.Background(), unit("1", true), 7, 50)

	assert.Len(t, events.calls, 1, "access errors are not retried")
	assert.Equal(t, entity.TierDerived, s.EventTier)
	assert.InDelta(t, 150.0, s.PrimaryEventCountPerDay, 1e-9)
	assert.Equal(t, entity.TierDefault, s.SizeTier)
	assert.Equal(t, 1.5, s.AverageEventSizeKB)
	assert.Equal(t, 10, s.ResourceCount)
}

func TestCollect_DerivedRatioFromProvider(t *testing.T) {
	derived := &derivedSource{signal: entity.DerivedSignal{Source: "AWS CloudTrail usage", CountPerDay: 5000, EventRatio: 1}}
	agg := newTestAggregator(&derivedRepo{&baseRepo{}, derived}, testConfig())

	s := agg.Collect(context.Background(), unit("1", false), 7, 50)

	assert.Equal(t, entity.TierDerived, s.EventTier)
	assert.Equal(t, 5000.0, s.PrimaryEventCountPerDay)
}

func TestCollect_HeuristicTier(t *testing.T) {
	tests := []struct {
		name      string
		resources int
		want      float64
	}{
		{name: "scaled by resources", resources: 40, want: 40 * 5000.0 / 30},
		{name: "floored", resources: 2, want: 100000.0 / 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			derived := &derivedSource{err: errors.New("DataUnavailableException")}
			agg := newTestAggregator(&derivedRepo{&baseRepo{resources: tt.resources}, derived}, testConfig())

			s := agg.Collect(context.Background(), unit("1", false), 7, 50)

			assert.Equal(t, entity.TierHeuristic, s.EventTier)
			assert.InDelta(t, tt.want, s.PrimaryEventCountPerDay, 1e-6)
			assert.True(t, s.DataComplete)
		})
	}
}

func TestCollect_DefaultTierWhenEverythingFails(t *testing.T) {
	agg := newTestAggregator(&baseRepo{resErr: errors.New("UnauthorizedOperation")}, testConfig())

	s := agg.Collect(context.Background(), unit("1", false), 7, 50)

	assert.Equal(t, entity.TierDefault, s.EventTier)
	assert.InDelta(t, 1_000_000.0/30, s.PrimaryEventCountPerDay, 1e-6)
	assert.Equal(t, 0, s.ResourceCount)
	assert.Equal(t, entity.TierDefault, s.LowestTier())
}

func TestCollect_DisabledTierIsSkipped(t *testing.T) {
	events := &eventSource{respond: func(time.Time, time.Time, string, int) (entity.EventPage, error) {
		return entity.EventPage{Records: records(1, "Management", 100)}, nil
	}}
	derived := &derivedSource{signal: entity.DerivedSignal{Source: "ce", CountPerDay: 10, EventRatio: 1}}

	cfg := testConfig()
	cfg.DisabledTiers = map[entity.EstimationTier]bool{entity.TierMeasured: true}
	agg := newTestAggregator(&fullRepo{&baseRepo{}, events, derived, &directorySource{}}, cfg)

	s := agg.Collect(context.Background(), unit("1", true), 7, 50)

	assert.Empty(t, events.calls)
	assert.Equal(t, entity.TierDerived, s.EventTier)
	assert.Equal(t, []entity.EstimationTier{entity.TierDerived, entity.TierHeuristic, entity.TierDefault}, agg.AvailableTiers())
}

func TestCollect_ClassifiesUnit(t *testing.T) {
	agg := newTestAggregator(&baseRepo{resources: 1}, testConfig())
	u := entity.Unit{ID: "9", Name: "payments-prod", Tags: map[string]string{"BU": "Payments"}}

	s := agg.Collect(context.Background(), u, 7, 0)

	assert.Equal(t, "Production", s.EnvironmentClass)
	assert.True(t, s.IsProductionLike)
	assert.Equal(t, "Payments", s.BusinessUnit)
	assert.Equal(t, "us-east-1", s.Region, "empty region takes the configured default")
}

func TestSizeSampler_WeightsByCategoryMix(t *testing.T) {
	src := &eventSource{respond: func(time.Time, time.Time, string, int) (entity.EventPage, error) {
		page := append(records(90, "Management", 1024), records(10, "Data", 2048)...)
		return entity.EventPage{Records: page}, nil
	}}
	agg := newTestAggregator(&eventsRepo{&baseRepo{}, src}, testConfig())

	s := agg.Collect(context.Background(), unit("1", true), 1, 1000)

	assert.InDelta(t, 1.1, s.AverageEventSizeKB, 1e-9)
}

func TestSizeSampler_ReservoirIsBounded(t *testing.T) {
	sampler := newSizeSampler(5, newTestAggregator(&baseRepo{}, testConfig()).rngFor("x"))

	sampler.offer(records(100, "Management", 600))

	assert.Len(t, sampler.reservoir, 5)
	assert.Equal(t, int64(100), sampler.seen)
	kb, ok := sampler.averageKB()
	require.True(t, ok)
	assert.InDelta(t, 600.0/1024, kb, 1e-9)
}

func TestRecordSize_NonJSONMessage(t *testing.T) {
	r := entity.EventRecord{Category: "Management", Message: "plain text"}
	assert.Greater(t, recordSize(r), len(r.Message))

	assert.Equal(t, 7, recordSize(entity.EventRecord{Message: `{ "a" : 1 }`}), "JSON is compacted before measuring")
}

func TestFallbackSample(t *testing.T) {
	agg := newTestAggregator(&baseRepo{}, testConfig())

	s := agg.FallbackSample(unit("7", false), context.DeadlineExceeded)

	assert.Equal(t, entity.TierDefault, s.EventTier)
	assert.Equal(t, entity.TierDefault, s.SizeTier)
	assert.InDelta(t, 1_000_000.0/30, s.PrimaryEventCountPerDay, 1e-6)
	require.NotEmpty(t, s.Warnings)
	assert.Contains(t, s.Warnings[0], "deadline")
}

func TestConfigFrom_DisableTiers(t *testing.T) {
	c := types.DefaultConfig()
	c.DisableTiers = []string{"Measured", " derived "}

	cfg, err := ConfigFrom(c)
	require.NoError(t, err)
	assert.True(t, cfg.DisabledTiers[entity.TierMeasured])
	assert.True(t, cfg.DisabledTiers[entity.TierDerived])
	assert.Equal(t, time.Hour, cfg.MinChunk)
	assert.Equal(t, 72*time.Hour, cfg.MaxChunk)

	c.DisableTiers = []string{"default"}
	_, err = ConfigFrom(c)
	assert.Error(t, err)

	c.DisableTiers = []string{"psychic"}
	_, err = ConfigFrom(c)
	assert.Error(t, err)
}

type regionalRepo struct {
	*baseRepo
	enabled    []string
	enabledErr error
	perDay     map[string]float64
	buckets    map[string]int
	linux      map[string]int
	scanErr    map[string]error
	seen       []string
}

func (r *regionalRepo) EnabledRegions(context.Context, entity.Unit) ([]string, error) {
	return r.enabled, r.enabledErr
}

func (r *regionalRepo) DerivedSignal(_ context.Context, u entity.Unit, _, _ time.Time) (entity.DerivedSignal, error) {
	r.seen = append(r.seen, u.Region)
	return entity.DerivedSignal{Source: "ce", CountPerDay: r.perDay[u.Region], EventRatio: 1}, nil
}

func (r *regionalRepo) CountBuckets(_ context.Context, u entity.Unit) (int, error) {
	if err := r.scanErr[u.Region]; err != nil {
		return 0, err
	}
	return r.buckets[u.Region], nil
}

func (r *regionalRepo) CountInstances(_ context.Context, u entity.Unit) (entity.InstanceInventory, error) {
	if err := r.scanErr[u.Region]; err != nil {
		return entity.InstanceInventory{}, err
	}
	return entity.InstanceInventory{Total: r.linux[u.Region] + 1, Linux: r.linux[u.Region]}, nil
}

func TestCollect_SumsConfiguredRegions(t *testing.T) {
	repo := &regionalRepo{baseRepo: &baseRepo{resources: 3}, perDay: map[string]float64{"us-east-1": 1_000_000, "ap-south-1": 500_000}}
	agg := newTestAggregator(repo, testConfig())
	u := unit("1", true)
	u.Regions = []string{"us-east-1", "ap-south-1", "us-east-1"}

	s := agg.Collect(context.Background(), u, 7, 50)

	assert.Equal(t, []string{"us-east-1", "ap-south-1"}, s.Regions)
	assert.Equal(t, []string{"us-east-1", "ap-south-1"}, repo.seen)
	assert.Equal(t, "us-east-1", s.Region)
	assert.Equal(t, 1_500_000.0, s.PrimaryEventCountPerDay)
	assert.Equal(t, 6, s.ResourceCount)
	assert.Equal(t, entity.TierDerived, s.EventTier)
	assert.Contains(t, s.Warnings, "ap-south-1: event volume derived from ce")

	// eventos/dia * 30 * 1.5KB
	assert.Equal(t, entity.EgressVolume{{Region: "us-east-1", GBPerMonth: 42.92}, {Region: "ap-south-1", GBPerMonth: 21.46}}, s.Egress)
	assert.Equal(t, entity.TierDefault, s.EgressTier, "size fell back to the default")
}

func TestCollect_AllRegionsUsesEnabledRegions(t *testing.T) {
	repo := &regionalRepo{baseRepo: &baseRepo{}, enabled: []string{"eu-west-1", "us-east-1", "eu-west-1"}, perDay: map[string]float64{"eu-west-1": 10, "us-east-1": 20}}
	cfg := testConfig()
	cfg.AllRegions = true
	agg := newTestAggregator(repo, cfg)

	s := agg.Collect(context.Background(), unit("1", false), 7, 50)

	assert.Equal(t, []string{"eu-west-1", "us-east-1"}, s.Regions)
	assert.Equal(t, []string{"eu-west-1", "us-east-1"}, repo.seen)
	assert.Equal(t, 30.0, s.PrimaryEventCountPerDay)
}

func TestCollect_AllRegionsFallsBackToConfigured(t *testing.T) {
	repo := &regionalRepo{baseRepo: &baseRepo{}, enabledErr: errors.New("UnauthorizedOperation"), perDay: map[string]float64{"us-east-1": 20}}
	cfg := testConfig()
	cfg.AllRegions = true
	agg := newTestAggregator(repo, cfg)

	s := agg.Collect(context.Background(), unit("1", false), 7, 50)

	assert.Equal(t, []string{"us-east-1"}, s.Regions)
	assert.Equal(t, 20.0, s.PrimaryEventCountPerDay)
}

func TestCollect_RegionsIgnoredWithoutAllRegions(t *testing.T) {
	repo := &regionalRepo{baseRepo: &baseRepo{}, enabled: []string{"eu-west-1", "us-west-2"}, perDay: map[string]float64{"us-east-1": 20}}
	agg := newTestAggregator(repo, testConfig())

	s := agg.Collect(context.Background(), unit("1", false), 7, 50)

	assert.Equal(t, []string{"us-east-1"}, s.Regions)
	assert.Equal(t, []string{"us-east-1"}, repo.seen)
}

func TestCollect_DefaultTierUsesEgressBaseline(t *testing.T) {
	agg := newTestAggregator(&baseRepo{resErr: errors.New("UnauthorizedOperation")}, testConfig())

	s := agg.Collect(context.Background(), unit("1", false), 7, 50)

	assert.Equal(t, entity.EgressVolume{{Region: "us-east-1", GBPerMonth: 5}}, s.Egress)
	assert.Equal(t, entity.TierDefault, s.EgressTier)
}

func TestCollect_MeasuredEgress(t *testing.T) {
	src := &eventSource{respond: func(time.Time, time.Time, string, int) (entity.EventPage, error) {
		return entity.EventPage{Records: records(100, "Management", 1024)}, nil
	}}
	agg := newTestAggregator(&eventsRepo{&baseRepo{}, src}, testConfig())

	s := agg.Collect(context.Background(), unit("1", true), 7, 50)

	require.Len(t, s.Egress, 1)
	// 600/7 eventos/dia * 30 * 1KB
	assert.InDelta(t, 600.0/7*30/1024/1024, s.Egress[0].GBPerMonth, 0.005)
	assert.Equal(t, entity.TierMeasured, s.EgressTier)
}

func TestCollect_FailedRegionKeepsEarlierSizeSamples(t *testing.T) {
	// a primeira região pagina em 6 chamadas; a segunda falha depois de uma página
	calls := 0
	src := &eventSource{respond: func(time.Time, time.Time, string, int) (entity.EventPage, error) {
		calls++
		if calls > 7 {
			return entity.EventPage{}, types.NewUnitAccessError("1", "FilterLogEvents", errors.New("AccessDeniedException"))
		}
		return entity.EventPage{Records: records(10, "Management", 2048)}, nil
	}}
	agg := newTestAggregator(&eventsRepo{&baseRepo{}, src}, testConfig())
	u := unit("1", true)
	u.Regions = []string{"us-east-1", "eu-west-1"}

	s := agg.Collect(context.Background(), u, 7, 50)

	assert.Equal(t, entity.TierMeasured, s.SizeTier, "samples from the first region survive the second one failing")
	assert.InDelta(t, 2.0, s.AverageEventSizeKB, 1e-9)
	assert.Equal(t, entity.TierHeuristic, s.EventTier)
	assert.InDelta(t, 60.0/7+100_000.0/30, s.PrimaryEventCountPerDay, 1e-6)
}

func TestCollect_ScanInventoryPerRegion(t *testing.T) {
	repo := &regionalRepo{
		baseRepo: &baseRepo{},
		perDay:   map[string]float64{"us-east-1": 10, "sa-east-1": 10},
		buckets:  map[string]int{"us-east-1": 4},
		linux:    map[string]int{"us-east-1": 3},
		scanErr:  map[string]error{"sa-east-1": types.NewUnitAccessError("1", "ListBuckets", errors.New("AccessDenied"))},
	}
	cfg := testConfig()
	cfg.IncludeDSPM = true
	cfg.IncludeSnapshot = true
	agg := newTestAggregator(repo, cfg)
	u := unit("1", true)
	u.Regions = []string{"us-east-1", "sa-east-1"}

	s := agg.Collect(context.Background(), u, 7, 50)

	assert.Equal(t, 4+10, s.ScanBuckets)
	assert.Equal(t, 14.0*50, s.ScanDataGB)
	assert.Equal(t, 3+14, s.SnapshotInstances)
	assert.Contains(t, s.Warnings, "bucket inventory unavailable in 1 region(s), assuming 10 buckets each")
	assert.Contains(t, s.Warnings, "instance inventory unavailable in 1 region(s), assuming 14 Linux instances each")
}

func TestCollect_ScanInventoryOffByDefault(t *testing.T) {
	repo := &regionalRepo{baseRepo: &baseRepo{}, buckets: map[string]int{"us-east-1": 4}, linux: map[string]int{"us-east-1": 3}}
	agg := newTestAggregator(repo, testConfig())

	s := agg.Collect(context.Background(), unit("1", true), 7, 50)

	assert.Zero(t, s.ScanBuckets)
	assert.Zero(t, s.ScanDataGB)
	assert.Zero(t, s.SnapshotInstances)
}

func TestCollect_ScanInventoryWithoutSourceUsesFallback(t *testing.T) {
	cfg := testConfig()
	cfg.IncludeSnapshot = true
	agg := newTestAggregator(&baseRepo{resources: 1}, cfg)

	s := agg.Collect(context.Background(), unit("1", true), 7, 50)

	assert.Equal(t, 14, s.SnapshotInstances)
	assert.Zero(t, s.ScanBuckets, "DSPM is off")
}

func TestFallbackSample_EveryRegion(t *testing.T) {
	cfg := testConfig()
	cfg.IncludeDSPM = true
	agg := newTestAggregator(&baseRepo{}, cfg)
	u := unit("7", false)
	u.Regions = []string{"us-east-1", "me-south-1"}

	s := agg.FallbackSample(u, context.DeadlineExceeded)

	assert.Equal(t, []string{"us-east-1", "me-south-1"}, s.Regions)
	assert.InDelta(t, 2*1_000_000.0/30, s.PrimaryEventCountPerDay, 1e-6)
	assert.Equal(t, entity.EgressVolume{{Region: "us-east-1", GBPerMonth: 5}, {Region: "me-south-1", GBPerMonth: 5}}, s.Egress)
	assert.Equal(t, 20, s.ScanBuckets)
	assert.Equal(t, 1000.0, s.ScanDataGB)
	assert.Zero(t, s.SnapshotInstances)
}
