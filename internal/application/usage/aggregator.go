// Package usage collects per-unit usage signals through a four-tier ladder:
// measured event logs, a derived signal, a resource-count heuristic and a
// fixed default. Collection never fails; each failure falls to the next tier.
package usage

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
	"github.com/diillson/falcon-cost-estimator-go/internal/domain/repository"
	"github.com/diillson/falcon-cost-estimator-go/internal/domain/rollup"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/logging"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/retry"
)

// Aggregator is safe for concurrent Collect calls.
type Aggregator struct {
	repo       repository.UsageRepository
	events     repository.EventLogSource
	derived    repository.DerivedSignalSource
	directory  repository.DirectorySource
	regions    repository.RegionSource
	scans      repository.ScanInventorySource
	classifier *rollup.Classifier

	cfg    Config
	retry  retry.Policy
	logger *zap.Logger
	now    func() time.Time
	seed   uint64
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithClock injeta o relógio que define o fim da janela de amostragem.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithSeed makes reservoir sampling deterministic.
func WithSeed(seed uint64) Option {
	return func(a *Aggregator) { a.seed = seed }
}

// NewAggregator resolves the available tiers once: the optional sources are
// taken from repo when it implements them and the tier is not disabled.
func NewAggregator(repo repository.UsageRepository, cfg Config, policy retry.Policy, classifier *rollup.Classifier, logger *zap.Logger, opts ...Option) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if classifier == nil {
		classifier = rollup.NewClassifier(rollup.DefaultCategories(), rollup.DefaultBusinessUnitTagKeys(), rollup.DefaultEnvironmentTagKeys(), rollup.DefaultLabels())
	}
	a := &Aggregator{
		repo:       repo,
		classifier: classifier,
		cfg:        cfg,
		retry:      policy,
		logger:     logger,
		now:        time.Now,
		seed:       uint64(time.Now().UnixNano()),
	}
	if s, ok := repo.(repository.EventLogSource); ok && !cfg.DisabledTiers[entity.TierMeasured] {
		a.events = s
	}
	if s, ok := repo.(repository.DerivedSignalSource); ok && !cfg.DisabledTiers[entity.TierDerived] {
		a.derived = s
	}
	if s, ok := repo.(repository.DirectorySource); ok {
		a.directory = s
	}
	if s, ok := repo.(repository.RegionSource); ok {
		a.regions = s
	}
	if s, ok := repo.(repository.ScanInventorySource); ok {
		a.scans = s
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AvailableTiers lists the tiers this aggregator can attempt, best first.
func (a *Aggregator) AvailableTiers() []entity.EstimationTier {
	var tiers []entity.EstimationTier
	if a.events != nil {
		tiers = append(tiers, entity.TierMeasured)
	}
	if a.derived != nil {
		tiers = append(tiers, entity.TierDerived)
	}
	if a.repo != nil && !a.cfg.DisabledTiers[entity.TierHeuristic] {
		tiers = append(tiers, entity.TierHeuristic)
	}
	return append(tiers, entity.TierDefault)
}

// Collect gathers the usage sample of one unit over the last windowDays.
// sampleSize bounds the records kept for event-size estimation. Each region
// runs its own tier ladder; counts are summed and the worst tier is kept.
func (a *Aggregator) Collect(ctx context.Context, unit entity.Unit, windowDays, sampleSize int) entity.UsageSample {
	if windowDays <= 0 {
		windowDays = a.cfg.WindowDays
	}
	if windowDays <= 0 {
		windowDays = 1
	}
	end := a.now()
	start := end.Add(-time.Duration(windowDays) * 24 * time.Hour)
	log := a.logger.With(logging.UnitID(unit.ID))

	s := a.baseSample(unit)
	s.Regions = a.resolveRegions(ctx, unit, log)

	sampler := newSizeSampler(sampleSize, a.rngFor(unit.ID))

	parts := make([]regionPart, 0, len(s.Regions))
	for _, region := range s.Regions {
		ru := unit
		ru.Region = region
		ru.Regions = s.Regions
		parts = append(parts, regionPart{
			region: region,
			sample: a.collectRegion(ctx, ru, start, end, float64(windowDays), sampler, log.With(logging.Region(region))),
		})
	}

	if kb, ok := sampler.averageKB(); ok {
		s.AverageEventSizeKB = kb
		s.SizeTier = entity.TierMeasured
	} else {
		s.AverageEventSizeKB = a.cfg.DefaultEventSizeKB
		s.SizeTier = entity.TierDefault
	}

	mergeRegions(&s, parts)
	s.Egress, s.EgressTier = a.egressOf(parts, s.AverageEventSizeKB, s.SizeTier)
	a.collectScanInventory(ctx, unit, s.Regions, &s, log)

	return a.finalize(s, log)
}

// regionPart é o resultado da escada de tiers numa região.
type regionPart struct {
	region string
	sample entity.UsageSample
}

func (a *Aggregator) collectRegion(ctx context.Context, unit entity.Unit, start, end time.Time, days float64, sampler *sizeSampler, log *zap.Logger) entity.UsageSample {
	rs := entity.UsageSample{DataComplete: true}

	resources, resErr := a.countResources(ctx, unit)
	if resErr != nil {
		log.Warn("resource inventory failed, heuristic tier unavailable", logging.Tier(entity.TierHeuristic.String()), zap.Error(resErr))
	}
	rs.ResourceCount = resources

	switch {
	case a.tryMeasured(ctx, unit, start, end, days, sampler, &rs, log):
	case a.tryDerived(ctx, unit, start, end, &rs, log):
	case resErr == nil && a.tryHeuristic(&rs):
	default:
		rs.PrimaryEventCountPerDay = a.cfg.DefaultEventsMonth / DaysPerMonth
		rs.EventTier = entity.TierDefault
		rs.Warnings = append(rs.Warnings, "event volume uses the fixed default")
	}
	return rs
}

func mergeRegions(s *entity.UsageSample, parts []regionPart) {
	multi := len(parts) > 1
	for _, p := range parts {
		s.PrimaryEventCountPerDay += p.sample.PrimaryEventCountPerDay
		s.ResourceCount += p.sample.ResourceCount
		s.EventTier = s.EventTier.Worse(p.sample.EventTier)
		s.DataComplete = s.DataComplete && p.sample.DataComplete
		for _, w := range p.sample.Warnings {
			if multi {
				w = p.region + ": " + w
			}
			s.Warnings = append(s.Warnings, w)
		}
	}
}

// FallbackSample is the tier-4 sample used when collection for a unit could
// not run at all, e.g. after a worker timeout.
func (a *Aggregator) FallbackSample(unit entity.Unit, cause error) entity.UsageSample {
	s := a.baseSample(unit)
	s.Regions = a.unitRegions(unit)
	s.AverageEventSizeKB = a.cfg.DefaultEventSizeKB
	s.SizeTier = entity.TierDefault

	parts := make([]regionPart, 0, len(s.Regions))
	for _, region := range s.Regions {
		parts = append(parts, regionPart{region: region, sample: entity.UsageSample{
			PrimaryEventCountPerDay: a.cfg.DefaultEventsMonth / DaysPerMonth,
			EventTier:               entity.TierDefault,
			DataComplete:            true,
		}})
	}
	mergeRegions(&s, parts)
	s.Egress, s.EgressTier = a.egressOf(parts, s.AverageEventSizeKB, s.SizeTier)
	s.Warnings = append(s.Warnings, fmt.Sprintf("collection aborted (%v), fixed default used", cause))
	if a.cfg.IncludeDSPM {
		s.ScanBuckets = a.cfg.DSPMFallbackBuckets * len(s.Regions)
		s.ScanDataGB = float64(s.ScanBuckets) * a.cfg.DSPMAverageBucketGB
	}
	if a.cfg.IncludeSnapshot {
		s.SnapshotInstances = a.cfg.SnapshotFallbackInstances * len(s.Regions)
	}

	log := a.logger.With(logging.UnitID(unit.ID))
	log.Warn("usage collection aborted, using default tier", logging.Tier(entity.TierDefault.String()), zap.Error(cause))
	return a.finalize(s, log)
}

func (a *Aggregator) baseSample(unit entity.Unit) entity.UsageSample {
	env, prod := a.classifier.Classify(unit.Name, unit.Tags)
	name := unit.Name
	if name == "" {
		name = unit.ID
	}
	region := unit.Region
	if region == "" {
		region = a.cfg.DefaultRegion
	}
	return entity.UsageSample{
		UnitID:           unit.ID,
		UnitName:         name,
		Region:           region,
		BusinessUnit:     a.classifier.BusinessUnit(unit.Tags),
		EnvironmentClass: env,
		IsProductionLike: prod,
		IsDefaultUnit:    unit.IsDefault,
		DataComplete:     true,
	}
}

func (a *Aggregator) finalize(s entity.UsageSample, log *zap.Logger) entity.UsageSample {
	out, err := entity.NewUsageSample(s)
	if err != nil {
		// amostras inválidas indicam bug; registra e devolve o valor bruto
		log.Error("invalid usage sample", zap.Error(err))
		return s
	}
	return out
}

func (a *Aggregator) countResources(ctx context.Context, unit entity.Unit) (int, error) {
	if a.repo == nil {
		return 0, fmt.Errorf("no usage repository")
	}
	var n int
	err := a.retry.Do(ctx, "resources:count", func(ctx context.Context) error {
		c, err := a.repo.CountResources(ctx, unit)
		if err != nil {
			return err
		}
		n = c
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (a *Aggregator) tryMeasured(ctx context.Context, unit entity.Unit, start, end time.Time, days float64, sampler *sizeSampler, s *entity.UsageSample, log *zap.Logger) bool {
	if a.events == nil {
		return false
	}
	checkpoint := sampler.clone()
	stats, err := a.pageEvents(ctx, unit, start, end, sampler, log)
	if err != nil {
		log.Warn("event log query failed, trying next tier", logging.Tier(entity.TierMeasured.String()), zap.Error(err))
		*sampler = *checkpoint
		return false
	}

	s.PrimaryEventCountPerDay = float64(stats.Records) / days
	s.EventTier = entity.TierMeasured
	if !stats.Complete {
		s.DataComplete = false
		s.Warnings = append(s.Warnings, "event log paging hit the page limit at the minimum chunk; volume is a lower bound")
	}
	log.Debug("event volume measured",
		zap.Int64("records", stats.Records),
		zap.Int("requests", stats.Requests),
		zap.Int("shrinks", stats.Shrinks))
	return true
}

func (a *Aggregator) tryDerived(ctx context.Context, unit entity.Unit, start, end time.Time, s *entity.UsageSample, log *zap.Logger) bool {
	if a.derived == nil {
		return false
	}
	var signal entity.DerivedSignal
	err := a.retry.Do(ctx, "derived:signal", func(ctx context.Context) error {
		sig, err := a.derived.DerivedSignal(ctx, unit, start, end)
		if err != nil {
			return err
		}
		signal = sig
		return nil
	})
	if err != nil {
		log.Warn("derived signal failed, trying next tier", logging.Tier(entity.TierDerived.String()), zap.Error(err))
		return false
	}
	if signal.CountPerDay <= 0 {
		log.Debug("derived signal empty, trying next tier", zap.String("source", signal.Source))
		return false
	}

	ratio := signal.EventRatio
	if ratio <= 0 {
		ratio = a.cfg.DerivedEventRatio
	}
	s.PrimaryEventCountPerDay = signal.CountPerDay * ratio
	s.EventTier = entity.TierDerived
	s.Warnings = append(s.Warnings, fmt.Sprintf("event volume derived from %s", signal.Source))
	return true
}

func (a *Aggregator) tryHeuristic(s *entity.UsageSample) bool {
	if a.cfg.DisabledTiers[entity.TierHeuristic] {
		return false
	}
	monthly := float64(s.ResourceCount) * a.cfg.HeuristicEventsPerResourceMonth
	if monthly < a.cfg.HeuristicMinEventsMonth {
		monthly = a.cfg.HeuristicMinEventsMonth
	}
	s.PrimaryEventCountPerDay = monthly / DaysPerMonth
	s.EventTier = entity.TierHeuristic
	s.Warnings = append(s.Warnings, fmt.Sprintf("event volume estimated from %d resources", s.ResourceCount))
	return true
}

func (a *Aggregator) rngFor(unitID string) *rand.Rand {
	return rand.New(rand.NewPCG(a.seed, seedFor(unitID)))
}

// seedFor deriva uma semente estável por unidade.
func seedFor(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}
