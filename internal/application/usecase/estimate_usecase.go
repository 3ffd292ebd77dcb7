package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/diillson/falcon-cost-estimator-go/internal/application/pricing"
	"github.com/diillson/falcon-cost-estimator-go/internal/application/usage"
	"github.com/diillson/falcon-cost-estimator-go/internal/domain/costing"
	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
	"github.com/diillson/falcon-cost-estimator-go/internal/domain/repository"
	"github.com/diillson/falcon-cost-estimator-go/internal/domain/rollup"
	"github.com/diillson/falcon-cost-estimator-go/internal/domain/sizing"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/logging"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/retry"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/taskgroup"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/types"
)

// EstimateUseCase orchestrates a run: discovery, usage collection, sizing,
// costing, rollup and delivery.
type EstimateUseCase struct {
	usageRepo   repository.UsageRepository
	pricingRepo repository.PricingRepository
	exportRepo  repository.ExportRepository
	configRepo  repository.ConfigRepository
	console     types.ConsoleInterface
	logger      *zap.Logger

	now      func() time.Time
	newRunID func() string
	aggOpts  []usage.Option
}

// NewEstimateUseCase creates a new estimate use case.
func NewEstimateUseCase(
	usageRepo repository.UsageRepository,
	pricingRepo repository.PricingRepository,
	exportRepo repository.ExportRepository,
	configRepo repository.ConfigRepository,
	console types.ConsoleInterface,
	logger *zap.Logger,
) *EstimateUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EstimateUseCase{
		usageRepo:   usageRepo,
		pricingRepo: pricingRepo,
		exportRepo:  exportRepo,
		configRepo:  configRepo,
		console:     console,
		logger:      logger,
		now:         time.Now,
		newRunID:    uuid.NewString,
	}
}

// SetLogger troca o logger depois que a configuração de log é conhecida.
func (uc *EstimateUseCase) SetLogger(logger *zap.Logger) {
	if logger != nil {
		uc.logger = logger
	}
}

// RunEstimate é o ponto de entrada da CLI. Só falhas de autenticação, de
// configuração ou de entrega total do relatório retornam erro.
func (uc *EstimateUseCase) RunEstimate(ctx context.Context, args *types.CLIArgs) error {
	cfg, err := uc.LoadConfig(args)
	if err != nil {
		return err
	}
	return uc.Run(ctx, cfg, args != nil && args.Refresh)
}

// Run executa a estimativa com uma configuração já validada, exibe e exporta.
func (uc *EstimateUseCase) Run(ctx context.Context, cfg types.Config, refreshPrices bool) error {
	report, err := uc.Estimate(ctx, cfg, refreshPrices)
	if err != nil {
		return err
	}

	uc.display(report, cfg)
	return uc.export(ctx, cfg, report)
}

// Estimate runs the whole pipeline and returns the report without side
// effects other than provider calls and logs.
func (uc *EstimateUseCase) Estimate(ctx context.Context, cfg types.Config, refreshPrices bool) (entity.Report, error) {
	runID := uc.newRunID()
	log := uc.logger.With(logging.RunID(runID))

	sizingCfg, err := SizingConfig(cfg)
	if err != nil {
		return entity.Report{}, err
	}
	usageCfg, err := usage.ConfigFrom(cfg)
	if err != nil {
		return entity.Report{}, err
	}
	dim, err := rollup.ParseDimension(cfg.GroupBy)
	if err != nil {
		return entity.Report{}, err
	}
	costCfg := CostingConfig(cfg)
	policy := retry.FromConfig(cfg).WithLogger(log)

	status := uc.console.Status("Connecting to AWS...")
	identity, reduced, err := uc.connect(ctx, cfg.Profile, log)
	if err != nil {
		status.Stop()
		return entity.Report{}, err
	}

	status.Update("Discovering accounts...")
	units, err := uc.discoverUnits(ctx, cfg, identity, reduced, log)
	status.Stop()
	if err != nil {
		return entity.Report{}, err
	}
	log.Info("run started",
		zap.String("account_id", identity.AccountID),
		zap.Int("units", len(units)),
		zap.Strings("regions", cfg.Regions),
		zap.Bool("all_regions", cfg.AllRegions),
		zap.Bool("reduced_mode", reduced),
		zap.Bool("parallel", cfg.Parallel))

	agg := usage.NewAggregator(uc.usageRepo, usageCfg, policy, Classifier(cfg), log, uc.aggOpts...)
	samples, err := uc.collect(ctx, agg, units, cfg)
	if err != nil {
		return entity.Report{}, err
	}
	samples = usage.AttachDirectory(samples, agg.DirectoryVolume(ctx))
	if cfg.ConsolidateEvents {
		samples = usage.Consolidate(samples)
	}
	samples = usage.ConsolidateScanInputs(samples)

	defaultUnit := defaultSample(samples)
	resolver := uc.resolver(cfg, policy, log)
	prices := resolver.Resolve(ctx, defaultUnit.Region, refreshPrices)

	rows := make([]entity.UnitReport, 0, len(samples))
	for _, s := range samples {
		req := sizing.ComputeSizing(s, sizingCfg)
		cost := costing.ComputeCost(req, prices, s.IsProductionLike, costCfg)
		rows = append(rows, entity.NewUnitReport(s, req, cost))
	}

	groups := rollup.Rollup(rows, dim, Labels(cfg))
	summary := uc.summarize(runID, defaultUnit.Region, samples, rows, prices, reduced)
	summary.Budgets = uc.budgets(ctx, defaultUnit.UnitID, log)

	log.Info("run finished",
		zap.Float64("total_monthly_cost", summary.TotalMonthlyCost),
		zap.Int("degraded_units", summary.DegradedUnits),
		zap.String("lowest_tier", summary.LowestTier.String()))

	return entity.Report{
		Summary:    summary,
		Units:      rows,
		GroupBy:    string(dim),
		Rollup:     groups,
		RollupKeys: rollup.SortedKeys(groups),
	}, nil
}

// connect tenta o perfil pedido e, se falhar, a cadeia padrão de credenciais
// em modo reduzido (apenas a conta atual).
func (uc *EstimateUseCase) connect(ctx context.Context, profile string, log *zap.Logger) (entity.CallerIdentity, bool, error) {
	id, err := uc.usageRepo.Connect(ctx, profile)
	if err == nil {
		return id, false, nil
	}
	if profile == "" {
		return entity.CallerIdentity{}, false, fmt.Errorf("%w: %v", types.ErrAuthFailure, err)
	}

	log.Warn("profile authentication failed, trying default credential chain", zap.String("profile", profile), zap.Error(err))
	id, fallbackErr := uc.usageRepo.Connect(ctx, "")
	if fallbackErr != nil {
		return entity.CallerIdentity{}, false, fmt.Errorf("%w: profile %q: %v; default chain: %v", types.ErrAuthFailure, profile, err, fallbackErr)
	}
	uc.console.LogWarning("Profile '%s' failed; running in reduced mode on account %s only", profile, id.AccountID)
	return id, true, nil
}

func (uc *EstimateUseCase) discoverUnits(ctx context.Context, cfg types.Config, id entity.CallerIdentity, reduced bool, log *zap.Logger) ([]entity.Unit, error) {
	self := []entity.Unit{{ID: id.AccountID, Name: id.AccountID, Region: cfg.Region}}

	units := self
	if !reduced {
		listed, err := uc.usageRepo.ListUnits(ctx)
		switch {
		case err != nil:
			log.Warn("unit discovery failed, estimating the caller account only", zap.Error(err))
		case len(listed) == 0:
			log.Warn("no units discovered, estimating the caller account only")
		default:
			units = listed
		}
	}

	if len(cfg.Units) > 0 {
		wanted := make(map[string]bool, len(cfg.Units))
		for _, u := range cfg.Units {
			wanted[u] = true
		}
		filtered := make([]entity.Unit, 0, len(units))
		for _, u := range units {
			if wanted[u.ID] || wanted[u.Name] {
				filtered = append(filtered, u)
			}
		}
		units = filtered
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("no units to estimate (filter: %v)", cfg.Units)
	}

	for i := range units {
		if units[i].Region == "" {
			units[i].Region = cfg.Region
		}
		if len(units[i].Regions) == 0 && len(cfg.Regions) > 0 {
			units[i].Regions = append([]string(nil), cfg.Regions...)
		}
	}

	defaultID := cfg.DefaultUnit
	if defaultID == "" {
		defaultID = id.AccountID
	}
	units = entity.MarkDefault(units, defaultID)
	if err := entity.ValidateBatch(units); err != nil {
		return nil, err
	}
	return units, nil
}

func (uc *EstimateUseCase) collect(ctx context.Context, agg *usage.Aggregator, units []entity.Unit, cfg types.Config) ([]entity.UsageSample, error) {
	limit := 1
	if cfg.Parallel {
		limit = taskgroup.Limit(cfg.MaxWorkers, len(units), cfg.ThrottleFactor)
	}
	opts := taskgroup.Options{Limit: limit, Timeout: time.Duration(cfg.TaskTimeoutSeconds) * time.Second}

	progress := uc.console.ProgressWithTotal(len(units))
	defer progress.Stop()
	var mu sync.Mutex
	tick := func() {
		mu.Lock()
		defer mu.Unlock()
		progress.Increment()
	}

	return taskgroup.Map(ctx, opts, units,
		func(ctx context.Context, u entity.Unit) (entity.UsageSample, error) {
			s := agg.Collect(ctx, u, cfg.SampleWindowDays, cfg.SampleSize)
			if err := ctx.Err(); err != nil {
				return s, err
			}
			tick()
			return s, nil
		},
		func(u entity.Unit, err error) entity.UsageSample {
			tick()
			return agg.FallbackSample(u, err)
		})
}

func (uc *EstimateUseCase) resolver(cfg types.Config, policy retry.Policy, log *zap.Logger) *pricing.Resolver {
	var repo repository.PricingRepository
	if !cfg.Offline {
		repo = uc.pricingRepo
	}
	return pricing.NewResolver(repo, policy, log, pricing.WithTTL(time.Duration(cfg.PricingCacheTTLHours)*time.Hour), pricing.WithClock(uc.now))
}

func (uc *EstimateUseCase) summarize(runID, region string, samples []entity.UsageSample, rows []entity.UnitReport, prices entity.PriceTable, reduced bool) entity.RunSummary {
	costs := make([]float64, 0, len(rows))
	for _, r := range rows {
		costs = append(costs, r.MonthlyCost)
	}
	total := costing.SumRounded(costs...)

	s := entity.RunSummary{
		RunID:                   runID,
		GeneratedAt:             uc.now(),
		Region:                  region,
		UnitCount:               len(rows),
		TotalMonthlyCost:        total,
		Projection:              costing.Project(total),
		LowestTier:              entity.TierMeasured,
		FallbackPriceDimensions: prices.FallbackDimensions,
		ReducedMode:             reduced,
	}
	for _, smp := range samples {
		if smp.Degraded() {
			s.DegradedUnits++
		}
		if !smp.DataComplete {
			s.IncompleteUnits++
		}
		s.LowestTier = s.LowestTier.Worse(smp.LowestTier())
	}
	return s
}

func (uc *EstimateUseCase) budgets(ctx context.Context, unitID string, log *zap.Logger) []entity.BudgetInfo {
	src, ok := uc.usageRepo.(repository.BudgetSource)
	if !ok {
		return nil
	}
	budgets, err := src.GetBudgets(ctx, unitID)
	if err != nil {
		log.Warn("budget lookup failed", logging.UnitID(unitID), zap.Error(err))
		return nil
	}
	return budgets
}

func defaultSample(samples []entity.UsageSample) entity.UsageSample {
	for _, s := range samples {
		if s.IsDefaultUnit {
			return s
		}
	}
	return samples[0]
}
