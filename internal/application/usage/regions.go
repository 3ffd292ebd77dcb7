package usage

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
)

const kbPerGB = 1024 * 1024

// resolveRegions returns the regions to collect for unit. With AllRegions
// the regions enabled in the account are used; when discovery is not
// available or fails, the unit's configured regions are kept.
func (a *Aggregator) resolveRegions(ctx context.Context, unit entity.Unit, log *zap.Logger) []string {
	configured := a.unitRegions(unit)
	if !a.cfg.AllRegions {
		return configured
	}
	if a.regions == nil {
		log.Debug("region discovery not supported by the provider, using configured regions")
		return configured
	}

	var enabled []string
	err := a.retry.Do(ctx, "regions:enabled", func(ctx context.Context) error {
		r, err := a.regions.EnabledRegions(ctx, unit)
		if err != nil {
			return err
		}
		enabled = r
		return nil
	})
	if err != nil || len(enabled) == 0 {
		log.Warn("region discovery failed, using configured regions", zap.Strings("regions", configured), zap.Error(err))
		return configured
	}
	log.Debug("regions discovered", zap.Int("count", len(enabled)))
	return dedupe(enabled)
}

// unitRegions: Regions da unidade, senão Region, senão a região padrão.
func (a *Aggregator) unitRegions(unit entity.Unit) []string {
	if out := dedupe(unit.Regions); len(out) > 0 {
		return out
	}
	if unit.Region != "" {
		return []string{unit.Region}
	}
	return []string{a.cfg.DefaultRegion}
}

func dedupe(regions []string) []string {
	seen := make(map[string]bool, len(regions))
	out := make([]string, 0, len(regions))
	for _, r := range regions {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

// egressOf derives the monthly egress of each region from its event volume
// and the average event size. Regions whose volume is the fixed default get
// the fixed egress baseline instead.
func (a *Aggregator) egressOf(parts []regionPart, sizeKB float64, sizeTier entity.EstimationTier) (entity.EgressVolume, entity.EstimationTier) {
	out := make(entity.EgressVolume, 0, len(parts))
	var tier entity.EstimationTier
	for _, p := range parts {
		gb := p.sample.PrimaryEventCountPerDay * DaysPerMonth * sizeKB / kbPerGB
		t := p.sample.EventTier.Worse(sizeTier)
		if p.sample.EventTier == entity.TierDefault {
			gb = a.cfg.DefaultEgressGBMonth
			t = entity.TierDefault
		}
		if gb < 0 || math.IsNaN(gb) {
			gb = 0
		}
		out = append(out, entity.RegionalEgress{Region: p.region, GBPerMonth: math.Round(gb*100) / 100})
		tier = tier.Worse(t)
	}
	return out, tier
}
