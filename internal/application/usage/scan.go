package usage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/logging"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/types"
)

var errNoScanInventory = fmt.Errorf("scan inventory not supported by the provider: %w", types.ErrTierUnavailable)

// collectScanInventory counts, per region, the buckets scanned by DSPM and
// the Linux instances covered by snapshot scanning. Only the enabled lines
// are collected; a region whose count fails takes the configured fallback.
func (a *Aggregator) collectScanInventory(ctx context.Context, unit entity.Unit, regions []string, s *entity.UsageSample, log *zap.Logger) {
	if a.cfg.IncludeDSPM {
		buckets, failed := a.perRegion(ctx, unit, regions, "scan:buckets", a.cfg.DSPMFallbackBuckets, log,
			func(ctx context.Context, u entity.Unit) (int, error) {
				if a.scans == nil {
					return 0, errNoScanInventory
				}
				return a.scans.CountBuckets(ctx, u)
			})
		if failed > 0 {
			s.Warnings = append(s.Warnings, fmt.Sprintf("bucket inventory unavailable in %d region(s), assuming %d buckets each", failed, a.cfg.DSPMFallbackBuckets))
		}
		s.ScanBuckets = buckets
		s.ScanDataGB = float64(buckets) * a.cfg.DSPMAverageBucketGB
	}

	if a.cfg.IncludeSnapshot {
		linux, failed := a.perRegion(ctx, unit, regions, "scan:instances", a.cfg.SnapshotFallbackInstances, log,
			func(ctx context.Context, u entity.Unit) (int, error) {
				if a.scans == nil {
					return 0, errNoScanInventory
				}
				inv, err := a.scans.CountInstances(ctx, u)
				return inv.Linux, err
			})
		if failed > 0 {
			s.Warnings = append(s.Warnings, fmt.Sprintf("instance inventory unavailable in %d region(s), assuming %d Linux instances each", failed, a.cfg.SnapshotFallbackInstances))
		}
		s.SnapshotInstances = linux
	}
}

// perRegion soma count em todas as regiões; regiões com erro contam fallback.
func (a *Aggregator) perRegion(ctx context.Context, unit entity.Unit, regions []string, op string, fallback int, log *zap.Logger, count func(context.Context, entity.Unit) (int, error)) (total, failed int) {
	for _, region := range regions {
		ru := unit
		ru.Region = region
		ru.Regions = regions

		var n int
		err := a.retry.Do(ctx, op, func(ctx context.Context) error {
			c, err := count(ctx, ru)
			if err != nil {
				return err
			}
			n = c
			return nil
		})
		if err != nil {
			log.Warn("scan inventory failed, using fallback", logging.Region(region), zap.String("operation", op), zap.Int("fallback", fallback), zap.Error(err))
			n = fallback
			failed++
		}
		if n < 0 {
			n = 0
		}
		total += n
	}
	return total, failed
}

// ConsolidateScanInputs moves the organization-wide inputs of the optional
// cost lines onto the default unit: egress is merged per region and the
// scan inventory summed. Other units keep their own values for reporting.
func ConsolidateScanInputs(samples []entity.UsageSample) []entity.UsageSample {
	out := make([]entity.UsageSample, len(samples))
	copy(out, samples)

	idx := -1
	for i, s := range out {
		if s.IsDefaultUnit {
			idx = i
		}
	}
	if idx < 0 || len(out) < 2 {
		return out
	}

	d := out[idx]
	egress := d.Egress
	for i, s := range out {
		if i == idx {
			continue
		}
		egress = egress.Merge(s.Egress)
		d.EgressTier = d.EgressTier.Worse(s.EgressTier)
		d.ScanBuckets += s.ScanBuckets
		d.ScanDataGB += s.ScanDataGB
		d.SnapshotInstances += s.SnapshotInstances
	}
	d.Egress = egress
	out[idx] = d
	return out
}
