package usage

import (
	"context"

	"go.uber.org/zap"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/logging"
)

// DirectoryVolume is the directory-wide identity event volume of a run.
type DirectoryVolume struct {
	Principals   int                   `json:"principals"`
	Rate         float64               `json:"rate_per_principal_day"`
	EventsPerDay float64               `json:"events_per_day"`
	Tier         entity.EstimationTier `json:"tier"`
}

// DirectoryVolume counts the directory principals once per run; when the
// count is unavailable the configured estimate is used.
func (a *Aggregator) DirectoryVolume(ctx context.Context) DirectoryVolume {
	principals := a.cfg.DirectoryPrincipalsEstimate
	tier := entity.TierDefault

	if a.directory != nil {
		var n int
		err := a.retry.Do(ctx, "directory:count", func(ctx context.Context) error {
			c, err := a.directory.CountPrincipals(ctx)
			if err != nil {
				return err
			}
			n = c
			return nil
		})
		if err != nil {
			a.logger.Warn("directory principal count failed, using configured estimate",
				logging.Tier(entity.TierDefault.String()),
				zap.Int("estimate", principals),
				zap.Error(err))
		} else {
			principals = n
			tier = entity.TierMeasured
		}
	}
	if principals < 0 {
		principals = 0
	}

	rate := a.cfg.DirectoryRates.Rate(principals)
	return DirectoryVolume{
		Principals:   principals,
		Rate:         rate,
		EventsPerDay: float64(principals) * rate,
		Tier:         tier,
	}
}

// AttachDirectory sets the directory volume on the default unit only.
func AttachDirectory(samples []entity.UsageSample, dv DirectoryVolume) []entity.UsageSample {
	out := make([]entity.UsageSample, len(samples))
	copy(out, samples)
	for i := range out {
		if out[i].IsDefaultUnit {
			out[i].DirectoryEventCountPerDay = dv.EventsPerDay
			out[i].DirectoryTier = dv.Tier
		} else {
			out[i].DirectoryEventCountPerDay = 0
			out[i].DirectoryTier = 0
		}
	}
	return out
}

// Consolidate sizes the central infrastructure for the whole organization:
// the default unit's primary count becomes the sum over all units, its tier
// the worst one seen and its completeness the conjunction. Other units keep
// their own counts.
func Consolidate(samples []entity.UsageSample) []entity.UsageSample {
	out := make([]entity.UsageSample, len(samples))
	copy(out, samples)

	idx := -1
	var total float64
	tier := entity.TierMeasured
	complete := true
	for i, s := range out {
		total += s.PrimaryEventCountPerDay
		tier = tier.Worse(s.EventTier)
		complete = complete && s.DataComplete
		if s.IsDefaultUnit {
			idx = i
		}
	}
	if idx < 0 || len(out) < 2 {
		return out
	}

	d := out[idx]
	d.PrimaryEventCountPerDay = total
	d.EventTier = tier
	d.DataComplete = complete
	d.Warnings = append(append([]string(nil), d.Warnings...), "primary event volume consolidated from all units")
	out[idx] = d
	return out
}
