// Package sizing converts aggregated usage into scaled infrastructure
// requirements. Everything here is pure and deterministic.
package sizing

import (
	"math"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
)

const (
	secondsPerDay   = 86400
	kbPerGB         = 1024 * 1024
	kbPerMB         = 1024
	eventsPerTUPerS = 1000
)

// ComputeSizing applies the sizing formulas to a usage sample. Every bounded
// output is clamped into its configured range, so a zero-usage unit still
// gets the minimum throughput units and compute instances.
func ComputeSizing(usage entity.UsageSample, cfg Config) entity.SizingRequirement {
	total := nonNegative(usage.PrimaryEventCountPerDay)
	if usage.IsDefaultUnit {
		total += nonNegative(usage.DirectoryEventCountPerDay)
	}

	epsAvg := ceilInt(total / secondsPerDay)
	epsPeak := ceilInt(float64(epsAvg) * cfg.PeakMultiplier)

	sizeKB := usage.AverageEventSizeKB
	if sizeKB <= 0 || math.IsNaN(sizeKB) {
		sizeKB = cfg.DefaultEventSizeKB
	}

	dailyGB := round2(total * sizeKB / kbPerGB)
	storageGB := ceilInt(dailyGB * float64(cfg.RetentionDays))
	dataRate := float64(epsPeak) * sizeKB / kbPerMB

	tu := ceilInt(math.Max(dataRate, float64(epsPeak)/eventsPerTUPerS))

	// sem capacidade configurada por instância não há sinal: fica no mínimo
	var instances int64
	if cfg.EventsPerInstancePerSecond > 0 {
		instances = ceilInt(float64(epsPeak) / cfg.EventsPerInstancePerSecond)
	}

	return entity.SizingRequirement{
		UnitID:              usage.UnitID,
		IsDefaultUnit:       usage.IsDefaultUnit,
		TotalEventsPerDay:   total,
		EventsPerSecondAvg:  epsAvg,
		EventsPerSecondPeak: epsPeak,
		AverageEventSizeKB:  sizeKB,
		DailyStorageGB:      dailyGB,
		StorageGB:           storageGB,
		DataRateMBps:        dataRate,
		ThroughputUnits:     clamp(tu, cfg.MinThroughputUnits, cfg.MaxThroughputUnits),
		ComputeInstances:    clamp(instances, cfg.MinComputeInstances, cfg.MaxComputeInstances),
		Egress:              usage.Egress,
		ScanBuckets:         usage.ScanBuckets,
		ScanDataGB:          nonNegative(usage.ScanDataGB),
		SnapshotInstances:   usage.SnapshotInstances,
	}
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ceilInt arredonda para cima, tolerando ruído de ponto flutuante
// (ex.: 30.000000000004 vira 30, não 31).
func ceilInt(v float64) int64 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if math.IsInf(v, 1) || v >= math.MaxInt64 {
		return math.MaxInt64
	}
	r := math.Round(v)
	if math.Abs(v-r) < 1e-9 {
		return int64(r)
	}
	return int64(math.Ceil(v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
