package usage

import (
	"fmt"
	"strings"
	"time"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/types"
)

// DaysPerMonth converte constantes mensais em taxas diárias.
const DaysPerMonth = 30

// DirectoryRates are per-principal daily event rates by directory size.
// They are calibration inputs, not validated telemetry.
type DirectoryRates struct {
	SmallBelow  int
	MediumBelow int
	Small       float64
	Medium      float64
	Large       float64
}

// Rate returns the daily rate for a directory with n principals.
func (r DirectoryRates) Rate(n int) float64 {
	switch {
	case n < r.SmallBelow:
		return r.Small
	case n < r.MediumBelow:
		return r.Medium
	}
	return r.Large
}

// Config is the immutable aggregator configuration, built once per run.
type Config struct {
	DefaultRegion string
	AllRegions    bool
	WindowDays    int
	SampleSize    int

	PageRecordCap   int
	StartChunk      time.Duration
	MinChunk        time.Duration
	MaxChunk        time.Duration
	GrowAfterPages  int
	GrowFactor      float64
	MaxPagesAtFloor int

	DerivedEventRatio               float64
	HeuristicEventsPerResourceMonth float64
	HeuristicMinEventsMonth         float64
	DefaultEventsMonth              float64
	DefaultEventSizeKB              float64

	DisabledTiers map[entity.EstimationTier]bool

	DirectoryPrincipalsEstimate int
	DirectoryRates              DirectoryRates

	// DefaultEgressGBMonth acompanha o volume default de eventos.
	DefaultEgressGBMonth float64

	IncludeDSPM               bool
	IncludeSnapshot           bool
	DSPMAverageBucketGB       float64
	DSPMFallbackBuckets       int
	SnapshotFallbackInstances int
}

// DefaultConfig espelha types.DefaultConfig.
func DefaultConfig() Config {
	cfg, _ := ConfigFrom(types.DefaultConfig())
	return cfg
}

// ConfigFrom converts the file/flag configuration into aggregator settings.
func ConfigFrom(c types.Config) (Config, error) {
	disabled := make(map[entity.EstimationTier]bool)
	for _, name := range c.DisableTiers {
		tier, err := entity.ParseEstimationTier(strings.ToLower(strings.TrimSpace(name)))
		if err != nil {
			return Config{}, err
		}
		if tier == entity.TierDefault {
			return Config{}, fmt.Errorf("the default tier cannot be disabled")
		}
		disabled[tier] = true
	}

	return Config{
		DefaultRegion:                   c.Region,
		AllRegions:                      c.AllRegions,
		WindowDays:                      c.SampleWindowDays,
		SampleSize:                      c.SampleSize,
		PageRecordCap:                   c.PageRecordCap,
		StartChunk:                      hours(c.StartChunkHours),
		MinChunk:                        hours(c.MinChunkHours),
		MaxChunk:                        hours(c.MaxChunkHours),
		GrowAfterPages:                  c.GrowAfterPages,
		GrowFactor:                      c.GrowFactor,
		MaxPagesAtFloor:                 c.MaxPagesAtFloor,
		DerivedEventRatio:               c.DerivedEventRatio,
		HeuristicEventsPerResourceMonth: c.HeuristicEventsPerResourceMonth,
		HeuristicMinEventsMonth:         c.HeuristicMinEventsMonth,
		DefaultEventsMonth:              c.DefaultEventsMonth,
		DefaultEventSizeKB:              c.DefaultEventSizeKB,
		DisabledTiers:                   disabled,
		DirectoryPrincipalsEstimate:     c.DirectoryPrincipalsEstimate,
		DirectoryRates: DirectoryRates{
			SmallBelow:  1_000,
			MediumBelow: 10_000,
			Small:       c.DirectoryRateSmall,
			Medium:      c.DirectoryRateMedium,
			Large:       c.DirectoryRateLarge,
		},
		DefaultEgressGBMonth:      c.DefaultEgressGBMonth,
		IncludeDSPM:               c.IncludeDSPM,
		IncludeSnapshot:           c.IncludeSnapshot,
		DSPMAverageBucketGB:       c.DSPMAverageBucketGB,
		DSPMFallbackBuckets:       c.DSPMFallbackBuckets,
		SnapshotFallbackInstances: c.SnapshotFallbackInstances,
	}, nil
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
