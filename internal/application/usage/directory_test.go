package usage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
)

type directoryRepo struct {
	*baseRepo
	*directorySource
}

func TestDirectoryVolume_RateBuckets(t *testing.T) {
	tests := []struct {
		principals int
		rate       float64
	}{
		{principals: 500, rate: 2.2},
		{principals: 999, rate: 2.2},
		{principals: 1_000, rate: 1.8},
		{principals: 9_999, rate: 1.8},
		{principals: 10_000, rate: 1.5},
	}
	for _, tt := range tests {
		agg := newTestAggregator(&directoryRepo{&baseRepo{}, &directorySource{principals: tt.principals}}, testConfig())

		dv := agg.DirectoryVolume(context.Background())

		assert.Equal(t, tt.principals, dv.Principals)
		assert.Equal(t, tt.rate, dv.Rate, "principals=%d", tt.principals)
		assert.InDelta(t, float64(tt.principals)*tt.rate, dv.EventsPerDay, 1e-9)
		assert.Equal(t, entity.TierMeasured, dv.Tier)
	}
}

func TestDirectoryVolume_FallsBackToEstimate(t *testing.T) {
	cfg := testConfig()
	cfg.DirectoryPrincipalsEstimate = 2_000

	withError := newTestAggregator(&directoryRepo{&baseRepo{}, &directorySource{err: errors.New("AccessDenied")}}, cfg)
	withoutSource := newTestAggregator(&baseRepo{}, cfg)

	for _, agg := range []*Aggregator{withError, withoutSource} {
		dv := agg.DirectoryVolume(context.Background())
		assert.Equal(t, 2_000, dv.Principals)
		assert.InDelta(t, 3_600.0, dv.EventsPerDay, 1e-9)
		assert.Equal(t, entity.TierDefault, dv.Tier)
	}
}

func TestAttachDirectory_OnlyDefaultUnit(t *testing.T) {
	samples := []entity.UsageSample{
		{UnitID: "1", IsDefaultUnit: false, DirectoryEventCountPerDay: 99},
		{UnitID: "2", IsDefaultUnit: true},
	}

	got := AttachDirectory(samples, DirectoryVolume{EventsPerDay: 1100, Tier: entity.TierMeasured})

	assert.Equal(t, 0.0, got[0].DirectoryEventCountPerDay)
	assert.Equal(t, 1100.0, got[1].DirectoryEventCountPerDay)
	assert.Equal(t, entity.TierMeasured, got[1].DirectoryTier)
	assert.Equal(t, 99.0, samples[0].DirectoryEventCountPerDay, "input is not mutated")
}

func TestConsolidate(t *testing.T) {
	samples := []entity.UsageSample{
		{UnitID: "1", PrimaryEventCountPerDay: 100, EventTier: entity.TierMeasured, DataComplete: true},
		{UnitID: "2", PrimaryEventCountPerDay: 50, EventTier: entity.TierMeasured, DataComplete: true, IsDefaultUnit: true},
		{UnitID: "3", PrimaryEventCountPerDay: 25, EventTier: entity.TierHeuristic, DataComplete: false},
	}

	got := Consolidate(samples)

	require.Len(t, got, 3)
	assert.Equal(t, 175.0, got[1].PrimaryEventCountPerDay)
	assert.Equal(t, entity.TierHeuristic, got[1].EventTier)
	assert.False(t, got[1].DataComplete)
	assert.NotEmpty(t, got[1].Warnings)
	assert.Equal(t, 100.0, got[0].PrimaryEventCountPerDay)
	assert.Equal(t, 50.0, samples[1].PrimaryEventCountPerDay)
}

func TestConsolidate_NoDefaultUnit(t *testing.T) {
	samples := []entity.UsageSample{{UnitID: "1", PrimaryEventCountPerDay: 10}, {UnitID: "2", PrimaryEventCountPerDay: 20}}

	assert.Equal(t, samples, Consolidate(samples))
}

func TestConsolidateScanInputs(t *testing.T) {
	samples := []entity.UsageSample{
		{UnitID: "1", Egress: entity.EgressVolume{{Region: "us-east-1", GBPerMonth: 2}, {Region: "sa-east-1", GBPerMonth: 1}}, EgressTier: entity.TierDerived, ScanBuckets: 3, ScanDataGB: 150, SnapshotInstances: 2},
		{UnitID: "2", IsDefaultUnit: true, Egress: entity.EgressVolume{{Region: "us-east-1", GBPerMonth: 5}}, EgressTier: entity.TierMeasured, ScanBuckets: 1, ScanDataGB: 50},
		{UnitID: "3", Egress: entity.EgressVolume{{Region: "ap-south-1", GBPerMonth: 4}}, EgressTier: entity.TierMeasured, SnapshotInstances: 5},
	}

	got := ConsolidateScanInputs(samples)

	d := got[1]
	assert.Equal(t, entity.EgressVolume{{Region: "us-east-1", GBPerMonth: 7}, {Region: "sa-east-1", GBPerMonth: 1}, {Region: "ap-south-1", GBPerMonth: 4}}, d.Egress)
	assert.Equal(t, entity.TierDerived, d.EgressTier)
	assert.Equal(t, 4, d.ScanBuckets)
	assert.Equal(t, 200.0, d.ScanDataGB)
	assert.Equal(t, 7, d.SnapshotInstances)
	assert.Equal(t, 3, got[0].ScanBuckets, "other units keep their own values")
	assert.Equal(t, entity.EgressVolume{{Region: "us-east-1", GBPerMonth: 5}}, samples[1].Egress, "input is not mutated")
}

func TestConsolidateScanInputs_SingleUnit(t *testing.T) {
	samples := []entity.UsageSample{{UnitID: "1", IsDefaultUnit: true, ScanBuckets: 2}}

	assert.Equal(t, samples, ConsolidateScanInputs(samples))
}
