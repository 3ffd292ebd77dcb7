package costing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
)

func testPrices() entity.PriceTable {
	return entity.PriceTable{
		Region:                  "us-east-1",
		Currency:                "USD",
		ThroughputUnitMonthly:   10.95,
		StorageGBMonthly:        0.023,
		ComputeInstanceMonthly:  36.04,
		SecretsPer10K:           0.05,
		PrivateConnectionHourly: 0.01,
		GatewayHourly:           0.045,
	}
}

func TestComputeCost_FloorScenario(t *testing.T) {
	cfg := DefaultConfig()
	sizing := entity.SizingRequirement{
		UnitID:           "111111111111",
		IsDefaultUnit:    true,
		ThroughputUnits:  2,
		ComputeInstances: 1,
		StorageGB:        0,
	}

	got := ComputeCost(sizing, testPrices(), false, cfg)

	assert.Equal(t, 21.90, got.Line(entity.LineEventStreaming).MonthlyCost)
	assert.Equal(t, 0.0, got.Line(entity.LineStorage).MonthlyCost)
	assert.Equal(t, 36.04, got.Line(entity.LineCompute).MonthlyCost)
	assert.Equal(t, 0.50, got.Line(entity.LineSecretsStore).MonthlyCost)
	// 4 endpoints * 0.01 * 730
	assert.Equal(t, 29.20, got.Line(entity.LineNetworking).MonthlyCost)
	assert.Equal(t, 87.64, got.TotalMonthlyCost)
}

func TestComputeCost_ProductionAddsGateway(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NetworkingSurcharge = 5
	sizing := entity.SizingRequirement{UnitID: "a", IsDefaultUnit: true, ThroughputUnits: 1, ComputeInstances: 1}

	nonProd := ComputeCost(sizing, testPrices(), false, cfg)
	prod := ComputeCost(sizing, testPrices(), true, cfg)

	assert.Equal(t, 34.20, nonProd.Line(entity.LineNetworking).MonthlyCost)
	// + 0.045 * 730 = 32.85
	assert.Equal(t, 67.05, prod.Line(entity.LineNetworking).MonthlyCost)
}

func TestComputeCost_Additivity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MonthlySecretOperations = 123_457
	prices := entity.PriceTable{
		ThroughputUnitMonthly:   10.951,
		StorageGBMonthly:        0.0237,
		ComputeInstanceMonthly:  36.0371,
		SecretsPer10K:           0.053,
		PrivateConnectionHourly: 0.0113,
		GatewayHourly:           0.0457,
	}

	for tu := int64(1); tu <= 20; tu += 3 {
		for storage := int64(0); storage < 5000; storage += 777 {
			sizing := entity.SizingRequirement{UnitID: "u", IsDefaultUnit: true, ThroughputUnits: tu, StorageGB: storage, ComputeInstances: tu / 2}
			got := ComputeCost(sizing, prices, tu%2 == 0, cfg)

			sum := decimal.Zero
			for _, li := range got.LineItems {
				require.Equal(t, li.MonthlyCost, decimal.NewFromFloat(li.MonthlyCost).Round(2).InexactFloat64(), "line %s not rounded", li.Name)
				sum = sum.Add(decimal.NewFromFloat(li.MonthlyCost))
			}
			require.Equal(t, sum.InexactFloat64(), got.TotalMonthlyCost)
			require.Len(t, got.LineItems, 5)
		}
	}
}

func TestComputeCost_NonDefaultUnitIsZero(t *testing.T) {
	sizing := entity.SizingRequirement{UnitID: "222222222222", IsDefaultUnit: false, ThroughputUnits: 10, StorageGB: 500, ComputeInstances: 4}

	got := ComputeCost(sizing, testPrices(), true, DefaultConfig())

	assert.Equal(t, 0.0, got.Line(entity.LineEventStreaming).MonthlyCost)
	assert.Equal(t, 0.0, got.Line(entity.LineStorage).MonthlyCost)
	assert.Equal(t, 0.0, got.Line(entity.LineCompute).MonthlyCost)
	assert.Equal(t, 0.0, got.TotalMonthlyCost)
	assert.Len(t, got.LineItems, len(entity.LineItemNames()))
	assert.Equal(t, 0.0, got.MonthlyProjection[12])
}

func withExtras() Config {
	cfg := DefaultConfig()
	cfg.IncludeEgress = true
	cfg.IncludeDSPM = true
	cfg.IncludeSnapshot = true
	return cfg
}

func TestComputeCost_OptionalLinesOffByDefault(t *testing.T) {
	sizing := entity.SizingRequirement{
		UnitID:            "u",
		IsDefaultUnit:     true,
		ThroughputUnits:   2,
		ComputeInstances:  1,
		Egress:            entity.EgressVolume{{Region: "us-east-1", GBPerMonth: 50}},
		ScanBuckets:       10,
		ScanDataGB:        500,
		SnapshotInstances: 14,
	}

	got := ComputeCost(sizing, testPrices(), false, DefaultConfig())

	assert.Len(t, got.LineItems, 5)
	assert.Equal(t, 87.64, got.TotalMonthlyCost)
}

func TestComputeCost_EgressUsesRegionalRates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IncludeEgress = true
	sizing := entity.SizingRequirement{
		UnitID:        "u",
		IsDefaultUnit: true,
		Egress: entity.EgressVolume{
			{Region: "us-east-1", GBPerMonth: 5},
			{Region: "ap-south-1", GBPerMonth: 2},
			{Region: "sa-east-1", GBPerMonth: 1},
		},
	}

	got := ComputeCost(sizing, testPrices(), false, cfg)

	egress := got.Line(entity.LineDataEgress)
	// 5*0.09 + 2*0.11 + 1*0.12
	assert.Equal(t, 0.79, egress.MonthlyCost)
	assert.Equal(t, 8.0, egress.Quantity)
	assert.Equal(t, 0.0988, egress.UnitPrice)
	assert.Len(t, got.LineItems, 6)
}

func TestEgressRates_Rate(t *testing.T) {
	rates := DefaultConfig().Egress

	assert.Equal(t, 0.09, rates.Rate("us-east-1"))
	assert.Equal(t, 0.09, rates.Rate("eu-central-1"))
	assert.Equal(t, 0.11, rates.Rate("ap-southeast-2"))
	assert.Equal(t, 0.11, rates.Rate("me-south-1"))
	assert.Equal(t, 0.12, rates.Rate("sa-east-1"))
	assert.Equal(t, 0.09, rates.Rate(""))
}

func TestComputeCost_DSPMAndSnapshot(t *testing.T) {
	sizing := entity.SizingRequirement{UnitID: "u", IsDefaultUnit: true, ScanBuckets: 10, ScanDataGB: 500, SnapshotInstances: 14}

	got := ComputeCost(sizing, testPrices(), false, withExtras())

	// 24h * (0.34 + 0.045) + 500GB * 0.045
	dspm := got.Line(entity.LineDSPM)
	assert.Equal(t, 31.74, dspm.MonthlyCost)
	assert.Equal(t, 10.0, dspm.Quantity)

	// 14 * 0.5h * 0.085 * 4 + 14 * 100GB * 0.05 / 30
	snapshot := got.Line(entity.LineSnapshot)
	assert.Equal(t, 4.71, snapshot.MonthlyCost)
	assert.Equal(t, 14.0, snapshot.Quantity)
}

func TestComputeCost_ScanLinesZeroWithoutInventory(t *testing.T) {
	got := ComputeCost(entity.SizingRequirement{UnitID: "u", IsDefaultUnit: true}, testPrices(), false, withExtras())

	assert.Equal(t, 0.0, got.Line(entity.LineDSPM).MonthlyCost)
	assert.Equal(t, 0.0, got.Line(entity.LineSnapshot).MonthlyCost)
	assert.Equal(t, 0.0, got.Line(entity.LineDataEgress).MonthlyCost)
	assert.Equal(t, []string{
		entity.LineEventStreaming, entity.LineStorage, entity.LineCompute, entity.LineSecretsStore,
		entity.LineNetworking, entity.LineDataEgress, entity.LineDSPM, entity.LineSnapshot,
	}, lineNames(got))
}

func TestComputeCost_AdditivityWithOptionalLines(t *testing.T) {
	cfg := withExtras()
	for n := 0; n < 40; n += 7 {
		sizing := entity.SizingRequirement{
			UnitID:            "u",
			IsDefaultUnit:     true,
			ThroughputUnits:   int64(n%5 + 1),
			StorageGB:         int64(n * 113),
			ComputeInstances:  1,
			Egress:            entity.EgressVolume{{Region: "us-west-2", GBPerMonth: float64(n) * 1.37}, {Region: "ap-northeast-1", GBPerMonth: 3.3}},
			ScanBuckets:       n,
			ScanDataGB:        float64(n) * 41.7,
			SnapshotInstances: n / 3,
		}
		got := ComputeCost(sizing, testPrices(), n%2 == 0, cfg)

		sum := decimal.Zero
		for _, li := range got.LineItems {
			sum = sum.Add(decimal.NewFromFloat(li.MonthlyCost))
		}
		require.Equal(t, sum.InexactFloat64(), got.TotalMonthlyCost)
		require.Len(t, got.LineItems, 8)
	}
}

func TestComputeCost_NonDefaultUnitKeepsOptionalShape(t *testing.T) {
	sizing := entity.SizingRequirement{UnitID: "222222222222", ScanBuckets: 5, SnapshotInstances: 3}

	got := ComputeCost(sizing, testPrices(), true, withExtras())

	assert.Len(t, got.LineItems, 8)
	assert.Equal(t, 0.0, got.TotalMonthlyCost)
	assert.Equal(t, 0.0, got.Line(entity.LineDSPM).MonthlyCost)
}

func lineNames(c entity.CostEstimate) []string {
	names := make([]string, 0, len(c.LineItems))
	for _, li := range c.LineItems {
		names = append(names, li.Name)
	}
	return names
}

func TestComputeCost_SecretBlocksRoundUp(t *testing.T) {
	tests := []struct {
		ops  int64
		want float64
	}{
		{ops: 0, want: 0},
		{ops: 1, want: 0.05},
		{ops: 10_000, want: 0.05},
		{ops: 10_001, want: 0.10},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.MonthlySecretOperations = tt.ops
		got := ComputeCost(entity.SizingRequirement{UnitID: "u", IsDefaultUnit: true}, testPrices(), false, cfg)
		assert.Equal(t, tt.want, got.Line(entity.LineSecretsStore).MonthlyCost, "ops=%d", tt.ops)
	}
}

func TestProject(t *testing.T) {
	got := Project(700)

	assert.Equal(t, map[int]float64{1: 700, 3: 2100, 6: 4200, 12: 8400}, got)
}

func TestSumRounded(t *testing.T) {
	assert.Equal(t, 0.3, SumRounded(0.1, 0.2))
	assert.Equal(t, 0.0, SumRounded())
}
