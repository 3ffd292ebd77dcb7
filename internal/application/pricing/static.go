package pricing

import (
	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
)

// StaticRegion is the region the compiled-in prices were taken from.
const StaticRegion = "us-east-1"

// Preços públicos de us-east-1 usados quando a API de preços falha.
// Fargate: 1 vCPU (0.04048/h) + 2 GB (0.004445/GB-h).
var staticPrices = map[entity.PriceDimension]entity.Price{
	entity.DimensionThroughputUnit:    {Amount: 0.015, Unit: entity.PerHour, Currency: "USD"},
	entity.DimensionStorageGB:         {Amount: 0.023, Unit: entity.PerGBMonth, Currency: "USD"},
	entity.DimensionComputeInstance:   {Amount: 0.04937, Unit: entity.PerHour, Currency: "USD"},
	entity.DimensionSecretsPer10K:     {Amount: 0.05, Unit: entity.Per10K, Currency: "USD"},
	entity.DimensionPrivateConnection: {Amount: 0.01, Unit: entity.PerHour, Currency: "USD"},
	entity.DimensionGateway:           {Amount: 0.045, Unit: entity.PerHour, Currency: "USD"},
}

// StaticPrice returns the compiled-in price for dim.
func StaticPrice(dim entity.PriceDimension) entity.Price {
	return staticPrices[dim]
}

// StaticTable builds a table entirely from compiled-in prices, every
// dimension flagged as fallback.
func StaticTable(region string) entity.PriceTable {
	t := entity.PriceTable{Region: region, Currency: "USD"}
	for _, dim := range entity.AllPriceDimensions() {
		apply(&t, dim, staticPrices[dim])
		t.FallbackDimensions = append(t.FallbackDimensions, dim)
	}
	return t
}
