package entity

import "time"

// PriceDimension identifica uma dimensão de preço consultada ao provedor.
type PriceDimension string

const (
	DimensionThroughputUnit    PriceDimension = "throughput_unit"
	DimensionStorageGB         PriceDimension = "storage_gb"
	DimensionComputeInstance   PriceDimension = "compute_instance"
	DimensionSecretsPer10K     PriceDimension = "secrets_per_10k"
	DimensionPrivateConnection PriceDimension = "private_connection"
	DimensionGateway           PriceDimension = "gateway"
)

// AllPriceDimensions lists every dimension the resolver looks up.
func AllPriceDimensions() []PriceDimension {
	return []PriceDimension{
		DimensionThroughputUnit,
		DimensionStorageGB,
		DimensionComputeInstance,
		DimensionSecretsPer10K,
		DimensionPrivateConnection,
		DimensionGateway,
	}
}

// PriceUnit descreve a base de cobrança de um preço.
type PriceUnit string

const (
	PerHour    PriceUnit = "Hrs"
	PerGBMonth PriceUnit = "GB-Mo"
	Per10K     PriceUnit = "10K-Requests"
)

// Price é um preço unitário devolvido pela API de preços.
type Price struct {
	Amount   float64   `json:"amount"`
	Unit     PriceUnit `json:"unit"`
	Currency string    `json:"currency"`
}

// PriceTable holds unit prices for one region, normalized so the cost model
// never deals with hourly-vs-monthly conversion for the scaled resources.
type PriceTable struct {
	Region   string `json:"region"`
	Currency string `json:"currency"`

	ThroughputUnitMonthly   float64 `json:"throughput_unit_monthly"`
	StorageGBMonthly        float64 `json:"storage_gb_monthly"`
	ComputeInstanceMonthly  float64 `json:"compute_instance_monthly"`
	SecretsPer10K           float64 `json:"secrets_per_10k"`
	PrivateConnectionHourly float64 `json:"private_connection_hourly"`
	GatewayHourly           float64 `json:"gateway_hourly"`

	// FallbackDimensions lista as dimensões que vieram da tabela estática.
	FallbackDimensions []PriceDimension `json:"fallback_dimensions,omitempty"`
	ResolvedAt         time.Time        `json:"resolved_at"`
}

// IsFallback reports whether dim was filled from static defaults.
func (p PriceTable) IsFallback(dim PriceDimension) bool {
	for _, d := range p.FallbackDimensions {
		if d == dim {
			return true
		}
	}
	return false
}

// FullyStatic reports whether no dimension came from the live API.
func (p PriceTable) FullyStatic() bool {
	return len(p.FallbackDimensions) >= len(AllPriceDimensions())
}
