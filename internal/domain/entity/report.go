package entity

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// UnitReport is the flat per-unit record consumed by report sinks: usage,
// sizing and cost fields joined together.
type UnitReport struct {
	UnitID        string `json:"unit_id"`
	UnitName      string `json:"unit_name"`
	BusinessUnit  string `json:"business_unit"`
	Environment   string `json:"environment"`
	Region        string `json:"region"`
	IsProduction  bool   `json:"is_production"`
	IsDefaultUnit bool   `json:"is_default_unit"`

	Regions          []string `json:"regions,omitempty"`
	EgressGBPerMonth float64  `json:"egress_gb_month"`

	ResourceCount       int     `json:"resource_count"`
	TotalEventsPerDay   float64 `json:"total_events_per_day"`
	EventsPerSecondPeak int64   `json:"events_per_second_peak"`
	StorageGB           int64   `json:"storage_gb"`
	ThroughputUnits     int64   `json:"throughput_units"`
	ComputeInstances    int64   `json:"compute_instances"`

	EventStreamingCost float64 `json:"event_streaming_cost"`
	StorageCost        float64 `json:"storage_cost"`
	ComputeCost        float64 `json:"compute_cost"`
	SecretsStoreCost   float64 `json:"secrets_store_cost"`
	NetworkingCost     float64 `json:"networking_cost"`
	DataEgressCost     float64 `json:"data_egress_cost"`
	DSPMCost           float64 `json:"dspm_cost"`
	SnapshotCost       float64 `json:"snapshot_cost"`
	MonthlyCost        float64 `json:"monthly_cost"`

	EstimationTier EstimationTier `json:"estimation_tier"`
	DataComplete   bool           `json:"data_complete"`
}

// NewUnitReport junta amostra, dimensionamento e custo numa linha de relatório.
func NewUnitReport(u UsageSample, s SizingRequirement, c CostEstimate) UnitReport {
	return UnitReport{
		UnitID:              u.UnitID,
		UnitName:            u.UnitName,
		BusinessUnit:        u.BusinessUnit,
		Environment:         u.EnvironmentClass,
		Region:              u.Region,
		IsProduction:        u.IsProductionLike,
		IsDefaultUnit:       u.IsDefaultUnit,
		Regions:             u.Regions,
		EgressGBPerMonth:    u.Egress.TotalGB(),
		ResourceCount:       u.ResourceCount,
		TotalEventsPerDay:   s.TotalEventsPerDay,
		EventsPerSecondPeak: s.EventsPerSecondPeak,
		StorageGB:           s.StorageGB,
		ThroughputUnits:     s.ThroughputUnits,
		ComputeInstances:    s.ComputeInstances,
		EventStreamingCost:  c.Line(LineEventStreaming).MonthlyCost,
		StorageCost:         c.Line(LineStorage).MonthlyCost,
		ComputeCost:         c.Line(LineCompute).MonthlyCost,
		SecretsStoreCost:    c.Line(LineSecretsStore).MonthlyCost,
		NetworkingCost:      c.Line(LineNetworking).MonthlyCost,
		DataEgressCost:      c.Line(LineDataEgress).MonthlyCost,
		DSPMCost:            c.Line(LineDSPM).MonthlyCost,
		SnapshotCost:        c.Line(LineSnapshot).MonthlyCost,
		MonthlyCost:         c.TotalMonthlyCost,
		EstimationTier:      u.LowestTier(),
		DataComplete:        u.DataComplete,
	}
}

// ErrInvalidReport sinaliza uma linha que violaria o contrato dos sinks.
var ErrInvalidReport = errors.New("invalid report row")

// Validate checks the sink contract: identifiers non-empty, numbers finite.
func (r UnitReport) Validate() error {
	for name, v := range map[string]string{
		"unit_id":       r.UnitID,
		"unit_name":     r.UnitName,
		"business_unit": r.BusinessUnit,
		"environment":   r.Environment,
		"region":        r.Region,
	} {
		if v == "" {
			return fmt.Errorf("%w: empty %s (unit %q)", ErrInvalidReport, name, r.UnitID)
		}
	}
	for name, v := range map[string]float64{
		"total_events_per_day": r.TotalEventsPerDay,
		"event_streaming_cost": r.EventStreamingCost,
		"storage_cost":         r.StorageCost,
		"compute_cost":         r.ComputeCost,
		"secrets_store_cost":   r.SecretsStoreCost,
		"networking_cost":      r.NetworkingCost,
		"data_egress_cost":     r.DataEgressCost,
		"dspm_cost":            r.DSPMCost,
		"snapshot_cost":        r.SnapshotCost,
		"egress_gb_month":      r.EgressGBPerMonth,
		"monthly_cost":         r.MonthlyCost,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite (unit %s)", ErrInvalidReport, name, r.UnitID)
		}
	}
	return nil
}

// RunSummary descreve a execução como um todo, incluindo o grau de degradação.
type RunSummary struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Region      string    `json:"region"`

	UnitCount        int             `json:"unit_count"`
	TotalMonthlyCost float64         `json:"total_monthly_cost"`
	Projection       map[int]float64 `json:"projection"`

	DegradedUnits           int              `json:"degraded_units"`
	IncompleteUnits         int              `json:"incomplete_units"`
	LowestTier              EstimationTier   `json:"lowest_tier"`
	FallbackPriceDimensions []PriceDimension `json:"fallback_price_dimensions,omitempty"`
	ReducedMode             bool             `json:"reduced_mode"`

	Budgets []BudgetInfo `json:"budgets,omitempty"`
}

// Degraded reports whether the run's accuracy is reduced in any way.
func (s RunSummary) Degraded() bool {
	return s.DegradedUnits > 0 || s.IncompleteUnits > 0 || len(s.FallbackPriceDimensions) > 0 || s.ReducedMode
}

// Report é o artefato completo entregue aos sinks.
type Report struct {
	Summary    RunSummary               `json:"summary"`
	Units      []UnitReport             `json:"units"`
	GroupBy    string                   `json:"group_by"`
	Rollup     map[string]RollupSummary `json:"rollup"`
	RollupKeys []string                 `json:"rollup_order"`
}
