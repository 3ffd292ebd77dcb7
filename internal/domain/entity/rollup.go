package entity

// RollupSummary agrega estimativas por uma dimensão organizacional.
type RollupSummary struct {
	GroupKey          string  `json:"group_key"`
	UnitCount         int     `json:"unit_count"`
	ResourceCount     int     `json:"resource_count"`
	TotalEventsPerDay float64 `json:"total_events_per_day"`
	StorageGB         int64   `json:"storage_gb"`
	TotalMonthlyCost  float64 `json:"total_monthly_cost"`
	ProductionCost    float64 `json:"production_cost"`
	NonProductionCost float64 `json:"non_production_cost"`
	PercentOfTotal    float64 `json:"percent_of_total"`
}
