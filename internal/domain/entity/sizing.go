package entity

// SizingRequirement is the scaled infrastructure needed by a unit. It is
// derived on every run and never persisted.
type SizingRequirement struct {
	UnitID        string `json:"unit_id"`
	IsDefaultUnit bool   `json:"is_default_unit"`

	TotalEventsPerDay   float64 `json:"total_events_per_day"`
	EventsPerSecondAvg  int64   `json:"events_per_second_avg"`
	EventsPerSecondPeak int64   `json:"events_per_second_peak"`

	AverageEventSizeKB float64 `json:"average_event_size_kb"`
	DailyStorageGB     float64 `json:"daily_storage_gb"`
	StorageGB          int64   `json:"storage_gb"`
	DataRateMBps       float64 `json:"data_rate_mbps"`

	ThroughputUnits  int64 `json:"throughput_units"`
	ComputeInstances int64 `json:"compute_instances"`

	// Entradas das linhas opcionais, repassadas da amostra sem escala.
	Egress            EgressVolume `json:"egress,omitempty"`
	ScanBuckets       int          `json:"scan_buckets,omitempty"`
	ScanDataGB        float64      `json:"scan_data_gb,omitempty"`
	SnapshotInstances int          `json:"snapshot_instances,omitempty"`
}
