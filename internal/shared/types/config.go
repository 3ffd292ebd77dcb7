package types

import (
	"fmt"
	"strings"
)

// EnvironmentCategory is the file representation of one environment class.
type EnvironmentCategory struct {
	Name       string   `json:"name" yaml:"name" toml:"name"`
	Priority   int      `json:"priority" yaml:"priority" toml:"priority"`
	Patterns   []string `json:"patterns" yaml:"patterns" toml:"patterns"`
	Production bool     `json:"production" yaml:"production" toml:"production"`
}

// Config represents the application configuration that can be loaded from a
// file. Zero values in sizing bounds mean "use the sizing profile default".
type Config struct {
	// AWS
	Profile     string   `json:"profile" yaml:"profile" toml:"profile"`
	Region      string   `json:"region" yaml:"region" toml:"region"`
	Units       []string `json:"units" yaml:"units" toml:"units"`
	DefaultUnit string   `json:"default_unit" yaml:"default_unit" toml:"default_unit"`
	RoleNames   []string `json:"role_names" yaml:"role_names" toml:"role_names"`
	Regions     []string `json:"regions" yaml:"regions" toml:"regions"`
	AllRegions  bool     `json:"all_regions" yaml:"all_regions" toml:"all_regions"`

	// Sizing
	SizingProfile              string  `json:"sizing_profile" yaml:"sizing_profile" toml:"sizing_profile"`
	RetentionDays              int     `json:"retention_days" yaml:"retention_days" toml:"retention_days"`
	PeakMultiplier             float64 `json:"peak_multiplier" yaml:"peak_multiplier" toml:"peak_multiplier"`
	DefaultEventSizeKB         float64 `json:"default_event_size_kb" yaml:"default_event_size_kb" toml:"default_event_size_kb"`
	MinThroughputUnits         int64   `json:"min_throughput_units" yaml:"min_throughput_units" toml:"min_throughput_units"`
	MaxThroughputUnits         int64   `json:"max_throughput_units" yaml:"max_throughput_units" toml:"max_throughput_units"`
	MinComputeInstances        int64   `json:"min_compute_instances" yaml:"min_compute_instances" toml:"min_compute_instances"`
	MaxComputeInstances        int64   `json:"max_compute_instances" yaml:"max_compute_instances" toml:"max_compute_instances"`
	EventsPerInstancePerSecond float64 `json:"events_per_instance_per_second" yaml:"events_per_instance_per_second" toml:"events_per_instance_per_second"`

	// Cost
	PrivateConnectionCount  int64   `json:"private_connection_count" yaml:"private_connection_count" toml:"private_connection_count"`
	NetworkingSurcharge     float64 `json:"networking_surcharge" yaml:"networking_surcharge" toml:"networking_surcharge"`
	MonthlySecretOperations int64   `json:"monthly_secret_operations" yaml:"monthly_secret_operations" toml:"monthly_secret_operations"`

	// Optional cost lines
	IncludeEgress             bool    `json:"include_egress" yaml:"include_egress" toml:"include_egress"`
	IncludeDSPM               bool    `json:"include_dspm" yaml:"include_dspm" toml:"include_dspm"`
	IncludeSnapshot           bool    `json:"include_snapshot" yaml:"include_snapshot" toml:"include_snapshot"`
	DefaultEgressGBMonth      float64 `json:"default_egress_gb_month" yaml:"default_egress_gb_month" toml:"default_egress_gb_month"`
	DSPMAverageBucketGB       float64 `json:"dspm_average_bucket_gb" yaml:"dspm_average_bucket_gb" toml:"dspm_average_bucket_gb"`
	DSPMFallbackBuckets       int     `json:"dspm_fallback_buckets" yaml:"dspm_fallback_buckets" toml:"dspm_fallback_buckets"`
	SnapshotFallbackInstances int     `json:"snapshot_fallback_instances" yaml:"snapshot_fallback_instances" toml:"snapshot_fallback_instances"`

	// Pricing
	PricingCacheTTLHours int     `json:"pricing_cache_ttl_hours" yaml:"pricing_cache_ttl_hours" toml:"pricing_cache_ttl_hours"`
	Offline              bool    `json:"offline" yaml:"offline" toml:"offline"`
	ComputeVCPU          float64 `json:"compute_vcpu" yaml:"compute_vcpu" toml:"compute_vcpu"`
	ComputeMemoryGB      float64 `json:"compute_memory_gb" yaml:"compute_memory_gb" toml:"compute_memory_gb"`

	// Usage
	SampleWindowDays                int      `json:"sample_window_days" yaml:"sample_window_days" toml:"sample_window_days"`
	SampleSize                      int      `json:"sample_size" yaml:"sample_size" toml:"sample_size"`
	EventLogGroup                   string   `json:"event_log_group" yaml:"event_log_group" toml:"event_log_group"`
	PageRecordCap                   int      `json:"page_record_cap" yaml:"page_record_cap" toml:"page_record_cap"`
	StartChunkHours                 float64  `json:"start_chunk_hours" yaml:"start_chunk_hours" toml:"start_chunk_hours"`
	MinChunkHours                   float64  `json:"min_chunk_hours" yaml:"min_chunk_hours" toml:"min_chunk_hours"`
	MaxChunkHours                   float64  `json:"max_chunk_hours" yaml:"max_chunk_hours" toml:"max_chunk_hours"`
	GrowAfterPages                  int      `json:"grow_after_pages" yaml:"grow_after_pages" toml:"grow_after_pages"`
	GrowFactor                      float64  `json:"grow_factor" yaml:"grow_factor" toml:"grow_factor"`
	MaxPagesAtFloor                 int      `json:"max_pages_at_floor" yaml:"max_pages_at_floor" toml:"max_pages_at_floor"`
	DerivedEventRatio               float64  `json:"derived_event_ratio" yaml:"derived_event_ratio" toml:"derived_event_ratio"`
	HeuristicEventsPerResourceMonth float64  `json:"heuristic_events_per_resource_month" yaml:"heuristic_events_per_resource_month" toml:"heuristic_events_per_resource_month"`
	HeuristicMinEventsMonth         float64  `json:"heuristic_min_events_month" yaml:"heuristic_min_events_month" toml:"heuristic_min_events_month"`
	DefaultEventsMonth              float64  `json:"default_events_month" yaml:"default_events_month" toml:"default_events_month"`
	DisableTiers                    []string `json:"disable_tiers" yaml:"disable_tiers" toml:"disable_tiers"`
	ConsolidateEvents               bool     `json:"consolidate_events" yaml:"consolidate_events" toml:"consolidate_events"`

	// Directory
	DirectoryPrincipalsEstimate int     `json:"directory_principals_estimate" yaml:"directory_principals_estimate" toml:"directory_principals_estimate"`
	DirectoryRateSmall          float64 `json:"directory_rate_small" yaml:"directory_rate_small" toml:"directory_rate_small"`
	DirectoryRateMedium         float64 `json:"directory_rate_medium" yaml:"directory_rate_medium" toml:"directory_rate_medium"`
	DirectoryRateLarge          float64 `json:"directory_rate_large" yaml:"directory_rate_large" toml:"directory_rate_large"`

	// Classification
	DefaultBusinessUnit   string                `json:"default_business_unit" yaml:"default_business_unit" toml:"default_business_unit"`
	DefaultEnvironment    string                `json:"default_environment" yaml:"default_environment" toml:"default_environment"`
	BusinessUnitTagKeys   []string              `json:"business_unit_tag_keys" yaml:"business_unit_tag_keys" toml:"business_unit_tag_keys"`
	EnvironmentTagKeys    []string              `json:"environment_tag_keys" yaml:"environment_tag_keys" toml:"environment_tag_keys"`
	EnvironmentCategories []EnvironmentCategory `json:"environment_categories" yaml:"environment_categories" toml:"environment_categories"`

	// Concurrency and retry
	Parallel           bool    `json:"parallel" yaml:"parallel" toml:"parallel"`
	MaxWorkers         int     `json:"max_workers" yaml:"max_workers" toml:"max_workers"`
	ThrottleFactor     float64 `json:"throttle_factor" yaml:"throttle_factor" toml:"throttle_factor"`
	TaskTimeoutSeconds int     `json:"task_timeout_seconds" yaml:"task_timeout_seconds" toml:"task_timeout_seconds"`
	RetryMaxAttempts   int     `json:"retry_max_attempts" yaml:"retry_max_attempts" toml:"retry_max_attempts"`
	RetryBaseDelayMs   int     `json:"retry_base_delay_ms" yaml:"retry_base_delay_ms" toml:"retry_base_delay_ms"`
	RetryMaxDelayMs    int     `json:"retry_max_delay_ms" yaml:"retry_max_delay_ms" toml:"retry_max_delay_ms"`
	RetryJitter        float64 `json:"retry_jitter" yaml:"retry_jitter" toml:"retry_jitter"`

	// Output
	ReportName string   `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType []string `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir        string   `json:"dir" yaml:"dir" toml:"dir"`
	GroupBy    string   `json:"group_by" yaml:"group_by" toml:"group_by"`
	S3Bucket   string   `json:"s3_bucket" yaml:"s3_bucket" toml:"s3_bucket"`
	S3Prefix   string   `json:"s3_prefix" yaml:"s3_prefix" toml:"s3_prefix"`

	// Logging
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`
}

// DefaultConfig devolve os valores padrão documentados no README.
func DefaultConfig() Config {
	return Config{
		Region:    "us-east-1",
		RoleNames: []string{"OrganizationAccountAccessRole", "AWSControlTowerExecution", "OrganizationAccountAccess"},

		SizingProfile:      "standard",
		RetentionDays:      30,
		PeakMultiplier:     3,
		DefaultEventSizeKB: 1.5,

		PrivateConnectionCount:  4,
		MonthlySecretOperations: 100_000,

		DefaultEgressGBMonth:      5,
		DSPMAverageBucketGB:       50,
		DSPMFallbackBuckets:       10,
		SnapshotFallbackInstances: 14,

		PricingCacheTTLHours: 24,
		ComputeVCPU:          1,
		ComputeMemoryGB:      2,

		SampleWindowDays:                7,
		SampleSize:                      100,
		EventLogGroup:                   "aws-cloudtrail-logs",
		PageRecordCap:                   10_000,
		StartChunkHours:                 24,
		MinChunkHours:                   1,
		MaxChunkHours:                   72,
		GrowAfterPages:                  3,
		GrowFactor:                      1.5,
		MaxPagesAtFloor:                 20,
		DerivedEventRatio:               0.15,
		HeuristicEventsPerResourceMonth: 5_000,
		HeuristicMinEventsMonth:         100_000,
		DefaultEventsMonth:              1_000_000,

		DirectoryPrincipalsEstimate: 500,
		DirectoryRateSmall:          2.2,
		DirectoryRateMedium:         1.8,
		DirectoryRateLarge:          1.5,

		DefaultBusinessUnit: "Unassigned",
		DefaultEnvironment:  "Unclassified",

		MaxWorkers:         8,
		ThrottleFactor:     0.5,
		TaskTimeoutSeconds: 300,
		RetryMaxAttempts:   3,
		RetryBaseDelayMs:   500,
		RetryMaxDelayMs:    10_000,
		RetryJitter:        0.2,

		ReportName: "falcon-cost-estimate",
		ReportType: []string{"csv"},
		GroupBy:    "business_unit",
		S3Prefix:   "falcon-cost",

		LogLevel:  "info",
		LogFormat: "console",
	}
}

// Validate rejects values that would make the run meaningless.
func (c Config) Validate() error {
	var problems []string
	if c.Region == "" {
		problems = append(problems, "region is required")
	}
	for _, r := range c.Regions {
		if strings.TrimSpace(r) == "" {
			problems = append(problems, "regions cannot contain empty names")
			break
		}
	}
	if c.SampleWindowDays <= 0 {
		problems = append(problems, "sample_window_days must be positive")
	}
	if c.SampleSize < 0 {
		problems = append(problems, "sample_size cannot be negative")
	}
	if c.PageRecordCap <= 0 {
		problems = append(problems, "page_record_cap must be positive")
	}
	if c.MinChunkHours <= 0 || c.MaxChunkHours < c.MinChunkHours {
		problems = append(problems, "chunk bounds must satisfy 0 < min_chunk_hours <= max_chunk_hours")
	}
	if c.GrowFactor < 1 {
		problems = append(problems, "grow_factor must be at least 1")
	}
	if c.ThrottleFactor <= 0 || c.ThrottleFactor > 1 {
		problems = append(problems, "throttle_factor must be in (0, 1]")
	}
	if c.MaxWorkers <= 0 {
		problems = append(problems, "max_workers must be positive")
	}
	if c.DefaultEgressGBMonth < 0 || c.DSPMAverageBucketGB < 0 {
		problems = append(problems, "default_egress_gb_month and dspm_average_bucket_gb cannot be negative")
	}
	if c.DSPMFallbackBuckets < 0 || c.SnapshotFallbackInstances < 0 {
		problems = append(problems, "dspm_fallback_buckets and snapshot_fallback_instances cannot be negative")
	}
	if c.PricingCacheTTLHours < 0 {
		problems = append(problems, "pricing_cache_ttl_hours cannot be negative")
	}
	for _, rt := range c.ReportType {
		switch strings.ToLower(rt) {
		case "csv", "json", "pdf":
		default:
			problems = append(problems, fmt.Sprintf("unsupported report type %q", rt))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
