package types

// CLIArgs represents the command-line arguments. Pointer fields are nil when
// the flag was not given, so a config file value survives.
type CLIArgs struct {
	ConfigFile  string
	Profile     string
	Region      *string
	Regions     []string
	AllRegions  bool
	Units       []string
	DefaultUnit *string
	ReportName  string
	ReportType  []string
	Dir         string
	GroupBy     *string
	S3Bucket    *string

	SizingProfile    *string
	SampleWindowDays *int
	SampleSize       *int
	RetentionDays    *int

	Parallel   *bool
	MaxWorkers *int
	Offline    bool
	Refresh    bool

	IncludeEgress   bool
	IncludeDSPM     bool
	IncludeSnapshot bool

	Consolidate *bool
	LogLevel    string
	LogFormat   string
}

// ApplyTo sobrescreve no cfg os valores passados explicitamente na linha de comando.
func (a *CLIArgs) ApplyTo(cfg *Config) {
	if a.Profile != "" {
		cfg.Profile = a.Profile
	}
	if a.Region != nil {
		cfg.Region = *a.Region
	}
	if len(a.Regions) > 0 {
		cfg.Regions = a.Regions
	}
	if a.AllRegions {
		cfg.AllRegions = true
	}
	if len(a.Units) > 0 {
		cfg.Units = a.Units
	}
	if a.DefaultUnit != nil {
		cfg.DefaultUnit = *a.DefaultUnit
	}
	if a.ReportName != "" {
		cfg.ReportName = a.ReportName
	}
	if len(a.ReportType) > 0 {
		cfg.ReportType = a.ReportType
	}
	if a.Dir != "" {
		cfg.Dir = a.Dir
	}
	if a.GroupBy != nil {
		cfg.GroupBy = *a.GroupBy
	}
	if a.S3Bucket != nil {
		cfg.S3Bucket = *a.S3Bucket
	}
	if a.SizingProfile != nil {
		cfg.SizingProfile = *a.SizingProfile
	}
	if a.SampleWindowDays != nil {
		cfg.SampleWindowDays = *a.SampleWindowDays
	}
	if a.SampleSize != nil {
		cfg.SampleSize = *a.SampleSize
	}
	if a.RetentionDays != nil {
		cfg.RetentionDays = *a.RetentionDays
	}
	if a.Parallel != nil {
		cfg.Parallel = *a.Parallel
	}
	if a.MaxWorkers != nil {
		cfg.MaxWorkers = *a.MaxWorkers
	}
	if a.Offline {
		cfg.Offline = true
	}
	if a.IncludeEgress {
		cfg.IncludeEgress = true
	}
	if a.IncludeDSPM {
		cfg.IncludeDSPM = true
	}
	if a.IncludeSnapshot {
		cfg.IncludeSnapshot = true
	}
	if a.Consolidate != nil {
		cfg.ConsolidateEvents = *a.Consolidate
	}
	if a.LogLevel != "" {
		cfg.LogLevel = a.LogLevel
	}
	if a.LogFormat != "" {
		cfg.LogFormat = a.LogFormat
	}
}
