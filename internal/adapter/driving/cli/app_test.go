package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/falcon-cost-estimator-go/internal/shared/types"
)

func parse(t *testing.T, argv ...string) *types.CLIArgs {
	t.Helper()
	app := NewCLIApp("1.0.0")
	require.NoError(t, app.rootCmd.ParseFlags(argv))
	args, err := app.parseArgs()
	require.NoError(t, err)
	return args
}

func TestParseArgs_Defaults(t *testing.T) {
	args := parse(t)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, cwd, args.Dir)
	assert.Nil(t, args.Region)
	assert.Nil(t, args.Parallel)
	assert.Nil(t, args.SampleWindowDays)
	assert.Nil(t, args.ReportType, "the flag default must not override the config file")
	assert.False(t, args.Offline)
}

func TestParseArgs_Overrides(t *testing.T) {
	args := parse(t,
		"-p", "org-admin",
		"-r", "sa-east-1",
		"-u", "111111111111,dev-payments",
		"--default-unit", "111111111111",
		"-y", "csv,pdf",
		"-g", "environment",
		"--sample-window-days", "3",
		"--parallel",
		"--consolidate=false",
		"--offline",
		"--refresh-prices",
		"--log-format", "json",
	)

	assert.Equal(t, "org-admin", args.Profile)
	require.NotNil(t, args.Region)
	assert.Equal(t, "sa-east-1", *args.Region)
	assert.Equal(t, []string{"111111111111", "dev-payments"}, args.Units)
	assert.Equal(t, "111111111111", *args.DefaultUnit)
	assert.Equal(t, []string{"csv", "pdf"}, args.ReportType)
	assert.Equal(t, "environment", *args.GroupBy)
	assert.Equal(t, 3, *args.SampleWindowDays)
	assert.True(t, *args.Parallel)
	require.NotNil(t, args.Consolidate)
	assert.False(t, *args.Consolidate, "an explicit false is still an override")
	assert.True(t, args.Offline)
	assert.True(t, args.Refresh)
	assert.Equal(t, "json", args.LogFormat)
}

func TestParseArgs_RegionsAndOptionalLines(t *testing.T) {
	args := parse(t)
	assert.Empty(t, args.Regions)
	assert.False(t, args.AllRegions)
	assert.False(t, args.IncludeDSPM)

	args = parse(t,
		"--regions", "us-east-1,sa-east-1",
		"--all-regions",
		"--include-egress",
		"--include-dspm",
		"--include-snapshot",
	)

	assert.Equal(t, []string{"us-east-1", "sa-east-1"}, args.Regions)
	assert.True(t, args.AllRegions)
	assert.True(t, args.IncludeEgress)
	assert.True(t, args.IncludeDSPM)
	assert.True(t, args.IncludeSnapshot)
}

func TestParseArgs_RelativeDir(t *testing.T) {
	args := parse(t, "-d", "reports")

	want, err := filepath.Abs("reports")
	require.NoError(t, err)
	assert.Equal(t, want, args.Dir)
}

func TestParseArgs_AppliedOverConfig(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Parallel = true
	cfg.MaxWorkers = 16

	parse(t, "--parallel=false").ApplyTo(&cfg)

	assert.False(t, cfg.Parallel)
	assert.Equal(t, 16, cfg.MaxWorkers)
}

func TestExecute_WithoutUseCase(t *testing.T) {
	app := NewCLIApp("1.0.0")
	app.rootCmd.SetArgs([]string{"-q"})

	assert.ErrorContains(t, app.Execute(), "use case not configured")
}
