package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diillson/falcon-cost-estimator-go/internal/application/usecase"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/logging"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/types"
	"github.com/diillson/falcon-cost-estimator-go/pkg/version"
)

// ConfigureFunc recebe a configuração efetiva e o logger antes da execução,
// para que os adaptadores ajustem região, roles e log.
type ConfigureFunc func(cfg types.Config, logger *zap.Logger)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd         *cobra.Command
	estimateUseCase *usecase.EstimateUseCase
	configure       ConfigureFunc
	version         string
	quiet           bool
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string) *CLIApp {
	app := &CLIApp{
		version: versionStr,
	}

	// Obtem a versão formatada
	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:           "falcon-cost",
		Short:         "Falcon Cloud Security cost estimator",
		Long:          "Estimates the monthly AWS cost of running CrowdStrike Falcon Cloud Security across an AWS Organization.",
		Version:       formattedVersion,
		RunE:          app.runCommand,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{printf "Falcon Cost Estimator version: %s\n" .Version}}`)

	// Adiciona flags de linha de comando
	flags := rootCmd.PersistentFlags()
	flags.StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	flags.StringP("profile", "p", "", "AWS profile to use (default credential chain when empty)")
	flags.StringP("region", "r", "", "AWS region where the integration is deployed")
	flags.StringSlice("regions", nil, "Regions to analyze in each account (comma-separated, default: --region)")
	flags.Bool("all-regions", false, "Analyze every region enabled in each account")
	flags.StringSliceP("units", "u", nil, "Account IDs or names to estimate (comma-separated, default: all)")
	flags.String("default-unit", "", "Account that hosts the integration (default: caller account)")
	flags.StringP("report-name", "n", "", "Base name for the report files (without extension)")
	flags.StringSliceP("report-type", "y", []string{"csv"}, "Report types: csv, json, pdf")
	flags.StringP("dir", "d", "", "Directory to save the report files (default: current directory)")
	flags.StringP("group-by", "g", "", "Rollup dimension: business_unit, environment, region")
	flags.String("s3-bucket", "", "Upload the written reports to this S3 bucket")
	flags.StringP("sizing-profile", "s", "", "Sizing profile: standard, enterprise")
	flags.Int("sample-window-days", 0, "Days of event history to sample per account")
	flags.Int("sample-size", 0, "Number of events kept in the size sample")
	flags.Int("retention-days", 0, "Days of event data kept in storage")
	flags.Bool("parallel", false, "Collect account usage concurrently")
	flags.IntP("max-workers", "w", 0, "Maximum concurrent accounts when --parallel is set")
	flags.Bool("offline", false, "Use the built-in price table instead of the AWS Price List API")
	flags.Bool("refresh-prices", false, "Ignore cached prices and query the AWS Price List API again")
	flags.Bool("include-egress", false, "Add the data egress cost line")
	flags.Bool("include-dspm", false, "Add the DSPM (S3 data scanning) cost line")
	flags.Bool("include-snapshot", false, "Add the EBS snapshot scanning cost line")
	flags.Bool("consolidate", false, "Attribute all event volume to the default account")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: console, json")
	flags.BoolP("quiet", "q", false, "Do not print the welcome banner")

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// parseArgs parses command-line arguments into a CLIArgs struct. Flags that
// were not given stay nil so the config file value survives.
func (app *CLIApp) parseArgs() (*types.CLIArgs, error) {
	flags := app.rootCmd.Flags()

	configFile, _ := flags.GetString("config-file")
	profile, _ := flags.GetString("profile")
	units, _ := flags.GetStringSlice("units")
	regions, _ := flags.GetStringSlice("regions")
	allRegions, _ := flags.GetBool("all-regions")
	includeEgress, _ := flags.GetBool("include-egress")
	includeDSPM, _ := flags.GetBool("include-dspm")
	includeSnapshot, _ := flags.GetBool("include-snapshot")
	reportName, _ := flags.GetString("report-name")
	dir, _ := flags.GetString("dir")
	offline, _ := flags.GetBool("offline")
	refresh, _ := flags.GetBool("refresh-prices")
	logLevel, _ := flags.GetString("log-level")
	logFormat, _ := flags.GetString("log-format")
	app.quiet, _ = flags.GetBool("quiet")

	// Set default directory to current working directory if not specified
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = cwd
	} else {
		// Convert to absolute path
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = absDir
	}

	args := &types.CLIArgs{
		ConfigFile:      configFile,
		Profile:         profile,
		Units:           units,
		Regions:         regions,
		AllRegions:      allRegions,
		ReportName:      reportName,
		Dir:             dir,
		Offline:         offline,
		Refresh:         refresh,
		IncludeEgress:   includeEgress,
		IncludeDSPM:     includeDSPM,
		IncludeSnapshot: includeSnapshot,
		LogLevel:        logLevel,
		LogFormat:       logFormat,

		Region:           changedString(app.rootCmd, "region"),
		DefaultUnit:      changedString(app.rootCmd, "default-unit"),
		GroupBy:          changedString(app.rootCmd, "group-by"),
		S3Bucket:         changedString(app.rootCmd, "s3-bucket"),
		SizingProfile:    changedString(app.rootCmd, "sizing-profile"),
		SampleWindowDays: changedInt(app.rootCmd, "sample-window-days"),
		SampleSize:       changedInt(app.rootCmd, "sample-size"),
		RetentionDays:    changedInt(app.rootCmd, "retention-days"),
		MaxWorkers:       changedInt(app.rootCmd, "max-workers"),
		Parallel:         changedBool(app.rootCmd, "parallel"),
		Consolidate:      changedBool(app.rootCmd, "consolidate"),
	}

	if flags.Changed("report-type") {
		args.ReportType, _ = flags.GetStringSlice("report-type")
	}

	return args, nil
}

func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func changedInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

func changedBool(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetBool(name)
	return &v
}

// runCommand é o ponto de entrada principal para o comando CLI.
func (app *CLIApp) runCommand(cmd *cobra.Command, _ []string) error {
	if app.estimateUseCase == nil {
		return fmt.Errorf("estimate use case not configured")
	}

	// Analisa os argumentos da linha de comando
	cliArgs, err := app.parseArgs()
	if err != nil {
		return err
	}

	if !app.quiet {
		displayWelcomeBanner(app.version)
	}

	// Verifica a versão mais recente disponível
	go version.CheckLatestVersion(app.version)

	// Padrões, arquivo de configuração e flags, nesta ordem
	cfg, err := app.estimateUseCase.LoadConfig(cliArgs)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: "stderr"})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	app.estimateUseCase.SetLogger(logger)
	if app.configure != nil {
		app.configure(cfg, logger)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.estimateUseCase.Run(ctx, cfg, cliArgs.Refresh)
}

// SetEstimateUseCase sets the estimate use case for the CLI app.
func (app *CLIApp) SetEstimateUseCase(useCase *usecase.EstimateUseCase) {
	app.estimateUseCase = useCase
}

// OnConfigure registra o callback chamado com a configuração efetiva.
func (app *CLIApp) OnConfigure(fn ConfigureFunc) {
	app.configure = fn
}
