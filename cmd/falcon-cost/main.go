package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/diillson/falcon-cost-estimator-go/internal/adapter/driven/aws"
	"github.com/diillson/falcon-cost-estimator-go/internal/adapter/driven/config"
	"github.com/diillson/falcon-cost-estimator-go/internal/adapter/driven/export"
	"github.com/diillson/falcon-cost-estimator-go/internal/adapter/driving/cli"
	"github.com/diillson/falcon-cost-estimator-go/internal/application/usecase"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/types"
	"github.com/diillson/falcon-cost-estimator-go/pkg/console"
	"github.com/diillson/falcon-cost-estimator-go/pkg/version"
)

func main() {
	// Inicializa o aplicativo CLI
	app := cli.NewCLIApp(version.Version)

	// Inicializa os repositórios; o mesmo adaptador AWS serve uso, preços e S3
	awsRepo := aws.NewRepository(aws.OptionsFromConfig(types.DefaultConfig()), nil)
	exportRepo := export.NewExportRepository()
	configRepo := config.NewConfigRepository()
	consoleImpl := console.NewConsole()

	// Inicializa o caso de uso
	estimateUseCase := usecase.NewEstimateUseCase(
		awsRepo,
		awsRepo,
		exportRepo,
		configRepo,
		consoleImpl,
		nil,
	)

	// Define o caso de uso no aplicativo CLI
	app.SetEstimateUseCase(estimateUseCase)
	app.OnConfigure(func(cfg types.Config, logger *zap.Logger) {
		awsRepo.Configure(aws.OptionsFromConfig(cfg))
		awsRepo.SetLogger(logger)
	})

	// Executa o aplicativo
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
