package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
	"github.com/diillson/falcon-cost-estimator-go/internal/domain/repository"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/logging"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/types"
)

// export grava o relatório em cada formato pedido e, se configurado, envia os
// arquivos para o S3. Falhas isoladas são registradas; só quando nenhuma
// gravação funcionou o erro volta ao chamador.
func (uc *EstimateUseCase) export(ctx context.Context, cfg types.Config, report entity.Report) error {
	if uc.exportRepo == nil || cfg.ReportName == "" || len(cfg.ReportType) == 0 {
		return nil
	}
	log := uc.logger.With(logging.RunID(report.Summary.RunID))

	var (
		written  []string
		attempts int
		failures int
		lastErr  error
	)
	record := func(kind, path string, err error) {
		attempts++
		if err != nil {
			failures++
			lastErr = err
			log.Error("report export failed", zap.String("format", kind), zap.Error(err))
			uc.console.LogError("Failed to export to %s: %s", kind, err)
			return
		}
		written = append(written, path)
		uc.console.LogSuccess("Successfully exported to %s: %s", kind, path)
	}

	for _, reportType := range cfg.ReportType {
		switch reportType {
		case "csv":
			path, err := uc.exportRepo.ExportToCSV(report, cfg.ReportName, cfg.Dir)
			record("CSV", path, err)
			path, err = uc.exportRepo.ExportRollupToCSV(report, cfg.ReportName, cfg.Dir)
			record("rollup CSV", path, err)
		case "json":
			path, err := uc.exportRepo.ExportToJSON(report, cfg.ReportName, cfg.Dir)
			record("JSON", path, err)
		case "pdf":
			path, err := uc.exportRepo.ExportToPDF(report, cfg.ReportName, cfg.Dir)
			record("PDF", path, err)
		}
	}

	if cfg.S3Bucket != "" {
		store, ok := uc.usageRepo.(repository.ObjectStore)
		if !ok {
			uc.console.LogWarning("S3 upload requested but no object store is available")
		} else {
			for _, path := range written {
				uri, err := uc.exportRepo.UploadToS3(ctx, store, cfg.S3Bucket, cfg.S3Prefix, path)
				record("S3", uri, err)
			}
		}
	}

	if attempts > 0 && failures == attempts {
		return fmt.Errorf("%w: %d of %d writes failed, last error: %v", types.ErrSinkWrite, failures, attempts, lastErr)
	}
	return nil
}
