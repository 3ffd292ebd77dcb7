package repository

import (
	"context"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
)

type ExportRepository interface {
	ExportToCSV(report entity.Report, filename string, outputDir string) (string, error)
	ExportRollupToCSV(report entity.Report, filename string, outputDir string) (string, error)
	ExportToJSON(report entity.Report, filename string, outputDir string) (string, error)
	ExportToPDF(report entity.Report, filename string, outputDir string) (string, error)

	// ReadCSV lê de volta um arquivo produzido por ExportToCSV.
	ReadCSV(path string) ([]entity.UnitReport, error)

	UploadToS3(ctx context.Context, store ObjectStore, bucket, prefix, path string) (string, error)
}
