package export

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/repository"
)

var contentTypes = map[string]string{
	".csv":  "text/csv",
	".json": "application/json",
	".pdf":  "application/pdf",
}

// UploadToS3 envia um relatório já gravado para s3://bucket/prefix/<arquivo>.
func (r *ExportRepositoryImpl) UploadToS3(ctx context.Context, store repository.ObjectStore, bucket, prefix, filePath string) (string, error) {
	if store == nil {
		return "", fmt.Errorf("no object store configured")
	}
	body, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("error reading report for upload: %w", err)
	}

	key := objectKey(prefix, filePath)
	contentType, ok := contentTypes[strings.ToLower(filepath.Ext(filePath))]
	if !ok {
		contentType = "application/octet-stream"
	}

	if err := store.PutObject(ctx, bucket, key, contentType, body); err != nil {
		return "", fmt.Errorf("error uploading %s to bucket %s: %w", key, bucket, err)
	}
	return fmt.Sprintf("s3://%s/%s", bucket, key), nil
}

func objectKey(prefix, filePath string) string {
	name := filepath.Base(filePath)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
