package archive

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/joseph-ayodele/rental-ledger/constants"
	"github.com/joseph-ayodele/rental-ledger/internal/common"
)

const keyPrefix = "control-files"

// MinioArchiver stores uploaded control files in an S3-compatible bucket.
type MinioArchiver struct {
	client *minio.Client
	bucket string
	now    func() time.Time
	logger *slog.Logger
}

func NewMinioArchiver(cfg common.ArchiveConfig, logger *slog.Logger) (*MinioArchiver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: "us-east-1",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &MinioArchiver{client: client, bucket: cfg.Bucket, now: time.Now, logger: logger}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (a *MinioArchiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// Archive uploads the file at src and returns its object key.
func (a *MinioArchiver) Archive(ctx context.Context, runID, src string) (string, error) {
	key := ObjectKey(a.now(), runID, filepath.Ext(src))
	info, err := a.client.FPutObject(ctx, a.bucket, key, src, minio.PutObjectOptions{
		ContentType:  constants.PDFMimeType,
		UserMetadata: map[string]string{"run-id": runID},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	a.logger.Debug("archive.put.ok", "bucket", a.bucket, "key", key, "bytes", info.Size)
	return key, nil
}

// ObjectKey lays files out as control-files/<yyyy>/<mm>/<run-id>.pdf.
func ObjectKey(t time.Time, runID, ext string) string {
	ext = constants.NormalizeExt(ext)
	if ext == "" {
		ext = "pdf"
	}
	t = t.UTC()
	return path.Join(keyPrefix, fmt.Sprintf("%04d", t.Year()), fmt.Sprintf("%02d", int(t.Month())), strings.TrimSpace(runID)+"."+ext)
}
