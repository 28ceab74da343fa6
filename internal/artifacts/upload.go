package artifacts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmh-genomics/minionpipe/internal/domain"
	"github.com/bmh-genomics/minionpipe/internal/platform/objectstore"
)

const archiveContentType = "application/x-7z-compressed"

// Uploader pushes the final archive into the S3-compatible results bucket.
type Uploader struct {
	store  objectstore.Store
	bucket string
}

func NewUploader(store objectstore.Store, bucket string) (*Uploader, error) {
	if store == nil {
		return nil, errors.New("object store is required")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("bucket is required")
	}
	return &Uploader{store: store, bucket: bucket}, nil
}

// UploadArchive stores the archive under runs/<run_id>/<archive name>,
// verifies the stored object's size against the local file, and returns the
// object key.
func (u *Uploader) UploadArchive(ctx context.Context, run domain.PipelineRun, archivePath string) (string, error) {
	if u == nil || u.store == nil {
		return "", errors.New("uploader not initialized")
	}
	if strings.TrimSpace(run.ID) == "" {
		return "", errors.New("run id is required")
	}
	if strings.TrimSpace(archivePath) == "" {
		return "", errors.New("archive path is required")
	}
	local, err := os.Stat(archivePath)
	if err != nil {
		return "", fmt.Errorf("stat archive: %w", err)
	}

	objectKey := fmt.Sprintf("runs/%s/%s", run.ID, filepath.Base(archivePath))
	if err := u.store.PutFile(ctx, u.bucket, objectKey, archivePath, archiveContentType); err != nil {
		return "", fmt.Errorf("upload archive: %w", err)
	}

	stored, err := u.store.Stat(ctx, u.bucket, objectKey)
	if err != nil {
		return "", fmt.Errorf("verify uploaded archive: %w", err)
	}
	if stored.Size != local.Size() {
		return "", fmt.Errorf("uploaded archive size mismatch: stored %d bytes, local %d bytes", stored.Size, local.Size())
	}
	return objectKey, nil
}
