package artifacts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bmh-genomics/minionpipe/internal/domain"
	"github.com/bmh-genomics/minionpipe/internal/platform/objectstore"
)

type fakeStore struct {
	bucket      string
	key         string
	path        string
	contentType string
	storedSize  int64
	putErr      error
	statErr     error
}

func (s *fakeStore) PutFile(_ context.Context, bucket, key, path, contentType string) error {
	s.bucket, s.key, s.path, s.contentType = bucket, key, path, contentType
	return s.putErr
}

func (s *fakeStore) Stat(_ context.Context, _, key string) (objectstore.ObjectInfo, error) {
	if s.statErr != nil {
		return objectstore.ObjectInfo{}, s.statErr
	}
	return objectstore.ObjectInfo{Key: key, Size: s.storedSize}, nil
}

func writeArchive(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run-output.7z")
	if err := os.WriteFile(path, []byte("7zpayload"), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	return path
}

func TestUploadArchive(t *testing.T) {
	archivePath := writeArchive(t)
	store := &fakeStore{storedSize: int64(len("7zpayload"))}
	u, err := NewUploader(store, "sequencing-results")
	if err != nil {
		t.Fatalf("NewUploader() err=%v", err)
	}
	run := domain.PipelineRun{ID: "run_abc"}

	key, err := u.UploadArchive(context.Background(), run, archivePath)
	if err != nil {
		t.Fatalf("UploadArchive() err=%v", err)
	}
	if key != "runs/run_abc/run-output.7z" {
		t.Fatalf("key=%q", key)
	}
	if store.bucket != "sequencing-results" || store.path != archivePath {
		t.Fatalf("store call=%+v", store)
	}
	if store.contentType != archiveContentType {
		t.Fatalf("contentType=%q", store.contentType)
	}
}

func TestUploadArchive_SizeMismatch(t *testing.T) {
	archivePath := writeArchive(t)
	store := &fakeStore{storedSize: 1}
	u, _ := NewUploader(store, "sequencing-results")

	if _, err := u.UploadArchive(context.Background(), domain.PipelineRun{ID: "run_abc"}, archivePath); err == nil {
		t.Fatalf("UploadArchive() expected error for truncated stored object")
	}
}

func TestUploadArchive_StatFailure(t *testing.T) {
	archivePath := writeArchive(t)
	store := &fakeStore{statErr: errors.New("not found")}
	u, _ := NewUploader(store, "sequencing-results")

	if _, err := u.UploadArchive(context.Background(), domain.PipelineRun{ID: "run_abc"}, archivePath); err == nil {
		t.Fatalf("UploadArchive() expected error when stored object cannot be verified")
	}
}

func TestUploadArchive_MissingLocalArchive(t *testing.T) {
	u, _ := NewUploader(&fakeStore{}, "sequencing-results")
	if _, err := u.UploadArchive(context.Background(), domain.PipelineRun{ID: "run_abc"}, filepath.Join(t.TempDir(), "absent.7z")); err == nil {
		t.Fatalf("UploadArchive() expected error for missing archive file")
	}
}

func TestUploadArchive_MissingRunID(t *testing.T) {
	u, _ := NewUploader(&fakeStore{}, "sequencing-results")
	if _, err := u.UploadArchive(context.Background(), domain.PipelineRun{}, "/data/out/x.7z"); err == nil {
		t.Fatalf("UploadArchive() expected error for missing run id")
	}
}

func TestNewUploader_Invalid(t *testing.T) {
	if _, err := NewUploader(nil, "bucket"); err == nil {
		t.Fatalf("NewUploader() expected error for nil store")
	}
	if _, err := NewUploader(&fakeStore{}, " "); err == nil {
		t.Fatalf("NewUploader() expected error for blank bucket")
	}
}
