package blob

import (
	"context"
	"fmt"
	"os"

	fsstore "orthoinfer/internal/infra/blob/fs"
	memorystore "orthoinfer/internal/infra/blob/memory"
	s3store "orthoinfer/internal/infra/blob/s3"
)

// Open selects a blob.Store implementation using environment variables.
//
//	ORTHOINFER_BLOB_DRIVER: fs|s3|memory (default fs)
//	ORTHOINFER_BLOB_FS_ROOT: directory root when driver=fs (default ./output)
//	(S3 specific variables documented in the s3 package)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("ORTHOINFER_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return fsstore.New(os.Getenv("ORTHOINFER_BLOB_FS_ROOT"))
	case DriverS3:
		return s3store.OpenFromEnv(ctx)
	case DriverMemory:
		return memorystore.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

// NewMemory returns an in-memory blob.Store suitable for tests.
func NewMemory() Store { return memorystore.New() }

// NewMockS3ForTests exposes the in-memory S3 mock for cross-package tests.
func NewMockS3ForTests() Store { return s3store.NewMockForTests() }
