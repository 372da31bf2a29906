package blob

import (
	"context"
	"fmt"
	"os"

	infraS3 "corridorcore/internal/infra/blob/s3"
)

// Open selects a blob.Store implementation using environment variables.
//
//	CORRIDORCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	CORRIDORCORE_BLOB_FS_ROOT: directory root when driver=fs (default ./blobdata)
//	(S3 specific variables documented in the s3 package)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("CORRIDORCORE_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		root := os.Getenv("CORRIDORCORE_BLOB_FS_ROOT")
		return NewFilesystem(root)
	case DriverS3:
		return infraS3.OpenFromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
