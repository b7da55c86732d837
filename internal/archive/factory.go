package archive

import (
	"context"
	"fmt"

	"journeyd/internal/config"
	"journeyd/internal/journey"
)

// NewArchiverFromConfig creates an Archiver implementation based on the
// archive config type. The "database" type is not handled here: it writes
// through the store's connection pool, so the application wires it directly.
func NewArchiverFromConfig(ctx context.Context, cfg config.ArchiveConfig) (journey.Archiver, error) {
	switch cfg.Type {
	case "none":
		return journey.NopArchiver{}, nil
	case "memory":
		return NewMemoryArchiver(), nil
	case "filesystem":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("filesystem archive requires dir to be set")
		}
		return NewFileSystemArchiver(cfg.Dir)
	case "s3":
		return NewS3Archiver(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region)
	default:
		return nil, fmt.Errorf("unknown archive type: %s", cfg.Type)
	}
}
