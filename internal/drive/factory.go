package drive

import (
	"fmt"

	"rollbook/internal/backup"
	"rollbook/internal/config"
)

// NewDriveFromConfig creates a Drive implementation based on the drive config type.
func NewDriveFromConfig(cfg config.DriveConfig, logger backup.Logger) (backup.Drive, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryDrive(nil, nil), nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 drive requires s3_bucket to be set")
		}
		return NewS3Drive(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown drive type: %s", cfg.Type)
	}
}
