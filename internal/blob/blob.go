// Package blob is the entry point to blob storage. Callers depend on the
// Store interface; only this package wires the infra backends.
package blob

import (
	"context"
	"fmt"

	"idfworkspace/internal/blob/core"
	"idfworkspace/internal/config"
	fsstore "idfworkspace/internal/infra/blob/fs"
	memstore "idfworkspace/internal/infra/blob/memory"
	s3store "idfworkspace/internal/infra/blob/s3"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// SignedURLOptions configures URL pre-signing.
	SignedURLOptions = core.SignedURLOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

var (
	ErrUnsupported = core.ErrUnsupported
	ErrNotFound    = core.ErrNotFound
	ErrExists      = core.ErrExists
)

// Open selects a Store implementation from cfg.
func Open(ctx context.Context, cfg config.Blob) (Store, error) {
	switch Driver(cfg.Driver) {
	case DriverFilesystem, "":
		return fsstore.New(cfg.FSRoot)
	case DriverS3:
		return s3store.New(ctx, s3store.Config{
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			SessionToken:    cfg.S3SessionTok,
			PathStyle:       cfg.S3PathStyle,
		})
	case DriverMemory:
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.Driver)
	}
}

// NewMemory returns an in-memory store.
func NewMemory() Store { return memstore.New() }

// NewS3Mock returns an S3 store backed by a fake transport.
func NewS3Mock() Store { return s3store.NewMockForTests() }
