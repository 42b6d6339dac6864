// Package persistence selects a snapshot store backend from configuration.
package persistence

import (
	"context"
	"fmt"

	"idfworkspace/internal/blob"
	"idfworkspace/internal/config"
	"idfworkspace/internal/infra/persistence/blobsnap"
	"idfworkspace/internal/infra/persistence/memory"
	"idfworkspace/internal/infra/persistence/postgres"
	"idfworkspace/internal/infra/persistence/sqlite"
	"idfworkspace/pkg/domain"
	"idfworkspace/pkg/schema"
)

// Store is the snapshot contract shared by every backend.
type Store = domain.SnapshotStore

// Open returns the backend named by cfg.StorageDriver. provider, when not
// nil, annotates IDF text written by the blob backend.
func Open(ctx context.Context, cfg config.Config, provider schema.Provider) (Store, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory, "":
		return memory.NewStore(), nil
	case config.StorageSQLite:
		return sqlite.NewStore(cfg.SQLitePath)
	case config.StoragePostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN)
	case config.StorageBlob:
		blobs, err := blob.Open(ctx, cfg.Blob)
		if err != nil {
			return nil, err
		}
		return blobsnap.New(blobs, provider), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", cfg.StorageDriver)
	}
}
