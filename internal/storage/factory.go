// Package storage provides the snapshot cache with pluggable backends.
package storage

import (
	"fmt"

	"github.com/bobmcallan/networth/internal/common"
	"github.com/bobmcallan/networth/internal/interfaces"
	"github.com/bobmcallan/networth/internal/storage/badger"
)

// Backend type constants.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

// NewSnapshotCache creates a snapshot cache based on the configuration.
// Supported backends: "memory" (default), "badger".
func NewSnapshotCache(logger *common.Logger, config common.StorageConfig) (interfaces.SnapshotCache, error) {
	backend := config.Backend
	if backend == "" {
		backend = BackendMemory
	}

	switch backend {
	case BackendMemory:
		return NewMemoryCache(), nil

	case BackendBadger:
		store, err := badger.NewStore(logger, config.Path)
		if err != nil {
			return nil, err
		}
		return badger.NewSnapshotStorage(store, logger), nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: memory, badger)", backend)
	}
}
