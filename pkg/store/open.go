package store

import (
	"fmt"
	"os"

	"github.com/rzbill/cse/pkg/log"
)

// Backend kinds accepted by OpenBackend.
const (
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// OpenBackend creates and opens a backend of the given kind under path. The
// badger backend creates path if it does not exist.
func OpenBackend(kind, path string, logger log.Logger) (Backend, error) {
	var backend Backend
	switch kind {
	case BackendMemory:
		backend = NewMemoryStore()
	case BackendBadger, "":
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		backend = NewBadgerStore(logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", kind)
	}

	if err := backend.Open(path); err != nil {
		return nil, err
	}
	return backend, nil
}
