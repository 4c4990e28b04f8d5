package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/rzbill/cse/pkg/types"
)

// Validate that MemoryStore implements the Backend interface
var _ Backend = &MemoryStore{}

// MemoryStore is an in-memory Backend for tests and dry runs. Entities are kept
// serialized so callers never share state with the store.
type MemoryStore struct {
	mutex    sync.RWMutex
	data     map[string][]byte
	versions map[string][][]byte
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:     make(map[string][]byte),
		versions: make(map[string][][]byte),
	}
}

// Open initializes the memory store.
func (m *MemoryStore) Open(path string) error {
	// No-op for memory store
	return nil
}

// Close closes the memory store.
func (m *MemoryStore) Close() error {
	// No-op for memory store
	return nil
}

// Create stores a new entity.
func (m *MemoryStore) Create(ctx context.Context, entity *types.ClusterEntity) error {
	if entity.ID == "" {
		return fmt.Errorf("entity id is required")
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.data[entity.ID]; ok {
		return fmt.Errorf("entity %s already exists", entity.ID)
	}
	return m.put(entity)
}

// Get retrieves an entity.
func (m *MemoryStore) Get(ctx context.Context, id string) (*types.ClusterEntity, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	data, ok := m.data[id]
	if !ok {
		return nil, types.NewEntityNotFoundError(id)
	}
	return decodeEntity(data)
}

// Update replaces an existing entity.
func (m *MemoryStore) Update(ctx context.Context, entity *types.ClusterEntity) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.data[entity.ID]; !ok {
		return types.NewEntityNotFoundError(entity.ID)
	}
	return m.put(entity)
}

// Delete removes an entity.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.data[id]; !ok {
		return types.NewEntityNotFoundError(id)
	}
	delete(m.data, id)
	return nil
}

// List returns all entities.
func (m *MemoryStore) List(ctx context.Context) ([]*types.ClusterEntity, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]*types.ClusterEntity, 0, len(m.data))
	for _, data := range m.data {
		entity, err := decodeEntity(data)
		if err != nil {
			return nil, err
		}
		result = append(result, entity)
	}
	return result, nil
}

// GetHistory returns stored versions, newest first.
func (m *MemoryStore) GetHistory(ctx context.Context, id string) ([]HistoricalVersion, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	stored := m.versions[id]
	result := make([]HistoricalVersion, 0, len(stored))
	for _, data := range slices.Backward(stored) {
		version, err := decodeVersion(data)
		if err != nil {
			return nil, err
		}
		result = append(result, version)
	}
	return result, nil
}

func (m *MemoryStore) put(entity *types.ClusterEntity) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to serialize entity: %w", err)
	}
	versionData, _, err := encodeVersion(entity)
	if err != nil {
		return err
	}
	m.data[entity.ID] = data
	m.versions[entity.ID] = append(m.versions[entity.ID], versionData)
	return nil
}
