package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rzbill/cse/pkg/types"
)

const (
	entityKeyPrefix  = "entities"
	versionKeyPrefix = "entities-versions"
)

// MakeKey creates the key an entity is stored under.
func MakeKey(id string) []byte {
	return []byte(fmt.Sprintf("%s/%s", entityKeyPrefix, id))
}

// MakePrefix returns the prefix shared by all entity keys.
func MakePrefix() []byte {
	return []byte(entityKeyPrefix + "/")
}

// MakeVersionKey creates the key of one stored version of an entity.
func MakeVersionKey(id, version string) []byte {
	return []byte(fmt.Sprintf("%s/%s/%s", versionKeyPrefix, id, version))
}

// MakeVersionPrefix returns the prefix of all stored versions of an entity.
func MakeVersionPrefix(id string) []byte {
	return []byte(fmt.Sprintf("%s/%s/", versionKeyPrefix, id))
}

// NewEntityID returns a fresh id for an entity of the given type.
func NewEntityID(ref types.EntityTypeRef) string {
	return ref.EntityIDPrefix() + uuid.NewString()
}

// newVersionID returns a version id that sorts by write time.
func newVersionID() string {
	return fmt.Sprintf("v%020d", time.Now().UnixNano())
}

// versionRecord is the stored form of one entity version.
type versionRecord struct {
	ID        string               `json:"id"`
	Timestamp time.Time            `json:"timestamp"`
	Entity    *types.ClusterEntity `json:"entity"`
}

func decodeEntity(data []byte) (*types.ClusterEntity, error) {
	entity := &types.ClusterEntity{}
	if err := json.Unmarshal(data, entity); err != nil {
		return nil, fmt.Errorf("failed to deserialize entity: %w", err)
	}
	return entity, nil
}

func decodeVersion(data []byte) (HistoricalVersion, error) {
	var record versionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return HistoricalVersion{}, fmt.Errorf("failed to deserialize version: %w", err)
	}
	return HistoricalVersion{Version: record.ID, Timestamp: record.Timestamp, Entity: record.Entity}, nil
}

func encodeVersion(entity *types.ClusterEntity) ([]byte, string, error) {
	id := newVersionID()
	data, err := json.Marshal(versionRecord{ID: id, Timestamp: time.Now(), Entity: entity})
	if err != nil {
		return nil, "", fmt.Errorf("failed to serialize version: %w", err)
	}
	return data, id, nil
}

// IsNotFoundError checks if an error is a not found error.
func IsNotFoundError(err error) bool {
	return types.IsEntityNotFound(err)
}
