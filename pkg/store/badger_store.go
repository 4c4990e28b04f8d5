package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/rzbill/cse/pkg/log"
	"github.com/rzbill/cse/pkg/types"
)

// Validate that BadgerStore implements the Backend interface
var _ Backend = &BadgerStore{}

// BadgerStore implements Backend using BadgerDB. Every write also records a version
// under the entity's history prefix.
type BadgerStore struct {
	db     *badger.DB
	path   string
	logger log.Logger
}

// NewBadgerStore creates a new BadgerDB-backed store.
func NewBadgerStore(logger log.Logger) *BadgerStore {
	if logger == nil {
		logger = log.GetDefaultLogger()
	}
	return &BadgerStore{
		logger: logger.WithComponent("store"),
	}
}

// Open opens the BadgerDB database.
func (s *BadgerStore) Open(path string) error {
	s.path = path

	opts := badger.DefaultOptions(path)
	opts.Logger = log.NewBadgerLogger(s.logger)

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("failed to open badger db: %w", err)
	}
	s.db = db

	s.logger.Info("Entity store opened", log.Str("path", path))
	return nil
}

// Close closes the BadgerDB database.
func (s *BadgerStore) Close() error {
	if s.db == nil {
		return nil
	}
	s.logger.Info("Closing entity store", log.Str("path", s.path))
	err := s.db.Close()
	s.db = nil
	return err
}

// Create stores a new entity and its first version.
func (s *BadgerStore) Create(ctx context.Context, entity *types.ClusterEntity) error {
	if entity.ID == "" {
		return fmt.Errorf("entity id is required")
	}

	s.logger.Debug("Creating entity",
		log.Str("id", entity.ID),
		log.Str("name", entity.Name),
		log.Str("entityType", entity.TypeRef().ID()))

	return s.db.Update(func(txn *badger.Txn) error {
		key := MakeKey(entity.ID)
		_, err := txn.Get(key)
		if err == nil {
			return fmt.Errorf("entity %s already exists", entity.ID)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check existing entity: %w", err)
		}
		return writeEntity(txn, entity)
	})
}

// Get retrieves an entity.
func (s *BadgerStore) Get(ctx context.Context, id string) (*types.ClusterEntity, error) {
	var entity *types.ClusterEntity

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(MakeKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return types.NewEntityNotFoundError(id)
		} else if err != nil {
			return fmt.Errorf("failed to get entity: %w", err)
		}

		return item.Value(func(val []byte) error {
			decoded, err := decodeEntity(val)
			if err != nil {
				return err
			}
			entity = decoded
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// Update replaces an existing entity and records a new version.
func (s *BadgerStore) Update(ctx context.Context, entity *types.ClusterEntity) error {
	s.logger.Debug("Updating entity",
		log.Str("id", entity.ID),
		log.Str("state", string(entity.State)),
		log.Str("entityType", entity.TypeRef().ID()))

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(MakeKey(entity.ID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return types.NewEntityNotFoundError(entity.ID)
		} else if err != nil {
			return fmt.Errorf("failed to check existing entity: %w", err)
		}
		return writeEntity(txn, entity)
	})
}

// Delete deletes an entity. Versions are kept to maintain history.
func (s *BadgerStore) Delete(ctx context.Context, id string) error {
	s.logger.Debug("Deleting entity", log.Str("id", id))

	return s.db.Update(func(txn *badger.Txn) error {
		key := MakeKey(id)
		_, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return types.NewEntityNotFoundError(id)
		} else if err != nil {
			return fmt.Errorf("failed to check existing entity: %w", err)
		}
		if err := txn.Delete(key); err != nil {
			return fmt.Errorf("failed to delete entity: %w", err)
		}
		return nil
	})
}

// List retrieves all entities.
func (s *BadgerStore) List(ctx context.Context) ([]*types.ClusterEntity, error) {
	var entities []*types.ClusterEntity
	prefix := MakePrefix()

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				entity, err := decodeEntity(val)
				if err != nil {
					return err
				}
				entities = append(entities, entity)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Found entities", log.Int("count", len(entities)))
	return entities, nil
}

// GetHistory retrieves the stored versions of an entity, newest first.
func (s *BadgerStore) GetHistory(ctx context.Context, id string) ([]HistoricalVersion, error) {
	var versions []HistoricalVersion
	prefix := MakeVersionPrefix(id)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(append(prefix, 0xFF)); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				version, err := decodeVersion(val)
				if err != nil {
					return err
				}
				versions = append(versions, version)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return versions, nil
}

func writeEntity(txn *badger.Txn, entity *types.ClusterEntity) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to serialize entity: %w", err)
	}
	if err := txn.Set(MakeKey(entity.ID), data); err != nil {
		return fmt.Errorf("failed to store entity: %w", err)
	}

	versionData, versionID, err := encodeVersion(entity)
	if err != nil {
		return err
	}
	if err := txn.Set(MakeVersionKey(entity.ID, versionID), versionData); err != nil {
		return fmt.Errorf("failed to store version: %w", err)
	}
	return nil
}
