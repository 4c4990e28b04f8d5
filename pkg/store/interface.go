// Package store persists cluster entities and serves them back by id or by type.
package store

import (
	"context"
	"iter"
	"time"

	"github.com/rzbill/cse/pkg/types"
)

// Backend is the raw persistence layer under the entity store.
type Backend interface {
	// Open initializes and opens the backend.
	Open(path string) error

	// Close closes the backend and releases resources.
	Close() error

	// Create stores a new entity. The entity must carry an id.
	Create(ctx context.Context, entity *types.ClusterEntity) error

	// Get retrieves an entity by id.
	Get(ctx context.Context, id string) (*types.ClusterEntity, error)

	// Update replaces an existing entity.
	Update(ctx context.Context, entity *types.ClusterEntity) error

	// Delete removes an entity. Its history is kept.
	Delete(ctx context.Context, id string) error

	// List returns every stored entity, in no particular order.
	List(ctx context.Context) ([]*types.ClusterEntity, error)

	// GetHistory returns the stored versions of an entity, newest first.
	GetHistory(ctx context.Context, id string) ([]HistoricalVersion, error)
}

// EntityStore is the entity store as seen by the rest of the service.
type EntityStore interface {
	// Get retrieves an entity by id.
	Get(ctx context.Context, id string) (*types.ClusterEntity, error)

	// ListByType lazily iterates over every entity of a type version that matches filters.
	ListByType(ctx context.Context, ref types.EntityTypeRef, filters Filters) iter.Seq2[*types.ClusterEntity, error]

	// Create stores a new entity in PRE_VALIDATION state and returns it with its id.
	Create(ctx context.Context, entity *types.ClusterEntity) (*types.ClusterEntity, error)

	// Update replaces the entity stored under id.
	Update(ctx context.Context, id string, entity *types.ClusterEntity) (*types.ClusterEntity, error)

	// Resolve schema checks the stored entity and records the outcome in its state.
	Resolve(ctx context.Context, id string) (*types.ClusterEntity, error)

	// Delete removes an entity.
	Delete(ctx context.Context, id string) error
}

// Pager serves one page of a type listing.
type Pager interface {
	// GetPage returns page number page (1-indexed) of at most pageSize entities.
	GetPage(ctx context.Context, ref types.EntityTypeRef, filters Filters, page, pageSize int) (*Page, error)
}

// Page is one page of a type listing.
type Page struct {
	// Values on this page, sorted by name
	Values []*types.ClusterEntity `json:"values"`

	// ResultTotal counts all matches across pages
	ResultTotal int `json:"resultTotal"`
}

// HistoricalVersion is one stored version of an entity.
type HistoricalVersion struct {
	// Version is the version identifier.
	Version string `json:"version"`

	// Timestamp is when this version was written.
	Timestamp time.Time `json:"timestamp"`

	// Entity is the entity as written.
	Entity *types.ClusterEntity `json:"entity"`
}
