package store

import (
	"context"
	"iter"
	"slices"
	"strings"

	"github.com/rzbill/cse/pkg/log"
	"github.com/rzbill/cse/pkg/types"
)

// DefaultPageSize is the page size used by ListByType unless configured otherwise.
const DefaultPageSize = 25

// Validate that Client implements the EntityStore and Pager interfaces
var (
	_ EntityStore = &Client{}
	_ Pager       = &Client{}
)

// Client implements EntityStore on top of a Backend.
type Client struct {
	backend  Backend
	pageSize int
	logger   log.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithPageSize sets the page size ListByType requests.
func WithPageSize(size int) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates an entity store client.
func NewClient(backend Backend, opts ...ClientOption) *Client {
	c := &Client{
		backend:  backend,
		pageSize: DefaultPageSize,
		logger:   log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent("entity-store")
	return c
}

// Get retrieves an entity by id.
func (c *Client) Get(ctx context.Context, id string) (*types.ClusterEntity, error) {
	return c.backend.Get(ctx, id)
}

// ListByType iterates over all entities of ref that match filters.
func (c *Client) ListByType(ctx context.Context, ref types.EntityTypeRef, filters Filters) iter.Seq2[*types.ClusterEntity, error] {
	return ListByType(ctx, c, ref, filters, c.pageSize)
}

// ListByType iterates over a type listing by requesting pages 1, 2, 3 and so on from
// pager until a page comes back empty. Nothing is fetched until the sequence is
// ranged over, and every range starts again from the first page. Iteration stops
// after the first error.
func ListByType(ctx context.Context, pager Pager, ref types.EntityTypeRef, filters Filters, pageSize int) iter.Seq2[*types.ClusterEntity, error] {
	return func(yield func(*types.ClusterEntity, error) bool) {
		for page := 1; ; page++ {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			result, err := pager.GetPage(ctx, ref, filters, page, pageSize)
			if err != nil {
				yield(nil, err)
				return
			}
			if len(result.Values) == 0 {
				return
			}
			for _, entity := range result.Values {
				if !yield(entity, nil) {
					return
				}
			}
		}
	}
}

// GetPage returns one page of entities of ref matching filters, sorted by name.
func (c *Client) GetPage(ctx context.Context, ref types.EntityTypeRef, filters Filters, page, pageSize int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = c.pageSize
	}

	all, err := c.backend.List(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]*types.ClusterEntity, 0, len(all))
	for _, entity := range all {
		if entity.TypeRef() != ref {
			continue
		}
		ok, err := filters.Match(entity)
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, entity)
		}
	}

	slices.SortFunc(matches, func(a, b *types.ClusterEntity) int {
		if n := strings.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		return strings.Compare(a.ID, b.ID)
	})

	result := &Page{ResultTotal: len(matches), Values: []*types.ClusterEntity{}}
	start := (page - 1) * pageSize
	if start < len(matches) {
		end := min(start+pageSize, len(matches))
		result.Values = matches[start:end]
	}
	return result, nil
}

// Create assigns an id and stores entity in PRE_VALIDATION state.
func (c *Client) Create(ctx context.Context, entity *types.ClusterEntity) (*types.ClusterEntity, error) {
	if entity.Entity == nil {
		return nil, types.NewValidationError("entity body is required")
	}

	created := *entity
	ref := created.TypeRef()
	created.EntityType = ref.ID()
	created.ID = NewEntityID(ref)
	created.State = types.EntityStatePreValidation
	if created.Name == "" {
		created.Name = created.Entity.ClusterName()
	}

	if err := c.backend.Create(ctx, &created); err != nil {
		return nil, err
	}

	c.logger.Info("Created entity",
		log.Str("id", created.ID),
		log.Str("name", created.Name),
		log.Str("entityType", created.EntityType))
	return &created, nil
}

// Update replaces the entity stored under id. When the update moves the entity to a
// different type version, the state goes back to PRE_VALIDATION until it is resolved
// again.
func (c *Client) Update(ctx context.Context, id string, entity *types.ClusterEntity) (*types.ClusterEntity, error) {
	current, err := c.backend.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *entity
	updated.ID = id
	updated.EntityType = updated.TypeRef().ID()
	if updated.TypeRef() != current.TypeRef() {
		updated.State = types.EntityStatePreValidation
	}

	if err := c.backend.Update(ctx, &updated); err != nil {
		return nil, err
	}

	c.logger.Debug("Updated entity",
		log.Str("id", id),
		log.Str("entityType", updated.EntityType),
		log.Str("state", string(updated.State)))
	return &updated, nil
}

// Resolve validates the stored entity against its generation and moves it to
// RESOLVED or RESOLUTION_ERROR.
func (c *Client) Resolve(ctx context.Context, id string) (*types.ClusterEntity, error) {
	entity, err := c.backend.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if verr := entity.Validate(); verr != nil {
		entity.State = types.EntityStateResolutionError
		c.logger.Warn("Entity failed schema check",
			log.Str("id", id),
			log.Err(verr))
	} else {
		entity.State = types.EntityStateResolved
	}

	if err := c.backend.Update(ctx, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// Delete removes an entity.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.backend.Delete(ctx, id); err != nil {
		return err
	}
	c.logger.Info("Deleted entity", log.Str("id", id))
	return nil
}

// History returns the stored versions of an entity, newest first.
func (c *Client) History(ctx context.Context, id string) ([]HistoricalVersion, error) {
	return c.backend.GetHistory(ctx, id)
}
