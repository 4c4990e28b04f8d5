// Package migration moves stored cluster entities to a newer schema generation.
package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/rzbill/cse/pkg/convert"
	"github.com/rzbill/cse/pkg/log"
	"github.com/rzbill/cse/pkg/store"
	"github.com/rzbill/cse/pkg/types"
)

// Failure records one entity the sweep could not migrate.
type Failure struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

// Report summarizes one sweep.
type Report struct {
	Source    types.EntityTypeRef `json:"source"`
	Target    types.EntityTypeRef `json:"target"`
	Migrated  []string            `json:"migrated"`
	Resolved  int                 `json:"resolved"`
	Failed    []Failure           `json:"failed"`
	StartedAt time.Time           `json:"startedAt"`
	Duration  time.Duration       `json:"duration"`
}

// Sweeper converts every entity of a source type version to a target generation.
type Sweeper struct {
	store   store.EntityStore
	source  types.EntityTypeRef
	target  types.Generation
	filters store.Filters
	dryRun  bool
	logger  log.Logger
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithFilters limits the sweep to matching entities.
func WithFilters(filters store.Filters) Option {
	return func(s *Sweeper) {
		s.filters = filters
	}
}

// WithDryRun converts without writing anything back.
func WithDryRun(dryRun bool) Option {
	return func(s *Sweeper) {
		s.dryRun = dryRun
	}
}

// WithLogger sets the sweeper logger.
func WithLogger(logger log.Logger) Option {
	return func(s *Sweeper) {
		s.logger = logger
	}
}

// NewSweeper creates a sweeper that moves entities of source to target.
func NewSweeper(entities store.EntityStore, source types.EntityTypeRef, target types.Generation, opts ...Option) *Sweeper {
	s := &Sweeper{
		store:  entities,
		source: source,
		target: target,
		logger: log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("migration")
	return s
}

// Run performs one sweep. A failure on one entity is recorded in the report and the
// sweep moves on; only a failure to list entities aborts it.
func (s *Sweeper) Run(ctx context.Context) (*Report, error) {
	targetRef := s.source
	targetRef.Version = string(s.target)

	report := &Report{
		Source:    s.source,
		Target:    targetRef,
		Migrated:  []string{},
		Failed:    []Failure{},
		StartedAt: time.Now(),
	}

	if s.source == targetRef {
		return report, nil
	}

	// Collect first: migrated entities leave the source listing, which would shift
	// later pages while iterating.
	var pending []*types.ClusterEntity
	for entity, err := range s.store.ListByType(ctx, s.source, s.filters) {
		if err != nil {
			return report, fmt.Errorf("failed to list %s entities: %w", s.source.ID(), err)
		}
		pending = append(pending, entity)
	}

	s.logger.Info("Starting schema migration",
		log.Str("source", s.source.ID()),
		log.Str("target", targetRef.ID()),
		log.Int("entities", len(pending)),
		log.Bool("dryRun", s.dryRun))

	for _, entity := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		resolved, err := s.migrate(ctx, entity)
		if err != nil {
			s.logger.Warn("Failed to migrate entity",
				log.Str("id", entity.ID),
				log.Str("name", entity.Name),
				log.Err(err))
			report.Failed = append(report.Failed, Failure{ID: entity.ID, Name: entity.Name, Error: err.Error()})
			continue
		}
		report.Migrated = append(report.Migrated, entity.ID)
		if resolved {
			report.Resolved++
		}
	}

	report.Duration = time.Since(report.StartedAt)
	s.logger.Info("Schema migration finished",
		log.Int("migrated", len(report.Migrated)),
		log.Int("resolved", report.Resolved),
		log.Int("failed", len(report.Failed)),
		log.Duration("duration", report.Duration))
	return report, nil
}

func (s *Sweeper) migrate(ctx context.Context, entity *types.ClusterEntity) (bool, error) {
	converted, err := convert.Convert(entity, s.target)
	if err != nil {
		return false, err
	}
	if s.dryRun {
		return false, converted.Validate()
	}

	if _, err := s.store.Update(ctx, entity.ID, converted); err != nil {
		return false, fmt.Errorf("failed to update entity: %w", err)
	}
	resolved, err := s.store.Resolve(ctx, entity.ID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve entity: %w", err)
	}
	return resolved.State == types.EntityStateResolved, nil
}
