// Package update plans an update request against the stored cluster.
package update

import (
	"context"
	"fmt"

	"github.com/rzbill/cse/pkg/classify"
	"github.com/rzbill/cse/pkg/convert"
	"github.com/rzbill/cse/pkg/diff"
	"github.com/rzbill/cse/pkg/log"
	"github.com/rzbill/cse/pkg/payload"
	"github.com/rzbill/cse/pkg/policy"
	"github.com/rzbill/cse/pkg/reference"
	"github.com/rzbill/cse/pkg/types"
)

// EntityGetter is the part of the entity store the planner reads from.
type EntityGetter interface {
	Get(ctx context.Context, id string) (*types.ClusterEntity, error)
}

// Plan is the outcome of planning one update request.
type Plan struct {
	// Operation is what the request asks for
	Operation classify.Operation `json:"operation"`

	// Diff holds every compared leaf that differs, after exclusions
	Diff diff.Result `json:"diff"`

	// Current is the stored entity, in generation 2
	Current *types.V2Entity `json:"current"`

	// Requested is the request body, in generation 2
	Requested *types.V2Entity `json:"requested"`

	// Reference is the spec rebuilt from the observed status
	Reference *reference.Spec `json:"reference"`
}

// Planner turns a raw update request into a Plan.
type Planner struct {
	store  EntityGetter
	lookup policy.SizingPolicyLookup
	logger log.Logger
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithLogger sets the planner logger.
func WithLogger(logger log.Logger) PlannerOption {
	return func(p *Planner) {
		p.logger = logger
	}
}

// NewPlanner creates a planner.
func NewPlanner(store EntityGetter, lookup policy.SizingPolicyLookup, opts ...PlannerOption) *Planner {
	p := &Planner{
		store:  store,
		lookup: lookup,
		logger: log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.WithComponent("update-planner")
	return p
}

// Plan decodes raw, loads the stored entity and classifies the change. Errors are
// returned as they occur and never retried here.
func (p *Planner) Plan(ctx context.Context, entityID string, raw []byte) (*Plan, error) {
	req, err := payload.Decode(raw)
	if err != nil {
		return nil, err
	}

	stored, err := p.store.Get(ctx, entityID)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("Planning update",
		log.Str("id", entityID),
		log.Str("payloadVersion", req.PayloadVersion.String()),
		log.Str("storedVersion", stored.Generation().String()))

	return p.PlanEntity(ctx, stored.Entity, req.Entity)
}

// PlanEntity classifies requested against current without touching the store.
func (p *Planner) PlanEntity(ctx context.Context, current, requested types.NativeEntity) (*Plan, error) {
	cur, err := convert.ToV2(current)
	if err != nil {
		return nil, err
	}
	in, err := convert.ToV2(requested)
	if err != nil {
		return nil, err
	}
	if cur.Status == nil {
		return nil, reference.ErrStatusNotObserved
	}

	defaultPolicy := ""
	if cur.Kind.SupportsDefaultSizing() && p.lookup != nil {
		defaultPolicy, err = p.lookup.DefaultSizingPolicyName(ctx, cur.Metadata.OrgName, cur.Metadata.VirtualDataCenterName)
		if err != nil {
			return nil, fmt.Errorf("failed to get default sizing policy: %w", err)
		}
	}

	ref, err := reference.Synthesize(cur.Status, defaultPolicy)
	if err != nil {
		return nil, err
	}

	excluded := Exclusions(&in.Spec, ref, cur.Kind)
	result, err := diff.Diff(&in.Spec, ref, excluded)
	if err != nil {
		return nil, err
	}

	op, err := classify.Classify(result)
	if err != nil {
		p.logger.Info("Rejected update request",
			log.Str("cluster", cur.Metadata.Name),
			log.Any("paths", result.Paths()),
			log.Err(err))
		return nil, err
	}

	p.logger.Info("Classified update request",
		log.Str("cluster", cur.Metadata.Name),
		log.Str("operation", op.String()),
		log.Any("paths", result.Paths()))

	return &Plan{
		Operation: op,
		Diff:      result,
		Current:   cur,
		Requested: in,
		Reference: ref,
	}, nil
}
