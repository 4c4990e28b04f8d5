package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/rzbill/cse/pkg/log"
	"github.com/siderolabs/go-retry/retry"
)

const (
	// DefaultRetryTimeout bounds the total time spent retrying one lookup.
	DefaultRetryTimeout = 10 * time.Second

	// DefaultRetryInterval is the base back-off unit.
	DefaultRetryInterval = 200 * time.Millisecond
)

// RetryingLookup retries transient failures of another lookup with exponential
// back-off. Errors not marked with Transient are returned after the first attempt.
type RetryingLookup struct {
	next     SizingPolicyLookup
	timeout  time.Duration
	interval time.Duration
	logger   log.Logger
}

// RetryOption configures a RetryingLookup.
type RetryOption func(*RetryingLookup)

// WithRetryTimeout sets the total retry budget.
func WithRetryTimeout(d time.Duration) RetryOption {
	return func(r *RetryingLookup) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithRetryInterval sets the base back-off unit.
func WithRetryInterval(d time.Duration) RetryOption {
	return func(r *RetryingLookup) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithLogger sets the logger used to report retries.
func WithLogger(logger log.Logger) RetryOption {
	return func(r *RetryingLookup) {
		r.logger = logger
	}
}

// NewRetryingLookup wraps next.
func NewRetryingLookup(next SizingPolicyLookup, opts ...RetryOption) *RetryingLookup {
	r := &RetryingLookup{
		next:     next,
		timeout:  DefaultRetryTimeout,
		interval: DefaultRetryInterval,
		logger:   log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.WithComponent("policy-lookup")
	return r
}

// DefaultSizingPolicyName implements SizingPolicyLookup.
func (r *RetryingLookup) DefaultSizingPolicyName(ctx context.Context, org, vdc string) (string, error) {
	var name string
	attempt := 0

	err := retry.Exponential(r.timeout, retry.WithUnits(r.interval)).
		RetryWithContext(ctx, func(ctx context.Context) error {
			attempt++
			result, err := r.next.DefaultSizingPolicyName(ctx, org, vdc)
			if err != nil {
				if IsTransient(err) {
					r.logger.Warn("Default sizing policy lookup failed, retrying",
						log.Str("org", org),
						log.Str("vdc", vdc),
						log.Int("attempt", attempt),
						log.Err(err))
					return retry.ExpectedError(err)
				}
				return err
			}
			name = result
			return nil
		})
	if err != nil {
		return "", fmt.Errorf("failed to look up default sizing policy for %s/%s: %w", org, vdc, err)
	}

	r.logger.Debug("Resolved default sizing policy",
		log.Str("org", org),
		log.Str("vdc", vdc),
		log.Str("policy", name))
	return name, nil
}
