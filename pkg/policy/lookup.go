// Package policy looks up the default compute policy of a virtual datacenter.
package policy

import (
	"context"
	"errors"
	"fmt"
)

// SizingPolicyLookup returns the name of the compute policy the platform assigns to
// nodes of a virtual datacenter when a request gives no sizing class.
type SizingPolicyLookup interface {
	DefaultSizingPolicyName(ctx context.Context, org, vdc string) (string, error)
}

// LookupFunc adapts a function to SizingPolicyLookup.
type LookupFunc func(ctx context.Context, org, vdc string) (string, error)

// DefaultSizingPolicyName calls f.
func (f LookupFunc) DefaultSizingPolicyName(ctx context.Context, org, vdc string) (string, error) {
	return f(ctx, org, vdc)
}

// TransientError marks a lookup failure worth retrying, such as a timeout talking to
// the platform.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient lookup failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Transient marks err as retryable. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient checks if an error is a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
