package policy

import (
	"context"
	"strings"
)

// StaticLookup answers from a fixed table keyed by "org/vdc", falling back to
// Default for datacenters it does not list.
type StaticLookup struct {
	Default   string
	Overrides map[string]string
}

// NewStaticLookup creates a StaticLookup. Override keys are "org/vdc".
func NewStaticLookup(defaultName string, overrides map[string]string) *StaticLookup {
	normalized := make(map[string]string, len(overrides))
	for k, v := range overrides {
		normalized[strings.ToLower(k)] = v
	}
	return &StaticLookup{Default: defaultName, Overrides: normalized}
}

// DefaultSizingPolicyName implements SizingPolicyLookup.
func (s *StaticLookup) DefaultSizingPolicyName(ctx context.Context, org, vdc string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name, ok := s.Overrides[OverrideKey(org, vdc)]; ok {
		return name, nil
	}
	return s.Default, nil
}

// OverrideKey builds the lookup key for a datacenter.
func OverrideKey(org, vdc string) string {
	return strings.ToLower(org + "/" + vdc)
}
