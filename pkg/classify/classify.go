// Package classify decides what kind of change an update request asks for.
package classify

import (
	"github.com/rzbill/cse/pkg/diff"
	"github.com/rzbill/cse/pkg/types"
)

// Operation is the outcome of classifying a diff.
type Operation string

const (
	// NoOp means the request matches the observed cluster.
	NoOp Operation = "NoOp"

	// Resize changes worker or nfs node counts.
	Resize Operation = "Resize"

	// Upgrade changes the node template.
	Upgrade Operation = "Upgrade"
)

// String returns the operation name.
func (o Operation) String() string {
	return string(o)
}

var resizePaths = map[types.FieldPath]bool{
	types.PathWorkersCount: true,
	types.PathNfsCount:     true,
}

var upgradePaths = map[types.FieldPath]bool{
	types.PathTemplateName:     true,
	types.PathTemplateRevision: true,
}

// MutablePaths returns the paths an update may change, sorted.
func MutablePaths() []types.FieldPath {
	return []types.FieldPath{
		types.PathTemplateName,
		types.PathTemplateRevision,
		types.PathNfsCount,
		types.PathWorkersCount,
	}
}

// IsMutable reports whether an update may change p.
func IsMutable(p types.FieldPath) bool {
	return resizePaths[p] || upgradePaths[p]
}

// Classify maps a diff onto an operation. Any differing path outside the mutable
// set fails with an ImmutableFieldError naming every such path in sorted order. A
// diff touching both counts and the template fails with a ConflictingOperationError.
func Classify(result diff.Result) (Operation, error) {
	if len(result) == 0 {
		return NoOp, nil
	}

	var violations []types.FieldViolation
	var isResize, isUpgrade bool
	for _, path := range result.Paths() {
		switch {
		case resizePaths[path]:
			isResize = true
		case upgradePaths[path]:
			isUpgrade = true
		default:
			d := result[path]
			violations = append(violations, types.FieldViolation{Path: path, Actual: d.Actual, Expected: d.Expected})
		}
	}

	if len(violations) > 0 {
		return "", &types.ImmutableFieldError{Violations: violations}
	}
	if isResize && isUpgrade {
		return "", types.NewConflictingOperationError("cannot resize and upgrade simultaneously")
	}
	if isResize {
		return Resize, nil
	}
	return Upgrade, nil
}
