package update

import (
	"github.com/rzbill/cse/pkg/diff"
	"github.com/rzbill/cse/pkg/reference"
	"github.com/rzbill/cse/pkg/types"
)

// Exclusions returns the paths the update diff skips for this request.
//
// CIDR blocks are never observed, so they are always skipped. Sizing and placement
// of a group with no observed nodes is unknown. A default-sizing cluster created
// from revision 1 of a template matches a request that leaves the revision unset.
// When the platform put a group on its default compute policy because the request
// gave cpu/memory, a request without a sizing class matches it.
func Exclusions(input *types.V2Spec, ref *reference.Spec, kind types.ClusterKind) diff.Exclusions {
	excluded := diff.NewExclusions(types.PathPodCIDRs, types.PathServiceCIDRs)

	if ref.Topology.Workers.Count == 0 {
		excluded.Add(
			types.PathWorkersSizingClass,
			types.PathWorkersStorageProfile,
			types.PathWorkersCPU,
			types.PathWorkersMemory,
		)
	}

	if ref.Topology.Nfs.Count == 0 {
		excluded.Add(types.PathNfsSizingClass, types.PathNfsStorageProfile)
	}

	if kind.SupportsDefaultSizing() &&
		ref.Distribution.TemplateRevision == 1 &&
		input.Distribution.TemplateRevision == 0 {
		excluded.Add(types.PathTemplateRevision)
	}

	if ref.IsDefaultSizingControlPlane && input.Topology.ControlPlane.SizingClass == "" {
		excluded.Add(types.PathControlPlaneSizingClass)
	}
	if ref.IsDefaultSizingWorkers && input.Topology.Workers.SizingClass == "" {
		excluded.Add(types.PathWorkersSizingClass)
	}

	return excluded
}
