package update

import (
	"testing"

	"github.com/rzbill/cse/pkg/reference"
	"github.com/rzbill/cse/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestExclusions(t *testing.T) {
	refWith := func(workers, nfs, revision int) *reference.Spec {
		ref := &reference.Spec{V2Spec: types.DefaultV2Spec()}
		ref.Topology.Workers.Count = workers
		ref.Topology.Nfs.Count = nfs
		ref.Distribution.TemplateRevision = revision
		return ref
	}

	tests := []struct {
		name     string
		input    types.V2Spec
		ref      *reference.Spec
		kind     types.ClusterKind
		included []types.FieldPath
		excluded []types.FieldPath
	}{
		{
			name:     "cidrs always",
			input:    types.DefaultV2Spec(),
			ref:      refWith(2, 1, 1),
			kind:     types.ClusterKindNative,
			excluded: []types.FieldPath{types.PathPodCIDRs, types.PathServiceCIDRs},
			included: []types.FieldPath{types.PathWorkersSizingClass, types.PathNfsSizingClass, types.PathTemplateRevision},
		},
		{
			name:     "no workers observed",
			input:    types.DefaultV2Spec(),
			ref:      refWith(0, 1, 1),
			kind:     types.ClusterKindNative,
			excluded: []types.FieldPath{types.PathWorkersSizingClass, types.PathWorkersStorageProfile, types.PathWorkersCPU, types.PathWorkersMemory},
			included: []types.FieldPath{types.PathWorkersCount},
		},
		{
			name:     "no nfs observed",
			input:    types.DefaultV2Spec(),
			ref:      refWith(2, 0, 1),
			kind:     types.ClusterKindNative,
			excluded: []types.FieldPath{types.PathNfsSizingClass, types.PathNfsStorageProfile},
			included: []types.FieldPath{types.PathNfsCount},
		},
		{
			name:     "unset revision on default sizing kind",
			input:    types.DefaultV2Spec(),
			ref:      refWith(2, 1, 1),
			kind:     types.ClusterKindTKGm,
			excluded: []types.FieldPath{types.PathTemplateRevision},
		},
		{
			name:     "unset revision on native kind",
			input:    types.DefaultV2Spec(),
			ref:      refWith(2, 1, 1),
			kind:     types.ClusterKindNative,
			included: []types.FieldPath{types.PathTemplateRevision},
		},
		{
			name:     "unset revision against revision 2",
			input:    types.DefaultV2Spec(),
			ref:      refWith(2, 1, 2),
			kind:     types.ClusterKindTKGm,
			included: []types.FieldPath{types.PathTemplateRevision},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			got := Exclusions(&input, tt.ref, tt.kind)
			for _, p := range tt.excluded {
				assert.True(t, got.Has(p), "expected %s excluded", p)
			}
			for _, p := range tt.included {
				assert.False(t, got.Has(p), "expected %s compared", p)
			}
		})
	}
}

func TestExclusionsDefaultSizing(t *testing.T) {
	ref := &reference.Spec{V2Spec: types.DefaultV2Spec(), IsDefaultSizingControlPlane: true, IsDefaultSizingWorkers: true}

	input := types.DefaultV2Spec()
	got := Exclusions(&input, ref, types.ClusterKindTKGm)
	assert.True(t, got.Has(types.PathControlPlaneSizingClass))
	assert.True(t, got.Has(types.PathWorkersSizingClass))

	input.Topology.Workers.SizingClass = "large"
	got = Exclusions(&input, ref, types.ClusterKindTKGm)
	assert.True(t, got.Has(types.PathControlPlaneSizingClass))
	assert.False(t, got.Has(types.PathWorkersSizingClass))
}
