package diff

import (
	"testing"

	"github.com/rzbill/cse/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseSpec() types.V2Spec {
	spec := types.DefaultV2Spec()
	spec.Topology.ControlPlane.SizingClass = "small"
	spec.Topology.Workers = types.V2NodeGroup{Count: 2, SizingClass: "small"}
	spec.Distribution = types.V2Distribution{TemplateName: "ubuntu-k8s", TemplateRevision: 1}
	spec.Settings.OvdcNetwork = "net1"
	spec.Settings.Network.Pods.CIDRBlocks = []string{"100.96.0.0/11"}
	return spec
}

func TestFlatten(t *testing.T) {
	flat, err := Flatten(baseSpec())
	require.NoError(t, err)

	assert.Equal(t, 2, flat[types.PathWorkersCount])
	assert.Equal(t, "small", flat[types.PathWorkersSizingClass])
	assert.Equal(t, "ubuntu-k8s", flat[types.PathTemplateName])
	assert.Equal(t, []string{"100.96.0.0/11"}, flat[types.PathPodCIDRs])
	assert.Contains(t, flat, types.PathServiceCIDRs)
	assert.Nil(t, flat[types.PathServiceCIDRs])
	assert.Contains(t, flat, types.PathWorkersCPU)
	assert.Nil(t, flat[types.PathWorkersCPU])
	assert.Equal(t, true, flat[types.PathRollbackOnFailure])
}

func TestFlattenPointerLeaf(t *testing.T) {
	spec := baseSpec()
	cpu := 4
	spec.Topology.Workers.CPU = &cpu

	flat, err := Flatten(&spec)
	require.NoError(t, err)
	assert.Equal(t, 4, flat[types.PathWorkersCPU])
}

type embedded struct {
	types.V2Spec
	Flag bool `json:"-"`
}

func TestFlattenEmbedded(t *testing.T) {
	flat, err := Flatten(embedded{V2Spec: baseSpec(), Flag: true})
	require.NoError(t, err)
	assert.Equal(t, 2, flat[types.PathWorkersCount])
	for path := range flat {
		assert.NotContains(t, string(path), "Flag")
		assert.NotContains(t, string(path), "V2Spec")
	}
}

func TestFlattenRejectsNonStruct(t *testing.T) {
	_, err := Flatten(42)
	assert.Error(t, err)

	var nilSpec *types.V2Spec
	_, err = Flatten(nilSpec)
	assert.Error(t, err)
}

func TestDiffReflexive(t *testing.T) {
	spec := baseSpec()
	result, err := Diff(spec, spec, nil)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestDiffWorkerCount(t *testing.T) {
	input := baseSpec()
	input.Topology.Workers.Count = 3

	result, err := Diff(input, baseSpec(), nil)
	require.NoError(t, err)
	assert.Equal(t, Result{
		types.PathWorkersCount: {Actual: 3, Expected: 2},
	}, result)
}

func TestDiffExclusions(t *testing.T) {
	input := baseSpec()
	input.Topology.Nfs.SizingClass = "large"
	input.Settings.Network.Pods.CIDRBlocks = []string{"10.0.0.0/8"}

	result, err := Diff(input, baseSpec(), nil)
	require.NoError(t, err)
	assert.Equal(t, []types.FieldPath{types.PathPodCIDRs, types.PathNfsSizingClass}, result.Paths())

	result, err = Diff(input, baseSpec(), NewExclusions(types.PathNfsSizingClass, types.PathPodCIDRs))
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestDiffIgnoresPathsMissingOnOneSide(t *testing.T) {
	input := baseSpec()
	ref := embedded{V2Spec: baseSpec()}

	type other struct {
		Topology types.V2Topology `json:"topology"`
	}
	result, err := Diff(input, other{Topology: ref.Topology}, nil)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestDiffPaths(t *testing.T) {
	input := baseSpec()
	input.Topology.Workers.Count = 5
	input.Distribution.TemplateName = "photon"
	input.Topology.ControlPlane.SizingClass = "large"

	result, err := Diff(input, baseSpec(), nil)
	require.NoError(t, err)
	assert.Equal(t, []types.FieldPath{
		types.PathTemplateName,
		types.PathControlPlaneSizingClass,
		types.PathWorkersCount,
	}, result.Paths())
	assert.True(t, result.Has(types.PathWorkersCount))
}

func TestExclusions(t *testing.T) {
	e := NewExclusions(types.PathWorkersCPU)
	e.Add(types.PathNfsSizingClass, types.PathWorkersCPU)
	assert.True(t, e.Has(types.PathNfsSizingClass))
	assert.False(t, e.Has(types.PathWorkersCount))
	assert.Equal(t, []types.FieldPath{types.PathNfsSizingClass, types.PathWorkersCPU}, e.Paths())

	var none Exclusions
	assert.False(t, none.Has(types.PathWorkersCount))
}
