package update

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rzbill/cse/pkg/classify"
	"github.com/rzbill/cse/pkg/convert"
	"github.com/rzbill/cse/pkg/log"
	"github.com/rzbill/cse/pkg/policy"
	"github.com/rzbill/cse/pkg/reference"
	"github.com/rzbill/cse/pkg/store"
	"github.com/rzbill/cse/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func observedCluster(kind types.ClusterKind) *types.V2Entity {
	e := types.NewV2Entity()
	e.Kind = kind
	e.Metadata = types.V2Metadata{Name: "alpha", OrgName: "acme", VirtualDataCenterName: "vdc1"}
	e.Spec.Topology.ControlPlane = types.V2NodeGroup{Count: 1, SizingClass: "small"}
	e.Spec.Topology.Workers = types.V2NodeGroup{Count: 2, SizingClass: "small"}
	e.Spec.Distribution = types.V2Distribution{TemplateName: "ubuntu-k8s", TemplateRevision: 1}
	e.Spec.Settings.OvdcNetwork = "net1"
	e.Status = &types.V2Status{
		Phase: "CREATE:SUCCEEDED",
		Nodes: &types.V2Nodes{
			ControlPlane: &types.V2Node{Name: "mstr-1", IP: "10.0.0.2", SizingClass: "small"},
			Workers: []types.V2Node{
				{Name: "node-1", IP: "10.0.0.3", SizingClass: "small"},
				{Name: "node-2", IP: "10.0.0.4", SizingClass: "small"},
			},
		},
		CloudProperties: types.V2CloudProperties{
			OrgName:               "acme",
			VirtualDataCenterName: "vdc1",
			OvdcNetworkName:       "net1",
			Distribution:          types.V2Distribution{TemplateName: "ubuntu-k8s", TemplateRevision: 1},
			RollbackOnFailure:     true,
		},
	}
	return e
}

// requestFrom renders the spec of e as a generation 2 request document.
func requestFrom(t *testing.T, e *types.V2Entity, mutate func(*types.V2Entity)) []byte {
	t.Helper()
	req := *e
	req.Status = nil
	mutate(&req)

	data, err := json.Marshal(req)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	doc["payloadVersion"] = types.Generation2.PayloadVersion()
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	return out
}

func setup(t *testing.T, native types.NativeEntity, lookup policy.SizingPolicyLookup) (*Planner, string) {
	t.Helper()
	client := store.NewClient(store.NewMemoryStore(), store.WithLogger(log.NewTestLogger()))
	created, err := client.Create(context.Background(), types.NewClusterEntity(native))
	require.NoError(t, err)
	return NewPlanner(client, lookup, WithLogger(log.NewTestLogger())), created.ID
}

func TestPlanResize(t *testing.T) {
	cluster := observedCluster(types.ClusterKindNative)
	planner, id := setup(t, cluster, nil)

	plan, err := planner.Plan(context.Background(), id, requestFrom(t, cluster, func(e *types.V2Entity) {
		e.Spec.Topology.Workers.Count = 3
	}))
	require.NoError(t, err)
	assert.Equal(t, classify.Resize, plan.Operation)
	assert.Equal(t, []types.FieldPath{types.PathWorkersCount}, plan.Diff.Paths())
	assert.Equal(t, types.FieldDiff{Actual: 3, Expected: 2}, plan.Diff[types.PathWorkersCount])
}

func TestPlanNoOp(t *testing.T) {
	cluster := observedCluster(types.ClusterKindNative)
	planner, id := setup(t, cluster, nil)

	plan, err := planner.Plan(context.Background(), id, requestFrom(t, cluster, func(*types.V2Entity) {}))
	require.NoError(t, err)
	assert.Equal(t, classify.NoOp, plan.Operation)
	assert.Empty(t, plan.Diff)
}

func TestPlanUpgradeFromV1Entity(t *testing.T) {
	cluster := observedCluster(types.ClusterKindNative)
	v1, err := convert.V2ToV1(cluster)
	require.NoError(t, err)
	planner, id := setup(t, v1, nil)

	plan, err := planner.Plan(context.Background(), id, requestFrom(t, cluster, func(e *types.V2Entity) {
		e.Spec.Distribution.TemplateRevision = 2
	}))
	require.NoError(t, err)
	assert.Equal(t, classify.Upgrade, plan.Operation)
}

func TestPlanRejectsImmutableChange(t *testing.T) {
	cluster := observedCluster(types.ClusterKindNative)
	planner, id := setup(t, cluster, nil)

	_, err := planner.Plan(context.Background(), id, requestFrom(t, cluster, func(e *types.V2Entity) {
		e.Spec.Topology.ControlPlane.SizingClass = "large"
	}))
	require.Error(t, err)

	var ife *types.ImmutableFieldError
	require.True(t, errors.As(err, &ife))
	assert.Equal(t, []types.FieldPath{types.PathControlPlaneSizingClass}, ife.Paths())
}

func TestPlanRejectsConflict(t *testing.T) {
	cluster := observedCluster(types.ClusterKindNative)
	planner, id := setup(t, cluster, nil)

	_, err := planner.Plan(context.Background(), id, requestFrom(t, cluster, func(e *types.V2Entity) {
		e.Spec.Topology.Workers.Count = 5
		e.Spec.Distribution.TemplateName = "photon"
	}))
	assert.True(t, types.IsConflictingOperation(err))
}

func TestPlanZeroCountNfsExclusion(t *testing.T) {
	cluster := observedCluster(types.ClusterKindNative)
	planner, id := setup(t, cluster, nil)

	plan, err := planner.Plan(context.Background(), id, requestFrom(t, cluster, func(e *types.V2Entity) {
		e.Spec.Topology.Nfs.SizingClass = "large"
	}))
	require.NoError(t, err)
	assert.Equal(t, classify.NoOp, plan.Operation)
	assert.False(t, plan.Diff.Has(types.PathNfsSizingClass))
}

func TestPlanDefaultSizingTKGm(t *testing.T) {
	cluster := observedCluster(types.ClusterKindTKGm)
	for i := range cluster.Status.Nodes.Workers {
		cluster.Status.Nodes.Workers[i].SizingClass = "system-default"
	}
	cluster.Spec.Topology.Workers.SizingClass = ""

	calls := 0
	lookup := policy.LookupFunc(func(ctx context.Context, org, vdc string) (string, error) {
		calls++
		assert.Equal(t, "acme", org)
		assert.Equal(t, "vdc1", vdc)
		return "system-default", nil
	})
	planner, id := setup(t, cluster, lookup)

	plan, err := planner.Plan(context.Background(), id, requestFrom(t, cluster, func(e *types.V2Entity) {
		e.Spec.Topology.Workers.Count = 4
		e.Spec.Distribution.TemplateRevision = 0
	}))
	require.NoError(t, err)
	assert.Equal(t, classify.Resize, plan.Operation)
	assert.Equal(t, 1, calls)
	assert.True(t, plan.Reference.IsDefaultSizingWorkers)
}

func TestPlanLookupFailure(t *testing.T) {
	cluster := observedCluster(types.ClusterKindTKGm)
	boom := errors.New("platform unavailable")
	planner, id := setup(t, cluster, policy.LookupFunc(func(ctx context.Context, org, vdc string) (string, error) {
		return "", boom
	}))

	_, err := planner.Plan(context.Background(), id, requestFrom(t, cluster, func(*types.V2Entity) {}))
	assert.ErrorIs(t, err, boom)
}

func TestPlanErrors(t *testing.T) {
	cluster := observedCluster(types.ClusterKindNative)
	planner, id := setup(t, cluster, nil)
	ctx := context.Background()

	_, err := planner.Plan(ctx, id, []byte(`{"payloadVersion": "9.0.0"}`))
	assert.True(t, types.IsUnsupportedPayloadVersion(err))

	_, err = planner.Plan(ctx, "urn:vcloud:entity:cse:nativeCluster:none", requestFrom(t, cluster, func(*types.V2Entity) {}))
	assert.True(t, types.IsEntityNotFound(err))

	unobserved := observedCluster(types.ClusterKindNative)
	unobserved.Status = nil
	planner, id = setup(t, unobserved, nil)
	_, err = planner.Plan(ctx, id, requestFrom(t, cluster, func(*types.V2Entity) {}))
	assert.ErrorIs(t, err, reference.ErrStatusNotObserved)
}
