// Package reference rebuilds a spec-shaped view of a cluster from its observed status.
package reference

import (
	"errors"

	"github.com/rzbill/cse/pkg/types"
)

// ErrStatusNotObserved is returned when the entity has no recorded status to build a
// reference from.
var ErrStatusNotObserved = errors.New("cluster status has not been observed yet")

// Spec is the observed shape of a cluster expressed as a generation 2 spec, plus
// flags telling whether a group's sizing class is the platform default.
type Spec struct {
	types.V2Spec

	// IsDefaultSizingControlPlane is true when the control plane runs on the
	// virtual datacenter's default compute policy.
	IsDefaultSizingControlPlane bool `json:"-"`

	// IsDefaultSizingWorkers is true when the workers run on the default compute policy.
	IsDefaultSizingWorkers bool `json:"-"`
}

// Synthesize builds the reference spec from status. Counts come from the observed
// nodes, group sizing and placement from the first node of each group and
// distribution and settings from the cloud properties. defaultSizingPolicy is the
// virtual datacenter's current default compute policy name, looked up by the caller
// for this request; an empty name never matches.
func Synthesize(status *types.V2Status, defaultSizingPolicy string) (*Spec, error) {
	if status == nil {
		return nil, ErrStatusNotObserved
	}

	nodes := status.Nodes
	if nodes == nil {
		nodes = &types.V2Nodes{}
	}
	props := status.CloudProperties

	spec := &Spec{
		V2Spec: types.V2Spec{
			Topology: types.V2Topology{
				ControlPlane: groupFromNode(nodes.ControlPlane, 1),
				Workers:      groupFromNodes(nodes.Workers),
				Nfs:          nfsGroupFromNodes(nodes.Nfs),
			},
			Distribution: props.Distribution,
			Settings: types.V2Settings{
				OvdcNetwork:       props.OvdcNetworkName,
				SSHKey:            props.SSHKey,
				RollbackOnFailure: props.RollbackOnFailure,
				Network: types.V2Network{
					Expose: props.Exposed,
				},
			},
		},
	}

	if defaultSizingPolicy != "" {
		spec.IsDefaultSizingControlPlane = spec.Topology.ControlPlane.SizingClass == defaultSizingPolicy
		spec.IsDefaultSizingWorkers = spec.Topology.Workers.Count > 0 &&
			spec.Topology.Workers.SizingClass == defaultSizingPolicy
	}

	return spec, nil
}

func groupFromNode(node *types.V2Node, count int) types.V2NodeGroup {
	group := types.V2NodeGroup{Count: count}
	if node == nil {
		return group
	}
	group.SizingClass = node.SizingClass
	group.StorageProfile = node.StorageProfile
	group.CPU = copyInt(node.CPU)
	group.Memory = copyInt(node.Memory)
	return group
}

func groupFromNodes(nodes []types.V2Node) types.V2NodeGroup {
	if len(nodes) == 0 {
		return types.V2NodeGroup{}
	}
	return groupFromNode(&nodes[0], len(nodes))
}

func nfsGroupFromNodes(nodes []types.V2NfsNode) types.V2NfsGroup {
	if len(nodes) == 0 {
		return types.V2NfsGroup{}
	}
	return types.V2NfsGroup{
		Count:          len(nodes),
		SizingClass:    nodes[0].SizingClass,
		StorageProfile: nodes[0].StorageProfile,
	}
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
