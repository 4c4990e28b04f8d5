package convert

import (
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/rzbill/cse/pkg/types"
)

// V2ToV1 migrates a generation 2 entity backward. Site, uid, per-node cpu/memory,
// CIDR blocks and the cloud properties generation 1 has no field for are dropped.
// An exposed cluster's external address becomes the control plane ip; generation 1
// has no field for the internal address, so V1ToV2 cannot restore it. A node with no
// exports list keeps none.
func V2ToV1(src *types.V2Entity) (*types.V1Entity, error) {
	dst := &types.V1Entity{
		Kind:       src.Kind,
		APIVersion: types.Generation1.PayloadVersion(),
		Metadata: types.V1Metadata{
			ClusterName: src.Metadata.Name,
			OrgName:     src.Metadata.OrgName,
			OvdcName:    src.Metadata.VirtualDataCenterName,
		},
		Spec: types.V1Spec{
			ControlPlane: nodeGroupToV1(src.Spec.Topology.ControlPlane),
			Workers:      nodeGroupToV1(src.Spec.Topology.Workers),
			Nfs: types.V1NodeGroup{
				Count:          src.Spec.Topology.Nfs.Count,
				SizingClass:    src.Spec.Topology.Nfs.SizingClass,
				StorageProfile: src.Spec.Topology.Nfs.StorageProfile,
			},
			Distribution: types.V1Distribution{
				TemplateName:     src.Spec.Distribution.TemplateName,
				TemplateRevision: src.Spec.Distribution.TemplateRevision,
			},
			Settings: types.V1Settings{
				Network:           src.Spec.Settings.OvdcNetwork,
				SSHKey:            src.Spec.Settings.SSHKey,
				RollbackOnFailure: src.Spec.Settings.RollbackOnFailure,
				Expose:            src.Spec.Settings.Network.Expose,
			},
		},
	}

	if src.Status == nil {
		return dst, nil
	}

	status := &types.V1Status{
		Phase:         src.Status.Phase,
		Cni:           src.Status.Cni,
		TaskHref:      src.Status.TaskHref,
		Kubernetes:    src.Status.Kubernetes,
		DockerVersion: src.Status.DockerVersion,
		OS:            src.Status.OS,
		Exposed:       src.Status.CloudProperties.Exposed,
	}

	if src.Status.Nodes != nil {
		nodes, err := nodesToV1(src.Status.Nodes)
		if err != nil {
			return nil, err
		}
		if status.Exposed && src.Status.ExternalIP != "" && nodes.ControlPlane != nil {
			nodes.ControlPlane.IP = src.Status.ExternalIP
		}
		status.Nodes = nodes
	}

	dst.Status = status
	return dst, nil
}

func nodeGroupToV1(g types.V2NodeGroup) types.V1NodeGroup {
	return types.V1NodeGroup{
		Count:          g.Count,
		SizingClass:    g.SizingClass,
		StorageProfile: g.StorageProfile,
	}
}

func nodesToV1(src *types.V2Nodes) (*types.V1Nodes, error) {
	out := &types.V1Nodes{}

	if src.ControlPlane != nil {
		cp := &types.V1Node{}
		if err := copier.Copy(cp, src.ControlPlane); err != nil {
			return nil, fmt.Errorf("failed to convert control plane node: %w", err)
		}
		out.ControlPlane = cp
	}

	for _, w := range src.Workers {
		var node types.V1Node
		if err := copier.Copy(&node, &w); err != nil {
			return nil, fmt.Errorf("failed to convert worker node %s: %w", w.Name, err)
		}
		out.Workers = append(out.Workers, node)
	}

	for _, n := range src.Nfs {
		var node types.V1NfsNode
		if err := copier.Copy(&node.V1Node, &n.V2Node); err != nil {
			return nil, fmt.Errorf("failed to convert nfs node %s: %w", n.Name, err)
		}
		if n.Exports != nil {
			node.Exports = types.NewEncodedExports(n.Exports)
		}
		out.Nfs = append(out.Nfs, node)
	}

	return out, nil
}
