package convert

import (
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/rzbill/cse/pkg/types"
)

// V1ToV2 migrates a generation 1 entity forward. Fields that only exist in
// generation 2 take their defaults: no site, no uid, no cpu/memory and no CIDRs.
// Cloud properties are rebuilt from the generation 1 metadata and settings.
// For an exposed cluster the control plane ip is the external address, so it fills
// both externalIp and the control plane node ip.
func V1ToV2(src *types.V1Entity) (*types.V2Entity, error) {
	dst := &types.V2Entity{
		Kind:       src.Kind,
		APIVersion: types.Generation2.PayloadVersion(),
		Metadata: types.V2Metadata{
			Name:                  src.Metadata.ClusterName,
			OrgName:               src.Metadata.OrgName,
			VirtualDataCenterName: src.Metadata.OvdcName,
		},
		Spec: types.V2Spec{
			Topology: types.V2Topology{
				ControlPlane: nodeGroupToV2(src.Spec.ControlPlane),
				Workers:      nodeGroupToV2(src.Spec.Workers),
				Nfs: types.V2NfsGroup{
					Count:          src.Spec.Nfs.Count,
					SizingClass:    src.Spec.Nfs.SizingClass,
					StorageProfile: src.Spec.Nfs.StorageProfile,
				},
			},
			Distribution: types.V2Distribution{
				TemplateName:     src.Spec.Distribution.TemplateName,
				TemplateRevision: src.Spec.Distribution.TemplateRevision,
			},
			Settings: types.V2Settings{
				OvdcNetwork:       src.Spec.Settings.Network,
				SSHKey:            src.Spec.Settings.SSHKey,
				RollbackOnFailure: src.Spec.Settings.RollbackOnFailure,
				Network:           types.V2Network{Expose: src.Spec.Settings.Expose},
			},
		},
	}

	if src.Status == nil {
		return dst, nil
	}

	status := &types.V2Status{
		Phase:         src.Status.Phase,
		Cni:           src.Status.Cni,
		Kubernetes:    src.Status.Kubernetes,
		DockerVersion: src.Status.DockerVersion,
		OS:            src.Status.OS,
		TaskHref:      src.Status.TaskHref,
		CloudProperties: types.V2CloudProperties{
			OrgName:               src.Metadata.OrgName,
			VirtualDataCenterName: src.Metadata.OvdcName,
			OvdcNetworkName:       src.Spec.Settings.Network,
			Distribution:          dst.Spec.Distribution,
			SSHKey:                src.Spec.Settings.SSHKey,
			RollbackOnFailure:     src.Spec.Settings.RollbackOnFailure,
			Exposed:               src.Status.Exposed,
		},
	}

	if nodes := src.Status.Nodes; nodes != nil {
		converted, err := nodesToV2(nodes)
		if err != nil {
			return nil, err
		}
		status.Nodes = converted
		if src.Status.Exposed && nodes.ControlPlane != nil {
			status.ExternalIP = nodes.ControlPlane.IP
		}
	}

	dst.Status = status
	return dst, nil
}

func nodeGroupToV2(g types.V1NodeGroup) types.V2NodeGroup {
	return types.V2NodeGroup{
		Count:          g.Count,
		SizingClass:    g.SizingClass,
		StorageProfile: g.StorageProfile,
	}
}

func nodesToV2(src *types.V1Nodes) (*types.V2Nodes, error) {
	out := &types.V2Nodes{}

	if src.ControlPlane != nil {
		cp := &types.V2Node{}
		if err := copier.Copy(cp, src.ControlPlane); err != nil {
			return nil, fmt.Errorf("failed to convert control plane node: %w", err)
		}
		out.ControlPlane = cp
	}

	for _, w := range src.Workers {
		var node types.V2Node
		if err := copier.Copy(&node, &w); err != nil {
			return nil, fmt.Errorf("failed to convert worker node %s: %w", w.Name, err)
		}
		out.Workers = append(out.Workers, node)
	}

	for _, n := range src.Nfs {
		var node types.V2NfsNode
		if err := copier.Copy(&node.V2Node, &n.V1Node); err != nil {
			return nil, fmt.Errorf("failed to convert nfs node %s: %w", n.Name, err)
		}
		node.Exports = n.Exports.Paths()
		out.Nfs = append(out.Nfs, node)
	}

	return out, nil
}
