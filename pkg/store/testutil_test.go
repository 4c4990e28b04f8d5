package store

import (
	"github.com/rzbill/cse/pkg/types"
)

func newV2Entity(name, org string) *types.ClusterEntity {
	native := types.NewV2Entity()
	native.Metadata = types.V2Metadata{Name: name, OrgName: org, VirtualDataCenterName: "vdc1"}
	native.Spec.Distribution.TemplateName = "ubuntu-k8s"
	native.Spec.Settings.OvdcNetwork = "net1"
	return types.NewClusterEntity(native)
}

func newV1Entity(name string) *types.ClusterEntity {
	native := types.NewV1Entity()
	native.Metadata = types.V1Metadata{ClusterName: name, OrgName: "acme", OvdcName: "vdc1"}
	native.Spec.Distribution.TemplateName = "photon"
	native.Spec.Settings.Network = "net1"
	return types.NewClusterEntity(native)
}
