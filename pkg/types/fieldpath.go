package types

// FieldPath is a dotted path to one leaf field of a spec, built from JSON field names.
type FieldPath string

// FieldDiff holds the two sides of a differing leaf.
type FieldDiff struct {
	Actual   any `json:"actual" yaml:"actual"`
	Expected any `json:"expected" yaml:"expected"`
}

// Leaf paths of a generation 2 cluster spec.
const (
	PathControlPlaneCount          FieldPath = "topology.controlPlane.count"
	PathControlPlaneSizingClass    FieldPath = "topology.controlPlane.sizingClass"
	PathControlPlaneStorageProfile FieldPath = "topology.controlPlane.storageProfile"
	PathControlPlaneCPU            FieldPath = "topology.controlPlane.cpu"
	PathControlPlaneMemory         FieldPath = "topology.controlPlane.memory"

	PathWorkersCount          FieldPath = "topology.workers.count"
	PathWorkersSizingClass    FieldPath = "topology.workers.sizingClass"
	PathWorkersStorageProfile FieldPath = "topology.workers.storageProfile"
	PathWorkersCPU            FieldPath = "topology.workers.cpu"
	PathWorkersMemory         FieldPath = "topology.workers.memory"

	PathNfsCount          FieldPath = "topology.nfs.count"
	PathNfsSizingClass    FieldPath = "topology.nfs.sizingClass"
	PathNfsStorageProfile FieldPath = "topology.nfs.storageProfile"

	PathTemplateName     FieldPath = "distribution.templateName"
	PathTemplateRevision FieldPath = "distribution.templateRevision"

	PathNetwork           FieldPath = "settings.ovdcNetwork"
	PathSSHKey            FieldPath = "settings.sshKey"
	PathRollbackOnFailure FieldPath = "settings.rollbackOnFailure"
	PathNetworkExpose     FieldPath = "settings.network.expose"
	PathPodCIDRs          FieldPath = "settings.network.pods.cidrBlocks"
	PathServiceCIDRs      FieldPath = "settings.network.services.cidrBlocks"
)
