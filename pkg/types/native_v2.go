package types

import (
	"encoding/json"
	"fmt"
)

// V2Entity is a generation 2 native cluster entity.
type V2Entity struct {
	// Cluster flavour
	Kind ClusterKind `json:"kind" yaml:"kind"`

	// API group version, e.g. cse.vmware.com/v2.0
	APIVersion string `json:"apiVersion" yaml:"apiVersion"`

	// Ownership and naming
	Metadata V2Metadata `json:"metadata" yaml:"metadata"`

	// Desired state
	Spec V2Spec `json:"spec" yaml:"spec"`

	// Observed state, absent until the cluster has been reconciled once
	Status *V2Status `json:"status,omitempty" yaml:"status,omitempty"`
}

// V2Metadata names the cluster and where it lives.
type V2Metadata struct {
	Name                  string `json:"name" yaml:"name"`
	OrgName               string `json:"orgName" yaml:"orgName"`
	VirtualDataCenterName string `json:"virtualDataCenterName" yaml:"virtualDataCenterName"`
	Site                  string `json:"site,omitempty" yaml:"site,omitempty"`
}

// V2NodeGroup is the desired size and placement of control plane or worker nodes.
// Nodes are sized either by SizingClass or by CPU and Memory, never both.
type V2NodeGroup struct {
	Count          int    `json:"count" yaml:"count"`
	SizingClass    string `json:"sizingClass,omitempty" yaml:"sizingClass,omitempty"`
	StorageProfile string `json:"storageProfile,omitempty" yaml:"storageProfile,omitempty"`

	// Virtual cpu count
	CPU *int `json:"cpu,omitempty" yaml:"cpu,omitempty"`

	// Memory in MB
	Memory *int `json:"memory,omitempty" yaml:"memory,omitempty"`
}

// V2NfsGroup is the desired size and placement of nfs nodes.
type V2NfsGroup struct {
	Count          int    `json:"count" yaml:"count"`
	SizingClass    string `json:"sizingClass,omitempty" yaml:"sizingClass,omitempty"`
	StorageProfile string `json:"storageProfile,omitempty" yaml:"storageProfile,omitempty"`
}

// V2Topology groups the node groups.
type V2Topology struct {
	ControlPlane V2NodeGroup `json:"controlPlane" yaml:"controlPlane"`
	Workers      V2NodeGroup `json:"workers" yaml:"workers"`
	Nfs          V2NfsGroup  `json:"nfs" yaml:"nfs"`
}

// V2Distribution selects the node template.
type V2Distribution struct {
	TemplateName     string `json:"templateName" yaml:"templateName"`
	TemplateRevision int    `json:"templateRevision" yaml:"templateRevision"`
}

// V2CIDRs is a list of address blocks.
type V2CIDRs struct {
	CIDRBlocks []string `json:"cidrBlocks,omitempty" yaml:"cidrBlocks,omitempty"`
}

// V2Network holds cluster network settings.
type V2Network struct {
	// Request an external address for the control plane
	Expose bool `json:"expose" yaml:"expose"`

	Pods     V2CIDRs `json:"pods" yaml:"pods"`
	Services V2CIDRs `json:"services" yaml:"services"`
}

// V2Settings holds cluster-wide settings.
type V2Settings struct {
	OvdcNetwork       string    `json:"ovdcNetwork" yaml:"ovdcNetwork"`
	SSHKey            string    `json:"sshKey,omitempty" yaml:"sshKey,omitempty"`
	RollbackOnFailure bool      `json:"rollbackOnFailure" yaml:"rollbackOnFailure"`
	Network           V2Network `json:"network" yaml:"network"`
}

// V2Spec is the desired state of a generation 2 cluster.
type V2Spec struct {
	Topology     V2Topology     `json:"topology" yaml:"topology"`
	Distribution V2Distribution `json:"distribution" yaml:"distribution"`
	Settings     V2Settings     `json:"settings" yaml:"settings"`
}

// V2Node is one observed node.
type V2Node struct {
	Name           string `json:"name" yaml:"name"`
	IP             string `json:"ip" yaml:"ip"`
	SizingClass    string `json:"sizingClass,omitempty" yaml:"sizingClass,omitempty"`
	StorageProfile string `json:"storageProfile,omitempty" yaml:"storageProfile,omitempty"`
	CPU            *int   `json:"cpu,omitempty" yaml:"cpu,omitempty"`
	Memory         *int   `json:"memory,omitempty" yaml:"memory,omitempty"`
}

// V2NfsNode is an observed nfs node with its exports.
type V2NfsNode struct {
	V2Node  `yaml:",inline"`
	Exports []string `json:"exports,omitempty" yaml:"exports,omitempty"`
}

// V2Nodes groups the observed nodes by role.
type V2Nodes struct {
	ControlPlane *V2Node     `json:"controlPlane,omitempty" yaml:"controlPlane,omitempty"`
	Workers      []V2Node    `json:"workers,omitempty" yaml:"workers,omitempty"`
	Nfs          []V2NfsNode `json:"nfs,omitempty" yaml:"nfs,omitempty"`
}

// V2CloudProperties records the placement and settings the cluster was actually
// created with.
type V2CloudProperties struct {
	Site                  string         `json:"site,omitempty" yaml:"site,omitempty"`
	OrgName               string         `json:"orgName" yaml:"orgName"`
	VirtualDataCenterName string         `json:"virtualDataCenterName" yaml:"virtualDataCenterName"`
	OvdcNetworkName       string         `json:"ovdcNetworkName" yaml:"ovdcNetworkName"`
	Distribution          V2Distribution `json:"distribution" yaml:"distribution"`
	SSHKey                string         `json:"sshKey,omitempty" yaml:"sshKey,omitempty"`
	RollbackOnFailure     bool           `json:"rollbackOnFailure" yaml:"rollbackOnFailure"`
	Exposed               bool           `json:"exposed" yaml:"exposed"`
}

// V2Status is the observed state of a generation 2 cluster.
type V2Status struct {
	Phase         string `json:"phase,omitempty" yaml:"phase,omitempty"`
	Cni           string `json:"cni,omitempty" yaml:"cni,omitempty"`
	Kubernetes    string `json:"kubernetes,omitempty" yaml:"kubernetes,omitempty"`
	DockerVersion string `json:"dockerVersion,omitempty" yaml:"dockerVersion,omitempty"`
	OS            string `json:"os,omitempty" yaml:"os,omitempty"`
	TaskHref      string `json:"taskHref,omitempty" yaml:"taskHref,omitempty"`
	UID           string `json:"uid,omitempty" yaml:"uid,omitempty"`

	// External address of the control plane when the cluster is exposed
	ExternalIP string `json:"externalIp,omitempty" yaml:"externalIp,omitempty"`

	Nodes           *V2Nodes          `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	CloudProperties V2CloudProperties `json:"cloudProperties" yaml:"cloudProperties"`
}

// NewV2Entity returns a generation 2 entity with the schema defaults applied.
func NewV2Entity() *V2Entity {
	return &V2Entity{
		Kind:       ClusterKindNative,
		APIVersion: Generation2.PayloadVersion(),
		Spec:       DefaultV2Spec(),
	}
}

// DefaultV2Spec returns a spec with one control plane node, one worker, no nfs
// nodes and rollback enabled.
func DefaultV2Spec() V2Spec {
	return V2Spec{
		Topology: V2Topology{
			ControlPlane: V2NodeGroup{Count: 1},
			Workers:      V2NodeGroup{Count: 1},
		},
		Settings: V2Settings{RollbackOnFailure: true},
	}
}

// DecodeV2Entity decodes a generation 2 body on top of the defaults. Unknown fields
// are ignored.
func DecodeV2Entity(data []byte) (*V2Entity, error) {
	e := NewV2Entity()
	if err := json.Unmarshal(data, e); err != nil {
		return nil, NewMalformedPayloadError("cannot decode generation 2 entity", err)
	}
	return e, nil
}

func (e *V2Entity) nativeEntity() {}

// Generation implements NativeEntity.
func (e *V2Entity) Generation() Generation { return Generation2 }

// ClusterName implements NativeEntity.
func (e *V2Entity) ClusterName() string { return e.Metadata.Name }

// ClusterKind implements NativeEntity.
func (e *V2Entity) ClusterKind() ClusterKind { return e.Kind }

// OrgName implements NativeEntity.
func (e *V2Entity) OrgName() string { return e.Metadata.OrgName }

// VDCName implements NativeEntity.
func (e *V2Entity) VDCName() string { return e.Metadata.VirtualDataCenterName }

// HasStatus implements NativeEntity.
func (e *V2Entity) HasStatus() bool { return e.Status != nil }

// Validate checks required fields, counts and sizing rules.
func (e *V2Entity) Validate() error {
	if e.Metadata.Name == "" {
		return NewValidationError("metadata.name is required")
	}
	if e.Metadata.OrgName == "" {
		return NewValidationError("metadata.orgName is required")
	}
	if e.Metadata.VirtualDataCenterName == "" {
		return NewValidationError("metadata.virtualDataCenterName is required")
	}
	return e.Spec.Validate()
}

// Validate checks counts and sizing rules of the spec.
func (s *V2Spec) Validate() error {
	if s.Topology.ControlPlane.Count != 1 {
		return NewValidationError(fmt.Sprintf("topology.controlPlane.count must be 1, got %d", s.Topology.ControlPlane.Count))
	}
	if s.Topology.Workers.Count < 0 {
		return NewValidationError("topology.workers.count must not be negative")
	}
	if s.Topology.Nfs.Count < 0 {
		return NewValidationError("topology.nfs.count must not be negative")
	}
	if err := s.Topology.ControlPlane.validateSizing("topology.controlPlane"); err != nil {
		return err
	}
	if err := s.Topology.Workers.validateSizing("topology.workers"); err != nil {
		return err
	}
	if s.Distribution.TemplateName == "" {
		return NewValidationError("distribution.templateName is required")
	}
	if s.Distribution.TemplateRevision < 0 {
		return NewValidationError("distribution.templateRevision must not be negative")
	}
	if s.Settings.OvdcNetwork == "" {
		return NewValidationError("settings.ovdcNetwork is required")
	}
	return nil
}

func (g *V2NodeGroup) validateSizing(path string) error {
	if g.SizingClass != "" && (g.CPU != nil || g.Memory != nil) {
		return NewValidationError(fmt.Sprintf("%s: sizingClass cannot be combined with cpu or memory", path))
	}
	if g.CPU != nil && *g.CPU <= 0 {
		return NewValidationError(fmt.Sprintf("%s.cpu must be positive", path))
	}
	if g.Memory != nil && *g.Memory <= 0 {
		return NewValidationError(fmt.Sprintf("%s.memory must be positive", path))
	}
	return nil
}
