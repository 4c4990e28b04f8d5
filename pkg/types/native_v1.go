package types

import (
	"encoding/json"
	"fmt"
)

// V1Entity is a generation 1 native cluster entity. Field names are snake_case on the wire.
type V1Entity struct {
	// Cluster flavour
	Kind ClusterKind `json:"kind" yaml:"kind"`

	// API group version, e.g. cse.vmware.com/v1.0
	APIVersion string `json:"api_version" yaml:"api_version"`

	// Ownership and naming
	Metadata V1Metadata `json:"metadata" yaml:"metadata"`

	// Desired state
	Spec V1Spec `json:"spec" yaml:"spec"`

	// Observed state, absent until the cluster has been reconciled once
	Status *V1Status `json:"status,omitempty" yaml:"status,omitempty"`
}

// V1Metadata names the cluster and where it lives.
type V1Metadata struct {
	ClusterName string `json:"cluster_name" yaml:"cluster_name"`
	OrgName     string `json:"org_name" yaml:"org_name"`
	OvdcName    string `json:"ovdc_name" yaml:"ovdc_name"`
}

// V1NodeGroup is the desired size and placement of a group of nodes.
type V1NodeGroup struct {
	// Number of nodes in the group
	Count int `json:"count" yaml:"count"`

	// Compute policy name
	SizingClass string `json:"sizing_class,omitempty" yaml:"sizing_class,omitempty"`

	// Storage profile name
	StorageProfile string `json:"storage_profile,omitempty" yaml:"storage_profile,omitempty"`
}

// V1Distribution selects the node template.
type V1Distribution struct {
	TemplateName     string `json:"template_name" yaml:"template_name"`
	TemplateRevision int    `json:"template_revision" yaml:"template_revision"`
}

// V1Settings holds cluster-wide settings.
type V1Settings struct {
	// Org VDC network the nodes attach to
	Network string `json:"network" yaml:"network"`

	// Public key installed on every node
	SSHKey string `json:"ssh_key,omitempty" yaml:"ssh_key,omitempty"`

	// Delete partially created resources on failure
	RollbackOnFailure bool `json:"rollback_on_failure" yaml:"rollback_on_failure"`

	// Request an external address for the control plane
	Expose bool `json:"expose,omitempty" yaml:"expose,omitempty"`
}

// V1Spec is the desired state of a generation 1 cluster.
type V1Spec struct {
	ControlPlane V1NodeGroup    `json:"control_plane" yaml:"control_plane"`
	Workers      V1NodeGroup    `json:"workers" yaml:"workers"`
	Nfs          V1NodeGroup    `json:"nfs" yaml:"nfs"`
	Distribution V1Distribution `json:"k8_distribution" yaml:"k8_distribution"`
	Settings     V1Settings     `json:"settings" yaml:"settings"`
}

// V1Node is one observed node.
type V1Node struct {
	Name           string `json:"name" yaml:"name"`
	IP             string `json:"ip" yaml:"ip"`
	SizingClass    string `json:"sizing_class,omitempty" yaml:"sizing_class,omitempty"`
	StorageProfile string `json:"storage_profile,omitempty" yaml:"storage_profile,omitempty"`
}

// V1NfsNode is an observed nfs node with its exports.
type V1NfsNode struct {
	V1Node `yaml:",inline"`

	// Exported paths, possibly in the string form written by older releases
	Exports LegacyExports `json:"exports" yaml:"exports"`
}

// V1Nodes groups the observed nodes by role.
type V1Nodes struct {
	ControlPlane *V1Node     `json:"control_plane,omitempty" yaml:"control_plane,omitempty"`
	Workers      []V1Node    `json:"workers,omitempty" yaml:"workers,omitempty"`
	Nfs          []V1NfsNode `json:"nfs,omitempty" yaml:"nfs,omitempty"`
}

// V1Status is the observed state of a generation 1 cluster.
type V1Status struct {
	// Lifecycle phase, e.g. CREATE:SUCCEEDED
	Phase string `json:"phase,omitempty" yaml:"phase,omitempty"`

	// Container network plugin and version
	Cni string `json:"cni,omitempty" yaml:"cni,omitempty"`

	// Link to the last platform task
	TaskHref string `json:"task_href,omitempty" yaml:"task_href,omitempty"`

	// Kubernetes version
	Kubernetes string `json:"kubernetes,omitempty" yaml:"kubernetes,omitempty"`

	DockerVersion string `json:"docker_version,omitempty" yaml:"docker_version,omitempty"`
	OS            string `json:"os,omitempty" yaml:"os,omitempty"`

	// Whether the control plane ip is an external address
	Exposed bool `json:"exposed,omitempty" yaml:"exposed,omitempty"`

	// Observed nodes
	Nodes *V1Nodes `json:"nodes,omitempty" yaml:"nodes,omitempty"`
}

// NewV1Entity returns a generation 1 entity with the schema defaults applied.
func NewV1Entity() *V1Entity {
	return &V1Entity{
		Kind:       ClusterKindNative,
		APIVersion: Generation1.PayloadVersion(),
		Spec: V1Spec{
			ControlPlane: V1NodeGroup{Count: 1},
			Workers:      V1NodeGroup{Count: 1},
			Settings:     V1Settings{RollbackOnFailure: true},
		},
	}
}

// DecodeV1Entity decodes a generation 1 body on top of the defaults. Unknown fields
// are ignored.
func DecodeV1Entity(data []byte) (*V1Entity, error) {
	e := NewV1Entity()
	if err := json.Unmarshal(data, e); err != nil {
		return nil, NewMalformedPayloadError("cannot decode generation 1 entity", err)
	}
	return e, nil
}

func (e *V1Entity) nativeEntity() {}

// Generation implements NativeEntity.
func (e *V1Entity) Generation() Generation { return Generation1 }

// ClusterName implements NativeEntity.
func (e *V1Entity) ClusterName() string { return e.Metadata.ClusterName }

// ClusterKind implements NativeEntity.
func (e *V1Entity) ClusterKind() ClusterKind { return e.Kind }

// OrgName implements NativeEntity.
func (e *V1Entity) OrgName() string { return e.Metadata.OrgName }

// VDCName implements NativeEntity.
func (e *V1Entity) VDCName() string { return e.Metadata.OvdcName }

// HasStatus implements NativeEntity.
func (e *V1Entity) HasStatus() bool { return e.Status != nil }

// Validate checks required fields and counts.
func (e *V1Entity) Validate() error {
	if e.Metadata.ClusterName == "" {
		return NewValidationError("metadata.cluster_name is required")
	}
	if e.Metadata.OrgName == "" {
		return NewValidationError("metadata.org_name is required")
	}
	if e.Metadata.OvdcName == "" {
		return NewValidationError("metadata.ovdc_name is required")
	}
	if e.Spec.ControlPlane.Count != 1 {
		return NewValidationError(fmt.Sprintf("control_plane.count must be 1, got %d", e.Spec.ControlPlane.Count))
	}
	if e.Spec.Workers.Count < 0 {
		return NewValidationError("workers.count must not be negative")
	}
	if e.Spec.Nfs.Count < 0 {
		return NewValidationError("nfs.count must not be negative")
	}
	if e.Spec.Distribution.TemplateName == "" {
		return NewValidationError("k8_distribution.template_name is required")
	}
	if e.Spec.Distribution.TemplateRevision < 0 {
		return NewValidationError("k8_distribution.template_revision must not be negative")
	}
	if e.Spec.Settings.Network == "" {
		return NewValidationError("settings.network is required")
	}
	return nil
}
