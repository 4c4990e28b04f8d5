// Package types defines the native cluster entity generations, their envelope and
// the errors shared by conversion, update planning and storage.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EntityState is the schema-check state of a stored entity.
type EntityState string

const (
	// EntityStatePreValidation is the state of an entity that has not been schema checked.
	EntityStatePreValidation EntityState = "PRE_VALIDATION"

	// EntityStateResolved means the entity matched its generation's schema.
	EntityStateResolved EntityState = "RESOLVED"

	// EntityStateResolutionError means the schema check failed.
	EntityStateResolutionError EntityState = "RESOLUTION_ERROR"
)

// ClusterKind is the flavour of cluster an entity describes.
type ClusterKind string

const (
	ClusterKindNative  ClusterKind = "native"
	ClusterKindTKGm    ClusterKind = "TKGm"
	ClusterKindTKGPlus ClusterKind = "TKG+"
)

// SupportsDefaultSizing reports whether the platform may assign its default compute
// policy to node groups of this kind when the request used cpu/memory instead of a
// sizing class.
func (k ClusterKind) SupportsDefaultSizing() bool {
	return k == ClusterKindTKGm
}

const (
	entityTypeIDPrefix = "urn:vcloud:type"
	entityIDPrefix     = "urn:vcloud:entity"

	// DefaultVendor is the vendor segment of cluster entity type ids.
	DefaultVendor = "cse"

	// DefaultNss is the namespace segment of cluster entity type ids.
	DefaultNss = "nativeCluster"
)

// EntityTypeRef identifies an entity type by vendor, namespace and version.
type EntityTypeRef struct {
	Vendor  string `json:"vendor" yaml:"vendor"`
	Nss     string `json:"nss" yaml:"nss"`
	Version string `json:"version" yaml:"version"`
}

// NativeClusterType returns the cluster entity type for a generation.
func NativeClusterType(g Generation) EntityTypeRef {
	return EntityTypeRef{Vendor: DefaultVendor, Nss: DefaultNss, Version: string(g)}
}

// ID renders the urn form, e.g. urn:vcloud:type:cse:nativeCluster:2.0.0.
func (r EntityTypeRef) ID() string {
	return fmt.Sprintf("%s:%s:%s:%s", entityTypeIDPrefix, r.Vendor, r.Nss, r.Version)
}

// EntityIDPrefix returns the prefix of ids of entities of this type's vendor and namespace.
func (r EntityTypeRef) EntityIDPrefix() string {
	return fmt.Sprintf("%s:%s:%s:", entityIDPrefix, r.Vendor, r.Nss)
}

// ParseEntityTypeID parses the urn form of an entity type id.
func ParseEntityTypeID(id string) (EntityTypeRef, error) {
	if !strings.HasPrefix(id, entityTypeIDPrefix+":") {
		return EntityTypeRef{}, NewMalformedPayloadError(fmt.Sprintf("invalid entity type id %q", id), nil)
	}
	parts := strings.Split(strings.TrimPrefix(id, entityTypeIDPrefix+":"), ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return EntityTypeRef{}, NewMalformedPayloadError(fmt.Sprintf("invalid entity type id %q", id), nil)
	}
	return EntityTypeRef{Vendor: parts[0], Nss: parts[1], Version: parts[2]}, nil
}

// Reference names an owner or organization.
type Reference struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
}

// NativeEntity is the generation-specific body of a cluster entity. The set of
// implementations is closed: *V1Entity and *V2Entity.
type NativeEntity interface {
	// Generation returns the schema generation of both spec and status.
	Generation() Generation

	// ClusterName returns the cluster name from metadata.
	ClusterName() string

	// ClusterKind returns the cluster flavour.
	ClusterKind() ClusterKind

	// OrgName returns the owning organization name.
	OrgName() string

	// VDCName returns the owning virtual datacenter name.
	VDCName() string

	// HasStatus reports whether an observed status has been recorded.
	HasStatus() bool

	// Validate checks required fields and field rules of the generation.
	Validate() error

	nativeEntity()
}

// ClusterEntity is the persisted, versioned record of one cluster.
type ClusterEntity struct {
	// ID is assigned by the store
	ID string

	// Name defaults to the cluster name
	Name string

	// EntityType is the urn of the entity type; its version always matches Entity's generation
	EntityType string

	State EntityState
	Owner *Reference
	Org   *Reference

	// Entity holds spec and status of a single generation
	Entity NativeEntity
}

// clusterEntityJSON is the wire form of ClusterEntity.
type clusterEntityJSON struct {
	ID         string          `json:"id,omitempty"`
	Name       string          `json:"name"`
	EntityType string          `json:"entityType"`
	State      EntityState     `json:"state,omitempty"`
	Owner      *Reference      `json:"owner,omitempty"`
	Org        *Reference      `json:"org,omitempty"`
	Entity     json.RawMessage `json:"entity"`
}

// NewClusterEntity wraps a native entity in a new envelope in PRE_VALIDATION state.
func NewClusterEntity(native NativeEntity) *ClusterEntity {
	e := &ClusterEntity{
		State:  EntityStatePreValidation,
		Entity: native,
	}
	if native != nil {
		e.Name = native.ClusterName()
		e.EntityType = NativeClusterType(native.Generation()).ID()
	}
	return e
}

// Generation returns the generation of the wrapped entity.
func (e *ClusterEntity) Generation() Generation {
	if e.Entity == nil {
		return ""
	}
	return e.Entity.Generation()
}

// TypeRef returns the entity type with the version pinned to the wrapped entity's generation.
func (e *ClusterEntity) TypeRef() EntityTypeRef {
	ref, err := ParseEntityTypeID(e.EntityType)
	if err != nil {
		ref = NativeClusterType(e.Generation())
	}
	if g := e.Generation(); g != "" {
		ref.Version = string(g)
	}
	return ref
}

// Validate checks the envelope and the wrapped entity.
func (e *ClusterEntity) Validate() error {
	if e.Entity == nil {
		return NewValidationError("entity body is required")
	}
	if err := e.Entity.Validate(); err != nil {
		return err
	}
	return nil
}

// DeepCopy returns an independent copy of the entity.
func (e *ClusterEntity) DeepCopy() (*ClusterEntity, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to copy entity: %w", err)
	}
	out := &ClusterEntity{}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("failed to copy entity: %w", err)
	}
	return out, nil
}

// MarshalJSON writes the envelope with entityType derived from the wrapped entity.
func (e ClusterEntity) MarshalJSON() ([]byte, error) {
	body := json.RawMessage("null")
	if e.Entity != nil {
		data, err := json.Marshal(e.Entity)
		if err != nil {
			return nil, err
		}
		body = data
	}

	return json.Marshal(clusterEntityJSON{
		ID:         e.ID,
		Name:       e.Name,
		EntityType: e.TypeRef().ID(),
		State:      e.State,
		Owner:      e.Owner,
		Org:        e.Org,
		Entity:     body,
	})
}

// UnmarshalJSON selects the entity variant from the version in entityType.
func (e *ClusterEntity) UnmarshalJSON(data []byte) error {
	var raw clusterEntityJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return NewMalformedPayloadError("cannot decode cluster entity", err)
	}

	ref, err := ParseEntityTypeID(raw.EntityType)
	if err != nil {
		return err
	}
	gen, err := ParseGeneration(ref.Version)
	if err != nil {
		return err
	}
	native, err := DecodeNativeEntity(gen, raw.Entity)
	if err != nil {
		return err
	}

	*e = ClusterEntity{
		ID:         raw.ID,
		Name:       raw.Name,
		EntityType: raw.EntityType,
		State:      raw.State,
		Owner:      raw.Owner,
		Org:        raw.Org,
		Entity:     native,
	}
	return nil
}

// MarshalYAML renders the same document as MarshalJSON.
func (e ClusterEntity) MarshalYAML() (interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeNativeEntity decodes a native entity body of the given generation.
func DecodeNativeEntity(gen Generation, data []byte) (NativeEntity, error) {
	switch gen {
	case Generation1:
		return DecodeV1Entity(data)
	case Generation2:
		return DecodeV2Entity(data)
	default:
		return nil, NewUnsupportedPayloadVersionError(string(gen), nil)
	}
}
