// Package convert translates cluster entities between schema generations.
package convert

import (
	"github.com/rzbill/cse/pkg/types"
)

// Convert returns the entity expressed in the target generation. The envelope's id,
// name, state, owner and org are kept and entityType is rewritten for the target.
// When the entity is already in the target generation it is returned unchanged.
func Convert(entity *types.ClusterEntity, target types.Generation) (*types.ClusterEntity, error) {
	if entity.Generation() == target {
		return entity, nil
	}

	native, err := ConvertNative(entity.Entity, target)
	if err != nil {
		return nil, err
	}

	ref := entity.TypeRef()
	ref.Version = string(target)

	out := *entity
	out.EntityType = ref.ID()
	out.Entity = native
	return &out, nil
}

// ConvertNative converts a native entity body to the target generation.
func ConvertNative(entity types.NativeEntity, target types.Generation) (types.NativeEntity, error) {
	if entity == nil {
		return nil, types.NewValidationError("entity body is required")
	}
	if entity.Generation() == target {
		return entity, nil
	}

	switch src := entity.(type) {
	case *types.V1Entity:
		if target == types.Generation2 {
			out, err := V1ToV2(src)
			if err != nil {
				return nil, err
			}
			return out, nil
		}
	case *types.V2Entity:
		if target == types.Generation1 {
			out, err := V2ToV1(src)
			if err != nil {
				return nil, err
			}
			return out, nil
		}
	}
	return nil, types.NewConversionUnsupportedError(entity.Generation(), target)
}

// ToV2 returns the entity as generation 2, converting if needed.
func ToV2(entity types.NativeEntity) (*types.V2Entity, error) {
	out, err := ConvertNative(entity, types.Generation2)
	if err != nil {
		return nil, err
	}
	return out.(*types.V2Entity), nil
}
