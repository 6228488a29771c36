package typemap

import (
	"errors"
	"fmt"

	"api-projector/internal/decl"
	"api-projector/internal/naming"
	"api-projector/internal/registry"
)

// Complete derives the safe API type and conversion for one boundary
// position, driven by the indirection-change tag. role is the position of
// the boundary type in the call; place is the method's return-allocation
// policy, consulted only for by-value returns.
func Complete(
	reg *registry.Registry,
	bt decl.BoundaryType,
	role decl.ArgumentRole,
	isTemplateArg bool,
	place decl.AllocationPlace,
) (CompleteType, error) {
	callType, err := CallType(reg, bt.CallType)
	if err != nil {
		return CompleteType{}, err
	}

	api := callType
	conversion := ConversionNone

	switch bt.Change {
	case decl.ChangeNone:
		if role == decl.RoleReceiver {
			if api.Indirection != IndirPtr {
				return CompleteType{}, errors.New("receiver must be a pointer at the boundary")
			}

			api.Indirection = IndirRef
			conversion = RefToPtr
		}
	case decl.ChangeValueToPointer:
		if api.Indirection != IndirPtr {
			return CompleteType{}, errors.New("value-to-pointer change requires a pointer boundary type")
		}

		if role == decl.RoleOutReturn {
			api, conversion, err = byValueReturn(reg, api, place)
			if err != nil {
				return CompleteType{}, err
			}
		} else if isTemplateArg {
			api.Indirection = IndirNone
			conversion = ValueToPtr
		} else {
			api.Indirection = IndirRef
			api.IsConst = true
			api.IsConst2 = true
			conversion = RefToPtr
		}
	case decl.ChangeReferenceToPointer:
		switch api.Indirection {
		case IndirPtr:
			api.Indirection = IndirRef
		case IndirPtrPtr:
			api.Indirection = IndirPtrRef
		default:
			return CompleteType{}, errors.New("invalid indirection for reference-to-pointer change")
		}

		conversion = RefToPtr
	case decl.ChangeFlagsToInt:
		api, err = flagsAPIType(reg, bt.OriginalType)
		if err != nil {
			return CompleteType{}, err
		}

		conversion = FlagsToInt
	}

	return CompleteType{
		CallType:   callType,
		SourceType: bt.OriginalType,
		Change:     bt.Change,
		APIType:    api,
		Conversion: conversion,
	}, nil
}

// byValueReturn chooses between a stack-resident value and an owning-handle
// wrapper for a by-value return passed behind a pointer.
func byValueReturn(
	reg *registry.Registry,
	api TargetType,
	place decl.AllocationPlace,
) (TargetType, Conversion, error) {
	info := reg.FindByTarget(api.Base)
	if info == nil {
		return TargetType{}, ConversionNone,
			fmt.Errorf("no registry entry for projected type %s", api.Base.String())
	}

	if info.Kind != registry.KindOpaque {
		return TargetType{}, ConversionNone, errors.New("class type expected for by-value return")
	}

	if !info.Deletable {
		return TargetType{}, ConversionNone,
			fmt.Errorf("%s is not deletable", api.Base.String())
	}

	switch place {
	case decl.PlaceStack:
		api.Indirection = IndirNone

		return api, ValueToPtr, nil
	case decl.PlaceHeap:
		inner := TargetType{Kind: KindNamed, Base: api.Base}

		wrapped := TargetType{
			Kind:             KindNamed,
			Base:             naming.Path{supportModule, OwnedHandleType},
			GenericArguments: []TargetType{inner},
		}

		return wrapped, OwnedToPtr, nil
	default:
		return TargetType{}, ConversionNone,
			errors.New("by-value return requires an allocation place")
	}
}

// flagsAPIType rewrites an integer flag-set representation to the generic
// flags wrapper parameterized by the underlying enum's target type.
func flagsAPIType(reg *registry.Registry, original decl.Type) (TargetType, error) {
	if original.Kind != decl.TypeKindClass || original.Class == nil {
		return TargetType{}, errors.New("flag-set type must be a class template instantiation")
	}

	args := original.Class.TemplateArguments
	if len(args) != 1 {
		return TargetType{}, errors.New("flag-set type must have exactly one template argument")
	}

	if args[0].Kind != decl.TypeKindEnum {
		return TargetType{}, errors.New("flag-set template argument must be an enum")
	}

	info := reg.FindBySource(args[0].EnumName, nil)
	if info == nil {
		return TargetType{}, fmt.Errorf("type has no target equivalent: %s", args[0].EnumName)
	}

	return TargetType{
		Kind:             KindNamed,
		Base:             naming.Path{supportModule, FlagsType},
		GenericArguments: []TargetType{Named(info.TargetName)},
	}, nil
}
