// Package typemap projects parsed types onto boundary call types and safe
// API types, and resolves generated names for template instantiations.
package typemap

import (
	"errors"
	"strings"

	"api-projector/internal/common"
	"api-projector/internal/decl"
	"api-projector/internal/naming"
)

// Well-known target modules referenced by projected types.
const (
	// boundaryModule holds the platform-width boundary type aliases.
	boundaryModule = "cabi"
	// supportModule holds the runtime support types and capabilities.
	supportModule = "support"
)

// Support type names.
const (
	OwnedHandleType = "OwnedHandle"
	FlagsType       = "Flags"
)

// UnboundedScope is the validity-scope of references with no argument to
// borrow from. Using it is a documented soundness caveat, never a silent
// default.
const UnboundedScope = "static"

// TargetKind is the shape of a target type expression.
type TargetKind int

const (
	// KindUnit is the empty/void result type.
	KindUnit TargetKind = iota
	// KindNamed is a named type with optional generic arguments.
	KindNamed
	// KindFunction is a function pointer type.
	KindFunction
)

// Indirection of a target type expression.
type Indirection int

const (
	IndirNone Indirection = iota
	IndirPtr
	IndirPtrPtr
	IndirRef
	IndirPtrRef
)

// String returns a human-readable indirection name.
func (i Indirection) String() string {
	switch i {
	case IndirNone:
		return "none"
	case IndirPtr:
		return "ptr"
	case IndirPtrPtr:
		return "ptr_ptr"
	case IndirRef:
		return "ref"
	case IndirPtrRef:
		return "ptr_ref"
	default:
		return common.UnknownStr
	}
}

// TargetType is a type expression in the projected API.
type TargetType struct {
	Kind TargetKind
	// Base is the named type path (KindNamed).
	Base naming.Path
	// GenericArguments holds type parameters of the base, if any.
	GenericArguments []TargetType
	IsConst          bool
	IsConst2         bool
	Indirection      Indirection
	// Scope names the validity-scope parameter of a reference; empty means
	// not yet assigned.
	Scope string

	// Function pointer shape (KindFunction).
	FnArguments []TargetType
	FnReturn    *TargetType
}

// Unit returns the unit target type.
func Unit() TargetType {
	return TargetType{Kind: KindUnit}
}

// Named builds a plain named target type.
func Named(path naming.Path) TargetType {
	return TargetType{Kind: KindNamed, Base: path}
}

// IsRef reports whether the type is reference-like.
func (t TargetType) IsRef() bool {
	return t.Indirection == IndirRef || t.Indirection == IndirPtrRef
}

// HasScope reports whether a validity scope is assigned.
func (t TargetType) HasScope() bool {
	return t.Scope != ""
}

// WithScope returns a copy with the validity-scope parameter set on the type
// and all its generic arguments that are references.
func (t TargetType) WithScope(scope string) TargetType {
	out := t
	out.Scope = scope

	if len(t.GenericArguments) > 0 {
		out.GenericArguments = make([]TargetType, len(t.GenericArguments))
		for i, arg := range t.GenericArguments {
			if arg.IsRef() {
				out.GenericArguments[i] = arg.WithScope(scope)
			} else {
				out.GenericArguments[i] = arg
			}
		}
	}

	return out
}

// PointerToReference converts a pointer type to a borrowed reference with the
// requested constness. Used by the cast-capability generator.
func (t TargetType) PointerToReference(isConst bool) (TargetType, error) {
	if t.Indirection != IndirPtr {
		return TargetType{}, errors.New("pointer type expected")
	}

	out := t
	out.Indirection = IndirRef
	out.IsConst = isConst
	out.Scope = ""

	return out, nil
}

// PointerToValue strips one level of pointer indirection.
func (t TargetType) PointerToValue() (TargetType, error) {
	if t.Indirection != IndirPtr {
		return TargetType{}, errors.New("pointer type expected")
	}

	out := t
	out.Indirection = IndirNone
	out.IsConst = false
	out.IsConst2 = false

	return out, nil
}

// Equal reports structural equality, ignoring validity scopes.
func (t TargetType) Equal(other TargetType) bool {
	if t.Kind != other.Kind || t.Indirection != other.Indirection ||
		t.IsConst != other.IsConst || t.IsConst2 != other.IsConst2 {
		return false
	}

	switch t.Kind {
	case KindUnit:
		return true
	case KindNamed:
		if !t.Base.Equal(other.Base) || len(t.GenericArguments) != len(other.GenericArguments) {
			return false
		}

		for i := range t.GenericArguments {
			if !t.GenericArguments[i].Equal(other.GenericArguments[i]) {
				return false
			}
		}

		return true
	case KindFunction:
		if len(t.FnArguments) != len(other.FnArguments) {
			return false
		}

		for i := range t.FnArguments {
			if !t.FnArguments[i].Equal(other.FnArguments[i]) {
				return false
			}
		}

		return t.FnReturn.Equal(*other.FnReturn)
	default:
		return false
	}
}

// CaptionLevel selects how much of a type a caption spells out.
type CaptionLevel int

const (
	// CaptionShort is the bare type name, without constness, indirection or
	// generic arguments.
	CaptionShort CaptionLevel = iota
	// CaptionFull includes constness, indirection and the captions of the
	// generic arguments.
	CaptionFull
)

// Caption builds a snake-case caption of the type for use in disambiguating
// names and generated template-instantiation names.
func (t TargetType) Caption() (string, error) {
	return t.CaptionAt(CaptionFull)
}

// CaptionAt builds the caption at the given level of detail.
func (t TargetType) CaptionAt(level CaptionLevel) (string, error) {
	switch t.Kind {
	case KindUnit:
		return "unit", nil
	case KindFunction:
		return "fn", nil
	case KindNamed:
		parts := []string{}

		base := naming.ToSnake(naming.SplitWords(t.Base.LastName()))
		if level == CaptionShort {
			return base, nil
		}

		if len(t.GenericArguments) > 0 {
			for _, arg := range t.GenericArguments {
				argCaption, err := arg.Caption()
				if err != nil {
					return "", err
				}

				parts = append(parts, argCaption)
			}

			base = base + "_" + strings.Join(parts, "_")
		}

		switch t.Indirection {
		case IndirPtr, IndirPtrPtr:
			base += "_ptr"
		case IndirRef, IndirPtrRef:
			base += "_ref"
		}

		if t.IsConst {
			base = "const_" + base
		}

		return base, nil
	default:
		return "", errors.New("cannot build caption for unknown target type kind")
	}
}

// Conversion is the operation turning an API value into its boundary
// representation (and back on return).
type Conversion int

const (
	// ConversionNone passes the value through unchanged.
	ConversionNone Conversion = iota
	// RefToPtr converts a borrowed reference to a raw pointer.
	RefToPtr
	// ValueToPtr materializes a stack value behind a pointer.
	ValueToPtr
	// OwnedToPtr unwraps an owning handle into its raw pointer.
	OwnedToPtr
	// FlagsToInt converts a flag-set wrapper to its integer value.
	FlagsToInt
	// OptionRefToPtr converts an optional reference to a nullable pointer.
	OptionRefToPtr
)

// String returns a human-readable conversion name.
func (c Conversion) String() string {
	switch c {
	case ConversionNone:
		return "none"
	case RefToPtr:
		return "ref_to_ptr"
	case ValueToPtr:
		return "value_to_ptr"
	case OwnedToPtr:
		return "owned_to_ptr"
	case FlagsToInt:
		return "flags_to_int"
	case OptionRefToPtr:
		return "option_ref_to_ptr"
	default:
		return common.UnknownStr
	}
}

// CompleteType bundles everything the method projector needs about one
// boundary position: the exact call type, the safe API type and the
// conversion between them.
type CompleteType struct {
	// CallType is the exact boundary-crossing representation.
	CallType TargetType
	// SourceType is the original declared type.
	SourceType decl.Type
	// Change is the indirection-change tag carried by the boundary type.
	Change decl.IndirectionChange
	// APIType is the safe API-facing representation.
	APIType TargetType
	// Conversion turns API values into boundary values.
	Conversion Conversion
}
