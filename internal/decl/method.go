package decl

import (
	"strings"
)

// ArgumentRole classifies an argument of a boundary call.
type ArgumentRole int

const (
	// RolePositional is an ordinary positional argument.
	RolePositional ArgumentRole = iota
	// RoleReceiver is the implicit first argument of a member method.
	RoleReceiver
	// RoleOutReturn is an output slot standing for the native return value.
	RoleOutReturn
)

// IndirectionChange describes how the boundary representation of a type
// differs from its original declaration.
type IndirectionChange int

const (
	// ChangeNone: boundary type matches the original.
	ChangeNone IndirectionChange = iota
	// ChangeValueToPointer: a by-value type is passed behind a pointer.
	ChangeValueToPointer
	// ChangeReferenceToPointer: a reference was lowered to a pointer.
	ChangeReferenceToPointer
	// ChangeFlagsToInt: a bit-flag-set type is passed as its integer value.
	ChangeFlagsToInt
)

// BoundaryType pairs a call-crossing type with the original declaration type
// and the indirection change between them.
type BoundaryType struct {
	// CallType is the exact representation crossing the boundary.
	CallType Type
	// OriginalType is the type as declared in the source.
	OriginalType Type
	// Change tags how CallType was derived from OriginalType.
	Change IndirectionChange
}

// VoidBoundary returns the unit boundary type.
func VoidBoundary() BoundaryType {
	return BoundaryType{CallType: Void(), OriginalType: Void(), Change: ChangeNone}
}

// CallArgument is one ordered argument of a boundary call.
type CallArgument struct {
	Name     string
	Type     BoundaryType
	Role     ArgumentRole
	Position int // positional index, meaningful for RolePositional
}

// CallSignature is the exact shape of a boundary call.
type CallSignature struct {
	Arguments  []CallArgument
	ReturnType BoundaryType
}

// OutReturnArg returns the argument carrying the out-return role, if any.
func (s *CallSignature) OutReturnArg() (int, *CallArgument) {
	for i := range s.Arguments {
		if s.Arguments[i].Role == RoleOutReturn {
			return i, &s.Arguments[i]
		}
	}

	return -1, nil
}

// AllocationPlace is the by-value-return allocation policy of a method.
type AllocationPlace int

const (
	// PlaceNotApplicable: the method never returns an object by value.
	PlaceNotApplicable AllocationPlace = iota
	// PlaceStack: returned objects live in caller-provided storage.
	PlaceStack
	// PlaceHeap: returned objects are heap-allocated behind an owning handle.
	PlaceHeap
)

// CastStyle distinguishes the recognized type-narrowing helpers.
type CastStyle int

const (
	// CastStatic is an unchecked compile-time cast.
	CastStatic CastStyle = iota
	// CastDynamic is a runtime-checked cast that can fail.
	CastDynamic
	// CastObject is a runtime-checked cast through the object system.
	CastObject
)

// CastInfo carries cast metadata for the narrowing free functions.
type CastInfo struct {
	Style CastStyle
	// Unchecked marks a static cast whose validity the caller must guarantee.
	Unchecked bool
	// Direct marks a non-offsetting cast (same object address on both sides).
	Direct bool
}

// Method is one parsed callable declaration.
type Method struct {
	// Name is the declared name. For operators it is informational only.
	Name string
	// Owner is the class owning this method, nil for free functions.
	Owner *ClassBase
	// Operator is set for operator declarations.
	Operator *Operator
	// IncludeFile is the declaring source unit.
	IncludeFile   string
	IsConstructor bool
	IsDestructor  bool
	// Signature is short human-readable signature text for diagnostics.
	Signature string
	Doc       string
}

// FullName returns the qualified name for diagnostics.
func (m *Method) FullName() string {
	if m.Owner != nil {
		return m.Owner.Name + "::" + m.Name
	}

	return m.Name
}

// ShortText returns the diagnostic signature of the method.
func (m *Method) ShortText() string {
	if m.Signature != "" {
		return m.Signature
	}

	return m.FullName() + "(...)"
}

// BoundaryMethod is a parsed method lowered to its boundary call shape.
type BoundaryMethod struct {
	Source Method
	// CallName is the exported boundary symbol name.
	CallName  string
	Signature CallSignature
	// AllocationPlace is the return-allocation policy for by-value returns.
	AllocationPlace AllocationPlace
	// Cast is set for the recognized type-narrowing free functions.
	Cast *CastInfo
}

// ShortText returns the diagnostic signature of the boundary method.
func (m *BoundaryMethod) ShortText() string {
	if m.Source.Signature != "" {
		return m.Source.Signature
	}

	args := make([]string, 0, len(m.Signature.Arguments))
	for _, a := range m.Signature.Arguments {
		args = append(args, a.Type.OriginalType.String())
	}

	return m.Source.FullName() + "(" + strings.Join(args, ", ") + ")"
}
