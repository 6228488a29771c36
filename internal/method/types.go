// Package method projects boundary methods onto safe API functions:
// receiver detection, argument and return typing, validity-scope assignment,
// destructor routing and cast-accessor generation.
package method

import (
	"api-projector/internal/common"
	"api-projector/internal/decl"
	"api-projector/internal/naming"
	"api-projector/internal/typemap"
)

// ReceiverKind classifies how a projected function takes its receiver.
type ReceiverKind int

const (
	// ReceiverNone marks free functions and constructors.
	ReceiverNone ReceiverKind = iota
	// ReceiverValue is a consuming by-value receiver. Boundary receivers
	// always arrive behind a pointer, so this kind is reserved for
	// renderer-side synthesized methods.
	ReceiverValue
	// ReceiverConstRef is a shared-borrow receiver.
	ReceiverConstRef
	// ReceiverMutRef is an exclusive-borrow receiver.
	ReceiverMutRef
)

// String returns a human-readable receiver kind name.
func (k ReceiverKind) String() string {
	switch k {
	case ReceiverNone:
		return "none"
	case ReceiverValue:
		return "value"
	case ReceiverConstRef:
		return "const_ref"
	case ReceiverMutRef:
		return "mut_ref"
	default:
		return common.UnknownStr
	}
}

// Argument is one named positional argument of a projected function.
type Argument struct {
	Name string
	Type typemap.CompleteType
}

// ProjectedMethod is one safe API function derived from a boundary method.
type ProjectedMethod struct {
	// Source is the boundary method this function wraps.
	Source *decl.BoundaryMethod
	// TargetName is the full path of the function, ending in its base name.
	// Overload resolution may later replace the final segment.
	TargetName naming.Path
	Receiver   ReceiverKind
	// ReceiverType is set unless Receiver is ReceiverNone.
	ReceiverType typemap.CompleteType
	// Arguments excludes the receiver and the out-return slot.
	Arguments []Argument
	Return    typemap.CompleteType
	// ScopeParams lists the fresh validity-scope parameters of the function
	// in declaration order.
	ScopeParams []string
	// CallerTrusted marks functions with preconditions the caller must
	// uphold (raw pointer arguments).
	CallerTrusted bool
	Doc           string
}

// Name returns the current base name of the function.
func (m *ProjectedMethod) Name() string {
	return m.TargetName.LastName()
}

// Rename replaces the final path segment.
func (m *ProjectedMethod) Rename(name string) {
	m.TargetName = m.TargetName.Parent().Child(name)
}

// Cleanup routes one destructor to a target-side cleanup capability.
type Cleanup struct {
	// Type is the target path of the owning type.
	Type naming.Path
	// Automatic is true for stack types whose cleanup runs when the value
	// goes out of scope; false for heap types exposing an explicit deleter.
	Automatic bool
	// CallName is the boundary destructor symbol.
	CallName string
}

// CastAccessor is one projected type-narrowing helper pair. Each accessor
// yields a shared and an exclusive variant of the same conversion.
type CastAccessor struct {
	Style decl.CastStyle
	// Checked marks runtime-checked casts returning an optional reference.
	Checked bool
	// Trusted marks casts whose validity the caller must guarantee.
	Trusted bool
	// Direct marks non-offsetting casts eligible for auto-deref coupling.
	Direct bool
	// From and To are the target paths of the source and destination types.
	From, To naming.Path
	// CallName is the boundary cast symbol.
	CallName string
}

// Projection is the complete method-projection output for one library run.
type Projection struct {
	Methods  []*ProjectedMethod
	Cleanups []Cleanup
	Casts    []CastAccessor
}
