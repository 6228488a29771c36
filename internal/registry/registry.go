// Package registry holds target type information built from parsed
// declarations. The registry is populated in two sequential passes (direct
// types, then template instantiations) and frozen afterward; a frozen
// registry of one run may be attached read-only to dependent runs.
package registry

import (
	"errors"
	"reflect"
	"strings"

	"api-projector/internal/common"
	"api-projector/internal/decl"
	"api-projector/internal/naming"
)

// Kind is the target representation kind of a registered type.
type Kind int

const (
	// KindOpaque is an opaque fixed-size buffer wrapper around a class.
	KindOpaque Kind = iota
	// KindEnum is an enumeration with named variants.
	KindEnum
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindOpaque:
		return "opaque"
	case KindEnum:
		return "enum"
	default:
		return common.UnknownStr
	}
}

// Variant is one target enumeration variant.
type Variant struct {
	Name  string
	Value int64
	// Aliases lists source names sharing this value; they become
	// documentation aliases rather than variants.
	Aliases []string
	// Synthetic marks a variant added to satisfy the two-variant minimum.
	Synthetic bool
	Doc       string
}

// TargetTypeInfo is one registry entry: a representable parsed type and its
// target-side identity.
type TargetTypeInfo struct {
	// SourceName is the fully qualified source type name.
	SourceName string
	// TemplateArguments holds the concrete arguments for instantiations.
	TemplateArguments []decl.Type
	// TargetName is the canonical target identifier path.
	TargetName naming.Path
	Kind       Kind

	// AllocationPlace applies to KindOpaque.
	AllocationPlace decl.AllocationPlace
	// SizeConstName names the stack-size constant; empty for heap types.
	SizeConstName string
	// Deletable reports whether the native destructor is publicly callable.
	Deletable bool

	// Variants applies to KindEnum.
	Variants []Variant
	// Flaggable marks enums usable inside a bit-flag-set wrapper.
	Flaggable bool

	Doc string
}

// ErrFrozen is returned when mutating a frozen registry.
var ErrFrozen = errors.New("registry is frozen")

// ErrDuplicateTarget is returned when an entry's target name is already
// taken by another registered type.
var ErrDuplicateTarget = errors.New("target name is already registered")

// Registry is the type registry for one library run, with optional read-only
// dependency registries consulted in order after the own entries.
type Registry struct {
	entries []TargetTypeInfo
	deps    []*Registry
	frozen  bool
}

// New creates an empty registry with the given dependency registries.
func New(deps ...*Registry) *Registry {
	return &Registry{deps: deps}
}

// Add appends an entry. Adding to a frozen registry or reusing a target
// name already held by another type is an error.
func (r *Registry) Add(info TargetTypeInfo) error {
	if r.frozen {
		return ErrFrozen
	}

	if r.FindByTarget(info.TargetName) != nil {
		return ErrDuplicateTarget
	}

	r.entries = append(r.entries, info)

	return nil
}

// Freeze makes the registry immutable.
func (r *Registry) Freeze() {
	r.frozen = true
}

// Frozen reports whether the registry is immutable.
func (r *Registry) Frozen() bool {
	return r.frozen
}

// Own returns the entries of this registry, excluding dependencies.
func (r *Registry) Own() []TargetTypeInfo {
	return r.entries
}

// Find returns the first entry matching the predicate, searching own entries
// first and then each dependency registry in order.
func (r *Registry) Find(pred func(*TargetTypeInfo) bool) *TargetTypeInfo {
	for i := range r.entries {
		if pred(&r.entries[i]) {
			return &r.entries[i]
		}
	}

	for _, dep := range r.deps {
		if info := dep.Find(pred); info != nil {
			return info
		}
	}

	return nil
}

// FindBySource returns the entry for a source type name and template
// argument list (nil for plain types).
func (r *Registry) FindBySource(name string, args []decl.Type) *TargetTypeInfo {
	return r.Find(func(info *TargetTypeInfo) bool {
		return info.SourceName == name && reflect.DeepEqual(info.TemplateArguments, args)
	})
}

// FindByTarget returns the entry with the given target path.
func (r *Registry) FindByTarget(p naming.Path) *TargetTypeInfo {
	return r.Find(func(info *TargetTypeInfo) bool {
		return info.TargetName.Equal(p)
	})
}

// SizeConstName builds the name of the constant holding a stack type's
// buffer size.
func SizeConstName(p naming.Path) string {
	parts := make([]string, 0, len(p))

	for _, segment := range p {
		words := naming.SplitWords(segment)
		for i, w := range words {
			words[i] = strings.ToUpper(w)
		}

		parts = append(parts, strings.Join(words, "_"))
	}

	return strings.Join(parts, "_")
}
