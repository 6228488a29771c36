// Package decl defines the parsed declaration model consumed by the
// projection pipeline. All values are produced by the upstream native-header
// parser and are treated as immutable inputs.
package decl

import (
	"fmt"
	"reflect"
	"strings"

	"api-projector/internal/common"
)

// TypeKind represents the kind of a native type expression.
type TypeKind int

const (
	TypeKindUnknown TypeKind = iota
	TypeKindVoid
	TypeKindBool
	TypeKindBuiltinNumeric  // char, int, double, etc.
	TypeKindSpecificNumeric // explicit bit-width numerics (int32_t, ...)
	TypeKindPointerSizedInt // size_t, ptrdiff_t
	TypeKindEnum
	TypeKindClass
	TypeKindFunctionPointer
)

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	switch k {
	case TypeKindVoid:
		return "void"
	case TypeKindBool:
		return "bool"
	case TypeKindBuiltinNumeric:
		return "builtin_numeric"
	case TypeKindSpecificNumeric:
		return "specific_numeric"
	case TypeKindPointerSizedInt:
		return "pointer_sized_int"
	case TypeKindEnum:
		return "enum"
	case TypeKindClass:
		return "class"
	case TypeKindFunctionPointer:
		return "function_pointer"
	default:
		return common.UnknownStr
	}
}

// BuiltinNumeric identifies a fixed built-in numeric type.
type BuiltinNumeric int

const (
	NumericChar BuiltinNumeric = iota
	NumericSChar
	NumericUChar
	NumericWChar
	NumericShort
	NumericUShort
	NumericInt
	NumericUInt
	NumericLong
	NumericULong
	NumericLongLong
	NumericULongLong
	NumericFloat
	NumericDouble
)

// Indirection represents the indirection of a type expression.
type Indirection int

const (
	IndirNone Indirection = iota
	IndirPtr
	IndirRef
	IndirPtrPtr
	IndirPtrRef
	IndirRefRef
)

// String returns a human-readable representation of the indirection.
func (i Indirection) String() string {
	switch i {
	case IndirNone:
		return ""
	case IndirPtr:
		return "*"
	case IndirRef:
		return "&"
	case IndirPtrPtr:
		return "**"
	case IndirPtrRef:
		return "*&"
	case IndirRefRef:
		return "&&"
	default:
		return common.UnknownStr
	}
}

// ClassBase identifies a class type together with its concrete template
// arguments, if any. Nil TemplateArguments means a non-template class.
type ClassBase struct {
	Name              string
	TemplateArguments []Type
}

// Equal reports whether two class bases denote the same instantiation.
func (c *ClassBase) Equal(other *ClassBase) bool {
	if c == nil || other == nil {
		return c == other
	}

	return c.Name == other.Name && reflect.DeepEqual(c.TemplateArguments, other.TemplateArguments)
}

// String returns the class name with template arguments, if any.
func (c *ClassBase) String() string {
	if len(c.TemplateArguments) == 0 {
		return c.Name
	}

	args := make([]string, 0, len(c.TemplateArguments))
	for _, a := range c.TemplateArguments {
		args = append(args, a.String())
	}

	return c.Name + "<" + strings.Join(args, ", ") + ">"
}

// FunctionPointer describes the shape of a function pointer type.
type FunctionPointer struct {
	ReturnType     Type
	Arguments      []Type
	AllowsVariadic bool
}

// Type is a native type expression: a base kind with const qualifiers and
// indirection.
type Type struct {
	Kind        TypeKind
	IsConst     bool
	IsConst2    bool // constness of the second indirection level
	Indirection Indirection

	// Kind-specific payload.
	Numeric  BuiltinNumeric   // TypeKindBuiltinNumeric
	Bits     int              // TypeKindSpecificNumeric
	IsFloat  bool             // TypeKindSpecificNumeric
	IsSigned bool             // TypeKindSpecificNumeric, TypeKindPointerSizedInt
	EnumName string           // TypeKindEnum: fully qualified name
	Class    *ClassBase       // TypeKindClass
	Function *FunctionPointer // TypeKindFunctionPointer
}

// Void returns the void type with no indirection.
func Void() Type {
	return Type{Kind: TypeKindVoid}
}

// IsVoid reports whether the type is void with no indirection.
func (t Type) IsVoid() bool {
	return t.Kind == TypeKindVoid && t.Indirection == IndirNone
}

// BaseName returns the identifying name of the base type, if it has one.
func (t Type) BaseName() string {
	switch t.Kind {
	case TypeKindEnum:
		return t.EnumName
	case TypeKindClass:
		return t.Class.Name
	default:
		return ""
	}
}

// CanBeSameAs reports whether a caller-supplied value could satisfy both this
// type and the other in an argument position, ignoring const qualifiers and
// indirection. Two such arguments cannot be distinguished by the projected
// API, so methods differing only in them must not share an overload bucket.
func (t Type) CanBeSameAs(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}

	switch t.Kind {
	case TypeKindBuiltinNumeric:
		return t.Numeric == other.Numeric
	case TypeKindSpecificNumeric:
		return t.Bits == other.Bits && t.IsFloat == other.IsFloat && t.IsSigned == other.IsSigned
	case TypeKindPointerSizedInt:
		return t.IsSigned == other.IsSigned
	case TypeKindEnum:
		return t.EnumName == other.EnumName
	case TypeKindClass:
		return t.Class.Equal(other.Class)
	case TypeKindFunctionPointer:
		return reflect.DeepEqual(t.Function, other.Function)
	default:
		return true
	}
}

// String returns a source-style rendering of the type for diagnostics.
func (t Type) String() string {
	var b strings.Builder
	if t.IsConst {
		b.WriteString("const ")
	}

	switch t.Kind {
	case TypeKindVoid:
		b.WriteString("void")
	case TypeKindBool:
		b.WriteString("bool")
	case TypeKindBuiltinNumeric:
		b.WriteString(builtinNumericName(t.Numeric))
	case TypeKindSpecificNumeric:
		b.WriteString(specificNumericName(t.Bits, t.IsFloat, t.IsSigned))
	case TypeKindPointerSizedInt:
		if t.IsSigned {
			b.WriteString("ptrdiff_t")
		} else {
			b.WriteString("size_t")
		}
	case TypeKindEnum:
		b.WriteString(t.EnumName)
	case TypeKindClass:
		b.WriteString(t.Class.String())
	case TypeKindFunctionPointer:
		b.WriteString("<fn ptr>")
	default:
		b.WriteString(common.UnknownStr)
	}

	b.WriteString(t.Indirection.String())

	return b.String()
}

func builtinNumericName(n BuiltinNumeric) string {
	switch n {
	case NumericChar:
		return "char"
	case NumericSChar:
		return "signed char"
	case NumericUChar:
		return "unsigned char"
	case NumericWChar:
		return "wchar_t"
	case NumericShort:
		return "short"
	case NumericUShort:
		return "unsigned short"
	case NumericInt:
		return "int"
	case NumericUInt:
		return "unsigned int"
	case NumericLong:
		return "long"
	case NumericULong:
		return "unsigned long"
	case NumericLongLong:
		return "long long"
	case NumericULongLong:
		return "unsigned long long"
	case NumericFloat:
		return "float"
	case NumericDouble:
		return "double"
	default:
		return common.UnknownStr
	}
}

func specificNumericName(bits int, isFloat, isSigned bool) string {
	if isFloat {
		return fmt.Sprintf("float%d_t", bits)
	}

	if isSigned {
		return fmt.Sprintf("int%d_t", bits)
	}

	return fmt.Sprintf("uint%d_t", bits)
}

// TypeDeclKind is the kind of a declared (registerable) type.
type TypeDeclKind int

const (
	DeclClass TypeDeclKind = iota
	DeclEnum
)

// EnumValue is a single name/value pair of a parsed enumeration.
type EnumValue struct {
	Name  string
	Value int64
	Doc   string
}

// TypeDecl is a declared type from the parsed library surface.
type TypeDecl struct {
	// Name is the fully qualified name using "::" separators.
	Name string
	// IncludeFile is the declaring source unit (filename, extension optional).
	IncludeFile string
	Kind        TypeDeclKind
	// EnumValues holds the value set for DeclEnum declarations.
	EnumValues []EnumValue
	// ByteSize is the stack-representable size, 0 if unknown.
	ByteSize int
	// HasPublicDestructor reports whether the destructor is publicly callable.
	HasPublicDestructor bool
	// IsTemplate marks a class template declaration. Templates themselves are
	// not representable; only concrete instantiations are.
	IsTemplate bool
	Doc        string
}

// TemplateInstantiations lists the concrete argument lists observed for one
// class template.
type TemplateInstantiations struct {
	ClassName      string
	Instantiations [][]Type
}

// Snapshot is the complete immutable parser output for one library.
type Snapshot struct {
	Types                  []TypeDecl
	Methods                []BoundaryMethod
	TemplateInstantiations []TemplateInstantiations
	// FlagsTemplates names the class templates whose single-enum-argument
	// instantiations stand for bit-flag sets of that enum.
	FlagsTemplates []string
}

// FindTypeDecl returns the declaration with the given fully qualified name.
func (s *Snapshot) FindTypeDecl(name string) *TypeDecl {
	for i := range s.Types {
		if s.Types[i].Name == name {
			return &s.Types[i]
		}
	}

	return nil
}

// IsFlaggableEnum reports whether the named enum appears as the single
// template argument of one of the flags templates.
func (s *Snapshot) IsFlaggableEnum(enumName string) bool {
	for _, ti := range s.TemplateInstantiations {
		flaggable := false

		for _, ft := range s.FlagsTemplates {
			if ti.ClassName == ft {
				flaggable = true
				break
			}
		}

		if !flaggable {
			continue
		}

		for _, args := range ti.Instantiations {
			if len(args) == 1 && args[0].Kind == TypeKindEnum && args[0].EnumName == enumName {
				return true
			}
		}
	}

	return false
}
