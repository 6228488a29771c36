package typemap

import (
	"errors"
	"fmt"

	"api-projector/internal/decl"
	"api-projector/internal/naming"
	"api-projector/internal/registry"
)

var builtinBoundaryNames = map[decl.BuiltinNumeric]string{
	decl.NumericChar:      "c_char",
	decl.NumericSChar:     "c_schar",
	decl.NumericUChar:     "c_uchar",
	decl.NumericWChar:     "c_wchar",
	decl.NumericShort:     "c_short",
	decl.NumericUShort:    "c_ushort",
	decl.NumericInt:       "c_int",
	decl.NumericUInt:      "c_uint",
	decl.NumericLong:      "c_long",
	decl.NumericULong:     "c_ulong",
	decl.NumericLongLong:  "c_longlong",
	decl.NumericULongLong: "c_ulonglong",
	decl.NumericFloat:     "c_float",
	decl.NumericDouble:    "c_double",
}

// CallType converts a parsed type to its exact boundary-crossing target
// representation by a static table. Enum and class types resolve through the
// registry (own entries first, then dependencies in order).
func CallType(reg *registry.Registry, t decl.Type) (TargetType, error) {
	var base naming.Path

	switch t.Kind {
	case decl.TypeKindVoid:
		if t.Indirection == decl.IndirNone {
			return Unit(), nil
		}

		base = naming.Path{boundaryModule, "c_void"}
	case decl.TypeKindBool:
		base = naming.Path{"bool"}
	case decl.TypeKindBuiltinNumeric:
		name, ok := builtinBoundaryNames[t.Numeric]
		if !ok {
			return TargetType{}, fmt.Errorf("unsupported numeric type: %s", t.String())
		}

		base = naming.Path{boundaryModule, name}
	case decl.TypeKindSpecificNumeric:
		letter := "u"
		if t.IsFloat {
			letter = "f"
		} else if t.IsSigned {
			letter = "i"
		}

		base = naming.Path{fmt.Sprintf("%s%d", letter, t.Bits)}
	case decl.TypeKindPointerSizedInt:
		if t.IsSigned {
			base = naming.Path{"isize"}
		} else {
			base = naming.Path{"usize"}
		}
	case decl.TypeKindEnum:
		info := reg.FindBySource(t.EnumName, nil)
		if info == nil {
			return TargetType{}, fmt.Errorf("type has no target equivalent: %s", t.EnumName)
		}

		base = info.TargetName
	case decl.TypeKindClass:
		info := reg.FindBySource(t.Class.Name, t.Class.TemplateArguments)
		if info == nil {
			return TargetType{}, fmt.Errorf("type has no target equivalent: %s", t.Class.String())
		}

		base = info.TargetName
	case decl.TypeKindFunctionPointer:
		return functionPointerCallType(reg, t.Function)
	default:
		return TargetType{}, fmt.Errorf("invalid parsed type: %s", t.String())
	}

	indirection, err := callIndirection(t.Indirection)
	if err != nil {
		return TargetType{}, err
	}

	return TargetType{
		Kind:        KindNamed,
		Base:        base,
		IsConst:     t.IsConst,
		IsConst2:    t.IsConst2,
		Indirection: indirection,
	}, nil
}

func functionPointerCallType(reg *registry.Registry, fn *decl.FunctionPointer) (TargetType, error) {
	if fn == nil {
		return TargetType{}, errors.New("function pointer type has no shape")
	}

	if fn.AllowsVariadic {
		return TargetType{}, errors.New("function pointers with variadic arguments are not supported")
	}

	args := make([]TargetType, 0, len(fn.Arguments))

	for _, arg := range fn.Arguments {
		argType, err := CallType(reg, arg)
		if err != nil {
			return TargetType{}, err
		}

		args = append(args, argType)
	}

	ret, err := CallType(reg, fn.ReturnType)
	if err != nil {
		return TargetType{}, err
	}

	return TargetType{
		Kind:        KindFunction,
		FnArguments: args,
		FnReturn:    &ret,
	}, nil
}

// callIndirection maps parsed indirection to boundary indirection. Reference
// indirections never cross the boundary, and anything beyond a double
// pointer is rejected.
func callIndirection(i decl.Indirection) (Indirection, error) {
	switch i {
	case decl.IndirNone:
		return IndirNone, nil
	case decl.IndirPtr:
		return IndirPtr, nil
	case decl.IndirPtrPtr:
		return IndirPtrPtr, nil
	default:
		return IndirNone, fmt.Errorf("invalid boundary type indirection: %s", i.String())
	}
}
