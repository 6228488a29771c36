package typemap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"api-projector/internal/decl"
	"api-projector/internal/naming"
	"api-projector/internal/registry"
	"api-projector/internal/typemap"
)

func intType() decl.Type {
	return decl.Type{Kind: decl.TypeKindBuiltinNumeric, Numeric: decl.NumericInt}
}

func classType(name string, args ...decl.Type) decl.Type {
	return decl.Type{
		Kind:  decl.TypeKindClass,
		Class: &decl.ClassBase{Name: name, TemplateArguments: args},
	}
}

func pointRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	reg := registry.New()
	require.NoError(t, reg.Add(registry.TargetTypeInfo{
		SourceName:      "QPoint",
		TargetName:      naming.Path{"qt_core", "point", "Point"},
		Kind:            registry.KindOpaque,
		AllocationPlace: decl.PlaceStack,
		Deletable:       true,
	}))
	require.NoError(t, reg.Add(registry.TargetTypeInfo{
		SourceName: "Qt::AlignmentFlag",
		TargetName: naming.Path{"qt_core", "global", "AlignmentFlag"},
		Kind:       registry.KindEnum,
	}))

	return reg
}

func TestCallTypeBuiltins(t *testing.T) {
	t.Parallel()

	reg := registry.New()

	cases := []struct {
		in   decl.Type
		want naming.Path
	}{
		{intType(), naming.Path{"cabi", "c_int"}},
		{
			decl.Type{Kind: decl.TypeKindBuiltinNumeric, Numeric: decl.NumericDouble},
			naming.Path{"cabi", "c_double"},
		},
		{decl.Type{Kind: decl.TypeKindBool}, naming.Path{"bool"}},
		{
			decl.Type{Kind: decl.TypeKindSpecificNumeric, Bits: 64, IsSigned: true},
			naming.Path{"i64"},
		},
		{decl.Type{Kind: decl.TypeKindSpecificNumeric, Bits: 8}, naming.Path{"u8"}},
		{
			decl.Type{Kind: decl.TypeKindSpecificNumeric, Bits: 32, IsFloat: true},
			naming.Path{"f32"},
		},
		{decl.Type{Kind: decl.TypeKindPointerSizedInt, IsSigned: true}, naming.Path{"isize"}},
		{decl.Type{Kind: decl.TypeKindPointerSizedInt}, naming.Path{"usize"}},
		{
			decl.Type{Kind: decl.TypeKindVoid, Indirection: decl.IndirPtr},
			naming.Path{"cabi", "c_void"},
		},
	}

	for _, c := range cases {
		got, err := typemap.CallType(reg, c.in)
		require.NoError(t, err, "input %s", c.in.String())
		assert.Equal(t, c.want, got.Base, "input %s", c.in.String())
	}
}

func TestCallTypeVoid(t *testing.T) {
	t.Parallel()

	got, err := typemap.CallType(registry.New(), decl.Void())
	require.NoError(t, err)
	assert.Equal(t, typemap.Unit(), got)
}

func TestCallTypeRegistryLookup(t *testing.T) {
	t.Parallel()

	reg := pointRegistry(t)

	got, err := typemap.CallType(reg, classType("QPoint"))
	require.NoError(t, err)
	assert.Equal(t, naming.Path{"qt_core", "point", "Point"}, got.Base)

	got, err = typemap.CallType(reg, decl.Type{
		Kind:        decl.TypeKindEnum,
		EnumName:    "Qt::AlignmentFlag",
		Indirection: decl.IndirPtr,
	})
	require.NoError(t, err)
	assert.Equal(t, typemap.IndirPtr, got.Indirection)

	_, err = typemap.CallType(reg, classType("QMissing"))
	assert.ErrorContains(t, err, "no target equivalent")
}

func TestCallTypeRejectsReferences(t *testing.T) {
	t.Parallel()

	ref := classType("QPoint")
	ref.Indirection = decl.IndirRef

	_, err := typemap.CallType(pointRegistry(t), ref)
	assert.ErrorContains(t, err, "invalid boundary type indirection")
}

func TestCallTypeFunctionPointer(t *testing.T) {
	t.Parallel()

	fn := decl.Type{
		Kind: decl.TypeKindFunctionPointer,
		Function: &decl.FunctionPointer{
			ReturnType: decl.Void(),
			Arguments:  []decl.Type{intType()},
		},
	}

	got, err := typemap.CallType(registry.New(), fn)
	require.NoError(t, err)
	assert.Equal(t, typemap.KindFunction, got.Kind)
	require.Len(t, got.FnArguments, 1)
	assert.Equal(t, typemap.KindUnit, got.FnReturn.Kind)

	fn.Function.AllowsVariadic = true

	_, err = typemap.CallType(registry.New(), fn)
	assert.ErrorContains(t, err, "variadic")
}
