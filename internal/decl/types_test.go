package decl_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"api-projector/internal/decl"
)

func ExampleType_String() {
	point := decl.Type{
		Kind:        decl.TypeKindClass,
		IsConst:     true,
		Indirection: decl.IndirRef,
		Class:       &decl.ClassBase{Name: "QPoint"},
	}
	fmt.Println(point)

	vec := decl.Type{
		Kind: decl.TypeKindClass,
		Class: &decl.ClassBase{
			Name: "QVector",
			TemplateArguments: []decl.Type{
				{Kind: decl.TypeKindBuiltinNumeric, Numeric: decl.NumericInt},
			},
		},
		Indirection: decl.IndirPtr,
	}
	fmt.Println(vec)

	fmt.Println(decl.Type{Kind: decl.TypeKindSpecificNumeric, Bits: 32, IsSigned: true})
	fmt.Println(decl.Void())

	// Output:
	// const QPoint&
	// QVector<int>*
	// int32_t
	// void
}

func TestCanBeSameAs(t *testing.T) {
	t.Parallel()

	intT := decl.Type{Kind: decl.TypeKindBuiltinNumeric, Numeric: decl.NumericInt}
	doubleT := decl.Type{Kind: decl.TypeKindBuiltinNumeric, Numeric: decl.NumericDouble}

	assert.True(t, intT.CanBeSameAs(intT))
	assert.False(t, intT.CanBeSameAs(doubleT))

	// Const and indirection differences are invisible to callers.
	constIntRef := intT
	constIntRef.IsConst = true
	constIntRef.Indirection = decl.IndirRef
	assert.True(t, intT.CanBeSameAs(constIntRef))

	point := decl.Type{Kind: decl.TypeKindClass, Class: &decl.ClassBase{Name: "QPoint"}}
	rect := decl.Type{Kind: decl.TypeKindClass, Class: &decl.ClassBase{Name: "QRect"}}
	assert.False(t, point.CanBeSameAs(rect))
	assert.False(t, point.CanBeSameAs(intT))
}

func TestIsFlaggableEnum(t *testing.T) {
	t.Parallel()

	snap := &decl.Snapshot{
		TemplateInstantiations: []decl.TemplateInstantiations{
			{
				ClassName: "QFlags",
				Instantiations: [][]decl.Type{
					{{Kind: decl.TypeKindEnum, EnumName: "Qt::AlignmentFlag"}},
				},
			},
		},
		FlagsTemplates: []string{"QFlags"},
	}

	assert.True(t, snap.IsFlaggableEnum("Qt::AlignmentFlag"))
	assert.False(t, snap.IsFlaggableEnum("Qt::SortOrder"))
}

func TestOutReturnArg(t *testing.T) {
	t.Parallel()

	sig := decl.CallSignature{
		Arguments: []decl.CallArgument{
			{Name: "x", Role: decl.RolePositional},
			{Name: "out", Role: decl.RoleOutReturn},
		},
	}

	idx, arg := sig.OutReturnArg()
	assert.Equal(t, 1, idx)
	assert.Equal(t, "out", arg.Name)

	var empty decl.CallSignature

	idx, arg = empty.OutReturnArg()
	assert.Equal(t, -1, idx)
	assert.Nil(t, arg)
}
