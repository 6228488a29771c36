package assemble_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"api-projector/internal/assemble"
	"api-projector/internal/config"
	"api-projector/internal/decl"
	"api-projector/internal/diagnostic"
	"api-projector/internal/method"
	"api-projector/internal/naming"
)

func intType() decl.Type {
	return decl.Type{Kind: decl.TypeKindBuiltinNumeric, Numeric: decl.NumericInt}
}

func pointReceiver() decl.CallArgument {
	return decl.CallArgument{
		Name: "self",
		Type: decl.BoundaryType{
			CallType: decl.Type{
				Kind:        decl.TypeKindClass,
				Indirection: decl.IndirPtr,
				Class:       &decl.ClassBase{Name: "QPoint"},
			},
			OriginalType: decl.Type{
				Kind:  decl.TypeKindClass,
				Class: &decl.ClassBase{Name: "QPoint"},
			},
			Change: decl.ChangeNone,
		},
		Role: decl.RoleReceiver,
	}
}

func runSnapshot() *decl.Snapshot {
	return &decl.Snapshot{
		Types: []decl.TypeDecl{
			{
				Name:                "QPoint",
				IncludeFile:         "QPoint",
				Kind:                decl.DeclClass,
				ByteSize:            8,
				HasPublicDestructor: true,
			},
			{
				Name:        "QBroken",
				IncludeFile: "QBroken",
				Kind:        decl.DeclClass,
			},
			{
				Name:        "Qt::AlignmentFlag",
				IncludeFile: "QtGlobal",
				Kind:        decl.DeclEnum,
				EnumValues: []decl.EnumValue{
					{Name: "AlignLeft", Value: 1},
					{Name: "AlignRight", Value: 2},
				},
			},
		},
		Methods: []decl.BoundaryMethod{
			{
				Source: decl.Method{
					Name:        "setX",
					Owner:       &decl.ClassBase{Name: "QPoint"},
					IncludeFile: "QPoint",
				},
				CallName: "qpoint_set_x",
				Signature: decl.CallSignature{
					Arguments: []decl.CallArgument{
						pointReceiver(),
						{Name: "x", Type: plainBoundary(intType()), Role: decl.RolePositional},
					},
					ReturnType: decl.VoidBoundary(),
				},
			},
			{
				Source: decl.Method{
					Name:         "~QPoint",
					Owner:        &decl.ClassBase{Name: "QPoint"},
					IncludeFile:  "QPoint",
					IsDestructor: true,
				},
				CallName: "qpoint_delete",
				Signature: decl.CallSignature{
					Arguments:  []decl.CallArgument{pointReceiver()},
					ReturnType: decl.VoidBoundary(),
				},
			},
			{
				Source: decl.Method{
					Name:        "paint",
					Owner:       &decl.ClassBase{Name: "QBroken"},
					IncludeFile: "QBroken",
				},
				CallName: "qbroken_paint",
				Signature: decl.CallSignature{
					ReturnType: decl.VoidBoundary(),
				},
			},
			{
				Source:   decl.Method{Name: "qRound", IncludeFile: "QtGlobal"},
				CallName: "q_round",
				Signature: decl.CallSignature{
					Arguments: []decl.CallArgument{
						{Name: "value", Type: plainBoundary(intType()), Role: decl.RolePositional},
					},
					ReturnType: plainBoundary(intType()),
				},
			},
		},
	}
}

func plainBoundary(t decl.Type) decl.BoundaryType {
	return decl.BoundaryType{CallType: t, OriginalType: t, Change: decl.ChangeNone}
}

func runConfig() *config.Config {
	return &config.Config{
		Library:            "qt_core",
		PrefixesToRemove:   []string{"q", "Q", "Qt"},
		FilteredNamespaces: []string{"Qt"},
		// A stack override without a known byte size drops the type.
		AllocationPlaces: map[string]string{"QBroken": config.PlaceStack},
	}
}

func findModule(t *testing.T, parent *assemble.Module, name string) *assemble.Module {
	t.Helper()

	for _, sub := range parent.Submodules {
		if sub.Name == name {
			return sub
		}
	}

	t.Fatalf("module %q not found under %q", name, parent.Path.String())

	return nil
}

func TestRun(t *testing.T) {
	t.Parallel()

	out, err := assemble.Run(runSnapshot(), runConfig(), zap.NewNop())
	require.NoError(t, err)
	require.True(t, out.Diagnostics.IsValid())
	require.Len(t, out.Modules, 1)

	root := out.Modules[0]
	assert.Equal(t, "qt_core", root.Name)

	point := findModule(t, root, "point")
	require.Len(t, point.Types, 1)

	entry := point.Types[0]
	assert.Equal(t, naming.Path{"qt_core", "point", "Point"}, entry.Info.TargetName)
	require.Len(t, entry.Methods, 1)
	assert.Equal(t, "set_x", entry.Methods[0].Name())
	assert.Equal(t, method.ReceiverMutRef, entry.Methods[0].Receiver)

	require.NotNil(t, entry.Cleanup)
	assert.True(t, entry.Cleanup.Automatic)
	assert.Equal(t, "qpoint_delete", entry.Cleanup.CallName)

	global := findModule(t, root, "global")
	require.Len(t, global.Types, 1)
	assert.Equal(t, "AlignmentFlag", global.Types[0].Info.TargetName.LastName())
	require.Len(t, global.Functions, 1)
	assert.Equal(t, "round", global.Functions[0].Name())
}

func TestRunDropsMethodsOfDroppedTypes(t *testing.T) {
	t.Parallel()

	out, err := assemble.Run(runSnapshot(), runConfig(), zap.NewNop())
	require.NoError(t, err)

	// QBroken has no valid allocation path: neither the type nor its module
	// nor its methods appear, and its boundary calls are not emitted.
	root := out.Modules[0]
	for _, sub := range root.Submodules {
		assert.NotEqual(t, "broken", sub.Name)
	}

	for _, d := range out.CallDescriptors {
		assert.NotEqual(t, "qbroken_paint", d.CallName)
	}

	assert.Positive(t, out.Diagnostics.SkipCount())
}

func TestRunCallDescriptors(t *testing.T) {
	t.Parallel()

	out, err := assemble.Run(runSnapshot(), runConfig(), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, out.CallDescriptors, 3)

	// Sorted by unit, then call name.
	assert.Equal(t, "qpoint_delete", out.CallDescriptors[0].CallName)
	assert.Equal(t, "qpoint_set_x", out.CallDescriptors[1].CallName)
	assert.Equal(t, "q_round", out.CallDescriptors[2].CallName)

	setX := out.CallDescriptors[1]
	assert.Equal(t, "QPoint", setX.Unit)
	require.Len(t, setX.Arguments, 2)
	assert.Equal(t, naming.Path{"qt_core", "point", "Point"}, setX.Arguments[0].Base)
	assert.Equal(t, naming.Path{"cabi", "c_int"}, setX.Arguments[1].Base)
}

func TestRunIsDeterministic(t *testing.T) {
	t.Parallel()

	first, err := assemble.Run(runSnapshot(), runConfig(), zap.NewNop())
	require.NoError(t, err)

	second, err := assemble.Run(runSnapshot(), runConfig(), zap.NewNop())
	require.NoError(t, err)

	assert.True(t, reflect.DeepEqual(first.Modules, second.Modules))
	assert.True(t, reflect.DeepEqual(first.CallDescriptors, second.CallDescriptors))
}

func TestRunResolvesTemplateDeclaredInOwnUnit(t *testing.T) {
	t.Parallel()

	// The template itself has no methods: its unit is known only from the
	// type declaration.
	snap := runSnapshot()
	snap.Types = append(snap.Types, decl.TypeDecl{
		Name:                "QVector",
		IncludeFile:         "QVector",
		Kind:                decl.DeclClass,
		IsTemplate:          true,
		HasPublicDestructor: true,
	})
	snap.TemplateInstantiations = []decl.TemplateInstantiations{
		{ClassName: "QVector", Instantiations: [][]decl.Type{{intType()}}},
	}

	out, err := assemble.Run(snap, runConfig(), zap.NewNop())
	require.NoError(t, err)

	info := out.Registry.FindBySource("QVector", []decl.Type{intType()})
	require.NotNil(t, info)
	assert.Equal(t, naming.Path{"qt_core", "vector", "VectorCInt"}, info.TargetName)

	vector := findModule(t, out.Modules[0], "vector")
	require.Len(t, vector.Types, 1)
	assert.Equal(t, "VectorCInt", vector.Types[0].Info.TargetName.LastName())
}

func TestRunDropsTypeCollidingAfterPrefixStrip(t *testing.T) {
	t.Parallel()

	// "Point" and "QPoint" collapse to the same target name; the first
	// declaration wins and the other is dropped with a diagnostic.
	snap := runSnapshot()
	snap.Types = append(snap.Types, decl.TypeDecl{
		Name:                "Point",
		IncludeFile:         "QPoint",
		Kind:                decl.DeclClass,
		ByteSize:            8,
		HasPublicDestructor: true,
	})

	out, err := assemble.Run(snap, runConfig(), zap.NewNop())
	require.NoError(t, err)

	point := findModule(t, out.Modules[0], "point")
	require.Len(t, point.Types, 1)
	assert.Equal(t, "QPoint", point.Types[0].Info.SourceName)

	found := false

	for _, d := range out.Diagnostics.Warnings {
		if d.Code == diagnostic.CodeStructuralViolation && d.Entity == "Point" {
			found = true
		}
	}

	assert.True(t, found)
}

func TestRunReportsUnitModules(t *testing.T) {
	t.Parallel()

	out, err := assemble.Run(runSnapshot(), runConfig(), zap.NewNop())
	require.NoError(t, err)

	require.Len(t, out.Units, 3)
	assert.Equal(t, "QBroken", out.Units[0].Unit)
	assert.Equal(t, assemble.UnitModule{
		Unit:   "QPoint",
		Module: naming.Path{"qt_core", "point"},
	}, out.Units[1])
	assert.Equal(t, naming.Path{"qt_core", "global"}, out.Units[2].Module)
}

func TestRunUnresolvedTemplateFails(t *testing.T) {
	t.Parallel()

	snap := runSnapshot()
	snap.Types = append(snap.Types, decl.TypeDecl{
		Name:        "QVector",
		IncludeFile: "QVector",
		Kind:        decl.DeclClass,
		IsTemplate:  true,
	})
	snap.TemplateInstantiations = []decl.TemplateInstantiations{
		{
			ClassName: "QVector",
			Instantiations: [][]decl.Type{
				{{Kind: decl.TypeKindClass, Class: &decl.ClassBase{Name: "QMissing"}}},
			},
		},
	}

	out, err := assemble.Run(snap, runConfig(), zap.NewNop())
	require.Error(t, err)
	assert.True(t, out.Diagnostics.HasErrors())
}
