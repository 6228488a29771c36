package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"api-projector/internal/config"
	"api-projector/internal/decl"
	"api-projector/internal/diagnostic"
	"api-projector/internal/naming"
	"api-projector/internal/registry"
)

func buildTestSnapshot() *decl.Snapshot {
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
				Name:        "QObject",
				IncludeFile: "QObject",
				Kind:        decl.DeclClass,
			},
			{
				Name:        "QVector",
				IncludeFile: "QVector",
				Kind:        decl.DeclClass,
				IsTemplate:  true,
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
}

func buildDirect(t *testing.T, snap *decl.Snapshot, cfg *config.Config) (*registry.Registry, *diagnostic.Diagnostics) {
	t.Helper()

	reg := registry.New()
	res := naming.NewResolver(cfg.Library, cfg.PrefixesToRemove, cfg.FilteredNamespaces)
	diags := &diagnostic.Diagnostics{}

	require.NoError(t, registry.BuildDirect(reg, snap, res, cfg, diags, zap.NewNop()))

	return reg, diags
}

func TestBuildDirect(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Library:            "qt_core",
		PrefixesToRemove:   []string{"q", "Q", "Qt"},
		FilteredNamespaces: []string{"Qt"},
	}
	reg, diags := buildDirect(t, buildTestSnapshot(), cfg)

	require.True(t, diags.IsValid())
	require.Len(t, reg.Own(), 3)

	point := reg.FindBySource("QPoint", nil)
	require.NotNil(t, point)
	assert.Equal(t, naming.Path{"qt_core", "point", "Point"}, point.TargetName)
	assert.Equal(t, decl.PlaceStack, point.AllocationPlace)
	assert.Equal(t, "QT_CORE_POINT_POINT", point.SizeConstName)
	assert.True(t, point.Deletable)

	object := reg.FindBySource("QObject", nil)
	require.NotNil(t, object)
	assert.Equal(t, decl.PlaceHeap, object.AllocationPlace)
	assert.Empty(t, object.SizeConstName)
	assert.False(t, object.Deletable)

	// Templates are left for the instantiation pass.
	assert.Nil(t, reg.FindBySource("QVector", nil))

	align := reg.FindBySource("Qt::AlignmentFlag", nil)
	require.NotNil(t, align)
	assert.Equal(t, registry.KindEnum, align.Kind)
	assert.True(t, align.Flaggable)
	assert.Equal(t, naming.Path{"qt_core", "global", "AlignmentFlag"}, align.TargetName)
}

func TestBuildDirectAllocationOverride(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Library:          "qt_core",
		PrefixesToRemove: []string{"q", "Q", "Qt"},
		AllocationPlaces: map[string]string{
			"QPoint":  config.PlaceHeap,
			"QObject": config.PlaceStack,
		},
	}
	reg, diags := buildDirect(t, buildTestSnapshot(), cfg)

	point := reg.FindBySource("QPoint", nil)
	require.NotNil(t, point)
	assert.Equal(t, decl.PlaceHeap, point.AllocationPlace)
	assert.Empty(t, point.SizeConstName)

	// A stack override without a known byte size leaves the type with no
	// valid allocation path; it is dropped with a diagnostic.
	assert.Nil(t, reg.FindBySource("QObject", nil))
	assert.True(t, diags.IsValid())
	assert.Positive(t, diags.SkipCount())
}

func TestBuildDirectSkipsEmptyEnum(t *testing.T) {
	t.Parallel()

	snap := &decl.Snapshot{
		Types: []decl.TypeDecl{
			{Name: "Hollow", IncludeFile: "hollow", Kind: decl.DeclEnum},
		},
	}

	cfg := &config.Config{Library: "lib"}
	reg, diags := buildDirect(t, snap, cfg)

	assert.Empty(t, reg.Own())
	assert.True(t, diags.IsValid())
	assert.Equal(t, 1, diags.SkipCount())
}
