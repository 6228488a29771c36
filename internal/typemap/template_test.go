package typemap_test

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
	"api-projector/internal/typemap"
)

func vectorSnapshot(instantiations ...[]decl.Type) *decl.Snapshot {
	return &decl.Snapshot{
		Types: []decl.TypeDecl{
			{
				Name:                "QVector",
				IncludeFile:         "QVector",
				Kind:                decl.DeclClass,
				IsTemplate:          true,
				HasPublicDestructor: true,
			},
		},
		TemplateInstantiations: []decl.TemplateInstantiations{
			{ClassName: "QVector", Instantiations: instantiations},
		},
	}
}

func resolveInstantiations(
	t *testing.T,
	snap *decl.Snapshot,
	cfg *config.Config,
) (*registry.Registry, *diagnostic.Diagnostics, error) {
	t.Helper()

	reg := registry.New()
	res := naming.NewResolver(cfg.Library, cfg.PrefixesToRemove, cfg.FilteredNamespaces)
	diags := &diagnostic.Diagnostics{}

	for i := range snap.Types {
		res.RegisterUnit(snap.Types[i].IncludeFile)
	}

	err := typemap.ResolveInstantiations(reg, snap, res, cfg, diags, zap.NewNop())

	return reg, diags, err
}

func qtConfig() *config.Config {
	return &config.Config{Library: "qt_core", PrefixesToRemove: []string{"q", "Q", "Qt"}}
}

func TestResolveInstantiationsNames(t *testing.T) {
	t.Parallel()

	snap := vectorSnapshot(
		[]decl.Type{intType()},
		[]decl.Type{classType("QVector", intType())},
	)

	reg, diags, err := resolveInstantiations(t, snap, qtConfig())
	require.NoError(t, err)
	require.True(t, diags.IsValid())
	require.Len(t, reg.Own(), 2)

	plain := reg.FindBySource("QVector", []decl.Type{intType()})
	require.NotNil(t, plain)
	assert.Equal(t, naming.Path{"qt_core", "vector", "VectorCInt"}, plain.TargetName)
	assert.Equal(t, decl.PlaceHeap, plain.AllocationPlace)
	assert.True(t, plain.Deletable)
	assert.Empty(t, plain.SizeConstName)

	// The nested instantiation resolves once the inner one is registered.
	nested := reg.FindBySource("QVector", []decl.Type{classType("QVector", intType())})
	require.NotNil(t, nested)
	assert.Equal(t, naming.Path{"qt_core", "vector", "VectorVectorCInt"}, nested.TargetName)
}

func TestResolveInstantiationsStackOverride(t *testing.T) {
	t.Parallel()

	cfg := qtConfig()
	cfg.AllocationPlaces = map[string]string{"QVector": config.PlaceStack}

	reg, _, err := resolveInstantiations(t, vectorSnapshot([]decl.Type{intType()}), cfg)
	require.NoError(t, err)

	info := reg.FindBySource("QVector", []decl.Type{intType()})
	require.NotNil(t, info)
	assert.Equal(t, decl.PlaceStack, info.AllocationPlace)
	assert.Equal(t, "QT_CORE_VECTOR_VECTOR_C_INT", info.SizeConstName)
}

func TestResolveInstantiationsUnresolvedArgument(t *testing.T) {
	t.Parallel()

	snap := vectorSnapshot([]decl.Type{classType("QMissing")})

	_, diags, err := resolveInstantiations(t, snap, qtConfig())
	require.Error(t, err)
	assert.False(t, diags.IsValid())
	assert.Equal(t, diagnostic.CodeInvalidTemplateArgs, diags.Errors[0].Code)
}

func TestResolveInstantiationsSkipsFlagsTemplates(t *testing.T) {
	t.Parallel()

	snap := vectorSnapshot([]decl.Type{intType()})
	snap.FlagsTemplates = []string{"QVector"}

	reg, diags, err := resolveInstantiations(t, snap, qtConfig())
	require.NoError(t, err)
	assert.True(t, diags.IsValid())
	assert.Empty(t, reg.Own())
}

func TestLowerTemplateArgument(t *testing.T) {
	t.Parallel()

	bt := typemap.LowerTemplateArgument(classType("QPoint"))
	assert.Equal(t, decl.ChangeValueToPointer, bt.Change)
	assert.Equal(t, decl.IndirPtr, bt.CallType.Indirection)

	ref := classType("QPoint")
	ref.Indirection = decl.IndirRef
	bt = typemap.LowerTemplateArgument(ref)
	assert.Equal(t, decl.ChangeReferenceToPointer, bt.Change)
	assert.Equal(t, decl.IndirPtr, bt.CallType.Indirection)

	bt = typemap.LowerTemplateArgument(intType())
	assert.Equal(t, decl.ChangeNone, bt.Change)
	assert.Equal(t, intType(), bt.CallType)
}
