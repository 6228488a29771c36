// Package assemble orchestrates a full projection run and arranges its
// results into the target module tree.
package assemble

import (
	"fmt"
	"sort"

	"api-projector/internal/method"
	"api-projector/internal/naming"
	"api-projector/internal/overload"
	"api-projector/internal/registry"
)

// TypeEntry is one projected type together with everything attached to it.
type TypeEntry struct {
	Info *registry.TargetTypeInfo
	// Methods are the functions whose path nests under the type.
	Methods     []*method.ProjectedMethod
	Dispatchers []overload.Dispatcher
	// Cleanup is the destructor routing, nil when the type has none.
	Cleanup *method.Cleanup
	// Casts lists the narrowing accessors originating at this type.
	Casts []method.CastAccessor
}

// Module is one node of the target module tree.
type Module struct {
	Name string
	Path naming.Path
	// Types are the type entries declared directly in this module.
	Types []*TypeEntry
	// Functions are the free functions declared directly in this module.
	Functions   []*method.ProjectedMethod
	Dispatchers []overload.Dispatcher
	// Markers are the dispatch marker types of this module; only the
	// overloading submodule carries them.
	Markers    []naming.Path
	Submodules []*Module
}

// IsEmpty reports whether the module contributes nothing to the output.
func (m *Module) IsEmpty() bool {
	return len(m.Types) == 0 && len(m.Functions) == 0 &&
		len(m.Dispatchers) == 0 && len(m.Markers) == 0 && len(m.Submodules) == 0
}

// treeBuilder accumulates placements and materializes the module tree.
type treeBuilder struct {
	library string
	modules map[string]*Module
	types   map[string]*TypeEntry
}

func newTreeBuilder(library string) *treeBuilder {
	return &treeBuilder{
		library: library,
		modules: make(map[string]*Module),
		types:   make(map[string]*TypeEntry),
	}
}

// module returns the module at the given path, creating it and its parents
// on first use. The path must start at the library root.
func (b *treeBuilder) module(p naming.Path) (*Module, error) {
	if len(p) == 0 || p[0] != b.library {
		return nil, fmt.Errorf("path %q is outside the library root", p.String())
	}

	key := p.String()
	if m, ok := b.modules[key]; ok {
		return m, nil
	}

	m := &Module{Name: p.LastName(), Path: p}
	b.modules[key] = m

	return m, nil
}

func (b *treeBuilder) placeType(info *registry.TargetTypeInfo) error {
	mod, err := b.module(info.TargetName.Parent())
	if err != nil {
		return err
	}

	entry := &TypeEntry{Info: info}
	mod.Types = append(mod.Types, entry)
	b.types[info.TargetName.String()] = entry

	return nil
}

func (b *treeBuilder) placeFunction(pm *method.ProjectedMethod) error {
	parent := pm.TargetName.Parent()

	if entry, ok := b.types[parent.String()]; ok {
		entry.Methods = append(entry.Methods, pm)

		return nil
	}

	mod, err := b.module(parent)
	if err != nil {
		return err
	}

	mod.Functions = append(mod.Functions, pm)

	return nil
}

// placeDispatcher attaches a dispatch set and registers its marker type in
// the overloading submodule of the owning module.
func (b *treeBuilder) placeDispatcher(d overload.Dispatcher) error {
	parent := d.Function.Parent()
	owningModule := parent

	if entry, ok := b.types[parent.String()]; ok {
		owningModule = parent.Parent()
		d.Marker = owningModule.Child(overload.OverloadingModule).Child(d.Marker.LastName())
		entry.Dispatchers = append(entry.Dispatchers, d)
	} else {
		mod, err := b.module(parent)
		if err != nil {
			return err
		}

		d.Marker = owningModule.Child(overload.OverloadingModule).Child(d.Marker.LastName())
		mod.Dispatchers = append(mod.Dispatchers, d)
	}

	markers, err := b.module(d.Marker.Parent())
	if err != nil {
		return err
	}

	markers.Markers = append(markers.Markers, d.Marker)

	return nil
}

func (b *treeBuilder) placeCleanup(c method.Cleanup) error {
	entry, ok := b.types[c.Type.String()]
	if !ok {
		return fmt.Errorf("cleanup target type %q is not placed", c.Type.String())
	}

	entry.Cleanup = &c

	return nil
}

func (b *treeBuilder) placeCast(c method.CastAccessor) error {
	entry, ok := b.types[c.From.String()]
	if !ok {
		return fmt.Errorf("cast source type %q is not placed", c.From.String())
	}

	entry.Casts = append(entry.Casts, c)

	return nil
}

// build links modules into a tree, prunes empty nodes and sorts everything
// for deterministic output. The returned slice holds the library roots.
func (b *treeBuilder) build() []*Module {
	// Ensure every intermediate module exists before linking.
	for _, key := range sortedKeys(b.modules) {
		for p := b.modules[key].Path.Parent(); len(p) > 0; p = p.Parent() {
			_, _ = b.module(p)
		}
	}

	var roots []*Module

	for _, key := range sortedKeys(b.modules) {
		m := b.modules[key]
		if len(m.Path) == 1 {
			roots = append(roots, m)

			continue
		}

		parent := b.modules[m.Path.Parent().String()]
		parent.Submodules = append(parent.Submodules, m)
	}

	for i := range roots {
		roots[i] = prune(roots[i])
	}

	out := roots[:0]

	for _, r := range roots {
		if r != nil {
			sortModule(r)
			out = append(out, r)
		}
	}

	return out
}

// prune drops empty submodules recursively; a module that ends up empty is
// dropped itself.
func prune(m *Module) *Module {
	kept := m.Submodules[:0]

	for _, sub := range m.Submodules {
		if p := prune(sub); p != nil {
			kept = append(kept, p)
		}
	}

	m.Submodules = kept

	if m.IsEmpty() {
		return nil
	}

	return m
}

func sortModule(m *Module) {
	sort.Slice(m.Types, func(i, j int) bool {
		return m.Types[i].Info.TargetName.String() < m.Types[j].Info.TargetName.String()
	})
	sort.Slice(m.Functions, func(i, j int) bool {
		return m.Functions[i].TargetName.String() < m.Functions[j].TargetName.String()
	})
	sort.Slice(m.Dispatchers, func(i, j int) bool {
		return m.Dispatchers[i].Function.String() < m.Dispatchers[j].Function.String()
	})
	sort.Slice(m.Markers, func(i, j int) bool {
		return m.Markers[i].String() < m.Markers[j].String()
	})
	sort.Slice(m.Submodules, func(i, j int) bool {
		return m.Submodules[i].Name < m.Submodules[j].Name
	})

	for _, entry := range m.Types {
		sort.Slice(entry.Methods, func(i, j int) bool {
			return entry.Methods[i].TargetName.String() < entry.Methods[j].TargetName.String()
		})
		sort.Slice(entry.Dispatchers, func(i, j int) bool {
			return entry.Dispatchers[i].Function.String() < entry.Dispatchers[j].Function.String()
		})
		sort.Slice(entry.Casts, func(i, j int) bool {
			return entry.Casts[i].CallName < entry.Casts[j].CallName
		})
	}

	for _, sub := range m.Submodules {
		sortModule(sub)
	}
}

func sortedKeys(m map[string]*Module) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
