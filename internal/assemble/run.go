package assemble

import (
	"sort"

	"go.uber.org/zap"

	"api-projector/internal/config"
	"api-projector/internal/decl"
	"api-projector/internal/diagnostic"
	"api-projector/internal/method"
	"api-projector/internal/naming"
	"api-projector/internal/overload"
	"api-projector/internal/registry"
	"api-projector/internal/typemap"
)

// CallDescriptor is the boundary-side shape of one generated call, grouped
// by declaring unit for the boundary-layer emitter.
type CallDescriptor struct {
	CallName string
	// Unit is the declaring source unit.
	Unit      string
	Arguments []typemap.TargetType
	Return    typemap.TargetType
}

// UnitModule records the target module derived for one declaring source
// unit.
type UnitModule struct {
	Unit   string
	Module naming.Path
}

// Output is the complete result of one projection run.
type Output struct {
	// Modules are the library root modules of the target tree.
	Modules []*Module
	// Units maps every declaring source unit seen in the snapshot to its
	// derived module path, sorted by unit.
	Units []UnitModule
	// CallDescriptors lists the boundary calls of everything placed in the
	// tree, sorted by unit and call name.
	CallDescriptors []CallDescriptor
	// Registry is the frozen type registry of the run, usable as a
	// dependency registry for downstream library runs.
	Registry *registry.Registry
	// Diagnostics collects everything reported during the run.
	Diagnostics *diagnostic.Diagnostics
}

// Run executes a full projection: naming, type registration, template
// resolution, method projection, overload resolution and tree assembly.
// deps are the frozen registries of already-projected dependency libraries.
func Run(
	snap *decl.Snapshot,
	cfg *config.Config,
	log *zap.Logger,
	deps ...*registry.Registry,
) (*Output, error) {
	diags := &diagnostic.Diagnostics{}
	out := &Output{Diagnostics: diags}

	snap = withConfigFlagsTemplates(snap, cfg)
	res := naming.NewResolver(cfg.Library, cfg.PrefixesToRemove, cfg.FilteredNamespaces)

	for i := range snap.Methods {
		res.RegisterUnit(snap.Methods[i].Source.IncludeFile)
	}

	reg := registry.New(deps...)
	out.Registry = reg

	if err := registry.BuildDirect(reg, snap, res, cfg, diags, log); err != nil {
		return out, err
	}

	if err := typemap.ResolveInstantiations(reg, snap, res, cfg, diags, log); err != nil {
		return out, err
	}

	reg.Freeze()
	log.Info("type registry frozen", zap.Int("types", len(reg.Own())))

	out.Units = unitModules(res)

	projection := method.NewProjector(reg, res, diags, log).Project(snap.Methods)

	resolved, err := overload.Resolve(projection.Methods, diags, log)
	if err != nil {
		return out, err
	}

	if err := placeAll(out, cfg.Library, reg, resolved, projection, diags); err != nil {
		return out, err
	}

	out.CallDescriptors = callDescriptors(reg, snap, resolved, projection)

	log.Info("projection finished",
		zap.Int("modules", len(out.Modules)),
		zap.Int("calls", len(out.CallDescriptors)),
		zap.Int("skipped", diags.SkipCount()))

	return out, diags.Error()
}

func placeAll(
	out *Output,
	library string,
	reg *registry.Registry,
	resolved *overload.Resolved,
	projection *method.Projection,
	diags *diagnostic.Diagnostics,
) error {
	tree := newTreeBuilder(library)

	own := reg.Own()
	for i := range own {
		if err := tree.placeType(&own[i]); err != nil {
			diags.AddError(diagnostic.CodeUnplacedEntity, own[i].SourceName, err.Error())
		}
	}

	for _, fn := range resolved.Functions {
		if err := tree.placeFunction(fn); err != nil {
			diags.AddError(diagnostic.CodeUnplacedEntity, fn.Source.ShortText(), err.Error())
		}
	}

	for _, d := range resolved.Dispatchers {
		if err := tree.placeDispatcher(d); err != nil {
			diags.AddError(diagnostic.CodeUnplacedEntity, d.Function.String(), err.Error())
		}
	}

	for _, c := range projection.Cleanups {
		if err := tree.placeCleanup(c); err != nil {
			diags.AddError(diagnostic.CodeUnplacedEntity, c.Type.String(), err.Error())
		}
	}

	for _, c := range projection.Casts {
		if err := tree.placeCast(c); err != nil {
			diags.AddError(diagnostic.CodeUnplacedEntity, c.CallName, err.Error())
		}
	}

	if diags.HasErrors() {
		return diags.Error()
	}

	out.Modules = tree.build()

	return nil
}

// unitModules flattens the resolver's registered units into a sorted list.
func unitModules(res *naming.Resolver) []UnitModule {
	all := res.UnitModules()

	units := make([]UnitModule, 0, len(all))
	for unit, module := range all {
		units = append(units, UnitModule{Unit: unit, Module: module})
	}

	sort.Slice(units, func(i, j int) bool { return units[i].Unit < units[j].Unit })

	return units
}

// callDescriptors builds the boundary call list for every method that
// survived projection.
func callDescriptors(
	reg *registry.Registry,
	snap *decl.Snapshot,
	resolved *overload.Resolved,
	projection *method.Projection,
) []CallDescriptor {
	used := make(map[string]struct{})

	for _, fn := range resolved.Functions {
		used[fn.Source.CallName] = struct{}{}
	}

	for _, d := range resolved.Dispatchers {
		for _, fn := range d.Overloads {
			used[fn.Source.CallName] = struct{}{}
		}
	}

	for _, c := range projection.Cleanups {
		used[c.CallName] = struct{}{}
	}

	for _, c := range projection.Casts {
		used[c.CallName] = struct{}{}
	}

	var descriptors []CallDescriptor

	for i := range snap.Methods {
		m := &snap.Methods[i]
		if _, ok := used[m.CallName]; !ok {
			continue
		}

		d := CallDescriptor{CallName: m.CallName, Unit: m.Source.IncludeFile}

		ok := true

		for _, arg := range m.Signature.Arguments {
			t, err := typemap.CallType(reg, arg.Type.CallType)
			if err != nil {
				ok = false
				break
			}

			d.Arguments = append(d.Arguments, t)
		}

		if !ok {
			continue
		}

		ret, err := typemap.CallType(reg, m.Signature.ReturnType.CallType)
		if err != nil {
			continue
		}

		d.Return = ret
		descriptors = append(descriptors, d)
	}

	sort.Slice(descriptors, func(i, j int) bool {
		if descriptors[i].Unit != descriptors[j].Unit {
			return descriptors[i].Unit < descriptors[j].Unit
		}

		return descriptors[i].CallName < descriptors[j].CallName
	})

	return descriptors
}

// withConfigFlagsTemplates merges configured flag-set templates into a
// shallow copy of the snapshot.
func withConfigFlagsTemplates(snap *decl.Snapshot, cfg *config.Config) *decl.Snapshot {
	if len(cfg.FlagsTemplates) == 0 {
		return snap
	}

	merged := *snap
	merged.FlagsTemplates = append(append([]string{}, snap.FlagsTemplates...), cfg.FlagsTemplates...)

	return &merged
}
