package registry

import (
	"errors"

	"go.uber.org/zap"

	"api-projector/internal/config"
	"api-projector/internal/decl"
	"api-projector/internal/diagnostic"
	"api-projector/internal/naming"
)

// BuildDirect runs the first registry pass: every directly declared type is
// named, classified and added. Class templates are skipped here; their
// concrete instantiations are resolved in the second pass. Per-type failures
// drop the type with a diagnostic and continue.
func BuildDirect(
	reg *Registry,
	snap *decl.Snapshot,
	res *naming.Resolver,
	cfg *config.Config,
	diags *diagnostic.Diagnostics,
	log *zap.Logger,
) error {
	for i := range snap.Types {
		t := &snap.Types[i]

		res.RegisterUnit(t.IncludeFile)

		if t.Kind == decl.DeclClass && t.IsTemplate {
			continue
		}

		targetName, err := res.Resolve(t.Name, t.IncludeFile, false, nil)
		if err != nil {
			diags.AddWarning(diagnostic.CodeUnresolvedReference, t.Name, err.Error())
			log.Debug("skipping type: name resolution failed", zap.String("type", t.Name), zap.Error(err))

			continue
		}

		var info TargetTypeInfo

		switch t.Kind {
		case decl.DeclClass:
			classInfo, ok := classTypeInfo(t, targetName, cfg, diags, log)
			if !ok {
				continue
			}

			info = classInfo
		case decl.DeclEnum:
			if len(t.EnumValues) == 0 {
				diags.AddWarning(diagnostic.CodeStructuralViolation, t.Name, "enumeration has no values")
				log.Debug("skipping enum without values", zap.String("type", t.Name))

				continue
			}

			info = TargetTypeInfo{
				SourceName: t.Name,
				TargetName: targetName,
				Kind:       KindEnum,
				Variants:   PrepareEnumVariants(t.EnumValues),
				Flaggable:  snap.IsFlaggableEnum(t.Name),
				Doc:        t.Doc,
			}
		}

		if err := reg.Add(info); err != nil {
			if errors.Is(err, ErrDuplicateTarget) {
				diags.AddWarning(diagnostic.CodeStructuralViolation, t.Name,
					"target name "+targetName.String()+" is already taken by another type")
				log.Debug("skipping type: target name collision",
					zap.String("type", t.Name), zap.String("target", targetName.String()))

				continue
			}

			return err
		}
	}

	return nil
}

// classTypeInfo decides the allocation place of a class type and builds its
// registry entry. A type with no valid allocation path is dropped.
func classTypeInfo(
	t *decl.TypeDecl,
	targetName naming.Path,
	cfg *config.Config,
	diags *diagnostic.Diagnostics,
	log *zap.Logger,
) (TargetTypeInfo, bool) {
	place, overridden := cfg.AllocationOverride(t.Name)
	if !overridden {
		place = defaultAllocationPlace(t)
	}

	if place == decl.PlaceStack && t.ByteSize == 0 {
		diags.AddWarning(diagnostic.CodeUnsupportedType, t.Name,
			"stack allocation requires a known byte size")
		log.Debug("skipping type without valid allocation path", zap.String("type", t.Name))

		return TargetTypeInfo{}, false
	}

	info := TargetTypeInfo{
		SourceName:      t.Name,
		TargetName:      targetName,
		Kind:            KindOpaque,
		AllocationPlace: place,
		Deletable:       t.HasPublicDestructor,
		Doc:             t.Doc,
	}

	if place == decl.PlaceStack {
		info.SizeConstName = SizeConstName(targetName)
	}

	return info, true
}

// defaultAllocationPlace is the heuristic used when no override is
// configured: stack when the type has a known size and a destructor the
// generated cleanup can call, heap otherwise.
func defaultAllocationPlace(t *decl.TypeDecl) decl.AllocationPlace {
	if t.ByteSize > 0 && t.HasPublicDestructor {
		return decl.PlaceStack
	}

	return decl.PlaceHeap
}
