package typemap

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"api-projector/internal/common"
	"api-projector/internal/config"
	"api-projector/internal/decl"
	"api-projector/internal/diagnostic"
	"api-projector/internal/naming"
	"api-projector/internal/registry"
)

// pendingInstantiation is one template instantiation whose final name is not
// yet resolvable: it needs the API-type captions of its own arguments, which
// may themselves be pending instantiations.
type pendingInstantiation struct {
	className   string
	includeFile string
	args        []decl.Type
	deletable   bool
	doc         string
	lastErr     error
}

func (p *pendingInstantiation) shortText() string {
	args := make([]string, 0, len(p.args))
	for _, a := range p.args {
		args = append(args, a.String())
	}

	return p.className + "<" + strings.Join(args, ", ") + ">"
}

// ResolveInstantiations runs the second registry pass: every concrete
// template instantiation is named and registered via worklist iteration to a
// fixed point. Entries still pending when a pass makes no progress are a
// run-aborting failure.
func ResolveInstantiations(
	reg *registry.Registry,
	snap *decl.Snapshot,
	res *naming.Resolver,
	cfg *config.Config,
	diags *diagnostic.Diagnostics,
	log *zap.Logger,
) error {
	var pending []*pendingInstantiation

	for _, group := range snap.TemplateInstantiations {
		if isFlagsTemplate(snap, group.ClassName) {
			// Flag-set instantiations are rewritten to the generic flags
			// wrapper instead of per-instantiation types.
			continue
		}

		typeDecl := snap.FindTypeDecl(group.ClassName)
		if typeDecl == nil {
			diags.AddError(diagnostic.CodeUnresolvedReference, group.ClassName,
				"template instantiation refers to an undeclared template")

			return fmt.Errorf("no type declaration found for template %s", group.ClassName)
		}

		for _, args := range group.Instantiations {
			pending = append(pending, &pendingInstantiation{
				className:   group.ClassName,
				includeFile: typeDecl.IncludeFile,
				args:        args,
				deletable:   typeDecl.HasPublicDestructor,
				doc:         typeDecl.Doc,
			})
		}
	}

	for !common.IsEmpty(pending) {
		progress := false

		var remaining []*pendingInstantiation

		for _, p := range pending {
			if err := finalizeInstantiation(reg, p, res, cfg); err != nil {
				p.lastErr = err
				remaining = append(remaining, p)

				continue
			}

			log.Debug("resolved template instantiation", zap.String("type", p.shortText()))

			progress = true
		}

		pending = remaining

		if !progress {
			break
		}
	}

	if !common.IsEmpty(pending) {
		for _, p := range pending {
			diags.AddError(diagnostic.CodeInvalidTemplateArgs, p.shortText(),
				"unresolved template dependency: "+p.lastErr.Error())
		}

		return errors.New("template instantiation names did not converge")
	}

	return nil
}

// finalizeInstantiation attempts to name and register one instantiation.
// It fails when an argument type is not resolvable against the registry yet.
func finalizeInstantiation(
	reg *registry.Registry,
	p *pendingInstantiation,
	res *naming.Resolver,
	cfg *config.Config,
) error {
	if reg.FindBySource(p.className, p.args) != nil {
		return nil
	}

	baseName, err := res.Resolve(p.className, p.includeFile, false, nil)
	if err != nil {
		return err
	}

	var captions strings.Builder

	for _, arg := range p.args {
		complete, err := Complete(reg, LowerTemplateArgument(arg), decl.RolePositional, true, decl.PlaceNotApplicable)
		if err != nil {
			return err
		}

		caption, err := complete.APIType.Caption()
		if err != nil {
			return err
		}

		captions.WriteString(naming.ToClass(naming.SplitWords(caption)))
	}

	targetName := baseName.Parent().Child(baseName.LastName() + captions.String())

	place, overridden := cfg.AllocationOverride(p.className)
	if !overridden {
		// Instantiation sizes are not stack-representable in the parsed
		// model, so instantiations default to heap allocation.
		place = decl.PlaceHeap
	}

	info := registry.TargetTypeInfo{
		SourceName:        p.className,
		TemplateArguments: p.args,
		TargetName:        targetName,
		Kind:              registry.KindOpaque,
		AllocationPlace:   place,
		Deletable:         p.deletable,
		Doc:               p.doc,
	}

	if place == decl.PlaceStack {
		info.SizeConstName = registry.SizeConstName(targetName)
	}

	return reg.Add(info)
}

// LowerTemplateArgument derives the boundary type of a template argument:
// by-value class types are lowered behind a pointer, references become
// pointers, everything else passes unchanged.
func LowerTemplateArgument(t decl.Type) decl.BoundaryType {
	callType := t
	change := decl.ChangeNone

	switch {
	case t.Kind == decl.TypeKindClass && t.Indirection == decl.IndirNone:
		callType.Indirection = decl.IndirPtr
		change = decl.ChangeValueToPointer
	case t.Indirection == decl.IndirRef:
		callType.Indirection = decl.IndirPtr
		change = decl.ChangeReferenceToPointer
	case t.Indirection == decl.IndirRefRef || t.Indirection == decl.IndirPtrRef:
		callType.Indirection = decl.IndirPtrPtr
		change = decl.ChangeReferenceToPointer
	}

	return decl.BoundaryType{CallType: callType, OriginalType: t, Change: change}
}

func isFlagsTemplate(snap *decl.Snapshot, className string) bool {
	for _, ft := range snap.FlagsTemplates {
		if ft == className {
			return true
		}
	}

	return false
}
