package method

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"api-projector/internal/common"
	"api-projector/internal/decl"
	"api-projector/internal/diagnostic"
	"api-projector/internal/naming"
	"api-projector/internal/registry"
	"api-projector/internal/typemap"
)

// constructorName is the base name of projected constructors.
const constructorName = "new"

// Projector projects boundary methods against a frozen registry.
type Projector struct {
	reg   *registry.Registry
	res   *naming.Resolver
	diags *diagnostic.Diagnostics
	log   *zap.Logger
}

// NewProjector creates a Projector for one library run.
func NewProjector(
	reg *registry.Registry,
	res *naming.Resolver,
	diags *diagnostic.Diagnostics,
	log *zap.Logger,
) *Projector {
	return &Projector{reg: reg, res: res, diags: diags, log: log}
}

// Project processes all boundary methods of a run. Destructors and casts are
// routed to their dedicated outputs; everything else becomes a plain
// function. Per-method failures drop the method with a diagnostic and
// continue.
func (p *Projector) Project(methods []decl.BoundaryMethod) *Projection {
	out := &Projection{}

	for i := range methods {
		m := &methods[i]

		switch {
		case m.Source.IsDestructor:
			if cleanup, ok := p.projectCleanup(m); ok {
				out.Cleanups = append(out.Cleanups, cleanup)
			}
		case m.Cast != nil:
			if cast, ok := p.projectCast(m); ok {
				out.Casts = append(out.Casts, cast)
			}
		default:
			pm, err := p.projectOne(m)
			if err != nil {
				p.diags.AddWarning(diagnostic.CodeUnsupportedType, m.ShortText(), err.Error())
				p.log.Debug("skipping method", zap.String("method", m.ShortText()), zap.Error(err))

				continue
			}

			out.Methods = append(out.Methods, pm)
		}
	}

	return out
}

func (p *Projector) projectOne(m *decl.BoundaryMethod) (*ProjectedMethod, error) {
	ownerInfo, err := p.ownerInfo(m)
	if err != nil {
		return nil, err
	}

	targetName, err := p.methodTargetName(m, ownerInfo)
	if err != nil {
		return nil, err
	}

	pm := &ProjectedMethod{
		Source:     m,
		TargetName: targetName,
		Receiver:   ReceiverNone,
		Doc:        m.Source.Doc,
	}

	outReturnSeen := false

	for i := range m.Signature.Arguments {
		arg := &m.Signature.Arguments[i]

		switch arg.Role {
		case decl.RoleReceiver:
			if pm.Receiver != ReceiverNone {
				return nil, errors.New("more than one receiver argument")
			}

			ct, err := typemap.Complete(p.reg, arg.Type, decl.RoleReceiver, false, decl.PlaceNotApplicable)
			if err != nil {
				return nil, err
			}

			pm.ReceiverType = ct
			if arg.Type.OriginalType.IsConst {
				pm.Receiver = ReceiverConstRef
			} else {
				pm.Receiver = ReceiverMutRef
			}
		case decl.RoleOutReturn:
			if outReturnSeen {
				return nil, errors.New("more than one out-return slot")
			}

			outReturnSeen = true

			if !m.Signature.ReturnType.CallType.IsVoid() {
				return nil, errors.New("out-return slot requires a void boundary return")
			}

			ct, err := typemap.Complete(p.reg, arg.Type, decl.RoleOutReturn, false, m.AllocationPlace)
			if err != nil {
				return nil, err
			}

			pm.Return = ct
		case decl.RolePositional:
			ct, err := typemap.Complete(p.reg, arg.Type, decl.RolePositional, false, decl.PlaceNotApplicable)
			if err != nil {
				return nil, err
			}

			pm.Arguments = append(pm.Arguments, Argument{
				Name: argumentName(arg.Name, arg.Position),
				Type: ct,
			})
		}
	}

	if !outReturnSeen {
		ct, err := typemap.Complete(p.reg, m.Signature.ReturnType, decl.RoleOutReturn, false, m.AllocationPlace)
		if err != nil {
			return nil, err
		}

		pm.Return = ct
	}

	pm.CallerTrusted = hasPointerArguments(pm)
	p.assignScopes(pm)

	return pm, nil
}

// ownerInfo looks up the registry entry of the owning type. A method of an
// unregistered owner cannot be projected.
func (p *Projector) ownerInfo(m *decl.BoundaryMethod) (*registry.TargetTypeInfo, error) {
	owner := m.Source.Owner
	if owner == nil {
		return nil, nil
	}

	info := p.reg.FindBySource(owner.Name, owner.TemplateArguments)
	if info == nil {
		return nil, fmt.Errorf("owner type was not registered: %s", owner.String())
	}

	return info, nil
}

func (p *Projector) methodTargetName(
	m *decl.BoundaryMethod,
	ownerInfo *registry.TargetTypeInfo,
) (naming.Path, error) {
	if ownerInfo == nil {
		return p.res.Resolve(m.Source.Name, m.Source.IncludeFile, true, m.Source.Operator)
	}

	switch {
	case m.Source.IsConstructor:
		return ownerInfo.TargetName.Child(constructorName), nil
	case m.Source.Operator != nil:
		opName, err := naming.OperatorTargetName(m.Source.Operator)
		if err != nil {
			return nil, err
		}

		return ownerInfo.TargetName.Child(opName), nil
	default:
		name := naming.SanitizeIdent(naming.ToSnake(naming.SplitWords(m.Source.Name)))

		return ownerInfo.TargetName.Child(name), nil
	}
}

// assignScopes gives each reference argument a fresh validity-scope
// parameter. A reference return borrows the first of them; with no reference
// arguments it falls back to the unbounded scope, which is reported.
func (p *Projector) assignScopes(pm *ProjectedMethod) {
	next := 0

	freshScope := func() string {
		scope := fmt.Sprintf("l%d", next)
		next++
		pm.ScopeParams = append(pm.ScopeParams, scope)

		return scope
	}

	if pm.Receiver != ReceiverNone && pm.ReceiverType.APIType.IsRef() {
		pm.ReceiverType.APIType = pm.ReceiverType.APIType.WithScope(freshScope())
	}

	for i := range pm.Arguments {
		if pm.Arguments[i].Type.APIType.IsRef() {
			pm.Arguments[i].Type.APIType = pm.Arguments[i].Type.APIType.WithScope(freshScope())
		}
	}

	if !pm.Return.APIType.IsRef() {
		return
	}

	if scope, ok := common.First(pm.ScopeParams); ok {
		pm.Return.APIType = pm.Return.APIType.WithScope(scope)

		return
	}

	pm.Return.APIType = pm.Return.APIType.WithScope(typemap.UnboundedScope)
	p.diags.AddWarning(diagnostic.CodeUnboundedScope, pm.Source.ShortText(),
		"returned reference has no argument to borrow from")
	p.log.Debug("returned reference falls back to the unbounded scope",
		zap.String("method", pm.Source.ShortText()))
}

// projectCleanup routes a destructor to the cleanup capability of its type.
func (p *Projector) projectCleanup(m *decl.BoundaryMethod) (Cleanup, bool) {
	if m.Source.Owner == nil {
		p.diags.AddWarning(diagnostic.CodeStructuralViolation, m.ShortText(),
			"destructor declared outside a class scope")

		return Cleanup{}, false
	}

	info := p.reg.FindBySource(m.Source.Owner.Name, m.Source.Owner.TemplateArguments)
	if info == nil {
		p.diags.AddWarning(diagnostic.CodeUnresolvedReference, m.ShortText(),
			"destructor of an unregistered type")

		return Cleanup{}, false
	}

	return Cleanup{
		Type:      info.TargetName,
		Automatic: info.AllocationPlace == decl.PlaceStack,
		CallName:  m.CallName,
	}, true
}

// projectCast turns a recognized type-narrowing free function into a cast
// accessor. The boundary shape is one pointer argument and a pointer return.
func (p *Projector) projectCast(m *decl.BoundaryMethod) (CastAccessor, bool) {
	fail := func(msg string) (CastAccessor, bool) {
		p.diags.AddWarning(diagnostic.CodeStructuralViolation, m.ShortText(), msg)
		p.log.Debug("skipping cast", zap.String("method", m.ShortText()))

		return CastAccessor{}, false
	}

	if len(m.Signature.Arguments) != 1 {
		return fail("cast must take exactly one argument")
	}

	from, ok := p.castEndpoint(m.Signature.Arguments[0].Type.CallType)
	if !ok {
		return fail("cast source type is not registered")
	}

	to, ok := p.castEndpoint(m.Signature.ReturnType.CallType)
	if !ok {
		return fail("cast destination type is not registered")
	}

	return CastAccessor{
		Style:    m.Cast.Style,
		Checked:  m.Cast.Style != decl.CastStatic,
		Trusted:  m.Cast.Unchecked,
		Direct:   m.Cast.Direct,
		From:     from,
		To:       to,
		CallName: m.CallName,
	}, true
}

func (p *Projector) castEndpoint(t decl.Type) (naming.Path, bool) {
	if t.Kind != decl.TypeKindClass || t.Indirection != decl.IndirPtr {
		return nil, false
	}

	info := p.reg.FindBySource(t.Class.Name, t.Class.TemplateArguments)
	if info == nil {
		return nil, false
	}

	return info.TargetName, true
}

func argumentName(name string, position int) string {
	if name == "" {
		return fmt.Sprintf("arg%d", position+1)
	}

	return naming.SanitizeIdent(naming.ToSnake(naming.SplitWords(name)))
}

func hasPointerArguments(pm *ProjectedMethod) bool {
	for _, arg := range pm.Arguments {
		switch arg.Type.APIType.Indirection {
		case typemap.IndirPtr, typemap.IndirPtrPtr:
			return true
		}
	}

	return false
}
