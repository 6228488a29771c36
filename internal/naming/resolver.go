package naming

import (
	"fmt"
	"strings"
	"unicode"

	"api-projector/internal/decl"
)

// Case selects the case-conversion mode for a name.
type Case int

const (
	// CaseClass produces type-case names: "OneTwo".
	CaseClass Case = iota
	// CaseSnake produces word-joined lower-case names: "one_two".
	CaseSnake
)

// RemovePrefixAndConvertCase strips one matching prefix from the first word
// of the identifier and converts its case. The prefix is stripped only if the
// name has more than one word and the second word does not begin with a digit.
func RemovePrefixAndConvertCase(s string, c Case, prefixes []string) string {
	words := SplitWords(s)

	if len(words) > 1 && !startsWithDigit(words[1]) {
		for _, prefix := range prefixes {
			if words[0] == prefix {
				words = words[1:]
				break
			}
		}
	}

	if c == CaseSnake {
		return ToSnake(words)
	}

	return ToClass(words)
}

func startsWithDigit(word string) bool {
	for _, r := range word {
		return unicode.IsDigit(r)
	}

	return false
}

// UnitModuleName derives a module name from a declaring source unit: the
// filename is stripped of its extension, prefix-stripped and snake-cased.
func UnitModuleName(includeFile string, prefixes []string) string {
	base := includeFile
	if idx := strings.IndexByte(base, '.'); idx >= 0 {
		base = base[:idx]
	}

	return RemovePrefixAndConvertCase(base, CaseSnake, prefixes)
}

// Resolver maps declaration names onto target identifier paths.
type Resolver struct {
	library     string
	prefixes    []string
	filtered    map[string]struct{}
	unitModules map[string]Path
}

// NewResolver creates a Resolver for one library run.
func NewResolver(library string, prefixes, filteredNamespaces []string) *Resolver {
	filtered := make(map[string]struct{}, len(filteredNamespaces))
	for _, ns := range filteredNamespaces {
		filtered[ns] = struct{}{}
	}

	return &Resolver{
		library:     library,
		prefixes:    prefixes,
		filtered:    filtered,
		unitModules: make(map[string]Path),
	}
}

// Library returns the target library name.
func (r *Resolver) Library() string {
	return r.library
}

// RegisterUnit records the declaring source unit and derives its module path.
func (r *Resolver) RegisterUnit(includeFile string) {
	if _, ok := r.unitModules[includeFile]; ok {
		return
	}

	r.unitModules[includeFile] = Path{r.library, UnitModuleName(includeFile, r.prefixes)}
}

// UnitModule returns the module path of a registered declaring unit.
func (r *Resolver) UnitModule(includeFile string) (Path, bool) {
	p, ok := r.unitModules[includeFile]
	return p, ok
}

// UnitModules returns all registered unit module paths keyed by unit.
func (r *Resolver) UnitModules() map[string]Path {
	return r.unitModules
}

// Resolve produces the target identifier path for a declaration name. The
// name may be namespace-qualified with "::". isCallable selects word-joined
// lower case for the final segment; operator overrides the final segment
// entirely.
func (r *Resolver) Resolve(name, includeFile string, isCallable bool, operator *decl.Operator) (Path, error) {
	parts := strings.Split(name, "::")
	last := parts[len(parts)-1]
	parts = parts[:len(parts)-1]

	var lastSegment string

	if operator != nil {
		opName, err := OperatorTargetName(operator)
		if err != nil {
			return nil, err
		}

		lastSegment = opName
	} else {
		c := CaseClass
		if isCallable {
			c = CaseSnake
		}

		lastSegment = RemovePrefixAndConvertCase(last, c, r.prefixes)
	}

	module, ok := r.unitModules[includeFile]
	if !ok {
		return nil, fmt.Errorf("no module registered for declaring unit %q", includeFile)
	}

	result := make(Path, 0, len(module)+len(parts)+1)
	result = append(result, module...)

	for _, part := range parts {
		if _, skip := r.filtered[part]; skip {
			continue
		}

		result = append(result, RemovePrefixAndConvertCase(part, CaseSnake, r.prefixes))
	}

	// The declaring unit and the first namespace may share a name; collapse
	// the duplicate segment.
	if len(result) > 2 && result[1] == result[2] {
		result = append(result[:2], result[3:]...)
	}

	result = append(result, SanitizeIdent(lastSegment))

	return NewPath(result...)
}

// OperatorTargetName returns the callable name representing an operator.
// Conversion operators are named after their target type; all others use a
// fixed "op_" table.
func OperatorTargetName(op *decl.Operator) (string, error) {
	if op.Kind == decl.OpConversion {
		if op.ConversionType == nil {
			return "", fmt.Errorf("conversion operator without a target type")
		}

		return "as_" + TypeCaption(*op.ConversionType), nil
	}

	name, err := op.BoundaryName()
	if err != nil {
		return "", err
	}

	return "op_" + name, nil
}

// TypeCaption builds a snake-case caption of a source type, used for
// conversion operator names.
func TypeCaption(t decl.Type) string {
	var base string

	switch t.Kind {
	case decl.TypeKindVoid:
		base = "void"
	case decl.TypeKindBool:
		base = "bool"
	case decl.TypeKindEnum:
		base = ToSnake(SplitWords(lastNamePart(t.EnumName)))
	case decl.TypeKindClass:
		base = ToSnake(SplitWords(lastNamePart(t.Class.Name)))
	default:
		base = ToSnake(SplitWords(t.String()))
	}

	switch t.Indirection {
	case decl.IndirPtr, decl.IndirPtrPtr:
		base += "_ptr"
	case decl.IndirRef, decl.IndirRefRef, decl.IndirPtrRef:
		base += "_ref"
	}

	if t.IsConst {
		base = "const_" + base
	}

	return base
}

func lastNamePart(qualified string) string {
	if idx := strings.LastIndex(qualified, "::"); idx >= 0 {
		return qualified[idx+2:]
	}

	return qualified
}
