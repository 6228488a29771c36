package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"api-projector/internal/common"
)

// Diagnostic codes for the projection error taxonomy.
const (
	CodeUnsupportedType     = "unsupported_type"
	CodeUnresolvedReference = "unresolved_reference"
	CodeAmbiguousOverload   = "ambiguous_overload"
	CodeInvalidTemplateArgs = "invalid_template_arguments"
	CodeReservedIdentifier  = "reserved_identifier_collision"
	CodeStructuralViolation = "structural_invariant_violation"
	CodeUnboundedScope      = "unbounded_validity_scope"
	CodeUnplacedEntity      = "unplaced_entity"
)

// Diagnostics holds all diagnostic information collected during a run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity Severity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Entity is the human-readable signature of the originating declaration.
	Entity string
	// Message is the human-readable description.
	Message string
}

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, entity, message string) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Entity:   entity,
		Message:  message,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, entity, message string) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Entity:   entity,
		Message:  message,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, entity, message string) {
	d.Infos = append(d.Infos, Diagnostic{
		Severity: SeverityInfo,
		Code:     code,
		Entity:   entity,
		Message:  message,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// SkipCount returns the number of per-entity skips (warnings with an entity signature).
func (d *Diagnostics) SkipCount() int {
	n := 0

	for _, w := range d.Warnings {
		if w.Entity != "" {
			n++
		}
	}

	return n
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if d.Entity != "" {
		return d.Entity + ": " + msg
	}

	return msg
}
