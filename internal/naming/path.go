package naming

import (
	"errors"
	"strings"
)

// Path is a canonical target identifier path: library name, module segments,
// and the final identifier.
type Path []string

// NewPath validates and builds a Path.
func NewPath(parts ...string) (Path, error) {
	if len(parts) == 0 {
		return nil, errors.New("path must not be empty")
	}

	for _, p := range parts {
		if p == "" {
			return nil, errors.New("path must not contain empty segments")
		}
	}

	return Path(parts), nil
}

// LastName returns the final segment.
func (p Path) LastName() string {
	if len(p) == 0 {
		return ""
	}

	return p[len(p)-1]
}

// Parent returns the path without its final segment.
func (p Path) Parent() Path {
	if len(p) <= 1 {
		return nil
	}

	return p[:len(p)-1]
}

// Child returns a new path with the segment appended.
func (p Path) Child(segment string) Path {
	out := make(Path, 0, len(p)+1)
	out = append(out, p...)
	out = append(out, segment)

	return out
}

// Includes reports whether other is nested (directly or not) under p.
func (p Path) Includes(other Path) bool {
	if len(other) <= len(p) {
		return false
	}

	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}

	return true
}

// IncludesDirectly reports whether other is an immediate member of p.
func (p Path) IncludesDirectly(other Path) bool {
	return p.Includes(other) && len(other) == len(p)+1
}

// Equal reports segment-wise equality.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}

	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}

	return true
}

// String joins the segments for display.
func (p Path) String() string {
	return strings.Join(p, ".")
}
