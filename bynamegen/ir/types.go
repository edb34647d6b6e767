// Package ir defines the intermediate representation shared by the byname
// providers, the alias resolver and the Go emitter.
//
// All values are immutable once built and scoped to one generation pass.
package ir

import "fmt"

// Source identifies a position in Go source code.
type Source struct {
	File   string
	Line   int
	Column int
}

// IsZero returns true if the source location is empty.
func (s Source) IsZero() bool {
	return s.File == "" && s.Line == 0 && s.Column == 0
}

// String formats the location as file:line:column.
func (s Source) String() string {
	if s.IsZero() {
		return "-"
	}
	if s.Column == 0 {
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// Visibility is the declared visibility of a container type.
type Visibility int

const (
	VisibilityPublic Visibility = iota
	VisibilityPrivate
	VisibilityProtected
	VisibilityProtectedInternal
	VisibilityInternal
)

var visibilityNames = map[Visibility]string{
	VisibilityPublic:            "public",
	VisibilityPrivate:           "private",
	VisibilityProtected:         "protected",
	VisibilityProtectedInternal: "protected-internal",
	VisibilityInternal:          "internal",
}

func (v Visibility) String() string {
	if name, ok := visibilityNames[v]; ok {
		return name
	}
	return fmt.Sprintf("Visibility(%d)", int(v))
}

// Valid reports whether v is one of the declared visibilities.
func (v Visibility) Valid() bool {
	_, ok := visibilityNames[v]
	return ok
}

// ParseVisibility converts a visibility name ("public", "protected-internal", ...)
// to a Visibility.
func ParseVisibility(s string) (Visibility, bool) {
	for v, name := range visibilityNames {
		if name == s {
			return v, true
		}
	}
	return 0, false
}

// Container is the type that hosts the generated accessors.
type Container struct {
	// Name is the type identifier, e.g. "Palette".
	Name string

	Visibility Visibility

	// Package is the import path of the package declaring the type.
	Package string

	// PackageName is the name used in the package clause.
	PackageName string

	// Dir is the directory of the declaring package. Generated files are written there.
	Dir string

	// Scope lists package-level identifiers of the declaring package that
	// generated imports must not shadow. Nil when unknown.
	Scope []string

	Source Source
}

// Request asks for accessors of one enum type on one container.
type Request struct {
	Container Container
	Enum      EnumType
	Strategy  Strategy

	// StrategyName is the strategy as written by the caller, kept for diagnostics.
	// Empty when the caller did not name one.
	StrategyName string

	Source Source
}

// Batch groups the requests bound to one container, in declaration order.
// One Batch produces one generated unit.
type Batch struct {
	Container Container
	Requests  []Request
}
