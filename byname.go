// Package byname is the runtime support imported by code that the byname
// generator emits.
//
// The generator exposes the constants of an enum type as methods on a
// container type. Every accessor resolves its constant through a [Lookup]
// that maps a member name to its value, and the chosen strategy decides when
// that lookup runs:
//
//   - all-once: [Must] during package initialization
//   - each-time: [Must] on every call
//   - lazy: one [Lazy] cell per member
//   - dictionary-cache: one [Cache] per request, keyed by member name
//
// Lazy and Cache are safe for concurrent use and call the lookup at most
// once per member.
package byname

import (
	"errors"
	"fmt"
)

// Lookup resolves an enum member by name.
type Lookup[T any] func(name string) (T, error)

// ErrNameNotFound is matched by every error a Lookup returns for an unknown name.
var ErrNameNotFound = errors.New("byname: name not found")

// NameNotFoundError reports a name that is not a member of Enum.
type NameNotFoundError struct {
	Enum string
	Name string
}

func (e *NameNotFoundError) Error() string {
	return fmt.Sprintf("byname: %q is not a member of %s", e.Name, e.Enum)
}

// Is reports whether target is ErrNameNotFound.
func (e *NameNotFoundError) Is(target error) bool {
	return target == ErrNameNotFound
}

// NotFound returns the error for a name that is not a member of enum.
func NotFound(enum, name string) error {
	return &NameNotFoundError{Enum: enum, Name: name}
}

// Must calls lookup and panics if it fails.
// Generated accessors use it because their names are known members;
// a failure means the enum changed without regenerating.
func Must[T any](lookup Lookup[T], name string) T {
	v, err := lookup(name)
	if err != nil {
		panic(err)
	}
	return v
}
