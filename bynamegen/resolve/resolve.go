// Package resolve collapses aliased enum members into the canonical set that
// receives generated accessors.
//
// Enums commonly declare several names for one value:
//
//	const (
//	    Red     Color = 1
//	    Crimson       = Red // name alias
//	    Blue    Color = 2
//	    Navy    Color = 2 // value duplicate
//	)
//
// Members resolves this to Red and Blue: at most one member per distinct
// value, always the first one declared.
package resolve

import (
	"errors"
	"fmt"

	"github.com/broady/byname/bynamegen/ir"
)

// ErrDuplicateName reports a resolved member set that binds one name twice.
var ErrDuplicateName = errors.New("duplicate accessor name")

// Members returns the canonical members of an enum in declaration order.
//
// It makes a single pass over members ordered by Order:
//   - a member whose AliasOf names an already emitted member is skipped, but
//     its value is still recorded, so a later literal with the same value is
//     skipped as well;
//   - a member whose value was already recorded is skipped;
//   - a member repeating an emitted name is skipped;
//   - any other member is emitted. Members without a value never collide by value.
//
// An AliasOf naming a member that was not emitted before is treated as if
// the member were not an alias.
func Members(members []ir.EnumMember) []ir.EnumMember {
	var (
		seenNames  = make(map[string]struct{}, len(members))
		seenValues = make(map[string]struct{}, len(members))
		out        = make([]ir.EnumMember, 0, len(members))
	)

	for _, m := range ir.SortMembers(members) {
		if _, ok := seenNames[m.Name]; ok {
			// Go rejects redeclared constants; only injected requests get here.
			continue
		}

		if m.AliasOf != "" {
			if _, ok := seenNames[m.AliasOf]; ok {
				if m.HasValue() {
					seenValues[m.ValueKey()] = struct{}{}
				}
				continue
			}
		}

		if m.HasValue() {
			key := m.ValueKey()
			if _, ok := seenValues[key]; ok {
				continue
			}
			seenValues[key] = struct{}{}
		}

		seenNames[m.Name] = struct{}{}
		out = append(out, m)
	}

	return out
}

// CheckUnique returns an error wrapping ErrDuplicateName if two members share a name.
func CheckUnique(members []ir.EnumMember) error {
	seen := make(map[string]int, len(members))
	for i, m := range members {
		if j, ok := seen[m.Name]; ok {
			return fmt.Errorf("%w: %q at positions %d and %d", ErrDuplicateName, m.Name, j, i)
		}
		seen[m.Name] = i
	}
	return nil
}
