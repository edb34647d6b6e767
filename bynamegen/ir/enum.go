package ir

import (
	"fmt"
	"slices"
)

// EnumType is a defined Go type together with its typed constants.
type EnumType struct {
	// Name is the type identifier, e.g. "Color".
	Name string

	// Package is the import path of the package declaring the enum.
	Package string

	// PackageName is the declared package name, used to qualify references
	// from other packages.
	PackageName string

	// Members are all constants of the type, in declaration order.
	Members []EnumMember
}

// EnumMember represents a single enum constant.
type EnumMember struct {
	// Name is the constant name.
	Name string

	// Order is the position among all members as declared.
	Order int

	// Value is the constant value, or nil when unknown. Providers convert Go
	// constant values to string, int64, uint64, float64 or bool.
	Value any

	// AliasOf names the member whose identifier the declaration copies its
	// value from (B = A). Empty for literal or expression values.
	AliasOf string
}

// HasValue reports whether the constant value is known.
func (m EnumMember) HasValue() bool { return m.Value != nil }

// ValueKey returns the stringified constant value used to compare members.
func (m EnumMember) ValueKey() string {
	return fmt.Sprint(m.Value)
}

// SortMembers returns a copy of members ordered by Order.
// Members sharing an Order keep their relative position.
func SortMembers(members []EnumMember) []EnumMember {
	sorted := slices.Clone(members)
	slices.SortStableFunc(sorted, func(a, b EnumMember) int {
		return a.Order - b.Order
	})
	return sorted
}
