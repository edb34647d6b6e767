package golang

import (
	"go/token"
	"strings"
	"unicode"
)

// predeclared names that an import must not shadow in generated files.
var predeclared = map[string]bool{
	"any":     true,
	"bool":    true,
	"byte":    true,
	"error":   true,
	"false":   true,
	"int":     true,
	"iota":    true,
	"len":     true,
	"nil":     true,
	"panic":   true,
	"rune":    true,
	"string":  true,
	"true":    true,
	"uint":    true,
	"float64": true,
}

// IsIdentifier reports whether name is a valid, non-keyword Go identifier.
func IsIdentifier(name string) bool {
	return token.IsIdentifier(name)
}

// sanitizeIdentifier turns a package name into a usable import name.
func sanitizeIdentifier(name string) string {
	if name == "" {
		return "_pkg"
	}

	var result strings.Builder
	for i, r := range name {
		switch {
		case unicode.IsLetter(r) || r == '_':
			result.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				result.WriteRune('_')
			}
			result.WriteRune(r)
		default:
			result.WriteRune('_')
		}
	}

	sanitized := result.String()
	if token.IsKeyword(sanitized) || predeclared[sanitized] {
		return sanitized + "_"
	}
	return sanitized
}
