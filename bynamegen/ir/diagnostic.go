package ir

import "fmt"

// Severity classifies a Diagnostic.
type Severity int

const (
	// SeverityWarning marks a degraded but generated request.
	SeverityWarning Severity = iota

	// SeverityError marks a request or container that produced no output.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic reports a problem with a single request or container.
// Diagnostics never abort generation of unrelated containers.
type Diagnostic struct {
	Severity Severity

	// Code is a machine-readable identifier, e.g. "unknown-strategy".
	Code string

	Message string

	Source Source

	// Container is the container name the diagnostic refers to, if any.
	Container string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Source, d.Severity, d.Message)
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Diagnostic codes.
const (
	CodeUnknownStrategy   = "unknown-strategy"
	CodeInvalidContainer  = "invalid-container"
	CodeUnknownEnum       = "unknown-enum"
	CodeInvalidDirective  = "invalid-directive"
	CodeDuplicateAccessor = "duplicate-accessor"
	CodeInternal          = "internal"
)
