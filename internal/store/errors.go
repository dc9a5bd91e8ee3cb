package store

import "fmt"

// NotFoundError reports a lookup for an id that has no row.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// ValidationError rejects a write whose payload cannot be stored.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s must not be empty", e.Field)
}

// CapabilityDisabledError rejects a write gated behind a feature that
// is turned off for this project.
type CapabilityDisabledError struct {
	Name string
}

func (e *CapabilityDisabledError) Error() string {
	return fmt.Sprintf("Capability '%s' is disabled in this project", e.Name)
}

// CapabilityDisabled lets callers detect this error kind without
// importing the store package (errors.As on the method set).
func (e *CapabilityDisabledError) CapabilityDisabled() string {
	return e.Name
}
