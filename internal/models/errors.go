package models

import "fmt"

// ValidationError reports a missing or malformed input field. It is returned
// before any write reaches the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
