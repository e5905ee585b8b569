package config

import "fmt"

// Error is the single structured error returned by Load when a required
// field is missing or out of bounds. Field names the offending setting;
// Message is human-readable. Neither ever carries a credential value.
type Error struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("config: field %q %s", e.Field, e.Message)
}

func fieldError(field, message string) *Error {
	return &Error{Field: field, Message: message}
}
