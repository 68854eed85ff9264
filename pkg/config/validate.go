package config

import "fmt"

// Valid TCP port bounds.
const (
	minPort = 1
	maxPort = 65535
)

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config field %s %s", e.Field, e.Message)
}

// ValidatePort checks that a port number is within the valid TCP range.
func ValidatePort(field string, port int) error {
	if port < minPort || port > maxPort {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be between %d and %d, got %d", minPort, maxPort, port),
		}
	}
	return nil
}

// ValidateRequired checks that a string value is non-empty.
func ValidateRequired(field, value string) error {
	if value == "" {
		return &ValidationError{
			Field:   field,
			Message: "is required",
		}
	}
	return nil
}
