// Package domain defines core types, interfaces, and errors for the table
// lifecycle manager.
package domain

import "fmt"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., duplicate resource).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// MigrationError indicates a structural migration step failed. It is fatal:
// startup must not proceed past it.
type MigrationError struct {
	Step    string
	Message string
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration step %q: %s", e.Step, e.Message)
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrMigration creates a MigrationError for the named step.
func ErrMigration(step string, format string, args ...interface{}) *MigrationError {
	return &MigrationError{Step: step, Message: fmt.Sprintf(format, args...)}
}
