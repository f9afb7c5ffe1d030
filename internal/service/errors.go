package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound covers absent entities and entities owned by someone else.
	ErrNotFound        = errors.New("not found")
	ErrTaskNotFound    = fmt.Errorf("task %w", ErrNotFound)
	ErrSubtaskNotFound = fmt.Errorf("subtask %w", ErrNotFound)

	ErrEmailTaken     = errors.New("email already registered")
	ErrBadCredentials = errors.New("incorrect username or password")
	ErrAIUnconfigured = errors.New("AI provider key not configured")
)

// ValidationError reports input that failed a field rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "must not be empty")
	}
	return nil
}
