package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MsgForbidden is returned to callers that lack the role for an operation.
const MsgForbidden = "Acceso no autorizado"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidID          = errors.New("invalid id format")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New(MsgForbidden)
	ErrConflict           = errors.New("conflict")
	ErrInvalidTransition  = fmt.Errorf("%w: status transition not allowed", ErrConflict)
	ErrEmailTaken         = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnavailable        = errors.New("feature not configured")
)

// ValidationError carries field level messages keyed by dotted json path.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError(fields map[string][]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// FieldError builds a ValidationError for a single field.
func FieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

// UpstreamError wraps failures of the database or a third-party provider.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NotFound returns an error that matches ErrNotFound and names the entity.
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// ParseID converts a hex string into an ObjectID.
func ParseID(entity, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w for %s: %q", ErrInvalidID, entity, raw)
	}
	return id, nil
}
