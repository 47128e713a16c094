package errors

import (
	"errors"
	"fmt"
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// Is enables errors.Is() comparison for NotFoundError
func (e *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	if !ok {
		return false
	}
	return e.Entity == t.Entity
}

// AuthenticationError represents authentication/authorization failures
// reported by the tracking service (HTTP 401/403). These are never
// exception-counted and never retried automatically.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// ConfigurationError represents configuration-related errors. Fatal to
// session initialization and surfaced before any network call.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// TransportError represents a network, 5xx or parse failure while talking
// to the tracking service. These count toward the session restart threshold.
type TransportError struct {
	Operation string
	Err       error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport error during %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("transport error during %s", e.Operation)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Entity Not Found Errors
var (
	ErrWorkItemNotFound   = &NotFoundError{Entity: "work item"}
	ErrAttachmentNotFound = &NotFoundError{Entity: "attachment"}
	ErrUserNotFound       = &NotFoundError{Entity: "user"}
	ErrIconNotFound       = &NotFoundError{Entity: "icon"}
)

// Authentication Errors
var (
	ErrUnauthorized      = &AuthenticationError{Message: "tracking service rejected the credentials (401)"}
	ErrForbidden         = &AuthenticationError{Message: "tracking service denied access (403)"}
	ErrSessionNotReady   = &AuthenticationError{Message: "session is not initialized"}
	ErrSessionRecreating = &AuthenticationError{Message: "session is being re-created"}
)

// Configuration Errors
var (
	ErrServiceURLMissing  = &ConfigurationError{Message: "tracking service URL is not configured"}
	ErrTokenMissing       = &ConfigurationError{Message: "token authentication is enabled but no token is configured"}
	ErrCredentialsMissing = &ConfigurationError{Message: "neither token nor basic credentials are configured"}
)

// Validation Errors
var (
	ErrMissingWorkItemID   = &ValidationError{Field: "id", Message: "work item id is required"}
	ErrMissingAttachmentID = &ValidationError{Field: "attachmentId", Message: "attachment id is required"}
)

// Helper Functions

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsAuthentication checks if an error is an AuthenticationError
func IsAuthentication(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}

// IsConfiguration checks if an error is a ConfigurationError
func IsConfiguration(err error) bool {
	var configErr *ConfigurationError
	return errors.As(err, &configErr)
}

// IsTransport checks if an error is a TransportError
func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// NewNotFoundError creates a new NotFoundError for a custom entity
func NewNotFoundError(entity string) error {
	return &NotFoundError{Entity: entity}
}

// NewAuthenticationError creates a new AuthenticationError
func NewAuthenticationError(message string) error {
	return &AuthenticationError{Message: message}
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(message string) error {
	return &ConfigurationError{Message: message}
}

// NewTransportError wraps an underlying failure with the operation that hit it
func NewTransportError(operation string, err error) error {
	return &TransportError{Operation: operation, Err: err}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
