package errs

import "fmt"

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

// ConfigError indicates missing or invalid process configuration.
// Raised at startup, never per-request.
type ConfigError struct {
	ErrorMessage
}

// NotFoundError indicates a requested record does not exist.
type NotFoundError struct {
	ErrorMessage
}

// AccessDeniedError indicates the record exists but belongs to another owner.
type AccessDeniedError struct {
	ErrorMessage
}

// ValidationError indicates malformed caller input.
type ValidationError struct {
	ErrorMessage
}

// RateLimitedError indicates a sync was attempted before the per-item
// cooldown elapsed. HoursRemaining is carried for user messaging.
type RateLimitedError struct {
	ErrorMessage
	HoursRemaining float64
}

// EncryptionError indicates an encrypt or decrypt failure, including
// authentication failure on tampered or wrong-key ciphertext.
type EncryptionError struct {
	ErrorMessage
}

// ExternalServiceError indicates a transport failure or non-2xx response
// from an upstream provider.
type ExternalServiceError struct {
	ErrorMessage
	Service    string
	StatusCode int
	Transient  bool
}

// ParseError indicates a malformed field in an upstream record.
type ParseError struct {
	ErrorMessage
}

// DatabaseError indicates a failure in the persistence layer.
type DatabaseError struct {
	ErrorMessage
	Operation string
}

func NewConfigError(message string) *ConfigError {
	return &ConfigError{ErrorMessage: ErrorMessage{Message: message}}
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{ErrorMessage: ErrorMessage{Message: message}}
}

func NewAccessDeniedError(message string) *AccessDeniedError {
	return &AccessDeniedError{ErrorMessage: ErrorMessage{Message: message}}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{ErrorMessage: ErrorMessage{Message: message}}
}

func NewRateLimitedError(hoursRemaining float64) *RateLimitedError {
	return &RateLimitedError{
		ErrorMessage: ErrorMessage{Message: fmt.Sprintf(
			"rate limited: you can sync again in %.1f hours", hoursRemaining)},
		HoursRemaining: hoursRemaining,
	}
}

func NewEncryptionError(message string) *EncryptionError {
	return &EncryptionError{ErrorMessage: ErrorMessage{Message: message}}
}

func NewExternalServiceError(service, message string, statusCode int) *ExternalServiceError {
	return &ExternalServiceError{
		ErrorMessage: ErrorMessage{Message: message},
		Service:      service,
		StatusCode:   statusCode,
		Transient:    statusCode == 429 || statusCode >= 500,
	}
}

func NewParseError(message string) *ParseError {
	return &ParseError{ErrorMessage: ErrorMessage{Message: message}}
}

func NewDatabaseError(operation, message string) *DatabaseError {
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
	}
}
