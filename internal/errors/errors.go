package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "validation"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeDuplicateKey    ErrorType = "duplicate_key"
	ErrorTypeVersionConflict ErrorType = "version_conflict"
	ErrorTypeTransport       ErrorType = "transport"
	ErrorTypeDecode          ErrorType = "decode"
	ErrorTypeInternal        ErrorType = "internal"
)

// AppError represents an application error with additional context
type AppError struct {
	Type     ErrorType
	Message  string
	Code     string
	Internal error
	Context  map[string]interface{}
	Source   string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the internal error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return errors.Is(e.Internal, target)
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// LogFields returns structured logging fields
func (e *AppError) LogFields() []interface{} {
	fields := []interface{}{
		"error_type", e.Type,
		"error_code", e.Code,
		"error_message", e.Message,
		"source", e.Source,
	}

	if e.Internal != nil {
		fields = append(fields, "internal_error", e.Internal.Error())
	}

	for k, v := range e.Context {
		fields = append(fields, k, v)
	}

	return fields
}

// New creates a new AppError
func New(errorType ErrorType, code, message string) *AppError {
	_, file, line, _ := runtime.Caller(1)
	source := fmt.Sprintf("%s:%d", file, line)

	return &AppError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Source:  source,
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error into AppError
func Wrap(err error, errorType ErrorType, code, message string) *AppError {
	_, file, line, _ := runtime.Caller(1)
	source := fmt.Sprintf("%s:%d", file, line)

	return &AppError{
		Type:     errorType,
		Code:     code,
		Message:  message,
		Internal: err,
		Source:   source,
		Context:  make(map[string]interface{}),
	}
}

// IsType reports whether err is an AppError of the given type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// Handler provides error handling strategies
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new error handler
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle processes an error according to its type
func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		h.handleAppError(ctx, appErr)
	} else {
		h.handleGenericError(ctx, err)
	}
}

// handleAppError handles AppError instances
func (h *Handler) handleAppError(ctx context.Context, err *AppError) {
	switch err.Type {
	case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeDuplicateKey:
		h.logger.WarnContext(ctx, "Domain error", err.LogFields()...)
	case ErrorTypeVersionConflict:
		h.logger.WarnContext(ctx, "Concurrent modification", err.LogFields()...)
	case ErrorTypeTransport, ErrorTypeDecode, ErrorTypeInternal:
		h.logger.ErrorContext(ctx, "Critical error", err.LogFields()...)
	default:
		h.logger.ErrorContext(ctx, "Unknown error type", err.LogFields()...)
	}
}

// handleGenericError handles generic errors
func (h *Handler) handleGenericError(ctx context.Context, err error) {
	h.logger.ErrorContext(ctx, "Unhandled error", "error", err.Error())
}

// LogAndReturn logs an error and returns it
func (h *Handler) LogAndReturn(ctx context.Context, err error) error {
	h.Handle(ctx, err)
	return err
}

// Predefined errors
var (
	ErrUserNotFound     = New(ErrorTypeNotFound, "USER_NOT_FOUND", "User not found")
	ErrAnalysisNotFound = New(ErrorTypeNotFound, "ANALYSIS_NOT_FOUND", "Analysis not found")
	ErrPaymentNotFound  = New(ErrorTypeNotFound, "PAYMENT_NOT_FOUND", "Payment not found")
	ErrDuplicateEmail   = New(ErrorTypeDuplicateKey, "DUPLICATE_EMAIL", "User with this email already exists")
	ErrVersionConflict  = New(ErrorTypeVersionConflict, "VERSION_CONFLICT", "Document was modified concurrently")
	ErrRemoteNotFound   = New(ErrorTypeNotFound, "REMOTE_NOT_FOUND", "Document does not exist remotely")
)

// Convenience functions for common errors
func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, "VALIDATION", message)
}

func NewTransportError(err error, operation string) *AppError {
	return Wrap(err, ErrorTypeTransport, "TRANSPORT", fmt.Sprintf("%s failed against remote store", operation)).
		WithContext("operation", operation)
}

func NewDecodeError(err error, document string) *AppError {
	return Wrap(err, ErrorTypeDecode, "DECODE", fmt.Sprintf("Stored %s document is not valid", document)).
		WithContext("document", document)
}

func NewInternalError(err error) *AppError {
	return Wrap(err, ErrorTypeInternal, "INTERNAL", "Internal error")
}
