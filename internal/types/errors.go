package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Complete error code constants.
// Modules MUST use these constants instead of hardcoded strings.
const (
	// Validation (caught before any network call)
	ErrCodeValidationMediaType     ErrorCode = "validation_unsupported_media_type"
	ErrCodeValidationFileTooLarge  ErrorCode = "validation_file_too_large"
	ErrCodeValidationNoImage       ErrorCode = "validation_no_image_selected"
	ErrCodeValidationInvalidSelect ErrorCode = "validation_invalid_selection"
	ErrCodeValidationLanguage      ErrorCode = "validation_invalid_language"

	// Network (transport failure or non-2xx status)
	ErrCodeNetworkTransport  ErrorCode = "network_transport_failure"
	ErrCodeNetworkHTTPStatus ErrorCode = "network_http_status"
	ErrCodeNetworkDecode     ErrorCode = "network_invalid_response_body"

	// Upstream protection
	ErrCodeUpstreamUnavailable ErrorCode = "upstream_unavailable"
	ErrCodeUpstreamRateLimited ErrorCode = "upstream_rate_limited"

	// Domain (success:false in a well-formed response)
	ErrCodeDomainRequestFailed ErrorCode = "domain_request_failed"

	// Internal
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected_error"
)

// ErrorKind is the coarse taxonomy every ErrorCode falls into.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNetwork    ErrorKind = "network"
	KindDomain     ErrorKind = "domain"
	KindInternal   ErrorKind = "internal"
)

// Kind maps an ErrorCode to its ErrorKind. Upstream protection codes (breaker
// open, rate limited) count as network failures since no usable response was
// received.
func (c ErrorCode) Kind() ErrorKind {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "validation_"):
		return KindValidation
	case strings.HasPrefix(s, "network_"), strings.HasPrefix(s, "upstream_"):
		return KindNetwork
	case strings.HasPrefix(s, "domain_"):
		return KindDomain
	default:
		return KindInternal
	}
}

// detailStatusCode is the Details key carrying the HTTP status of a
// network_http_status error.
const detailStatusCode = "status_code"

// AppError is the standard application error type used throughout the client.
// All module and API errors should be expressed as AppError so the module
// boundary can classify them into one user-visible notification.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Kind returns the taxonomy bucket of this error.
func (e *AppError) Kind() ErrorKind {
	return e.Code.Kind()
}

// WithDetails returns a copy of the error with the provided details merged in.
// This is useful for adding context without mutating the original error.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Details: merged,
	}
}

// NewAppError creates a new AppError with the given code, message, and optional
// underlying error.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewAppErrorWithDetails creates a new AppError with the given code, message,
// underlying error, and structured details.
func NewAppErrorWithDetails(code ErrorCode, message string, err error, details map[string]any) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: details,
	}
}

// NewStatusError builds the network_http_status error for a non-2xx response.
func NewStatusError(status int, err error) *AppError {
	return NewAppErrorWithDetails(
		ErrCodeNetworkHTTPStatus,
		fmt.Sprintf("HTTP error! status: %d", status),
		err,
		map[string]any{detailStatusCode: status},
	)
}

// NewDomainError builds the error for a success:false response. An empty
// server message is replaced by fallback.
func NewDomainError(serverMessage, fallback string) *AppError {
	if serverMessage == "" {
		serverMessage = fallback
	}
	return NewAppError(ErrCodeDomainRequestFailed, serverMessage, nil)
}

// KindOf returns the ErrorKind of err. Errors that are not AppErrors are
// classified as internal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}
	return KindInternal
}

// IsValidation reports whether err is a client-side validation rejection.
func IsValidation(err error) bool { return err != nil && KindOf(err) == KindValidation }

// IsNetwork reports whether err is a transport failure or non-2xx status.
func IsNetwork(err error) bool { return err != nil && KindOf(err) == KindNetwork }

// IsDomain reports whether err is a success:false response.
func IsDomain(err error) bool { return err != nil && KindOf(err) == KindDomain }

// StatusCode extracts the HTTP status carried by a network_http_status error.
// It returns 0 when err carries no status.
func StatusCode(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return 0
	}
	if status, ok := appErr.Details[detailStatusCode].(int); ok {
		return status
	}
	return 0
}
