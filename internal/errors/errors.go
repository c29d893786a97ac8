package errors

import (
	"errors"
	"net/http"
)

// Error kinds. Every domain error wraps exactly one of these so callers can test with errors.Is.
var (
	// ErrValidation is returned for missing or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated is returned for a missing, invalid or expired credential.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the caller can see a resource but not change it.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when a resource is absent or not visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrConstraint is returned when a write would violate a uniqueness or ownership rule.
	ErrConstraint = errors.New("constraint violation")
)

// Domain errors shared across services.
var (
	ErrInvalidCredentials = New(ErrUnauthenticated, "INVALID_CREDENTIALS", "invalid credentials")
	ErrInvalidToken       = New(ErrUnauthenticated, "INVALID_TOKEN", "invalid or expired token")
	ErrUserNotFound       = New(ErrNotFound, "USER_NOT_FOUND", "user not found")
	ErrUserAlreadyExists  = New(ErrConstraint, "USER_ALREADY_EXISTS", "user already exists")
	ErrProjectNotFound    = New(ErrNotFound, "PROJECT_NOT_FOUND", "project not found or access denied")
	ErrProjectOwnerOnly   = New(ErrForbidden, "OWNER_ONLY", "only the project owner can perform this action")
	ErrTaskNotFound       = New(ErrNotFound, "TASK_NOT_FOUND", "task not found or access denied")
	ErrMemberNotFound     = New(ErrNotFound, "MEMBER_NOT_FOUND", "member not found")
	ErrAlreadyMember      = New(ErrConstraint, "ALREADY_MEMBER", "user is already a member of this project")
	ErrOwnerMembership    = New(ErrConstraint, "OWNER_MEMBERSHIP", "the project owner's membership cannot be changed or removed")
	ErrReportNotFound     = New(ErrNotFound, "REPORT_NOT_FOUND", "report not found or access denied")
	ErrRouteNotFound      = New(ErrNotFound, "ROUTE_NOT_FOUND", "route not found")
)

// DomainError is an error with a client-safe message and a machine-readable code.
type DomainError struct {
	Kind    error
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes the kind for errors.Is.
func (e *DomainError) Unwrap() error {
	return e.Kind
}

// New creates a domain error of the given kind.
func New(kind error, code, message string) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message}
}

// Validation creates a validation error with the given message.
func Validation(message string) *DomainError {
	return New(ErrValidation, "VALIDATION_ERROR", message)
}

// Unauthenticated creates an authentication error with the given message.
func Unauthenticated(message string) *DomainError {
	return New(ErrUnauthenticated, "UNAUTHENTICATED", message)
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Detail  string `json:"detail,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Status:  "error",
		Message: e.Message,
		Code:    e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		return NewHTTPError(status, "internal server error", "INTERNAL_ERROR")
	}

	var de *DomainError
	if errors.As(err, &de) {
		return NewHTTPError(status, de.Message, de.Code)
	}
	return NewHTTPError(status, err.Error(), CodeForStatus(status))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConstraint):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// CodeForStatus returns the generic error code for an HTTP status.
func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "VALIDATION_ERROR"
	case http.StatusUnauthorized:
		return "UNAUTHENTICATED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		return "INTERNAL_ERROR"
	}
}
