package apierror

import "net/http"

// Error codes returned to callers. Clients branch on the code, not the message.
const (
	CodeUnauthenticated  = "unauthenticated"
	CodeInvalidArgument  = "invalid_argument"
	CodePermissionDenied = "permission_denied"
	CodeNotFound         = "not_found"
	CodeInternal         = "internal"
)

// Error is the tagged error returned by every operation in this service.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// New constructs a tagged error.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Unauthenticated reports a missing caller identity.
func Unauthenticated(message string) *Error {
	return New(CodeUnauthenticated, message)
}

// InvalidArgument reports a missing or malformed required field.
func InvalidArgument(message string) *Error {
	return New(CodeInvalidArgument, message)
}

// PermissionDenied reports a caller lacking the admin role for a privileged operation.
func PermissionDenied(message string) *Error {
	return New(CodePermissionDenied, message)
}

// NotFound reports an absent target account.
func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

// Internal reports any other failure.
func Internal(message string) *Error {
	return New(CodeInternal, message)
}

// ToStatusCode maps an error code to an HTTP status for default responses.
func ToStatusCode(code string) int {
	switch code {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
