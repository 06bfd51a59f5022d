// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenRevoked = errors.New("token revoked")
)

type AppError struct {
	Err     error
	Message string
	Status  int
	Code    string
	Fields  map[string]string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, status int, code string) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Status:  status,
		Code:    code,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(
		ErrUnauthorized,
		message,
		http.StatusUnauthorized,
		"UNAUTHORIZED",
	)
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "insufficient permissions"
	}
	return NewAppError(ErrForbidden, message, http.StatusForbidden, "FORBIDDEN")
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		resource+" not found",
		http.StatusNotFound,
		"NOT_FOUND",
	)
}

func ValidationError(message string, fields map[string]string) *AppError {
	appErr := NewAppError(
		ErrInvalidInput,
		message,
		http.StatusBadRequest,
		"VALIDATION_ERROR",
	)
	appErr.Fields = fields
	return appErr
}

func DuplicateError(field string) *AppError {
	appErr := NewAppError(
		ErrDuplicateKey,
		field+" already exists",
		http.StatusBadRequest,
		"VALIDATION_ERROR",
	)
	appErr.Fields = map[string]string{field: "already exists"}
	return appErr
}

func TokenExpiredError() *AppError {
	return NewAppError(
		ErrTokenExpired,
		"token has expired",
		http.StatusUnauthorized,
		"TOKEN_EXPIRED",
	)
}

func TokenInvalidError() *AppError {
	return NewAppError(
		ErrTokenInvalid,
		"token is invalid",
		http.StatusUnauthorized,
		"TOKEN_INVALID",
	)
}

func TokenRevokedError() *AppError {
	return NewAppError(
		ErrTokenRevoked,
		"token has been revoked",
		http.StatusUnauthorized,
		"TOKEN_REVOKED",
	)
}

// FormatValidationError flattens validator.ValidationErrors into a
// field -> reason map keyed by the JSON-ish lowercase field name.
func FormatValidationError(err error) map[string]string {
	fields := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		fields["body"] = err.Error()
		return fields
	}

	for _, fe := range validationErrs {
		fields[strings.ToLower(fe.Field())] = validationReason(fe)
	}

	return fields
}

func validationReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "username":
		return "contains forbidden characters or is reserved"
	case "slug":
		return "may only contain letters, digits, hyphens and underscores"
	default:
		return "is invalid"
	}
}
