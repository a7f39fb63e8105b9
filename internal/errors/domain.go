package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timetracker-api/internal/logger"
	"go.uber.org/zap"
)

// Kind classifies a domain failure so transports can map it to a stable status.
type Kind string

const (
	KindNotFound         Kind = "NOT_FOUND"
	KindPermissionDenied Kind = "PERMISSION_DENIED"
	KindInvalidState     Kind = "INVALID_STATE"
	KindValidation       Kind = "VALIDATION_ERROR"
	KindConflict         Kind = "CONFLICT"
)

// PermissionDeniedMessage is the only message a permission failure carries.
const PermissionDeniedMessage = "Not enough permissions"

// DomainError is returned by services for every expected failure.
type DomainError struct {
	Kind    Kind
	Message string
	// Field names the offending input for validation failures.
	Field string
}

func (e *DomainError) Error() string {
	if e.Field != "" {
		return e.Message + " (" + e.Field + ")"
	}
	return e.Message
}

// Is matches another DomainError of the same kind, so callers can write
// errors.Is(err, apierrors.ErrKindInvalidState).
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Kind-only sentinels for errors.Is checks.
var (
	ErrKindNotFound         = &DomainError{Kind: KindNotFound}
	ErrKindPermissionDenied = &DomainError{Kind: KindPermissionDenied}
	ErrKindInvalidState     = &DomainError{Kind: KindInvalidState}
	ErrKindValidation       = &DomainError{Kind: KindValidation}
	ErrKindConflict         = &DomainError{Kind: KindConflict}
)

func NewNotFound(message string) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: message}
}

func NewPermissionDenied() *DomainError {
	return &DomainError{Kind: KindPermissionDenied, Message: PermissionDeniedMessage}
}

func NewInvalidState(message string) *DomainError {
	return &DomainError{Kind: KindInvalidState, Message: message}
}

func NewValidation(field, message string) *DomainError {
	return &DomainError{Kind: KindValidation, Message: message, Field: field}
}

func NewConflict(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Message: message}
}

// KindOf returns the kind of the first DomainError in err's chain, or "".
func KindOf(err error) Kind {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// Respond writes the response matching err. Unclassified errors are logged
// and reported as 500 without leaking their text.
func Respond(c *gin.Context, err error) {
	var de *DomainError
	if !stderrors.As(err, &de) {
		logger.L().Error("unhandled error",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		InternalError(c, "")
		return
	}

	switch de.Kind {
	case KindNotFound:
		RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, de.Message))
	case KindPermissionDenied:
		RespondWithError(c, http.StatusForbidden, NewAPIError(ErrCodeInsufficientPermissions, de.Message))
	case KindInvalidState:
		RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidState, de.Message))
	case KindValidation:
		apiErr := NewAPIError(ErrCodeInvalidInput, de.Message)
		if de.Field != "" {
			apiErr.Details = gin.H{"field": de.Field}
		}
		RespondWithError(c, http.StatusBadRequest, apiErr)
	case KindConflict:
		RespondWithError(c, http.StatusConflict, NewAPIError(ErrCodeConflict, de.Message))
	default:
		InternalError(c, "")
	}
}
