package billing

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var (
	ErrNoCustomer           = errors.New("no billing customer for user")
	ErrNoActiveSubscription = errors.New("no active subscription")
)

// Error is a failure the caller is told about. Status is the HTTP status;
// Code is a stable machine-readable string.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "invalid_request", Message: msg}
}

// Precondition is a business-rule violation: the request is well formed but
// the account is not in a state that allows it.
func Precondition(code, msg string, err error) *Error {
	return &Error{Status: http.StatusBadRequest, Code: code, Message: msg, Err: err}
}

func Unauthorized() *Error {
	return &Error{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "User not identified"}
}

func NotFound(code, msg string, err error) *Error {
	return &Error{Status: http.StatusNotFound, Code: code, Message: msg, Err: err}
}

func Conflict(code, msg string, err error) *Error {
	return &Error{Status: http.StatusConflict, Code: code, Message: msg, Err: err}
}

func Upstream(msg string, err error) *Error {
	return &Error{Status: http.StatusBadGateway, Code: "provider_error", Message: msg, Err: err}
}

func Internal(msg string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: "internal_error", Message: msg, Err: err}
}

// bindError turns a gin binding failure into a validation error naming the
// offending fields.
func bindError(err error) *Error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make([]string, 0, len(ve))
		for _, fe := range ve {
			fields = append(fields, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return Validation(strings.Join(fields, "; "))
	}
	return Validation("Invalid request body")
}

// writeError renders err; anything that is not an *Error is a 500.
func writeError(c *gin.Context, err error) {
	var be *Error
	if !errors.As(err, &be) {
		be = Internal("Internal error", err)
	}
	c.JSON(be.Status, gin.H{"error": be.Message, "code": be.Code})
}
