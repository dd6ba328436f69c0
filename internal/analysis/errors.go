package analysis

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/pharos-integrity/pharos/internal/llm"
)

// Error is an analysis failure with the HTTP status and the message shown
// to callers. Two errors match under errors.Is when status and message
// are equal, so wrapped causes still compare against the sentinels below.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Status == e.Status && t.Message == e.Message
}

func (e *Error) wrap(cause error) *Error {
	return &Error{Status: e.Status, Message: e.Message, Err: cause}
}

var (
	ErrClaimTextRequired = &Error{Status: http.StatusBadRequest, Message: "Claim text is required"}
	ErrClaimsRequired    = &Error{Status: http.StatusBadRequest, Message: "At least one claim is required"}
	ErrNotConfigured     = &Error{Status: http.StatusInternalServerError, Message: "AI service not configured"}
	ErrRateLimited       = &Error{Status: http.StatusTooManyRequests, Message: "Rate limit exceeded. Please try again later."}
	ErrCreditsDepleted   = &Error{Status: http.StatusPaymentRequired, Message: "AI credits depleted. Please add funds."}
	ErrClaimFailed       = &Error{Status: http.StatusInternalServerError, Message: "Failed to analyze claim"}
	ErrClaimsFailed      = &Error{Status: http.StatusInternalServerError, Message: "Failed to analyze claims"}
)

// InvalidInput returns a 400 error with the given message.
func InvalidInput(format string, args ...any) *Error {
	return &Error{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// StatusOf returns the HTTP status for err, 500 when err is not an *Error.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the caller-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Unknown error"
}

// classifyUpstream maps provider failures onto caller-facing errors.
func classifyUpstream(err error, generic *Error) *Error {
	if errors.Is(err, llm.ErrNotConfigured) {
		return ErrNotConfigured.wrap(err)
	}
	var se *llm.StatusError
	if errors.As(err, &se) {
		switch {
		case se.RateLimited():
			return ErrRateLimited.wrap(err)
		case se.PaymentRequired():
			return ErrCreditsDepleted.wrap(err)
		}
	}
	return generic.wrap(err)
}
