package llm

import (
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNotConfigured is returned when a provider has no credential to call
// the upstream service with. No network I/O happens in that case.
var ErrNotConfigured = errors.New("llm: provider not configured")

// StatusError reports a non-success HTTP status from the upstream
// chat-completion service.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: upstream returned status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: upstream returned status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// RateLimited reports whether the upstream rejected the call for quota reasons.
func (e *StatusError) RateLimited() bool { return e.StatusCode == http.StatusTooManyRequests }

// PaymentRequired reports whether the upstream account is out of credits.
func (e *StatusError) PaymentRequired() bool { return e.StatusCode == http.StatusPaymentRequired }

// Transient reports whether retrying the same call may succeed.
func (e *StatusError) Transient() bool { return e.StatusCode >= 500 }

// classifyError converts go-openai errors into *StatusError so callers can
// inspect upstream status codes without depending on the client library.
func classifyError(provider string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &StatusError{Provider: provider, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &StatusError{Provider: provider, StatusCode: reqErr.HTTPStatusCode, Message: msg}
	}
	return fmt.Errorf("%s: %w", provider, err)
}

// IsTransient reports whether err is worth retrying: upstream 5xx responses
// and transport failures. Quota, credit and client errors are not.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, ErrNotConfigured) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Transient()
	}
	return true
}
