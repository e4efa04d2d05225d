package pipeline

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a pipeline failure for the response envelope.
type Kind string

const (
	KindValidation    Kind = "ValidationError"
	KindConfiguration Kind = "ConfigurationError"
	KindNotFound      Kind = "NotFound"
	KindRateLimited   Kind = "RateLimited"
	KindUpstream      Kind = "UpstreamFailure"
	KindInternal      Kind = "InternalError"
)

// Upstream 429s without an explicit hint still advise the caller a wait.
const defaultRetryAfterSeconds = 30

// Error is the classified failure surfaced to the caller as an error envelope.
type Error struct {
	Kind       Kind
	Message    string
	Details    string
	RetryAfter int // seconds, only set for KindRateLimited
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// HTTPStatus maps the error kind to a response status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Configuration(msg string) *Error {
	return &Error{Kind: KindConfiguration, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", cause: err}
}

// UpstreamError is a failure from a completion/transcription upstream carrying
// its status-like code and an optional retry-after hint in seconds.
type UpstreamError struct {
	Code       int
	RetryAfter int
	Err        error
}

func NewUpstreamError(code int, err error) *UpstreamError {
	return &UpstreamError{Code: code, Err: err}
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (status %d): %v", e.Code, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// RateLimited reports whether the upstream signaled rate limiting.
func (e *UpstreamError) RateLimited() bool { return e.Code == http.StatusTooManyRequests }

// Transient reports whether the failure is a retryable server-side error.
func (e *UpstreamError) Transient() bool {
	switch e.Code {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Retryable reports whether the retry executor may attempt the call again.
func (e *UpstreamError) Retryable() bool { return e.RateLimited() || e.Transient() }

// Classify converts any error left over from an exhausted or fatal upstream
// call into the caller-facing envelope error. Classified errors keep their
// kind and retry-after hint; anything unrecognized becomes an internal error.
func Classify(err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}

	var ue *UpstreamError
	if errors.As(err, &ue) {
		if ue.RateLimited() {
			retryAfter := ue.RetryAfter
			if retryAfter <= 0 {
				retryAfter = defaultRetryAfterSeconds
			}
			return &Error{
				Kind:       KindRateLimited,
				Message:    "upstream rate limit exceeded, please retry later",
				RetryAfter: retryAfter,
				cause:      ue,
			}
		}
		return &Error{
			Kind:    KindUpstream,
			Message: "upstream completion service failed",
			Details: ue.Err.Error(),
			cause:   ue,
		}
	}

	return Internal(err)
}
