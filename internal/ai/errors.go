package ai

import (
	"errors"
	"fmt"
	"time"
)

// AuthError indicates authentication/authorization failures (401/403).
type AuthError struct{ *APIError }

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.APIError.Error())
}

func (e *AuthError) Unwrap() error { return e.APIError }

// RateLimitError indicates 429 responses and may include a Retry-After.
type RateLimitError struct {
	*APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: wait about %ds before retrying: %s", int(e.RetryAfter.Seconds()), e.APIError.Error())
	}
	return fmt.Sprintf("rate limited: %s", e.APIError.Error())
}

func (e *RateLimitError) Unwrap() error { return e.APIError }

// ModelNotFoundError indicates the requested model is not available.
type ModelNotFoundError struct{ *APIError }

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model not found: %s", e.APIError.Error())
}

func (e *ModelNotFoundError) Unwrap() error { return e.APIError }

// BadRequestError indicates a 4xx request problem (e.g., 400 validation).
type BadRequestError struct{ *APIError }

func (e *BadRequestError) Error() string { return fmt.Sprintf("bad request: %s", e.APIError.Error()) }

func (e *BadRequestError) Unwrap() error { return e.APIError }

// QuotaExceededError indicates billing/quota problems.
type QuotaExceededError struct{ *APIError }

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: %s", e.APIError.Error())
}

func (e *QuotaExceededError) Unwrap() error { return e.APIError }

// ServerError indicates 5xx errors from the provider.
type ServerError struct{ *APIError }

func (e *ServerError) Error() string { return fmt.Sprintf("provider error: %s", e.APIError.Error()) }

func (e *ServerError) Unwrap() error { return e.APIError }

// UnreachableError indicates the target runtime is not reachable (e.g., local Ollama down).
type UnreachableError struct {
	Host string
	Err  error
}

func (e *UnreachableError) Error() string {
	if e == nil {
		return "unreachable"
	}
	if e.Host != "" {
		return fmt.Sprintf("endpoint unreachable at %s: %v", e.Host, e.Err)
	}
	return fmt.Sprintf("endpoint unreachable: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// Hint returns a short remediation for errors a dashboard user can act on,
// or "" when there is nothing specific to suggest.
func Hint(err error) string {
	var (
		auth  *AuthError
		rate  *RateLimitError
		model *ModelNotFoundError
		quota *QuotaExceededError
		down  *UnreachableError
	)
	switch {
	case errors.As(err, &auth):
		return "check api_key (or TDFDASH_API_KEY)"
	case errors.As(err, &rate):
		return "the provider is throttling requests; try again shortly"
	case errors.As(err, &model):
		return "check default_model, or pass --model"
	case errors.As(err, &quota):
		return "the provider account is out of credit"
	case errors.As(err, &down):
		return "is the local runtime running? check ollama_host"
	}
	return ""
}
