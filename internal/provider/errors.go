package provider

import (
	"fmt"
	"time"
)

// ErrInvalidInput indicates the prompt or options failed validation before
// any network call was made.
type ErrInvalidInput struct {
	Reason string
}

func (e *ErrInvalidInput) Error() string {
	return fmt.Sprintf("invalid generation input: %s", e.Reason)
}

// ErrUnavailable indicates the backend is down, unreachable, or timed out.
type ErrUnavailable struct {
	Err error
}

func (e *ErrUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider unavailable: %v", e.Err)
	}
	return "provider unavailable"
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }

// ErrRateLimited indicates the backend returned a rate limit error (429).
type ErrRateLimited struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimited) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimited) Unwrap() error { return e.Err }

// ErrContentFiltered indicates the backend refused the request on policy
// grounds. Never retried against another provider.
type ErrContentFiltered struct {
	Reason string
}

func (e *ErrContentFiltered) Error() string {
	return fmt.Sprintf("content filtered by provider: %s", e.Reason)
}

// ErrMalformed indicates the backend responded, but not in the expected shape.
type ErrMalformed struct {
	Err error
}

func (e *ErrMalformed) Error() string {
	return fmt.Sprintf("malformed provider response: %v", e.Err)
}

func (e *ErrMalformed) Unwrap() error { return e.Err }
