package shared

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrSessionUnknown   = fmt.Errorf("session status unknown")
	ErrMissingCSRFToken = fmt.Errorf("missing CSRF token")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrInvalidResponse    = fmt.Errorf("response did not match the expected shape")
	ErrShowNotFound       = fmt.Errorf("show not found")

	// Show tracking errors
	ErrAlreadyTracked = fmt.Errorf("show is already tracked")
	ErrAddInFlight    = fmt.Errorf("another show is being added")
	ErrFlowClosed     = fmt.Errorf("search is not open")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)

// UnauthorizedError is returned for any 401 response.
type UnauthorizedError struct {
	Op string
}

func (e *UnauthorizedError) Error() string {
	if e.Op == "" {
		return ErrNotAuthenticated.Error()
	}
	return fmt.Sprintf("%s: %s", e.Op, ErrNotAuthenticated)
}

// Is matches [ErrNotAuthenticated].
func (e *UnauthorizedError) Is(target error) bool {
	return target == ErrNotAuthenticated
}

// RequestError is returned for non-2xx, non-401 responses and for transport failures.
//
// Transport failures carry a zero StatusCode and the cause in Err.
type RequestError struct {
	Op         string
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s: %v", e.Op, ErrAPIRequest, e.Err)
	}

	msg := fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, e.Status)
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += " - " + body
	}
	return msg
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is matches [ErrAPIRequest] always, [ErrAlreadyTracked] for 409 and
// [ErrShowNotFound] for 404 responses.
func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrAPIRequest:
		return true
	case ErrAlreadyTracked:
		return e.StatusCode == 409
	case ErrShowNotFound:
		return e.StatusCode == 404
	}
	return false
}

// Transport reports whether the request never produced a response.
func (e *RequestError) Transport() bool {
	return e.StatusCode == 0
}

// ValidationError is returned when a successful response body does not
// conform to its expected shape.
type ValidationError struct {
	Op     string
	Issues []string
	Err    error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(ErrInvalidResponse.Error())
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if len(e.Issues) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(e.Issues, "; "))
		b.WriteString(")")
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is matches [ErrInvalidResponse].
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidResponse
}

// IsUnauthorized reports whether err is (or wraps) an [UnauthorizedError].
func IsUnauthorized(err error) bool {
	var ue *UnauthorizedError
	return errors.As(err, &ue)
}
