package goNebula

import (
	"errors"
	"fmt"
)

var (
	// ErrBusiness is returned when the backend answered with a non-success envelope code.
	ErrBusiness = errors.New("business failure")
	// ErrSessionExpired is returned for HTTP 401 responses.
	ErrSessionExpired = errors.New("session expired")
	// ErrForbidden is returned for HTTP 403 responses.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned for HTTP 404 responses.
	ErrNotFound = errors.New("resource not found")
	// ErrHTTPStatus is returned for any other non-2xx HTTP status.
	ErrHTTPStatus = errors.New("unexpected http status")
	// ErrNetwork is returned when no response was received.
	ErrNetwork = errors.New("network failure")
	// ErrInvalidRequest is returned when a request cannot be built or a
	// builder input is malformed.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidLoginResponse is returned when a successful login carries no token.
	ErrInvalidLoginResponse = errors.New("invalid login response")
	// ErrClientNotReady is returned when a session flow runs without its
	// dependencies wired.
	ErrClientNotReady = errors.New("client not initialized")
	// ErrBuilderUsed is returned by a second Build call on the same builder.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrNoRoutes is returned when no route table has been configured.
	ErrNoRoutes = errors.New("no route table configured")
)

// ErrorKind classifies a rejected request.
type ErrorKind uint8

const (
	// KindBusiness is a 2xx response whose envelope code is not 200.
	KindBusiness ErrorKind = iota + 1
	// KindUnauthorized is an HTTP 401.
	KindUnauthorized
	// KindForbidden is an HTTP 403.
	KindForbidden
	// KindNotFound is an HTTP 404.
	KindNotFound
	// KindHTTP is any other non-2xx status.
	KindHTTP
	// KindNetwork means no response was received.
	KindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case KindBusiness:
		return "business"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindHTTP:
		return "http"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindBusiness:
		return ErrBusiness
	case KindUnauthorized:
		return ErrSessionExpired
	case KindForbidden:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	case KindHTTP:
		return ErrHTTPStatus
	case KindNetwork:
		return ErrNetwork
	default:
		return nil
	}
}

// RequestError is the error every rejected request resolves to.
//
// Status is zero for network failures. Code is the envelope code of a
// business failure. Message is the text the user was shown. Err is the
// transport error, when there was one.
type RequestError struct {
	Kind      ErrorKind
	Status    int
	Code      int
	Message   string
	Method    string
	Path      string
	RequestID string
	Err       error
}

func (e *RequestError) Error() string {
	switch {
	case e.Kind == KindNetwork && e.Err != nil:
		return fmt.Sprintf("%s %s: %s: %v", e.Method, e.Path, e.Message, e.Err)
	case e.Kind == KindBusiness:
		return fmt.Sprintf("%s %s: code %d: %s", e.Method, e.Path, e.Code, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	}
}

// Is matches the sentinel of the error kind, so callers can write
// errors.Is(err, goNebula.ErrForbidden).
func (e *RequestError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// AsRequestError returns the *RequestError in err's chain, if any.
func AsRequestError(err error) (*RequestError, bool) {
	var re *RequestError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
