package odoo

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAuthentication
	KindRateLimited
	KindRemoteProtocol
	KindExhaustedRetries
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication_failure"
	case KindRateLimited:
		return "rate_limited"
	case KindRemoteProtocol:
		return "remote_protocol_error"
	case KindExhaustedRetries:
		return "exhausted_retries"
	default:
		return "unknown"
	}
}

var (
	ErrAuthenticationFailed = errors.New("authentication failed, check your credentials")
	ErrRateLimited          = errors.New("too many requests")
	ErrRemoteProtocol       = errors.New("remote protocol error")
	ErrExhaustedRetries     = errors.New("failed to fetch data after multiple retries")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindAuthentication:
		return ErrAuthenticationFailed
	case KindRateLimited:
		return ErrRateLimited
	case KindRemoteProtocol:
		return ErrRemoteProtocol
	case KindExhaustedRetries:
		return ErrExhaustedRetries
	}
	return nil
}

// FetchError is the error value every remote call returns on failure.
type FetchError struct {
	Kind       ErrorKind
	Model      string
	Method     string
	Attempts   int
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	b.WriteString("odoo ")
	b.WriteString(e.Kind.String())
	if e.Model != "" {
		fmt.Fprintf(&b, " on %s.%s", e.Model, e.Method)
	}
	if e.Attempts > 0 {
		fmt.Fprintf(&b, " after %d attempt(s)", e.Attempts)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (http %d)", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf reports the kind of a remote failure. Errors that did not come
// through this package are classified by their text, the same way the
// indexer's RPC router does it.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	switch {
	case errors.Is(err, ErrAuthenticationFailed):
		return KindAuthentication
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrExhaustedRetries):
		return KindExhaustedRetries
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "429") || strings.Contains(s, strings.ToLower(http.StatusText(http.StatusTooManyRequests))) {
		return KindRateLimited
	}
	return KindRemoteProtocol
}
