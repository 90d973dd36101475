package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// ErrorKind labels a classified upstream failure.
type ErrorKind string

const (
	KindConnectionFailed    ErrorKind = "connection_failed"
	KindRateLimited         ErrorKind = "rate_limited"
	KindTimeout             ErrorKind = "timeout"
	KindUpstreamServerError ErrorKind = "upstream_server_error"
	KindAuthentication      ErrorKind = "authentication"
	KindPermissionDenied    ErrorKind = "permission_denied"
	KindInvalidRequest      ErrorKind = "invalid_request"
	KindUnknown             ErrorKind = "unknown"
)

// Classification is the retry verdict for a raw failure. Retryable kinds
// are transient infrastructure or capacity conditions; everything else
// will not change on retry.
type Classification struct {
	Kind      ErrorKind
	Retryable bool
}

// statusError is implemented by errors carrying an upstream HTTP status,
// decoupling classification from any particular provider client.
type statusError interface {
	HTTPStatus() int
}

// Classify maps a raw generation failure onto the retry taxonomy.
// Rules are checked in order; the first match wins.
func Classify(err error) Classification {
	if err == nil {
		return Classification{Kind: KindUnknown}
	}

	if isConnectionError(err) {
		return Classification{Kind: KindConnectionFailed, Retryable: true}
	}

	if status, ok := httpStatus(err); ok {
		switch {
		case status == http.StatusTooManyRequests:
			return Classification{Kind: KindRateLimited, Retryable: true}
		case status == http.StatusUnauthorized:
			return Classification{Kind: KindAuthentication}
		case status == http.StatusForbidden:
			return Classification{Kind: KindPermissionDenied}
		case status == http.StatusNotFound, status == http.StatusUnprocessableEntity:
			return Classification{Kind: KindInvalidRequest}
		case status >= 500:
			return Classification{Kind: KindUpstreamServerError, Retryable: true}
		}
	}

	if strings.Contains(strings.ToLower(err.Error()), "rate limit") {
		return Classification{Kind: KindRateLimited, Retryable: true}
	}

	if isTimeout(err) {
		return Classification{Kind: KindTimeout, Retryable: true}
	}

	return Classification{Kind: KindUnknown}
}

func httpStatus(err error) (int, bool) {
	var se statusError
	if errors.As(err, &se) {
		return se.HTTPStatus(), true
	}
	return 0, false
}

func isConnectionError(err error) bool {
	// Timed-out dials and reads classify as Timeout, not ConnectionFailed.
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	// Raw client errors often arrive as strings only.
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"network is unreachable",
		"broken pipe",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

// ClassifiedError pairs a raw failure with its classification. The retry
// loop always surfaces failures in this form.
type ClassifiedError struct {
	Classification Classification
	Err            error
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Classification.Kind, e.Err)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}
