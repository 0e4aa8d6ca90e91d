package headlessadmin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
)

// NetworkError marks a transport-level failure (connection refused, DNS,
// timeout). The façade recovers this one condition by falling back to the
// mock provider; every other error propagates to the caller unchanged.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network unavailable: %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is an application-level failure: the server answered with a
// non-2xx status. Message holds the server's own description, extracted from
// the detail/message/error fields of the body when present.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// UploadError is a failed multipart submission. Uploads are never served from
// the mock provider.
type UploadError struct {
	Endpoint string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload to %s failed: %v", e.Endpoint, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

var (
	// ErrNoRefreshToken is returned when a 401 cannot be retried because no
	// refresh token is stored.
	ErrNoRefreshToken = errors.New("no refresh token available")

	// ErrRefreshFailed is returned after the single refresh round trip fails.
	// Stored tokens have been cleared by the time the caller sees it.
	ErrRefreshFailed = errors.New("token refresh failed")
)

// IsNetworkError reports whether err is (or wraps) a transport-level failure.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// isTransportFailure classifies an error returned by the HTTP client as a
// connectivity problem rather than a server verdict.
func isTransportFailure(err error) bool {
	if err == nil {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
