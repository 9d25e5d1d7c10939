package api

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoBaseURL is returned before any transport work when the client has no
// configured base URL. Fatal to all network operations; never retried.
var ErrNoBaseURL = errors.New("api: base url is not configured")

// NetworkError wraps a transport-level failure (DNS, refused connection,
// TLS). Distinct from HTTPError: no response was received at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("api: network failure: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// TimeoutError reports that the per-call deadline elapsed. Bound is the
// deadline that was exceeded, so callers can offer a retry with a longer one.
type TimeoutError struct {
	Bound time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("api: request exceeded %s deadline", e.Bound)
}

// HTTPError is a non-2xx response. Body is the raw response text verbatim;
// error bodies are not guaranteed to be JSON, so it is never re-parsed.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("api: http %d: %s", e.Status, e.Body)
}

// StorageError wraps a secret-store failure encountered while preparing a
// request or persisting a credential.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("api: secret storage failure: %v", e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
