package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business failures, distinct from infrastructure
// errors. Services and adapters wrap these sentinels so callers can branch
// with errors.Is.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Credential gate errors.

	// ErrCredentialMissing indicates no credential is stored for a key.
	ErrCredentialMissing = errors.New("credential missing")

	// ErrCredentialExpired indicates the stored credential has expired.
	ErrCredentialExpired = errors.New("credential expired")

	// ErrStorageUnavailable indicates the credential store itself failed.
	// Terminal for the one operation, never for the worker.
	ErrStorageUnavailable = errors.New("credential storage unavailable")

	// Service client errors.

	// ErrUnauthorized indicates the service rejected the request's
	// authentication (401/403). Triggers credential invalidation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTimeout indicates the request exceeded its configured deadline.
	ErrTimeout = errors.New("request timed out")

	// ErrUnreachable indicates the service could not be contacted.
	ErrUnreachable = errors.New("service unreachable")

	// ErrMalformedResponse indicates the service replied with an
	// undecodable body.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrRemoteRejected indicates the service returned a non-auth error
	// status. Inspect with errors.As on *RemoteError for code and message.
	ErrRemoteRejected = errors.New("remote rejected request")

	// Supervisor errors.

	// ErrBusy indicates a mutation is already in flight for the same
	// resource key. The caller should retry after the first completes.
	ErrBusy = errors.New("mutation already in flight for resource")

	// ErrWorkerClosed indicates the worker has shut down and no longer
	// accepts commands.
	ErrWorkerClosed = errors.New("worker closed")
)

// RemoteError carries the status code and message of a service rejection.
// errors.Is(err, ErrRemoteRejected) matches any RemoteError.
type RemoteError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote rejected request: HTTP %d: %s", e.StatusCode, e.Message)
}

// Is makes RemoteError match the ErrRemoteRejected sentinel.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteRejected
}
