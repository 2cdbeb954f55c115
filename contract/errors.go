package contract

import "errors"

// Error taxonomy shared by every service boundary. Boundaries wrap these with
// fmt.Errorf("...: %w", err) so callers can classify with errors.Is.
var (
	// ErrConnectivity marks network, DNS, or timeout failures reaching a
	// remote agent or external gateway. Retryable, bounded.
	ErrConnectivity = errors.New("connectivity failure")

	// ErrUpstream marks a server-side failure reported by a remote agent or
	// gateway. Retryable, bounded.
	ErrUpstream = errors.New("upstream service failure")

	// ErrValidation marks malformed arguments or missing required
	// configuration. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrPersistence marks a relational store failure. Retried, then
	// downgraded to advisory where the primary action already succeeded.
	ErrPersistence = errors.New("persistence failure")

	// ErrUnauthorized marks a rejected internal credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound marks a lookup that matched no record.
	ErrNotFound = errors.New("not found")
)
