package service

import "errors"

// Sentinel errors returned by the service layer. Handlers map these onto
// HTTP statuses; everything else is treated as an internal error.
var (
	// ErrInvalidRequest means the caller's input failed validation (400)
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidCredentials is returned for every login refusal, without
	// distinguishing unknown account from wrong password (401)
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken covers malformed, expired, revoked and wrong-type
	// tokens alike (401)
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrForbidden means the resource exists but belongs to someone else (403)
	ErrForbidden = errors.New("access denied")

	// ErrNotFound means the requested resource does not exist (404)
	ErrNotFound = errors.New("not found")

	// ErrUpstreamInconsistency means the upstream systems disagree about the
	// user, e.g. a WordPress account with no WooCommerce customer (500)
	ErrUpstreamInconsistency = errors.New("upstream data inconsistency")

	// ErrUpstreamUnavailable means an upstream could not be reached (502)
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrRateLimited means too many attempts within the window (429)
	ErrRateLimited = errors.New("rate limit exceeded")
)
