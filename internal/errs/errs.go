// Package errs defines common error variables used across the application.
package errs

import "errors"

// Request errors.
var (
	// ErrInvalidURL indicates that the resource URL is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
)

// Download attempt errors.
var (
	// ErrAttemptInFlight indicates that a download attempt is already running.
	ErrAttemptInFlight = errors.New("download attempt already in flight")
	// ErrRetrievalFailed indicates that the primary strategy could not retrieve the resource.
	ErrRetrievalFailed = errors.New("retrieval failed")
	// ErrUnexpectedStatus indicates a non-2xx response to the resource request.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrSaveFailed indicates that a fetched blob could not be saved.
	ErrSaveFailed = errors.New("save failed")
	// ErrFallbackFailed indicates that the resource could not be opened in a browser either.
	ErrFallbackFailed = errors.New("fallback failed")
)

// Browser errors.
var (
	// ErrUnsupportedPlatform indicates that no browser launcher is known for the current OS.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

// Proxy errors.
var (
	// ErrNoProxiesAvailable indicates that no configured proxy passed the health check.
	ErrNoProxiesAvailable = errors.New("no proxies available")
)
