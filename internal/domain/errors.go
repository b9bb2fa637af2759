package domain

import "errors"

// Sentinel errors for preview operations
var (
	// ErrCancelled indicates a transfer was aborted through its cancellation token
	ErrCancelled = errors.New("transfer cancelled")

	// ErrUnexpectedStatus indicates the preview server answered with a non-2xx code
	ErrUnexpectedStatus = errors.New("unexpected status code")

	// ErrTooLarge indicates the preview exceeded the configured size cap
	ErrTooLarge = errors.New("preview exceeds size limit")

	// ErrAssetNotFound indicates no cached preview exists for a project
	ErrAssetNotFound = errors.New("preview asset not found")
)
