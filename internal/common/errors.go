// Package common defines shared constants and sentinel errors used across
// sitekeeper components. Callers should use errors.Is to match these values.
package common

import "errors"

var (

	// repository / remote resource errors
	ErrorNotFound = errors.New("not found")

	// remote write rejected: the lock token went stale between read and write
	ErrorConflict = errors.New("conflict: the item changed since you loaded it")

	// client-detected errors, never reach the network
	ErrorValidation = errors.New("validation error")

	// publish pipeline errors
	ErrorUpload   = errors.New("upload failed")
	ErrorDispatch = errors.New("workflow dispatch failed")

	// ErrorIndexing means the asset was uploaded but the downstream
	// cataloging step failed. Remediation differs from ErrorUpload: the
	// caller retries indexing only, without re-uploading.
	ErrorIndexing = errors.New("published asset exists but indexing failed")

	// service-level errors
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// auth errors (invalid or malformed session token)
	ErrInvalidToken = errors.New("invalid token")
)
