// Package apperr defines sentinel errors shared across components.
// Callers wrap them with context via fmt.Errorf("...: %w", ...) and the
// surfaces (API, CLI, MCP) classify failures with errors.Is.
package apperr

import "errors"

var (
	// ErrConfig marks a missing credential or endpoint. Never retried.
	ErrConfig = errors.New("missing configuration")
	// ErrNetwork marks a transport-level failure (connection refused, DNS).
	ErrNetwork = errors.New("network failure")
	// ErrRemote marks a non-2xx response or an unparsable body from a
	// remote service.
	ErrRemote = errors.New("remote service error")
	// ErrEmptyResult marks a naming-service reply with no usable text.
	ErrEmptyResult = errors.New("empty result")
	// ErrNotFound marks a missing vault file or a text span that no longer
	// exists at use time.
	ErrNotFound = errors.New("not found")
	// ErrCancelled marks a user-aborted interactive rename.
	ErrCancelled = errors.New("cancelled")
)
