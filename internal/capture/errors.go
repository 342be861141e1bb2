// internal/capture/errors.go
package capture

import "errors"

var (
	// ErrEmptyQuery rejects blank operator input before any session is created.
	ErrEmptyQuery = errors.New("search query cannot be empty")

	// ErrLoadTimeout marks an attempt where the document never reached
	// readyState "complete" within the configured window.
	ErrLoadTimeout = errors.New("page load timeout")

	// ErrElementNotFound marks an attempt where no selector probe matched.
	ErrElementNotFound = errors.New("element not found")

	// ErrNoResult is the terminal outcome after all attempts are exhausted or
	// persistence fails.
	ErrNoResult = errors.New("no capture result")
)
