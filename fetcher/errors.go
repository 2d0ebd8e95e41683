package fetcher

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedStatus is returned for responses outside the 2xx range.
	ErrUnexpectedStatus = errors.New("unexpected status code")

	// ErrNotHTML is returned for responses that do not carry HTML content.
	ErrNotHTML = errors.New("content is not html")
)

// FetchError wraps any failure to retrieve or parse a page.
type FetchError struct {
	URL string
	Err error
}

// Error implements error.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}
