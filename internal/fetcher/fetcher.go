// Package fetcher retrieves HTML pages over HTTP and normalizes them to UTF-8.
package fetcher

import (
	"context"
	"fmt"
)

// Page is a fetched document whose body has been decoded to UTF-8.
type Page struct {
	URL        string
	StatusCode int
	Charset    string // charset the body was decoded from
	Body       []byte
}

// Fetcher defines the interface for downloading a single page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// FetchError reports why a page could not be retrieved. StatusCode is zero
// when no response was received.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
