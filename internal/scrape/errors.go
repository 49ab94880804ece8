package scrape

import (
	"fmt"
	"net/http"
)

// FetchError reports a non-2xx response or a transport failure for one URL.
type FetchError struct {
	URL string
	// StatusCode is zero when no response was received.
	StatusCode int
	Body       string
	Err        error
}

// NewStatusError builds a FetchError from an unsuccessful response.
func NewStatusError(resp FetchResponse) *FetchError {
	return &FetchError{URL: resp.URL, StatusCode: resp.StatusCode, Body: string(resp.Body)}
}

func (e *FetchError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("request to %q failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("request to %q failed with code %d (%s), response body: %s",
		e.URL, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// WriteError reports a failure persisting an output document.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write output %q: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
