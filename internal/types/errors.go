package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrEmptyCookie signals a pre-supplied session cookie string that
	// parsed down to nothing — a configuration error, raised before any
	// interactive login is attempted.
	ErrEmptyCookie = errors.New("session cookie string is empty after parsing")

	ErrNoCredentials       = errors.New("no login credentials configured")
	ErrLoginFieldsHidden   = errors.New("login input fields never became visible")
	ErrLoginSubmitMissing  = errors.New("login submit control not found")
	ErrLoginSubmitDisabled = errors.New("login submit control is disabled")
	ErrLoginRejected       = errors.New("login rejected: still on login host (bad credentials or captcha)")
	ErrClubIDNotFound      = errors.New("cafe club id not found")
	ErrUnknownTool         = errors.New("unknown tool")
)

// FetchError wraps errors that occur while loading a page or calling an
// auxiliary API endpoint.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
	Retryable  bool
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) IsRetryable() bool { return e.Retryable }

// CrawlError wraps a fatal failure of one site's crawl, tagged with the
// stage it died in (session, login, listing, collect).
type CrawlError struct {
	Site  string
	Stage string
	Err   error
}

func (e *CrawlError) Error() string {
	return fmt.Sprintf("%s crawl failed at %s: %v", e.Site, e.Stage, e.Err)
}

func (e *CrawlError) Unwrap() error { return e.Err }
