package domain

import "time"

// FetchStatus classifies the outcome of a fetch attempt sequence.
type FetchStatus string

const (
	// FetchOK means the body was retrieved and is HTML.
	FetchOK FetchStatus = "ok"
	// FetchTimeout means every attempt timed out.
	FetchTimeout FetchStatus = "timeout"
	// FetchHTTPError means the server answered with a non-retryable or
	// retry-exhausted HTTP error status.
	FetchHTTPError FetchStatus = "http_error"
	// FetchNetworkError means a transport-level failure (DNS, refused
	// connection, reset) persisted through all retries.
	FetchNetworkError FetchStatus = "network_error"
	// FetchBlocked means the URL was not fetched for policy reasons:
	// robots.txt disallow or a non-HTML content type.
	FetchBlocked FetchStatus = "blocked"
)

// FetchResult is the outcome of fetching a single URL, including retries.
type FetchResult struct {
	URL        string
	Status     FetchStatus
	HTTPStatus int
	Body       []byte
	Elapsed    time.Duration
	Attempts   int
	// Reason carries detail for blocked results (e.g. "robots_disallowed").
	Reason string
}

// OK reports whether the result carries a usable HTML body.
func (r *FetchResult) OK() bool {
	return r.Status == FetchOK
}
