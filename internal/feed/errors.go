package feed

import "fmt"

// FetchError reports a failed feed request: a network or timeout error when
// Err is set, a non-2xx response when StatusCode is set.
type FetchError struct {
	Keyword    string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching feed for %q: %v", e.Keyword, e.Err)
	}
	return fmt.Sprintf("fetching feed for %q: unexpected status %d", e.Keyword, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a malformed feed payload.
type ParseError struct {
	Keyword string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing feed for %q: %v", e.Keyword, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
