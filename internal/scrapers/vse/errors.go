package vse

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrExtraction is matched by every *ExtractionError, a page no longer has the markup it is
	// expected to have. No partial data is ever returned alongside it.
	ErrExtraction = errors.New("extraction failure")
	// ErrRowMismatch means the holding rows and their market gain cells could not be paired up.
	ErrRowMismatch = errors.New("holding rows and market gain cells do not line up")
	// ErrInvalidGame is matched by a *SearchError when the game has no search result element.
	ErrInvalidGame = errors.New("invalid game")
	// ErrUnknownSearch is matched by a *SearchError when the search result is malformed.
	ErrUnknownSearch = errors.New("unknown search error")
	// ErrInvalidArgument is returned before any request is made.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnexpectedStatus is returned when a page answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// StatusError is a page that answered with a non-2xx status, it matches ErrUnexpectedStatus.
type StatusError struct {
	Method string
	Url    string
	Status int
	// Text is the status line, ex. "404 Not Found".
	Text string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %s %s: %s", ErrUnexpectedStatus, e.Method, e.Url, e.Text)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// IsUnauthorized reports whether an operation failed because the site refused the
// credential, callers should authenticate again when it does.
func IsUnauthorized(err error) bool {
	status := 0
	var statusErr *StatusError
	var searchErr *SearchError
	switch {
	case errors.As(err, &statusErr):
		status = statusErr.Status
	case errors.As(err, &searchErr):
		status = searchErr.Status
	}
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// ExtractionError describes which piece of which page could not be read.
type ExtractionError struct {
	// Op is the operation that failed, ex. "holdings".
	Op string
	// Field is the attribute or cell that could not be read.
	Field string
	// Row is the index of the offending row, or -1 if the failure is not tied to a row.
	Row int
	Err error
}

func newExtractionError(op, field string, row int, err error) *ExtractionError {
	return &ExtractionError{Op: op, Field: field, Row: row, Err: err}
}

func (e *ExtractionError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("vse scraper: %s: row %d: %s: %v", e.Op, e.Row, e.Field, e.Err)
	}
	return fmt.Sprintf("vse scraper: %s: %s: %v", e.Op, e.Field, e.Err)
}

func (e *ExtractionError) Unwrap() []error {
	return []error{ErrExtraction, e.Err}
}

type SearchErrorKind int

const (
	SEARCH_INVALID_GAME SearchErrorKind = iota
	SEARCH_UNKNOWN
)

func (k SearchErrorKind) String() string {
	if k == SEARCH_INVALID_GAME {
		return "invalid game"
	}
	return "unknown error"
}

// SearchError is a failed ticker lookup, it keeps the raw response around for debugging.
type SearchError struct {
	Kind    SearchErrorKind
	Game    string
	Ticker  string
	Status  int
	Headers http.Header
	Body    string
	Err     error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf(
		"vse scraper: search %q in game %q: %s: %v",
		e.Ticker, e.Game, e.Kind, e.Err,
	)
}

func (e *SearchError) Unwrap() []error {
	kind := ErrUnknownSearch
	if e.Kind == SEARCH_INVALID_GAME {
		kind = ErrInvalidGame
	}
	return []error{kind, e.Err}
}
