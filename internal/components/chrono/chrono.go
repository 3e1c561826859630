package chrono

import (
	"fmt"
	"net/http"
	"time"
)

var eastern *time.Location

func init() {
	var err error
	eastern, err = time.LoadLocation("America/New_York")
	if err != nil {
		panic(err)
	}
}

// Eastern returns a [*time.Location] for America/New_York, the timezone the game's
// market hours and transaction timestamps are expressed in.
func Eastern() *time.Location {
	return eastern
}

// ParseServerDate parses an HTTP `Date` response header. The server's clock is the clock
// of record, the returned time is in UTC.
func ParseServerDate(header string) (time.Time, error) {
	if header == "" {
		return time.Time{}, fmt.Errorf("empty date header")
	}
	t, err := http.ParseTime(header)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date header %q: %w", header, err)
	}
	return t.UTC(), nil
}

// ParseEastern parses a wall clock time as displayed by the site, trying each layout in order.
func ParseEastern(value string, layouts ...string) (time.Time, error) {
	var lastErr error
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, value, eastern)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no layouts given")
	}
	return time.Time{}, fmt.Errorf("parse time %q: %w", value, lastErr)
}
