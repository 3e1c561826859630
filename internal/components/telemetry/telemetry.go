package telemetry

import (
	"fmt"
)

// API is what the scraper reports through instead of logging directly, so that tests can
// assert on what was reported (see Recorder) and the cli can route it to slog (see SlogAPI).
type API interface {
	// ReportBroken reports a component that no longer works and needs fixing, like a page
	// whose markup changed.
	//
	// The `id` names the component, not the line that failed: a failed request inside
	// Client.Holdings is reported as `client.holdings`. Details such as which request failed
	// go in the params or in the wrapped error. The `report_...` constants of each package
	// list the ids in use.
	//
	// Ids are lowercase, the component and the method are joined by a dot, words of a
	// component are joined by underscores and words of a method by dashes, ex.
	// `client.submit-order`.
	ReportBroken(id string, params ...any)

	// ReportWarning reports an outcome worth a look that is not necessarily broken, like a
	// rejected login. `id` follows the rules of ReportBroken.
	ReportWarning(id string, params ...any)

	// ReportInfo reports a noteworthy outcome, like a successful login or an accepted order.
	ReportInfo(msg string, params ...any)

	// ReportDebug reports raw details, like a dumped response, only shown when debugging.
	ReportDebug(msg string, params ...any)

	// ReportCount reports how many of something exist right now, ex. the transactions of a
	// game. Counts are samples over time and are never summed.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id and message with a namespace before handing it on, the
// scraper reports through one scoped to "vse_scraper".
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scoped(id string) string {
	return fmt.Sprintf("%s: %s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scoped(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scoped(id), params...)
}

func (s ScopedAPI) ReportInfo(msg string, params ...any) {
	s.inner.ReportInfo(s.scoped(msg), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.scoped(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scoped(id), count)
}
