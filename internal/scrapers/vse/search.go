package vse

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"vse-client/internal/components/chrono"
	"vse-client/internal/components/telemetry"
	"vse-client/pkg/htmlutil"
	"vse-client/pkg/numutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const tradePath = "/game/{game}/trade"

// Search looks up the full precision price and the security id of a ticker. The returned
// time is the server's time converted to America/New_York.
//
// When the game has no search result element the returned error matches ErrInvalidGame,
// whatever the status of the answer, when the element exists but is malformed it matches
// ErrUnknownSearch. Both are a *SearchError that keeps the raw answer. Errors that are not a
// *SearchError mean the site could not be talked to or the result could not be read.
func (c *Client) Search(ctx context.Context, cred Credential, game, ticker string) (SearchResult, error) {
	err := requireGame(game)
	if err != nil {
		return SearchResult{}, err
	}
	if ticker == "" {
		return SearchResult{}, fmt.Errorf("%w: empty ticker", ErrInvalidArgument)
	}
	c.tel.ReportDebug("search", game, ticker)

	httpClient, err := c.session(cred)
	if err != nil {
		return SearchResult{}, err
	}

	res, err := httpClient.R().
		SetContext(ctx).
		SetPathParam("game", game).
		SetQueryParam("week", "1").
		SetFormData(map[string]string{
			"search":  ticker,
			"view":    "grid",
			"partial": "true",
		}).
		Post(tradePath)
	if err != nil {
		c.tel.ReportBroken(
			report_client_search,
			fmt.Errorf("fetch: %w", err),
			game, ticker,
		)
		return SearchResult{}, err
	}
	// an unknown game answers with an error page, which is read like any other page
	// so that it ends up as a missing result element
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		c.tel.ReportBroken(
			report_client_search,
			fmt.Errorf("parse: %w", err),
			game, ticker,
		)
		return SearchResult{}, err
	}

	chip := doc.Find("div.chip").First()
	if res.IsError() && chip.Length() == 0 {
		return SearchResult{}, c.searchError(
			res, game, ticker,
			fmt.Errorf("%w: %s", htmlutil.ErrMissingElement, res.Status()),
		)
	}
	rawPrice, err := htmlutil.RequireAttr(chip, "data-price")
	if err != nil {
		return SearchResult{}, c.searchError(res, game, ticker, err)
	}
	symbol, err := htmlutil.RequireAttr(chip, "data-symbol")
	if err != nil {
		return SearchResult{}, c.searchError(res, game, ticker, err)
	}
	price, err := numutil.ParseQuantity(rawPrice)
	if err != nil {
		err = newExtractionError("search", "data-price", -1, err)
		c.tel.ReportBroken(report_client_search, err, game, ticker)
		return SearchResult{}, err
	}

	serverTime, err := chrono.ParseServerDate(res.Header().Get("date"))
	if err != nil {
		err = newExtractionError("search", "date header", -1, err)
		c.tel.ReportBroken(report_client_search, err, game, ticker)
		return SearchResult{}, err
	}

	return SearchResult{
		Price: price,
		ID:    symbol,
		Time:  serverTime.In(chrono.Eastern()),
	}, nil
}

func (c *Client) searchError(res *resty.Response, game, ticker string, err error) *SearchError {
	kind := SEARCH_UNKNOWN
	if errors.Is(err, htmlutil.ErrMissingElement) {
		kind = SEARCH_INVALID_GAME
	}
	searchErr := &SearchError{
		Kind:    kind,
		Game:    game,
		Ticker:  ticker,
		Status:  res.StatusCode(),
		Headers: res.Header().Clone(),
		Body:    res.String(),
		Err:     err,
	}

	c.tel.ReportWarning(report_client_search, searchErr)
	c.tel.ReportDebug("search response", telemetry.FormatHttpMessage(res))

	return searchErr
}
