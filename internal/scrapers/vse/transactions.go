package vse

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"vse-client/internal/components/chrono"
	"vse-client/pkg/htmlutil"
	"vse-client/pkg/numutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	transactionsPath    = "/game/{game}/portfolio/transactionhistory"
	transactionPageSize = 10
)

// the layouts transaction timestamps are displayed with, in America/New_York
var transactionTimeLayouts = []string{
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04:05 PM",
	"01/02/06 3:04pm",
}

// Pagination splits a number of transactions into pages of 10.
type Pagination struct {
	Total int
	// Whole is the number of transactions that fit in full pages.
	Whole int
	// Tail is the number of transactions on the last, partial page.
	Tail int
}

func Paginate(total int) Pagination {
	if total < 0 {
		total = 0
	}
	whole := (total / transactionPageSize) * transactionPageSize
	return Pagination{
		Total: total,
		Whole: whole,
		Tail:  total - whole,
	}
}

// FullPageOffsets returns the index of the first transaction of every full page.
func (p Pagination) FullPageOffsets() []int {
	offsets := []int{}
	for i := 0; i < p.Whole; i += transactionPageSize {
		offsets = append(offsets, i)
	}
	return offsets
}

// Offsets returns the index of the first transaction of every page, the partial page included.
func (p Pagination) Offsets() []int {
	offsets := p.FullPageOffsets()
	if p.Tail > 0 {
		offsets = append(offsets, p.Whole)
	}
	return offsets
}

// Transactions fetches the whole transaction history of a game, most recent first.
// The index of a transaction in the returned slice is its position in that history.
//
// Every full page of 10 is fetched and so is the last, partial page (Pagination.Offsets),
// without it the oldest Tail transactions would be missing from the result.
func (c *Client) Transactions(ctx context.Context, cred Credential, game string) ([]Transaction, error) {
	err := requireGame(game)
	if err != nil {
		return nil, err
	}
	c.tel.ReportDebug("get transactions", game)

	httpClient, err := c.session(cred)
	if err != nil {
		return nil, err
	}

	first, err := c.transactionPage(ctx, httpClient, game, 0)
	if err != nil {
		return nil, err
	}

	total, err := parseTransactionTotal(first)
	if errors.Is(err, htmlutil.ErrMissingElement) {
		// short histories may be rendered without a pagination control
		c.tel.ReportWarning(report_client_transactions, err, game)
		total = transactionRows(first).Length()
	} else if err != nil {
		c.tel.ReportBroken(report_client_transactions, err, game)
		return nil, err
	}
	pages := Paginate(total)

	transactions := []Transaction{}
	for _, offset := range pages.Offsets() {
		doc := first
		if offset != 0 {
			doc, err = c.transactionPage(ctx, httpClient, game, offset)
			if err != nil {
				return nil, err
			}
		}

		parsed, err := parseTransactions(doc, len(transactions))
		if err != nil {
			c.tel.ReportBroken(report_client_transactions, err, game, offset)
			return nil, err
		}
		transactions = append(transactions, parsed...)
	}

	if len(transactions) != pages.Total {
		c.tel.ReportWarning(
			report_client_transactions,
			fmt.Errorf("expected %d transactions, got %d", pages.Total, len(transactions)),
			game,
		)
	}
	c.tel.ReportCount(report_client_transactions, int64(len(transactions)))

	return transactions, nil
}

func (c *Client) transactionPage(ctx context.Context, httpClient *resty.Client, game string, offset int) (*goquery.Document, error) {
	res, err := httpClient.R().
		SetContext(ctx).
		SetPathParam("game", game).
		SetQueryParams(map[string]string{
			"sort":       "TransactionDate",
			"descending": "True",
			"partial":    "true",
			"index":      strconv.Itoa(offset),
		}).
		Get(transactionsPath)
	if err != nil {
		c.tel.ReportBroken(
			report_client_transactions,
			fmt.Errorf("fetch: %w", err),
			game, offset,
		)
		return nil, err
	}
	doc, err := parseDocument(res)
	if err != nil {
		c.tel.ReportBroken(
			report_client_transactions,
			fmt.Errorf("parse: %w", err),
			game, offset,
		)
		return nil, err
	}
	return doc, nil
}

// parseTransactionTotal reads the number of transactions off of the pagination control, it
// is the value of the second query parameter of the control's link.
func parseTransactionTotal(doc *goquery.Document) (int, error) {
	href, err := htmlutil.RequireAttr(doc.Find("a.fakebutton"), "href")
	if err != nil {
		return 0, newExtractionError("transactions", "a.fakebutton", -1, err)
	}
	link, err := url.Parse(href)
	if err != nil {
		return 0, newExtractionError("transactions", "a.fakebutton", -1, err)
	}

	pairs := strings.Split(link.RawQuery, "&")
	if len(pairs) < 2 {
		return 0, newExtractionError(
			"transactions", "a.fakebutton", -1,
			fmt.Errorf("expected at least 2 query parameters in %q", href),
		)
	}
	_, value, _ := strings.Cut(pairs[1], "=")
	total, err := strconv.Atoi(value)
	if err != nil {
		return 0, newExtractionError("transactions", "a.fakebutton", -1, err)
	}
	if total < 0 {
		return 0, newExtractionError(
			"transactions", "a.fakebutton", -1,
			fmt.Errorf("negative transaction count %d", total),
		)
	}
	return total, nil
}

// transactionRows returns every row of the history table but the header.
func transactionRows(doc *goquery.Document) *goquery.Selection {
	rows := doc.Find("tr")
	if rows.Length() == 0 {
		return rows
	}
	return rows.Slice(1, goquery.ToEnd)
}

// parseTransactions reads the rows of a page, `start` is the index of the page's first row in
// the whole history and is only used for error messages.
//
// cells: symbol | order time | transaction time | type | amount | price
func parseTransactions(doc *goquery.Document, start int) ([]Transaction, error) {
	rows := transactionRows(doc)
	transactions := make([]Transaction, 0, rows.Length())

	for i := range rows.Nodes {
		idx := start + i
		cells := rows.Eq(i).Find("td")
		if cells.Length() < 6 {
			return nil, newExtractionError(
				"transactions", "td", idx,
				fmt.Errorf("expected 6 cells, got %d", cells.Length()),
			)
		}
		text := func(i int) string {
			return htmlutil.NormalizeText(htmlutil.GetText(cells.Get(i)))
		}

		ticker := text(0)
		if ticker == "" {
			return nil, newExtractionError("transactions", "symbol", idx, fmt.Errorf("empty symbol"))
		}
		orderTime, err := chrono.ParseEastern(text(1), transactionTimeLayouts...)
		if err != nil {
			return nil, newExtractionError("transactions", "order time", idx, err)
		}
		executionTime, err := chrono.ParseEastern(text(2), transactionTimeLayouts...)
		if err != nil {
			return nil, newExtractionError("transactions", "transaction time", idx, err)
		}
		orderType, ok := ParseOrderType(text(3))
		if !ok {
			return nil, newExtractionError(
				"transactions", "type", idx,
				fmt.Errorf("unknown transaction type %q", text(3)),
			)
		}
		shares, err := numutil.ParseQuantity(text(4))
		if err != nil {
			return nil, newExtractionError("transactions", "amount", idx, err)
		}
		price, err := numutil.ParseMoneyQuantity(text(5))
		if err != nil {
			return nil, newExtractionError("transactions", "price", idx, err)
		}

		transactions = append(transactions, Transaction{
			Ticker:        ticker,
			OrderTime:     orderTime,
			ExecutionTime: executionTime,
			Type:          orderType,
			Shares:        shares,
			Price:         price,
		})
	}

	return transactions, nil
}
