package vse

import (
	"context"
	"fmt"
	"vse-client/pkg/htmlutil"
	"vse-client/pkg/numutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

const holdingsPath = "/game/{game}/portfolio/holdings"

// Holdings fetches the positions currently held in a game, keyed by security id.
//
// WARNING: the Price of every returned Stock is rounded to the cent, the site only displays
// that much. Use Search to get the full precision price of a security.
func (c *Client) Holdings(ctx context.Context, cred Credential, game string) (map[string]Stock, error) {
	err := requireGame(game)
	if err != nil {
		return nil, err
	}
	c.tel.ReportDebug("get holdings", game)

	httpClient, err := c.session(cred)
	if err != nil {
		return nil, err
	}

	res, err := httpClient.R().
		SetContext(ctx).
		SetPathParam("game", game).
		SetQueryParams(map[string]string{
			"view":    "list",
			"partial": "True",
		}).
		Get(holdingsPath)
	if err != nil {
		c.tel.ReportBroken(
			report_client_holdings,
			fmt.Errorf("fetch: %w", err),
			game,
		)
		return nil, err
	}
	doc, err := parseDocument(res)
	if err != nil {
		c.tel.ReportBroken(
			report_client_holdings,
			fmt.Errorf("parse: %w", err),
			game,
		)
		return nil, err
	}

	holdings, err := parseHoldings(doc)
	if err != nil {
		c.tel.ReportBroken(report_client_holdings, err, game)
		return nil, err
	}
	c.tel.ReportCount(report_client_holdings, int64(len(holdings)))

	return holdings, nil
}

// parseHoldings reads one Stock per table row. The first row is the table header.
func parseHoldings(doc *goquery.Document) (map[string]Stock, error) {
	rows := doc.Find("tr")
	if rows.Length() > 0 {
		rows = rows.Slice(1, goquery.ToEnd)
	}

	gainCells, err := pairGainCells(doc, rows)
	if err != nil {
		return nil, err
	}

	holdings := make(map[string]Stock, rows.Length())
	for i := range rows.Nodes {
		stock, err := parseHolding(i, rows.Eq(i), gainCells[i])
		if err != nil {
			return nil, err
		}
		if _, exists := holdings[stock.ID]; exists {
			return nil, newExtractionError(
				"holdings", "data-symbol", i,
				fmt.Errorf("duplicate security id %q", stock.ID),
			)
		}
		holdings[stock.ID] = stock
	}

	return holdings, nil
}

// pairGainCells finds the market gain cell of every row. Cells are read off of their own
// row when every row has one, otherwise the cells of the whole page are paired to rows by
// position, which is only done when there are exactly as many cells as rows.
func pairGainCells(doc *goquery.Document, rows *goquery.Selection) ([]*goquery.Selection, error) {
	cells := make([]*goquery.Selection, rows.Length())

	inRow := true
	for i := range rows.Nodes {
		cell := rows.Eq(i).Find("td.marketgain")
		if cell.Length() == 0 {
			inRow = false
			break
		}
		cells[i] = cell.First()
	}
	if inRow {
		return cells, nil
	}

	all := doc.Find("td.marketgain")
	if all.Length() != rows.Length() {
		return nil, newExtractionError(
			"holdings", "td.marketgain", -1,
			fmt.Errorf("%w: %d rows, %d cells", ErrRowMismatch, rows.Length(), all.Length()),
		)
	}
	for i := range cells {
		cells[i] = all.Eq(i)
	}
	return cells, nil
}

func parseHolding(idx int, row, gainCell *goquery.Selection) (Stock, error) {
	attr := func(name string) (string, error) {
		value, err := htmlutil.RequireAttr(row, name)
		if err != nil {
			return "", newExtractionError("holdings", name, idx, err)
		}
		return value, nil
	}
	quantity := func(name string) (decimal.Decimal, error) {
		value, err := attr(name)
		if err != nil {
			return decimal.Decimal{}, err
		}
		d, err := numutil.ParseQuantity(value)
		if err != nil {
			return decimal.Decimal{}, newExtractionError("holdings", name, idx, err)
		}
		return d, nil
	}

	id, err := attr("data-symbol")
	if err != nil {
		return Stock{}, err
	}
	if id == "" {
		return Stock{}, newExtractionError("holdings", "data-symbol", idx, fmt.Errorf("empty security id"))
	}
	ticker, err := attr("data-ticker")
	if err != nil {
		return Stock{}, err
	}
	instType, err := attr("data-insttype")
	if err != nil {
		return Stock{}, err
	}
	price, err := quantity("data-price")
	if err != nil {
		return Stock{}, err
	}
	shares, err := quantity("data-shares")
	if err != nil {
		return Stock{}, err
	}
	positionType, err := attr("data-type")
	if err != nil {
		return Stock{}, err
	}

	gainText, ok := htmlutil.FirstText(gainCell.Nodes[0])
	if !ok {
		return Stock{}, newExtractionError("holdings", "td.marketgain", idx, htmlutil.ErrMissingElement)
	}
	returns, err := numutil.ParseMoney(gainText)
	if err != nil {
		return Stock{}, newExtractionError("holdings", "td.marketgain", idx, err)
	}

	return Stock{
		ID:           id,
		Ticker:       ticker,
		SecurityType: SecurityType(instType),
		Price:        price,
		Shares:       shares,
		PositionType: PositionType(positionType),
		Return:       returns,
	}, nil
}
