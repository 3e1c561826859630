package vse

import (
	"context"
	"fmt"
	"strings"
	"vse-client/internal/components/chrono"
	"vse-client/pkg/htmlutil"
	"vse-client/pkg/numutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

const portfolioPath = "/game/{game}/portfolio"

type portfolioField struct {
	name   string
	labels []string
	signed bool
	set    func(p *Portfolio, value decimal.Decimal)
}

// the labels of the performance summary, lowercased
var portfolioFields = []portfolioField{
	{
		name:   "cash",
		labels: []string{"cash", "cash remaining"},
		set:    func(p *Portfolio, v decimal.Decimal) { p.Cash = v },
	},
	{
		name:   "leverage",
		labels: []string{"leverage", "cash borrowed", "amount available to borrow"},
		set:    func(p *Portfolio, v decimal.Decimal) { p.Leverage = v },
	},
	{
		name:   "net worth",
		labels: []string{"net worth"},
		set:    func(p *Portfolio, v decimal.Decimal) { p.NetWorth = v },
	},
	{
		name:   "purchasing power",
		labels: []string{"purchasing power", "buying power"},
		set:    func(p *Portfolio, v decimal.Decimal) { p.PurchasingPower = v },
	},
	{
		name:   "starting cash",
		labels: []string{"starting cash"},
		set:    func(p *Portfolio, v decimal.Decimal) { p.StartingCash = v },
	},
	{
		name:   "return",
		labels: []string{"return", "overall gains", "overall returns"},
		signed: true,
		set:    func(p *Portfolio, v decimal.Decimal) { p.Return = v },
	},
}

// Portfolio fetches the account totals of a game. The returned time is the server's time in UTC.
func (c *Client) Portfolio(ctx context.Context, cred Credential, game string) (Portfolio, error) {
	err := requireGame(game)
	if err != nil {
		return Portfolio{}, err
	}
	c.tel.ReportDebug("get portfolio", game)

	httpClient, err := c.session(cred)
	if err != nil {
		return Portfolio{}, err
	}

	res, err := httpClient.R().
		SetContext(ctx).
		SetPathParam("game", game).
		Get(portfolioPath)
	if err != nil {
		c.tel.ReportBroken(
			report_client_portfolio,
			fmt.Errorf("fetch: %w", err),
			game,
		)
		return Portfolio{}, err
	}
	doc, err := parseDocument(res)
	if err != nil {
		c.tel.ReportBroken(
			report_client_portfolio,
			fmt.Errorf("parse: %w", err),
			game,
		)
		return Portfolio{}, err
	}

	serverTime, err := chrono.ParseServerDate(res.Header().Get("date"))
	if err != nil {
		err = newExtractionError("portfolio", "date header", -1, err)
		c.tel.ReportBroken(report_client_portfolio, err, game)
		return Portfolio{}, err
	}

	portfolio, err := parsePortfolio(doc)
	if err != nil {
		c.tel.ReportBroken(report_client_portfolio, err, game)
		return Portfolio{}, err
	}
	portfolio.Time = serverTime

	return portfolio, nil
}

// parsePortfolio reads the label/value pairs of the performance summary.
func parsePortfolio(doc *goquery.Document) (Portfolio, error) {
	values := map[string]string{}
	doc.Find("ul.performance li").Each(func(_ int, li *goquery.Selection) {
		label := strings.ToLower(htmlutil.NormalizeText(li.Find("span.label").Text()))
		label = strings.TrimSuffix(label, ":")
		if label == "" {
			return
		}
		values[label] = li.Find("span.data").Text()
	})

	var portfolio Portfolio
	for _, field := range portfolioFields {
		raw, found := "", false
		for _, label := range field.labels {
			raw, found = values[label]
			if found {
				break
			}
		}
		if !found {
			return Portfolio{}, newExtractionError("portfolio", field.name, -1, htmlutil.ErrMissingElement)
		}

		parse := numutil.ParseMoneyQuantity
		if field.signed {
			parse = numutil.ParseMoney
		}
		value, err := parse(raw)
		if err != nil {
			return Portfolio{}, newExtractionError("portfolio", field.name, -1, err)
		}
		field.set(&portfolio, value)
	}

	return portfolio, nil
}
