package commands

import (
	"io"
	"sort"
	"time"
	"vse-client/internal/scrapers/vse"

	"github.com/jedib0t/go-pretty/v6/table"
)

const timeLayout = "2006-01-02 15:04:05 MST"

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(timeLayout)
}

func renderHoldings(out io.Writer, holdings map[string]vse.Stock) {
	stocks := make([]vse.Stock, 0, len(holdings))
	for _, stock := range holdings {
		stocks = append(stocks, stock)
	}
	sort.Slice(stocks, func(i, j int) bool {
		if stocks[i].Ticker == stocks[j].Ticker {
			return stocks[i].ID < stocks[j].ID
		}
		return stocks[i].Ticker < stocks[j].Ticker
	})

	t := newTable(out)
	t.AppendHeader(table.Row{"Ticker", "Security ID", "Type", "Position", "Shares", "Price", "Return"})
	for _, stock := range stocks {
		t.AppendRow(table.Row{
			stock.Ticker,
			stock.ID,
			stock.SecurityType,
			stock.PositionType,
			stock.Shares.String(),
			stock.Price.StringFixed(2),
			stock.Return.StringFixed(2),
		})
	}
	t.Render()
}

func renderTransactions(out io.Writer, transactions []vse.Transaction) {
	t := newTable(out)
	t.AppendHeader(table.Row{"#", "Ticker", "Type", "Shares", "Price", "Ordered", "Executed"})
	for i, transaction := range transactions {
		t.AppendRow(table.Row{
			i,
			transaction.Ticker,
			transaction.Type,
			transaction.Shares.String(),
			transaction.Price.String(),
			formatTime(transaction.OrderTime),
			formatTime(transaction.ExecutionTime),
		})
	}
	t.Render()
}

func renderSearch(out io.Writer, ticker string, result vse.SearchResult) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Ticker", "Security ID", "Price", "Time"})
	t.AppendRow(table.Row{ticker, result.ID, result.Price.String(), formatTime(result.Time)})
	t.Render()
}

func renderPortfolio(out io.Writer, portfolio vse.Portfolio) {
	t := newTable(out)
	t.AppendRows([]table.Row{
		{"Net Worth", portfolio.NetWorth.StringFixed(2)},
		{"Cash", portfolio.Cash.StringFixed(2)},
		{"Leverage", portfolio.Leverage.StringFixed(2)},
		{"Purchasing Power", portfolio.PurchasingPower.StringFixed(2)},
		{"Starting Cash", portfolio.StartingCash.StringFixed(2)},
		{"Return", portfolio.Return.StringFixed(2)},
		{"As Of", formatTime(portfolio.Time)},
	})
	t.Render()
}

func renderOrder(out io.Writer, order vse.Order, result vse.OrderResult) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Type", "Security ID", "Shares", "Status", "Message"})
	t.AppendRow(table.Row{order.Type, order.ID, order.Shares.String(), result.Status, result.Message})
	t.Render()
}
