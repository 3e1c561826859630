package vse

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"
	"vse-client/internal/components/chrono"
	"vse-client/internal/components/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestPaginate(t *testing.T) {
	cases := []struct {
		total   int
		whole   int
		tail    int
		full    []int
		offsets []int
	}{
		{total: 37, whole: 30, tail: 7, full: []int{0, 10, 20}, offsets: []int{0, 10, 20, 30}},
		{total: 7, whole: 0, tail: 7, full: []int{}, offsets: []int{0}},
		{total: 100, whole: 100, tail: 0, full: []int{0, 10, 20, 30, 40, 50, 60, 70, 80, 90}, offsets: []int{0, 10, 20, 30, 40, 50, 60, 70, 80, 90}},
		{total: 0, whole: 0, tail: 0, full: []int{}, offsets: []int{}},
		{total: -4, whole: 0, tail: 0, full: []int{}, offsets: []int{}},
	}

	for _, test := range cases {
		t.Run(fmt.Sprint(test.total), func(t *testing.T) {
			pages := Paginate(test.total)
			require.Equal(t, test.whole, pages.Whole)
			require.Equal(t, test.tail, pages.Tail)
			require.Equal(t, pages.Whole+pages.Tail, pages.Total)
			require.Equal(t, test.full, pages.FullPageOffsets())
			require.Equal(t, test.offsets, pages.Offsets())
		})
	}
}

func expectedTransaction(n int) Transaction {
	executed := transactionTime(n)
	orderType, _ := ParseOrderType(transactionTypes[n%len(transactionTypes)])
	return Transaction{
		Ticker:        fmt.Sprintf("T%d", n),
		OrderTime:     executed.Add(-time.Minute),
		ExecutionTime: executed,
		Type:          orderType,
		Shares:        decimal.NewFromInt(int64((n + 1) * 10)),
		Price:         decimal.RequireFromString(fmt.Sprintf("%d.50", 1000+n)),
	}
}

func fetchedIndexes(site *fakeSite) []int {
	site.mutex.Lock()
	defer site.mutex.Unlock()
	out := append([]int{}, site.transactionFetch...)
	sort.Ints(out)
	return out
}

func TestTransactions(t *testing.T) {
	cases := []struct {
		total   int
		fetched []int
	}{
		{total: 37, fetched: []int{0, 10, 20, 30}},
		{total: 7, fetched: []int{0}},
		{total: 20, fetched: []int{0, 10}},
		{total: 0, fetched: []int{0}},
	}

	for _, test := range cases {
		t.Run(fmt.Sprint(test.total), func(t *testing.T) {
			site := newFakeSite(t)
			site.transactionsTotal = test.total
			rec := telemetry.NewRecorder()
			client := site.client(rec)

			transactions, err := client.Transactions(context.Background(), site.credential(), testGame)
			require.NoError(t, err)
			require.Len(t, transactions, test.total)
			require.Equal(t, test.fetched, fetchedIndexes(site))

			for n, transaction := range transactions {
				if diff := cmp.Diff(expectedTransaction(n), transaction); diff != "" {
					t.Fatalf("unexpected transaction %d (-want +got)\n%s", n, diff)
				}
			}

			require.Empty(t, rec.Find(telemetry.LevelWarning, report_client_transactions))
			counts := rec.Find(telemetry.LevelCount, report_client_transactions)
			require.Len(t, counts, 1)
			require.Equal(t, int64(test.total), counts[0].Count)
		})
	}
}

func TestTransactionsTimes(t *testing.T) {
	site := newFakeSite(t)
	site.transactionsTotal = 1
	client := site.client(telemetry.NewRecorder())

	transactions, err := client.Transactions(context.Background(), site.credential(), testGame)
	require.NoError(t, err)
	require.Len(t, transactions, 1)

	executed := transactions[0].ExecutionTime
	require.Equal(t, chrono.Eastern().String(), executed.Location().String())
	require.Equal(t, 16, executed.Hour())
	require.Equal(t, time.Date(2013, time.July, 1, 20, 0, 0, 0, time.UTC), executed.UTC())
}

func TestTransactionsWithoutPagination(t *testing.T) {
	site := newFakeSite(t)
	site.transactionsTotal = 4
	site.hidePagination = true
	rec := telemetry.NewRecorder()
	client := site.client(rec)

	transactions, err := client.Transactions(context.Background(), site.credential(), testGame)
	require.NoError(t, err)
	require.Len(t, transactions, 4)
	require.Equal(t, []int{0}, fetchedIndexes(site))
	require.Len(t, rec.Find(telemetry.LevelWarning, report_client_transactions), 1)
}

func TestParseTransactionTotal(t *testing.T) {
	cases := []struct {
		name     string
		href     string
		expected int
		fails    bool
	}{
		{name: "count", href: "/history?partial=true&count=37&sort=TransactionDate", expected: 37},
		{name: "zero", href: "/history?partial=true&count=0", expected: 0},
		{name: "single parameter", href: "/history?count=37", fails: true},
		{name: "not a number", href: "/history?partial=true&count=many", fails: true},
		{name: "negative", href: "/history?partial=true&count=-3", fails: true},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			page := fmt.Sprintf(`<a class="fakebutton" href="%s">more</a>`, test.href)
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
			require.NoError(t, err)

			total, err := parseTransactionTotal(doc)
			if test.fails {
				require.True(t, errors.Is(err, ErrExtraction), err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.expected, total)
		})
	}
}

func TestParseTransactionsMalformed(t *testing.T) {
	header := "<table><tr><th>Symbol</th></tr>"
	cases := []struct {
		name  string
		row   string
		field string
	}{
		{
			name:  "missing cells",
			row:   "<tr><td>AAPL</td><td>7/1/2013 3:59 PM</td></tr>",
			field: "td",
		},
		{
			name:  "bad time",
			row:   "<tr><td>AAPL</td><td>yesterday</td><td>7/1/2013 4:00 PM</td><td>Buy</td><td>10</td><td>$1.00</td></tr>",
			field: "order time",
		},
		{
			name:  "unknown type",
			row:   "<tr><td>AAPL</td><td>7/1/2013 3:59 PM</td><td>7/1/2013 4:00 PM</td><td>Gift</td><td>10</td><td>$1.00</td></tr>",
			field: "type",
		},
		{
			name:  "negative price",
			row:   "<tr><td>AAPL</td><td>7/1/2013 3:59 PM</td><td>7/1/2013 4:00 PM</td><td>Buy</td><td>10</td><td>($1.00)</td></tr>",
			field: "price",
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(header + test.row + "</table>"))
			require.NoError(t, err)

			transactions, err := parseTransactions(doc, 20)
			require.Nil(t, transactions)

			var extractionErr *ExtractionError
			require.True(t, errors.As(err, &extractionErr), err)
			require.Equal(t, test.field, extractionErr.Field)
			require.Equal(t, 20, extractionErr.Row)
		})
	}
}

func TestTransactionsBrokenPage(t *testing.T) {
	site := newFakeSite(t)
	site.transactionsTotal = 5
	rec := telemetry.NewRecorder()
	client := site.client(rec)

	_, err := client.Transactions(context.Background(), Credential{}, testGame)
	require.True(t, errors.Is(err, ErrUnexpectedStatus))
	require.Len(t, rec.Find(telemetry.LevelBroken, report_client_transactions), 1)
}
