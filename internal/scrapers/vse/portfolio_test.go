package vse

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"vse-client/internal/components/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestPortfolio(t *testing.T) {
	site := newFakeSite(t)
	client := site.client(telemetry.NewRecorder())

	portfolio, err := client.Portfolio(context.Background(), site.credential(), testGame)
	require.NoError(t, err)

	expected := Portfolio{
		Time:            time.Date(2013, time.January, 15, 17, 30, 0, 0, time.UTC),
		Cash:            decimal.RequireFromString("612345.67"),
		Leverage:        decimal.Zero,
		NetWorth:        decimal.RequireFromString("1012345.67"),
		PurchasingPower: decimal.NewFromInt(1500000),
		StartingCash:    decimal.NewFromInt(1000000),
		Return:          decimal.RequireFromString("12345.67"),
	}
	if diff := cmp.Diff(expected, portfolio); diff != "" {
		t.Fatal("unexpected portfolio (-want +got)\n", diff)
	}
	require.Equal(t, time.UTC, portfolio.Time.Location())
}

func TestPortfolioNegativeReturn(t *testing.T) {
	site := newFakeSite(t)
	site.portfolioPage = strings.Replace(portfolioFixture, "$12,345.67", "($2,000.00)", 1)
	client := site.client(telemetry.NewRecorder())

	portfolio, err := client.Portfolio(context.Background(), site.credential(), testGame)
	require.NoError(t, err)
	require.True(t, portfolio.Return.Equal(decimal.NewFromInt(-2000)), portfolio.Return.String())
}

func TestPortfolioMalformed(t *testing.T) {
	cases := []struct {
		name  string
		page  string
		field string
	}{
		{
			name:  "missing field",
			page:  strings.Replace(portfolioFixture, "Net Worth", "Something Else", 1),
			field: "net worth",
		},
		{
			name:  "negative cash",
			page:  strings.Replace(portfolioFixture, "$ 612,345.67", "-5.00", 1),
			field: "cash",
		},
		{
			name:  "unreadable value",
			page:  strings.Replace(portfolioFixture, "$1,000,000.00", "n/a", 1),
			field: "starting cash",
		},
		{
			name:  "no summary",
			page:  "<div></div>",
			field: "cash",
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			site := newFakeSite(t)
			site.portfolioPage = test.page
			rec := telemetry.NewRecorder()
			client := site.client(rec)

			_, err := client.Portfolio(context.Background(), site.credential(), testGame)
			require.True(t, errors.Is(err, ErrExtraction), err)

			var extractionErr *ExtractionError
			require.True(t, errors.As(err, &extractionErr))
			require.Equal(t, test.field, extractionErr.Field)
			require.Len(t, rec.Find(telemetry.LevelBroken, report_client_portfolio), 1)
		})
	}
}
