package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/tradedesk/internal/app"
	"github.com/bobmcallan/tradedesk/internal/models"
)

func TestFormatHoldingsEmpty(t *testing.T) {
	out := formatHoldings(nil, models.PortfolioTotals{})
	assert.Contains(t, out, "No open positions")
}

func TestFormatHoldingsTable(t *testing.T) {
	holdings := []models.Holding{
		{Stock: "MSFT", Quantity: 5, AvgPrice: 300, CurrentPrice: 310, MarketValue: 1550, AmountInvested: 1500, PnL: 50, DayPnL: 10, DayChangePct: 0.65},
		{Stock: "AAPL", Quantity: 10, AvgPrice: 150, CurrentPrice: 160, MarketValue: 1600, AmountInvested: 1500, PnL: 100, DayPnL: -20, DayChangePct: -1.23},
	}
	totals := models.PortfolioTotals{Stocks: 2, MarketValue: 3150, AmountInvested: 3000, PnL: 150, DayPnL: -10}

	out := formatHoldings(holdings, totals)

	assert.Contains(t, out, "| AAPL | 10 | $150.00 | $160.00 |")
	assert.Contains(t, out, "+$100.00")
	assert.Contains(t, out, "-1.23%")
	assert.Contains(t, out, "**Total:** 2 stocks")

	// Rows are sorted by symbol
	assert.Less(t, strings.Index(out, "AAPL"), strings.Index(out, "MSFT"))
}

func TestFormatOrdersGrouping(t *testing.T) {
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	orders := []models.Order{
		{Stock: "AAPL", Side: models.OrderSideBuy, Quantity: 5, Price: 150, OrderType: models.OrderTypeMarket, Status: models.OrderStatusCompleted, CreatedAt: base},
		{Stock: "TSLA", Side: models.OrderSideSell, Quantity: 2, Price: 250, OrderType: models.OrderTypeLimit, Status: models.OrderStatusPending, CreatedAt: base.Add(time.Hour)},
		{Stock: "MSFT", Side: models.OrderSideBuy, Quantity: 3, Price: 300, OrderType: models.OrderTypeMarket, Status: models.OrderStatusCompleted, CreatedAt: base.Add(2 * time.Hour)},
	}

	out := formatOrders(orders)

	assert.Contains(t, out, "## COMPLETED (2)")
	assert.Contains(t, out, "## PENDING (1)")
	// Completed group comes before pending, newest first within a group
	assert.Less(t, strings.Index(out, "COMPLETED"), strings.Index(out, "PENDING"))
	assert.Less(t, strings.Index(out, "MSFT"), strings.Index(out, "AAPL"))
}

func TestFormatFundsStatement(t *testing.T) {
	summary := models.FundsSummary{
		WalletBalance:    5000,
		OpeningBalance:   6000,
		UsedMargin:       1000,
		AvailableBalance: 4000,
	}
	txns := []models.FundsTransaction{
		{Type: models.FundsDeposit, Amount: 6000, CreatedAt: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)},
		{Type: models.FundsWithdraw, Amount: 1000, CreatedAt: time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)},
	}

	out := formatFunds(summary, txns)

	assert.Contains(t, out, "**Wallet Balance:** $5,000.00")
	assert.Contains(t, out, "**Available Balance:** $4,000.00")
	assert.Contains(t, out, "## Statement")
	// Newest transaction first
	assert.Less(t, strings.Index(out, "withdraw"), strings.Index(out, "deposit"))
}

func TestFormatWatchlistMissingQuote(t *testing.T) {
	symbols := []string{"AAPL", "NVDA"}
	quotes := []models.Quote{{Symbol: "AAPL", Price: 160, Change: 2, ChangePct: 1.26}}

	out := formatWatchlist(symbols, quotes)

	assert.Contains(t, out, "| AAPL | $160.00 |")
	assert.Contains(t, out, "| NVDA | - | - | - |")
}

func TestFormatStockDetailWatched(t *testing.T) {
	q := &models.Quote{
		Symbol: "AAPL", Name: "Apple Inc.", Price: 160, PreviousClose: 158,
		Open: 159, DayLow: 157, DayHigh: 161, YearLow: 120, YearHigh: 180,
		Volume: 1_000_000, MarketCap: 2.5e12,
	}
	bars := []models.Bar{
		{Date: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), Close: 158},
		{Date: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), Close: 160},
	}

	out := formatStockDetail(q, bars, true)

	assert.Contains(t, out, "_On your watchlist_")
	assert.Contains(t, out, "$2.50T")
	assert.Contains(t, out, "## Last 2 Days")
}

func TestFormatMarketCapScales(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{3.1e12, "$3.10T"},
		{4.5e9, "$4.50B"},
		{7.2e6, "$7.20M"},
		{950_000, "$950,000.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMarketCap(tt.value))
	}
}

func TestFormatDashboardTopPositions(t *testing.T) {
	holdings := make([]models.Holding, 7)
	for i := range holdings {
		holdings[i] = models.Holding{
			Stock:       string(rune('A' + i)),
			MarketValue: float64((i + 1) * 100),
		}
	}
	totals := models.PortfolioTotals{MarketValue: 2800, PnL: 100, DayPnL: 5}
	funds := models.FundsSummary{AvailableBalance: 500, UsedMargin: 2500}

	out := formatDashboard(holdings, totals, funds)

	assert.Contains(t, out, "## Top Positions")
	// Only the five largest positions are listed
	assert.NotContains(t, out, "| A |")
	assert.NotContains(t, out, "| B |")
	assert.Contains(t, out, "| G | $700.00 |")
}

func TestFormatFeedStatus(t *testing.T) {
	now := time.Now()
	snap := app.Snapshot{
		LedgerUpdated: now.Add(-10 * time.Minute), // past the 2m ledger TTL
		QuotesUpdated: now,
		// SecurityUpdated zero: feed not yet fetched
	}

	out := formatFeedStatus(snap)

	assert.Contains(t, out, "Ledger "+snap.LedgerUpdated.Format("15:04:05")+" (stale)")
	assert.Contains(t, out, "Quotes "+now.Format("15:04:05"))
	assert.NotContains(t, out, "Quotes "+now.Format("15:04:05")+" (stale)")
	assert.Contains(t, out, "Security pending")
}

func TestParseAmount(t *testing.T) {
	valid := map[string]float64{
		"100":    100,
		"99.50":  99.5,
		".5":     0.5,
		"0.01":   0.01,
		"12345.": 12345,
	}
	for in, want := range valid {
		got, err := parseAmount(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", ".", "-5", "1e3", "1,000", "abc", "0", "1.2.3"} {
		_, err := parseAmount(in)
		assert.Error(t, err, in)
	}
}
