package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bobmcallan/tradedesk/internal/app"
	"github.com/bobmcallan/tradedesk/internal/common"
	"github.com/bobmcallan/tradedesk/internal/models"
)

// Delegate to common format helpers
func formatPrice(v float64) string       { return common.FormatMoney(v) }
func formatSignedMoney(v float64) string { return common.FormatSignedMoney(v) }
func formatSignedPct(v float64) string   { return common.FormatSignedPct(v) }

// formatHoldings renders open positions as a markdown table.
func formatHoldings(holdings []models.Holding, totals models.PortfolioTotals) string {
	var sb strings.Builder

	sb.WriteString("# Holdings\n\n")
	if len(holdings) == 0 {
		sb.WriteString("No open positions.\n")
		return sb.String()
	}

	sorted := make([]models.Holding, len(holdings))
	copy(sorted, holdings)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Stock < sorted[j].Stock
	})

	sb.WriteString("| Symbol | Qty | Avg Price | Price | Value | Invested | P&L | Day P&L | Day % |\n")
	sb.WriteString("|--------|-----|-----------|-------|-------|----------|-----|---------|-------|\n")
	for _, h := range sorted {
		sb.WriteString(fmt.Sprintf("| %s | %.0f | %s | %s | %s | %s | %s | %s | %s |\n",
			h.Stock, h.Quantity,
			formatPrice(h.AvgPrice), formatPrice(h.CurrentPrice),
			formatPrice(h.MarketValue), formatPrice(h.AmountInvested),
			formatSignedMoney(h.PnL), formatSignedMoney(h.DayPnL),
			formatSignedPct(h.DayChangePct),
		))
	}

	sb.WriteString(fmt.Sprintf("\n**Total:** %d stocks | Value %s | Invested %s | P&L %s (%s) | Day %s\n",
		totals.Stocks,
		formatPrice(totals.MarketValue), formatPrice(totals.AmountInvested),
		formatSignedMoney(totals.PnL), formatSignedPct(totals.PnLPct),
		formatSignedMoney(totals.DayPnL)))

	return sb.String()
}

// formatOrders groups orders by status, newest first within each group.
func formatOrders(orders []models.Order) string {
	var sb strings.Builder
	sb.WriteString("# Orders\n\n")
	if len(orders) == 0 {
		sb.WriteString("No orders.\n")
		return sb.String()
	}

	groups := map[string][]models.Order{}
	for _, o := range orders {
		groups[o.Status] = append(groups[o.Status], o)
	}

	order := []string{models.OrderStatusCompleted, models.OrderStatusPending}
	var rest []string
	for status := range groups {
		if status != models.OrderStatusCompleted && status != models.OrderStatusPending {
			rest = append(rest, status)
		}
	}
	sort.Strings(rest)
	order = append(order, rest...)

	for _, status := range order {
		batch := groups[status]
		if len(batch) == 0 {
			continue
		}
		sort.SliceStable(batch, func(i, j int) bool {
			return batch[i].CreatedAt.After(batch[j].CreatedAt)
		})

		sb.WriteString(fmt.Sprintf("## %s (%d)\n\n", strings.ToUpper(status), len(batch)))
		sb.WriteString("| Date | Symbol | Side | Qty | Price | Type |\n")
		sb.WriteString("|------|--------|------|-----|-------|------|\n")
		for _, o := range batch {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.0f | %s | %s |\n",
				o.CreatedAt.Format("2006-01-02 15:04"), o.Stock,
				strings.ToUpper(o.Side), o.Quantity, formatPrice(o.Price), o.OrderType))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatFunds renders the funds summary and statement.
func formatFunds(summary models.FundsSummary, txns []models.FundsTransaction) string {
	var sb strings.Builder

	sb.WriteString("# Funds\n\n")
	sb.WriteString(fmt.Sprintf("**Wallet Balance:** %s\n", formatPrice(summary.WalletBalance)))
	sb.WriteString(fmt.Sprintf("**Opening Balance:** %s\n", formatPrice(summary.OpeningBalance)))
	sb.WriteString(fmt.Sprintf("**Used Margin:** %s\n", formatPrice(summary.UsedMargin)))
	sb.WriteString(fmt.Sprintf("**Available Balance:** %s\n", formatPrice(summary.AvailableBalance)))

	if len(txns) > 0 {
		sorted := make([]models.FundsTransaction, len(txns))
		copy(sorted, txns)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		})

		sb.WriteString("\n## Statement\n\n")
		sb.WriteString("| Date | Type | Amount |\n")
		sb.WriteString("|------|------|--------|\n")
		for _, txn := range sorted {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
				txn.CreatedAt.Format("2006-01-02 15:04"), txn.Type, formatPrice(txn.Amount)))
		}
	}

	return sb.String()
}

// formatQuote renders a one-symbol quote summary.
func formatQuote(q *models.Quote) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s — %s\n\n", q.Symbol, q.Name))
	sb.WriteString(fmt.Sprintf("**Price:** %s (%s, %s)\n",
		formatPrice(q.Price), formatSignedMoney(q.Change), formatSignedPct(q.ChangePct)))
	sb.WriteString(fmt.Sprintf("**Exchange:** %s\n", q.Exchange))
	return sb.String()
}

// formatStockDetail renders the full quote with recent history.
func formatStockDetail(q *models.Quote, bars []models.Bar, watched bool) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s — %s\n\n", q.Symbol, q.Name))
	if watched {
		sb.WriteString("_On your watchlist_\n\n")
	}
	sb.WriteString(fmt.Sprintf("**Price:** %s (%s, %s)\n\n",
		formatPrice(q.Price), formatSignedMoney(q.Change), formatSignedPct(q.ChangePct)))

	sb.WriteString("| | |\n|---|---|\n")
	sb.WriteString(fmt.Sprintf("| Open | %s |\n", formatPrice(q.Open)))
	sb.WriteString(fmt.Sprintf("| Previous Close | %s |\n", formatPrice(q.PreviousClose)))
	sb.WriteString(fmt.Sprintf("| Day Range | %s – %s |\n", formatPrice(q.DayLow), formatPrice(q.DayHigh)))
	sb.WriteString(fmt.Sprintf("| 52-Week Range | %s – %s |\n", formatPrice(q.YearLow), formatPrice(q.YearHigh)))
	sb.WriteString(fmt.Sprintf("| Volume | %.0f |\n", q.Volume))
	sb.WriteString(fmt.Sprintf("| Market Cap | %s |\n", formatMarketCap(q.MarketCap)))

	if len(bars) > 0 {
		sb.WriteString(fmt.Sprintf("\n## Last %d Days\n\n", len(bars)))
		sb.WriteString("| Date | Close |\n|------|-------|\n")
		for _, b := range bars {
			sb.WriteString(fmt.Sprintf("| %s | %s |\n", b.Date.Format("2006-01-02"), formatPrice(b.Close)))
		}
	}

	return sb.String()
}

func formatMarketCap(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("$%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	default:
		return formatPrice(v)
	}
}

// formatWatchlist renders watched symbols with quotes where available.
func formatWatchlist(symbols []string, quotes []models.Quote) string {
	var sb strings.Builder
	sb.WriteString("# Watchlist\n\n")
	if len(symbols) == 0 {
		sb.WriteString("Watchlist is empty.\n")
		return sb.String()
	}

	bySymbol := map[string]models.Quote{}
	for _, q := range quotes {
		bySymbol[q.Symbol] = q
	}

	sb.WriteString("| Symbol | Price | Change | Change % |\n")
	sb.WriteString("|--------|-------|--------|----------|\n")
	for _, s := range symbols {
		if q, ok := bySymbol[s]; ok {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				s, formatPrice(q.Price), formatSignedMoney(q.Change), formatSignedPct(q.ChangePct)))
		} else {
			sb.WriteString(fmt.Sprintf("| %s | - | - | - |\n", s))
		}
	}
	return sb.String()
}

// formatIPOs renders live IPO listings.
func formatIPOs(bids []models.IPOBid) string {
	var sb strings.Builder
	sb.WriteString("# Live IPOs\n\n")
	if len(bids) == 0 {
		sb.WriteString("No live IPOs.\n")
		return sb.String()
	}

	sb.WriteString("| Company | Symbol | Price Band | Opens | Closes |\n")
	sb.WriteString("|---------|--------|------------|-------|--------|\n")
	for _, b := range bids {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s – %s | %s | %s |\n",
			b.Company, b.Symbol,
			formatPrice(b.PriceLow), formatPrice(b.PriceHigh),
			b.OpenDate.Format("2006-01-02"), b.CloseDate.Format("2006-01-02")))
	}
	return sb.String()
}

// formatSecurity renders 2FA status, sessions, and recent activity.
func formatSecurity(s models.SecuritySettings) string {
	var sb strings.Builder

	sb.WriteString("# Security\n\n")
	if s.TwoFAEnabled {
		sb.WriteString("**Two-factor authentication:** enabled\n")
	} else {
		sb.WriteString("**Two-factor authentication:** disabled\n")
	}

	if len(s.ActiveSessions) > 0 {
		sb.WriteString("\n## Active Sessions\n\n")
		sb.WriteString("| Device | IP | Last Active |\n")
		sb.WriteString("|--------|----|-------------|\n")
		for _, sess := range s.ActiveSessions {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
				sess.Device, sess.IP, sess.LastActive.Format("2006-01-02 15:04")))
		}
	}

	if len(s.RecentActivity) > 0 {
		sb.WriteString("\n## Recent Activity\n\n")
		sb.WriteString("| Time | Event | IP | Device | Status |\n")
		sb.WriteString("|------|-------|----|--------|--------|\n")
		for _, a := range s.RecentActivity {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
				a.Timestamp.Format("2006-01-02 15:04"), a.Type, a.IP, a.Device, a.Status))
		}
	}

	return sb.String()
}

// formatFeedStatus renders the watch-mode footer: one entry per feed
// with its last refresh time, tagged stale past the feed's TTL.
func formatFeedStatus(snap app.Snapshot) string {
	part := func(label string, ts time.Time, ttl time.Duration) string {
		if ts.IsZero() {
			return label + " pending"
		}
		out := label + " " + ts.Format("15:04:05")
		if !common.IsFresh(ts, ttl) {
			out += " (stale)"
		}
		return out
	}
	return fmt.Sprintf("%s | %s | %s",
		part("Ledger", snap.LedgerUpdated, common.FreshnessLedger),
		part("Quotes", snap.QuotesUpdated, common.FreshnessQuotes),
		part("Security", snap.SecurityUpdated, common.FreshnessSecurity))
}

// formatDashboard renders the equity overview with top positions.
func formatDashboard(holdings []models.Holding, totals models.PortfolioTotals, funds models.FundsSummary) string {
	var sb strings.Builder

	sb.WriteString("# Dashboard\n\n")
	sb.WriteString(fmt.Sprintf("**Equity:** %s | **P&L:** %s (%s) | **Day:** %s\n",
		formatPrice(totals.MarketValue),
		formatSignedMoney(totals.PnL), formatSignedPct(totals.PnLPct),
		formatSignedMoney(totals.DayPnL)))
	sb.WriteString(fmt.Sprintf("**Available Margin:** %s | **Used Margin:** %s\n",
		formatPrice(funds.AvailableBalance), formatPrice(funds.UsedMargin)))

	if len(holdings) > 0 {
		top := make([]models.Holding, len(holdings))
		copy(top, holdings)
		sort.Slice(top, func(i, j int) bool {
			return top[i].MarketValue > top[j].MarketValue
		})
		if len(top) > 5 {
			top = top[:5]
		}

		sb.WriteString("\n## Top Positions\n\n")
		sb.WriteString("| Symbol | Value | P&L | Day % |\n")
		sb.WriteString("|--------|-------|-----|-------|\n")
		for _, h := range top {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				h.Stock, formatPrice(h.MarketValue),
				formatSignedMoney(h.PnL), formatSignedPct(h.DayChangePct)))
		}
	}

	return sb.String()
}
