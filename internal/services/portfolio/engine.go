// Package portfolio implements the aggregation engine that turns the
// backend ledger and provider quotes into positions, totals, and the
// funds summary. All computation here is pure: the same inputs always
// produce the same outputs.
package portfolio

import (
	"sort"

	"github.com/bobmcallan/tradedesk/internal/models"
)

// PriceMap maps a symbol to a price. Symbols with no resolvable price
// are absent from the map.
type PriceMap map[string]float64

// ComputeHoldings derives open positions from ledger aggregates and
// prices. Entries with net quantity <= 0 are excluded. Average buy
// price is buy-side only: cumulative buy cost over cumulative buy
// quantity, unadjusted for partial sells.
func ComputeHoldings(entries []models.LedgerEntry, orders []models.Order, current, previous PriceMap) []models.Holding {
	holdings := make([]models.Holding, 0, len(entries))

	for _, entry := range entries {
		netQty := entry.BuyQty - entry.SellQty
		if netQty <= 0 {
			continue
		}

		avgPrice := 0.0
		if entry.BuyQty > 0 {
			avgPrice = entry.BuyCost / entry.BuyQty
		}

		currentPrice := current[entry.Stock]
		prevPrice := previous[entry.Stock]

		dayChangePct := 0.0
		if prevPrice > 0 {
			dayChangePct = (currentPrice - prevPrice) / prevPrice * 100
		}

		holdings = append(holdings, models.Holding{
			Stock:          entry.Stock,
			Quantity:       netQty,
			AvgPrice:       avgPrice,
			CurrentPrice:   currentPrice,
			MarketValue:    currentPrice * netQty,
			PnL:            (currentPrice - avgPrice) * netQty,
			DayPnL:         (currentPrice - prevPrice) * netQty,
			DayChangePct:   dayChangePct,
			AmountInvested: avgPrice * netQty,
			Orders:         completedOrdersFor(entry.Stock, orders),
		})
	}

	return holdings
}

// completedOrdersFor returns the stock's completed orders, newest first.
func completedOrdersFor(stock string, orders []models.Order) []models.Order {
	var matched []models.Order
	for _, o := range orders {
		if o.Stock == stock && o.IsCompleted() {
			matched = append(matched, o)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched
}

// ComputeTotals sums the portfolio across open positions.
func ComputeTotals(holdings []models.Holding) models.PortfolioTotals {
	totals := models.PortfolioTotals{Stocks: len(holdings)}
	for _, h := range holdings {
		totals.MarketValue += h.MarketValue
		totals.PnL += h.PnL
		totals.DayPnL += h.DayPnL
		totals.AmountInvested += h.AmountInvested
	}
	if totals.AmountInvested > 0 {
		totals.PnLPct = totals.PnL / totals.AmountInvested * 100
	}
	return totals
}

// ComputeFundsSummary derives the funds view. Opening balance is the
// running net of deposits minus withdrawals; used margin is the capital
// tied up in open positions at average buy price; available balance is
// the wallet minus used margin, floored at zero.
func ComputeFundsSummary(walletBalance float64, transactions []models.FundsTransaction, entries []models.LedgerEntry) models.FundsSummary {
	opening := 0.0
	for _, txn := range transactions {
		switch txn.Type {
		case models.FundsDeposit:
			opening += txn.Amount
		case models.FundsWithdraw:
			opening -= txn.Amount
		}
	}

	usedMargin := 0.0
	for _, entry := range entries {
		netQty := entry.BuyQty - entry.SellQty
		if netQty <= 0 {
			continue
		}
		avgPrice := 0.0
		if entry.BuyQty > 0 {
			avgPrice = entry.BuyCost / entry.BuyQty
		}
		usedMargin += avgPrice * netQty
	}

	available := walletBalance - usedMargin
	if available < 0 {
		available = 0
	}

	return models.FundsSummary{
		WalletBalance:    walletBalance,
		OpeningBalance:   opening,
		UsedMargin:       usedMargin,
		AvailableBalance: available,
	}
}
