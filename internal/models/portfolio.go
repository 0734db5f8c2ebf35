package models

// LedgerEntry is a per-stock buy/sell aggregate as the backend stores it.
// The backend sums order quantities and costs; position math happens
// client-side in the portfolio engine.
type LedgerEntry struct {
	ID       string  `json:"_id"`
	Stock    string  `json:"stock"`
	BuyQty   float64 `json:"buyQty"`
	SellQty  float64 `json:"sellQty"`
	BuyCost  float64 `json:"buyCost"`  // total cost across all buys
	SellCost float64 `json:"sellCost"` // total proceeds across all sells
}

// Holding is a computed open position.
type Holding struct {
	Stock          string  `json:"stock"`
	Quantity       float64 `json:"quantity"` // net quantity held
	AvgPrice       float64 `json:"avgPrice"`
	CurrentPrice   float64 `json:"currentPrice"`
	PnL            float64 `json:"pnl"`
	DayPnL         float64 `json:"oneDayPnl"`
	DayChangePct   float64 `json:"dayChangePercent"`
	MarketValue    float64 `json:"marketValue"`
	AmountInvested float64 `json:"amountInvested"`
	Orders         []Order `json:"orders,omitempty"` // completed orders, newest first
}

// PortfolioTotals summarizes all open positions.
type PortfolioTotals struct {
	Stocks         int     `json:"totalNumberOfStocks"`
	MarketValue    float64 `json:"totalMarketValue"`
	PnL            float64 `json:"totalPnl"`
	PnLPct         float64 `json:"totalPnlPercentage"`
	DayPnL         float64 `json:"totalOneDayPnl"`
	AmountInvested float64 `json:"totalAmountInvested"`
}

// FundsSummary is the account funds view derived from the wallet,
// fund transactions, and open positions.
type FundsSummary struct {
	WalletBalance    float64 `json:"walletBalance"`
	OpeningBalance   float64 `json:"openingBalance"`   // net deposits minus withdrawals
	UsedMargin       float64 `json:"usedMargin"`       // capital tied up in open positions
	AvailableBalance float64 `json:"availableBalance"` // wallet minus used margin, floored at 0
}
