package portfolio

import (
	"context"
	"math/rand"

	"github.com/bobmcallan/tradedesk/internal/common"
	"github.com/bobmcallan/tradedesk/internal/interfaces"
	"github.com/bobmcallan/tradedesk/internal/models"
)

// Service resolves prices for ledger symbols and runs the engine over
// them. Quote failures are isolated per symbol: one bad symbol never
// poisons the batch.
type Service struct {
	market interfaces.MarketDataClient
	logger *common.Logger

	// jitter supplies the random factor for synthesized previous closes.
	// Injectable so tests can pin day-change figures.
	jitter func() float64
}

// NewService creates a portfolio service.
func NewService(market interfaces.MarketDataClient, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		market: market,
		logger: logger,
		jitter: rand.Float64,
	}
}

// WithJitterSource replaces the randomness source for synthesized
// previous closes.
func (s *Service) WithJitterSource(fn func() float64) *Service {
	s.jitter = fn
	return s
}

// syntheticPrevClose fabricates a previous close within ±2% of price
// when the provider omits one. A placeholder for missing data, not a
// real value.
func (s *Service) syntheticPrevClose(price float64) float64 {
	return price * (0.98 + s.jitter()*0.04)
}

// lastCompletedOrder returns the most recent completed order for the
// stock, or nil.
func lastCompletedOrder(stock string, orders []models.Order) *models.Order {
	var last *models.Order
	for i := range orders {
		o := &orders[i]
		if o.Stock != stock || !o.IsCompleted() {
			continue
		}
		if last == nil || o.CreatedAt.After(last.CreatedAt) {
			last = o
		}
	}
	return last
}

// FetchPrices resolves current and previous-close prices for every
// distinct symbol in the ledger. Resolution order per symbol: provider
// quote, then the last completed order price, else the symbol is
// omitted from both maps.
func (s *Service) FetchPrices(ctx context.Context, entries []models.LedgerEntry, orders []models.Order) (current, previous PriceMap) {
	current = make(PriceMap)
	previous = make(PriceMap)

	seen := make(map[string]bool)
	for _, entry := range entries {
		stock := entry.Stock
		if stock == "" || seen[stock] {
			continue
		}
		seen[stock] = true

		quote, err := s.market.Quote(ctx, stock)
		if err == nil && quote.Price > 0 {
			current[stock] = quote.Price
			if quote.PreviousClose > 0 {
				previous[stock] = quote.PreviousClose
			} else {
				previous[stock] = s.syntheticPrevClose(quote.Price)
			}
			continue
		}
		if err != nil {
			s.logger.Warn().Err(err).Str("stock", stock).Msg("Quote fetch failed, trying order fallback")
		}

		if last := lastCompletedOrder(stock, orders); last != nil && last.Price > 0 {
			current[stock] = last.Price
			previous[stock] = s.syntheticPrevClose(last.Price)
			continue
		}

		s.logger.Warn().Str("stock", stock).Msg("No price resolvable for stock")
	}

	return current, previous
}

// Snapshot fetches prices and computes the full portfolio in one pass.
func (s *Service) Snapshot(ctx context.Context, entries []models.LedgerEntry, orders []models.Order) ([]models.Holding, models.PortfolioTotals) {
	current, previous := s.FetchPrices(ctx, entries, orders)
	holdings := ComputeHoldings(entries, orders, current, previous)
	return holdings, ComputeTotals(holdings)
}
