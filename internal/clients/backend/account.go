package backend

import (
	"context"
	"fmt"

	"github.com/bobmcallan/tradedesk/internal/models"
)

// Holdings retrieves the per-stock buy/sell aggregates.
func (c *Client) Holdings(ctx context.Context) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := c.get(ctx, "/api/holdings", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Orders retrieves the user's order history.
func (c *Client) Orders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.get(ctx, "/api/orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// PlaceOrder submits a buy or sell order.
func (c *Client) PlaceOrder(ctx context.Context, req *models.OrderRequest) error {
	if req.Quantity <= 0 {
		return fmt.Errorf("order quantity must be positive: %w", ErrValidation)
	}
	if req.Side != models.OrderSideBuy && req.Side != models.OrderSideSell {
		return fmt.Errorf("order side must be %q or %q: %w", models.OrderSideBuy, models.OrderSideSell, ErrValidation)
	}
	return c.post(ctx, "/api/orders", req, nil)
}

// Wallet retrieves the wallet balance.
func (c *Client) Wallet(ctx context.Context) (*models.Wallet, error) {
	var w models.Wallet
	if err := c.get(ctx, "/api/wallet", &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// Deposit adds funds to the wallet.
func (c *Client) Deposit(ctx context.Context, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("deposit amount must be positive: %w", ErrValidation)
	}
	return c.post(ctx, "/api/funds/deposit", &models.FundsRequest{Amount: amount}, nil)
}

// Withdraw removes funds from the wallet.
func (c *Client) Withdraw(ctx context.Context, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("withdrawal amount must be positive: %w", ErrValidation)
	}
	return c.post(ctx, "/api/funds/withdraw", &models.FundsRequest{Amount: amount}, nil)
}

// FundsTransactions retrieves the deposit/withdrawal history.
func (c *Client) FundsTransactions(ctx context.Context) ([]models.FundsTransaction, error) {
	var resp models.FundsTransactionsResponse
	if err := c.get(ctx, "/api/funds/transactions", &resp); err != nil {
		return nil, err
	}
	return resp.Transactions, nil
}

// Watchlist retrieves the user's watched symbols.
func (c *Client) Watchlist(ctx context.Context) ([]string, error) {
	var symbols []string
	if err := c.get(ctx, "/api/watchlist", &symbols); err != nil {
		return nil, err
	}
	return symbols, nil
}

type watchlistRequest struct {
	Symbol string `json:"symbol"`
}

// AddToWatchlist adds a symbol to the watchlist.
func (c *Client) AddToWatchlist(ctx context.Context, symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol is required: %w", ErrValidation)
	}
	return c.post(ctx, "/api/watchlist/add", &watchlistRequest{Symbol: symbol}, nil)
}

// RemoveFromWatchlist removes a symbol from the watchlist.
func (c *Client) RemoveFromWatchlist(ctx context.Context, symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol is required: %w", ErrValidation)
	}
	return c.post(ctx, "/api/watchlist/remove", &watchlistRequest{Symbol: symbol}, nil)
}
