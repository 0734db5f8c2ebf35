// Package interfaces defines client and service contracts for TradeDesk
package interfaces

import (
	"context"

	"github.com/bobmcallan/tradedesk/internal/models"
)

// BackendClient provides access to the trading backend REST API.
// All authenticated operations read the session from the context.
type BackendClient interface {
	// Login exchanges credentials for a bearer token
	Login(ctx context.Context, email, password string) (string, error)

	// Signup creates a new account
	Signup(ctx context.Context, req *models.SignupRequest) error

	// Holdings retrieves the per-stock buy/sell aggregates
	Holdings(ctx context.Context) ([]models.LedgerEntry, error)

	// Orders retrieves the user's order history
	Orders(ctx context.Context) ([]models.Order, error)

	// PlaceOrder submits a buy or sell order
	PlaceOrder(ctx context.Context, req *models.OrderRequest) error

	// Wallet retrieves the wallet balance
	Wallet(ctx context.Context) (*models.Wallet, error)

	// Deposit adds funds to the wallet
	Deposit(ctx context.Context, amount float64) error

	// Withdraw removes funds from the wallet
	Withdraw(ctx context.Context, amount float64) error

	// FundsTransactions retrieves the deposit/withdrawal history
	FundsTransactions(ctx context.Context) ([]models.FundsTransaction, error)

	// Watchlist retrieves the user's watched symbols
	Watchlist(ctx context.Context) ([]string, error)

	// AddToWatchlist adds a symbol to the watchlist
	AddToWatchlist(ctx context.Context, symbol string) error

	// RemoveFromWatchlist removes a symbol from the watchlist
	RemoveFromWatchlist(ctx context.Context, symbol string) error

	// TwoFAStatus reports whether two-factor auth is enabled
	TwoFAStatus(ctx context.Context) (bool, error)

	// GenerateTwoFA starts 2FA enrollment and returns the QR URL
	GenerateTwoFA(ctx context.Context) (string, error)

	// VerifyTwoFA submits an enrollment code
	VerifyTwoFA(ctx context.Context, code string) (bool, error)

	// DisableTwoFA turns off two-factor auth
	DisableTwoFA(ctx context.Context) error

	// RecentActivity retrieves recent account activity
	RecentActivity(ctx context.Context) ([]models.ActivityEntry, error)

	// ActiveSessions retrieves active device sessions
	ActiveSessions(ctx context.Context) ([]models.ActiveSession, error)

	// LogoutAllSessions revokes every session except the current one
	LogoutAllSessions(ctx context.Context) error

	// ChangePassword updates the account password
	ChangePassword(ctx context.Context, current, updated string) error

	// UpdateSettings applies a partial settings change
	UpdateSettings(ctx context.Context, update *models.SettingsUpdate) error

	// DeactivateAccount suspends the account
	DeactivateAccount(ctx context.Context) error

	// DeleteAccount permanently removes the account
	DeleteAccount(ctx context.Context) error

	// LiveIPOs retrieves the open IPO listings
	LiveIPOs(ctx context.Context) ([]models.IPOBid, error)

	// SubmitSupportTicket files a support request
	SubmitSupportTicket(ctx context.Context, ticket *models.SupportTicket) error
}

// MarketDataClient provides access to the market data provider.
type MarketDataClient interface {
	// Quote retrieves a real-time quote for one symbol
	Quote(ctx context.Context, symbol string) (*models.Quote, error)

	// BatchQuotes retrieves quotes for multiple symbols in one call
	BatchQuotes(ctx context.Context, symbols []string) ([]models.Quote, error)

	// IntradayChart retrieves intraday bars at the given interval ("1hour", "5min")
	IntradayChart(ctx context.Context, interval, symbol string) (*models.PriceHistory, error)

	// DailyHistory retrieves daily bars, oldest first
	DailyHistory(ctx context.Context, symbol string) (*models.PriceHistory, error)
}
