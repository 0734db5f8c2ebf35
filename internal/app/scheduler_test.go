package app

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bobmcallan/tradedesk/internal/common"
	"github.com/bobmcallan/tradedesk/internal/models"
	"github.com/bobmcallan/tradedesk/internal/services/portfolio"
)

// stubBackend implements the backend interface with canned data and
// per-endpoint hooks.
type stubBackend struct {
	mu            sync.Mutex
	holdingsCalls int32
	holdingsDelay time.Duration
	entries       []models.LedgerEntry
	orders        []models.Order
}

func (s *stubBackend) Login(ctx context.Context, email, password string) (string, error) {
	return "tok", nil
}
func (s *stubBackend) Signup(ctx context.Context, req *models.SignupRequest) error { return nil }

func (s *stubBackend) Holdings(ctx context.Context) ([]models.LedgerEntry, error) {
	atomic.AddInt32(&s.holdingsCalls, 1)
	if s.holdingsDelay > 0 {
		select {
		case <-time.After(s.holdingsDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries, nil
}

func (s *stubBackend) Orders(ctx context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders, nil
}
func (s *stubBackend) PlaceOrder(ctx context.Context, req *models.OrderRequest) error { return nil }
func (s *stubBackend) Wallet(ctx context.Context) (*models.Wallet, error) {
	return &models.Wallet{WalletBalance: 1000}, nil
}
func (s *stubBackend) Deposit(ctx context.Context, amount float64) error  { return nil }
func (s *stubBackend) Withdraw(ctx context.Context, amount float64) error { return nil }
func (s *stubBackend) FundsTransactions(ctx context.Context) ([]models.FundsTransaction, error) {
	return []models.FundsTransaction{{Type: models.FundsDeposit, Amount: 1000}}, nil
}
func (s *stubBackend) Watchlist(ctx context.Context) ([]string, error)           { return nil, nil }
func (s *stubBackend) AddToWatchlist(ctx context.Context, symbol string) error   { return nil }
func (s *stubBackend) RemoveFromWatchlist(ctx context.Context, symbol string) error {
	return nil
}
func (s *stubBackend) TwoFAStatus(ctx context.Context) (bool, error)    { return false, nil }
func (s *stubBackend) GenerateTwoFA(ctx context.Context) (string, error) { return "", nil }
func (s *stubBackend) VerifyTwoFA(ctx context.Context, code string) (bool, error) {
	return false, nil
}
func (s *stubBackend) DisableTwoFA(ctx context.Context) error { return nil }
func (s *stubBackend) RecentActivity(ctx context.Context) ([]models.ActivityEntry, error) {
	return nil, nil
}
func (s *stubBackend) ActiveSessions(ctx context.Context) ([]models.ActiveSession, error) {
	return nil, nil
}
func (s *stubBackend) LogoutAllSessions(ctx context.Context) error                  { return nil }
func (s *stubBackend) ChangePassword(ctx context.Context, current, updated string) error {
	return nil
}
func (s *stubBackend) UpdateSettings(ctx context.Context, update *models.SettingsUpdate) error {
	return nil
}
func (s *stubBackend) DeactivateAccount(ctx context.Context) error { return nil }
func (s *stubBackend) DeleteAccount(ctx context.Context) error     { return nil }
func (s *stubBackend) LiveIPOs(ctx context.Context) ([]models.IPOBid, error) {
	return nil, nil
}
func (s *stubBackend) SubmitSupportTicket(ctx context.Context, ticket *models.SupportTicket) error {
	return nil
}

// stubMarket returns a fixed quote for every symbol.
type stubMarket struct{}

func (stubMarket) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	return &models.Quote{Symbol: symbol, Price: 100, PreviousClose: 99}, nil
}
func (stubMarket) BatchQuotes(ctx context.Context, symbols []string) ([]models.Quote, error) {
	return nil, nil
}
func (stubMarket) IntradayChart(ctx context.Context, interval, symbol string) (*models.PriceHistory, error) {
	return &models.PriceHistory{Symbol: symbol}, nil
}
func (stubMarket) DailyHistory(ctx context.Context, symbol string) (*models.PriceHistory, error) {
	return &models.PriceHistory{Symbol: symbol}, nil
}

func testPoller(t *testing.T, backend *stubBackend, intervals string) (*Poller, *State) {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Polling.Ledger = intervals
	cfg.Polling.Quotes = intervals
	cfg.Polling.Security = intervals

	state := NewState()
	pf := portfolio.NewService(stubMarket{}, common.NewSilentLogger())
	return NewPoller(backend, pf, state, cfg, common.NewSilentLogger()), state
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestPoller_ImmediateFirstFetch(t *testing.T) {
	backend := &stubBackend{entries: []models.LedgerEntry{{Stock: "AAPL", BuyQty: 10, BuyCost: 1000}}}
	poller, state := testPoller(t, backend, "1h") // long interval: only the immediate fetch runs

	poller.Start(context.Background())
	defer poller.Stop()

	waitFor(t, 2*time.Second, func() bool {
		snap := state.Snapshot()
		return len(snap.Entries) == 1 && len(snap.Holdings) == 1
	})

	snap := state.Snapshot()
	if snap.Holdings[0].CurrentPrice != 100 {
		t.Errorf("CurrentPrice = %v", snap.Holdings[0].CurrentPrice)
	}
	if snap.Funds.WalletBalance != 1000 {
		t.Errorf("WalletBalance = %v", snap.Funds.WalletBalance)
	}
}

func TestPoller_StopWaitsForInflight(t *testing.T) {
	backend := &stubBackend{
		entries:       []models.LedgerEntry{{Stock: "AAPL", BuyQty: 1, BuyCost: 100}},
		holdingsDelay: 50 * time.Millisecond,
	}
	poller, _ := testPoller(t, backend, "1h")

	poller.Start(context.Background())
	time.Sleep(10 * time.Millisecond) // let the immediate fetches dispatch

	done := make(chan struct{})
	go func() {
		poller.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestPoller_SlowFetchDoesNotPileUp(t *testing.T) {
	backend := &stubBackend{
		entries:       []models.LedgerEntry{{Stock: "AAPL", BuyQty: 1, BuyCost: 100}},
		holdingsDelay: 200 * time.Millisecond,
	}
	poller, _ := testPoller(t, backend, "20ms")

	poller.Start(context.Background())
	time.Sleep(150 * time.Millisecond)
	poller.Stop()

	// Ledger and quotes both hit Holdings once on their immediate
	// fetch; with a 200ms fetch and 20ms ticks, overlapping dispatches
	// must have been skipped rather than stacked.
	calls := atomic.LoadInt32(&backend.holdingsCalls)
	if calls > 4 {
		t.Errorf("Holdings called %d times in 150ms with in-flight fetches; ticks should be skipped", calls)
	}
}

func TestPoller_PicksUpNewData(t *testing.T) {
	backend := &stubBackend{entries: []models.LedgerEntry{{Stock: "AAPL", BuyQty: 10, BuyCost: 1000}}}
	poller, state := testPoller(t, backend, "15ms")

	poller.Start(context.Background())
	defer poller.Stop()

	waitFor(t, 2*time.Second, func() bool { return len(state.Snapshot().Entries) == 1 })

	backend.mu.Lock()
	backend.entries = append(backend.entries, models.LedgerEntry{Stock: "TSLA", BuyQty: 2, BuyCost: 500})
	backend.mu.Unlock()

	waitFor(t, 2*time.Second, func() bool { return len(state.Snapshot().Entries) == 2 })
}
