package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bobmcallan/tradedesk/internal/common"
	"github.com/bobmcallan/tradedesk/internal/interfaces"
	"github.com/bobmcallan/tradedesk/internal/models"
	"github.com/bobmcallan/tradedesk/internal/services/portfolio"
)

// Poller refreshes the snapshot on fixed intervals, one loop per feed.
// Fetches never block the ticker: a tick that arrives while a fetch for
// the same feed is still in flight is skipped.
type Poller struct {
	backend   interfaces.BackendClient
	portfolio *portfolio.Service
	state     *State
	logger    *common.Logger

	ledgerInterval   time.Duration
	quoteInterval    time.Duration
	securityInterval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a poller over the given state.
func NewPoller(backend interfaces.BackendClient, pf *portfolio.Service, state *State, cfg *common.Config, logger *common.Logger) *Poller {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Poller{
		backend:          backend,
		portfolio:        pf,
		state:            state,
		logger:           logger,
		ledgerInterval:   cfg.Polling.LedgerInterval(),
		quoteInterval:    cfg.Polling.QuoteInterval(),
		securityInterval: cfg.Polling.SecurityInterval(),
	}
}

// Start launches the feed loops. The context must carry the session;
// cancellation stops all loops.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	p.runFeed(ctx, FeedLedger, p.ledgerInterval, p.refreshLedger)
	p.runFeed(ctx, FeedQuotes, p.quoteInterval, p.refreshQuotes)
	p.runFeed(ctx, FeedSecurity, p.securityInterval, p.refreshSecurity)
}

// Stop halts all loops and waits for in-flight fetches to finish.
func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

// runFeed starts one ticker loop: an immediate fetch, then one per tick
// unless the previous fetch is still running.
func (p *Poller) runFeed(ctx context.Context, feed Feed, interval time.Duration, refresh func(context.Context, uint64)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		var inflight atomic.Bool

		dispatch := func() {
			if !inflight.CompareAndSwap(false, true) {
				p.logger.Debug().Str("feed", string(feed)).Msg("Poll skipped: previous fetch still in flight")
				return
			}
			seq := p.state.NextSeq(feed)
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				defer inflight.Store(false)
				refresh(ctx, seq)
			}()
		}

		dispatch()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				p.logger.Info().Str("feed", string(feed)).Msg("Poller stopped")
				return
			case <-ticker.C:
				dispatch()
			}
		}
	}()
}

// refreshLedger fetches holdings, orders, wallet, fund transactions,
// and the watchlist, then recomputes the funds summary.
func (p *Poller) refreshLedger(ctx context.Context, seq uint64) {
	start := time.Now()

	entries, err := p.backend.Holdings(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Ledger refresh: holdings fetch failed")
		return
	}
	orders, err := p.backend.Orders(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Ledger refresh: orders fetch failed")
		return
	}
	wallet, err := p.backend.Wallet(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Ledger refresh: wallet fetch failed")
		return
	}
	txns, err := p.backend.FundsTransactions(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Ledger refresh: transactions fetch failed")
		return
	}
	watchlist, err := p.backend.Watchlist(ctx)
	if err != nil {
		// Watchlist is cosmetic for the ledger view; keep the old one
		p.logger.Warn().Err(err).Msg("Ledger refresh: watchlist fetch failed")
		watchlist = nil
	}

	funds := portfolio.ComputeFundsSummary(wallet.WalletBalance, txns, entries)

	applied := p.state.Apply(FeedLedger, seq, func(snap *Snapshot) {
		snap.Entries = entries
		snap.Orders = orders
		snap.Wallet = *wallet
		snap.Transactions = txns
		if watchlist != nil {
			snap.Watchlist = watchlist
		}
		snap.Funds = funds
		snap.LedgerUpdated = time.Now()
	})
	if !applied {
		p.logger.Debug().Uint64("seq", seq).Msg("Ledger refresh: stale result discarded")
		return
	}

	p.logger.Info().
		Int("entries", len(entries)).
		Int("orders", len(orders)).
		Dur("elapsed", time.Since(start)).
		Msg("Ledger refresh: complete")
}

// refreshQuotes re-prices the current ledger and recomputes positions.
func (p *Poller) refreshQuotes(ctx context.Context, seq uint64) {
	start := time.Now()

	snap := p.state.Snapshot()
	if len(snap.Entries) == 0 {
		// Nothing held yet; pull the ledger directly so first paint
		// doesn't wait a full ledger interval
		entries, err := p.backend.Holdings(ctx)
		if err != nil || len(entries) == 0 {
			return
		}
		orders, err := p.backend.Orders(ctx)
		if err != nil {
			orders = nil
		}
		snap.Entries = entries
		snap.Orders = orders
	}

	holdings, totals := p.portfolio.Snapshot(ctx, snap.Entries, snap.Orders)

	applied := p.state.Apply(FeedQuotes, seq, func(s *Snapshot) {
		s.Holdings = holdings
		s.Totals = totals
		s.QuotesUpdated = time.Now()
	})
	if !applied {
		p.logger.Debug().Uint64("seq", seq).Msg("Quote refresh: stale result discarded")
		return
	}

	p.logger.Info().
		Int("holdings", len(holdings)).
		Dur("elapsed", time.Since(start)).
		Msg("Quote refresh: complete")
}

// refreshSecurity fetches 2FA status, recent activity, and sessions.
func (p *Poller) refreshSecurity(ctx context.Context, seq uint64) {
	start := time.Now()

	enabled, err := p.backend.TwoFAStatus(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Security refresh: 2FA status fetch failed")
		return
	}
	activity, err := p.backend.RecentActivity(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Security refresh: activity fetch failed")
		activity = nil
	}
	sessions, err := p.backend.ActiveSessions(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Security refresh: sessions fetch failed")
		sessions = nil
	}

	applied := p.state.Apply(FeedSecurity, seq, func(snap *Snapshot) {
		snap.Security = models.SecuritySettings{
			TwoFAEnabled:   enabled,
			RecentActivity: activity,
			ActiveSessions: sessions,
		}
		snap.SecurityUpdated = time.Now()
	})
	if !applied {
		return
	}

	p.logger.Info().
		Bool("twofa", enabled).
		Dur("elapsed", time.Since(start)).
		Msg("Security refresh: complete")
}
