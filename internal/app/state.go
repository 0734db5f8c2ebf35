package app

import (
	"sync"
	"time"

	"github.com/bobmcallan/tradedesk/internal/models"
)

// Feed identifies one polled data stream.
type Feed string

const (
	FeedLedger   Feed = "ledger"   // holdings, orders, wallet, funds, watchlist
	FeedQuotes   Feed = "quotes"   // prices and recomputed positions
	FeedSecurity Feed = "security" // 2FA status, sessions, activity
)

// Snapshot is the client's view of account and market state. Views read
// a copy; pollers replace sections through State.Apply.
type Snapshot struct {
	Entries      []models.LedgerEntry
	Orders       []models.Order
	Wallet       models.Wallet
	Transactions []models.FundsTransaction
	Watchlist    []string

	Holdings []models.Holding
	Totals   models.PortfolioTotals
	Funds    models.FundsSummary

	Security models.SecuritySettings

	LedgerUpdated   time.Time
	QuotesUpdated   time.Time
	SecurityUpdated time.Time
}

// State holds the current snapshot behind a mutex, with a per-feed
// monotonic sequence guard. Each fetch takes a sequence number when it
// is dispatched; a completion whose sequence is at or below the last
// applied one is discarded, so a slow stale response can never
// overwrite fresher data.
type State struct {
	mu         sync.RWMutex
	snap       Snapshot
	dispatched map[Feed]uint64
	applied    map[Feed]uint64
}

// NewState creates an empty state.
func NewState() *State {
	return &State{
		dispatched: make(map[Feed]uint64),
		applied:    make(map[Feed]uint64),
	}
}

// NextSeq reserves the next sequence number for a feed fetch.
func (s *State) NextSeq(feed Feed) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatched[feed]++
	return s.dispatched[feed]
}

// Apply runs fn against the snapshot if seq is newer than the last
// applied sequence for the feed. Returns false when the result was
// discarded as stale.
func (s *State) Apply(feed Feed, seq uint64, fn func(*Snapshot)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.applied[feed] {
		return false
	}
	s.applied[feed] = seq
	fn(&s.snap)
	return true
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
