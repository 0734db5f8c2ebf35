package app

import (
	"testing"
	"time"
)

func TestState_SequenceGuardDiscardsStale(t *testing.T) {
	state := NewState()

	seq1 := state.NextSeq(FeedQuotes)
	seq2 := state.NextSeq(FeedQuotes)

	// Newer fetch completes first
	if !state.Apply(FeedQuotes, seq2, func(s *Snapshot) { s.QuotesUpdated = time.Unix(200, 0) }) {
		t.Fatal("newer result should apply")
	}

	// Older fetch completes second: must be discarded
	if state.Apply(FeedQuotes, seq1, func(s *Snapshot) { s.QuotesUpdated = time.Unix(100, 0) }) {
		t.Fatal("stale result should be discarded")
	}

	if got := state.Snapshot().QuotesUpdated; !got.Equal(time.Unix(200, 0)) {
		t.Errorf("QuotesUpdated = %v, stale write leaked through", got)
	}
}

func TestState_SequenceGuardPerFeed(t *testing.T) {
	state := NewState()

	qSeq := state.NextSeq(FeedQuotes)
	lSeq := state.NextSeq(FeedLedger)

	if !state.Apply(FeedQuotes, qSeq, func(s *Snapshot) {}) {
		t.Error("quotes apply failed")
	}
	// Ledger feed has its own counter; quote applies don't block it
	if !state.Apply(FeedLedger, lSeq, func(s *Snapshot) {}) {
		t.Error("ledger apply failed; sequence guard should be per feed")
	}
}

func TestState_ApplySameSequenceTwice(t *testing.T) {
	state := NewState()
	seq := state.NextSeq(FeedLedger)

	if !state.Apply(FeedLedger, seq, func(s *Snapshot) {}) {
		t.Fatal("first apply should succeed")
	}
	if state.Apply(FeedLedger, seq, func(s *Snapshot) {}) {
		t.Error("re-applying the same sequence should be rejected")
	}
}

func TestState_SnapshotIsCopy(t *testing.T) {
	state := NewState()
	seq := state.NextSeq(FeedLedger)
	state.Apply(FeedLedger, seq, func(s *Snapshot) { s.Watchlist = []string{"AAPL"} })

	snap := state.Snapshot()
	snap.Watchlist = nil
	snap.LedgerUpdated = time.Now()

	if got := state.Snapshot(); len(got.Watchlist) != 1 {
		t.Error("mutating a returned snapshot affected internal state")
	}
}
