// Package interfaces defines client and service contracts for TradeDesk
package interfaces

import (
	"time"

	"github.com/bobmcallan/tradedesk/internal/models"
)

// SessionStore persists the authenticated session between runs.
type SessionStore interface {
	// Save writes the session to disk
	Save(s *models.StoredSession) error

	// Load reads the stored session; ok is false when none exists
	Load() (s *models.StoredSession, ok bool, err error)

	// Clear removes the stored session
	Clear() error

	// Valid reports whether the stored token is usable at the given time
	Valid(s *models.StoredSession, now time.Time) bool
}
