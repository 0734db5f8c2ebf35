// Package session persists the authenticated session between runs.
package session

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/bobmcallan/tradedesk/internal/common"
	"github.com/bobmcallan/tradedesk/internal/interfaces"
	"github.com/bobmcallan/tradedesk/internal/models"
)

// Store is a file-backed session store. The session file is encrypted
// at rest with a per-install key so a copied data directory doesn't
// leak a usable bearer token.
type Store struct {
	path    string
	keyPath string
	logger  *common.Logger
}

var _ interfaces.SessionStore = (*Store)(nil)

// NewStore creates a session store writing to path, keyed by keyPath.
func NewStore(path, keyPath string, logger *common.Logger) *Store {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Store{path: path, keyPath: keyPath, logger: logger}
}

// loadOrCreateKey returns the at-rest key, generating one on first use.
func (s *Store) loadOrCreateKey() ([]byte, error) {
	key, err := os.ReadFile(s.keyPath)
	if err == nil && len(key) == chacha20poly1305.KeySize {
		return key, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read session key: %w", err)
	}

	key = make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate session key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.keyPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(s.keyPath, key, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write session key: %w", err)
	}
	return key, nil
}

// Save writes the session to disk. A missing DeviceID is assigned once
// and kept stable for the life of the install.
func (s *Store) Save(sess *models.StoredSession) error {
	if sess == nil || sess.Token == "" {
		return fmt.Errorf("session token is required")
	}
	if sess.DeviceID == "" {
		if prev, ok, _ := s.Load(); ok && prev.DeviceID != "" {
			sess.DeviceID = prev.DeviceID
		} else {
			sess.DeviceID = uuid.NewString()
		}
	}
	if sess.SavedAt.IsZero() {
		sess.SavedAt = time.Now()
	}

	plaintext, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	key, err := s.loadOrCreateKey()
	if err != nil {
		return err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return fmt.Errorf("failed to initialize cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, plaintext, nil)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(s.path, sealed, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	s.logger.Debug().Str("email", sess.Email).Msg("Session saved")
	return nil
}

// Load reads the stored session. ok is false when no session exists or
// the file cannot be decrypted (treated as no session, not an error).
func (s *Store) Load() (*models.StoredSession, bool, error) {
	sealed, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read session file: %w", err)
	}

	key, err := os.ReadFile(s.keyPath)
	if err != nil || len(key) != chacha20poly1305.KeySize {
		s.logger.Warn().Msg("Session file present but key missing; ignoring stored session")
		return nil, false, nil
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	if len(sealed) < aead.NonceSize() {
		return nil, false, nil
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		s.logger.Warn().Msg("Stored session failed decryption; ignoring")
		return nil, false, nil
	}

	var sess models.StoredSession
	if err := json.Unmarshal(plaintext, &sess); err != nil {
		return nil, false, nil
	}
	if sess.Token == "" {
		return nil, false, nil
	}
	return &sess, true, nil
}

// Clear removes the stored session. The key file is left in place.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// Valid reports whether the stored token is usable at the given time.
// The JWT is parsed without verifying the signature — the backend is
// the authority; this only avoids sending a token known to be expired.
func (s *Store) Valid(sess *models.StoredSession, now time.Time) bool {
	if sess == nil || sess.Token == "" {
		return false
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(sess.Token, claims); err != nil {
		// Opaque tokens can't be inspected; let the backend decide
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return now.Before(exp.Time)
}
