package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bobmcallan/tradedesk/internal/common"
	"github.com/bobmcallan/tradedesk/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return NewStore(
		filepath.Join(dir, "session.bin"),
		filepath.Join(dir, "session.key"),
		common.NewSilentLogger(),
	)
}

func TestStore_SaveLoadClear(t *testing.T) {
	store := newTestStore(t)

	// Empty store
	if _, ok, err := store.Load(); ok || err != nil {
		t.Fatalf("Load from empty store = ok=%v, err=%v", ok, err)
	}

	sess := &models.StoredSession{Token: "tok-abc", Email: "user@example.com"}
	if err := store.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if sess.DeviceID == "" {
		t.Error("Save should assign a DeviceID")
	}

	got, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("Load after save = ok=%v, err=%v", ok, err)
	}
	if got.Token != "tok-abc" || got.Email != "user@example.com" {
		t.Errorf("loaded session = %+v", got)
	}
	if got.DeviceID != sess.DeviceID {
		t.Errorf("DeviceID changed across save/load")
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := store.Load(); ok {
		t.Error("Load after Clear should report no session")
	}
	// Clearing twice is fine
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
}

func TestStore_DeviceIDStableAcrossLogins(t *testing.T) {
	store := newTestStore(t)

	first := &models.StoredSession{Token: "tok-1", Email: "user@example.com"}
	if err := store.Save(first); err != nil {
		t.Fatal(err)
	}

	second := &models.StoredSession{Token: "tok-2", Email: "user@example.com"}
	if err := store.Save(second); err != nil {
		t.Fatal(err)
	}
	if second.DeviceID != first.DeviceID {
		t.Errorf("DeviceID regenerated on re-login: %s != %s", second.DeviceID, first.DeviceID)
	}
}

func TestStore_FileIsEncrypted(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(&models.StoredSession{Token: "super-secret-token", Email: "a@b.c"}); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(store.path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "super-secret-token") {
		t.Error("session file contains the plaintext token")
	}
	var probe map[string]interface{}
	if json.Unmarshal(raw, &probe) == nil {
		t.Error("session file is plain JSON, expected ciphertext")
	}
}

func TestStore_MissingKeyIgnoresSession(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(&models.StoredSession{Token: "tok"}); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(store.keyPath); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := store.Load(); ok || err != nil {
		t.Errorf("Load without key = ok=%v, err=%v, want no session and no error", ok, err)
	}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	s, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestStore_Valid(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		sess *models.StoredSession
		want bool
	}{
		{"nil session", nil, false},
		{"empty token", &models.StoredSession{}, false},
		{"future expiry", &models.StoredSession{Token: signedToken(t, now.Add(time.Hour))}, true},
		{"past expiry", &models.StoredSession{Token: signedToken(t, now.Add(-time.Hour))}, false},
		{"opaque token", &models.StoredSession{Token: "not-a-jwt"}, true},
	}
	for _, tt := range tests {
		if got := store.Valid(tt.sess, now); got != tt.want {
			t.Errorf("%s: Valid = %v, want %v", tt.name, got, tt.want)
		}
	}
}
