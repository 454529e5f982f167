package revocation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/RanaKhaled2002/Student-Management-System/internal/model"
)

type memoryStore struct {
	mu     sync.Mutex
	tokens map[string]model.RevokedToken
	fail   bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{tokens: map[string]model.RevokedToken{}}
}

func (m *memoryStore) InsertRevokedToken(_ context.Context, revoked model.RevokedToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("store unavailable")
	}
	if _, ok := m.tokens[revoked.TokenHash]; ok {
		return nil
	}
	m.tokens[revoked.TokenHash] = revoked
	return nil
}

func (m *memoryStore) IsTokenRevoked(_ context.Context, tokenHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return false, errors.New("store unavailable")
	}
	_, ok := m.tokens[tokenHash]
	return ok, nil
}

func (m *memoryStore) DeleteExpiredRevokedTokens(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for hash, revoked := range m.tokens {
		if revoked.ExpiresAt.Before(now) {
			delete(m.tokens, hash)
			deleted++
		}
	}
	return deleted, nil
}

func TestRevokeIdempotent(t *testing.T) {
	store := newMemoryStore()
	ledger := NewLedger(store, nil)
	ctx := context.Background()
	expiry := time.Now().UTC().Add(time.Hour)

	if err := ledger.Revoke(ctx, "token-a", expiry); err != nil {
		t.Fatalf("revoke error: %v", err)
	}
	if err := ledger.Revoke(ctx, "token-a", expiry); err != nil {
		t.Fatalf("second revoke should be a no-op, got: %v", err)
	}

	revoked, err := ledger.IsRevoked(ctx, "token-a")
	if err != nil {
		t.Fatalf("lookup error: %v", err)
	}
	if !revoked {
		t.Fatalf("expected token to stay revoked")
	}
	if len(store.tokens) != 1 {
		t.Fatalf("expected a single ledger record, got %d", len(store.tokens))
	}
}

func TestIsRevokedUnknownToken(t *testing.T) {
	ledger := NewLedger(newMemoryStore(), nil)

	revoked, err := ledger.IsRevoked(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("lookup error: %v", err)
	}
	if revoked {
		t.Fatalf("unknown token must not read as revoked")
	}
}

func TestIsRevokedFailsClosed(t *testing.T) {
	store := newMemoryStore()
	store.fail = true
	ledger := NewLedger(store, nil)

	if _, err := ledger.IsRevoked(context.Background(), "token-a"); err == nil {
		t.Fatalf("expected store failure to surface as an error")
	}
}

func TestRevokeRequiresDurableWrite(t *testing.T) {
	store := newMemoryStore()
	store.fail = true
	ledger := NewLedger(store, nil)

	if err := ledger.Revoke(context.Background(), "token-a", time.Now().Add(time.Hour)); err == nil {
		t.Fatalf("expected revoke to fail when the store write fails")
	}
}

func TestPurgeExpiredKeepsLiveRecords(t *testing.T) {
	store := newMemoryStore()
	ledger := NewLedger(store, nil)
	ctx := context.Background()

	if err := ledger.Revoke(ctx, "live", time.Now().UTC().Add(time.Hour)); err != nil {
		t.Fatalf("revoke error: %v", err)
	}
	if err := ledger.Revoke(ctx, "stale", time.Now().UTC().Add(-time.Hour)); err != nil {
		t.Fatalf("revoke error: %v", err)
	}

	deleted, err := ledger.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("purge error: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected one purged record, got %d", deleted)
	}

	revoked, err := ledger.IsRevoked(ctx, "live")
	if err != nil {
		t.Fatalf("lookup error: %v", err)
	}
	if !revoked {
		t.Fatalf("purge must not touch unexpired records")
	}
}
