package revocation

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/RanaKhaled2002/Student-Management-System/internal/crypto"
	"github.com/RanaKhaled2002/Student-Management-System/internal/model"
)

// Store is the durable side of the ledger. A revocation only counts once
// it is persisted here.
type Store interface {
	InsertRevokedToken(ctx context.Context, revoked model.RevokedToken) error
	IsTokenRevoked(ctx context.Context, tokenHash string) (bool, error)
	DeleteExpiredRevokedTokens(ctx context.Context, now time.Time) (int64, error)
}

// Ledger records sessions invalidated before their natural expiry. Tokens
// are keyed by hash. An optional redis client fronts the durable store on
// the per-request lookup path; redis being down never widens access, it
// only costs a database round trip.
type Ledger struct {
	store Store
	redis *redis.Client
}

func NewLedger(store Store, redisClient *redis.Client) *Ledger {
	return &Ledger{store: store, redis: redisClient}
}

func (l *Ledger) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	hash := crypto.HashToken(token)
	revoked := model.RevokedToken{
		TokenHash: hash,
		ExpiresAt: expiresAt.UTC(),
		RevokedAt: time.Now().UTC(),
	}
	if err := l.store.InsertRevokedToken(ctx, revoked); err != nil {
		return err
	}
	l.cache(ctx, hash, expiresAt)
	return nil
}

// IsRevoked answers the per-request ledger check. A durable-store failure
// is returned as an error so the caller can fail closed instead of
// treating the token as non-revoked.
func (l *Ledger) IsRevoked(ctx context.Context, token string) (bool, error) {
	hash := crypto.HashToken(token)

	if l.redis != nil {
		if _, err := l.redis.Get(ctx, revokedKey(hash)).Result(); err == nil {
			return true, nil
		}
		// redis.Nil and transport errors both fall through to postgres.
	}

	revoked, err := l.store.IsTokenRevoked(ctx, hash)
	if err != nil {
		return false, err
	}
	if revoked {
		l.cache(ctx, hash, time.Now().UTC().Add(time.Minute))
	}
	return revoked, nil
}

// PurgeExpired removes ledger records whose tokens are already rejected
// on expiry alone.
func (l *Ledger) PurgeExpired(ctx context.Context) (int64, error) {
	return l.store.DeleteExpiredRevokedTokens(ctx, time.Now().UTC())
}

func (l *Ledger) cache(ctx context.Context, hash string, expiresAt time.Time) {
	if l.redis == nil {
		return
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	_ = l.redis.Set(ctx, revokedKey(hash), "1", ttl).Err()
}

func revokedKey(hash string) string {
	return "revoked_token:" + hash
}
