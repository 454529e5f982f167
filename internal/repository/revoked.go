package repository

import (
	"context"
	"time"

	"github.com/RanaKhaled2002/Student-Management-System/internal/model"
)

// InsertRevokedToken is idempotent: revoking an already-revoked token is
// a no-op, not an error.
func (s *Store) InsertRevokedToken(ctx context.Context, revoked model.RevokedToken) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO revoked_tokens (token_hash, expires_at, revoked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO NOTHING
	`, revoked.TokenHash, revoked.ExpiresAt, revoked.RevokedAt)
	return err
}

func (s *Store) IsTokenRevoked(ctx context.Context, tokenHash string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_hash = $1)
	`, tokenHash).Scan(&exists)
	return exists, err
}

// DeleteExpiredRevokedTokens drops records whose tokens would already be
// rejected on expiry alone. Housekeeping only; correctness never depends
// on it.
func (s *Store) DeleteExpiredRevokedTokens(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM revoked_tokens WHERE expires_at < $1
	`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
