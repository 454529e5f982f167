package crypto

import (
	"crypto/sha256"
	"encoding/base64"
)

// HashToken derives the stable ledger key for a session token. Revoked
// tokens are stored and looked up by this hash, never by the full
// signed string.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
