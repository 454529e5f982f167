package jobs

import (
	"context"
	"log"
	"time"

	"github.com/RanaKhaled2002/Student-Management-System/internal/config"
	"github.com/RanaKhaled2002/Student-Management-System/internal/revocation"
)

// StartRevokedTokenPurgeJob periodically drops expired records from the
// revocation ledger. Expired tokens fail validation on expiry alone, so
// this is storage housekeeping, not an enforcement path.
func StartRevokedTokenPurgeJob(ctx context.Context, cfg config.Config, ledger *revocation.Ledger) {
	if !cfg.PurgeJobEnabled {
		return
	}
	interval := cfg.PurgeJobInterval
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tickCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				deleted, err := ledger.PurgeExpired(tickCtx)
				cancel()
				if err != nil {
					log.Printf("revoked token purge error: %v", err)
					continue
				}
				if deleted > 0 {
					log.Printf("revoked token purge removed %d records", deleted)
				}
			}
		}
	}()
}
