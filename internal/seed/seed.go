package seed

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/RanaKhaled2002/Student-Management-System/internal/config"
	"github.com/RanaKhaled2002/Student-Management-System/internal/crypto"
	"github.com/RanaKhaled2002/Student-Management-System/internal/model"
	"github.com/RanaKhaled2002/Student-Management-System/internal/repository"
)

// EnsureAdmin creates the bootstrap admin account when ADMIN_EMAIL and
// ADMIN_PASSWORD are configured. The seeded account is active, never
// pending, so the first approval does not need an approver.
func EnsureAdmin(ctx context.Context, cfg config.Config, store *repository.Store) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	email := model.NormalizeEmail(cfg.AdminEmail)
	_, err := store.GetAccountByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := crypto.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	account := model.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Status:       model.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.CreateAccount(ctx, account); err != nil {
		return err
	}

	log.Printf("seeded admin account %s", email)
	return nil
}
