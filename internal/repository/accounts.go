package repository

import (
	"context"
	"time"

	"github.com/RanaKhaled2002/Student-Management-System/internal/model"
)

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (model.Account, error) {
	var account model.Account
	row := s.db.QueryRow(ctx, `
		SELECT id, email, password_hash, role, status, created_at, updated_at
		FROM accounts
		WHERE email = lower($1)
	`, email)
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.Status,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	return account, err
}

func (s *Store) GetAccountByID(ctx context.Context, accountID string) (model.Account, error) {
	var account model.Account
	row := s.db.QueryRow(ctx, `
		SELECT id, email, password_hash, role, status, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`, accountID)
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.Status,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	return account, err
}

func (s *Store) CreateAccount(ctx context.Context, account model.Account) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO accounts (id, email, password_hash, role, status, created_at, updated_at)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7)
	`, account.ID, account.Email, account.PasswordHash, account.Role, account.Status, account.CreatedAt, account.UpdatedAt)
	return err
}

// ApproveAccount flips a pending account to active. The update is a single
// atomic statement; approving an already-active account matches the WHERE
// clause too and stays a no-op in effect.
func (s *Store) ApproveAccount(ctx context.Context, accountID string, approvedAt time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE accounts
		SET status = $1, updated_at = $2
		WHERE id = $3
	`, model.StatusActive, approvedAt, accountID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ListPendingAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, email
		FROM accounts
		WHERE status = $1
		ORDER BY created_at
	`, model.StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var account model.Account
		if err := rows.Scan(&account.ID, &account.Email); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (s *Store) AccountEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM accounts WHERE email = lower($1))
	`, email).Scan(&exists)
	return exists, err
}
