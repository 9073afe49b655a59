package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"hermes-sync-api/internal/model"
)

// MySQLAccountRepository implements AccountRepository using MySQL, the
// database the customer site writes accounts into.
type MySQLAccountRepository struct {
	db *sql.DB
}

// NewMySQLAccountRepository creates a new MySQL account repository.
func NewMySQLAccountRepository(db *sql.DB) *MySQLAccountRepository {
	return &MySQLAccountRepository{db: db}
}

// GetAccountByEmail finds an account by email (case-insensitive).
func (r *MySQLAccountRepository) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := `
		SELECT id, email, first_name, last_name, plan, is_active, extension_enabled, created_at
		FROM accounts
		WHERE email = ?
		LIMIT 1`

	var acc model.Account
	err := r.db.QueryRowContext(ctx, query, strings.ToLower(email)).Scan(
		&acc.ID,
		&acc.Email,
		&acc.FirstName,
		&acc.LastName,
		&acc.Plan,
		&acc.IsActive,
		&acc.ExtensionEnabled,
		&acc.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("account not found for email: %s", email)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &acc, nil
}

// ValidateCredentials checks an email+password pair for token generation.
// Passwords are stored as SHA-256 digests; comparison happens in SQL so
// plaintext never round-trips through the application.
func (r *MySQLAccountRepository) ValidateCredentials(ctx context.Context, email, password string) (*model.Account, error) {
	log.Printf("[AccountRepository] Validating credentials for email=%s", email)

	query := `
		SELECT id, email, first_name, last_name, plan, is_active, extension_enabled, created_at
		FROM accounts
		WHERE email = ?
		  AND password_hash = SHA2(?, 256)
		  AND is_active = 1
		LIMIT 1`

	var acc model.Account
	err := r.db.QueryRowContext(ctx, query, strings.ToLower(email), password).Scan(
		&acc.ID,
		&acc.Email,
		&acc.FirstName,
		&acc.LastName,
		&acc.Plan,
		&acc.IsActive,
		&acc.ExtensionEnabled,
		&acc.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("invalid email or password")
		}
		return nil, fmt.Errorf("failed to validate credentials: %w", err)
	}

	return &acc, nil
}

// Ensure MySQLAccountRepository implements AccountRepository
var _ AccountRepository = (*MySQLAccountRepository)(nil)
