package repository

import (
	"context"
	"fmt"
	"strings"

	"beansbot/database"
	"beansbot/models"
	"beansbot/service"
	"github.com/jackc/pgx/v5"
)

// AccountRepository implements the service.AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// GetByNick retrieves an account by nick, nil if no record exists
func (r *AccountRepository) GetByNick(ctx context.Context, nick string) (*models.Account, error) {
	query := `
		SELECT nick, beans, created_at, updated_at
		FROM accounts
		WHERE nick = $1
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, strings.ToLower(nick)).Scan(
		&account.Nick,
		&account.Beans,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %q: %w", nick, err)
	}

	return &account, nil
}

// GetBalance returns the balance for a nick, 0 when no record exists
func (r *AccountRepository) GetBalance(ctx context.Context, nick string) (int64, error) {
	account, err := r.GetByNick(ctx, nick)
	if err != nil {
		return 0, err
	}
	if account == nil {
		return 0, nil
	}
	return account.Beans, nil
}

// CreditBalance adds to an account's balance, creating the row on first credit
func (r *AccountRepository) CreditBalance(ctx context.Context, nick string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	query := `
		INSERT INTO accounts (nick, beans)
		VALUES ($1, $2)
		ON CONFLICT (nick)
		DO UPDATE SET beans = accounts.beans + EXCLUDED.beans, updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, strings.ToLower(nick), amount); err != nil {
		return fmt.Errorf("failed to credit %d beans to %q: %w", amount, nick, err)
	}

	return nil
}

// DebitBalance deducts from an account's balance atomically. The conditional
// update is what serializes concurrent read-modify-write cycles on the same
// account; it never lets a balance go negative.
func (r *AccountRepository) DebitBalance(ctx context.Context, nick string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	query := `
		UPDATE accounts
		SET beans = beans - $1, updated_at = NOW()
		WHERE nick = $2 AND beans >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, strings.ToLower(nick))
	if err != nil {
		return fmt.Errorf("failed to debit %d beans from %q: %w", amount, nick, err)
	}

	if result.RowsAffected() == 0 {
		balance, err := r.GetBalance(ctx, nick)
		if err != nil {
			return fmt.Errorf("failed to check balance for %q: %w", nick, err)
		}
		return fmt.Errorf("%w: %q has %d, needs %d", service.ErrInsufficientFunds, nick, balance, amount)
	}

	return nil
}

// TotalInCirculation returns the sum of all account balances
func (r *AccountRepository) TotalInCirculation(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(SUM(beans), 0) FROM accounts`

	var total int64
	if err := r.q.QueryRow(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum circulation: %w", err)
	}

	return total, nil
}

// TopN returns the n richest accounts, balance descending. Equal balances
// order by nick for a stable listing.
func (r *AccountRepository) TopN(ctx context.Context, n int) ([]*models.Account, error) {
	query := `
		SELECT nick, beans, created_at, updated_at
		FROM accounts
		ORDER BY beans DESC, nick ASC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to get top accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		var account models.Account
		err := rows.Scan(
			&account.Nick,
			&account.Beans,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, &account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}
