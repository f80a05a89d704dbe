package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"beansbot/database"
	"beansbot/models"
	"beansbot/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// TriviaBetRepository implements the service.TriviaBetRepository interface
type TriviaBetRepository struct {
	q queryable
}

// NewTriviaBetRepository creates a new trivia bet repository
func NewTriviaBetRepository(db *database.DB) *TriviaBetRepository {
	return &TriviaBetRepository{q: db.Pool}
}

// newTriviaBetRepositoryWithTx creates a new trivia bet repository with a transaction
func newTriviaBetRepositoryWithTx(tx queryable) *TriviaBetRepository {
	return &TriviaBetRepository{q: tx}
}

// Create stores a new bet. The (bettor, trivia_id) primary key enforces the
// at-most-one-bet invariant; a conflict surfaces as ErrDuplicateBet.
func (r *TriviaBetRepository) Create(ctx context.Context, bet *models.TriviaBet) error {
	query := `
		INSERT INTO trivia_bets (bettor, trivia_id, predicted_winner, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		strings.ToLower(bet.Bettor),
		bet.TriviaID,
		strings.ToLower(bet.PredictedWinner),
		bet.Amount,
	).Scan(&bet.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: %q on trivia %d", service.ErrDuplicateBet, bet.Bettor, bet.TriviaID)
		}
		return fmt.Errorf("failed to create trivia bet: %w", err)
	}

	bet.Bettor = strings.ToLower(bet.Bettor)
	bet.PredictedWinner = strings.ToLower(bet.PredictedWinner)

	return nil
}

// Get retrieves one bet, nil if absent
func (r *TriviaBetRepository) Get(ctx context.Context, bettor string, triviaID int64) (*models.TriviaBet, error) {
	query := `
		SELECT bettor, trivia_id, predicted_winner, amount, created_at
		FROM trivia_bets
		WHERE bettor = $1 AND trivia_id = $2
	`

	var bet models.TriviaBet
	err := r.q.QueryRow(ctx, query, strings.ToLower(bettor), triviaID).Scan(
		&bet.Bettor,
		&bet.TriviaID,
		&bet.PredictedWinner,
		&bet.Amount,
		&bet.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trivia bet: %w", err)
	}

	return &bet, nil
}

// ListByTrivia returns all bets on a question, oldest first
func (r *TriviaBetRepository) ListByTrivia(ctx context.Context, triviaID int64) ([]*models.TriviaBet, error) {
	query := `
		SELECT bettor, trivia_id, predicted_winner, amount, created_at
		FROM trivia_bets
		WHERE trivia_id = $1
		ORDER BY created_at ASC
	`

	return r.list(ctx, query, triviaID)
}

// ListByBettor returns all of one bettor's open bets, newest first
func (r *TriviaBetRepository) ListByBettor(ctx context.Context, bettor string) ([]*models.TriviaBet, error) {
	query := `
		SELECT bettor, trivia_id, predicted_winner, amount, created_at
		FROM trivia_bets
		WHERE bettor = $1
		ORDER BY created_at DESC
	`

	return r.list(ctx, query, strings.ToLower(bettor))
}

// ListRecent returns bets on the n most recently created questions
func (r *TriviaBetRepository) ListRecent(ctx context.Context, n int) ([]*models.TriviaBet, error) {
	query := `
		SELECT b.bettor, b.trivia_id, b.predicted_winner, b.amount, b.created_at
		FROM trivia_bets b
		WHERE b.trivia_id IN (
			SELECT id FROM trivia_questions ORDER BY id DESC LIMIT $1
		)
		ORDER BY b.trivia_id DESC, b.created_at ASC
	`

	return r.list(ctx, query, n)
}

func (r *TriviaBetRepository) list(ctx context.Context, query string, args ...any) ([]*models.TriviaBet, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list trivia bets: %w", err)
	}
	defer rows.Close()

	var bets []*models.TriviaBet
	for rows.Next() {
		var bet models.TriviaBet
		err := rows.Scan(
			&bet.Bettor,
			&bet.TriviaID,
			&bet.PredictedWinner,
			&bet.Amount,
			&bet.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trivia bet: %w", err)
		}
		bets = append(bets, &bet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trivia bets: %w", err)
	}

	return bets, nil
}

// Delete removes one bet
func (r *TriviaBetRepository) Delete(ctx context.Context, bettor string, triviaID int64) error {
	result, err := r.q.Exec(ctx,
		`DELETE FROM trivia_bets WHERE bettor = $1 AND trivia_id = $2`,
		strings.ToLower(bettor), triviaID)
	if err != nil {
		return fmt.Errorf("failed to delete trivia bet: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("trivia bet by %q on %d not found", bettor, triviaID)
	}

	return nil
}

// DeleteByTrivia removes all bets on a question
func (r *TriviaBetRepository) DeleteByTrivia(ctx context.Context, triviaID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM trivia_bets WHERE trivia_id = $1`, triviaID); err != nil {
		return fmt.Errorf("failed to delete bets for trivia %d: %w", triviaID, err)
	}

	return nil
}
