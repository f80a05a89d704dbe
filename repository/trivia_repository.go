package repository

import (
	"context"
	"fmt"
	"strings"

	"beansbot/database"
	"beansbot/models"
	"github.com/jackc/pgx/v5"
)

// TriviaRepository implements the service.TriviaRepository interface
type TriviaRepository struct {
	q queryable
}

// NewTriviaRepository creates a new trivia repository
func NewTriviaRepository(db *database.DB) *TriviaRepository {
	return &TriviaRepository{q: db.Pool}
}

// newTriviaRepositoryWithTx creates a new trivia repository with a transaction
func newTriviaRepositoryWithTx(tx queryable) *TriviaRepository {
	return &TriviaRepository{q: tx}
}

const triviaColumns = "id, creator, question, answer, prize, created_at"

func scanTrivia(row pgx.Row) (*models.TriviaQuestion, error) {
	var q models.TriviaQuestion
	err := row.Scan(
		&q.ID,
		&q.Creator,
		&q.Question,
		&q.Answer,
		&q.Prize,
		&q.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Create stores a new question and assigns its id
func (r *TriviaRepository) Create(ctx context.Context, question *models.TriviaQuestion) error {
	query := `
		INSERT INTO trivia_questions (creator, question, answer, prize)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		strings.ToLower(question.Creator),
		question.Question,
		question.Answer,
		question.Prize,
	).Scan(&question.ID, &question.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create trivia question: %w", err)
	}

	question.Creator = strings.ToLower(question.Creator)

	return nil
}

// GetByID retrieves a question by id, nil if absent
func (r *TriviaRepository) GetByID(ctx context.Context, id int64) (*models.TriviaQuestion, error) {
	query := `SELECT ` + triviaColumns + ` FROM trivia_questions WHERE id = $1`

	question, err := scanTrivia(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get trivia question %d: %w", id, err)
	}

	return question, nil
}

// GetByAnswer retrieves the oldest open question answered by the given
// token, case-insensitively. Oldest first so duplicated answers resolve in
// creation order.
func (r *TriviaRepository) GetByAnswer(ctx context.Context, answer string) (*models.TriviaQuestion, error) {
	query := `
		SELECT ` + triviaColumns + `
		FROM trivia_questions
		WHERE LOWER(answer) = LOWER($1)
		ORDER BY id ASC
		LIMIT 1
	`

	question, err := scanTrivia(r.q.QueryRow(ctx, query, answer))
	if err != nil {
		return nil, fmt.Errorf("failed to get trivia question by answer: %w", err)
	}

	return question, nil
}

// GetLatestByCreator retrieves the creator's most recent question, nil if none
func (r *TriviaRepository) GetLatestByCreator(ctx context.Context, creator string) (*models.TriviaQuestion, error) {
	query := `
		SELECT ` + triviaColumns + `
		FROM trivia_questions
		WHERE creator = $1
		ORDER BY id DESC
		LIMIT 1
	`

	question, err := scanTrivia(r.q.QueryRow(ctx, query, strings.ToLower(creator)))
	if err != nil {
		return nil, fmt.Errorf("failed to get latest trivia for %q: %w", creator, err)
	}

	return question, nil
}

// ListRecent returns up to n questions, newest first
func (r *TriviaRepository) ListRecent(ctx context.Context, n int) ([]*models.TriviaQuestion, error) {
	query := `
		SELECT ` + triviaColumns + `
		FROM trivia_questions
		ORDER BY id DESC
		LIMIT $1
	`

	return r.list(ctx, query, n)
}

// ListByCreator returns all of one creator's open questions, newest first
func (r *TriviaRepository) ListByCreator(ctx context.Context, creator string) ([]*models.TriviaQuestion, error) {
	query := `
		SELECT ` + triviaColumns + `
		FROM trivia_questions
		WHERE creator = $1
		ORDER BY id DESC
	`

	return r.list(ctx, query, strings.ToLower(creator))
}

func (r *TriviaRepository) list(ctx context.Context, query string, args ...any) ([]*models.TriviaQuestion, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list trivia questions: %w", err)
	}
	defer rows.Close()

	var questions []*models.TriviaQuestion
	for rows.Next() {
		var q models.TriviaQuestion
		err := rows.Scan(
			&q.ID,
			&q.Creator,
			&q.Question,
			&q.Answer,
			&q.Prize,
			&q.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trivia question: %w", err)
		}
		questions = append(questions, &q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trivia questions: %w", err)
	}

	return questions, nil
}

// Delete removes a question
func (r *TriviaRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM trivia_questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete trivia question %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("trivia question %d not found", id)
	}

	return nil
}
