package models

import (
	"strings"
	"time"
)

// TriviaQuestion represents an open trivia question with a prize escrowed
// to the house account for its whole lifetime.
type TriviaQuestion struct {
	ID        int64     `db:"id"`
	Creator   string    `db:"creator"`
	Question  string    `db:"question"`
	Answer    string    `db:"answer"`
	Prize     int64     `db:"prize"`
	CreatedAt time.Time `db:"created_at"`
}

// MatchesAnswer reports whether a chat message is exactly this question's
// answer, case-insensitively.
func (q *TriviaQuestion) MatchesAnswer(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), q.Answer)
}

// TriviaResult represents the outcome of resolving a trivia question
type TriviaResult struct {
	Question      *TriviaQuestion
	Winner        string
	Prize         int64
	TotalPool     int64
	Payouts       map[string]int64 // bettor -> payout, winning bets only
	UnpaidWinners []string         // bettors the house could not pay
}
