package models

import (
	"time"
)

// TriviaBet represents a side bet on who will answer a trivia question.
// At most one bet exists per (bettor, trivia) pair.
type TriviaBet struct {
	Bettor          string    `db:"bettor"`
	TriviaID        int64     `db:"trivia_id"`
	PredictedWinner string    `db:"predicted_winner"`
	Amount          int64     `db:"amount"`
	CreatedAt       time.Time `db:"created_at"`
}

// Payout calculates this bet's share of the total pool given the sum staked
// on the actual winner. Floor rounding; any remainder stays with the house.
func (b *TriviaBet) Payout(winningTotal int64, totalPool int64) int64 {
	if winningTotal == 0 {
		return 0
	}
	return (totalPool * b.Amount) / winningTotal
}
