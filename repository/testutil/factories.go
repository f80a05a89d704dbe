package testutil

import (
	"beansbot/models"
)

// CreateTestTrivia creates a trivia question with default values
func CreateTestTrivia(creator string) *models.TriviaQuestion {
	return &models.TriviaQuestion{
		Creator:  creator,
		Question: "what is the capital of France?",
		Answer:   "paris",
		Prize:    25,
	}
}

// CreateTestTriviaWithAnswer creates a trivia question with a specific answer
func CreateTestTriviaWithAnswer(creator, answer string, prize int64) *models.TriviaQuestion {
	q := CreateTestTrivia(creator)
	q.Answer = answer
	q.Prize = prize
	return q
}

// CreateTestBet creates a trivia bet with default values
func CreateTestBet(bettor string, triviaID int64, predictedWinner string) *models.TriviaBet {
	return &models.TriviaBet{
		Bettor:          bettor,
		TriviaID:        triviaID,
		PredictedWinner: predictedWinner,
		Amount:          10,
	}
}

// CreateTestLedgerEntry creates a ledger entry with default values
func CreateTestLedgerEntry(nick string, entryType models.EntryType) *models.LedgerEntry {
	return &models.LedgerEntry{
		Nick:          nick,
		BalanceBefore: 100,
		BalanceAfter:  70,
		ChangeAmount:  -30,
		EntryType:     entryType,
		Metadata: map[string]any{
			"test": true,
		},
	}
}
