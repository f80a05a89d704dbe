package service

import (
	"errors"
	"time"
)

// Sentinel errors the command surface branches on. Everything else is a
// wrapped internal failure.
var (
	// ErrInsufficientFunds means the paying account cannot cover the amount
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrHouseInsolvent means the house cannot cover a payout or refund
	ErrHouseInsolvent = errors.New("house has insufficient funds")

	// ErrSelfTransfer means a transfer named the same account on both sides
	ErrSelfTransfer = errors.New("cannot transfer to yourself")

	// ErrInvalidAmount means a non-positive amount was requested
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrNotFound means the referenced trivia question does not exist
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied means the requester may not perform the operation
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDuplicateBet means the bettor already has a bet on that question
	ErrDuplicateBet = errors.New("bet already placed on this question")

	// ErrBetOnCreator means the predicted winner is the question's creator
	ErrBetOnCreator = errors.New("cannot bet on the question's creator")

	// ErrBetTooSmall means the slots bet is below the current minimum
	ErrBetTooSmall = errors.New("bet is below the minimum")

	// ErrInvalidAnswer means the trivia answer is not a single alphanumeric token
	ErrInvalidAnswer = errors.New("answer must be a single alphanumeric word")
)

// CooldownError reports a rejected slots spin together with what it would
// take to play again.
type CooldownError struct {
	RequiredBet int64
	RetryAfter  time.Duration
}

func (e *CooldownError) Error() string {
	return "slots cooldown active"
}
