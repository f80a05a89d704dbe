package models

import (
	"time"
)

// SlotsResult represents the outcome of a single slot machine spin
type SlotsResult struct {
	Expected   []string
	Actual     []string
	Matches    int
	Bet        int64
	Payout     int64 // 0 on a losing spin
	Jackpot    bool
	NewBalance int64
}

// CooldownState is the per-user slot machine throttle state. Entries are
// ephemeral and expire from the store after a fixed TTL.
type CooldownState struct {
	RemainingPlays int
	CooldownUntil  time.Time
	AccumulatedBet int64
	UpdatedAt      time.Time
}
