package models

import (
	"time"
)

// EntryType represents the type of balance change
type EntryType string

const (
	EntryTypeTransferIn    EntryType = "transfer_in"
	EntryTypeTransferOut   EntryType = "transfer_out"
	EntryTypeMint          EntryType = "mint"
	EntryTypeSlotsBet      EntryType = "slots_bet"
	EntryTypeSlotsPayout   EntryType = "slots_payout"
	EntryTypeTriviaEscrow  EntryType = "trivia_escrow"
	EntryTypeTriviaPrize   EntryType = "trivia_prize"
	EntryTypeTriviaRefund  EntryType = "trivia_refund"
	EntryTypeBetStake      EntryType = "bet_stake"
	EntryTypeBetPayout     EntryType = "bet_payout"
	EntryTypeBetRefund     EntryType = "bet_refund"
)

// LedgerEntry represents a historical balance change for one account
type LedgerEntry struct {
	ID            int64          `db:"id"`
	Nick          string         `db:"nick"`
	BalanceBefore int64          `db:"balance_before"`
	BalanceAfter  int64          `db:"balance_after"`
	ChangeAmount  int64          `db:"change_amount"`
	EntryType     EntryType      `db:"entry_type"`
	Metadata      map[string]any `db:"metadata"`
	CreatedAt     time.Time      `db:"created_at"`
}
