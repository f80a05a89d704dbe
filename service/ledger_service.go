package service

import (
	"context"
	"fmt"
	"strings"

	"beansbot/events"
	"beansbot/models"
)

type ledgerService struct {
	uowFactory UnitOfWorkFactory
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
	}
}

// Balance returns an account's balance, 0 for unknown nicks
func (s *ledgerService) Balance(ctx context.Context, nick string) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	balance, err := uow.AccountRepository().GetBalance(ctx, nick)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	return balance, nil
}

// Transfer atomically moves amount between two accounts
func (s *ledgerService) Transfer(ctx context.Context, from, to string, amount int64) (*models.TransferResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	result, err := transferFunds(ctx, uow, from, to, amount,
		models.EntryTypeTransferOut, models.EntryTypeTransferIn, nil)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

// Mint unconditionally credits an account, increasing total circulation.
// The caller gates permissions; the ledger does not.
func (s *ledgerService) Mint(ctx context.Context, nick string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	nick = strings.ToLower(nick)

	before, err := uow.AccountRepository().GetBalance(ctx, nick)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	if err := uow.AccountRepository().CreditBalance(ctx, nick, amount); err != nil {
		return 0, fmt.Errorf("failed to mint beans: %w", err)
	}

	if err := recordEntry(ctx, uow, &models.LedgerEntry{
		Nick:          nick,
		BalanceBefore: before,
		BalanceAfter:  before + amount,
		ChangeAmount:  amount,
		EntryType:     models.EntryTypeMint,
	}); err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return before + amount, nil
}

// TotalInCirculation returns the sum of all balances
func (s *ledgerService) TotalInCirculation(ctx context.Context) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	total, err := uow.AccountRepository().TotalInCirculation(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get circulation: %w", err)
	}

	return total, nil
}

// TopN returns the n richest accounts
func (s *ledgerService) TopN(ctx context.Context, n int) ([]*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	accounts, err := uow.AccountRepository().TopN(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to get top accounts: %w", err)
	}

	return accounts, nil
}

// History returns an account's most recent ledger entries, newest first
func (s *ledgerService) History(ctx context.Context, nick string, limit int) ([]*models.LedgerEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.LedgerEntryRepository().GetByNick(ctx, nick, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}

	return entries, nil
}

// transferFunds is the single money-movement primitive. It debits `from` and
// credits `to` inside the caller's unit of work, records both ledger entries
// and queues balance change events for the post-commit flush. Total
// circulation is invariant under transferFunds.
func transferFunds(ctx context.Context, uow UnitOfWork, from, to string, amount int64, debitType, creditType models.EntryType, metadata map[string]any) (*models.TransferResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	from = strings.ToLower(from)
	to = strings.ToLower(to)
	if from == to {
		return nil, ErrSelfTransfer
	}

	fromBefore, err := uow.AccountRepository().GetBalance(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to get sender balance: %w", err)
	}

	toBefore, err := uow.AccountRepository().GetBalance(ctx, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipient balance: %w", err)
	}

	// The conditional debit re-verifies the balance atomically; the read
	// above is only for the ledger entries and the reply.
	if err := uow.AccountRepository().DebitBalance(ctx, from, amount); err != nil {
		return nil, err
	}

	if err := uow.AccountRepository().CreditBalance(ctx, to, amount); err != nil {
		return nil, err
	}

	if err := recordEntry(ctx, uow, &models.LedgerEntry{
		Nick:          from,
		BalanceBefore: fromBefore,
		BalanceAfter:  fromBefore - amount,
		ChangeAmount:  -amount,
		EntryType:     debitType,
		Metadata:      metadata,
	}); err != nil {
		return nil, err
	}

	if err := recordEntry(ctx, uow, &models.LedgerEntry{
		Nick:          to,
		BalanceBefore: toBefore,
		BalanceAfter:  toBefore + amount,
		ChangeAmount:  amount,
		EntryType:     creditType,
		Metadata:      metadata,
	}); err != nil {
		return nil, err
	}

	return &models.TransferResult{
		From:        from,
		To:          to,
		Amount:      amount,
		FromBalance: fromBefore - amount,
		ToBalance:   toBefore + amount,
	}, nil
}

// recordEntry writes one audit trail row and queues its balance change event.
func recordEntry(ctx context.Context, uow UnitOfWork, entry *models.LedgerEntry) error {
	if err := uow.LedgerEntryRepository().Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		Nick:         entry.Nick,
		OldBalance:   entry.BalanceBefore,
		NewBalance:   entry.BalanceAfter,
		EntryType:    entry.EntryType,
		ChangeAmount: entry.ChangeAmount,
	})

	return nil
}
