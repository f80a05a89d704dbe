package service

import (
	"context"
	"fmt"
	"testing"

	"beansbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestLedgerService_Transfer_Success(t *testing.T) {
	ctx := context.Background()

	// Setup mocks
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockLedgerEntryRepository)

	mockUoW.SetRepositories(mockAccountRepo, mockLedgerRepo, nil, nil)

	service := NewLedgerService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetBalance", ctx, "alice").Return(int64(100), nil)
	mockAccountRepo.On("GetBalance", ctx, "bob").Return(int64(5), nil)
	mockAccountRepo.On("DebitBalance", ctx, "alice", int64(30)).Return(nil)
	mockAccountRepo.On("CreditBalance", ctx, "bob", int64(30)).Return(nil)

	// Both sides of the transfer leave an audit trail
	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.Nick == "alice" &&
			e.ChangeAmount == -30 &&
			e.BalanceBefore == 100 &&
			e.BalanceAfter == 70 &&
			e.EntryType == models.EntryTypeTransferOut
	})).Return(nil)
	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.Nick == "bob" &&
			e.ChangeAmount == 30 &&
			e.BalanceBefore == 5 &&
			e.BalanceAfter == 35 &&
			e.EntryType == models.EntryTypeTransferIn
	})).Return(nil)

	result, err := service.Transfer(ctx, "Alice", "Bob", 30)

	assert.NoError(t, err)
	assert.Equal(t, "alice", result.From)
	assert.Equal(t, "bob", result.To)
	assert.Equal(t, int64(70), result.FromBalance)
	assert.Equal(t, int64(35), result.ToBalance)

	// Conservation: the pair of balances sums to the same total
	assert.Equal(t, int64(100+5), result.FromBalance+result.ToBalance)

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
}

func TestLedgerService_Transfer_SelfTransfer(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)

	mockUoW.SetRepositories(mockAccountRepo, nil, nil, nil)

	service := NewLedgerService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	// Nick comparison is case-insensitive
	result, err := service.Transfer(ctx, "Alice", "alice", 10)

	assert.ErrorIs(t, err, ErrSelfTransfer)
	assert.Nil(t, result)
	mockAccountRepo.AssertNotCalled(t, "DebitBalance")
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestLedgerService_Transfer_NonPositiveAmount(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)

	mockUoW.SetRepositories(mockAccountRepo, nil, nil, nil)

	service := NewLedgerService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	for _, amount := range []int64{0, -5} {
		result, err := service.Transfer(ctx, "alice", "bob", amount)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.Nil(t, result)
	}

	mockAccountRepo.AssertNotCalled(t, "DebitBalance")
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestLedgerService_Transfer_InsufficientFunds(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockLedgerEntryRepository)

	mockUoW.SetRepositories(mockAccountRepo, mockLedgerRepo, nil, nil)

	service := NewLedgerService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetBalance", ctx, "alice").Return(int64(10), nil)
	mockAccountRepo.On("GetBalance", ctx, "bob").Return(int64(0), nil)
	mockAccountRepo.On("DebitBalance", ctx, "alice", int64(30)).
		Return(fmt.Errorf("%w: %q has 10, needs 30", ErrInsufficientFunds, "alice"))

	result, err := service.Transfer(ctx, "alice", "bob", 30)

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Nil(t, result)

	// The failed debit aborts the whole transfer: no credit, no entries
	mockAccountRepo.AssertNotCalled(t, "CreditBalance")
	mockLedgerRepo.AssertNotCalled(t, "Record")
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestLedgerService_Mint(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockLedgerEntryRepository)

	mockUoW.SetRepositories(mockAccountRepo, mockLedgerRepo, nil, nil)

	service := NewLedgerService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetBalance", ctx, "newnick").Return(int64(0), nil)
	mockAccountRepo.On("CreditBalance", ctx, "newnick", int64(50)).Return(nil)
	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.Nick == "newnick" &&
			e.EntryType == models.EntryTypeMint &&
			e.ChangeAmount == 50 &&
			e.BalanceAfter == 50
	})).Return(nil)

	// Minting to an unknown nick creates the account implicitly
	balance, err := service.Mint(ctx, "NewNick", 50)

	assert.NoError(t, err)
	assert.Equal(t, int64(50), balance)

	mockAccountRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
}

func TestLedgerService_Mint_NonPositiveAmount(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewLedgerService(mockFactory)

	_, err := service.Mint(ctx, "alice", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	mockFactory.AssertNotCalled(t, "Create")
}

func TestLedgerService_History(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockLedgerRepo := new(MockLedgerEntryRepository)

	mockUoW.SetRepositories(nil, mockLedgerRepo, nil, nil)

	service := NewLedgerService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	entries := []*models.LedgerEntry{
		{Nick: "alice", ChangeAmount: 50, EntryType: models.EntryTypeSlotsPayout, BalanceAfter: 147},
		{Nick: "alice", ChangeAmount: -3, EntryType: models.EntryTypeSlotsBet, BalanceAfter: 97},
	}
	mockLedgerRepo.On("GetByNick", ctx, "alice", 5).Return(entries, nil)

	got, err := service.History(ctx, "alice", 5)

	assert.NoError(t, err)
	assert.Equal(t, entries, got)
	mockLedgerRepo.AssertExpectations(t)
}

func TestLedgerService_TopN(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)

	mockUoW.SetRepositories(mockAccountRepo, nil, nil, nil)

	service := NewLedgerService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	top := []*models.Account{
		{Nick: "alice", Beans: 100},
		{Nick: "bob", Beans: 40},
	}
	mockAccountRepo.On("TopN", ctx, 5).Return(top, nil)

	accounts, err := service.TopN(ctx, 5)

	assert.NoError(t, err)
	assert.Equal(t, top, accounts)
}
