package service

import (
	"context"
	"fmt"
	"testing"

	"beansbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTriviaTestMocks(t *testing.T) (*MockUnitOfWorkFactory, *MockUnitOfWork, *MockAccountRepository, *MockTriviaRepository, *MockTriviaBetRepository) {
	t.Helper()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockLedgerEntryRepository)
	mockTriviaRepo := new(MockTriviaRepository)
	mockBetRepo := new(MockTriviaBetRepository)

	mockUoW.SetRepositories(mockAccountRepo, mockLedgerRepo, mockTriviaRepo, mockBetRepo)
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockLedgerRepo.On("Record", mock.Anything, mock.Anything).Return(nil)

	return mockFactory, mockUoW, mockAccountRepo, mockTriviaRepo, mockBetRepo
}

func TestTriviaService_Add_ValidatesInput(t *testing.T) {
	ctx := context.Background()
	mockFactory := new(MockUnitOfWorkFactory)

	service := NewTriviaService(mockFactory, "house")

	tests := []struct {
		name     string
		question string
		answer   string
		prize    int64
		wantErr  error
	}{
		{"zero prize", "capital of France?", "paris", 0, ErrInvalidAmount},
		{"negative prize", "capital of France?", "paris", -5, ErrInvalidAmount},
		{"multi word answer", "capital of France?", "the city of paris", 10, ErrInvalidAnswer},
		{"punctuated answer", "capital of France?", "paris!", 10, ErrInvalidAnswer},
		{"empty answer", "capital of France?", "", 10, ErrInvalidAnswer},
		{"empty question", "   ", "paris", 10, ErrInvalidAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := service.Add(ctx, "alice", tt.question, tt.answer, tt.prize)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, q)
		})
	}

	// Validation failures never open a transaction
	mockFactory.AssertNotCalled(t, "Create")
}

func TestTriviaService_Add_EscrowsPrize(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockAccountRepo, mockTriviaRepo, _ := newTriviaTestMocks(t)

	service := NewTriviaService(mockFactory, "house")

	mockTriviaRepo.On("Create", mock.Anything, mock.MatchedBy(func(q *models.TriviaQuestion) bool {
		return q.Creator == "alice" && q.Answer == "paris" && q.Prize == 25
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.TriviaQuestion).ID = 7
	}).Return(nil)

	mockAccountRepo.On("GetBalance", mock.Anything, "alice").Return(int64(100), nil)
	mockAccountRepo.On("GetBalance", mock.Anything, "house").Return(int64(0), nil)
	mockAccountRepo.On("DebitBalance", mock.Anything, "alice", int64(25)).Return(nil)
	mockAccountRepo.On("CreditBalance", mock.Anything, "house", int64(25)).Return(nil)

	q, err := service.Add(ctx, "Alice", "capital of France?", "paris", 25)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), q.ID)
	assert.Equal(t, "alice", q.Creator)

	mockAccountRepo.AssertExpectations(t)
	mockTriviaRepo.AssertExpectations(t)
}

func TestTriviaService_Add_InsufficientFundsRollsBack(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockAccountRepo, mockTriviaRepo, _ := newTriviaTestMocks(t)

	service := NewTriviaService(mockFactory, "house")

	mockTriviaRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	mockAccountRepo.On("GetBalance", mock.Anything, "alice").Return(int64(5), nil)
	mockAccountRepo.On("GetBalance", mock.Anything, "house").Return(int64(0), nil)
	mockAccountRepo.On("DebitBalance", mock.Anything, "alice", int64(25)).
		Return(fmt.Errorf("%w: %q has 5, needs 25", ErrInsufficientFunds, "alice"))

	q, err := service.Add(ctx, "alice", "capital of France?", "paris", 25)

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Nil(t, q)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestTriviaService_FindByAnswer_OnlySingleTokens(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, _, mockTriviaRepo, _ := newTriviaTestMocks(t)

	service := NewTriviaService(mockFactory, "house")

	// Multi-word chatter never reaches the repository
	q, err := service.FindByAnswer(ctx, "i think it is paris")
	assert.NoError(t, err)
	assert.Nil(t, q)
	mockTriviaRepo.AssertNotCalled(t, "GetByAnswer")

	question := &models.TriviaQuestion{ID: 7, Creator: "alice", Answer: "paris", Prize: 25}
	mockTriviaRepo.On("GetByAnswer", mock.Anything, "Paris").Return(question, nil)

	q, err = service.FindByAnswer(ctx, " Paris ")
	assert.NoError(t, err)
	assert.Equal(t, question, q)
}

func TestTriviaService_PlaceBet(t *testing.T) {
	ctx := context.Background()

	question := &models.TriviaQuestion{ID: 7, Creator: "alice", Answer: "paris", Prize: 25}

	t.Run("success", func(t *testing.T) {
		mockFactory, _, mockAccountRepo, mockTriviaRepo, mockBetRepo := newTriviaTestMocks(t)
		service := NewTriviaService(mockFactory, "house")

		mockTriviaRepo.On("GetByID", mock.Anything, int64(7)).Return(question, nil)
		mockBetRepo.On("Get", mock.Anything, "bob", int64(7)).Return(nil, nil)
		mockAccountRepo.On("GetBalance", mock.Anything, "bob").Return(int64(100), nil)
		mockAccountRepo.On("GetBalance", mock.Anything, "house").Return(int64(25), nil)
		mockAccountRepo.On("DebitBalance", mock.Anything, "bob", int64(30)).Return(nil)
		mockAccountRepo.On("CreditBalance", mock.Anything, "house", int64(30)).Return(nil)
		mockBetRepo.On("Create", mock.Anything, mock.MatchedBy(func(b *models.TriviaBet) bool {
			return b.Bettor == "bob" && b.TriviaID == 7 && b.PredictedWinner == "carol" && b.Amount == 30
		})).Return(nil)

		bet, err := service.PlaceBet(ctx, "Bob", 7, "Carol", 30)

		assert.NoError(t, err)
		assert.Equal(t, "carol", bet.PredictedWinner)
		mockBetRepo.AssertExpectations(t)
	})

	t.Run("unknown question", func(t *testing.T) {
		mockFactory, _, _, mockTriviaRepo, _ := newTriviaTestMocks(t)
		service := NewTriviaService(mockFactory, "house")

		mockTriviaRepo.On("GetByID", mock.Anything, int64(99)).Return(nil, nil)

		bet, err := service.PlaceBet(ctx, "bob", 99, "carol", 30)

		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, bet)
	})

	t.Run("bet on creator", func(t *testing.T) {
		mockFactory, _, mockAccountRepo, mockTriviaRepo, _ := newTriviaTestMocks(t)
		service := NewTriviaService(mockFactory, "house")

		mockTriviaRepo.On("GetByID", mock.Anything, int64(7)).Return(question, nil)

		bet, err := service.PlaceBet(ctx, "bob", 7, "Alice", 30)

		assert.ErrorIs(t, err, ErrBetOnCreator)
		assert.Nil(t, bet)
		mockAccountRepo.AssertNotCalled(t, "DebitBalance")
	})

	t.Run("duplicate bet", func(t *testing.T) {
		mockFactory, _, mockAccountRepo, mockTriviaRepo, mockBetRepo := newTriviaTestMocks(t)
		service := NewTriviaService(mockFactory, "house")

		existing := &models.TriviaBet{Bettor: "bob", TriviaID: 7, PredictedWinner: "carol", Amount: 10}
		mockTriviaRepo.On("GetByID", mock.Anything, int64(7)).Return(question, nil)
		mockBetRepo.On("Get", mock.Anything, "bob", int64(7)).Return(existing, nil)

		bet, err := service.PlaceBet(ctx, "bob", 7, "dave", 30)

		assert.ErrorIs(t, err, ErrDuplicateBet)
		assert.Nil(t, bet)
		mockAccountRepo.AssertNotCalled(t, "DebitBalance")
	})

	t.Run("non-positive amount", func(t *testing.T) {
		mockFactory := new(MockUnitOfWorkFactory)
		service := NewTriviaService(mockFactory, "house")

		bet, err := service.PlaceBet(ctx, "bob", 7, "carol", 0)

		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.Nil(t, bet)
		mockFactory.AssertNotCalled(t, "Create")
	})
}

func TestTriviaService_Resolve_ProportionalPayouts(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockAccountRepo, mockTriviaRepo, mockBetRepo := newTriviaTestMocks(t)

	service := NewTriviaService(mockFactory, "house")

	question := &models.TriviaQuestion{ID: 7, Creator: "alice", Answer: "paris", Prize: 10}
	bets := []*models.TriviaBet{
		{Bettor: "bob", TriviaID: 7, PredictedWinner: "carol", Amount: 30},
		{Bettor: "dave", TriviaID: 7, PredictedWinner: "carol", Amount: 70},
		{Bettor: "eve", TriviaID: 7, PredictedWinner: "frank", Amount: 50},
	}

	mockTriviaRepo.On("GetByID", mock.Anything, int64(7)).Return(question, nil)
	mockBetRepo.On("ListByTrivia", mock.Anything, int64(7)).Return(bets, nil)

	mockAccountRepo.On("GetBalance", mock.Anything, mock.Anything).Return(int64(1000), nil)
	mockAccountRepo.On("DebitBalance", mock.Anything, "house", mock.Anything).Return(nil)
	mockAccountRepo.On("CreditBalance", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	mockBetRepo.On("DeleteByTrivia", mock.Anything, int64(7)).Return(nil)
	mockTriviaRepo.On("Delete", mock.Anything, int64(7)).Return(nil)

	result, err := service.Resolve(ctx, 7, "Carol")

	assert.NoError(t, err)
	assert.Equal(t, "carol", result.Winner)
	assert.Equal(t, int64(10), result.Prize)
	assert.Equal(t, int64(150), result.TotalPool)

	// Winners split the whole pool proportionally: floor(150*30/100) and
	// floor(150*70/100). The losing bet funds the difference.
	assert.Equal(t, int64(45), result.Payouts["bob"])
	assert.Equal(t, int64(105), result.Payouts["dave"])
	assert.NotContains(t, result.Payouts, "eve")
	assert.Empty(t, result.UnpaidWinners)

	mockAccountRepo.AssertCalled(t, "CreditBalance", mock.Anything, "carol", int64(10))
	mockAccountRepo.AssertCalled(t, "CreditBalance", mock.Anything, "bob", int64(45))
	mockAccountRepo.AssertCalled(t, "CreditBalance", mock.Anything, "dave", int64(105))
	mockBetRepo.AssertCalled(t, "DeleteByTrivia", mock.Anything, int64(7))
	mockTriviaRepo.AssertCalled(t, "Delete", mock.Anything, int64(7))
}

func TestTriviaService_Resolve_RoundingRemainderStaysWithHouse(t *testing.T) {
	// floor(150*30/70) + floor(150*40/70) = 64 + 85 = 149 of a 150 pool
	bets := []*models.TriviaBet{
		{Bettor: "bob", PredictedWinner: "carol", Amount: 30},
		{Bettor: "dave", PredictedWinner: "carol", Amount: 40},
	}

	assert.Equal(t, int64(64), bets[0].Payout(70, 150))
	assert.Equal(t, int64(85), bets[1].Payout(70, 150))
}

func TestTriviaService_Resolve_PrizeFailureAborts(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockAccountRepo, mockTriviaRepo, mockBetRepo := newTriviaTestMocks(t)

	service := NewTriviaService(mockFactory, "house")

	question := &models.TriviaQuestion{ID: 7, Creator: "alice", Answer: "paris", Prize: 500}
	mockTriviaRepo.On("GetByID", mock.Anything, int64(7)).Return(question, nil)
	mockBetRepo.On("ListByTrivia", mock.Anything, int64(7)).Return([]*models.TriviaBet{}, nil)

	mockAccountRepo.On("GetBalance", mock.Anything, mock.Anything).Return(int64(0), nil)
	mockAccountRepo.On("DebitBalance", mock.Anything, "house", int64(500)).
		Return(fmt.Errorf("%w: %q has 0, needs 500", ErrInsufficientFunds, "house"))

	result, err := service.Resolve(ctx, 7, "carol")

	assert.ErrorIs(t, err, ErrHouseInsolvent)
	assert.Nil(t, result)

	// The question survives an unpayable prize
	mockTriviaRepo.AssertNotCalled(t, "Delete")
	mockBetRepo.AssertNotCalled(t, "DeleteByTrivia")
}

func TestTriviaService_Resolve_UnpaidWinnersAreReported(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockAccountRepo, mockTriviaRepo, mockBetRepo := newTriviaTestMocks(t)

	service := NewTriviaService(mockFactory, "house")

	question := &models.TriviaQuestion{ID: 7, Creator: "alice", Answer: "paris", Prize: 10}
	bets := []*models.TriviaBet{
		{Bettor: "bob", TriviaID: 7, PredictedWinner: "carol", Amount: 30},
		{Bettor: "dave", TriviaID: 7, PredictedWinner: "carol", Amount: 70},
	}

	mockTriviaRepo.On("GetByID", mock.Anything, int64(7)).Return(question, nil)
	mockBetRepo.On("ListByTrivia", mock.Anything, int64(7)).Return(bets, nil)

	mockAccountRepo.On("GetBalance", mock.Anything, mock.Anything).Return(int64(50), nil)
	mockAccountRepo.On("DebitBalance", mock.Anything, "house", int64(10)).Return(nil)
	mockAccountRepo.On("DebitBalance", mock.Anything, "house", int64(30)).Return(nil)
	// The house runs dry before dave's cut
	mockAccountRepo.On("DebitBalance", mock.Anything, "house", int64(70)).
		Return(fmt.Errorf("%w: %q has 10, needs 70", ErrInsufficientFunds, "house"))
	mockAccountRepo.On("CreditBalance", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	mockBetRepo.On("DeleteByTrivia", mock.Anything, int64(7)).Return(nil)
	mockTriviaRepo.On("Delete", mock.Anything, int64(7)).Return(nil)

	result, err := service.Resolve(ctx, 7, "carol")

	assert.NoError(t, err)
	assert.Equal(t, int64(30), result.Payouts["bob"])
	assert.Equal(t, []string{"dave"}, result.UnpaidWinners)

	// Settlement still completes; the unpaid winner is reported, not retried
	mockTriviaRepo.AssertCalled(t, "Delete", mock.Anything, int64(7))
}

func TestTriviaService_Delete(t *testing.T) {
	ctx := context.Background()

	question := &models.TriviaQuestion{ID: 7, Creator: "alice", Answer: "paris", Prize: 25}

	t.Run("only the creator may delete", func(t *testing.T) {
		mockFactory, _, mockAccountRepo, mockTriviaRepo, mockBetRepo := newTriviaTestMocks(t)
		service := NewTriviaService(mockFactory, "house")

		mockTriviaRepo.On("GetByID", mock.Anything, int64(7)).Return(question, nil)
		mockBetRepo.On("ListByTrivia", mock.Anything, int64(7)).Return([]*models.TriviaBet{}, nil)

		err := service.Delete(ctx, 7, "bob")

		assert.ErrorIs(t, err, ErrPermissionDenied)
		mockTriviaRepo.AssertNotCalled(t, "Delete")
		mockAccountRepo.AssertNotCalled(t, "DebitBalance")
	})

	t.Run("refunds bets and prize", func(t *testing.T) {
		mockFactory, _, mockAccountRepo, mockTriviaRepo, mockBetRepo := newTriviaTestMocks(t)
		service := NewTriviaService(mockFactory, "house")

		bets := []*models.TriviaBet{
			{Bettor: "bob", TriviaID: 7, PredictedWinner: "carol", Amount: 30},
			{Bettor: "dave", TriviaID: 7, PredictedWinner: "carol", Amount: 70},
		}

		mockTriviaRepo.On("GetByID", mock.Anything, int64(7)).Return(question, nil)
		mockBetRepo.On("ListByTrivia", mock.Anything, int64(7)).Return(bets, nil)

		mockAccountRepo.On("GetBalance", mock.Anything, mock.Anything).Return(int64(1000), nil)
		mockAccountRepo.On("DebitBalance", mock.Anything, "house", mock.Anything).Return(nil)
		mockAccountRepo.On("CreditBalance", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		// Each bet refund deletes its own row so retries never pay twice
		mockBetRepo.On("Delete", mock.Anything, "bob", int64(7)).Return(nil)
		mockBetRepo.On("Delete", mock.Anything, "dave", int64(7)).Return(nil)
		mockTriviaRepo.On("Delete", mock.Anything, int64(7)).Return(nil)

		err := service.Delete(ctx, 7, "Alice")

		assert.NoError(t, err)
		mockAccountRepo.AssertCalled(t, "CreditBalance", mock.Anything, "bob", int64(30))
		mockAccountRepo.AssertCalled(t, "CreditBalance", mock.Anything, "dave", int64(70))
		mockAccountRepo.AssertCalled(t, "CreditBalance", mock.Anything, "alice", int64(25))
		mockBetRepo.AssertExpectations(t)
		mockTriviaRepo.AssertExpectations(t)
	})

	t.Run("failed refund aborts deletion", func(t *testing.T) {
		mockFactory, _, mockAccountRepo, mockTriviaRepo, mockBetRepo := newTriviaTestMocks(t)
		service := NewTriviaService(mockFactory, "house")

		bets := []*models.TriviaBet{
			{Bettor: "bob", TriviaID: 7, PredictedWinner: "carol", Amount: 30},
		}

		mockTriviaRepo.On("GetByID", mock.Anything, int64(7)).Return(question, nil)
		mockBetRepo.On("ListByTrivia", mock.Anything, int64(7)).Return(bets, nil)

		mockAccountRepo.On("GetBalance", mock.Anything, mock.Anything).Return(int64(5), nil)
		mockAccountRepo.On("DebitBalance", mock.Anything, "house", int64(30)).
			Return(fmt.Errorf("%w: %q has 5, needs 30", ErrInsufficientFunds, "house"))

		err := service.Delete(ctx, 7, "alice")

		assert.ErrorIs(t, err, ErrInsufficientFunds)
		mockTriviaRepo.AssertNotCalled(t, "Delete")
		mockBetRepo.AssertNotCalled(t, "Delete")
	})

	t.Run("unknown question", func(t *testing.T) {
		mockFactory, _, _, mockTriviaRepo, _ := newTriviaTestMocks(t)
		service := NewTriviaService(mockFactory, "house")

		mockTriviaRepo.On("GetByID", mock.Anything, int64(99)).Return(nil, nil)

		err := service.Delete(ctx, 99, "alice")

		assert.ErrorIs(t, err, ErrNotFound)
	})
}
