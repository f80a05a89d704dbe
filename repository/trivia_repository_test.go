package repository

import (
	"context"
	"testing"

	"beansbot/events"
	"beansbot/repository/testutil"
	"beansbot/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriviaRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewTriviaRepository(testDB.DB)
	ctx := context.Background()

	t.Run("create assigns id and timestamps", func(t *testing.T) {
		q := testutil.CreateTestTrivia("Alice")
		err := repo.Create(ctx, q)
		require.NoError(t, err)

		assert.NotZero(t, q.ID)
		assert.False(t, q.CreatedAt.IsZero())
		assert.Equal(t, "alice", q.Creator)

		got, err := repo.GetByID(ctx, q.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, q.Question, got.Question)
		assert.Equal(t, q.Prize, got.Prize)
	})

	t.Run("missing id returns nil", func(t *testing.T) {
		got, err := repo.GetByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestTriviaRepository_GetByAnswer(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewTriviaRepository(testDB.DB)
	ctx := context.Background()

	first := testutil.CreateTestTriviaWithAnswer("alice", "Paris", 10)
	require.NoError(t, repo.Create(ctx, first))
	second := testutil.CreateTestTriviaWithAnswer("bob", "paris", 20)
	require.NoError(t, repo.Create(ctx, second))

	t.Run("matches case-insensitively", func(t *testing.T) {
		got, err := repo.GetByAnswer(ctx, "PARIS")
		require.NoError(t, err)
		require.NotNil(t, got)

		// Duplicated answers resolve oldest first
		assert.Equal(t, first.ID, got.ID)
	})

	t.Run("no match returns nil", func(t *testing.T) {
		got, err := repo.GetByAnswer(ctx, "london")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestTriviaRepository_ListAndDelete(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewTriviaRepository(testDB.DB)
	ctx := context.Background()

	q1 := testutil.CreateTestTriviaWithAnswer("alice", "one", 10)
	require.NoError(t, repo.Create(ctx, q1))
	q2 := testutil.CreateTestTriviaWithAnswer("alice", "two", 10)
	require.NoError(t, repo.Create(ctx, q2))
	q3 := testutil.CreateTestTriviaWithAnswer("bob", "three", 10)
	require.NoError(t, repo.Create(ctx, q3))

	t.Run("list recent newest first", func(t *testing.T) {
		questions, err := repo.ListRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, questions, 2)
		assert.Equal(t, q3.ID, questions[0].ID)
		assert.Equal(t, q2.ID, questions[1].ID)
	})

	t.Run("list by creator", func(t *testing.T) {
		questions, err := repo.ListByCreator(ctx, "ALICE")
		require.NoError(t, err)
		require.Len(t, questions, 2)
		assert.Equal(t, q2.ID, questions[0].ID)
	})

	t.Run("latest by creator", func(t *testing.T) {
		got, err := repo.GetLatestByCreator(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, q2.ID, got.ID)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, q1.ID))

		got, err := repo.GetByID(ctx, q1.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		// Deleting twice fails
		assert.Error(t, repo.Delete(ctx, q1.ID))
	})
}

func TestTriviaBetRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	triviaRepo := NewTriviaRepository(testDB.DB)
	betRepo := NewTriviaBetRepository(testDB.DB)
	ctx := context.Background()

	q := testutil.CreateTestTrivia("alice")
	require.NoError(t, triviaRepo.Create(ctx, q))

	t.Run("create and get", func(t *testing.T) {
		bet := testutil.CreateTestBet("Bob", q.ID, "Carol")
		err := betRepo.Create(ctx, bet)
		require.NoError(t, err)
		assert.Equal(t, "bob", bet.Bettor)
		assert.Equal(t, "carol", bet.PredictedWinner)

		got, err := betRepo.Get(ctx, "BOB", q.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(10), got.Amount)
	})

	t.Run("second bet by the same bettor is rejected", func(t *testing.T) {
		bet := testutil.CreateTestBet("bob", q.ID, "dave")
		err := betRepo.Create(ctx, bet)
		assert.ErrorIs(t, err, service.ErrDuplicateBet)
	})

	t.Run("list by trivia", func(t *testing.T) {
		other := testutil.CreateTestBet("eve", q.ID, "carol")
		require.NoError(t, betRepo.Create(ctx, other))

		bets, err := betRepo.ListByTrivia(ctx, q.ID)
		require.NoError(t, err)
		assert.Len(t, bets, 2)
	})

	t.Run("deleting the question cascades to its bets", func(t *testing.T) {
		require.NoError(t, triviaRepo.Delete(ctx, q.ID))

		bets, err := betRepo.ListByTrivia(ctx, q.ID)
		require.NoError(t, err)
		assert.Empty(t, bets)
	})
}

func TestUnitOfWork_RollbackDiscardsWrites(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	require.NoError(t, uow.AccountRepository().CreditBalance(ctx, "alice", 100))
	require.NoError(t, uow.Rollback())

	// The credit never happened
	repo := NewAccountRepository(testDB.DB)
	balance, err := repo.GetBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestUnitOfWork_CommitPersistsWrites(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	require.NoError(t, uow.AccountRepository().CreditBalance(ctx, "alice", 100))
	require.NoError(t, uow.AccountRepository().DebitBalance(ctx, "alice", 30))
	require.NoError(t, uow.Commit())

	repo := NewAccountRepository(testDB.DB)
	balance, err := repo.GetBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(70), balance)
}
