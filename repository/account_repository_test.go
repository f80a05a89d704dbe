package repository

import (
	"context"
	"testing"

	"beansbot/repository/testutil"
	"beansbot/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_CreditAndGet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("unknown nick reads as zero", func(t *testing.T) {
		balance, err := repo.GetBalance(ctx, "nobody")
		require.NoError(t, err)
		assert.Equal(t, int64(0), balance)

		account, err := repo.GetByNick(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("credit creates the account implicitly", func(t *testing.T) {
		err := repo.CreditBalance(ctx, "Alice", 50)
		require.NoError(t, err)

		// Nicks are keyed lowercased
		balance, err := repo.GetBalance(ctx, "ALICE")
		require.NoError(t, err)
		assert.Equal(t, int64(50), balance)

		account, err := repo.GetByNick(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, "alice", account.Nick)
		assert.Equal(t, int64(50), account.Beans)
		assert.False(t, account.CreatedAt.IsZero())
	})

	t.Run("credit accumulates", func(t *testing.T) {
		err := repo.CreditBalance(ctx, "alice", 25)
		require.NoError(t, err)

		balance, err := repo.GetBalance(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(75), balance)
	})
}

func TestAccountRepository_DebitBalance(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.CreditBalance(ctx, "bob", 40))

	t.Run("successful debit", func(t *testing.T) {
		err := repo.DebitBalance(ctx, "bob", 15)
		require.NoError(t, err)

		balance, err := repo.GetBalance(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, int64(25), balance)
	})

	t.Run("insufficient funds leaves balance untouched", func(t *testing.T) {
		err := repo.DebitBalance(ctx, "bob", 26)
		assert.ErrorIs(t, err, service.ErrInsufficientFunds)

		balance, err := repo.GetBalance(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, int64(25), balance)
	})

	t.Run("debit from unknown nick fails", func(t *testing.T) {
		err := repo.DebitBalance(ctx, "stranger", 1)
		assert.ErrorIs(t, err, service.ErrInsufficientFunds)
	})

	t.Run("exact balance debits to zero", func(t *testing.T) {
		err := repo.DebitBalance(ctx, "bob", 25)
		require.NoError(t, err)

		balance, err := repo.GetBalance(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, int64(0), balance)
	})
}

func TestAccountRepository_TotalAndTopN(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	total, err := repo.TotalInCirculation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	require.NoError(t, repo.CreditBalance(ctx, "alice", 100))
	require.NoError(t, repo.CreditBalance(ctx, "bob", 40))
	require.NoError(t, repo.CreditBalance(ctx, "carol", 40))
	require.NoError(t, repo.CreditBalance(ctx, "dave", 5))

	total, err = repo.TotalInCirculation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(185), total)

	top, err := repo.TopN(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)

	assert.Equal(t, "alice", top[0].Nick)
	// Ties order by nick ascending
	assert.Equal(t, "bob", top[1].Nick)
	assert.Equal(t, "carol", top[2].Nick)
}
