package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"parley/repository/testutil"
	"parley/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowanceRepository_TimeToFull(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAllowanceRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no account row", func(t *testing.T) {
		timeToFull, err := repo.GetTimeToFull(ctx, 100)
		require.NoError(t, err)
		assert.Nil(t, timeToFull)
	})

	t.Run("set and get", func(t *testing.T) {
		instant := time.Now().Add(6 * time.Hour).UTC().Truncate(time.Millisecond)
		require.NoError(t, repo.SetTimeToFull(ctx, 100, instant))

		timeToFull, err := repo.GetTimeToFull(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, timeToFull)
		assert.True(t, instant.Equal(*timeToFull))
	})

	t.Run("set overwrites", func(t *testing.T) {
		later := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Millisecond)
		require.NoError(t, repo.SetTimeToFull(ctx, 100, later))

		timeToFull, err := repo.GetTimeToFull(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, timeToFull)
		assert.True(t, later.Equal(*timeToFull))
	})
}

func TestAllowanceRepository_Spending(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAllowanceRepository(testDB.DB)
	ctx := context.Background()

	t.Run("record fills generated fields", func(t *testing.T) {
		record := testutil.CreateTestSpendingRecord(100)
		require.NoError(t, repo.RecordSpending(ctx, record))

		assert.NotZero(t, record.ID)
		assert.False(t, record.CreatedAt.IsZero())
	})

	t.Run("totals by user and overall", func(t *testing.T) {
		require.NoError(t, repo.RecordSpending(ctx, testutil.CreateTestSpendingRecordWithCost(100, 750_000)))
		require.NoError(t, repo.RecordSpending(ctx, testutil.CreateTestSpendingRecordWithCost(200, 2_000_000)))

		byUser, err := repo.TotalSpendingByUser(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(250_000+750_000), byUser)

		total, err := repo.TotalSpending(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(250_000+750_000+2_000_000), total)
	})

	t.Run("totals default to zero", func(t *testing.T) {
		byUser, err := repo.TotalSpendingByUser(ctx, 999)
		require.NoError(t, err)
		assert.Zero(t, byUser)
	})
}

func TestAllowanceTxRunner_RollsBackOnError(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	runner := NewAllowanceTxRunner(testDB.DB)

	boom := errors.New("boom")
	err := runner.Run(ctx, func(repo service.AllowanceRepository) error {
		require.NoError(t, repo.SetTimeToFull(ctx, 300, time.Now().Add(time.Hour)))
		require.NoError(t, repo.RecordSpending(ctx, testutil.CreateTestSpendingRecord(300)))
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Neither write survives the rollback.
	direct := NewAllowanceRepository(testDB.DB)
	timeToFull, err := direct.GetTimeToFull(ctx, 300)
	require.NoError(t, err)
	assert.Nil(t, timeToFull)

	total, err := direct.TotalSpendingByUser(ctx, 300)
	require.NoError(t, err)
	assert.Zero(t, total)
}
