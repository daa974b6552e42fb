package repository

import (
	"context"
	"testing"

	"parley/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRepository_Model(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewSettingsRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no settings row", func(t *testing.T) {
		model, err := repo.GetModel(ctx, 100)
		require.NoError(t, err)
		assert.Nil(t, model)
	})

	t.Run("set and get", func(t *testing.T) {
		name := "gpt-4o"
		require.NoError(t, repo.SetModel(ctx, 100, &name))

		model, err := repo.GetModel(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, model)
		assert.Equal(t, "gpt-4o", *model)
	})

	t.Run("consume clears the override", func(t *testing.T) {
		model, err := repo.ConsumeModel(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, model)
		assert.Equal(t, "gpt-4o", *model)

		// A second consume finds nothing.
		model, err = repo.ConsumeModel(ctx, 100)
		require.NoError(t, err)
		assert.Nil(t, model)
	})

	t.Run("consume without a row", func(t *testing.T) {
		model, err := repo.ConsumeModel(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, model)
	})
}

func TestSettingsRepository_Personality(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewSettingsRepository(testDB.DB)
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		tag := "custom:Talk like a pirate."
		require.NoError(t, repo.SetPersonality(ctx, 100, &tag))

		personality, err := repo.GetPersonality(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, personality)
		assert.Equal(t, tag, *personality)
	})

	t.Run("personality survives model consumption", func(t *testing.T) {
		name := "gpt-4o"
		require.NoError(t, repo.SetModel(ctx, 100, &name))

		_, err := repo.ConsumeModel(ctx, 100)
		require.NoError(t, err)

		personality, err := repo.GetPersonality(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, personality)
		assert.Equal(t, "custom:Talk like a pirate.", *personality)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, repo.SetPersonality(ctx, 100, nil))

		personality, err := repo.GetPersonality(ctx, 100)
		require.NoError(t, err)
		assert.Nil(t, personality)
	})
}
