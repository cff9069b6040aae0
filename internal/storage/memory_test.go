package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantum/internal/models"
)

func TestMemoryRoundTrip(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	users := []models.User{
		{Username: "@alice", DisplayName: "Alice"},
		{Username: "@bob", DisplayName: "Bob"},
		{Username: "@carol", DisplayName: "Carol"},
	}
	require.NoError(t, store.Save(ctx, KeyUsers, users))

	var got []models.User
	found, err := store.Load(ctx, KeyUsers, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, users, got, "order and field values survive the round trip")
}

func TestMemoryLoadMissingKey(t *testing.T) {
	store := NewMemory()

	var got []models.Post
	found, err := store.Load(context.Background(), KeyPosts, &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestMemoryDelete(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, KeyTheme, "dark"))
	require.NoError(t, store.Delete(ctx, KeyTheme))

	var theme string
	found, err := store.Load(ctx, KeyTheme, &theme)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryOverwriteIsLastWriteWins(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, KeyTheme, "dark"))
	require.NoError(t, store.Save(ctx, KeyTheme, "light"))

	var theme string
	found, err := store.Load(ctx, KeyTheme, &theme)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "light", theme)
}
