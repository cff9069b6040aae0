package feed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantum/internal/identity"
	"quantum/internal/models"
	"quantum/internal/notifications"
	"quantum/internal/storage"
)

func setupFeed(t *testing.T) (*Store, *identity.Store, *storage.Memory, *notifications.Recorder) {
	t.Helper()
	mem := storage.NewMemory()
	rec := notifications.NewRecorder()
	ids := identity.New(mem, nil, rec, nil)
	require.NoError(t, ids.Login(context.Background(), models.User{
		Username:    "@alice",
		DisplayName: "Alice",
		Avatar:      "https://example.com/a.png",
		Role:        models.RoleUser,
	}))
	rec.Reset()
	return New(mem, ids, rec), ids, mem, rec
}

func TestCreatePost(t *testing.T) {
	store, _, _, rec := setupFeed(t)
	ctx := context.Background()

	first, err := store.CreatePost(ctx, "hello world")
	require.NoError(t, err)
	second, err := store.CreatePost(ctx, "second post")
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "@alice", first.Author)
	assert.Equal(t, "Alice", first.AuthorName)
	assert.Equal(t, "https://example.com/a.png", first.AuthorAvatar)

	posts, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID, "newest post comes first")

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, "Post published successfully!", last.Message)
}

func TestCreatePostTrimsContent(t *testing.T) {
	store, _, _, _ := setupFeed(t)
	ctx := context.Background()

	post, err := store.CreatePost(ctx, "  hello world  ")
	require.NoError(t, err)
	assert.Equal(t, "hello world", post.Content)

	posts, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "hello world", posts[0].Content)
}

func TestCreatePostEmptyContent(t *testing.T) {
	store, _, _, rec := setupFeed(t)
	ctx := context.Background()

	for _, content := range []string{"", "   ", "\n\t"} {
		rec.Reset()
		_, err := store.CreatePost(ctx, content)
		require.Error(t, err)

		posts, err := store.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, posts)

		last, ok := rec.Last()
		require.True(t, ok)
		assert.Equal(t, notifications.SeverityError, last.Severity)
		assert.Equal(t, "Please write something to post", last.Message)
	}
}

func TestCreatePostWithoutSession(t *testing.T) {
	store, ids, _, rec := setupFeed(t)
	ctx := context.Background()
	require.NoError(t, ids.Logout(ctx))
	rec.Reset()

	_, err := store.CreatePost(ctx, "orphan")
	require.Error(t, err)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, "Please log in to post", last.Message)
}

func TestToggleLikeIsAnInvolution(t *testing.T) {
	store, _, _, _ := setupFeed(t)
	ctx := context.Background()

	post, err := store.CreatePost(ctx, "like me")
	require.NoError(t, err)

	require.NoError(t, store.ToggleLike(ctx, post.ID))
	posts, _ := store.ListAll(ctx)
	assert.Equal(t, []string{"@alice"}, posts[0].Likes)

	require.NoError(t, store.ToggleLike(ctx, post.ID))
	posts, _ = store.ListAll(ctx)
	assert.Empty(t, posts[0].Likes, "a second toggle restores the original membership")
}

func TestToggleLikeUnknownPostIsNoOp(t *testing.T) {
	store, _, _, _ := setupFeed(t)
	ctx := context.Background()

	_, err := store.CreatePost(ctx, "stable")
	require.NoError(t, err)

	require.NoError(t, store.ToggleLike(ctx, "missing-id"))
	posts, _ := store.ListAll(ctx)
	assert.Empty(t, posts[0].Likes)
}

func TestAddComment(t *testing.T) {
	store, _, _, _ := setupFeed(t)
	ctx := context.Background()

	post, err := store.CreatePost(ctx, "discuss")
	require.NoError(t, err)

	require.NoError(t, store.AddComment(ctx, post.ID, "first"))
	require.NoError(t, store.AddComment(ctx, post.ID, "  second  "))
	require.NoError(t, store.AddComment(ctx, post.ID, ""))

	posts, _ := store.ListAll(ctx)
	require.Len(t, posts[0].Comments, 2, "empty comments are dropped silently")
	assert.Equal(t, "first", posts[0].Comments[0].Content)
	assert.Equal(t, "second", posts[0].Comments[1].Content, "comments persist trimmed")
	assert.Equal(t, "@alice", posts[0].Comments[0].Author)
}

func TestDeletePost(t *testing.T) {
	store, _, _, rec := setupFeed(t)
	ctx := context.Background()

	post, err := store.CreatePost(ctx, "temporary")
	require.NoError(t, err)
	rec.Reset()

	require.NoError(t, store.DeletePost(ctx, post.ID))

	posts, _ := store.ListAll(ctx)
	assert.Empty(t, posts)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, "Post deleted", last.Message)
}

func TestDeletePostOwnershipEnforced(t *testing.T) {
	store, ids, _, _ := setupFeed(t)
	ctx := context.Background()

	post, err := store.CreatePost(ctx, "alice's post")
	require.NoError(t, err)

	// Another user takes over the session and tries to delete it.
	require.NoError(t, ids.Login(ctx, models.User{
		Username: "@mallory", DisplayName: "Mallory", Role: models.RoleUser,
	}))
	err = store.DeletePost(ctx, post.ID)
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)

	posts, _ := store.ListAll(ctx)
	assert.Len(t, posts, 1)
}

func TestDeletePostUnknownIDIsNoOp(t *testing.T) {
	store, _, _, rec := setupFeed(t)
	ctx := context.Background()

	_, err := store.CreatePost(ctx, "keep me")
	require.NoError(t, err)
	rec.Reset()

	require.NoError(t, store.DeletePost(ctx, "missing-id"))
	posts, _ := store.ListAll(ctx)
	assert.Len(t, posts, 1)
	_, ok := rec.Last()
	assert.False(t, ok, "no toast for a missing post")
}

func TestListByAuthor(t *testing.T) {
	store, ids, _, _ := setupFeed(t)
	ctx := context.Background()

	_, err := store.CreatePost(ctx, "by alice")
	require.NoError(t, err)

	require.NoError(t, ids.Login(ctx, models.User{
		Username: "@bob", DisplayName: "Bob", Role: models.RoleUser,
	}))
	_, err = store.CreatePost(ctx, "by bob")
	require.NoError(t, err)

	mine, err := store.ListByAuthor(ctx, "@alice")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "by alice", mine[0].Content)
}

func TestAuthorSnapshotSurvivesRename(t *testing.T) {
	store, ids, _, _ := setupFeed(t)
	ctx := context.Background()

	post, err := store.CreatePost(ctx, "historical")
	require.NoError(t, err)
	require.Equal(t, "@alice", post.Author)

	require.NoError(t, ids.UpdateProfile(ctx, models.ProfilePatch{
		DisplayName: "Alice Renamed",
		Username:    "@alice_new",
	}))

	posts, _ := store.ListAll(ctx)
	assert.Equal(t, "@alice", posts[0].Author, "embedded author snapshot is immutable")
	assert.Equal(t, "Alice", posts[0].AuthorName)
}
