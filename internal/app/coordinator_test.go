package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantum/internal/conversation"
	"quantum/internal/feed"
	"quantum/internal/identity"
	"quantum/internal/models"
	"quantum/internal/notifications"
	"quantum/internal/seedclient"
	"quantum/internal/storage"
)

type fixtureSource struct {
	doc *seedclient.Document
}

func (f *fixtureSource) Fetch(context.Context) (*seedclient.Document, error) {
	return f.doc, nil
}

type renderLog struct {
	mu      sync.Mutex
	regions []string
}

func (r *renderLog) record(_ context.Context, region string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regions = append(r.regions, region)
}

func (r *renderLog) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regions = nil
}

func (r *renderLog) has(region string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, got := range r.regions {
		if got == region {
			return true
		}
	}
	return false
}

func setupCoordinator(t *testing.T) (*Coordinator, *renderLog, *notifications.Recorder) {
	t.Helper()
	mem := storage.NewMemory()
	rec := notifications.NewRecorder()
	src := &fixtureSource{doc: &seedclient.Document{
		Users: []models.User{
			{Username: "@alice", DisplayName: "Alice", Role: models.RoleUser},
			{Username: "@bob", DisplayName: "Bob", Role: models.RoleUser},
		},
		Chats: []models.Chat{
			{ID: "c1", Participants: []string{"@alice", "@bob"}},
		},
	}}

	ids := identity.New(mem, src, rec, nil)
	posts := feed.New(mem, ids, rec)
	chats := conversation.New(mem, src, rec)

	log := &renderLog{}
	c := NewCoordinator(ids, posts, chats, mem, rec, Options{
		SearchDebounce: 10 * time.Millisecond,
		Render:         log.record,
	})
	t.Cleanup(c.Close)

	require.NoError(t, c.Bootstrap(context.Background()))
	log.reset()
	rec.Reset()
	return c, log, rec
}

func TestBootstrapSelectsHomeTab(t *testing.T) {
	c, _, _ := setupCoordinator(t)
	assert.Equal(t, TabHome, c.ActiveTab())
}

func TestSwitchTab(t *testing.T) {
	c, log, _ := setupCoordinator(t)
	ctx := context.Background()

	c.SwitchTab(ctx, TabChats)
	assert.Equal(t, TabChats, c.ActiveTab())
	assert.True(t, log.has(RegionChatList))
	assert.True(t, log.has(RegionChatWindow))

	// Unknown targets leave the state machine where it was.
	c.SwitchTab(ctx, Tab("bogus"))
	assert.Equal(t, TabChats, c.ActiveTab())
}

func TestPublishPostRendersFeedAndProfile(t *testing.T) {
	c, log, _ := setupCoordinator(t)
	ctx := context.Background()

	post, err := c.PublishPost(ctx, "hello")
	require.NoError(t, err)
	require.NotNil(t, post)

	assert.True(t, log.has(RegionFeed))
	assert.True(t, log.has(RegionProfile))
}

func TestPublishPostFailureDoesNotRender(t *testing.T) {
	c, log, rec := setupCoordinator(t)

	_, err := c.PublishPost(context.Background(), "   ")
	require.Error(t, err)
	assert.False(t, log.has(RegionFeed))

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, "Please write something to post", last.Message)
}

func TestFeedDecoration(t *testing.T) {
	c, _, _ := setupCoordinator(t)
	ctx := context.Background()

	post, err := c.PublishPost(ctx, "decorate me")
	require.NoError(t, err)
	require.NoError(t, c.ToggleLike(ctx, post.ID))

	items, err := c.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].LikeCount)
	assert.True(t, items[0].LikedByViewer)
	assert.True(t, items[0].OwnedByViewer)
}

func TestSendMessageRendersChatRegions(t *testing.T) {
	c, log, _ := setupCoordinator(t)
	ctx := context.Background()

	_, ok := c.OpenChat(ctx, "c1")
	require.True(t, ok)
	log.reset()

	msg, err := c.SendMessage(ctx, "hi")
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "@alice", msg.Sender)
	assert.True(t, log.has(RegionChatWindow))
	assert.True(t, log.has(RegionChatList))
}

func TestSendMessageWithoutActiveChat(t *testing.T) {
	c, log, _ := setupCoordinator(t)

	msg, err := c.SendMessage(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Nil(t, msg)
	assert.False(t, log.has(RegionChatWindow))
}

func TestChatListResolvesCounterpart(t *testing.T) {
	c, _, _ := setupCoordinator(t)

	items, err := c.ChatList(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "@bob", items[0].Participant.Username)
	assert.Equal(t, "Bob", items[0].Participant.DisplayName)
}

func TestProfileUnknownUserFallsBack(t *testing.T) {
	c, _, _ := setupCoordinator(t)

	view, err := c.Profile(context.Background(), "@ghost")
	require.NoError(t, err)
	assert.Equal(t, "@ghost", view.User.Username)
	assert.Equal(t, "Unknown User", view.User.DisplayName)
	assert.Empty(t, view.Posts)
}

func TestThemeToggle(t *testing.T) {
	c, _, _ := setupCoordinator(t)
	ctx := context.Background()

	theme, err := c.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, "light", theme, "light is the default")

	theme, err = c.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dark", theme)

	theme, err = c.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, "light", theme)
}

func TestSearchUsersDebounces(t *testing.T) {
	c, _, _ := setupCoordinator(t)

	results := make(chan []models.User, 3)
	deliver := func(users []models.User) { results <- users }

	// Rapid keystrokes collapse to the final query.
	c.SearchUsers("a", deliver)
	c.SearchUsers("al", deliver)
	c.SearchUsers("alice", deliver)

	select {
	case users := <-results:
		require.Len(t, users, 1)
		assert.Equal(t, "@alice", users[0].Username)
	case <-time.After(time.Second):
		t.Fatal("debounced search never fired")
	}

	select {
	case <-results:
		t.Fatal("intermediate queries should have been cancelled")
	case <-time.After(50 * time.Millisecond):
	}
}
