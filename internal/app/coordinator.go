// Package app wires the domain stores together and routes operations to
// them, signalling which view regions need re-rendering after each mutation.
package app

import (
	"context"
	"sync"
	"time"

	"quantum/internal/conversation"
	"quantum/internal/feed"
	"quantum/internal/identity"
	"quantum/internal/models"
	"quantum/internal/notifications"
	"quantum/internal/storage"
)

// Tab identifies the visible top-level view.
type Tab string

const (
	TabNone     Tab = ""
	TabHome     Tab = "home"
	TabChats    Tab = "chats"
	TabProfile  Tab = "profile"
	TabSettings Tab = "settings"
)

func validTab(t Tab) bool {
	switch t {
	case TabHome, TabChats, TabProfile, TabSettings:
		return true
	}
	return false
}

// Region identifies an independently re-renderable slice of the view.
const (
	RegionFeed       = "feed"
	RegionChatList   = "chat_list"
	RegionChatWindow = "chat_window"
	RegionProfile    = "profile"
	RegionNav        = "nav"
)

// RenderFunc receives re-render signals for a region. The default sink
// publishes them on the notification surface.
type RenderFunc func(ctx context.Context, region string)

// FeedItem is a post decorated with viewer-relative state.
type FeedItem struct {
	models.Post
	LikeCount     int  `json:"likeCount"`
	LikedByViewer bool `json:"likedByViewer"`
	OwnedByViewer bool `json:"ownedByViewer"`
}

// ChatListItem summarizes a chat for list display.
type ChatListItem struct {
	ChatID      string          `json:"chatId"`
	Participant models.User     `json:"participant"`
	LastMessage *models.Message `json:"lastMessage,omitempty"`
	Active      bool            `json:"active"`
}

// ProfileView combines a user with their posts.
type ProfileView struct {
	User  models.User   `json:"user"`
	Posts []models.Post `json:"posts"`
}

// Coordinator routes operations to the stores and re-renders the regions a
// mutation affects. It holds the only piece of pure view state: the active tab.
type Coordinator struct {
	mu            sync.Mutex
	identity      *identity.Store
	feed          *feed.Store
	conversations *conversation.Store
	store         storage.Store
	toasts        notifications.Notifier
	render        RenderFunc
	search        *Debouncer

	activeTab Tab
}

// Options tune the coordinator. Zero values fall back to defaults.
type Options struct {
	SearchDebounce time.Duration
	Render         RenderFunc
}

func NewCoordinator(ids *identity.Store, posts *feed.Store, chats *conversation.Store,
	store storage.Store, toasts notifications.Notifier, opts Options) *Coordinator {
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = 300 * time.Millisecond
	}
	if opts.Render == nil {
		if pub, ok := toasts.(*notifications.Publisher); ok {
			opts.Render = pub.NotifyRender
		} else {
			opts.Render = func(context.Context, string) {}
		}
	}
	return &Coordinator{
		identity:      ids,
		feed:          posts,
		conversations: chats,
		store:         store,
		toasts:        toasts,
		render:        opts.Render,
		search:        NewDebouncer(opts.SearchDebounce),
		activeTab:     TabNone,
	}
}

// Bootstrap loads or seeds every store and triggers the first full render.
func (c *Coordinator) Bootstrap(ctx context.Context) error {
	if err := c.identity.LoadOrSeed(ctx); err != nil {
		return err
	}
	if err := c.conversations.LoadOrSeed(ctx); err != nil {
		return err
	}
	c.SwitchTab(ctx, TabHome)
	return nil
}

// SwitchTab changes the visible tab and re-renders it. Unknown targets are
// ignored.
func (c *Coordinator) SwitchTab(ctx context.Context, tab Tab) {
	if !validTab(tab) {
		return
	}
	c.mu.Lock()
	c.activeTab = tab
	c.mu.Unlock()

	c.render(ctx, RegionNav)
	switch tab {
	case TabHome:
		c.render(ctx, RegionFeed)
	case TabChats:
		c.render(ctx, RegionChatList)
		c.render(ctx, RegionChatWindow)
	case TabProfile:
		c.render(ctx, RegionProfile)
	}
}

// ActiveTab returns the currently visible tab.
func (c *Coordinator) ActiveTab() Tab {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeTab
}

// PublishPost creates a post and re-renders the feed and profile views.
func (c *Coordinator) PublishPost(ctx context.Context, content string) (*models.Post, error) {
	post, err := c.feed.CreatePost(ctx, content)
	if err != nil {
		return nil, err
	}
	c.render(ctx, RegionFeed)
	c.render(ctx, RegionProfile)
	return post, nil
}

// ToggleLike flips the viewer's like on a post and re-renders the feed.
func (c *Coordinator) ToggleLike(ctx context.Context, postID string) error {
	if err := c.feed.ToggleLike(ctx, postID); err != nil {
		return err
	}
	c.render(ctx, RegionFeed)
	return nil
}

// AddComment appends a comment and re-renders the feed.
func (c *Coordinator) AddComment(ctx context.Context, postID, content string) error {
	if err := c.feed.AddComment(ctx, postID, content); err != nil {
		return err
	}
	c.render(ctx, RegionFeed)
	return nil
}

// DeletePost removes the viewer's post and re-renders the feed and profile.
func (c *Coordinator) DeletePost(ctx context.Context, postID string) error {
	if err := c.feed.DeletePost(ctx, postID); err != nil {
		return err
	}
	c.render(ctx, RegionFeed)
	c.render(ctx, RegionProfile)
	return nil
}

// Feed returns the feed decorated for the current viewer.
func (c *Coordinator) Feed(ctx context.Context) ([]FeedItem, error) {
	posts, err := c.feed.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	viewer, _ := c.identity.Current()
	items := make([]FeedItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, FeedItem{
			Post:          p,
			LikeCount:     len(p.Likes),
			LikedByViewer: p.LikedBy(viewer.Username),
			OwnedByViewer: viewer.Username != "" && p.Author == viewer.Username,
		})
	}
	return items, nil
}

// Profile returns the user's profile view; unknown users resolve to a
// placeholder record so callers can still render an empty state.
func (c *Coordinator) Profile(ctx context.Context, username string) (*ProfileView, error) {
	user, ok := c.identity.GetByUsername(username)
	if !ok {
		user = models.User{Username: username, DisplayName: "Unknown User", Role: models.RoleUser}
	}
	posts, err := c.feed.ListByAuthor(ctx, username)
	if err != nil {
		return nil, err
	}
	return &ProfileView{User: user, Posts: posts}, nil
}

// SaveProfile applies a profile patch and re-renders every region that shows
// identity data.
func (c *Coordinator) SaveProfile(ctx context.Context, patch models.ProfilePatch) error {
	if err := c.identity.UpdateProfile(ctx, patch); err != nil {
		return err
	}
	c.render(ctx, RegionProfile)
	c.render(ctx, RegionFeed)
	c.render(ctx, RegionNav)
	return nil
}

// Logout clears the session and re-renders everything viewer-relative.
func (c *Coordinator) Logout(ctx context.Context) error {
	if err := c.identity.Logout(ctx); err != nil {
		return err
	}
	c.render(ctx, RegionNav)
	c.render(ctx, RegionFeed)
	c.render(ctx, RegionProfile)
	return nil
}

// ChatList summarizes every chat for the current viewer, resolving the
// counterpart through the directory with a placeholder fallback.
func (c *Coordinator) ChatList(ctx context.Context) ([]ChatListItem, error) {
	viewer, _ := c.identity.Current()
	active, hasActive := c.conversations.ActiveChat()

	chats := c.conversations.Chats()
	items := make([]ChatListItem, 0, len(chats))
	for _, chat := range chats {
		other, err := c.conversations.OtherParticipant(chat, viewer.Username)
		if err != nil {
			return nil, err
		}
		participant, ok := c.identity.GetByUsername(other)
		if !ok {
			participant = models.User{Username: other, DisplayName: other, Role: models.RoleUser}
		}
		items = append(items, ChatListItem{
			ChatID:      chat.ID,
			Participant: participant,
			LastMessage: chat.LastMessage,
			Active:      hasActive && chat.ID == active.ID,
		})
	}
	return items, nil
}

// OpenChat selects a chat and re-renders the messaging regions.
func (c *Coordinator) OpenChat(ctx context.Context, chatID string) (models.Chat, bool) {
	chat, ok := c.conversations.SelectChat(chatID)
	if ok {
		c.render(ctx, RegionChatList)
		c.render(ctx, RegionChatWindow)
	}
	return chat, ok
}

// SendMessage appends a message from the current user to the active chat.
// Without a session or active chat it is a no-op.
func (c *Coordinator) SendMessage(ctx context.Context, text string) (*models.Message, error) {
	viewer, ok := c.identity.Current()
	if !ok {
		return nil, nil
	}
	msg, err := c.conversations.SendMessage(ctx, viewer.Username, text)
	if err != nil {
		return nil, err
	}
	if msg != nil {
		c.render(ctx, RegionChatWindow)
		c.render(ctx, RegionChatList)
	}
	return msg, nil
}

// SearchUsers runs the directory search after the debounce window and hands
// the results to deliver. Rapid successive calls collapse to the last one.
func (c *Coordinator) SearchUsers(query string, deliver func([]models.User)) {
	c.search.Do(func() {
		deliver(c.identity.SearchUsers(query))
	})
}

// Theme returns the persisted theme preference, defaulting to light.
func (c *Coordinator) Theme(ctx context.Context) (string, error) {
	var theme string
	found, err := c.store.Load(ctx, storage.KeyTheme, &theme)
	if err != nil {
		return "", err
	}
	if !found || theme == "" {
		return "light", nil
	}
	return theme, nil
}

// ToggleTheme flips the persisted theme between light and dark.
func (c *Coordinator) ToggleTheme(ctx context.Context) (string, error) {
	theme, err := c.Theme(ctx)
	if err != nil {
		return "", err
	}
	if theme == "light" {
		theme = "dark"
	} else {
		theme = "light"
	}
	if err := c.store.Save(ctx, storage.KeyTheme, theme); err != nil {
		return "", err
	}
	return theme, nil
}

// Close releases coordinator resources.
func (c *Coordinator) Close() {
	c.search.Stop()
}
