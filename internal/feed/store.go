// Package feed owns the post collection: publishing, liking, commenting,
// and deletion.
package feed

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"quantum/internal/identity"
	"quantum/internal/models"
	"quantum/internal/notifications"
	"quantum/internal/storage"
)

// Store mediates every post mutation through a whole-collection
// read-modify-write against the snapshot store. Posts are kept newest-first.
type Store struct {
	mu       sync.Mutex
	store    storage.Store
	identity *identity.Store
	toasts   notifications.Notifier
}

func New(store storage.Store, ids *identity.Store, toasts notifications.Notifier) *Store {
	return &Store{store: store, identity: ids, toasts: toasts}
}

func (s *Store) load(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if _, err := s.store.Load(ctx, storage.KeyPosts, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// CreatePost publishes a new post by the current user, prepending it to the
// feed. The author's display name and avatar are captured at publish time.
func (s *Store) CreatePost(ctx context.Context, content string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content = strings.TrimSpace(content)
	if content == "" {
		s.toasts.Notify(ctx, notifications.SeverityError, "Please write something to post")
		return nil, models.NewValidationError("Post content is empty")
	}
	author, ok := s.identity.Current()
	if !ok {
		s.toasts.Notify(ctx, notifications.SeverityError, "Please log in to post")
		return nil, models.NewUnauthorizedError("No active session")
	}

	posts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	post := models.Post{
		ID:           uuid.NewString(),
		Author:       author.Username,
		AuthorName:   author.DisplayName,
		AuthorAvatar: author.Avatar,
		Content:      content,
		Timestamp:    time.Now().UnixMilli(),
		Likes:        []string{},
		Comments:     []models.Comment{},
	}
	posts = append([]models.Post{post}, posts...)

	if err := s.store.Save(ctx, storage.KeyPosts, posts); err != nil {
		return nil, err
	}
	s.toasts.Notify(ctx, notifications.SeveritySuccess, "Post published successfully!")
	return &post, nil
}

// ToggleLike adds or removes the current user from a post's like set.
// Unknown post IDs and missing sessions are silent no-ops.
func (s *Store) ToggleLike(ctx context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.identity.Current()
	if !ok {
		return nil
	}

	posts, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i := range posts {
		if posts[i].ID != postID {
			continue
		}
		if posts[i].LikedBy(user.Username) {
			kept := posts[i].Likes[:0]
			for _, name := range posts[i].Likes {
				if name != user.Username {
					kept = append(kept, name)
				}
			}
			posts[i].Likes = kept
		} else {
			posts[i].Likes = append(posts[i].Likes, user.Username)
		}
		return s.store.Save(ctx, storage.KeyPosts, posts)
	}
	return nil
}

// AddComment appends a comment by the current user. Empty content, unknown
// post IDs, and missing sessions are silent no-ops.
func (s *Store) AddComment(ctx context.Context, postID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	user, ok := s.identity.Current()
	if !ok {
		return nil
	}

	posts, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i := range posts {
		if posts[i].ID != postID {
			continue
		}
		posts[i].Comments = append(posts[i].Comments, models.Comment{
			ID:         uuid.NewString(),
			Author:     user.Username,
			AuthorName: user.DisplayName,
			Content:    content,
			Timestamp:  time.Now().UnixMilli(),
		})
		return s.store.Save(ctx, storage.KeyPosts, posts)
	}
	return nil
}

// DeletePost removes a post owned by the current user. Deleting someone
// else's post is rejected.
func (s *Store) DeletePost(ctx context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.identity.Current()
	if !ok {
		return models.NewUnauthorizedError("No active session")
	}

	posts, err := s.load(ctx)
	if err != nil {
		return err
	}

	kept := posts[:0]
	removed := false
	for _, p := range posts {
		if p.ID == postID {
			if p.Author != user.Username {
				return models.NewUnauthorizedError("Cannot delete another user's post")
			}
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if !removed {
		return nil
	}

	if err := s.store.Save(ctx, storage.KeyPosts, kept); err != nil {
		return err
	}
	s.toasts.Notify(ctx, notifications.SeveritySuccess, "Post deleted")
	return nil
}

// ListAll returns the feed newest-first.
func (s *Store) ListAll(ctx context.Context) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// ListByAuthor returns the author's posts in feed order.
func (s *Store) ListByAuthor(ctx context.Context, username string) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Post
	for _, p := range posts {
		if p.Author == username {
			out = append(out, p)
		}
	}
	return out, nil
}
