// Package identity owns the current-user session and the user directory.
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"quantum/internal/middleware"
	"quantum/internal/models"
	"quantum/internal/notifications"
	"quantum/internal/observability"
	"quantum/internal/seedclient"
	"quantum/internal/storage"
)

// Store holds the directory (insertion-ordered) and the current session.
// The directory persists as an ordered list of users so iteration order
// survives reloads; lookups scan the list, which is fine for the small
// working set this app assumes.
type Store struct {
	mu       sync.Mutex
	store    storage.Store
	seeds    seedclient.Source
	toasts   notifications.Notifier
	provider Provider // optional

	directory []models.User
	current   *models.User
}

// New creates an identity store. provider may be nil.
func New(store storage.Store, seeds seedclient.Source, toasts notifications.Notifier, provider Provider) *Store {
	return &Store{store: store, seeds: seeds, toasts: toasts, provider: provider}
}

// LoadOrSeed restores the persisted directory, or populates it from the seed
// source on first run, then restores or establishes the session. Seed fetch
// failure leaves the directory empty and the app usable.
func (s *Store) LoadOrSeed(ctx context.Context) error {
	ctx, span := observability.Tracer.Start(ctx, "identity.load_or_seed")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	var users []models.User
	found, err := s.store.Load(ctx, storage.KeyUsers, &users)
	if err != nil {
		return err
	}
	if found {
		s.directory = users
	} else if s.seeds != nil {
		doc, err := s.seeds.Fetch(ctx)
		if err != nil {
			middleware.Logger.ErrorContext(ctx, "failed to load initial data", slog.String("error", err.Error()))
			s.toasts.Notify(ctx, notifications.SeverityError, "Failed to load initial data")
		} else {
			s.directory = append(s.directory, doc.Users...)
			if err := s.store.Save(ctx, storage.KeyUsers, s.directory); err != nil {
				return err
			}
		}
	}

	var cur models.User
	found, err = s.store.Load(ctx, storage.KeyCurrentUser, &cur)
	if err != nil {
		return err
	}
	switch {
	case found:
		s.current = &cur
	case s.provider != nil:
		user, err := s.provider.CurrentUser()
		if err != nil {
			// Fall through to the no-session state; the app stays usable.
			middleware.Logger.ErrorContext(ctx, "identity provider rejected", slog.String("error", err.Error()))
		} else {
			return s.loginLocked(ctx, user)
		}
	case len(s.directory) > 0:
		// Demo path: auto-login the first seeded user.
		return s.loginLocked(ctx, s.directory[0])
	}

	return nil
}

// Login sets the current user, persists the session, inserts the user into
// the directory if absent, and emits a welcome notification.
func (s *Store) Login(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginLocked(ctx, user)
}

func (s *Store) loginLocked(ctx context.Context, user models.User) error {
	s.current = &user
	if err := s.store.Save(ctx, storage.KeyCurrentUser, user); err != nil {
		return err
	}

	if _, ok := s.findLocked(user.Username); !ok {
		s.directory = append(s.directory, user)
		if err := s.store.Save(ctx, storage.KeyUsers, s.directory); err != nil {
			return err
		}
	}

	s.toasts.Notify(ctx, notifications.SeveritySuccess, fmt.Sprintf("Welcome back, %s!", user.DisplayName))
	return nil
}

// UpdateProfile validates and merges the patch into the current user,
// rekeying the directory entry when the username changes. Historical
// author/sender snapshots in posts and messages are left untouched.
func (s *Store) UpdateProfile(ctx context.Context, patch models.ProfilePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return models.NewValidationError("No active session")
	}

	patch.Avatar = strings.TrimSpace(patch.Avatar)
	patch.DisplayName = strings.TrimSpace(patch.DisplayName)
	patch.Username = strings.TrimSpace(patch.Username)
	patch.Bio = strings.TrimSpace(patch.Bio)

	if patch.DisplayName == "" || patch.Username == "" {
		s.toasts.Notify(ctx, notifications.SeverityError, "Display name and username are required")
		return models.NewValidationError("Display name and username are required")
	}
	if !models.ValidUsername(patch.Username) {
		s.toasts.Notify(ctx, notifications.SeverityError,
			"Username must start with @ and contain 3-20 letters, numbers, or underscores")
		return models.NewValidationError("Invalid username format")
	}

	oldUsername := s.current.Username
	if patch.Username != oldUsername {
		if _, taken := s.findLocked(patch.Username); taken {
			s.toasts.Notify(ctx, notifications.SeverityError, "Username already taken")
			return models.NewValidationError("Username already taken")
		}
	}

	s.current.Avatar = patch.Avatar
	s.current.DisplayName = patch.DisplayName
	s.current.Username = patch.Username
	s.current.Bio = patch.Bio

	// Rekey: remove the old entry and append the updated one, matching the
	// delete-then-set insertion-order behavior of a map.
	kept := s.directory[:0]
	for _, u := range s.directory {
		if u.Username != oldUsername {
			kept = append(kept, u)
		}
	}
	s.directory = append(kept, *s.current)

	if err := s.store.Save(ctx, storage.KeyCurrentUser, *s.current); err != nil {
		return err
	}
	if err := s.store.Save(ctx, storage.KeyUsers, s.directory); err != nil {
		return err
	}

	s.toasts.Notify(ctx, notifications.SeveritySuccess, "Profile updated successfully")
	return nil
}

// GetByUsername looks up a directory entry. The boolean reports whether the
// user is known; callers must fall back to display defaults when it is false.
func (s *Store) GetByUsername(username string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.findLocked(username)
	return u, ok
}

func (s *Store) findLocked(username string) (models.User, bool) {
	for _, u := range s.directory {
		if u.Username == username {
			return u, true
		}
	}
	return models.User{}, false
}

// SearchUsers performs a case-insensitive substring match over username and
// display name. An empty query returns the full directory in insertion order.
func (s *Store) SearchUsers(query string) []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if query == "" {
		out := make([]models.User, len(s.directory))
		copy(out, s.directory)
		return out
	}

	q := strings.ToLower(query)
	var out []models.User
	for _, u := range s.directory {
		if strings.Contains(strings.ToLower(u.Username), q) ||
			strings.Contains(strings.ToLower(u.DisplayName), q) {
			out = append(out, u)
		}
	}
	return out
}

// AllUsers returns the full directory in insertion order.
func (s *Store) AllUsers() []models.User {
	return s.SearchUsers("")
}

// Current returns the logged-in user, if any.
func (s *Store) Current() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.User{}, false
	}
	return *s.current, true
}

// Logout clears the session only; the directory is retained.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := s.store.Delete(ctx, storage.KeyCurrentUser); err != nil {
		return err
	}
	s.toasts.Notify(ctx, notifications.SeverityInfo, "Logged out successfully")
	return nil
}
