// Package conversation owns the chat list, the active-chat selection, and
// message sending.
package conversation

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"quantum/internal/middleware"
	"quantum/internal/models"
	"quantum/internal/notifications"
	"quantum/internal/seedclient"
	"quantum/internal/storage"
)

// Store keeps the chat collection in memory after load; every mutation is
// written back as a whole snapshot.
type Store struct {
	mu     sync.Mutex
	store  storage.Store
	seeds  seedclient.Source
	toasts notifications.Notifier

	chats    []models.Chat
	activeID string
}

func New(store storage.Store, seeds seedclient.Source, toasts notifications.Notifier) *Store {
	return &Store{store: store, seeds: seeds, toasts: toasts}
}

// LoadOrSeed restores the persisted chat list, or populates it from the seed
// source on first run. No chat is active until SelectChat is called.
func (s *Store) LoadOrSeed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var chats []models.Chat
	found, err := s.store.Load(ctx, storage.KeyChats, &chats)
	if err != nil {
		return err
	}
	if found {
		s.chats = chats
		return nil
	}

	if s.seeds == nil {
		return nil
	}
	doc, err := s.seeds.Fetch(ctx)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to load initial data", slog.String("error", err.Error()))
		s.toasts.Notify(ctx, notifications.SeverityError, "Failed to load initial data")
		return nil
	}
	s.chats = append(s.chats, doc.Chats...)
	return s.store.Save(ctx, storage.KeyChats, s.chats)
}

// SelectChat makes the given chat active. Unknown IDs clear the selection.
func (s *Store) SelectChat(chatID string) (models.Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.chats {
		if c.ID == chatID {
			s.activeID = chatID
			return c, true
		}
	}
	s.activeID = ""
	return models.Chat{}, false
}

// ActiveChat returns the currently selected chat, if any.
func (s *Store) ActiveChat() (models.Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked()
}

func (s *Store) activeLocked() (models.Chat, bool) {
	if s.activeID == "" {
		return models.Chat{}, false
	}
	for _, c := range s.chats {
		if c.ID == s.activeID {
			return c, true
		}
	}
	return models.Chat{}, false
}

// SendMessage appends a text message from sender to the active chat and
// updates the chat's last-message preview. No active chat and empty text are
// silent no-ops.
func (s *Store) SendMessage(ctx context.Context, sender, text string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text = strings.TrimSpace(text)
	if text == "" || s.activeID == "" {
		return nil, nil
	}

	for i := range s.chats {
		if s.chats[i].ID != s.activeID {
			continue
		}
		msg := models.Message{
			ID:        uuid.NewString(),
			Text:      text,
			Sender:    sender,
			Timestamp: time.Now().UnixMilli(),
			Type:      models.MessageTypeText,
		}
		s.chats[i].Messages = append(s.chats[i].Messages, msg)
		s.chats[i].LastMessage = &msg
		if err := s.store.Save(ctx, storage.KeyChats, s.chats); err != nil {
			return nil, err
		}
		return &msg, nil
	}
	return nil, nil
}

// Chats returns the chat list in stored order.
func (s *Store) Chats() []models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Chat, len(s.chats))
	copy(out, s.chats)
	return out
}

// OtherParticipant resolves the counterpart of viewer in a two-party chat.
func (s *Store) OtherParticipant(chat models.Chat, viewer string) (string, error) {
	if viewer == "" {
		return "", models.NewValidationError("No viewer to resolve participant against")
	}
	for _, p := range chat.Participants {
		if p != viewer {
			return p, nil
		}
	}
	return "", models.NewNotFoundError("chat participant", chat.ID)
}
