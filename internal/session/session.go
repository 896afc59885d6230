// Package session provides per-conversation mode tracking.
//
// The mode governs how the next inbound text message is interpreted.
// It is deliberately a pure lookup/replace table: any mode may follow any
// mode, and the handlers enforce which transitions make sense.
package session

import (
	"log/slog"
	"sync"

	"github.com/Chloelee05/NutritionLM-bot/internal/models"
)

// Store tracks the current session mode for each chat identity.
// Implementations must be safe for concurrent use; the transport may
// dispatch updates from different chats in parallel.
type Store interface {
	// Get returns the current mode for a chat. Chats that have never been
	// seen read as ModeIdle.
	Get(chatID int64) models.SessionMode

	// Set replaces the current mode for a chat.
	Set(chatID int64, mode models.SessionMode)
}

// Compile-time check that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// MemoryStore is a mutex-guarded in-memory session table. State is lost on
// restart, which is acceptable: every mode is re-enterable from the menu.
type MemoryStore struct {
	mu    sync.RWMutex
	modes map[int64]models.SessionMode
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{modes: make(map[int64]models.SessionMode)}
}

func (s *MemoryStore) Get(chatID int64) models.SessionMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mode, ok := s.modes[chatID]
	if !ok {
		return models.ModeIdle
	}
	return mode
}

func (s *MemoryStore) Set(chatID int64, mode models.SessionMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modes[chatID] = mode
	slog.Debug("Session mode set", "chat_id", chatID, "mode", mode)
}
