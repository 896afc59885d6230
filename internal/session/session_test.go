package session

import (
	"sync"
	"testing"

	"github.com/Chloelee05/NutritionLM-bot/internal/models"
)

func TestMemoryStoreDefaultsToIdle(t *testing.T) {
	s := NewMemoryStore()
	if mode := s.Get(42); mode != models.ModeIdle {
		t.Errorf("expected idle for unseen chat, got %s", mode)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	modes := []models.SessionMode{
		models.ModeAwaitingCode,
		models.ModeFaqMenu,
		models.ModeFaqSearch,
		models.ModeIdle,
	}
	for _, m := range modes {
		s.Set(7, m)
		if got := s.Get(7); got != m {
			t.Errorf("round trip failed: set %s, got %s", m, got)
		}
	}
}

func TestMemoryStoreIsolatesChats(t *testing.T) {
	s := NewMemoryStore()
	s.Set(1, models.ModeAwaitingCode)
	s.Set(2, models.ModeFaqSearch)
	if got := s.Get(1); got != models.ModeAwaitingCode {
		t.Errorf("chat 1: expected awaiting_code, got %s", got)
	}
	if got := s.Get(2); got != models.ModeFaqSearch {
		t.Errorf("chat 2: expected faq_search, got %s", got)
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		chatID := int64(i % 5)
		go func() {
			defer wg.Done()
			s.Set(chatID, models.ModeAwaitingCode)
		}()
		go func() {
			defer wg.Done()
			mode := s.Get(chatID)
			if mode != models.ModeIdle && mode != models.ModeAwaitingCode {
				t.Errorf("unexpected mode %s", mode)
			}
		}()
	}
	wg.Wait()
}
