// Package store provides storage backends for the NutritionLM bot.
//
// This file implements an in-memory store used by tests and single-shot
// local runs where no database is configured.
package store

import (
	"sync"
	"time"

	"github.com/Chloelee05/NutritionLM-bot/internal/models"
)

// Compile-time check that InMemoryStore implements Store.
var _ Store = (*InMemoryStore)(nil)

// InMemoryStore keeps all rows in process memory.
type InMemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	accounts []models.Account
	assets   []models.Asset
	records  []models.NutritionRecord
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1}
}

// SeedAccount inserts an account directly, standing in for the website
// registration surface.
func (s *InMemoryStore) SeedAccount(a models.Account) models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		a.ID = s.nextID
		s.nextID++
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	s.accounts = append(s.accounts, a)
	return a
}

func (s *InMemoryStore) FindAccountByCode(code string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.accounts {
		if s.accounts[i].VerificationCode != nil && *s.accounts[i].VerificationCode == code {
			a := s.accounts[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (s *InMemoryStore) FindAccountByChatID(chatID int64) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.accounts {
		if s.accounts[i].ChatID != nil && *s.accounts[i].ChatID == chatID {
			a := s.accounts[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (s *InMemoryStore) LinkAccount(id int64, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			s.accounts[i].Verified = true
			s.accounts[i].ChatID = &chatID
			s.accounts[i].VerificationCode = nil
			s.accounts[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return models.ErrPersistence
}

func (s *InMemoryStore) FindAssetByKey(key string) (*models.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.assets {
		if s.assets[i].Key == key {
			a := s.assets[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (s *InMemoryStore) InsertAsset(a *models.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextID
	s.nextID++
	a.CreatedAt = time.Now()
	s.assets = append(s.assets, *a)
	return nil
}

func (s *InMemoryStore) InsertRecord(r *models.NutritionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.nextID
	s.nextID++
	r.CreatedAt = time.Now()
	s.records = append(s.records, *r)
	return nil
}

func (s *InMemoryStore) ListRecordsByDate(userID int64, date string) ([]models.NutritionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.NutritionRecord
	for i := range s.records {
		if s.records[i].UserID == userID && s.records[i].Date == date {
			out = append(out, s.records[i])
		}
	}
	return out, nil
}

// Assets returns a copy of all indexed assets (for tests).
func (s *InMemoryStore) Assets() []models.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Asset, len(s.assets))
	copy(out, s.assets)
	return out
}

// Records returns a copy of all diary entries (for tests).
func (s *InMemoryStore) Records() []models.NutritionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.NutritionRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *InMemoryStore) Close() error {
	return nil
}
