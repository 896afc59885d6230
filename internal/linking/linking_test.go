package linking

import (
	"context"
	"errors"
	"testing"

	"github.com/Chloelee05/NutritionLM-bot/internal/models"
	"github.com/Chloelee05/NutritionLM-bot/internal/store"
)

func seedUnlinkedAccount(s *store.InMemoryStore, code string) models.Account {
	return s.SeedAccount(models.Account{VerificationCode: &code})
}

func TestRedeemCodeRejectsMalformedInput(t *testing.T) {
	st := store.NewInMemoryStore()
	seedUnlinkedAccount(st, "482913")
	svc := NewService(st)

	inputs := []string{"12a456", "12345", "1234567", "", "482 913", "abcdef"}
	for _, input := range inputs {
		_, err := svc.RedeemCode(context.Background(), 100, input)
		if !errors.Is(err, models.ErrInvalidCode) {
			t.Errorf("input %q: expected ErrInvalidCode, got %v", input, err)
		}
	}
}

func TestRedeemCodeNotFound(t *testing.T) {
	st := store.NewInMemoryStore()
	seedUnlinkedAccount(st, "482913")
	svc := NewService(st)

	_, err := svc.RedeemCode(context.Background(), 100, "111111")
	if !errors.Is(err, models.ErrCodeNotFound) {
		t.Errorf("expected ErrCodeNotFound, got %v", err)
	}
}

func TestRedeemCodeSuccessBindsChatAndConsumesCode(t *testing.T) {
	st := store.NewInMemoryStore()
	seeded := seedUnlinkedAccount(st, "482913")
	svc := NewService(st)

	account, err := svc.RedeemCode(context.Background(), 100, "482913")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.ID != seeded.ID {
		t.Errorf("expected account %d, got %d", seeded.ID, account.ID)
	}
	if !account.Verified {
		t.Error("account should be verified after redemption")
	}
	if account.ChatID == nil || *account.ChatID != 100 {
		t.Error("chat identity not bound")
	}

	linked, err := st.FindAccountByChatID(100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if linked == nil || !linked.Verified {
		t.Fatal("store does not reflect the linking update")
	}
	if linked.VerificationCode != nil {
		t.Error("verification code should be cleared after redemption")
	}
}

func TestRedeemCodeIsSingleUse(t *testing.T) {
	st := store.NewInMemoryStore()
	seedUnlinkedAccount(st, "482913")
	svc := NewService(st)

	if _, err := svc.RedeemCode(context.Background(), 100, "482913"); err != nil {
		t.Fatalf("first redemption failed: %v", err)
	}
	_, err := svc.RedeemCode(context.Background(), 200, "482913")
	if !errors.Is(err, models.ErrCodeNotFound) {
		t.Errorf("second redemption: expected ErrCodeNotFound, got %v", err)
	}
}

// failingLinkStore wraps the in-memory store and fails the linking update.
type failingLinkStore struct {
	*store.InMemoryStore
}

func (s *failingLinkStore) LinkAccount(id int64, chatID int64) error {
	return errors.New("store unavailable")
}

func TestRedeemCodeSurfacesPersistenceError(t *testing.T) {
	mem := store.NewInMemoryStore()
	seedUnlinkedAccount(mem, "482913")
	svc := NewService(&failingLinkStore{mem})

	_, err := svc.RedeemCode(context.Background(), 100, "482913")
	if !errors.Is(err, models.ErrPersistence) {
		t.Errorf("expected ErrPersistence, got %v", err)
	}

	// The account must remain unlinked and the code redeemable.
	account, _ := mem.FindAccountByCode("482913")
	if account == nil {
		t.Fatal("code should still be redeemable after a failed update")
	}
	if account.Verified {
		t.Error("account should not be verified after a failed update")
	}
}
