// Package linking implements the account linking flow.
//
// A website account is issued a one-time six-digit verification code out of
// band; redeeming it here binds the Telegram chat identity to the account
// and makes it eligible for the photo pipeline.
package linking

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/Chloelee05/NutritionLM-bot/internal/models"
	"github.com/Chloelee05/NutritionLM-bot/internal/store"
)

// codePattern matches exactly six decimal digits.
var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

// Service redeems verification codes against the account store.
type Service struct {
	store store.Store
}

// NewService creates a linking service backed by the given store.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// RedeemCode validates and redeems a verification code for a chat.
//
// Failure modes, in check order: models.ErrInvalidCode for anything that is
// not six decimal digits, models.ErrCodeNotFound when no account holds the
// code, and models.ErrPersistence when the linking update cannot be applied.
// There is no expiry and no attempt limit; the caller may retry freely.
func (s *Service) RedeemCode(ctx context.Context, chatID int64, rawInput string) (*models.Account, error) {
	if !codePattern.MatchString(rawInput) {
		slog.Debug("Linking rejected malformed code", "chat_id", chatID, "input_length", len(rawInput))
		return nil, models.ErrInvalidCode
	}

	account, err := s.store.FindAccountByCode(rawInput)
	if err != nil {
		slog.Error("Linking code lookup failed", "error", err, "chat_id", chatID)
		return nil, fmt.Errorf("%w: code lookup failed: %v", models.ErrPersistence, err)
	}
	if account == nil {
		slog.Debug("Linking code did not match any account", "chat_id", chatID)
		return nil, models.ErrCodeNotFound
	}

	// Single update: verify, bind the chat, consume the code. Once applied
	// the code can never be redeemed again.
	if err := s.store.LinkAccount(account.ID, chatID); err != nil {
		slog.Error("Linking update failed", "error", err, "chat_id", chatID, "account_id", account.ID)
		return nil, fmt.Errorf("%w: linking update failed: %v", models.ErrPersistence, err)
	}

	account.Verified = true
	account.ChatID = &chatID
	account.VerificationCode = nil

	slog.Info("Account linked", "chat_id", chatID, "account_id", account.ID)
	return account, nil
}
