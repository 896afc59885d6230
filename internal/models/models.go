// Package models defines the core data structures for the NutritionLM bot.
//
// It includes account, asset, and nutrition record types shared across
// modules, plus the error taxonomy used at pipeline stage boundaries.
package models

import (
	"encoding/json"
	"errors"
	"time"
)

// Error variables for better error handling and testability
var (
	// ErrInvalidCode indicates the verification code input is not exactly six decimal digits.
	ErrInvalidCode = errors.New("verification code must be six digits")
	// ErrCodeNotFound indicates no account holds the submitted verification code.
	ErrCodeNotFound = errors.New("verification code not found")
	// ErrAccountNotLinked indicates no verified account is bound to the chat.
	ErrAccountNotLinked = errors.New("account not linked")
	// ErrDuplicateAsset indicates the derived asset key is already indexed.
	ErrDuplicateAsset = errors.New("asset already exists")
	// ErrExternalService indicates a timeout, non-success status, or unusable
	// body from an external service call.
	ErrExternalService = errors.New("external service error")
	// ErrPersistence indicates a store write could not be applied.
	ErrPersistence = errors.New("persistence error")
)

// Account represents a website user record keyed by Telegram chat identity.
// Accounts are created by the website registration surface; this bot only
// redeems verification codes and reads linked accounts.
type Account struct {
	ID               int64     `json:"id"`
	ChatID           *int64    `json:"chat_id,omitempty"`           // nil until linked
	VerificationCode *string   `json:"verification_code,omitempty"` // nil once consumed
	Verified         bool      `json:"verified"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Asset represents one stored photo. The key is derived from the chat
// identity and Telegram's unique file identifier, so it doubles as the
// storage path and the deduplication key.
type Asset struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Key       string    `json:"key"`
	PublicURL string    `json:"public_url"`
	UploadID  string    `json:"upload_id"` // pipeline run identifier, for orphan reconciliation
	CreatedAt time.Time `json:"created_at"`
}

// NutritionRecord is one diary entry derived from a classified photo.
// Description and HealthRating are reserved for later population and are
// always empty at creation.
type NutritionRecord struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	ImageURL     string          `json:"image_url"`
	Date         string          `json:"date"` // YYYY-MM-DD in the reference zone
	Time         string          `json:"time"` // HH:MM:SS in the reference zone
	FoodName     string          `json:"food_name"`
	FoodType     string          `json:"food_type"`
	Ingredients  []string        `json:"ingredients"`
	Nutritions   json.RawMessage `json:"nutritions"` // opaque, stored verbatim
	Description  string          `json:"description,omitempty"`
	HealthRating string          `json:"health_rating,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Classification is a successful vision service result.
type Classification struct {
	FoodName    string   `json:"food_name"`
	Ingredients []string `json:"ingredients"`
	FoodType    string   `json:"food_type"`
}
