// Package store provides storage backends for the NutritionLM bot.
//
// It defines the Store interface consumed by the linking flow and the photo
// pipeline, with SQLite and PostgreSQL implementations plus an in-memory
// store used in tests.
package store

import "github.com/Chloelee05/NutritionLM-bot/internal/models"

// Store defines the account, asset, and nutrition record operations needed
// by the bot. Accounts are created by the website registration surface; the
// bot only reads them and applies the single linking update.
type Store interface {
	// FindAccountByCode returns the account holding the verification code,
	// or nil if no account matches.
	FindAccountByCode(code string) (*models.Account, error)

	// FindAccountByChatID returns the account bound to the chat identity,
	// or nil if none is bound.
	FindAccountByChatID(chatID int64) (*models.Account, error)

	// LinkAccount applies the single linking update: sets verified, binds
	// the chat identity, and clears the verification code.
	LinkAccount(id int64, chatID int64) error

	// FindAssetByKey returns the asset indexed under the key, or nil if absent.
	FindAssetByKey(key string) (*models.Asset, error)

	// InsertAsset indexes a stored photo.
	InsertAsset(a *models.Asset) error

	// InsertRecord writes one nutrition diary entry.
	InsertRecord(r *models.NutritionRecord) error

	// ListRecordsByDate returns a user's diary entries for one calendar date
	// (YYYY-MM-DD in the reference zone), oldest first.
	ListRecordsByDate(userID int64, date string) ([]models.NutritionRecord, error)

	// Close releases the underlying database resources.
	Close() error
}

// Opts holds configuration for store construction.
type Opts struct {
	DSN string
}

// Option configures store construction.
type Option func(*Opts)

// WithDSN sets the database DSN (a file path for SQLite, a connection
// string for Postgres).
func WithDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}
