// Package store provides storage backends for the NutritionLM bot.
//
// This file implements an SQLite-backed store for accounts, assets, and
// nutrition records.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/Chloelee05/NutritionLM-bot/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	// Determine DSN (required)
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	// Ensure the directory exists
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	slog.Debug("Opening SQLite database connection")
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure tables exist
	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) FindAccountByCode(code string) (*models.Account, error) {
	row := s.db.QueryRow(
		`SELECT id, chat_id, verification_code, verified, created_at, updated_at FROM accounts WHERE verification_code = ?`,
		code,
	)
	return scanAccountRow(row)
}

func (s *SQLiteStore) FindAccountByChatID(chatID int64) (*models.Account, error) {
	row := s.db.QueryRow(
		`SELECT id, chat_id, verification_code, verified, created_at, updated_at FROM accounts WHERE chat_id = ?`,
		chatID,
	)
	return scanAccountRow(row)
}

func (s *SQLiteStore) LinkAccount(id int64, chatID int64) error {
	res, err := s.db.Exec(
		`UPDATE accounts SET verified = 1, chat_id = ?, verification_code = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		chatID, id,
	)
	if err != nil {
		slog.Error("SQLiteStore LinkAccount failed", "error", err, "account_id", id)
		return fmt.Errorf("failed to link account %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("account %d not found", id)
	}
	slog.Debug("SQLiteStore LinkAccount succeeded", "account_id", id, "chat_id", chatID)
	return nil
}

func (s *SQLiteStore) FindAssetByKey(key string) (*models.Asset, error) {
	var a models.Asset
	err := s.db.QueryRow(
		`SELECT id, user_id, key, public_url, upload_id, created_at FROM assets WHERE key = ?`,
		key,
	).Scan(&a.ID, &a.UserID, &a.Key, &a.PublicURL, &a.UploadID, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore FindAssetByKey failed", "error", err, "key", key)
		return nil, fmt.Errorf("failed to query asset %s: %w", key, err)
	}
	return &a, nil
}

func (s *SQLiteStore) InsertAsset(a *models.Asset) error {
	res, err := s.db.Exec(
		`INSERT INTO assets (user_id, key, public_url, upload_id) VALUES (?, ?, ?, ?)`,
		a.UserID, a.Key, a.PublicURL, a.UploadID,
	)
	if err != nil {
		slog.Error("SQLiteStore InsertAsset failed", "error", err, "key", a.Key)
		return fmt.Errorf("failed to insert asset %s: %w", a.Key, err)
	}
	if id, err := res.LastInsertId(); err == nil {
		a.ID = id
	}
	slog.Debug("SQLiteStore InsertAsset succeeded", "key", a.Key, "user_id", a.UserID)
	return nil
}

func (s *SQLiteStore) InsertRecord(r *models.NutritionRecord) error {
	ingredients, err := marshalIngredients(r.Ingredients)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(
		`INSERT INTO nutrition_records (user_id, image_url, date, time, food_name, food_type, ingredients, nutritions, description, health_rating)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.UserID, r.ImageURL, r.Date, r.Time, r.FoodName, r.FoodType,
		ingredients, string(r.Nutritions), nilIfEmpty(r.Description), nilIfEmpty(r.HealthRating),
	)
	if err != nil {
		slog.Error("SQLiteStore InsertRecord failed", "error", err, "user_id", r.UserID, "food", r.FoodName)
		return fmt.Errorf("failed to insert nutrition record for user %d: %w", r.UserID, err)
	}
	if id, err := res.LastInsertId(); err == nil {
		r.ID = id
	}
	slog.Debug("SQLiteStore InsertRecord succeeded", "user_id", r.UserID, "food", r.FoodName)
	return nil
}

func (s *SQLiteStore) ListRecordsByDate(userID int64, date string) ([]models.NutritionRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, image_url, date, time, food_name, food_type, ingredients, nutritions, description, health_rating, created_at
		 FROM nutrition_records WHERE user_id = ? AND date = ? ORDER BY time`,
		userID, date,
	)
	if err != nil {
		slog.Error("SQLiteStore ListRecordsByDate query failed", "error", err, "user_id", userID, "date", date)
		return nil, fmt.Errorf("failed to query nutrition records: %w", err)
	}
	defer rows.Close()

	var records []models.NutritionRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			slog.Error("SQLiteStore ListRecordsByDate scan failed", "error", err)
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore ListRecordsByDate rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate record rows: %w", err)
	}
	slog.Debug("SQLiteStore ListRecordsByDate succeeded", "user_id", userID, "date", date, "count", len(records))
	return records, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
