// Package store provides storage backends for the NutritionLM bot.
//
// This file implements a PostgreSQL-backed store for accounts, assets, and
// nutrition records.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/Chloelee05/NutritionLM-bot/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	// Determine DSN (required)
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	slog.Debug("Opening Postgres database connection")
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	// Configure connection pool for better performance
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure tables exist
	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) FindAccountByCode(code string) (*models.Account, error) {
	row := s.db.QueryRow(
		`SELECT id, chat_id, verification_code, verified, created_at, updated_at FROM accounts WHERE verification_code = $1`,
		code,
	)
	return scanAccountRow(row)
}

func (s *PostgresStore) FindAccountByChatID(chatID int64) (*models.Account, error) {
	row := s.db.QueryRow(
		`SELECT id, chat_id, verification_code, verified, created_at, updated_at FROM accounts WHERE chat_id = $1`,
		chatID,
	)
	return scanAccountRow(row)
}

func (s *PostgresStore) LinkAccount(id int64, chatID int64) error {
	res, err := s.db.Exec(
		`UPDATE accounts SET verified = TRUE, chat_id = $1, verification_code = NULL, updated_at = NOW() WHERE id = $2`,
		chatID, id,
	)
	if err != nil {
		slog.Error("PostgresStore LinkAccount failed", "error", err, "account_id", id)
		return fmt.Errorf("failed to link account %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("account %d not found", id)
	}
	slog.Debug("PostgresStore LinkAccount succeeded", "account_id", id, "chat_id", chatID)
	return nil
}

func (s *PostgresStore) FindAssetByKey(key string) (*models.Asset, error) {
	var a models.Asset
	err := s.db.QueryRow(
		`SELECT id, user_id, key, public_url, upload_id, created_at FROM assets WHERE key = $1`,
		key,
	).Scan(&a.ID, &a.UserID, &a.Key, &a.PublicURL, &a.UploadID, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore FindAssetByKey failed", "error", err, "key", key)
		return nil, fmt.Errorf("failed to query asset %s: %w", key, err)
	}
	return &a, nil
}

func (s *PostgresStore) InsertAsset(a *models.Asset) error {
	err := s.db.QueryRow(
		`INSERT INTO assets (user_id, key, public_url, upload_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		a.UserID, a.Key, a.PublicURL, a.UploadID,
	).Scan(&a.ID)
	if err != nil {
		slog.Error("PostgresStore InsertAsset failed", "error", err, "key", a.Key)
		return fmt.Errorf("failed to insert asset %s: %w", a.Key, err)
	}
	slog.Debug("PostgresStore InsertAsset succeeded", "key", a.Key, "user_id", a.UserID)
	return nil
}

func (s *PostgresStore) InsertRecord(r *models.NutritionRecord) error {
	ingredients, err := marshalIngredients(r.Ingredients)
	if err != nil {
		return err
	}
	err = s.db.QueryRow(
		`INSERT INTO nutrition_records (user_id, image_url, date, time, food_name, food_type, ingredients, nutritions, description, health_rating)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		r.UserID, r.ImageURL, r.Date, r.Time, r.FoodName, r.FoodType,
		ingredients, string(r.Nutritions), nilIfEmpty(r.Description), nilIfEmpty(r.HealthRating),
	).Scan(&r.ID)
	if err != nil {
		slog.Error("PostgresStore InsertRecord failed", "error", err, "user_id", r.UserID, "food", r.FoodName)
		return fmt.Errorf("failed to insert nutrition record for user %d: %w", r.UserID, err)
	}
	slog.Debug("PostgresStore InsertRecord succeeded", "user_id", r.UserID, "food", r.FoodName)
	return nil
}

func (s *PostgresStore) ListRecordsByDate(userID int64, date string) ([]models.NutritionRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, image_url, date, time, food_name, food_type, ingredients, nutritions, description, health_rating, created_at
		 FROM nutrition_records WHERE user_id = $1 AND date = $2 ORDER BY time`,
		userID, date,
	)
	if err != nil {
		slog.Error("PostgresStore ListRecordsByDate query failed", "error", err, "user_id", userID, "date", date)
		return nil, fmt.Errorf("failed to query nutrition records: %w", err)
	}
	defer rows.Close()

	var records []models.NutritionRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			slog.Error("PostgresStore ListRecordsByDate scan failed", "error", err)
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore ListRecordsByDate rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate record rows: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
