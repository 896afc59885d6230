package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Chloelee05/NutritionLM-bot/internal/models"
)

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// marshalIngredients encodes an ingredient list for a TEXT column.
func marshalIngredients(ingredients []string) (string, error) {
	if ingredients == nil {
		ingredients = []string{}
	}
	b, err := json.Marshal(ingredients)
	if err != nil {
		return "", fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	return string(b), nil
}

// scanAccountRow scans an Account from a single sql.Row, mapping
// sql.ErrNoRows to a nil account.
func scanAccountRow(row *sql.Row) (*models.Account, error) {
	var a models.Account
	var chatID sql.NullInt64
	var code sql.NullString
	err := row.Scan(&a.ID, &chatID, &code, &a.Verified, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan account failed: %w", err)
	}
	if chatID.Valid {
		a.ChatID = &chatID.Int64
	}
	if code.Valid {
		a.VerificationCode = &code.String
	}
	return &a, nil
}

// scanRecord scans a NutritionRecord from sql.Rows.
func scanRecord(rows *sql.Rows) (models.NutritionRecord, error) {
	var r models.NutritionRecord
	var ingredients, nutritions string
	var description, healthRating sql.NullString
	err := rows.Scan(
		&r.ID, &r.UserID, &r.ImageURL, &r.Date, &r.Time, &r.FoodName, &r.FoodType,
		&ingredients, &nutritions, &description, &healthRating, &r.CreatedAt,
	)
	if err != nil {
		return r, fmt.Errorf("scan nutrition record failed: %w", err)
	}
	if err := json.Unmarshal([]byte(ingredients), &r.Ingredients); err != nil {
		return r, fmt.Errorf("failed to unmarshal ingredients: %w", err)
	}
	r.Nutritions = json.RawMessage(nutritions)
	r.Description = description.String
	r.HealthRating = healthRating.String
	return r, nil
}
