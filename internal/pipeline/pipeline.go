// Package pipeline implements the photo-to-nutrition-record workflow.
//
// Stages run strictly in order: account resolution, dedup, blob upload,
// asset indexing, classification, nutrition computation, record insert.
// The first failure is terminal for the run; already-committed stages are
// never rolled back. The one softened outcome is a record-insert failure,
// reported as a partial success because the analysis work that preceded it
// is expensive and not cheaply repeatable.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Chloelee05/NutritionLM-bot/internal/models"
	"github.com/Chloelee05/NutritionLM-bot/internal/store"
	"github.com/Chloelee05/NutritionLM-bot/internal/vision"
)

// referenceZone is the fixed zone used for diary dates and times. Keeping
// it pinned (rather than UTC or the server's local zone) keeps diary dates
// stable regardless of where the bot is deployed.
var referenceZone = loadReferenceZone()

func loadReferenceZone() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		// Hosts without tzdata still get the correct fixed offset.
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

// ReferenceZone returns the fixed zone used for diary dates and times.
func ReferenceZone() *time.Location {
	return referenceZone
}

// Uploader stores photo blobs and derives their public URLs.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte) error
	PublicURL(key string) string
}

// Classifier identifies the food in an image.
type Classifier interface {
	Classify(ctx context.Context, image []byte) (vision.Result, error)
}

// FactsProvider computes nutrition facts for a classified food.
type FactsProvider interface {
	Compute(ctx context.Context, foodName string, ingredients []string) (json.RawMessage, error)
}

// Pipeline orchestrates one photo ingestion run per call.
type Pipeline struct {
	store      store.Store
	uploader   Uploader
	classifier Classifier
	facts      FactsProvider
	now        func() time.Time
}

// New creates a pipeline over the given collaborators.
func New(st store.Store, up Uploader, cl Classifier, fp FactsProvider) *Pipeline {
	return &Pipeline{
		store:      st,
		uploader:   up,
		classifier: cl,
		facts:      fp,
		now:        time.Now,
	}
}

// AssetKey derives the deterministic storage path and dedup key for an
// upload. Telegram's unique file identifier is stable per file, so
// re-delivery of the same photo maps to the same key.
func AssetKey(chatID int64, fileUniqueID string) string {
	return fmt.Sprintf("%d_%s.jpg", chatID, fileUniqueID)
}

// IngestPhoto runs the full pipeline for one inbound photo.
// The returned result always has an enumerable status; Err carries the
// wrapped taxonomy error for failed and partial-success outcomes.
func (p *Pipeline) IngestPhoto(ctx context.Context, chatID int64, image []byte, fileUniqueID string) models.PipelineResult {
	runID := uuid.NewString()
	slog.Debug("Pipeline run started", "run_id", runID, "chat_id", chatID, "bytes", len(image))

	// Stage 1: resolve a verified account. No store writes or service
	// calls happen for unlinked chats.
	account, err := p.store.FindAccountByChatID(chatID)
	if err != nil {
		slog.Error("Pipeline account lookup failed", "error", err, "run_id", runID, "chat_id", chatID)
		return models.PipelineResult{Status: models.PipelineFailed, RunID: runID,
			Err: fmt.Errorf("%w: account lookup failed: %v", models.ErrPersistence, err)}
	}
	if account == nil || !account.Verified {
		slog.Debug("Pipeline rejected unlinked chat", "run_id", runID, "chat_id", chatID)
		return models.PipelineResult{Status: models.PipelineNotLinked, RunID: runID, Err: models.ErrAccountNotLinked}
	}

	// Stage 2: dedup by asset key. A hit means this exact upload was
	// already processed; nothing further runs.
	key := AssetKey(chatID, fileUniqueID)
	existing, err := p.store.FindAssetByKey(key)
	if err != nil {
		slog.Error("Pipeline dedup check failed", "error", err, "run_id", runID, "key", key)
		return models.PipelineResult{Status: models.PipelineFailed, RunID: runID,
			Err: fmt.Errorf("%w: dedup check failed: %v", models.ErrPersistence, err)}
	}
	if existing != nil {
		slog.Info("Pipeline short-circuited on duplicate asset", "run_id", runID, "key", key)
		return models.PipelineResult{Status: models.PipelineDuplicate, RunID: runID, Err: models.ErrDuplicateAsset}
	}

	// Stage 3: blob upload. The run id is logged before the write so an
	// orphaned blob (upload committed, index insert failed) can be found
	// by a reconciliation sweep later.
	slog.Info("Pipeline uploading blob", "run_id", runID, "key", key)
	if err := p.uploader.Upload(ctx, key, image); err != nil {
		slog.Error("Pipeline blob upload failed", "error", err, "run_id", runID, "key", key)
		return models.PipelineResult{Status: models.PipelineFailed, RunID: runID, Err: err}
	}

	// Stage 4: asset index insert. Failure here leaves the blob without an
	// index entry; accepted inconsistency, no rollback.
	asset := &models.Asset{
		UserID:    account.ID,
		Key:       key,
		PublicURL: p.uploader.PublicURL(key),
		UploadID:  runID,
	}
	if err := p.store.InsertAsset(asset); err != nil {
		slog.Error("Pipeline asset insert failed, blob is orphaned", "error", err, "run_id", runID, "key", key)
		return models.PipelineResult{Status: models.PipelineFailed, RunID: runID,
			Err: fmt.Errorf("%w: asset insert failed: %v", models.ErrPersistence, err)}
	}

	// Stage 5: classification. Nothing-detected and not-food end the run
	// without a record and without touching the nutrition service.
	visionResult, err := p.classifier.Classify(ctx, image)
	if err != nil {
		slog.Error("Pipeline classification failed", "error", err, "run_id", runID)
		return models.PipelineResult{Status: models.PipelineFailed, RunID: runID, Err: err}
	}
	switch visionResult.Outcome {
	case vision.OutcomeNothingDetected:
		return models.PipelineResult{Status: models.PipelineNothingDetected, RunID: runID}
	case vision.OutcomeNotFood:
		return models.PipelineResult{Status: models.PipelineNotFood, RunID: runID}
	}
	classification := visionResult.Classification

	// Stage 6: nutrition computation.
	facts, err := p.facts.Compute(ctx, classification.FoodName, classification.Ingredients)
	if err != nil {
		slog.Error("Pipeline nutrition computation failed", "error", err, "run_id", runID, "food", classification.FoodName)
		return models.PipelineResult{Status: models.PipelineFailed, RunID: runID, Err: err}
	}

	// Stage 7: record insert. Timestamps are captured in the reference
	// zone so diary dates do not shift with the deployment region.
	capturedAt := p.now().In(referenceZone)
	record := &models.NutritionRecord{
		UserID:      account.ID,
		ImageURL:    asset.PublicURL,
		Date:        capturedAt.Format("2006-01-02"),
		Time:        capturedAt.Format("15:04:05"),
		FoodName:    classification.FoodName,
		FoodType:    classification.FoodType,
		Ingredients: classification.Ingredients,
		Nutritions:  facts,
	}
	if err := p.store.InsertRecord(record); err != nil {
		// Analysis succeeded; surface the lost diary write as a warning
		// rather than discarding the whole run as failed.
		slog.Error("Pipeline record insert failed after successful analysis", "error", err, "run_id", runID, "food", classification.FoodName)
		return models.PipelineResult{Status: models.PipelinePartialSuccess, RunID: runID, FoodName: classification.FoodName,
			Err: fmt.Errorf("%w: record insert failed: %v", models.ErrPersistence, err)}
	}

	slog.Info("Pipeline run completed", "run_id", runID, "chat_id", chatID, "food", classification.FoodName)
	return models.PipelineResult{Status: models.PipelineSuccess, RunID: runID, FoodName: classification.FoodName, Record: record}
}
