// Package models defines pipeline result structures for the NutritionLM bot.
package models

// PipelineStatus enumerates the terminal outcomes of a photo pipeline run.
// Every branch of the pipeline maps to exactly one status so the bot layer
// can render a distinct user-facing message per outcome.
type PipelineStatus string

const (
	// PipelineSuccess means the asset, analysis, and diary record all committed.
	PipelineSuccess PipelineStatus = "success"
	// PipelinePartialSuccess means analysis succeeded but the diary write
	// failed; reported as a warning because the analysis work is not
	// cheaply repeatable.
	PipelinePartialSuccess PipelineStatus = "partial_success"
	// PipelineNotLinked means no verified account is bound to the chat.
	PipelineNotLinked PipelineStatus = "not_linked"
	// PipelineDuplicate means the asset key was already indexed.
	PipelineDuplicate PipelineStatus = "duplicate"
	// PipelineNothingDetected means the vision service saw no food in the image.
	PipelineNothingDetected PipelineStatus = "nothing_detected"
	// PipelineNotFood means the vision service classified the image as not a food.
	PipelineNotFood PipelineStatus = "not_food"
	// PipelineFailed means a stage failed with an external-service or
	// persistence error before a record could be considered.
	PipelineFailed PipelineStatus = "failed"
)

// PipelineResult is the outcome of one photo pipeline run.
type PipelineResult struct {
	Status   PipelineStatus
	RunID    string
	FoodName string           // set on success and partial success
	Record   *NutritionRecord // set on success only
	Err      error            // set on failed and partial success
}
