// Package vision provides the client for the food classification service.
//
// The service accepts a multipart image upload and answers with a food
// classification. Three non-error outcomes exist: a real food, an explicit
// "not a food" sentinel, and HTTP 404 for "nothing detected". All branches
// are surfaced as enumerable result values rather than control flow.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/Chloelee05/NutritionLM-bot/internal/models"
)

// DefaultTimeout bounds a single classification request.
const DefaultTimeout = 30 * time.Second

// notFoodSentinel is the food name the service returns for non-food images.
const notFoodSentinel = "not a food"

// Outcome enumerates the classification outcomes.
type Outcome string

const (
	// OutcomeClassified means the service identified a real food.
	OutcomeClassified Outcome = "classified"
	// OutcomeNothingDetected means the service saw nothing in the image.
	OutcomeNothingDetected Outcome = "nothing_detected"
	// OutcomeNotFood means the service identified the subject as not a food.
	OutcomeNotFood Outcome = "not_food"
)

// Result is the outcome of one classification call.
type Result struct {
	Outcome        Outcome
	Classification *models.Classification // set when Outcome == OutcomeClassified
}

// Opts holds configuration for the vision client.
type Opts struct {
	BaseURL string
	Timeout time.Duration
}

// Option configures the vision client.
type Option func(*Opts)

// WithBaseURL sets the vision service base URL.
func WithBaseURL(u string) Option {
	return func(o *Opts) { o.BaseURL = u }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// Client calls the vision service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a vision client from the provided options.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("vision service base URL not set")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// classifyResponse mirrors the service's JSON response body.
type classifyResponse struct {
	FoodName    string   `json:"food_name"`
	Ingredients []string `json:"ingredients"`
	FoodType    string   `json:"food_type"`
}

// Classify sends the image bytes for classification. A nil error with a
// non-classified outcome is a valid answer; errors are reserved for
// transport failures, unexpected statuses, and unusable bodies.
func (c *Client) Classify(ctx context.Context, image []byte) (Result, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "photo.jpg")
	if err != nil {
		return Result{}, fmt.Errorf("%w: failed to build multipart body: %v", models.ErrExternalService, err)
	}
	if _, err := part.Write(image); err != nil {
		return Result{}, fmt.Errorf("%w: failed to write image part: %v", models.ErrExternalService, err)
	}
	if err := writer.Close(); err != nil {
		return Result{}, fmt.Errorf("%w: failed to finalize multipart body: %v", models.ErrExternalService, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", &body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: failed to build classify request: %v", models.ErrExternalService, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Vision classify request failed", "error", err)
		return Result{}, fmt.Errorf("%w: classify request failed: %v", models.ErrExternalService, err)
	}
	defer resp.Body.Close()

	// 404 is the service's "nothing detected" signal, not an error.
	if resp.StatusCode == http.StatusNotFound {
		slog.Debug("Vision service detected nothing")
		return Result{Outcome: OutcomeNothingDetected}, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Error("Vision classify returned unexpected status", "status", resp.StatusCode, "body", string(body))
		return Result{}, fmt.Errorf("%w: classify returned status %d", models.ErrExternalService, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: failed to read classify response: %v", models.ErrExternalService, err)
	}
	if len(raw) == 0 {
		return Result{}, fmt.Errorf("%w: classify returned empty body", models.ErrExternalService)
	}

	var parsed classifyResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		slog.Error("Vision classify response unparseable", "error", err, "body_length", len(raw))
		return Result{}, fmt.Errorf("%w: classify returned unparseable body: %v", models.ErrExternalService, err)
	}

	if strings.EqualFold(parsed.FoodName, notFoodSentinel) {
		slog.Debug("Vision service classified image as not food")
		return Result{Outcome: OutcomeNotFood}, nil
	}

	slog.Debug("Vision classify succeeded", "food", parsed.FoodName, "type", parsed.FoodType)
	return Result{
		Outcome: OutcomeClassified,
		Classification: &models.Classification{
			FoodName:    parsed.FoodName,
			Ingredients: parsed.Ingredients,
			FoodType:    parsed.FoodType,
		},
	}, nil
}
