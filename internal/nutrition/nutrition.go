// Package nutrition provides the client for the nutrition facts service.
//
// The service accepts a food name and ingredient list and answers with a
// structured nutrition facts object. The facts schema is opaque to the bot
// and stored verbatim.
package nutrition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Chloelee05/NutritionLM-bot/internal/models"
)

// DefaultTimeout bounds a single computation request.
const DefaultTimeout = 30 * time.Second

// Opts holds configuration for the nutrition client.
type Opts struct {
	BaseURL string
	Timeout time.Duration
}

// Option configures the nutrition client.
type Option func(*Opts)

// WithBaseURL sets the nutrition service base URL.
func WithBaseURL(u string) Option {
	return func(o *Opts) { o.BaseURL = u }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// Client calls the nutrition service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a nutrition client from the provided options.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("nutrition service base URL not set")
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

// computeRequest mirrors the service's JSON request body.
type computeRequest struct {
	FoodName    string   `json:"food_name"`
	Ingredients []string `json:"ingredients"`
}

// computeResponse mirrors the service's JSON response body. The nutritions
// object is passed through without interpretation.
type computeResponse struct {
	Nutritions json.RawMessage `json:"nutritions"`
}

// Compute requests nutrition facts for a classified food.
func (c *Client) Compute(ctx context.Context, foodName string, ingredients []string) (json.RawMessage, error) {
	payload, err := json.Marshal(computeRequest{FoodName: foodName, Ingredients: ingredients})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal compute request: %v", models.ErrExternalService, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/nutrition", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build compute request: %v", models.ErrExternalService, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Nutrition compute request failed", "error", err, "food", foodName)
		return nil, fmt.Errorf("%w: compute request failed: %v", models.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Error("Nutrition compute returned unexpected status", "status", resp.StatusCode, "food", foodName, "body", string(body))
		return nil, fmt.Errorf("%w: compute returned status %d", models.ErrExternalService, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read compute response: %v", models.ErrExternalService, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: compute returned empty body", models.ErrExternalService)
	}

	var parsed computeResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		slog.Error("Nutrition compute response unparseable", "error", err, "food", foodName)
		return nil, fmt.Errorf("%w: compute returned unparseable body: %v", models.ErrExternalService, err)
	}
	if len(parsed.Nutritions) == 0 {
		return nil, fmt.Errorf("%w: compute response missing nutritions", models.ErrExternalService)
	}

	slog.Debug("Nutrition compute succeeded", "food", foodName)
	return parsed.Nutritions, nil
}
