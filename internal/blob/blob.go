// Package blob provides the object-storage client used to persist photos.
//
// Photos are uploaded under their asset key to a Supabase-style storage
// REST endpoint; the public URL for a key is deterministic, so it can be
// derived without a second round trip.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/Chloelee05/NutritionLM-bot/internal/models"
)

// DefaultTimeout bounds a single upload request.
const DefaultTimeout = 30 * time.Second

// DefaultContentType is used when no type can be inferred from the key extension.
const DefaultContentType = "image/jpeg"

// Opts holds configuration for the storage client.
type Opts struct {
	BaseURL string
	Bucket  string
	APIKey  string
	Timeout time.Duration
}

// Option configures the storage client.
type Option func(*Opts)

// WithBaseURL sets the storage service base URL.
func WithBaseURL(u string) Option {
	return func(o *Opts) { o.BaseURL = u }
}

// WithBucket sets the storage bucket name.
func WithBucket(b string) Option {
	return func(o *Opts) { o.Bucket = b }
}

// WithAPIKey sets the bearer token for upload requests.
func WithAPIKey(k string) Option {
	return func(o *Opts) { o.APIKey = k }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// Client uploads photo blobs and derives their public URLs.
type Client struct {
	baseURL    string
	bucket     string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a storage client from the provided options.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("storage base URL not set")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket not set")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		bucket:     cfg.Bucket,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Upload stores data under key with a content type inferred from the key's
// extension. The upload is a plain PUT; re-uploading an existing key is
// prevented upstream by the dedup check, not here.
func (c *Client) Upload(ctx context.Context, key string, data []byte) error {
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: failed to build upload request: %v", models.ErrExternalService, err)
	}
	req.Header.Set("Content-Type", ContentTypeForKey(key))
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Blob upload request failed", "error", err, "key", key)
		return fmt.Errorf("%w: upload failed: %v", models.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Error("Blob upload rejected", "status", resp.StatusCode, "key", key, "body", string(body))
		return fmt.Errorf("%w: upload returned status %d", models.ErrExternalService, resp.StatusCode)
	}

	slog.Debug("Blob upload succeeded", "key", key, "bytes", len(data))
	return nil
}

// PublicURL returns the deterministic public URL for a stored key.
func (c *Client) PublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, key)
}

// ContentTypeForKey infers a content type from the key's extension,
// defaulting to a generic image type.
func ContentTypeForKey(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return DefaultContentType
}
