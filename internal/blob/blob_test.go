package blob

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Chloelee05/NutritionLM-bot/internal/models"
)

func TestUploadSendsKeyContentTypeAndAuth(t *testing.T) {
	var gotPath, gotContentType, gotAuth string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient(WithBaseURL(srv.URL), WithBucket("meal-photos"), WithAPIKey("secret"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Upload(context.Background(), "100_abc.jpg", []byte("imgdata")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/storage/v1/object/meal-photos/100_abc.jpg" {
		t.Errorf("unexpected upload path: %s", gotPath)
	}
	if gotContentType != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", gotContentType)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if string(gotBody) != "imgdata" {
		t.Errorf("body not forwarded: %q", gotBody)
	}
}

func TestUploadRejectedStatusIsExternalServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := NewClient(WithBaseURL(srv.URL), WithBucket("meal-photos"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = c.Upload(context.Background(), "100_abc.jpg", []byte("imgdata"))
	if !errors.Is(err, models.ErrExternalService) {
		t.Errorf("expected ErrExternalService, got %v", err)
	}
}

func TestPublicURLIsDeterministic(t *testing.T) {
	c, err := NewClient(WithBaseURL("https://storage.example.com/"), WithBucket("meal-photos"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "https://storage.example.com/storage/v1/object/public/meal-photos/100_abc.jpg"
	if got := c.PublicURL("100_abc.jpg"); got != want {
		t.Errorf("unexpected public URL: %s", got)
	}
	if c.PublicURL("100_abc.jpg") != c.PublicURL("100_abc.jpg") {
		t.Error("public URL must be deterministic")
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]string{
		"a.jpg":    "image/jpeg",
		"a.png":    "image/png",
		"noext":    DefaultContentType,
		"a.weird9": DefaultContentType,
	}
	for key, want := range cases {
		if got := ContentTypeForKey(key); got != want {
			t.Errorf("key %s: expected %s, got %s", key, want, got)
		}
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(WithBucket("b")); err == nil {
		t.Error("expected an error when base URL is missing")
	}
	if _, err := NewClient(WithBaseURL("https://x")); err == nil {
		t.Error("expected an error when bucket is missing")
	}
}
