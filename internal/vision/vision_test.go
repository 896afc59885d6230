package vision

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Chloelee05/NutritionLM-bot/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestClassifySuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/classify" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("expected multipart upload, got %s", r.Header.Get("Content-Type"))
		}
		w.Write([]byte(`{"food_name":"Apple","ingredients":["apple"],"food_type":"fruit"}`))
	})

	result, err := c.Classify(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeClassified {
		t.Fatalf("expected classified, got %s", result.Outcome)
	}
	cl := result.Classification
	if cl.FoodName != "Apple" || cl.FoodType != "fruit" || len(cl.Ingredients) != 1 {
		t.Errorf("unexpected classification: %+v", cl)
	}
}

func TestClassifyNothingDetectedOn404(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	result, err := c.Classify(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("404 is a valid answer, not an error: %v", err)
	}
	if result.Outcome != OutcomeNothingDetected {
		t.Errorf("expected nothing_detected, got %s", result.Outcome)
	}
}

func TestClassifyNotFoodSentinel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"food_name":"not a food","ingredients":[],"food_type":""}`))
	})

	result, err := c.Classify(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeNotFood {
		t.Errorf("expected not_food, got %s", result.Outcome)
	}
}

func TestClassifyServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Classify(context.Background(), []byte("img"))
	if !errors.Is(err, models.ErrExternalService) {
		t.Errorf("expected ErrExternalService, got %v", err)
	}
}

func TestClassifyEmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := c.Classify(context.Background(), []byte("img"))
	if !errors.Is(err, models.ErrExternalService) {
		t.Errorf("expected ErrExternalService for empty body, got %v", err)
	}
}

func TestClassifyUnparseableBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := c.Classify(context.Background(), []byte("img"))
	if !errors.Is(err, models.ErrExternalService) {
		t.Errorf("expected ErrExternalService for unparseable body, got %v", err)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(); err == nil {
		t.Error("expected an error when no base URL is configured")
	}
}
