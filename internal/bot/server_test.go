package bot

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWebhookAcceptsUpdate(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.bot.Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/webhook", "application/json", strings.NewReader(`{"update_id":1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.bot.Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/webhook", "application/json", strings.NewReader(`not json`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.bot.Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestRegisterWebhookRequiresConfiguredURL(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.bot.Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/admin/webhook", "application/json", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500 without a configured webhook URL, got %d", resp.StatusCode)
	}
}
