package bot

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Webhook server timeouts.
const (
	serverReadTimeout  = 30 * time.Second
	serverWriteTimeout = 30 * time.Second
	serverIdleTimeout  = 120 * time.Second
)

// Routes builds the webhook HTTP handler: the Telegram update endpoint,
// the administrative webhook-registration endpoint, and a health check.
func (b *Bot) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Post("/webhook", b.webhookHandler)
	r.Post("/admin/webhook", b.registerWebhookHandler)

	return r
}

// Serve runs the webhook HTTP server until ctx is cancelled, then shuts
// down gracefully.
func (b *Bot) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      b.Routes(),
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Webhook server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// webhookHandler receives one Telegram update. The update is handled in
// its own goroutine so Telegram gets its 200 immediately; the transport
// dispatches per-chat updates serially, which is the only ordering the
// handlers rely on.
func (b *Bot) webhookHandler(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		slog.Error("Failed to decode webhook update", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	go b.HandleUpdate(context.Background(), update)
	w.WriteHeader(http.StatusOK)
}

// registerWebhookHandler registers the configured public webhook URL with
// Telegram. Exposed as an admin endpoint so registration can be re-run
// after a deploy without restarting the bot.
func (b *Bot) registerWebhookHandler(w http.ResponseWriter, r *http.Request) {
	if b.webhookURL == "" {
		http.Error(w, "webhook URL not configured", http.StatusInternalServerError)
		return
	}

	wh, err := tgbotapi.NewWebhook(b.webhookURL + "/webhook")
	if err != nil {
		slog.Error("Failed to build webhook config", "error", err, "url", b.webhookURL)
		http.Error(w, "invalid webhook URL", http.StatusInternalServerError)
		return
	}
	if _, err := b.api.Request(wh); err != nil {
		slog.Error("Failed to register webhook with Telegram", "error", err, "url", b.webhookURL)
		http.Error(w, "webhook registration failed", http.StatusBadGateway)
		return
	}

	slog.Info("Webhook registered", "url", b.webhookURL+"/webhook")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("webhook registered\n")); err != nil {
		slog.Debug("Failed to write response body", "error", err)
	}
}
