// Package bot implements the Telegram transport layer: update routing,
// keyboards, callback queries, photo download, and the webhook HTTP service.
package bot

import (
	"context"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Chloelee05/NutritionLM-bot/internal/models"
	"github.com/Chloelee05/NutritionLM-bot/internal/session"
	"github.com/Chloelee05/NutritionLM-bot/internal/store"
)

// fileDownloadTimeout bounds fetching photo bytes from Telegram's file API.
const fileDownloadTimeout = 30 * time.Second

// API is the minimal Telegram Bot API surface the handlers need.
// *tgbotapi.BotAPI satisfies it; tests substitute a fake.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// CodeRedeemer redeems a verification code for a chat.
type CodeRedeemer interface {
	RedeemCode(ctx context.Context, chatID int64, rawInput string) (*models.Account, error)
}

// PhotoIngester runs the photo pipeline for one inbound image.
type PhotoIngester interface {
	IngestPhoto(ctx context.Context, chatID int64, image []byte, fileUniqueID string) models.PipelineResult
}

// Bot routes Telegram updates to the linking flow, the FAQ content, and the
// photo pipeline, tracking a session mode per chat.
type Bot struct {
	api        API
	sessions   session.Store
	linker     CodeRedeemer
	ingester   PhotoIngester
	store      store.Store
	webhookURL string
	downloader *http.Client
}

// Opts holds configuration for the bot.
type Opts struct {
	WebhookURL string
}

// Option configures the bot.
type Option func(*Opts)

// WithWebhookURL sets the public URL registered with Telegram via the
// admin endpoint.
func WithWebhookURL(u string) Option {
	return func(o *Opts) { o.WebhookURL = u }
}

// New creates a bot over the given collaborators.
func New(api API, sessions session.Store, linker CodeRedeemer, ingester PhotoIngester, st store.Store, opts ...Option) *Bot {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Bot{
		api:        api,
		sessions:   sessions,
		linker:     linker,
		ingester:   ingester,
		store:      st,
		webhookURL: cfg.WebhookURL,
		downloader: &http.Client{Timeout: fileDownloadTimeout},
	}
}
