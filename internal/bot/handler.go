package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Chloelee05/NutritionLM-bot/internal/faq"
	"github.com/Chloelee05/NutritionLM-bot/internal/models"
	"github.com/Chloelee05/NutritionLM-bot/internal/pipeline"
)

// timeNow is swapped out in tests for deterministic report dates.
var timeNow = time.Now

// HandleUpdate routes one inbound Telegram update. Errors are rendered as
// chat messages at the stage where they occur; nothing propagates up to
// crash the handling goroutine.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil {
		return
	}

	msg := update.Message
	chatID := msg.Chat.ID

	// Photos route to the pipeline regardless of the pending mode.
	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, chatID, msg.Photo)
		return
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.showMainMenu(chatID)
		default:
			b.sendText(chatID, msgHelp)
		}
		return
	}

	if msg.Text != "" {
		b.handleText(ctx, chatID, msg.Text)
	}
}

// handleText interprets free text according to the chat's session mode.
func (b *Bot) handleText(ctx context.Context, chatID int64, text string) {
	trimmed := strings.TrimSpace(text)

	// "back" always wins over any pending mode.
	if strings.EqualFold(trimmed, buttonBack) {
		b.showMainMenu(chatID)
		return
	}

	switch b.sessions.Get(chatID) {
	case models.ModeAwaitingCode:
		b.handleCode(ctx, chatID, trimmed)
	case models.ModeFaqSearch:
		b.handleFaqSearch(chatID, trimmed)
	default:
		// Idle and FaqMenu both treat text as a menu command.
		b.handleMenuCommand(chatID, trimmed)
	}
}

// handleMenuCommand matches text against the main menu buttons.
func (b *Bot) handleMenuCommand(chatID int64, text string) {
	switch text {
	case buttonReport:
		b.handleReport(chatID)
	case buttonConnect:
		b.sessions.Set(chatID, models.ModeAwaitingCode)
		b.sendText(chatID, msgAskCode)
	case buttonFAQ:
		b.showFaqMenu(chatID)
	default:
		b.sendText(chatID, msgHelp)
	}
}

// handleCode treats text as a verification-code candidate. Validation and
// lookup failures keep the chat in awaiting-code so the user can retry.
func (b *Bot) handleCode(ctx context.Context, chatID int64, text string) {
	account, err := b.linker.RedeemCode(ctx, chatID, text)
	switch {
	case errors.Is(err, models.ErrInvalidCode):
		b.sendText(chatID, msgCodeInvalid)
	case errors.Is(err, models.ErrCodeNotFound):
		b.sendText(chatID, msgCodeNotFound)
	case err != nil:
		b.sendText(chatID, msgCodeStoreError)
	default:
		slog.Info("Chat linked to account", "chat_id", chatID, "account_id", account.ID)
		b.sessions.Set(chatID, models.ModeIdle)
		msg := tgbotapi.NewMessage(chatID, msgLinked)
		msg.ReplyMarkup = mainMenuKeyboard()
		b.send(msg)
	}
}

// handleFaqSearch matches text against the FAQ content.
func (b *Bot) handleFaqSearch(chatID int64, keyword string) {
	results := faq.Search(keyword)
	if len(results) == 0 {
		b.sendText(chatID, msgFaqNoMatch)
		return
	}
	b.sessions.Set(chatID, models.ModeIdle)
	b.sendText(chatID, formatSearchResults(results))
}

// handleReport summarizes today's diary entries for the linked account.
func (b *Bot) handleReport(chatID int64) {
	account, err := b.store.FindAccountByChatID(chatID)
	if err != nil {
		slog.Error("Report account lookup failed", "error", err, "chat_id", chatID)
		b.sendText(chatID, msgCodeStoreError)
		return
	}
	if account == nil || !account.Verified {
		b.sendText(chatID, msgReportNotLinked)
		return
	}

	date := timeNow().In(pipeline.ReferenceZone()).Format("2006-01-02")
	records, err := b.store.ListRecordsByDate(account.ID, date)
	if err != nil {
		slog.Error("Report record query failed", "error", err, "chat_id", chatID, "date", date)
		b.sendText(chatID, msgCodeStoreError)
		return
	}
	if len(records) == 0 {
		b.sendText(chatID, msgReportEmpty)
		return
	}
	b.sendText(chatID, formatReport(date, records))
}

// handlePhoto downloads the largest photo size and runs the pipeline,
// editing the progress message in place with the outcome.
func (b *Bot) handlePhoto(ctx context.Context, chatID int64, sizes []tgbotapi.PhotoSize) {
	photo := sizes[len(sizes)-1] // sizes are ordered smallest to largest

	progress, err := b.api.Send(tgbotapi.NewMessage(chatID, msgAnalyzing))
	if err != nil {
		slog.Error("Failed to send progress message", "error", err, "chat_id", chatID)
		return
	}

	image, err := b.downloadPhoto(ctx, photo.FileID)
	if err != nil {
		slog.Error("Photo download failed", "error", err, "chat_id", chatID)
		b.editText(chatID, progress.MessageID, fmt.Sprintf("❌ Couldn't download your photo: %v", err))
		return
	}

	result := b.ingester.IngestPhoto(ctx, chatID, image, photo.FileUniqueID)
	b.sessions.Set(chatID, models.ModeIdle)
	b.editText(chatID, progress.MessageID, pipelineMessage(result))
}

// handleCallback answers FAQ inline-button presses by editing the menu
// message in place.
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// Answer the callback to stop the client's loading indicator.
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		slog.Debug("Callback answer failed", "error", err)
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	if cb.Data == "faq_search" {
		b.sessions.Set(chatID, models.ModeFaqSearch)
		b.editText(chatID, messageID, msgFaqSearchAsk)
		return
	}
	if id, ok := strings.CutPrefix(cb.Data, "faq_"); ok {
		if entry, found := faq.Lookup(id); found {
			b.editText(chatID, messageID, entry.Answer)
			return
		}
	}
	slog.Debug("Unrecognized callback data", "data", cb.Data, "chat_id", chatID)
}

// showMainMenu resets the chat to idle and renders the main menu.
func (b *Bot) showMainMenu(chatID int64) {
	b.sessions.Set(chatID, models.ModeIdle)
	msg := tgbotapi.NewMessage(chatID, msgWelcome)
	msg.ReplyMarkup = mainMenuKeyboard()
	b.send(msg)
}

// showFaqMenu renders the FAQ inline menu.
func (b *Bot) showFaqMenu(chatID int64) {
	b.sessions.Set(chatID, models.ModeFaqMenu)
	msg := tgbotapi.NewMessage(chatID, msgFaqMenu)
	msg.ReplyMarkup = faqMenuKeyboard()
	b.send(msg)
}

// downloadPhoto fetches the photo bytes from Telegram's file API.
func (b *Bot) downloadPhoto(ctx context.Context, fileID string) ([]byte, error) {
	fileURL, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := b.downloader.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo bytes: %w", err)
	}
	return data, nil
}

// sendText sends a plain text message, logging delivery failures.
func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		slog.Error("Failed to send message", "error", err)
	}
}

// editText edits a previously sent message, falling back to a new message
// if the edit is rejected.
func (b *Bot) editText(chatID int64, messageID int, text string) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		slog.Debug("Edit failed, sending new message", "error", err, "chat_id", chatID)
		b.sendText(chatID, text)
	}
}
