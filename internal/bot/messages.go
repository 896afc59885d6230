package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Chloelee05/NutritionLM-bot/internal/faq"
	"github.com/Chloelee05/NutritionLM-bot/internal/models"
)

// Main menu button labels. These double as the menu commands matched
// against inbound text.
const (
	buttonReport  = "Today's Nutrition Report"
	buttonConnect = "Connect Website Account"
	buttonFAQ     = "FAQ"
	buttonBack    = "Back"
)

// User-facing message texts.
const (
	msgWelcome = "Welcome! How can I assist you today?"
	msgHelp    = "I didn't catch that. Use the menu buttons below, or send a photo of your meal to log it."

	msgAskCode        = "Please enter the 6-digit verification code from the website."
	msgCodeInvalid    = "The code must be exactly six digits. Please try again."
	msgCodeNotFound   = "That code doesn't match any account. Please check it and try again."
	msgCodeStoreError = "We couldn't verify your code right now. Please try again in a moment."
	msgLinked         = "✅ Your account is connected! Send me a photo of your meal to log it."

	msgFaqMenu      = "Please choose one of the frequently asked questions 👇"
	msgFaqSearchAsk = "Type a keyword and I'll search the FAQ for you."
	msgFaqNoMatch   = "No FAQ entry matched that keyword. Try another one, or send \"back\" for the main menu."

	msgAnalyzing       = "🔍 Analyzing your meal photo..."
	msgNotLinked       = "Your account isn't connected yet. Tap \"Connect Website Account\" first."
	msgDuplicatePhoto  = "You've already logged this exact photo. Send a new one to add another entry."
	msgNothingDetected = "I couldn't detect anything in that photo. Please upload a clear photo of your food."
	msgNotFood         = "That doesn't look like food to me. Please upload a photo of a meal."
	msgPartialSuccess  = "⚠️ Your photo was analyzed, but saving the diary entry failed. Please try again later."

	msgReportNotLinked = "Connect your website account first to see your nutrition report."
	msgReportEmpty     = "No meals logged today yet. Send a photo of your next meal!"
)

// mainMenuKeyboard is the persistent reply keyboard shown in idle mode.
func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(buttonReport)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(buttonConnect)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(buttonFAQ)),
	)
}

// faqMenuKeyboard lists the FAQ entries plus the keyword search entry point.
func faqMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, e := range faq.All() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(e.Question, "faq_"+e.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔍 Search FAQ", "faq_search"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// pipelineMessage maps a pipeline outcome to its user-facing text.
func pipelineMessage(result models.PipelineResult) string {
	switch result.Status {
	case models.PipelineSuccess:
		return fmt.Sprintf("🍽 Logged %s to your nutrition diary!", result.FoodName)
	case models.PipelinePartialSuccess:
		return msgPartialSuccess
	case models.PipelineNotLinked:
		return msgNotLinked
	case models.PipelineDuplicate:
		return msgDuplicatePhoto
	case models.PipelineNothingDetected:
		return msgNothingDetected
	case models.PipelineNotFood:
		return msgNotFood
	default:
		detail := "unknown error"
		if result.Err != nil {
			detail = result.Err.Error()
		}
		return fmt.Sprintf("❌ Something went wrong while processing your photo: %s", detail)
	}
}

// formatReport renders a day's diary entries as a summary message.
func formatReport(date string, records []models.NutritionRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Nutrition report for %s\n", date)
	for _, r := range records {
		fmt.Fprintf(&b, "\n• %s (%s) at %s", r.FoodName, r.FoodType, r.Time)
	}
	fmt.Fprintf(&b, "\n\nMeals logged: %d", len(records))
	return b.String()
}

// formatSearchResults renders FAQ search hits.
func formatSearchResults(results []faq.Entry) string {
	var b strings.Builder
	b.WriteString("Here's what I found:\n")
	for _, e := range results {
		fmt.Fprintf(&b, "\n❓ %s\n%s\n", e.Question, e.Answer)
	}
	return b.String()
}
