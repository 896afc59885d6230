// Package models defines session state structures for the NutritionLM bot.
package models

// SessionMode determines how the next text message from a chat is interpreted.
type SessionMode string

const (
	// ModeIdle treats the next text as a menu command; unrecognized input
	// gets a short help reply.
	ModeIdle SessionMode = "idle"
	// ModeAwaitingCode treats the next text as a verification-code candidate.
	ModeAwaitingCode SessionMode = "awaiting_code"
	// ModeFaqMenu is set while the FAQ inline menu is shown; text has no
	// special handling beyond the menu commands.
	ModeFaqMenu SessionMode = "faq_menu"
	// ModeFaqSearch treats the next text as a keyword to match against FAQ content.
	ModeFaqSearch SessionMode = "faq_search"
)

// IsValidSessionMode checks if the given mode is one of the known modes.
func IsValidSessionMode(m SessionMode) bool {
	switch m {
	case ModeIdle, ModeAwaitingCode, ModeFaqMenu, ModeFaqSearch:
		return true
	default:
		return false
	}
}
