// Package faq holds the FAQ content shown from the bot's FAQ menu,
// with lookup by entry id and a simple keyword search.
package faq

import "strings"

// Entry is one FAQ question/answer pair.
type Entry struct {
	ID       string
	Question string
	Answer   string
	Keywords []string
}

// entries is the static FAQ content. Order is the menu order.
var entries = []Entry{
	{
		ID:       "calorie",
		Question: "Set Calorie Goal",
		Answer:   "Your calorie goal is automatically set based on your profile!",
		Keywords: []string{"calorie", "goal", "target", "kcal"},
	},
	{
		ID:       "accuracy",
		Question: "AI Analysis Accuracy",
		Answer:   "AI accuracy may vary depending on photo quality.",
		Keywords: []string{"accuracy", "ai", "analysis", "wrong", "photo"},
	},
}

// All returns the FAQ entries in menu order.
func All() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Lookup returns the entry with the given id, or false if none exists.
func Lookup(id string) (Entry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Search matches a keyword against questions and keyword lists,
// case-insensitively, returning all matching entries.
func Search(keyword string) []Entry {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return nil
	}
	var out []Entry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Question), needle) {
			out = append(out, e)
			continue
		}
		for _, k := range e.Keywords {
			if strings.Contains(k, needle) || strings.Contains(needle, k) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}
